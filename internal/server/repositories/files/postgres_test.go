package files

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/mycloud/internal/common"
	"github.com/dmitrijs2005/mycloud/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func fileRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_id", "display_name", "storage_path", "size", "hash",
		"comment", "created_at", "last_downloaded_at",
	})
}

func TestCreate_AssignsIDAndTimestamp(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), now)
	mock.ExpectQuery(`INSERT\s+INTO\s+files\s*\(owner_id,\s*display_name,\s*storage_path,\s*size,\s*hash,\s*comment\)`).
		WithArgs(int64(1), "1700000000_report.bin", "user_1/1700000000_report.bin", int64(12), "abc", "").
		WillReturnRows(rows)

	f := &models.File{
		OwnerID:     1,
		DisplayName: "1700000000_report.bin",
		StoragePath: "user_1/1700000000_report.bin",
		Size:        12,
		Hash:        "abc",
	}
	got, err := repo.Create(context.Background(), f)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 5 || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected file: %+v", got)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now().Add(-time.Hour)
	downloaded := time.Now()
	rows := fileRows().AddRow(int64(5), int64(1), "n.bin", "user_1/n.bin", int64(3), "h", "c", created, downloaded)
	mock.ExpectQuery(`SELECT\s+.*FROM\s+files\s+WHERE\s+id`).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.ID != 5 || got.LastDownloadedAt == nil || !got.LastDownloadedAt.Equal(downloaded) {
		t.Fatalf("unexpected file: %+v", got)
	}
}

func TestGetByID_NullLastDownloaded(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := fileRows().AddRow(int64(5), int64(1), "n.bin", "user_1/n.bin", int64(3), "h", "", time.Now(), nil)
	mock.ExpectQuery(`SELECT\s+.*FROM\s+files\s+WHERE\s+id`).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.LastDownloadedAt != nil {
		t.Fatalf("expected nil LastDownloadedAt, got %v", got.LastDownloadedAt)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*FROM\s+files\s+WHERE\s+id`).
		WithArgs(int64(999999)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 999999)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByHash_PrefersNewest(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := fileRows().AddRow(int64(9), int64(1), "n.bin", "user_1/n.bin", int64(3), "deadbeef", "", time.Now(), nil)
	mock.ExpectQuery(`SELECT\s+.*FROM\s+files\s+WHERE\s+hash\s*=\s*\$1\s+ORDER\s+BY\s+id\s+DESC\s+LIMIT\s+1`).
		WithArgs("deadbeef").
		WillReturnRows(rows)

	got, err := repo.GetByHash(context.Background(), "deadbeef")
	if err != nil {
		t.Fatalf("GetByHash error: %v", err)
	}
	if got.ID != 9 {
		t.Fatalf("unexpected file: %+v", got)
	}
}

func TestListByOwner_NewestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := fileRows().
		AddRow(int64(2), int64(1), "b.bin", "user_1/b.bin", int64(2), "h2", "", time.Now(), nil).
		AddRow(int64(1), int64(1), "a.bin", "user_1/a.bin", int64(1), "h1", "", time.Now().Add(-time.Minute), nil)
	mock.ExpectQuery(`SELECT\s+.*FROM\s+files\s+WHERE\s+owner_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC`).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	got, err := repo.ListByOwner(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("unexpected files: %+v", got)
	}
}

func TestUpdateComment_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+files\s+SET\s+comment`).
		WithArgs(int64(5), "hello").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateComment(context.Background(), 5, "hello")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestSetLastDownloadedAt_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	ts := time.Now()
	mock.ExpectExec(`UPDATE\s+files\s+SET\s+last_downloaded_at`).
		WithArgs(int64(5), ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetLastDownloadedAt(context.Background(), 5, ts); err != nil {
		t.Fatalf("SetLastDownloadedAt error: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+files\s+WHERE\s+id`).
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 404)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestDeleteByOwner_ReturnsCount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+files\s+WHERE\s+owner_id`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteByOwner(context.Background(), 1)
	if err != nil {
		t.Fatalf("DeleteByOwner error: %v", err)
	}
	if n != 3 {
		t.Fatalf("want 3 deleted rows, got %d", n)
	}
}

func TestTotalSizeByOwner_ZeroWhenEmpty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(0))
	mock.ExpectQuery(`SELECT\s+COALESCE\(SUM\(size\),\s*0\)\s+FROM\s+files`).
		WithArgs(int64(77)).
		WillReturnRows(rows)

	n, err := repo.TotalSizeByOwner(context.Background(), 77)
	if err != nil {
		t.Fatalf("TotalSizeByOwner error: %v", err)
	}
	if n != 0 {
		t.Fatalf("want 0 for empty owner, got %d", n)
	}
}

func TestCountByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"count"}).AddRow(int64(4))
	mock.ExpectQuery(`SELECT\s+COUNT\(\*\)\s+FROM\s+files`).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	n, err := repo.CountByOwner(context.Background(), 1)
	if err != nil {
		t.Fatalf("CountByOwner error: %v", err)
	}
	if n != 4 {
		t.Fatalf("want 4, got %d", n)
	}
}
