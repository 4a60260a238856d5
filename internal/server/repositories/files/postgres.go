package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mycloud/internal/common"
	"github.com/dmitrijs2005/mycloud/internal/dbx"
	"github.com/dmitrijs2005/mycloud/internal/server/models"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const fileColumns = `id, owner_id, display_name, storage_path, size, hash, comment, created_at, last_downloaded_at`

func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query := `
		INSERT INTO files (owner_id, display_name, storage_path, size, hash, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		file.OwnerID, file.DisplayName, file.StoragePath, file.Size, file.Hash, file.Comment).
		Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return scanFile(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByHash(ctx context.Context, hash string) (*models.File, error) {
	// Hashes are not guaranteed globally unique; prefer the newest record.
	query := `SELECT ` + fileColumns + ` FROM files WHERE hash = $1 ORDER BY id DESC LIMIT 1`
	return scanFile(r.db.QueryRowContext(ctx, query, hash))
}

func scanFile(row *sql.Row) (*models.File, error) {
	file := &models.File{}
	var last sql.NullTime
	err := row.Scan(&file.ID, &file.OwnerID, &file.DisplayName, &file.StoragePath,
		&file.Size, &file.Hash, &file.Comment, &file.CreatedAt, &last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if last.Valid {
		file.LastDownloadedAt = &last.Time
	}
	return file, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		var item models.File
		var last sql.NullTime
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.DisplayName, &item.StoragePath,
			&item.Size, &item.Hash, &item.Comment, &item.CreatedAt, &last); err != nil {
			return nil, err
		}
		if last.Valid {
			item.LastDownloadedAt = &last.Time
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) UpdateComment(ctx context.Context, id int64, comment string) error {
	query := `UPDATE files SET comment = $2 WHERE id = $1`
	return r.execExpectingRow(ctx, query, id, comment)
}

func (r *PostgresRepository) SetLastDownloadedAt(ctx context.Context, id int64, ts time.Time) error {
	query := `UPDATE files SET last_downloaded_at = $2 WHERE id = $1`
	return r.execExpectingRow(ctx, query, id, ts)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM files WHERE id = $1`
	return r.execExpectingRow(ctx, query, id)
}

func (r *PostgresRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID int64) (int64, error) {
	query := `DELETE FROM files WHERE owner_id = $1`
	res, err := r.db.ExecContext(ctx, query, ownerID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM files WHERE owner_id = $1`
	var n int64
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) TotalSizeByOwner(ctx context.Context, ownerID int64) (int64, error) {
	query := `SELECT COALESCE(SUM(size), 0) FROM files WHERE owner_id = $1`
	var n int64
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
