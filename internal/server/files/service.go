// Package files implements the file storage core: upload lifecycle, download
// resolution and per-user usage aggregation. It keeps the metadata repository
// and the blob store consistent: a blob is written before its metadata row is
// committed, and deletes remove metadata first with best-effort blob cleanup.
package files

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/mycloud/internal/common"
	"github.com/dmitrijs2005/mycloud/internal/logging"
	"github.com/dmitrijs2005/mycloud/internal/server/blob"
	"github.com/dmitrijs2005/mycloud/internal/server/models"
	"github.com/dmitrijs2005/mycloud/internal/server/repositories/repomanager"
)

// maxNameAttempts bounds the same-second collision retries.
const maxNameAttempts = 5

type Service struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	blobs  blob.Store
	logger logging.Logger

	// now is a seam for tests; time.Now in production.
	now func() time.Time
}

func NewService(db *sql.DB, repos repomanager.RepositoryManager, blobs blob.Store, logger logging.Logger) *Service {
	return &Service{
		db:     db,
		repos:  repos,
		blobs:  blobs,
		logger: logger.With("module", "files"),
		now:    time.Now,
	}
}

// Create stores an upload: it generates a collision-resistant name, writes
// the blob first and only then commits the metadata row, so a failed blob
// write never leaves an orphan record. Size and hash are computed from the
// actual payload, never taken from client metadata.
func (s *Service) Create(ctx context.Context, ownerID int64, originalName string, payload []byte, comment string) (*models.File, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", common.ErrorValidation)
	}
	if strings.TrimSpace(originalName) == "" {
		return nil, fmt.Errorf("%w: empty file name", common.ErrorValidation)
	}

	now := s.now()
	name, key, err := s.pickStorageName(ctx, ownerID, originalName, now)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(payload)

	size, err := s.blobs.Save(ctx, key, bytes.NewReader(payload))
	if err != nil {
		s.logger.Error(ctx, "blob write failed", "key", key, "error", err.Error())
		return nil, fmt.Errorf("%w: %v", common.ErrorStorageWrite, err)
	}

	file := &models.File{
		OwnerID:     ownerID,
		DisplayName: name,
		StoragePath: key,
		Size:        size,
		Hash:        hex.EncodeToString(sum[:]),
		Comment:     comment,
	}

	file, err = s.repos.Files(s.db).Create(ctx, file)
	if err != nil {
		// No orphan record exists; remove the just-written blob so no
		// orphan blob survives either.
		if rmErr := s.blobs.Remove(ctx, key); rmErr != nil && !errors.Is(rmErr, common.ErrorNotFound) {
			s.logger.Error(ctx, "cleanup of blob after failed create", "key", key, "error", rmErr.Error())
		}
		return nil, fmt.Errorf("error creating file record: %w", err)
	}

	s.logger.Info(ctx, "file created", "id", file.ID, "owner", ownerID, "name", name, "size", size)
	return file, nil
}

// pickStorageName resolves the same-second tie-break: when the generated name
// already has a blob for this owner, retry with a short random infix.
func (s *Service) pickStorageName(ctx context.Context, ownerID int64, originalName string, now time.Time) (string, string, error) {
	name := GenerateName(originalName, now)
	for attempt := 0; ; attempt++ {
		key := blob.UserKey(ownerID, name)
		exists, err := s.blobs.Exists(ctx, key)
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", common.ErrorStorageWrite, err)
		}
		if !exists {
			return name, key, nil
		}
		if attempt >= maxNameAttempts {
			return "", "", fmt.Errorf("%w: could not find a free storage name for %q", common.ErrorStorageWrite, originalName)
		}
		suffix, err := common.MakeRandHexString(3)
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", common.ErrorStorageWrite, err)
		}
		name = GenerateNameWithSuffix(originalName, suffix, now)
	}
}

// ListForOwner returns the owner's records, newest first.
func (s *Service) ListForOwner(ctx context.Context, ownerID int64) ([]*models.File, error) {
	return s.repos.Files(s.db).ListByOwner(ctx, ownerID)
}

// UpdateComment mutates the only mutable field. Only the owner may edit
// content; administrators do not bypass this check.
func (s *Service) UpdateComment(ctx context.Context, id int64, callerID int64, comment string) (*models.File, error) {
	repo := s.repos.Files(s.db)

	file, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != callerID {
		return nil, common.ErrorForbidden
	}
	if err := repo.UpdateComment(ctx, id, comment); err != nil {
		return nil, err
	}
	file.Comment = comment
	return file, nil
}

// Delete removes the record first, then removes the blob best-effort. If the
// blob is already gone the mismatch is logged as storage drift, not surfaced:
// after a successful return both record and blob are gone either way.
// The owner and administrators may delete.
func (s *Service) Delete(ctx context.Context, id int64, callerID int64, callerIsAdmin bool) error {
	repo := s.repos.Files(s.db)

	file, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if file.OwnerID != callerID && !callerIsAdmin {
		return common.ErrorForbidden
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.blobs.Remove(ctx, file.StoragePath); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "storage drift: record deleted but blob was already gone",
				"id", id, "path", file.StoragePath, "error", common.ErrorStorageInconsistency.Error())
		} else {
			s.logger.Error(ctx, "blob removal failed after record delete",
				"id", id, "path", file.StoragePath, "error", err.Error())
		}
	}

	s.logger.Info(ctx, "file deleted", "id", id, "owner", file.OwnerID)
	return nil
}

// DeleteAllForUser removes every record the owner has and then the owner's
// whole blob subtree in one pass. Missing blobs never fail the cascade.
func (s *Service) DeleteAllForUser(ctx context.Context, ownerID int64) error {
	n, err := s.repos.Files(s.db).DeleteByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("error deleting file records: %w", err)
	}

	if err := s.blobs.RemoveTree(ctx, blob.UserPrefix(ownerID)); err != nil {
		s.logger.Error(ctx, "blob subtree removal failed", "owner", ownerID, "error", err.Error())
	}

	s.logger.Info(ctx, "user files deleted", "owner", ownerID, "records", n)
	return nil
}

// Resolve turns a client identifier (numeric id, otherwise content hash)
// into a byte stream and a filename to suggest to the client. The caller owns
// the returned reader and must close it. A record whose blob is missing is
// storage drift: logged at error severity, reported as not found.
func (s *Service) Resolve(ctx context.Context, identifier string) (io.ReadCloser, string, error) {
	repo := s.repos.Files(s.db)

	var file *models.File
	var err error
	if id, parseErr := strconv.ParseInt(identifier, 10, 64); parseErr == nil {
		file, err = repo.GetByID(ctx, id)
	} else {
		file, err = repo.GetByHash(ctx, identifier)
	}
	if err != nil {
		return nil, "", err
	}

	rc, err := s.blobs.Open(ctx, file.StoragePath)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Error(ctx, "storage drift: record exists but blob is missing",
				"id", file.ID, "path", file.StoragePath, "error", common.ErrorStorageInconsistency.Error())
			return nil, "", common.ErrorNotFound
		}
		return nil, "", fmt.Errorf("error opening blob: %w", err)
	}

	// Best-effort: a failed timestamp update must not fail the download.
	if err := repo.SetLastDownloadedAt(ctx, file.ID, s.now()); err != nil {
		s.logger.Warn(ctx, "failed to record download time", "id", file.ID, "error", err.Error())
	}

	return rc, DownloadName(file.DisplayName), nil
}

// DownloadName derives the filename suggested to the client from the stored
// display name: the leading upload-timestamp marker is dropped, and the
// sentinel extension is appended when no extension is present.
func DownloadName(displayName string) string {
	name := displayName
	if i := strings.Index(name, "_"); i > 0 && isDigits(name[:i]) {
		name = name[i+1:]
	}
	if !strings.Contains(name, ".") {
		name += "." + DefaultExtension
	}
	return name
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// CountForUser returns how many records the owner has.
func (s *Service) CountForUser(ctx context.Context, ownerID int64) (int64, error) {
	return s.repos.Files(s.db).CountByOwner(ctx, ownerID)
}

// TotalSizeForUser returns the owner's total stored bytes; zero when the
// owner has no files.
func (s *Service) TotalSizeForUser(ctx context.Context, ownerID int64) (int64, error) {
	return s.repos.Files(s.db).TotalSizeByOwner(ctx, ownerID)
}
