// Package files provides persistence for file metadata records.
package files

import (
	"context"
	"time"

	"github.com/dmitrijs2005/mycloud/internal/server/models"
)

type Repository interface {
	// Create inserts a new file record and returns it with the assigned ID
	// and creation timestamp.
	Create(ctx context.Context, file *models.File) (*models.File, error)

	// GetByID returns the record with the given id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.File, error)

	// GetByHash returns the most recent record with the given content hash,
	// or common.ErrorNotFound. The numeric id stays the canonical key; the
	// hash is an alternate download key only.
	GetByHash(ctx context.Context, hash string) (*models.File, error)

	// ListByOwner returns the owner's records, newest first.
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.File, error)

	// UpdateComment replaces the comment, the only mutable field.
	// Returns common.ErrorNotFound when no such record exists.
	UpdateComment(ctx context.Context, id int64, comment string) error

	// SetLastDownloadedAt records the time of a successful download.
	SetLastDownloadedAt(ctx context.Context, id int64, ts time.Time) error

	// Delete removes the record. Returns common.ErrorNotFound when no such
	// record exists.
	Delete(ctx context.Context, id int64) error

	// DeleteByOwner removes every record owned by ownerID and returns how
	// many rows were deleted.
	DeleteByOwner(ctx context.Context, ownerID int64) (int64, error)

	// CountByOwner returns the number of records owned by ownerID.
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)

	// TotalSizeByOwner returns the summed size of the owner's records,
	// zero when the owner has none.
	TotalSizeByOwner(ctx context.Context, ownerID int64) (int64, error)
}
