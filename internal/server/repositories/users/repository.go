// Package users provides persistence for user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/mycloud/internal/server/models"
)

type Repository interface {
	// Create inserts a new user and returns it with the assigned ID.
	// Returns common.ErrorAlreadyExists when the username or email is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID returns the user with the given id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByLogin returns the user with the given username, or common.ErrorNotFound.
	GetByLogin(ctx context.Context, userName string) (*models.User, error)

	// List returns all users ordered by id.
	List(ctx context.Context) ([]*models.User, error)

	// SetAdmin updates the admin flag. Returns common.ErrorNotFound when no
	// such user exists.
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error

	// Delete removes the user row. Dependent rows (files, refresh tokens)
	// are removed by the schema's ON DELETE CASCADE as a backstop; callers
	// are expected to delete file metadata explicitly first.
	Delete(ctx context.Context, id int64) error
}
