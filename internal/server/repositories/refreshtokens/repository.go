// Package refreshtokens provides persistence for long-lived session tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/mycloud/internal/server/models"
)

type Repository interface {
	// Create stores a new refresh token valid for the given duration.
	Create(ctx context.Context, userID int64, token string, validity time.Duration) error

	// Get returns the stored token row, or common.ErrorNotFound.
	Get(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a token, making it unusable for refresh.
	Delete(ctx context.Context, token string) error
}
