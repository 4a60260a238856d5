// Package users implements account management: registration, login with
// JWT access tokens and rotating refresh tokens, and the administrative
// operations over accounts.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/mycloud/internal/common"
	"github.com/dmitrijs2005/mycloud/internal/dbx"
	"github.com/dmitrijs2005/mycloud/internal/logging"
	"github.com/dmitrijs2005/mycloud/internal/server/auth"
	"github.com/dmitrijs2005/mycloud/internal/server/blob"
	"github.com/dmitrijs2005/mycloud/internal/server/config"
	"github.com/dmitrijs2005/mycloud/internal/server/models"
	"github.com/dmitrijs2005/mycloud/internal/server/repositories/repomanager"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UsageAggregator reports per-account storage usage; *files.Service
// implements it.
type UsageAggregator interface {
	CountForUser(ctx context.Context, ownerID int64) (int64, error)
	TotalSizeForUser(ctx context.Context, ownerID int64) (int64, error)
}

// AccountInfo is an account together with its storage usage, as shown in
// the administrative listing.
type AccountInfo struct {
	User      *models.User
	FileCount int64
	TotalSize int64
}

type Service struct {
	db                           *sql.DB
	repos                        repomanager.RepositoryManager
	blobs                        blob.Store
	usage                        UsageAggregator
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewService(db *sql.DB, repos repomanager.RepositoryManager, blobs blob.Store, usage UsageAggregator, logger logging.Logger, cfg *config.Config) *Service {
	return &Service{
		db:                           db,
		repos:                        repos,
		blobs:                        blobs,
		usage:                        usage,
		logger:                       logger.With("module", "users"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

func (s *Service) Register(ctx context.Context, userName, email, firstName, password string) (*models.User, error) {
	if strings.TrimSpace(userName) == "" {
		return nil, fmt.Errorf("%w: empty username", common.ErrorValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", common.ErrorValidation)
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		UserName:     userName,
		Email:        email,
		FirstName:    firstName,
		PasswordHash: hash,
	}

	user, err = s.repos.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "id", user.ID, "username", user.UserName)
	return user, nil
}

func (s *Service) generateTokenPair(ctx context.Context, userID int64) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	err = s.repos.RefreshTokens(s.db).Create(ctx, userID, refreshToken, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *Service) Login(ctx context.Context, userName string, password string) (*TokenPair, error) {
	user, err := s.repos.Users(s.db).GetByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}

	return s.generateTokenPair(ctx, user.ID)
}

// Refresh exchanges a valid refresh token for a new token pair. The old
// token is consumed either way: rotation on success, deletion on expiry.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repos.RefreshTokens(s.db)

	stored, err := repo.Get(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}

	if time.Now().After(stored.ExpiresAt) {
		if err := repo.Delete(ctx, refreshToken); err != nil {
			s.logger.Warn(ctx, "failed to delete expired refresh token", "error", err.Error())
		}
		return nil, common.ErrRefreshTokenExpired
	}

	if err := repo.Delete(ctx, refreshToken); err != nil {
		return nil, common.ErrorInternal
	}

	return s.generateTokenPair(ctx, stored.UserID)
}

// GetByID returns one account; used by the authentication middleware.
func (s *Service) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repos.Users(s.db).GetByID(ctx, id)
}

// List returns every account with its file count and total stored bytes.
func (s *Service) List(ctx context.Context) ([]*AccountInfo, error) {
	all, err := s.repos.Users(s.db).List(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]*AccountInfo, 0, len(all))
	for _, u := range all {
		count, err := s.usage.CountForUser(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		size, err := s.usage.TotalSizeForUser(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		infos = append(infos, &AccountInfo{User: u, FileCount: count, TotalSize: size})
	}

	return infos, nil
}

func (s *Service) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	return s.repos.Users(s.db).SetAdmin(ctx, id, isAdmin)
}

// Delete removes an account with everything it owns: the file records and
// the user row go in one transaction, the blob subtree afterwards. A blob
// cleanup failure is logged, not surfaced: the account is already gone.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.repos.Users(s.db).GetByID(ctx, id); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repos.Files(tx).DeleteByOwner(ctx, id); err != nil {
			return err
		}
		return s.repos.Users(tx).Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}

	if err := s.blobs.RemoveTree(ctx, blob.UserPrefix(id)); err != nil {
		s.logger.Error(ctx, "blob subtree removal failed", "user", id, "error", err.Error())
	}

	s.logger.Info(ctx, "user deleted", "id", id)
	return nil
}
