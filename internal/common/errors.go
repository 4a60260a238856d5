// Package common defines shared constants and sentinel errors used across
// MyCloud components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Request-level errors (the client's fault, not retried).
	ErrorValidation = errors.New("validation error")
	ErrorForbidden  = errors.New("forbidden")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Blob storage errors. ErrorStorageWrite aborts a create before any
	// metadata row is persisted. ErrorStorageInconsistency means metadata
	// and blob disagree on existence; it is logged and reported to callers
	// as ErrorNotFound rather than crashing the request.
	ErrorStorageWrite         = errors.New("storage write error")
	ErrorStorageInconsistency = errors.New("storage inconsistency")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
