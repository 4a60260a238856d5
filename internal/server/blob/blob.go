// Package blob abstracts physical byte storage for uploaded files.
//
// Blobs are addressed by a relative key under a per-deployment root. Keys are
// always of the form "user_{ownerID}/{displayName}", so removing a user's
// whole subtree is a single RemoveTree call.
package blob

import (
	"context"
	"io"
	"strconv"
)

// Store is the physical byte storage backing file records.
type Store interface {
	// Save writes the reader's content at key and returns the byte count.
	Save(ctx context.Context, key string, r io.Reader) (int64, error)

	// Open returns a reader over the blob at key. The caller must close it.
	// Returns common.ErrorNotFound when no blob exists at key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists reports whether a blob exists at key.
	Exists(ctx context.Context, key string) (bool, error)

	// Remove deletes the blob at key. Returns common.ErrorNotFound when the
	// blob is already gone, so callers can log drift without failing.
	Remove(ctx context.Context, key string) error

	// RemoveTree deletes every blob under the given key prefix. Removing a
	// prefix with no blobs is not an error.
	RemoveTree(ctx context.Context, prefix string) error
}

// UserPrefix returns the storage subtree for one owner.
func UserPrefix(ownerID int64) string {
	return "user_" + strconv.FormatInt(ownerID, 10)
}

// UserKey builds the blob key for a display name inside an owner's subtree.
func UserKey(ownerID int64, displayName string) string {
	return UserPrefix(ownerID) + "/" + displayName
}
