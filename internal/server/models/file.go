package models

import "time"

// File describes one stored file: the metadata row that accompanies a blob.
// The blob itself lives in blob storage under StoragePath.
type File struct {
	// ID is the canonical identifier, assigned by the database at creation.
	ID int64
	// OwnerID is the user who created the file. Ownership never transfers.
	OwnerID int64
	// DisplayName is the collision-resistant name used as the storage key,
	// derived from the original filename and the upload timestamp. Set once.
	DisplayName string
	// StoragePath is the blob key relative to the storage root, always under
	// the owner's subtree (user_{OwnerID}/{DisplayName}).
	StoragePath string
	// Size is the byte length of the uploaded payload, measured server-side.
	Size int64
	// Hash is the SHA-256 hex fingerprint of the content, usable as an
	// alternate download key. The numeric ID stays canonical.
	Hash string
	// Comment is free text, mutable by the owner.
	Comment string

	CreatedAt time.Time
	// LastDownloadedAt is nil until the first successful download.
	LastDownloadedAt *time.Time
}
