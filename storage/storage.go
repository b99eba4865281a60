// Package storage defines the object storage surface for generated
// thumbnails.
//
// Implementations may store objects in any S3-compatible backend; see the s3
// subpackage for the default. Keys follow a deterministic template so that
// artifacts can be located from metadata alone.
package storage

import (
	"context"
	"fmt"
	"time"
)

// Defaults for object storage operations.
const (
	DefaultContentType   = "image/png"
	DefaultPresignExpiry = 3600 * time.Second
)

// PutResult describes a stored object.
type PutResult struct {
	Bucket string
	Key    string
	URL    string
}

// ObjectStore stores and retrieves generated thumbnail bitmaps.
// Implementations must be safe for concurrent use.
type ObjectStore interface {
	// Put stores data under key. An empty contentType defaults to
	// DefaultContentType.
	Put(ctx context.Context, key string, data []byte, contentType string) (PutResult, error)

	// Get retrieves the object stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// PresignGet returns a time-limited GET URL for key. A non-positive
	// expiry defaults to DefaultPresignExpiry.
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}

// ObjectKey renders the canonical key for a thumbnail artifact:
// thumbnails/{preset|"custom"}/{YYYY}/{MM}/{id}-v{version}.png.
func ObjectKey(presetID, id string, version int, t time.Time) string {
	if presetID == "" {
		presetID = "custom"
	}
	return fmt.Sprintf("thumbnails/%s/%04d/%02d/%s-v%d.png",
		presetID, t.Year(), int(t.Month()), id, version)
}

// Error wraps an object store failure with the operation and key involved.
type Error struct {
	Op    string
	Key   string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
