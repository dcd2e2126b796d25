package storage

import (
	"context"
	"io"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// StoredObject describes a blob after a successful upload. The object key
// is what later delete/replace operations need; the URL is what clients
// are given to fetch the blob.
type StoredObject struct {
	ObjectKey string
	URL       string
}

// FileStorage defines the interface for object storage operations.
type FileStorage interface {
	// Upload streams an object into the storage provider under the given
	// key and returns its stored reference.
	Upload(ctx context.Context, objectKey string, contentType string, body io.Reader) (*StoredObject, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}
