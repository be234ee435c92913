package port

import (
	"context"
	"io"
	"time"
)

// StorageAdapter is the C1 Storage Gateway contract: idempotent-by-name
// blob operations against an opaque object store. Delete must treat
// "not found" as success.
type StorageAdapter interface {
	Upload(ctx context.Context, blobName, contentType string, data io.Reader, size int64) error
	Download(ctx context.Context, blobName string) ([]byte, error)
	SignedDownloadURL(ctx context.Context, blobName string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, blobName string) error
}
