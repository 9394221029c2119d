package storage

import (
	"context"
	"io"
)

// ObjectStorage persists uploaded images and returns a retrievable URL.
type ObjectStorage interface {
	Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error)
}
