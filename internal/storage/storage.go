package storage

import (
	"context"
	"io"
)

// Storage persists uploaded claim images and returns a public URL. Blob
// storage and the local-disk fallback both satisfy this.
type Storage interface {
	Store(ctx context.Context, filename string, r io.Reader) (string, error)
}
