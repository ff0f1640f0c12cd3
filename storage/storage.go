package storage

import (
	"context"
	"io"
)

// Client proxies byte-level operations to the remote blob backend. The
// coordinator never talks to the backend directly.
type Client interface {
	Store(ctx context.Context, key string, data io.Reader, size int64) error
	Retrieve(ctx context.Context, key string) (io.ReadCloser, error)
	Erase(ctx context.Context, key string) error
	Thumbnail(ctx context.Context, key string) ([]byte, error)
}
