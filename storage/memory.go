package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
)

var ErrObjectNotFound = errors.New("object not found")

// MemoryClient is an in-memory Client for behavioural tests. Individual
// operations can be forced to fail to exercise the coordinator's ordering
// contracts.
type MemoryClient struct {
	mu      sync.RWMutex
	objects map[string][]byte
	thumbs  map[string][]byte

	FailStore     error
	FailRetrieve  error
	FailErase     error
	FailThumbnail error
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		objects: make(map[string][]byte),
		thumbs:  make(map[string][]byte),
	}
}

func (c *MemoryClient) Store(ctx context.Context, key string, data io.Reader, size int64) error {
	if c.FailStore != nil {
		return c.FailStore
	}

	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[key] = buf
	return nil
}

func (c *MemoryClient) Retrieve(ctx context.Context, key string) (io.ReadCloser, error) {
	if c.FailRetrieve != nil {
		return nil, c.FailRetrieve
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	buf, exists := c.objects[key]
	if !exists {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(buf)), nil
}

func (c *MemoryClient) Erase(ctx context.Context, key string) error {
	if c.FailErase != nil {
		return c.FailErase
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, key)
	return nil
}

func (c *MemoryClient) Thumbnail(ctx context.Context, key string) ([]byte, error) {
	if c.FailThumbnail != nil {
		return nil, c.FailThumbnail
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	thumb, exists := c.thumbs[key]
	if !exists {
		return nil, ErrObjectNotFound
	}
	return thumb, nil
}

// PutThumbnail seeds a backend-side thumbnail, mimicking the processing
// pipeline that produces stills next to stored videos.
func (c *MemoryClient) PutThumbnail(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.thumbs[key] = data
}

// Has reports whether bytes exist under key.
func (c *MemoryClient) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.objects[key]
	return exists
}
