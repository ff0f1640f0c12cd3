package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
)

type MinIOClient struct {
	client *minio.Client
	bucket string
}

func NewMinIOClient(client *minio.Client, bucket string) *MinIOClient {
	return &MinIOClient{
		client: client,
		bucket: bucket,
	}
}

func (c *MinIOClient) Store(ctx context.Context, key string, data io.Reader, size int64) error {
	_, err := c.client.PutObject(ctx, c.bucket, key, data, size, minio.PutObjectOptions{
		ContentType: "video/mp4",
	})
	return err
}

func (c *MinIOClient) Retrieve(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}

	// GetObject is lazy; surface a missing or unreadable object now instead
	// of on the first Read deep inside response streaming.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}

	return obj, nil
}

func (c *MinIOClient) Erase(ctx context.Context, key string) error {
	return c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
}

func (c *MinIOClient) Thumbnail(ctx context.Context, key string) ([]byte, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, thumbKey(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	return io.ReadAll(obj)
}

// thumbKey maps a video object key to the backend-provided still image that
// sits next to it, e.g. "abc.mp4" -> "thumbs/abc.jpg".
func thumbKey(key string) string {
	base := strings.TrimSuffix(key, path.Ext(key))
	return path.Join("thumbs", base+".jpg")
}
