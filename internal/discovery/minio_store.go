package discovery

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"filetable-gateway/internal/model"
)

// MinIOStore lists and reads data files in a MinIO bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore creates a MinIO-backed store.
func NewMinIOStore(cfg *StoreConfig) (*MinIOStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, cfg.Token),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinIOStore{client: client, bucket: cfg.Bucket}, nil
}

// List returns every object under the given key prefix. MinIO listings are
// already lexicographically ordered.
func (s *MinIOStore) List(ctx context.Context, root string) ([]model.FileRef, error) {
	prefix := strings.TrimPrefix(root, "/")

	var files []model.FileRef
	objectCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list %s/%s: %w", s.bucket, prefix, object.Err)
		}
		if strings.HasSuffix(object.Key, "/") && object.Size == 0 {
			continue
		}
		files = append(files, model.FileRef{
			Path:    object.Key,
			Size:    object.Size,
			ModTime: object.LastModified,
		})
	}

	return files, nil
}

// Open downloads a single object.
func (s *MinIOStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, strings.TrimPrefix(key, "/"), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", s.bucket, key, err)
	}
	return obj, nil
}
