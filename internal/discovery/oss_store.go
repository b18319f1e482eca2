package discovery

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"filetable-gateway/internal/model"
)

// OSSStore lists and reads data files in an Alibaba Cloud OSS bucket.
type OSSStore struct {
	bucket *oss.Bucket
}

// NewOSSStore creates an OSS-backed store.
func NewOSSStore(cfg *StoreConfig) (*OSSStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("access key and secret key are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	var client *oss.Client
	var err error
	if cfg.Token != "" {
		client, err = oss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, oss.SecurityToken(cfg.Token))
	} else {
		client, err = oss.New(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}

	return &OSSStore{bucket: bucket}, nil
}

// List returns every object under the given key prefix, following
// continuation markers until the listing is exhausted.
func (s *OSSStore) List(ctx context.Context, root string) ([]model.FileRef, error) {
	prefix := strings.TrimPrefix(root, "/")

	var files []model.FileRef
	marker := ""
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lor, err := s.bucket.ListObjects(oss.Prefix(prefix), oss.Marker(marker))
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}

		for _, obj := range lor.Objects {
			if strings.HasSuffix(obj.Key, "/") && obj.Size == 0 {
				continue
			}
			files = append(files, model.FileRef{
				Path:    obj.Key,
				Size:    obj.Size,
				ModTime: obj.LastModified,
			})
		}

		if !lor.IsTruncated {
			break
		}
		marker = lor.NextMarker
	}

	return files, nil
}

// Open downloads a single object.
func (s *OSSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := s.bucket.GetObject(strings.TrimPrefix(key, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	return reader, nil
}
