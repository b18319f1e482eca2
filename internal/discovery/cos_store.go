package discovery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tencentyun/cos-go-sdk-v5"

	"filetable-gateway/internal/model"
)

// COSStore lists and reads data files in a Tencent Cloud COS bucket.
type COSStore struct {
	client *cos.Client
}

// NewCOSStore creates a COS-backed store.
func NewCOSStore(cfg *StoreConfig) (*COSStore, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("secret ID and secret key are required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("region is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	bucketURL, err := cos.NewBucketURL(cfg.Bucket, cfg.Region, cfg.Secure)
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket URL: %w", err)
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: bucketURL}, &http.Client{
		Timeout: 30 * time.Second,
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		},
	})

	return &COSStore{client: client}, nil
}

// List returns every object under the given key prefix, following
// continuation markers until the listing is exhausted.
func (s *COSStore) List(ctx context.Context, root string) ([]model.FileRef, error) {
	prefix := strings.TrimPrefix(root, "/")

	var files []model.FileRef
	marker := ""
	for {
		resp, _, err := s.client.Bucket.Get(ctx, &cos.BucketGetOptions{
			Prefix: prefix,
			Marker: marker,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}

		for _, obj := range resp.Contents {
			if strings.HasSuffix(obj.Key, "/") && obj.Size == 0 {
				continue
			}
			modTime, _ := time.Parse(time.RFC3339, obj.LastModified)
			files = append(files, model.FileRef{
				Path:    obj.Key,
				Size:    int64(obj.Size),
				ModTime: modTime,
			})
		}

		if !resp.IsTruncated {
			break
		}
		marker = resp.NextMarker
	}

	return files, nil
}

// Open downloads a single object.
func (s *COSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.client.Object.Get(ctx, strings.TrimPrefix(key, "/"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	return resp.Body, nil
}
