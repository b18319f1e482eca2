package discovery

import (
	"context"
	"fmt"
	"io"

	"filetable-gateway/internal/model"
)

// Store abstracts a storage backend that can enumerate and open data files.
// Paths handed to Open come from List, so implementations may treat them as
// backend-native keys.
type Store interface {
	// List returns every regular file under root, recursively, in a
	// deterministic order.
	List(ctx context.Context, root string) ([]model.FileRef, error)

	// Open returns the contents of a single file.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// StoreConfig selects and configures a storage backend.
type StoreConfig struct {
	// Backend is one of: local, hdfs, s3, minio, azure, oss, cos.
	Backend string `json:"backend" mapstructure:"backend"`

	Endpoint  string `json:"endpoint,omitempty" mapstructure:"endpoint"`
	Region    string `json:"region,omitempty" mapstructure:"region"`
	Bucket    string `json:"bucket,omitempty" mapstructure:"bucket"`
	AccessKey string `json:"accessKey,omitempty" mapstructure:"access_key"`
	SecretKey string `json:"secretKey,omitempty" mapstructure:"secret_key"`
	Token     string `json:"token,omitempty" mapstructure:"token"`
	Secure    bool   `json:"secure,omitempty" mapstructure:"secure"`

	// HDFS-specific
	NameNode string `json:"nameNode,omitempty" mapstructure:"name_node"`
	User     string `json:"user,omitempty" mapstructure:"user"`

	// Azure-specific
	AccountURL string `json:"accountUrl,omitempty" mapstructure:"account_url"`
	Container  string `json:"container,omitempty" mapstructure:"container"`
}

// NewStore creates the storage backend selected by the config.
func NewStore(ctx context.Context, cfg *StoreConfig) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store config is required")
	}

	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(), nil
	case "hdfs":
		return NewHDFSStore(cfg)
	case "s3":
		return NewS3Store(ctx, cfg)
	case "minio":
		return NewMinIOStore(cfg)
	case "azure":
		return NewAzureBlobStore(cfg)
	case "oss":
		return NewOSSStore(cfg)
	case "cos":
		return NewCOSStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}
