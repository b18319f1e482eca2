package discovery

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"github.com/colinmarc/hdfs/v2"

	"filetable-gateway/internal/model"
)

// HDFSStore lists and reads data files on an HDFS cluster.
type HDFSStore struct {
	client   *hdfs.Client
	nameNode string
}

// NewHDFSStore connects to the configured NameNode.
func NewHDFSStore(cfg *StoreConfig) (*HDFSStore, error) {
	if cfg.NameNode == "" {
		return nil, fmt.Errorf("HDFS name node address is required")
	}

	user := cfg.User
	if user == "" {
		user = "hdfs"
	}

	client, err := hdfs.NewClient(hdfs.ClientOptions{
		Addresses: []string{cfg.NameNode},
		User:      user,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to HDFS name node %s: %w", cfg.NameNode, err)
	}

	return &HDFSStore{client: client, nameNode: cfg.NameNode}, nil
}

// List walks root recursively and returns every regular file, sorted by path.
func (s *HDFSStore) List(ctx context.Context, root string) ([]model.FileRef, error) {
	var files []model.FileRef

	err := s.walk(ctx, root, &files)
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (s *HDFSStore) walk(ctx context.Context, dir string, out *[]model.FileRef) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	entries, err := s.client.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to list HDFS directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		full := path.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := s.walk(ctx, full, out); err != nil {
				return err
			}
			continue
		}
		*out = append(*out, model.FileRef{
			Path:    full,
			Size:    entry.Size(),
			ModTime: entry.ModTime(),
		})
	}
	return nil
}

// Open opens a single HDFS file for reading.
func (s *HDFSStore) Open(ctx context.Context, filePath string) (io.ReadCloser, error) {
	reader, err := s.client.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("HDFS file not found: %s", filePath)
		}
		return nil, fmt.Errorf("failed to open HDFS file %s: %w", filePath, err)
	}
	return reader, nil
}

// Close releases the NameNode connection.
func (s *HDFSStore) Close() error {
	return s.client.Close()
}
