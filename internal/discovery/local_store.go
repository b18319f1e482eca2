package discovery

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"filetable-gateway/internal/model"
)

// LocalStore reads files from the local file system. Used for development
// and tests; production deployments point at one of the remote backends.
type LocalStore struct{}

// NewLocalStore creates a local file-system store.
func NewLocalStore() *LocalStore {
	return &LocalStore{}
}

// List walks root recursively and returns every regular file, sorted by path.
func (s *LocalStore) List(ctx context.Context, root string) ([]model.FileRef, error) {
	var files []model.FileRef

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, model.FileRef{
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Open opens a single file for reading.
func (s *LocalStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}
