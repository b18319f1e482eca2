package discovery

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLocalStoreList(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "year=2024", "part-1.csv"), "b")
	writeFile(t, filepath.Join(root, "year=2023", "part-0.csv"), "a")
	writeFile(t, filepath.Join(root, "top.csv"), "c")

	store := NewLocalStore()
	files, err := store.List(context.Background(), root)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(files) != 3 {
		t.Fatalf("listed %d files, want 3", len(files))
	}
	if !sort.SliceIsSorted(files, func(i, j int) bool { return files[i].Path < files[j].Path }) {
		t.Error("listing is not sorted by path")
	}
	for _, f := range files {
		if f.Size == 0 {
			t.Errorf("file %s has zero size", f.Path)
		}
	}
}

func TestLocalStoreOpen(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "data.csv")
	writeFile(t, path, "id,name\n1,a\n")

	store := NewLocalStore()
	rc, err := store.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(content) != "id,name\n1,a\n" {
		t.Errorf("content = %q", content)
	}
}

func TestLocalStoreListCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "part-0.csv"), "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewLocalStore().List(ctx, root); err == nil {
		t.Error("expected error from cancelled context")
	}
}
