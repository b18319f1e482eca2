package discovery

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v14/arrow"

	"filetable-gateway/internal/model"
	"filetable-gateway/internal/table"
)

// fakeStore serves a fixed listing per root.
type fakeStore struct {
	files map[string][]model.FileRef
}

func (s *fakeStore) List(ctx context.Context, root string) ([]model.FileRef, error) {
	return s.files[root], nil
}

func (s *fakeStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func refs(paths ...string) []model.FileRef {
	out := make([]model.FileRef, len(paths))
	for i, p := range paths {
		out[i] = model.FileRef{Path: p, Size: 1}
	}
	return out
}

func TestDiscoverPartitionSchema(t *testing.T) {
	store := &fakeStore{files: map[string][]model.FileRef{
		"/data/events": refs(
			"/data/events/year=2023/region=us/part-0.parquet",
			"/data/events/year=2024/region=eu/part-0.parquet",
		),
	}}

	catalog := NewCatalog(store)
	files, partition, err := catalog.Discover(context.Background(), []string{"/data/events"}, nil, nil, table.CaseInsensitive)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if len(files) != 2 {
		t.Errorf("discovered %d files, want 2", len(files))
	}
	if len(partition) != 2 {
		t.Fatalf("partition schema = %v, want [year region]", partition.Names())
	}
	if partition[0].Name != "year" || !arrow.TypeEqual(partition[0].Type, arrow.PrimitiveTypes.Int64) {
		t.Errorf("year column = %s %s, want year int64", partition[0].Name, partition[0].Type)
	}
	if partition[1].Name != "region" || !arrow.TypeEqual(partition[1].Type, arrow.BinaryTypes.String) {
		t.Errorf("region column = %s %s, want region string", partition[1].Name, partition[1].Type)
	}
	if partition[0].Nullable || partition[1].Nullable {
		t.Errorf("no null markers observed, columns should not be nullable")
	}
}

func TestDiscoverNullMarkerMakesColumnNullable(t *testing.T) {
	store := &fakeStore{files: map[string][]model.FileRef{
		"/data": refs(
			"/data/region=us/part-0.csv",
			"/data/region=__HIVE_DEFAULT_PARTITION__/part-0.csv",
		),
	}}

	_, partition, err := NewCatalog(store).Discover(context.Background(), []string{"/data"}, nil, nil, table.CaseInsensitive)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(partition) != 1 || !partition[0].Nullable {
		t.Errorf("partition = %+v, want single nullable region column", partition)
	}
}

func TestDiscoverSkipsHiddenFiles(t *testing.T) {
	store := &fakeStore{files: map[string][]model.FileRef{
		"/data": refs(
			"/data/part-0.csv",
			"/data/_SUCCESS",
			"/data/.part-1.csv.crc",
		),
	}}

	files, _, err := NewCatalog(store).Discover(context.Background(), []string{"/data"}, nil, nil, table.CaseInsensitive)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 1 || files[0].Path != "/data/part-0.csv" {
		t.Errorf("files = %v, want only part-0.csv", files)
	}
}

func TestDiscoverGlobFilter(t *testing.T) {
	store := &fakeStore{files: map[string][]model.FileRef{
		"/data": refs(
			"/data/part-0.csv",
			"/data/part-1.json",
		),
	}}

	options := map[string]string{OptionPathGlobFilter: "*.csv"}
	files, _, err := NewCatalog(store).Discover(context.Background(), []string{"/data"}, options, nil, table.CaseInsensitive)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 1 || !strings.HasSuffix(files[0].Path, ".csv") {
		t.Errorf("files = %v, want only the csv file", files)
	}
}

func TestDiscoverConflictingStructures(t *testing.T) {
	store := &fakeStore{files: map[string][]model.FileRef{
		"/data": refs(
			"/data/year=2024/part-0.csv",
			"/data/region=us/part-0.csv",
		),
	}}

	_, _, err := NewCatalog(store).Discover(context.Background(), []string{"/data"}, nil, nil, table.CaseInsensitive)
	if err == nil || !strings.Contains(err.Error(), "conflicting directory structures") {
		t.Fatalf("expected conflicting structures error, got %v", err)
	}
}

func TestDiscoverEmptyRoot(t *testing.T) {
	store := &fakeStore{files: map[string][]model.FileRef{}}
	catalog := NewCatalog(store)

	// Existence checking is on by default.
	_, _, err := catalog.Discover(context.Background(), []string{"/missing"}, nil, nil, table.CaseInsensitive)
	if err == nil || !strings.Contains(err.Error(), "path does not contain any files") {
		t.Fatalf("expected missing-files error, got %v", err)
	}

	// Disabled, an empty root is fine.
	options := map[string]string{OptionCheckFilesExist: "false"}
	files, partition, err := catalog.Discover(context.Background(), []string{"/missing"}, options, nil, table.CaseInsensitive)
	if err != nil {
		t.Fatalf("Discover failed with existence checking off: %v", err)
	}
	if len(files) != 0 || len(partition) != 0 {
		t.Errorf("files=%v partition=%v, want both empty", files, partition)
	}
}

func TestDiscoverUserDeclaredPartitionTypeWins(t *testing.T) {
	store := &fakeStore{files: map[string][]model.FileRef{
		"/data": refs("/data/year=2024/part-0.csv"),
	}}

	userSchema := table.Schema{
		{Name: "Year", Type: arrow.BinaryTypes.String, Nullable: true},
	}
	_, partition, err := NewCatalog(store).Discover(context.Background(), []string{"/data"}, nil, userSchema, table.CaseInsensitive)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(partition) != 1 {
		t.Fatalf("partition = %v, want one column", partition.Names())
	}
	// Declared type and nullability replace the inferred int64, but the
	// directory-derived name is kept.
	if partition[0].Name != "year" || !arrow.TypeEqual(partition[0].Type, arrow.BinaryTypes.String) || !partition[0].Nullable {
		t.Errorf("partition column = %+v, want year string nullable", partition[0])
	}

	// Under case sensitivity the declared Year no longer matches.
	_, partition, err = NewCatalog(store).Discover(context.Background(), []string{"/data"}, nil, userSchema, table.CaseSensitive)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if !arrow.TypeEqual(partition[0].Type, arrow.PrimitiveTypes.Int64) {
		t.Errorf("case-sensitive partition type = %s, want inferred int64", partition[0].Type)
	}
}
