package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"filetable-gateway/internal/format"
	"filetable-gateway/internal/model"
	"filetable-gateway/internal/repository"
	"filetable-gateway/internal/table"
)

// fakeRepo is an in-memory TableRepository.
type fakeRepo struct {
	tables map[string]*model.TableDefinition
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tables: make(map[string]*model.TableDefinition)}
}

func (r *fakeRepo) Create(ctx context.Context, def *model.TableDefinition) error {
	for _, existing := range r.tables {
		if existing.Name == def.Name {
			return repository.ErrTableExists
		}
	}
	if def.ID == "" {
		def.ID = uuid.New().String()
	}
	r.tables[def.ID] = def
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*model.TableDefinition, error) {
	def, ok := r.tables[id]
	if !ok {
		return nil, repository.ErrTableNotFound
	}
	return def, nil
}

func (r *fakeRepo) GetByName(ctx context.Context, name string) (*model.TableDefinition, error) {
	for _, def := range r.tables {
		if def.Name == name {
			return def, nil
		}
	}
	return nil, repository.ErrTableNotFound
}

func (r *fakeRepo) GetAll(ctx context.Context, status model.TableStatus, limit, offset int) ([]*model.TableDefinition, int64, error) {
	var out []*model.TableDefinition
	for _, def := range r.tables {
		if status == "" || def.Status == status {
			out = append(out, def)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) Update(ctx context.Context, def *model.TableDefinition) error {
	r.tables[def.ID] = def
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	delete(r.tables, id)
	return nil
}

func newTestService(repo repository.TableRepository) TableService {
	metrics := NewResolutionMetricsCollector(time.Hour)
	return NewTableService(repo, format.DefaultRegistry(), metrics, table.CaseInsensitive, time.Minute)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCreateTableRejectsUnknownFormat(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.CreateTable(context.Background(), &model.CreateTableRequest{
		Name:    "events",
		Format:  "orc",
		Roots:   []string{"/data"},
		Storage: model.StorageConfig{Backend: "local"},
	})
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestCreateTableRejectsBadDeclaredType(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.CreateTable(context.Background(), &model.CreateTableRequest{
		Name:    "events",
		Format:  "csv",
		Roots:   []string{"/data"},
		Storage: model.StorageConfig{Backend: "local"},
		DeclaredSchema: model.DeclaredSchema{
			{Name: "id", Type: "geometry"},
		},
	})
	if err == nil || !strings.Contains(err.Error(), "unknown data type") {
		t.Fatalf("expected unknown data type error, got %v", err)
	}
}

func TestCreateTableRejectsDuplicateName(t *testing.T) {
	svc := newTestService(newFakeRepo())
	req := &model.CreateTableRequest{
		Name:    "events",
		Format:  "csv",
		Roots:   []string{"/data"},
		Storage: model.StorageConfig{Backend: "local"},
	}

	if _, err := svc.CreateTable(context.Background(), req); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.CreateTable(context.Background(), req); err != ErrTableExists {
		t.Fatalf("expected ErrTableExists, got %v", err)
	}
}

func TestDescribeSchemaEndToEnd(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "year=2023", "part-0.csv"), "id,name\n1,alice\n2,bob\n")
	writeFile(t, filepath.Join(root, "year=2024", "part-0.csv"), "id,name\n3,carol\n")

	svc := newTestService(newFakeRepo())
	def, err := svc.CreateTable(context.Background(), &model.CreateTableRequest{
		Name:    "events",
		Format:  "csv",
		Roots:   []string{root},
		Storage: model.StorageConfig{Backend: "local"},
	})
	if err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	schema, err := svc.DescribeSchema(context.Background(), def.ID)
	if err != nil {
		t.Fatalf("DescribeSchema failed: %v", err)
	}

	if schema.FileCount != 2 {
		t.Errorf("file count = %d, want 2", schema.FileCount)
	}
	if len(schema.PartitionColumns) != 1 || schema.PartitionColumns[0].Name != "year" || schema.PartitionColumns[0].Type != "int64" {
		t.Errorf("partition columns = %+v, want [year int64]", schema.PartitionColumns)
	}
	if len(schema.DataColumns) != 2 {
		t.Fatalf("data columns = %+v, want [id name]", schema.DataColumns)
	}
	if schema.DataColumns[0].Name != "id" || schema.DataColumns[0].Type != "int64" {
		t.Errorf("id column = %+v", schema.DataColumns[0])
	}
	if !schema.DataColumns[0].Nullable {
		t.Errorf("data columns are always nullable after resolution")
	}
	// Full schema is data columns then partition columns.
	if len(schema.Columns) != 3 || schema.Columns[2].Name != "year" {
		t.Errorf("columns = %+v, want id, name, year", schema.Columns)
	}
}

func TestDescribeSchemaDeclaredSchemaWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "part-0.csv"), "1,a\n2,b\n")

	svc := newTestService(newFakeRepo())
	def, err := svc.CreateTable(context.Background(), &model.CreateTableRequest{
		Name:    "declared",
		Format:  "csv",
		Roots:   []string{root},
		Options: map[string]string{"header": "false"},
		Storage: model.StorageConfig{Backend: "local"},
		DeclaredSchema: model.DeclaredSchema{
			{Name: "code", Type: "string"},
			{Name: "label", Type: "string"},
		},
	})
	if err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	schema, err := svc.DescribeSchema(context.Background(), def.ID)
	if err != nil {
		t.Fatalf("DescribeSchema failed: %v", err)
	}
	if len(schema.Columns) != 2 || schema.Columns[0].Name != "code" || schema.Columns[0].Type != "string" {
		t.Errorf("columns = %+v, want declared [code label] strings", schema.Columns)
	}
}

func TestDescribeSchemaMissingTable(t *testing.T) {
	svc := newTestService(newFakeRepo())

	if _, err := svc.DescribeSchema(context.Background(), "not-a-uuid"); err != ErrInvalidUUID {
		t.Errorf("expected ErrInvalidUUID, got %v", err)
	}
	if _, err := svc.DescribeSchema(context.Background(), uuid.New().String()); err != ErrTableNotFound {
		t.Errorf("expected ErrTableNotFound, got %v", err)
	}
}

func TestGetCapabilities(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "part-0.csv"), "id\n1\n")

	svc := newTestService(newFakeRepo())
	def, err := svc.CreateTable(context.Background(), &model.CreateTableRequest{
		Name:    "events",
		Format:  "csv",
		Roots:   []string{root},
		Storage: model.StorageConfig{Backend: "local"},
	})
	if err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	caps, err := svc.GetCapabilities(context.Background(), def.ID)
	if err != nil {
		t.Fatalf("GetCapabilities failed: %v", err)
	}
	want := []string{"batch_read", "batch_write", "truncate"}
	if len(caps.Capabilities) != len(want) {
		t.Fatalf("capabilities = %v, want %v", caps.Capabilities, want)
	}
	for i, c := range want {
		if caps.Capabilities[i] != c {
			t.Errorf("capability %d = %s, want %s", i, caps.Capabilities[i], c)
		}
	}
}

func TestListFormats(t *testing.T) {
	svc := newTestService(newFakeRepo())

	infos := svc.ListFormats()
	byName := make(map[string]model.FormatInfo)
	for _, info := range infos {
		byName[info.Name] = info
	}

	for _, name := range []string{"avro", "csv", "json", "parquet", "text"} {
		if _, ok := byName[name]; !ok {
			t.Errorf("format %s missing from listing", name)
		}
	}
	if byName["csv"].Fallback != "text" {
		t.Errorf("csv fallback = %q, want text", byName["csv"].Fallback)
	}
	if byName["parquet"].Fallback != "" {
		t.Errorf("parquet fallback = %q, want none", byName["parquet"].Fallback)
	}
}

func TestRefreshTableInvalidatesCache(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "part-0.csv"), "id\n1\n")

	svc := newTestService(newFakeRepo())
	def, err := svc.CreateTable(context.Background(), &model.CreateTableRequest{
		Name:    "events",
		Format:  "csv",
		Roots:   []string{root},
		Storage: model.StorageConfig{Backend: "local"},
	})
	if err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	first, err := svc.DescribeSchema(context.Background(), def.ID)
	if err != nil {
		t.Fatalf("DescribeSchema failed: %v", err)
	}
	if first.FileCount != 1 {
		t.Fatalf("file count = %d, want 1", first.FileCount)
	}

	// New file appears; the cached snapshot hides it until a refresh.
	writeFile(t, filepath.Join(root, "part-1.csv"), "id\n2\n")

	cached, err := svc.DescribeSchema(context.Background(), def.ID)
	if err != nil {
		t.Fatalf("DescribeSchema failed: %v", err)
	}
	if cached.FileCount != 1 {
		t.Errorf("cached file count = %d, want 1", cached.FileCount)
	}

	if err := svc.RefreshTable(context.Background(), def.ID); err != nil {
		t.Fatalf("RefreshTable failed: %v", err)
	}

	refreshed, err := svc.DescribeSchema(context.Background(), def.ID)
	if err != nil {
		t.Fatalf("DescribeSchema failed: %v", err)
	}
	if refreshed.FileCount != 2 {
		t.Errorf("refreshed file count = %d, want 2", refreshed.FileCount)
	}
}
