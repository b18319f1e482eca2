package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"filetable-gateway/internal/discovery"
	"filetable-gateway/internal/format"
	"filetable-gateway/internal/model"
	"filetable-gateway/internal/repository"
	"filetable-gateway/internal/table"
)

// Errors surfaced to controllers
var (
	ErrTableNotFound = repository.ErrTableNotFound
	ErrTableExists   = repository.ErrTableExists
	ErrInvalidUUID   = repository.ErrInvalidUUID
)

// TableService manages file-backed table definitions and their resolved
// schemas.
type TableService interface {
	CreateTable(ctx context.Context, req *model.CreateTableRequest) (*model.TableDefinition, error)
	GetTable(ctx context.Context, id string) (*model.TableDefinition, error)
	GetTableByName(ctx context.Context, name string) (*model.TableDefinition, error)
	ListTables(ctx context.Context, req *ListTablesRequest) (*ListTablesResponse, error)
	DeleteTable(ctx context.Context, id string) error
	DescribeSchema(ctx context.Context, id string) (*model.SchemaResponse, error)
	GetCapabilities(ctx context.Context, id string) (*model.CapabilitiesResponse, error)
	ListFormats() []model.FormatInfo
	RefreshTable(ctx context.Context, id string) error
	StartCacheCleanup(ctx context.Context)
}

type tableService struct {
	repo    repository.TableRepository
	formats *format.Registry
	cache   *tableCache
	metrics *ResolutionMetricsCollector
	mode    table.CaseSensitivityMode
}

type ListTablesRequest struct {
	Status model.TableStatus `json:"status,omitempty"`
	Limit  int               `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	Offset int               `json:"offset,omitempty" validate:"omitempty,min=0"`
}

type ListTablesResponse struct {
	Tables []*model.TableDefinition `json:"tables"`
	Total  int64                    `json:"total"`
	Limit  int                      `json:"limit"`
	Offset int                      `json:"offset"`
}

// NewTableService creates a new instance of TableService
func NewTableService(repo repository.TableRepository, formats *format.Registry, metrics *ResolutionMetricsCollector, mode table.CaseSensitivityMode, cacheTTL time.Duration) TableService {
	return &tableService{
		repo:    repo,
		formats: formats,
		cache:   newTableCache(cacheTTL),
		metrics: metrics,
		mode:    mode,
	}
}

// StartCacheCleanup runs the resolved-table cache cleanup loop until the
// context is cancelled.
func (s *tableService) StartCacheCleanup(ctx context.Context) {
	s.cache.Start(ctx)
}

func (s *tableService) CreateTable(ctx context.Context, req *model.CreateTableRequest) (*model.TableDefinition, error) {
	if !s.formats.IsSupported(req.Format) {
		return nil, fmt.Errorf("unsupported format: %s", req.Format)
	}

	// Reject unparseable declared column types up front so the definition
	// never reaches resolution in a broken state.
	if _, err := declaredToSchema(req.DeclaredSchema); err != nil {
		return nil, err
	}

	// Check if a table with the same name already exists
	if existing, _ := s.repo.GetByName(ctx, req.Name); existing != nil {
		return nil, repository.ErrTableExists
	}

	def := &model.TableDefinition{
		Name:           req.Name,
		Format:         req.Format,
		Roots:          model.StringSlice(req.Roots),
		Options:        model.StringMap(req.Options),
		Storage:        req.Storage,
		DeclaredSchema: req.DeclaredSchema,
		Status:         model.TableStatusActive,
	}

	if err := s.repo.Create(ctx, def); err != nil {
		return nil, fmt.Errorf("failed to create table definition: %w", err)
	}

	return def, nil
}

func (s *tableService) GetTable(ctx context.Context, id string) (*model.TableDefinition, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrInvalidUUID
	}

	def, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return def, nil
}

func (s *tableService) GetTableByName(ctx context.Context, name string) (*model.TableDefinition, error) {
	if name == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}

	return s.repo.GetByName(ctx, name)
}

func (s *tableService) ListTables(ctx context.Context, req *ListTablesRequest) (*ListTablesResponse, error) {
	// Set default values
	if req.Limit == 0 {
		req.Limit = 20
	}
	if req.Limit > 100 {
		req.Limit = 100
	}

	tables, total, err := s.repo.GetAll(ctx, req.Status, req.Limit, req.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	return &ListTablesResponse{
		Tables: tables,
		Total:  total,
		Limit:  req.Limit,
		Offset: req.Offset,
	}, nil
}

func (s *tableService) DeleteTable(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrInvalidUUID
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete table definition: %w", err)
	}

	s.cache.Invalidate(id)
	return nil
}

func (s *tableService) DescribeSchema(ctx context.Context, id string) (*model.SchemaResponse, error) {
	def, err := s.GetTable(ctx, id)
	if err != nil {
		return nil, err
	}

	t, err := s.resolveTable(ctx, def)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	schema, err := t.Schema(ctx)
	s.metrics.RecordResolution(&ResolutionMetrics{
		TableID:   def.ID,
		Format:    def.Format,
		Success:   err == nil,
		Duration:  time.Since(start),
		FileCount: len(t.Files()),
		Error:     errString(err),
		Timestamp: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	// Schema returned nil error, so DataSchema cannot fail: the resolution
	// outcome is memoized.
	dataSchema, _ := t.DataSchema(ctx)

	return &model.SchemaResponse{
		TableID:          def.ID,
		Name:             def.Name,
		Format:           def.Format,
		Columns:          columnInfos(schema),
		DataColumns:      columnInfos(dataSchema),
		PartitionColumns: columnInfos(t.PartitionSchema()),
		FileCount:        len(t.Files()),
	}, nil
}

func (s *tableService) GetCapabilities(ctx context.Context, id string) (*model.CapabilitiesResponse, error) {
	def, err := s.GetTable(ctx, id)
	if err != nil {
		return nil, err
	}

	caps := table.Capabilities()
	names := make([]string, 0, len(caps))
	for _, c := range caps {
		names = append(names, string(c))
	}

	return &model.CapabilitiesResponse{
		TableID:      def.ID,
		Format:       def.Format,
		Capabilities: names,
	}, nil
}

func (s *tableService) ListFormats() []model.FormatInfo {
	names := s.formats.Names()
	infos := make([]model.FormatInfo, 0, len(names))
	for _, name := range names {
		info := model.FormatInfo{Name: name}
		// Bindings only touch the store during inference, so a nil store is
		// safe for introspection.
		if binding, err := s.formats.Create(name, nil, nil); err == nil {
			if fb := binding.Fallback(); fb != nil {
				info.Fallback = fb.Name()
			}
		}
		infos = append(infos, info)
	}
	return infos
}

func (s *tableService) RefreshTable(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrInvalidUUID
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(id)
	return nil
}

// resolveTable builds (or fetches from cache) the FileTable for a definition.
// Discovery runs here; schema resolution itself stays lazy inside the
// FileTable.
func (s *tableService) resolveTable(ctx context.Context, def *model.TableDefinition) (*table.FileTable, error) {
	if cached, ok := s.cache.Get(def.ID); ok {
		return cached, nil
	}

	store, err := discovery.NewStore(ctx, storeConfig(&def.Storage))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}

	binding, err := s.formats.Create(def.Format, store, def.Options)
	if err != nil {
		return nil, err
	}

	userSchema, err := declaredToSchema(def.DeclaredSchema)
	if err != nil {
		return nil, err
	}

	catalog := discovery.NewCatalog(store)
	files, partitionSchema, err := catalog.Discover(ctx, def.Roots, def.Options, userSchema, s.mode)
	if err != nil {
		return nil, fmt.Errorf("discovery failed for table %s: %w", def.Name, err)
	}

	t := table.NewFileTable(def.Name, binding, files, partitionSchema, userSchema, s.mode)
	s.cache.Set(def.ID, t)
	return t, nil
}

// declaredToSchema converts an API-declared schema into resolver columns.
func declaredToSchema(declared model.DeclaredSchema) (table.Schema, error) {
	if len(declared) == 0 {
		return nil, nil
	}

	schema := make(table.Schema, 0, len(declared))
	for _, col := range declared {
		dt, err := table.ParseDataType(col.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		schema = append(schema, table.Column{
			Name:     col.Name,
			Type:     dt,
			Nullable: col.Nullable,
		})
	}
	return schema, nil
}

func storeConfig(sc *model.StorageConfig) *discovery.StoreConfig {
	return &discovery.StoreConfig{
		Backend:    sc.Backend,
		Endpoint:   sc.Endpoint,
		Region:     sc.Region,
		Bucket:     sc.Bucket,
		AccessKey:  sc.AccessKey,
		SecretKey:  sc.SecretKey,
		Token:      sc.Token,
		Secure:     sc.Secure,
		NameNode:   sc.NameNode,
		User:       sc.User,
		AccountURL: sc.AccountURL,
		Container:  sc.Container,
	}
}

func columnInfos(schema table.Schema) []model.ColumnInfo {
	infos := make([]model.ColumnInfo, 0, len(schema))
	for _, col := range schema {
		infos = append(infos, model.ColumnInfo{
			Name:     col.Name,
			Type:     table.TypeName(col.Type),
			Nullable: col.Nullable,
		})
	}
	return infos
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
