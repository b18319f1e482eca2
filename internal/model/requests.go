package model

// CreateTableRequest registers a new file-backed table.
type CreateTableRequest struct {
	Name           string            `json:"name" binding:"required,min=1,max=255"`
	Format         string            `json:"format" binding:"required"`
	Roots          []string          `json:"roots" binding:"required,min=1,dive,required"`
	Options        map[string]string `json:"options,omitempty"`
	Storage        StorageConfig     `json:"storage" binding:"required"`
	DeclaredSchema DeclaredSchema    `json:"declaredSchema,omitempty" binding:"omitempty,dive"`
}

// ColumnInfo is one resolved column in API responses.
type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// SchemaResponse describes a resolved table schema.
type SchemaResponse struct {
	TableID          string       `json:"tableId"`
	Name             string       `json:"name"`
	Format           string       `json:"format"`
	Columns          []ColumnInfo `json:"columns"`
	DataColumns      []ColumnInfo `json:"dataColumns"`
	PartitionColumns []ColumnInfo `json:"partitionColumns"`
	FileCount        int          `json:"fileCount"`
}

// CapabilitiesResponse lists the operations a table supports.
type CapabilitiesResponse struct {
	TableID      string   `json:"tableId"`
	Format       string   `json:"format"`
	Capabilities []string `json:"capabilities"`
}

// FormatInfo describes one registered format binding.
type FormatInfo struct {
	Name     string `json:"name"`
	Fallback string `json:"fallback,omitempty"`
}
