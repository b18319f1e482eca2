package table

import (
	"context"
	"sync"

	"filetable-gateway/internal/model"
)

// FileTable is a file-backed table whose schema is resolved lazily, exactly
// once, on first access. The resolution outcome (success or failure) is
// memoized for the table's lifetime: concurrent first accesses are
// serialized so a single goroutine performs the resolution and all others
// observe the memoized result. Once computed, the schema is immutable and
// safely read without further locking.
type FileTable struct {
	name       string
	format     FormatBinding
	files      []model.FileRef
	partition  Schema
	userSchema Schema
	mode       CaseSensitivityMode

	once       sync.Once
	resolution *Resolution
	err        error
}

// NewFileTable builds a table over the given discovered files. userSchema
// may be nil, in which case the format's inference supplies the data schema
// on first access.
func NewFileTable(name string, format FormatBinding, files []model.FileRef, partitionSchema, userSchema Schema, mode CaseSensitivityMode) *FileTable {
	return &FileTable{
		name:       name,
		format:     format,
		files:      files,
		partition:  partitionSchema,
		userSchema: userSchema,
		mode:       mode,
	}
}

// Name returns the table name.
func (t *FileTable) Name() string {
	return t.name
}

// FormatName returns the bound format's identifier.
func (t *FileTable) FormatName() string {
	return t.format.Name()
}

// Files returns the discovered data files backing the table.
func (t *FileTable) Files() []model.FileRef {
	return t.files
}

// PartitionSchema returns the directory-derived columns.
func (t *FileTable) PartitionSchema() Schema {
	return t.partition
}

// Capabilities returns the fixed capability set shared by all file-backed
// tables.
func (t *FileTable) Capabilities() CapabilitySet {
	return Capabilities()
}

// Schema returns the resolved table schema, resolving it on first call.
func (t *FileTable) Schema(ctx context.Context) (Schema, error) {
	t.resolve(ctx)
	if t.err != nil {
		return nil, t.err
	}
	return t.resolution.TableSchema, nil
}

// DataSchema returns the file-content half of the resolved schema, resolving
// on first call. Every column is nullable.
func (t *FileTable) DataSchema(ctx context.Context) (Schema, error) {
	t.resolve(ctx)
	if t.err != nil {
		return nil, t.err
	}
	return t.resolution.DataSchema, nil
}

func (t *FileTable) resolve(ctx context.Context) {
	t.once.Do(func() {
		t.resolution, t.err = ResolveSchema(ctx, ResolveInput{
			UserSchema:      t.userSchema,
			Files:           t.files,
			Infer:           t.format.Infer,
			PartitionSchema: t.partition,
			Mode:            t.mode,
			SupportsType:    t.format.SupportsDataType,
			FormatName:      t.format.Name(),
		})
	})
}
