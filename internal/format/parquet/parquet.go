// Package parquet implements the Parquet format binding. The schema comes
// from the file footer of the first discovered file.
package parquet

import (
	"context"
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go/reader"

	"filetable-gateway/internal/discovery"
	"filetable-gateway/internal/model"
	"filetable-gateway/internal/table"
)

// FormatName identifies the Parquet format in error messages.
const FormatName = "parquet"

// Format is the Parquet format binding. Parquet's type system covers every
// column type this gateway produces, so the default all-supported behavior
// applies.
type Format struct {
	table.BaseFormat
	store discovery.Store
}

// New creates a Parquet binding over the given storage backend.
func New(store discovery.Store, options map[string]string) *Format {
	return &Format{store: store}
}

// Name returns the format identifier.
func (f *Format) Name() string {
	return FormatName
}

// Infer downloads the first discovered file and converts its footer schema.
// No files means inference declines.
func (f *Format) Infer(ctx context.Context, files []model.FileRef) (table.Schema, error) {
	if len(files) == 0 {
		return nil, nil
	}

	file := files[0]
	rc, err := f.store.Open(ctx, file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Path, err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.Path, err)
	}

	pf := newBytesFile(data)
	pr, err := reader.NewParquetReader(pf, nil, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to read Parquet footer of %s: %w", file.Path, err)
	}
	defer pr.ReadStop()

	schema, err := footerSchema(pr.Footer.GetSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to convert Parquet schema of %s: %w", file.Path, err)
	}
	return schema, nil
}
