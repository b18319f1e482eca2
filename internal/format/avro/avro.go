// Package avro implements the Avro format binding. The schema comes from
// the Object Container File header, so inference reads only the head of the
// first discovered file.
package avro

import (
	"bufio"
	"context"
	"fmt"

	"github.com/linkedin/goavro/v2"

	"filetable-gateway/internal/discovery"
	"filetable-gateway/internal/model"
	"filetable-gateway/internal/table"
)

// FormatName identifies the Avro format in error messages.
const FormatName = "avro"

// Format is the Avro format binding.
type Format struct {
	table.BaseFormat
	store discovery.Store
}

// New creates an Avro binding over the given storage backend.
func New(store discovery.Store, options map[string]string) *Format {
	return &Format{store: store}
}

// Name returns the format identifier.
func (f *Format) Name() string {
	return FormatName
}

// Infer reads the OCF header of the first discovered file and converts the
// embedded writer schema. No files means inference declines.
func (f *Format) Infer(ctx context.Context, files []model.FileRef) (table.Schema, error) {
	if len(files) == 0 {
		return nil, nil
	}

	file := files[0]
	rc, err := f.store.Open(ctx, file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Path, err)
	}
	defer rc.Close()

	ocf, err := goavro.NewOCFReader(bufio.NewReader(rc))
	if err != nil {
		return nil, fmt.Errorf("failed to read Avro container header of %s: %w", file.Path, err)
	}

	schema, err := recordSchema(ocf.Codec().Schema())
	if err != nil {
		return nil, fmt.Errorf("failed to convert Avro schema of %s: %w", file.Path, err)
	}
	return schema, nil
}
