// Package csv implements the CSV format binding with sampled schema
// detection.
package csv

import (
	"context"
	"fmt"
	"strconv"

	"github.com/apache/arrow/go/v14/arrow"

	"filetable-gateway/internal/discovery"
	"filetable-gateway/internal/format/text"
	"filetable-gateway/internal/model"
	"filetable-gateway/internal/table"
)

// FormatName identifies the CSV format in error messages.
const FormatName = "csv"

// Option keys understood by the CSV binding.
const (
	OptionDelimiter  = "delimiter"
	OptionHeader     = "header"
	OptionSampleSize = "sampleSize"
)

// Format is the CSV format binding. Schema inference samples the first
// non-empty discovered file.
type Format struct {
	store    discovery.Store
	detector *Detector
	fallback table.FormatBinding
}

// New creates a CSV binding over the given storage backend.
func New(store discovery.Store, options map[string]string) *Format {
	cfg := &DetectorConfig{HasHeader: true}
	if v, ok := options[OptionDelimiter]; ok && len(v) > 0 {
		cfg.Delimiter = rune(v[0])
	}
	if v, ok := options[OptionHeader]; ok {
		cfg.HasHeader = v != "false"
	}
	if v, ok := options[OptionSampleSize]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SampleSize = n
		}
	}

	return &Format{
		store:    store,
		detector: NewDetector(cfg),
		fallback: text.New(),
	}
}

// Name returns the format identifier.
func (f *Format) Name() string {
	return FormatName
}

// Infer detects the schema from the first file that yields one. A set of
// files with no inferable content declines rather than erroring.
func (f *Format) Infer(ctx context.Context, files []model.FileRef) (table.Schema, error) {
	for _, file := range files {
		rc, err := f.store.Open(ctx, file.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", file.Path, err)
		}
		schema, err := f.detector.Detect(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to detect schema of %s: %w", file.Path, err)
		}
		if schema != nil {
			return schema, nil
		}
	}
	return nil, nil
}

// SupportsDataType rejects nested types: CSV cells hold scalars only.
func (f *Format) SupportsDataType(dt arrow.DataType) bool {
	switch dt.ID() {
	case arrow.STRUCT, arrow.LIST, arrow.LARGE_LIST, arrow.FIXED_SIZE_LIST, arrow.MAP:
		return false
	default:
		return true
	}
}

// Fallback returns the legacy text binding.
func (f *Format) Fallback() table.FormatBinding {
	return f.fallback
}
