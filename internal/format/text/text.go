// Package text implements the legacy single-column text format. It exists
// mainly as the compatibility fallback for the structured text formats.
package text

import (
	"context"

	"github.com/apache/arrow/go/v14/arrow"

	"filetable-gateway/internal/model"
	"filetable-gateway/internal/table"
)

// FormatName identifies the text format in error messages.
const FormatName = "text"

// Format exposes every file as rows of a single nullable string column.
type Format struct{}

// New creates the text format binding.
func New() *Format {
	return &Format{}
}

// Name returns the format identifier.
func (f *Format) Name() string {
	return FormatName
}

// Infer always succeeds: text files carry exactly one string column.
func (f *Format) Infer(ctx context.Context, files []model.FileRef) (table.Schema, error) {
	return table.Schema{
		{Name: "value", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil
}

// SupportsDataType restricts text tables to string columns.
func (f *Format) SupportsDataType(dt arrow.DataType) bool {
	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING:
		return true
	default:
		return false
	}
}

// Fallback returns nil: text is itself the fallback implementation.
func (f *Format) Fallback() table.FormatBinding {
	return nil
}
