package table

import (
	"context"

	"github.com/apache/arrow/go/v14/arrow"

	"filetable-gateway/internal/model"
)

// InferFunc derives a data schema from a set of discovered files. Returning
// a nil schema with a nil error means the format declined to infer one; it
// never means an empty schema. A non-nil error is a collaborator failure and
// is propagated as-is.
type InferFunc func(ctx context.Context, files []model.FileRef) (Schema, error)

// FormatBinding describes a concrete file-format implementation. Bindings
// are composed into the resolver via dependency injection; format-specific
// behavior is expressed by implementing this interface, not by subclassing.
type FormatBinding interface {
	// Name is a stable human-readable format identifier. It appears in
	// error messages and capability negotiation and is never parsed.
	Name() string

	// Infer derives a data schema from file contents, following the
	// InferFunc contract.
	Infer(ctx context.Context, files []model.FileRef) (Schema, error)

	// SupportsDataType reports whether the format can read columns of the
	// given type.
	SupportsDataType(arrow.DataType) bool

	// Fallback returns an alternate, legacy implementation of the same
	// format, or nil when none exists. Callers use it to downgrade for
	// compatibility; the resolver itself never invokes it.
	Fallback() FormatBinding
}

// BaseFormat carries the default binding behavior: every data type is
// supported and no fallback implementation exists. Concrete formats embed it
// and override what they restrict.
type BaseFormat struct{}

func (BaseFormat) SupportsDataType(arrow.DataType) bool { return true }

func (BaseFormat) Fallback() FormatBinding { return nil }
