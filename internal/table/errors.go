package table

import (
	"fmt"

	"github.com/apache/arrow/go/v14/arrow"
)

// SchemaKind identifies which half of a table schema a validation error
// refers to.
type SchemaKind string

const (
	SchemaKindData      SchemaKind = "data"
	SchemaKindPartition SchemaKind = "partitioning"
)

// InferenceFailedError is returned when no user schema was declared and the
// format could not infer one from the discovered files. It is terminal: the
// caller must supply a schema explicitly.
type InferenceFailedError struct {
	Format string
}

func (e *InferenceFailedError) Error() string {
	return fmt.Sprintf("unable to infer schema for %s; it must be specified manually", e.Format)
}

// DuplicateColumnError reports a column-name collision under the active
// case-sensitivity mode.
type DuplicateColumnError struct {
	Kind SchemaKind
	Name string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("found duplicate column %q in the %s schema", e.Name, e.Kind)
}

// UnsupportedTypeError reports a data column whose type falls outside the
// format's supported-type set.
type UnsupportedTypeError struct {
	Format string
	Column string
	Type   arrow.DataType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s data source does not support column %q of type %s", e.Format, e.Column, e.Type)
}
