package table

import (
	"github.com/apache/arrow/go/v14/arrow"
)

// Column is a single named, typed field of a table schema. The data type is
// an Arrow type, which covers primitive, struct, list and map kinds. A Column
// is immutable once constructed.
type Column struct {
	Name     string         `json:"name"`
	Type     arrow.DataType `json:"-"`
	Nullable bool           `json:"nullable"`
}

// Schema is an ordered sequence of columns. Column names need not be unique
// on input; uniqueness under the active case-sensitivity mode is enforced
// during resolution.
type Schema []Column

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, col := range s {
		names[i] = col.Name
	}
	return names
}

// AsNullable returns a copy of the schema with every column marked nullable.
// Files may be missing columns row-to-row, so downstream readers must
// tolerate absent values regardless of the declared source nullability.
func (s Schema) AsNullable() Schema {
	out := make(Schema, len(s))
	for i, col := range s {
		col.Nullable = true
		out[i] = col
	}
	return out
}

// Equal reports whether two schemas have the same columns in the same order,
// comparing names exactly, types structurally and nullability.
func (s Schema) Equal(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i].Name != other[i].Name || s[i].Nullable != other[i].Nullable {
			return false
		}
		if !arrow.TypeEqual(s[i].Type, other[i].Type) {
			return false
		}
	}
	return true
}

// canonicalKeys builds the duplicate-detection set for the schema.
func (s Schema) canonicalKeys(mode CaseSensitivityMode) map[string]struct{} {
	keys := make(map[string]struct{}, len(s))
	for _, col := range s {
		keys[CanonicalKey(col.Name, mode)] = struct{}{}
	}
	return keys
}

// duplicateName returns the first column name that collides with an earlier
// column under the given mode.
func (s Schema) duplicateName(mode CaseSensitivityMode) (string, bool) {
	seen := make(map[string]struct{}, len(s))
	for _, col := range s {
		key := CanonicalKey(col.Name, mode)
		if _, ok := seen[key]; ok {
			return col.Name, true
		}
		seen[key] = struct{}{}
	}
	return "", false
}
