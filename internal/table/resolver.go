package table

import (
	"context"

	"github.com/apache/arrow/go/v14/arrow"

	"filetable-gateway/internal/model"
)

// ResolveInput carries everything a single schema resolution needs.
type ResolveInput struct {
	// UserSchema is the caller-declared schema; nil when absent. When
	// present it is authoritative for column types and presence.
	UserSchema Schema

	// Files are the discovered data files handed to Infer when no user
	// schema was declared.
	Files []model.FileRef

	// Infer produces the data schema from file contents; may decline.
	Infer InferFunc

	// PartitionSchema holds the columns derived from the directory
	// structure. Owned by the discovery catalog; read-only here.
	PartitionSchema Schema

	// Mode governs every name comparison during this resolution.
	Mode CaseSensitivityMode

	// SupportsType restricts the data-column type set. nil means every
	// type is supported.
	SupportsType func(arrow.DataType) bool

	// FormatName appears in resolution error messages.
	FormatName string
}

// Resolution is the outcome of a successful schema resolution.
type Resolution struct {
	// DataSchema holds the columns read from file contents, all nullable.
	DataSchema Schema

	// TableSchema is DataSchema minus any partition overlap, followed by
	// the partition columns, each side in its original order.
	TableSchema Schema
}

// ResolveSchema merges the user-declared schema, the inferred data schema
// and the partition schema into one validated table schema. Every failure is
// terminal: no partial schema is ever returned, and re-running with
// identical inputs reproduces the identical result or error.
//
// Validation order is deliberate and stable: data-schema duplicates, then
// data-column type support, then partition-schema duplicates, then overlap
// removal and concatenation.
func ResolveSchema(ctx context.Context, in ResolveInput) (*Resolution, error) {
	dataSchema, err := deriveDataSchema(ctx, in)
	if err != nil {
		return nil, err
	}

	if name, ok := dataSchema.duplicateName(in.Mode); ok {
		return nil, &DuplicateColumnError{Kind: SchemaKindData, Name: name}
	}

	supports := in.SupportsType
	if supports == nil {
		supports = func(arrow.DataType) bool { return true }
	}
	for _, col := range dataSchema {
		if !supports(col.Type) {
			return nil, &UnsupportedTypeError{Format: in.FormatName, Column: col.Name, Type: col.Type}
		}
	}

	if name, ok := in.PartitionSchema.duplicateName(in.Mode); ok {
		return nil, &DuplicateColumnError{Kind: SchemaKindPartition, Name: name}
	}

	// Second-pass overlap removal: user-declared overlaps were already
	// dropped while deriving the data schema, but inferred schemas may
	// still carry partition columns.
	partitionKeys := in.PartitionSchema.canonicalKeys(in.Mode)
	resolved := make(Schema, 0, len(dataSchema)+len(in.PartitionSchema))
	for _, col := range dataSchema {
		if _, overlap := partitionKeys[CanonicalKey(col.Name, in.Mode)]; overlap {
			continue
		}
		resolved = append(resolved, col)
	}
	resolved = append(resolved, in.PartitionSchema...)

	return &Resolution{DataSchema: dataSchema, TableSchema: resolved}, nil
}

// deriveDataSchema produces the all-nullable data schema, preferring the
// user-declared schema over inference.
func deriveDataSchema(ctx context.Context, in ResolveInput) (Schema, error) {
	if in.UserSchema != nil {
		// User-declared partition columns are redundant: they are
		// dropped, not merged or type-checked against the partition
		// schema.
		partitionKeys := in.PartitionSchema.canonicalKeys(in.Mode)
		kept := make(Schema, 0, len(in.UserSchema))
		for _, col := range in.UserSchema {
			if _, ok := partitionKeys[CanonicalKey(col.Name, in.Mode)]; ok {
				continue
			}
			kept = append(kept, col)
		}
		return kept.AsNullable(), nil
	}

	if in.Infer == nil {
		return nil, &InferenceFailedError{Format: in.FormatName}
	}
	inferred, err := in.Infer(ctx, in.Files)
	if err != nil {
		return nil, err
	}
	if inferred == nil {
		return nil, &InferenceFailedError{Format: in.FormatName}
	}
	return inferred.AsNullable(), nil
}
