package table

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/apache/arrow/go/v14/arrow"

	"filetable-gateway/internal/model"
)

func col(name string, dt arrow.DataType, nullable bool) Column {
	return Column{Name: name, Type: dt, Nullable: nullable}
}

func staticInfer(schema Schema) InferFunc {
	return func(ctx context.Context, files []model.FileRef) (Schema, error) {
		return schema, nil
	}
}

func TestResolveWithUserSchema(t *testing.T) {
	in := ResolveInput{
		UserSchema: Schema{
			col("id", arrow.PrimitiveTypes.Int64, false),
			col("name", arrow.BinaryTypes.String, true),
		},
		PartitionSchema: Schema{
			col("region", arrow.BinaryTypes.String, false),
		},
		Mode:       CaseInsensitive,
		FormatName: "csv",
	}

	res, err := ResolveSchema(context.Background(), in)
	if err != nil {
		t.Fatalf("ResolveSchema failed: %v", err)
	}

	// Data columns come back all nullable regardless of declaration.
	wantData := Schema{
		col("id", arrow.PrimitiveTypes.Int64, true),
		col("name", arrow.BinaryTypes.String, true),
	}
	if !res.DataSchema.Equal(wantData) {
		t.Errorf("data schema = %v, want %v", res.DataSchema.Names(), wantData.Names())
	}

	// Table schema is data columns followed by partition columns with their
	// declared nullability intact.
	wantTable := append(wantData, col("region", arrow.BinaryTypes.String, false))
	if !res.TableSchema.Equal(wantTable) {
		t.Errorf("table schema = %v, want %v", res.TableSchema.Names(), wantTable.Names())
	}
}

func TestResolveDropsUserDeclaredPartitionColumns(t *testing.T) {
	// The user declares the partition column with a different type; the
	// declaration is dropped, the partition schema wins.
	in := ResolveInput{
		UserSchema: Schema{
			col("value", arrow.PrimitiveTypes.Int64, false),
			col("year", arrow.BinaryTypes.String, false),
		},
		PartitionSchema: Schema{
			col("year", arrow.PrimitiveTypes.Int64, false),
		},
		Mode:       CaseInsensitive,
		FormatName: "parquet",
	}

	res, err := ResolveSchema(context.Background(), in)
	if err != nil {
		t.Fatalf("ResolveSchema failed: %v", err)
	}

	if len(res.DataSchema) != 1 || res.DataSchema[0].Name != "value" {
		t.Fatalf("data schema = %v, want [value]", res.DataSchema.Names())
	}
	if len(res.TableSchema) != 2 {
		t.Fatalf("table schema = %v, want 2 columns", res.TableSchema.Names())
	}
	if got := res.TableSchema[1]; got.Name != "year" || !arrow.TypeEqual(got.Type, arrow.PrimitiveTypes.Int64) {
		t.Errorf("partition column = %s %s, want year int64", got.Name, got.Type)
	}
}

func TestResolveRemovesInferredPartitionOverlap(t *testing.T) {
	// Inference may report a column that also appears in the directory
	// structure; the file-borne copy is removed before concatenation.
	in := ResolveInput{
		Infer: staticInfer(Schema{
			col("id", arrow.PrimitiveTypes.Int64, false),
			col("region", arrow.BinaryTypes.String, false),
		}),
		PartitionSchema: Schema{
			col("region", arrow.BinaryTypes.String, true),
		},
		Mode:       CaseInsensitive,
		FormatName: "json",
	}

	res, err := ResolveSchema(context.Background(), in)
	if err != nil {
		t.Fatalf("ResolveSchema failed: %v", err)
	}

	// DataSchema still carries the inferred column; only TableSchema drops it.
	if len(res.DataSchema) != 2 {
		t.Errorf("data schema = %v, want 2 columns", res.DataSchema.Names())
	}
	want := []string{"id", "region"}
	if len(res.TableSchema) != 2 || res.TableSchema[0].Name != want[0] || res.TableSchema[1].Name != want[1] {
		t.Errorf("table schema = %v, want %v", res.TableSchema.Names(), want)
	}
	// The surviving region column is the partition one.
	if !res.TableSchema[1].Nullable {
		t.Errorf("expected partition region column, got file-borne copy")
	}
}

func TestResolveColumnCountIdentity(t *testing.T) {
	in := ResolveInput{
		Infer: staticInfer(Schema{
			col("a", arrow.PrimitiveTypes.Int64, false),
			col("b", arrow.BinaryTypes.String, false),
			col("p", arrow.BinaryTypes.String, false),
		}),
		PartitionSchema: Schema{
			col("p", arrow.BinaryTypes.String, false),
			col("q", arrow.PrimitiveTypes.Int64, false),
		},
		Mode:       CaseInsensitive,
		FormatName: "csv",
	}

	res, err := ResolveSchema(context.Background(), in)
	if err != nil {
		t.Fatalf("ResolveSchema failed: %v", err)
	}

	overlap := 1 // p
	want := len(res.DataSchema) - overlap + 2
	if len(res.TableSchema) != want {
		t.Errorf("table schema has %d columns, want %d", len(res.TableSchema), want)
	}
}

func TestResolveDuplicateDataColumn(t *testing.T) {
	tests := []struct {
		name string
		mode CaseSensitivityMode
		cols Schema
		dup  bool
	}{
		{
			name: "exact duplicate",
			mode: CaseSensitive,
			cols: Schema{col("id", arrow.PrimitiveTypes.Int64, false), col("id", arrow.PrimitiveTypes.Int64, false)},
			dup:  true,
		},
		{
			name: "case-insensitive collision",
			mode: CaseInsensitive,
			cols: Schema{col("Id", arrow.PrimitiveTypes.Int64, false), col("id", arrow.PrimitiveTypes.Int64, false)},
			dup:  true,
		},
		{
			name: "case-sensitive distinct",
			mode: CaseSensitive,
			cols: Schema{col("Id", arrow.PrimitiveTypes.Int64, false), col("id", arrow.PrimitiveTypes.Int64, false)},
			dup:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := ResolveInput{
				UserSchema: tt.cols,
				Mode:       tt.mode,
				FormatName: "csv",
			}
			_, err := ResolveSchema(context.Background(), in)
			var dupErr *DuplicateColumnError
			if tt.dup {
				if !errors.As(err, &dupErr) {
					t.Fatalf("expected DuplicateColumnError, got %v", err)
				}
				if dupErr.Kind != SchemaKindData {
					t.Errorf("error kind = %s, want data", dupErr.Kind)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestResolveDuplicatePartitionColumn(t *testing.T) {
	in := ResolveInput{
		UserSchema: Schema{col("id", arrow.PrimitiveTypes.Int64, false)},
		PartitionSchema: Schema{
			col("Region", arrow.BinaryTypes.String, false),
			col("region", arrow.BinaryTypes.String, false),
		},
		Mode:       CaseInsensitive,
		FormatName: "csv",
	}

	_, err := ResolveSchema(context.Background(), in)
	var dupErr *DuplicateColumnError
	if !errors.As(err, &dupErr) {
		t.Fatalf("expected DuplicateColumnError, got %v", err)
	}
	if dupErr.Kind != SchemaKindPartition {
		t.Errorf("error kind = %s, want partitioning", dupErr.Kind)
	}
}

func TestResolveValidationOrder(t *testing.T) {
	// A data duplicate and a partition duplicate are both present; the data
	// one must be reported.
	in := ResolveInput{
		UserSchema: Schema{
			col("id", arrow.PrimitiveTypes.Int64, false),
			col("ID", arrow.PrimitiveTypes.Int64, false),
		},
		PartitionSchema: Schema{
			col("p", arrow.BinaryTypes.String, false),
			col("P", arrow.BinaryTypes.String, false),
		},
		Mode:       CaseInsensitive,
		FormatName: "csv",
	}

	_, err := ResolveSchema(context.Background(), in)
	var dupErr *DuplicateColumnError
	if !errors.As(err, &dupErr) {
		t.Fatalf("expected DuplicateColumnError, got %v", err)
	}
	if dupErr.Kind != SchemaKindData {
		t.Errorf("error kind = %s, want data reported before partitioning", dupErr.Kind)
	}
}

func TestResolveUnsupportedType(t *testing.T) {
	in := ResolveInput{
		UserSchema: Schema{
			col("name", arrow.BinaryTypes.String, false),
			col("payload", arrow.StructOf(arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Int64}), false),
		},
		Mode: CaseInsensitive,
		SupportsType: func(dt arrow.DataType) bool {
			return dt.ID() != arrow.STRUCT
		},
		FormatName: "csv",
	}

	_, err := ResolveSchema(context.Background(), in)
	var typeErr *UnsupportedTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected UnsupportedTypeError, got %v", err)
	}
	if typeErr.Column != "payload" || typeErr.Format != "csv" {
		t.Errorf("error = %v, want csv/payload", typeErr)
	}
}

func TestResolveUnsupportedTypeSkipsPartitionColumns(t *testing.T) {
	// Type support applies to data columns only.
	in := ResolveInput{
		UserSchema: Schema{col("name", arrow.BinaryTypes.String, false)},
		PartitionSchema: Schema{
			col("year", arrow.PrimitiveTypes.Int64, false),
		},
		Mode: CaseInsensitive,
		SupportsType: func(dt arrow.DataType) bool {
			return dt.ID() == arrow.STRING
		},
		FormatName: "text",
	}

	if _, err := ResolveSchema(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolveInferenceDeclined(t *testing.T) {
	in := ResolveInput{
		Infer: func(ctx context.Context, files []model.FileRef) (Schema, error) {
			return nil, nil
		},
		Mode:       CaseInsensitive,
		FormatName: "csv",
	}

	_, err := ResolveSchema(context.Background(), in)
	var infErr *InferenceFailedError
	if !errors.As(err, &infErr) {
		t.Fatalf("expected InferenceFailedError, got %v", err)
	}
	if infErr.Format != "csv" {
		t.Errorf("error format = %s, want csv", infErr.Format)
	}
}

func TestResolveInferenceErrorPropagates(t *testing.T) {
	boom := fmt.Errorf("storage unreachable")
	in := ResolveInput{
		Infer: func(ctx context.Context, files []model.FileRef) (Schema, error) {
			return nil, boom
		},
		Mode:       CaseInsensitive,
		FormatName: "parquet",
	}

	_, err := ResolveSchema(context.Background(), in)
	if !errors.Is(err, boom) {
		t.Fatalf("expected propagated inference error, got %v", err)
	}
}

func TestResolveDeterministic(t *testing.T) {
	in := ResolveInput{
		Infer: staticInfer(Schema{
			col("a", arrow.PrimitiveTypes.Int64, false),
			col("b", arrow.BinaryTypes.String, true),
		}),
		PartitionSchema: Schema{col("p", arrow.BinaryTypes.String, false)},
		Mode:            CaseInsensitive,
		FormatName:      "json",
	}

	first, err := ResolveSchema(context.Background(), in)
	if err != nil {
		t.Fatalf("first resolution failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		res, err := ResolveSchema(context.Background(), in)
		if err != nil {
			t.Fatalf("resolution %d failed: %v", i, err)
		}
		if !res.TableSchema.Equal(first.TableSchema) {
			t.Fatalf("resolution %d produced different schema: %v vs %v", i, res.TableSchema.Names(), first.TableSchema.Names())
		}
	}
}
