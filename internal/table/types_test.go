package table

import (
	"testing"

	"github.com/apache/arrow/go/v14/arrow"
)

func TestParseDataTypeRoundTrip(t *testing.T) {
	// Every canonical name TypeName produces must parse back to the same
	// type.
	types := []arrow.DataType{
		arrow.FixedWidthTypes.Boolean,
		arrow.PrimitiveTypes.Int8,
		arrow.PrimitiveTypes.Int16,
		arrow.PrimitiveTypes.Int32,
		arrow.PrimitiveTypes.Int64,
		arrow.PrimitiveTypes.Float32,
		arrow.PrimitiveTypes.Float64,
		arrow.BinaryTypes.String,
		arrow.BinaryTypes.Binary,
		arrow.FixedWidthTypes.Date32,
		arrow.FixedWidthTypes.Timestamp_us,
	}

	for _, dt := range types {
		name := TypeName(dt)
		parsed, err := ParseDataType(name)
		if err != nil {
			t.Errorf("ParseDataType(%q) failed: %v", name, err)
			continue
		}
		if !arrow.TypeEqual(parsed, dt) {
			t.Errorf("round trip %s -> %q -> %s", dt, name, parsed)
		}
	}
}

func TestParseDataTypeAliases(t *testing.T) {
	tests := []struct {
		alias string
		want  arrow.DataType
	}{
		{"bigint", arrow.PrimitiveTypes.Int64},
		{"double", arrow.PrimitiveTypes.Float64},
		{"varchar", arrow.BinaryTypes.String},
		{"INT", arrow.PrimitiveTypes.Int32},
		{" long ", arrow.PrimitiveTypes.Int64},
	}

	for _, tt := range tests {
		got, err := ParseDataType(tt.alias)
		if err != nil {
			t.Errorf("ParseDataType(%q) failed: %v", tt.alias, err)
			continue
		}
		if !arrow.TypeEqual(got, tt.want) {
			t.Errorf("ParseDataType(%q) = %s, want %s", tt.alias, got, tt.want)
		}
	}
}

func TestParseDataTypeUnknown(t *testing.T) {
	if _, err := ParseDataType("geometry"); err == nil {
		t.Error("expected error for unknown type name")
	}
}
