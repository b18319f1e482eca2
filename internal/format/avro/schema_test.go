package avro

import (
	"testing"

	"github.com/apache/arrow/go/v14/arrow"
)

func TestRecordSchemaPrimitives(t *testing.T) {
	schemaJSON := `{
		"type": "record",
		"name": "Event",
		"fields": [
			{"name": "id", "type": "long"},
			{"name": "name", "type": "string"},
			{"name": "ratio", "type": "double"},
			{"name": "flag", "type": "boolean"},
			{"name": "payload", "type": "bytes"}
		]
	}`

	schema, err := recordSchema(schemaJSON)
	if err != nil {
		t.Fatalf("recordSchema failed: %v", err)
	}
	if len(schema) != 5 {
		t.Fatalf("got %d columns, want 5", len(schema))
	}

	want := []arrow.DataType{
		arrow.PrimitiveTypes.Int64,
		arrow.BinaryTypes.String,
		arrow.PrimitiveTypes.Float64,
		arrow.FixedWidthTypes.Boolean,
		arrow.BinaryTypes.Binary,
	}
	for i, dt := range want {
		if !arrow.TypeEqual(schema[i].Type, dt) {
			t.Errorf("column %s type = %s, want %s", schema[i].Name, schema[i].Type, dt)
		}
		if schema[i].Nullable {
			t.Errorf("column %s should not be nullable", schema[i].Name)
		}
	}
}

func TestRecordSchemaNullableUnion(t *testing.T) {
	schemaJSON := `{
		"type": "record",
		"name": "Event",
		"fields": [
			{"name": "note", "type": ["null", "string"]}
		]
	}`

	schema, err := recordSchema(schemaJSON)
	if err != nil {
		t.Fatalf("recordSchema failed: %v", err)
	}
	if !schema[0].Nullable {
		t.Error("union with null should be nullable")
	}
	if !arrow.TypeEqual(schema[0].Type, arrow.BinaryTypes.String) {
		t.Errorf("note type = %s, want string", schema[0].Type)
	}
}

func TestRecordSchemaLogicalTypes(t *testing.T) {
	schemaJSON := `{
		"type": "record",
		"name": "Event",
		"fields": [
			{"name": "day", "type": {"type": "int", "logicalType": "date"}},
			{"name": "ts", "type": {"type": "long", "logicalType": "timestamp-micros"}},
			{"name": "amount", "type": {"type": "bytes", "logicalType": "decimal", "precision": 10, "scale": 2}}
		]
	}`

	schema, err := recordSchema(schemaJSON)
	if err != nil {
		t.Fatalf("recordSchema failed: %v", err)
	}

	if !arrow.TypeEqual(schema[0].Type, arrow.FixedWidthTypes.Date32) {
		t.Errorf("day type = %s, want date32", schema[0].Type)
	}
	if !arrow.TypeEqual(schema[1].Type, arrow.FixedWidthTypes.Timestamp_us) {
		t.Errorf("ts type = %s, want timestamp[us]", schema[1].Type)
	}
	dec, ok := schema[2].Type.(*arrow.Decimal128Type)
	if !ok || dec.Precision != 10 || dec.Scale != 2 {
		t.Errorf("amount type = %s, want decimal(10, 2)", schema[2].Type)
	}
}

func TestRecordSchemaNested(t *testing.T) {
	schemaJSON := `{
		"type": "record",
		"name": "Event",
		"fields": [
			{"name": "tags", "type": {"type": "array", "items": "string"}},
			{"name": "attrs", "type": {"type": "map", "values": "long"}},
			{"name": "loc", "type": {
				"type": "record",
				"name": "Loc",
				"fields": [
					{"name": "lat", "type": "double"},
					{"name": "lon", "type": "double"}
				]
			}}
		]
	}`

	schema, err := recordSchema(schemaJSON)
	if err != nil {
		t.Fatalf("recordSchema failed: %v", err)
	}

	if _, ok := schema[0].Type.(*arrow.ListType); !ok {
		t.Errorf("tags type = %s, want list", schema[0].Type)
	}
	if _, ok := schema[1].Type.(*arrow.MapType); !ok {
		t.Errorf("attrs type = %s, want map", schema[1].Type)
	}
	st, ok := schema[2].Type.(*arrow.StructType)
	if !ok {
		t.Fatalf("loc type = %s, want struct", schema[2].Type)
	}
	if len(st.Fields()) != 2 {
		t.Errorf("loc has %d fields, want 2", len(st.Fields()))
	}
}

func TestRecordSchemaRejectsNonRecord(t *testing.T) {
	if _, err := recordSchema(`"string"`); err == nil {
		t.Error("expected error for non-record top-level schema")
	}
}

func TestRecordSchemaRejectsWideUnion(t *testing.T) {
	schemaJSON := `{
		"type": "record",
		"name": "Event",
		"fields": [
			{"name": "v", "type": ["null", "string", "long"]}
		]
	}`
	if _, err := recordSchema(schemaJSON); err == nil {
		t.Error("expected error for union with multiple non-null branches")
	}
}
