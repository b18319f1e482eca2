package avro

import (
	"encoding/json"
	"fmt"

	"github.com/apache/arrow/go/v14/arrow"

	"filetable-gateway/internal/table"
)

// recordSchema converts a top-level Avro record schema (JSON text) into a
// column schema.
func recordSchema(schemaJSON string) (table.Schema, error) {
	var parsed interface{}
	if err := json.Unmarshal([]byte(schemaJSON), &parsed); err != nil {
		return nil, fmt.Errorf("invalid Avro schema JSON: %w", err)
	}

	record, ok := parsed.(map[string]interface{})
	if !ok || record["type"] != "record" {
		return nil, fmt.Errorf("top-level Avro schema must be a record")
	}
	fields, ok := record["fields"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("record schema is missing fields")
	}

	schema := make(table.Schema, 0, len(fields))
	for _, raw := range fields {
		field, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("malformed record field")
		}
		name, _ := field["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("record field is missing a name")
		}
		dt, nullable, err := dataType(field["type"])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		schema = append(schema, table.Column{Name: name, Type: dt, Nullable: nullable})
	}
	return schema, nil
}

// dataType converts one Avro type declaration. The returned bool reports
// whether the declaration admits null (a union with "null").
func dataType(decl interface{}) (arrow.DataType, bool, error) {
	switch t := decl.(type) {
	case string:
		dt, err := primitiveType(t)
		return dt, false, err

	case []interface{}:
		// Union: nullable when one branch is "null"; multi-branch
		// unions beyond [null, X] have no single column type.
		nullable := false
		var branches []interface{}
		for _, branch := range t {
			if s, ok := branch.(string); ok && s == "null" {
				nullable = true
				continue
			}
			branches = append(branches, branch)
		}
		if len(branches) != 1 {
			return nil, false, fmt.Errorf("unsupported union with %d non-null branches", len(branches))
		}
		dt, _, err := dataType(branches[0])
		return dt, nullable, err

	case map[string]interface{}:
		dt, err := complexType(t)
		return dt, false, err

	default:
		return nil, false, fmt.Errorf("unsupported Avro type declaration %v", decl)
	}
}

func primitiveType(name string) (arrow.DataType, error) {
	switch name {
	case "boolean":
		return arrow.FixedWidthTypes.Boolean, nil
	case "int":
		return arrow.PrimitiveTypes.Int32, nil
	case "long":
		return arrow.PrimitiveTypes.Int64, nil
	case "float":
		return arrow.PrimitiveTypes.Float32, nil
	case "double":
		return arrow.PrimitiveTypes.Float64, nil
	case "string":
		return arrow.BinaryTypes.String, nil
	case "bytes":
		return arrow.BinaryTypes.Binary, nil
	default:
		return nil, fmt.Errorf("unsupported Avro primitive %q", name)
	}
}

func complexType(decl map[string]interface{}) (arrow.DataType, error) {
	typeName, _ := decl["type"].(string)

	// Logical types refine the underlying primitive.
	if logical, ok := decl["logicalType"].(string); ok {
		switch logical {
		case "date":
			return arrow.FixedWidthTypes.Date32, nil
		case "timestamp-millis":
			return arrow.FixedWidthTypes.Timestamp_ms, nil
		case "timestamp-micros":
			return arrow.FixedWidthTypes.Timestamp_us, nil
		case "decimal":
			precision, _ := decl["precision"].(float64)
			scale, _ := decl["scale"].(float64)
			return &arrow.Decimal128Type{Precision: int32(precision), Scale: int32(scale)}, nil
		}
	}

	switch typeName {
	case "record":
		nested, err := recordSchema(mustJSON(decl))
		if err != nil {
			return nil, err
		}
		fields := make([]arrow.Field, len(nested))
		for i, col := range nested {
			fields[i] = arrow.Field{Name: col.Name, Type: col.Type, Nullable: col.Nullable}
		}
		return arrow.StructOf(fields...), nil

	case "array":
		elem, nullable, err := dataType(decl["items"])
		if err != nil {
			return nil, err
		}
		if nullable {
			return arrow.ListOfField(arrow.Field{Name: "item", Type: elem, Nullable: true}), nil
		}
		return arrow.ListOf(elem), nil

	case "map":
		value, _, err := dataType(decl["values"])
		if err != nil {
			return nil, err
		}
		return arrow.MapOf(arrow.BinaryTypes.String, value), nil

	case "enum":
		return arrow.BinaryTypes.String, nil

	case "fixed":
		size, _ := decl["size"].(float64)
		return &arrow.FixedSizeBinaryType{ByteWidth: int(size)}, nil

	default:
		// A wrapped primitive, e.g. {"type": "string"}.
		return primitiveType(typeName)
	}
}

func mustJSON(v interface{}) string {
	data, _ := json.Marshal(v)
	return string(data)
}
