package table

import (
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v14/arrow"
)

// ParseDataType maps a declared type name onto an Arrow type. The accepted
// names are the ones TypeName produces, so declared schemas round-trip.
func ParseDataType(name string) (arrow.DataType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "boolean", "bool":
		return arrow.FixedWidthTypes.Boolean, nil
	case "int8", "tinyint":
		return arrow.PrimitiveTypes.Int8, nil
	case "int16", "smallint":
		return arrow.PrimitiveTypes.Int16, nil
	case "int32", "int", "integer":
		return arrow.PrimitiveTypes.Int32, nil
	case "int64", "long", "bigint":
		return arrow.PrimitiveTypes.Int64, nil
	case "float32", "float":
		return arrow.PrimitiveTypes.Float32, nil
	case "float64", "double":
		return arrow.PrimitiveTypes.Float64, nil
	case "string", "utf8", "varchar", "text":
		return arrow.BinaryTypes.String, nil
	case "binary", "bytes":
		return arrow.BinaryTypes.Binary, nil
	case "date":
		return arrow.FixedWidthTypes.Date32, nil
	case "timestamp":
		return arrow.FixedWidthTypes.Timestamp_us, nil
	default:
		return nil, fmt.Errorf("unknown data type: %s", name)
	}
}

// TypeName returns the canonical declared name for an Arrow type, used in
// schema descriptions and error payloads.
func TypeName(dt arrow.DataType) string {
	switch dt.ID() {
	case arrow.BOOL:
		return "boolean"
	case arrow.INT8:
		return "int8"
	case arrow.INT16:
		return "int16"
	case arrow.INT32:
		return "int32"
	case arrow.INT64:
		return "int64"
	case arrow.FLOAT32:
		return "float32"
	case arrow.FLOAT64:
		return "float64"
	case arrow.STRING, arrow.LARGE_STRING:
		return "string"
	case arrow.BINARY, arrow.LARGE_BINARY:
		return "binary"
	case arrow.DATE32, arrow.DATE64:
		return "date"
	case arrow.TIMESTAMP:
		return "timestamp"
	default:
		return dt.String()
	}
}
