package parquet

import (
	"fmt"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/xitongsys/parquet-go/parquet"

	"filetable-gateway/internal/table"
)

// footerSchema converts the flattened footer schema tree (preorder element
// list) into a column schema.
func footerSchema(elements []*parquet.SchemaElement) (table.Schema, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("empty schema element list")
	}

	root := elements[0]
	idx := 1
	count := int(root.GetNumChildren())

	schema := make(table.Schema, 0, count)
	for i := 0; i < count; i++ {
		field, next, err := convertElement(elements, idx)
		if err != nil {
			return nil, err
		}
		idx = next
		schema = append(schema, table.Column{Name: field.Name, Type: field.Type, Nullable: field.Nullable})
	}
	return schema, nil
}

// convertElement converts the element at idx (and its subtree) and returns
// the index just past the subtree.
func convertElement(elements []*parquet.SchemaElement, idx int) (arrow.Field, int, error) {
	if idx >= len(elements) {
		return arrow.Field{}, idx, fmt.Errorf("truncated schema element list")
	}
	el := elements[idx]
	nullable := !el.IsSetRepetitionType() || el.GetRepetitionType() == parquet.FieldRepetitionType_OPTIONAL
	repeated := el.IsSetRepetitionType() && el.GetRepetitionType() == parquet.FieldRepetitionType_REPEATED

	if el.IsSetNumChildren() && el.GetNumChildren() > 0 {
		children := make([]arrow.Field, 0, el.GetNumChildren())
		next := idx + 1
		for i := 0; i < int(el.GetNumChildren()); i++ {
			child, n, err := convertElement(elements, next)
			if err != nil {
				return arrow.Field{}, idx, err
			}
			children = append(children, child)
			next = n
		}

		dt, err := groupType(el, children)
		if err != nil {
			return arrow.Field{}, idx, fmt.Errorf("group %q: %w", el.GetName(), err)
		}
		if repeated {
			// Legacy repeated group without a LIST wrapper.
			dt = arrow.ListOf(dt)
			nullable = false
		}
		return arrow.Field{Name: el.GetName(), Type: dt, Nullable: nullable}, next, nil
	}

	dt, err := leafType(el)
	if err != nil {
		return arrow.Field{}, idx, fmt.Errorf("column %q: %w", el.GetName(), err)
	}
	if repeated {
		dt = arrow.ListOf(dt)
		nullable = false
	}
	return arrow.Field{Name: el.GetName(), Type: dt, Nullable: nullable}, idx + 1, nil
}

// groupType maps an already-converted group element onto list, map or
// struct.
func groupType(el *parquet.SchemaElement, children []arrow.Field) (arrow.DataType, error) {
	if el.IsSetConvertedType() {
		switch el.GetConvertedType() {
		case parquet.ConvertedType_LIST:
			if len(children) != 1 {
				return nil, fmt.Errorf("LIST group must have one child")
			}
			return arrow.ListOfField(listElement(children[0])), nil

		case parquet.ConvertedType_MAP, parquet.ConvertedType_MAP_KEY_VALUE:
			if len(children) != 1 {
				return nil, fmt.Errorf("MAP group must have one child")
			}
			inner := children[0].Type
			if lt, ok := inner.(*arrow.ListType); ok {
				inner = lt.Elem()
			}
			kv, ok := inner.(*arrow.StructType)
			if !ok || len(kv.Fields()) != 2 {
				return nil, fmt.Errorf("MAP group must wrap a key/value pair")
			}
			return arrow.MapOf(kv.Field(0).Type, kv.Field(1).Type), nil
		}
	}
	return arrow.StructOf(children...), nil
}

// listElement unwraps the three-level LIST encoding: the repeated middle
// group holds the element field, unless the middle level is itself the
// element (two-level legacy encoding).
func listElement(middle arrow.Field) arrow.Field {
	if lt, ok := middle.Type.(*arrow.ListType); ok {
		elem := lt.ElemField()
		if st, ok := elem.Type.(*arrow.StructType); ok && len(st.Fields()) == 1 {
			return st.Field(0)
		}
		return elem
	}
	if st, ok := middle.Type.(*arrow.StructType); ok && len(st.Fields()) == 1 {
		return st.Field(0)
	}
	return middle
}

// leafType maps a physical column type (refined by its converted type) onto
// an Arrow type.
func leafType(el *parquet.SchemaElement) (arrow.DataType, error) {
	if !el.IsSetType() {
		return nil, fmt.Errorf("leaf element is missing a physical type")
	}

	converted := parquet.ConvertedType(-1)
	if el.IsSetConvertedType() {
		converted = el.GetConvertedType()
	}

	switch el.GetType() {
	case parquet.Type_BOOLEAN:
		return arrow.FixedWidthTypes.Boolean, nil

	case parquet.Type_INT32:
		switch converted {
		case parquet.ConvertedType_DATE:
			return arrow.FixedWidthTypes.Date32, nil
		case parquet.ConvertedType_INT_8:
			return arrow.PrimitiveTypes.Int8, nil
		case parquet.ConvertedType_INT_16:
			return arrow.PrimitiveTypes.Int16, nil
		case parquet.ConvertedType_DECIMAL:
			return &arrow.Decimal128Type{Precision: el.GetPrecision(), Scale: el.GetScale()}, nil
		default:
			return arrow.PrimitiveTypes.Int32, nil
		}

	case parquet.Type_INT64:
		switch converted {
		case parquet.ConvertedType_TIMESTAMP_MILLIS:
			return arrow.FixedWidthTypes.Timestamp_ms, nil
		case parquet.ConvertedType_TIMESTAMP_MICROS:
			return arrow.FixedWidthTypes.Timestamp_us, nil
		case parquet.ConvertedType_DECIMAL:
			return &arrow.Decimal128Type{Precision: el.GetPrecision(), Scale: el.GetScale()}, nil
		default:
			return arrow.PrimitiveTypes.Int64, nil
		}

	case parquet.Type_INT96:
		// Legacy timestamp encoding.
		return arrow.FixedWidthTypes.Timestamp_ns, nil

	case parquet.Type_FLOAT:
		return arrow.PrimitiveTypes.Float32, nil

	case parquet.Type_DOUBLE:
		return arrow.PrimitiveTypes.Float64, nil

	case parquet.Type_BYTE_ARRAY:
		switch converted {
		case parquet.ConvertedType_UTF8, parquet.ConvertedType_JSON, parquet.ConvertedType_ENUM:
			return arrow.BinaryTypes.String, nil
		case parquet.ConvertedType_DECIMAL:
			return &arrow.Decimal128Type{Precision: el.GetPrecision(), Scale: el.GetScale()}, nil
		default:
			return arrow.BinaryTypes.Binary, nil
		}

	case parquet.Type_FIXED_LEN_BYTE_ARRAY:
		if converted == parquet.ConvertedType_DECIMAL {
			return &arrow.Decimal128Type{Precision: el.GetPrecision(), Scale: el.GetScale()}, nil
		}
		return &arrow.FixedSizeBinaryType{ByteWidth: int(el.GetTypeLength())}, nil

	default:
		return nil, fmt.Errorf("unsupported physical type %s", el.GetType())
	}
}
