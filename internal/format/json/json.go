// Package json implements the JSON-lines format binding. Schema inference
// samples rows and merges per-key observations into one column schema.
package json

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v14/arrow"

	"filetable-gateway/internal/discovery"
	"filetable-gateway/internal/format/text"
	"filetable-gateway/internal/model"
	"filetable-gateway/internal/table"
)

// FormatName identifies the JSON format in error messages.
const FormatName = "json"

// OptionSampleSize bounds the number of lines sampled per file.
const OptionSampleSize = "sampleSize"

const defaultSampleSize = 1000

// maxLineBytes bounds a single sampled JSON line.
const maxLineBytes = 16 * 1024 * 1024

// Format is the JSON-lines format binding. Nested values map to struct and
// list columns, so the default all-supported type set applies.
type Format struct {
	table.BaseFormat

	store      discovery.Store
	sampleSize int
	fallback   table.FormatBinding
}

// New creates a JSON binding over the given storage backend.
func New(store discovery.Store, options map[string]string) *Format {
	sampleSize := defaultSampleSize
	if v, ok := options[OptionSampleSize]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			sampleSize = n
		}
	}
	return &Format{
		store:      store,
		sampleSize: sampleSize,
		fallback:   text.New(),
	}
}

// Name returns the format identifier.
func (f *Format) Name() string {
	return FormatName
}

// Infer samples lines from the first file that yields any objects. Column
// order is alphabetical so repeated inference over the same files is
// deterministic regardless of key order inside the objects.
func (f *Format) Infer(ctx context.Context, files []model.FileRef) (table.Schema, error) {
	for _, file := range files {
		rc, err := f.store.Open(ctx, file.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", file.Path, err)
		}
		schema, err := f.sample(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to detect schema of %s: %w", file.Path, err)
		}
		if schema != nil {
			return schema, nil
		}
	}
	return nil, nil
}

// Fallback returns the legacy text binding.
func (f *Format) Fallback() table.FormatBinding {
	return f.fallback
}

type fieldStats struct {
	dataType arrow.DataType // nil until a typed value is seen
	seen     int
	nulls    int
}

func (f *Format) sample(r io.Reader) (table.Schema, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	fields := make(map[string]*fieldStats)
	rows := 0

	for rows < f.sampleSize && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		decoder := json.NewDecoder(strings.NewReader(line))
		decoder.UseNumber()
		var obj map[string]interface{}
		if err := decoder.Decode(&obj); err != nil {
			return nil, fmt.Errorf("invalid JSON object on line %d: %w", rows+1, err)
		}

		for key, value := range obj {
			st, ok := fields[key]
			if !ok {
				st = &fieldStats{}
				fields[key] = st
			}
			st.seen++
			if value == nil {
				st.nulls++
				continue
			}
			st.dataType = mergeTypes(st.dataType, valueType(value))
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	schema := make(table.Schema, 0, len(names))
	for _, name := range names {
		st := fields[name]
		dt := st.dataType
		if dt == nil {
			dt = arrow.BinaryTypes.String
		}
		schema = append(schema, table.Column{
			Name:     name,
			Type:     dt,
			Nullable: st.nulls > 0 || st.seen < rows,
		})
	}
	return schema, nil
}

// valueType maps a decoded JSON value to an Arrow type.
func valueType(value interface{}) arrow.DataType {
	switch v := value.(type) {
	case bool:
		return arrow.FixedWidthTypes.Boolean
	case json.Number:
		if _, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			return arrow.PrimitiveTypes.Int64
		}
		return arrow.PrimitiveTypes.Float64
	case string:
		return arrow.BinaryTypes.String
	case []interface{}:
		var elem arrow.DataType
		for _, item := range v {
			if item == nil {
				continue
			}
			elem = mergeTypes(elem, valueType(item))
		}
		if elem == nil {
			elem = arrow.BinaryTypes.String
		}
		return arrow.ListOf(elem)
	case map[string]interface{}:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		nested := make([]arrow.Field, 0, len(names))
		for _, name := range names {
			var dt arrow.DataType = arrow.BinaryTypes.String
			if v[name] != nil {
				dt = valueType(v[name])
			}
			nested = append(nested, arrow.Field{Name: name, Type: dt, Nullable: true})
		}
		return arrow.StructOf(nested...)
	default:
		return arrow.BinaryTypes.String
	}
}

// mergeTypes reconciles the types observed for one field across rows.
// Integers widen to floats; any other disagreement falls back to string.
func mergeTypes(a, b arrow.DataType) arrow.DataType {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if arrow.TypeEqual(a, b) {
		return a
	}
	if isNumeric(a) && isNumeric(b) {
		return arrow.PrimitiveTypes.Float64
	}
	return arrow.BinaryTypes.String
}

func isNumeric(dt arrow.DataType) bool {
	switch dt.ID() {
	case arrow.INT64, arrow.FLOAT64:
		return true
	default:
		return false
	}
}
