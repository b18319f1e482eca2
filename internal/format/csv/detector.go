package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow/go/v14/arrow"

	"filetable-gateway/internal/table"
)

// DetectorConfig holds CSV schema detection configuration.
type DetectorConfig struct {
	SampleSize int      // Number of rows to sample for type detection
	Delimiter  rune     // Field delimiter
	HasHeader  bool     // Whether the file carries a header row
	NullValues []string // Values treated as null
}

// Detector infers a column schema from CSV content by sampling rows.
type Detector struct {
	config *DetectorConfig
}

// NewDetector creates a CSV schema detector.
func NewDetector(config *DetectorConfig) *Detector {
	if config == nil {
		config = &DetectorConfig{}
	}
	if config.SampleSize <= 0 {
		config.SampleSize = 1000
	}
	if config.Delimiter == 0 {
		config.Delimiter = ','
	}
	if config.NullValues == nil {
		config.NullValues = []string{"", "NULL", "null", "NA", "N/A"}
	}
	return &Detector{config: config}
}

// columnStats accumulates per-column observations across the sample.
type columnStats struct {
	nonNull int
	nulls   int
	isInt   bool
	isFloat bool
	isBool  bool
}

// Detect samples rows from r and infers one column schema. It returns a nil
// schema (and nil error) when the content holds no rows to infer from.
func (d *Detector) Detect(r io.Reader) (table.Schema, error) {
	reader := csv.NewReader(r)
	reader.Comma = d.config.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var header []string
	if d.config.HasHeader {
		row, err := reader.Read()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read header row: %w", err)
		}
		header = row
	}

	var stats []*columnStats
	rows := 0
	for rows < d.config.SampleSize {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", rows+1, err)
		}

		for len(stats) < len(row) {
			stats = append(stats, &columnStats{isInt: true, isFloat: true, isBool: true})
		}
		for i, cell := range row {
			d.observe(stats[i], cell)
		}
		// Columns absent from a short row count as nulls.
		for i := len(row); i < len(stats); i++ {
			stats[i].nulls++
		}
		rows++
	}

	if rows == 0 && len(header) == 0 {
		return nil, nil
	}

	for len(stats) < len(header) {
		stats = append(stats, &columnStats{})
	}

	schema := make(table.Schema, len(stats))
	for i, st := range stats {
		name := fmt.Sprintf("_c%d", i)
		if i < len(header) && header[i] != "" {
			name = header[i]
		}
		schema[i] = table.Column{
			Name:     name,
			Type:     st.dataType(),
			Nullable: st.nulls > 0,
		}
	}
	return schema, nil
}

func (d *Detector) observe(st *columnStats, cell string) {
	for _, nullValue := range d.config.NullValues {
		if cell == nullValue {
			st.nulls++
			return
		}
	}
	st.nonNull++

	if st.isInt {
		if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
			st.isInt = false
		}
	}
	if st.isFloat {
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			st.isFloat = false
		}
	}
	if st.isBool {
		if _, err := strconv.ParseBool(cell); err != nil {
			st.isBool = false
		}
	}
}

// dataType picks the narrowest type consistent with every sampled value.
func (st *columnStats) dataType() arrow.DataType {
	if st.nonNull == 0 {
		return arrow.BinaryTypes.String
	}
	if st.isInt {
		return arrow.PrimitiveTypes.Int64
	}
	if st.isFloat {
		return arrow.PrimitiveTypes.Float64
	}
	if st.isBool {
		return arrow.FixedWidthTypes.Boolean
	}
	return arrow.BinaryTypes.String
}
