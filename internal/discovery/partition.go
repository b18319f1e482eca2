package discovery

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow/go/v14/arrow"
)

// defaultPartitionName is the directory value hive-style writers emit for a
// null partition value.
const defaultPartitionName = "__HIVE_DEFAULT_PARTITION__"

// partitionValue is a single key=value directory segment.
type partitionValue struct {
	Key   string
	Value string
}

// parsePartitionPath extracts the hive-style partition segments from a
// file's directory path relative to its discovery root. Segments without a
// key=value shape (bucketing dirs, file names) are ignored.
func parsePartitionPath(rel string) []partitionValue {
	var values []partitionValue
	for _, segment := range strings.Split(rel, "/") {
		eq := strings.Index(segment, "=")
		if eq <= 0 {
			continue
		}
		key := segment[:eq]
		value, err := url.QueryUnescape(segment[eq+1:])
		if err != nil {
			value = segment[eq+1:]
		}
		values = append(values, partitionValue{Key: key, Value: value})
	}
	return values
}

// partitionKeys returns just the key sequence of parsed segments.
func partitionKeys(values []partitionValue) []string {
	keys := make([]string, len(values))
	for i, v := range values {
		keys[i] = v.Key
	}
	return keys
}

func sameKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// inferPartitionType picks the narrowest type that can represent every
// observed directory value for a partition column: int64, then float64, then
// date, falling back to string. Null markers are excluded from inference.
func inferPartitionType(values []string) arrow.DataType {
	candidates := values[:0:0]
	for _, v := range values {
		if v == defaultPartitionName {
			continue
		}
		candidates = append(candidates, v)
	}
	if len(candidates) == 0 {
		return arrow.BinaryTypes.String
	}

	isInt := true
	for _, v := range candidates {
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			isInt = false
			break
		}
	}
	if isInt {
		return arrow.PrimitiveTypes.Int64
	}

	isFloat := true
	for _, v := range candidates {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			isFloat = false
			break
		}
	}
	if isFloat {
		return arrow.PrimitiveTypes.Float64
	}

	isDate := true
	for _, v := range candidates {
		if _, err := time.Parse("2006-01-02", v); err != nil {
			isDate = false
			break
		}
	}
	if isDate {
		return arrow.FixedWidthTypes.Date32
	}

	return arrow.BinaryTypes.String
}

// relativeTo strips the discovery root from a file path and returns the
// remaining directory portion, excluding the file name itself.
func relativeTo(root, path string) (string, error) {
	trimmedRoot := strings.Trim(root, "/")
	trimmedPath := strings.Trim(path, "/")
	if trimmedRoot != "" && !strings.HasPrefix(trimmedPath, trimmedRoot) {
		return "", fmt.Errorf("file %s is outside discovery root %s", path, root)
	}
	rel := strings.Trim(strings.TrimPrefix(trimmedPath, trimmedRoot), "/")
	if idx := strings.LastIndex(rel, "/"); idx >= 0 {
		return rel[:idx], nil
	}
	return "", nil
}
