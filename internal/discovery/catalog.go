package discovery

import (
	"context"
	"fmt"
	"path"
	"strings"

	"filetable-gateway/internal/model"
	"filetable-gateway/internal/table"
)

// Option keys accepted by Catalog.Discover. Unknown keys are ignored so
// format-specific options can travel in the same map.
const (
	// OptionPathGlobFilter restricts discovery to files whose base name
	// matches the glob pattern.
	OptionPathGlobFilter = "pathGlobFilter"

	// OptionCheckFilesExist controls whether a root that matches zero
	// files is an error. Enabled by default.
	OptionCheckFilesExist = "checkFilesExist"
)

// Catalog discovers the data files and the hive-style partition schema for a
// set of root paths. The partition schema it produces is immutable for the
// table's lifetime once computed; the resolver treats it as read-only.
type Catalog struct {
	store Store
}

// NewCatalog creates a catalog over the given storage backend.
func NewCatalog(store Store) *Catalog {
	return &Catalog{store: store}
}

// Discover lists every data file under the given roots and derives the
// partition schema from the directory structure. Hidden files (dot- or
// underscore-prefixed) are skipped. The partition key sequence must be
// uniform across all discovered files; a mismatch is an error the resolver
// propagates as-is. When a userSchema declares a partition column, the
// declared type and nullability take precedence over inference.
func (c *Catalog) Discover(ctx context.Context, roots []string, options map[string]string, userSchema table.Schema, mode table.CaseSensitivityMode) ([]model.FileRef, table.Schema, error) {
	if len(roots) == 0 {
		return nil, nil, fmt.Errorf("at least one root path is required")
	}

	globFilter := options[OptionPathGlobFilter]
	checkExist := options[OptionCheckFilesExist] != "false"

	var files []model.FileRef
	var keys []string
	keysSet := false
	valuesByKey := make(map[string][]string)

	for _, root := range roots {
		listed, err := c.store.List(ctx, root)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list %s: %w", root, err)
		}

		kept := 0
		for _, file := range listed {
			base := path.Base(file.Path)
			if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") {
				continue
			}
			if globFilter != "" {
				matched, err := path.Match(globFilter, base)
				if err != nil {
					return nil, nil, fmt.Errorf("invalid %s pattern %q: %w", OptionPathGlobFilter, globFilter, err)
				}
				if !matched {
					continue
				}
			}

			rel, err := relativeTo(root, file.Path)
			if err != nil {
				return nil, nil, err
			}
			parsed := parsePartitionPath(rel)
			fileKeys := partitionKeys(parsed)
			if !keysSet {
				keys = fileKeys
				keysSet = true
			} else if !sameKeys(keys, fileKeys) {
				return nil, nil, fmt.Errorf(
					"conflicting directory structures detected: partition columns %v do not match %v for %s",
					fileKeys, keys, file.Path)
			}
			for _, pv := range parsed {
				valuesByKey[pv.Key] = append(valuesByKey[pv.Key], pv.Value)
			}

			files = append(files, file)
			kept++
		}

		if kept == 0 && checkExist {
			return nil, nil, fmt.Errorf("path does not contain any files: %s", root)
		}
	}

	partitionSchema := make(table.Schema, 0, len(keys))
	for _, key := range keys {
		col := table.Column{
			Name:     key,
			Type:     inferPartitionType(valuesByKey[key]),
			Nullable: containsNullMarker(valuesByKey[key]),
		}
		for _, declared := range userSchema {
			if table.EqualNames(declared.Name, key, mode) {
				col.Type = declared.Type
				col.Nullable = declared.Nullable
				break
			}
		}
		partitionSchema = append(partitionSchema, col)
	}

	return files, partitionSchema, nil
}

func containsNullMarker(values []string) bool {
	for _, v := range values {
		if v == defaultPartitionName {
			return true
		}
	}
	return false
}
