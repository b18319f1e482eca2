package table

import "strings"

// CaseSensitivityMode governs every column-name comparison performed during
// schema resolution. It is threaded explicitly into each call so the resolver
// never consults ambient configuration.
type CaseSensitivityMode int

const (
	// CaseInsensitive folds names to lower case before comparing.
	CaseInsensitive CaseSensitivityMode = iota
	// CaseSensitive compares names exactly.
	CaseSensitive
)

// String returns a human-readable mode name
func (m CaseSensitivityMode) String() string {
	if m == CaseSensitive {
		return "case-sensitive"
	}
	return "case-insensitive"
}

// CanonicalKey returns the duplicate-detection key for a column name under
// the given mode. Every name comparison in the resolver goes through this
// function so raw and canonicalized comparisons are never mixed.
func CanonicalKey(name string, mode CaseSensitivityMode) string {
	if mode == CaseInsensitive {
		return strings.ToLower(name)
	}
	return name
}

// EqualNames reports whether two column names refer to the same column under
// the given mode.
func EqualNames(a, b string, mode CaseSensitivityMode) bool {
	return CanonicalKey(a, mode) == CanonicalKey(b, mode)
}
