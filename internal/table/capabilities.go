package table

// Capability enumerates the operations a file-backed table supports.
type Capability string

const (
	CapabilityBatchRead  Capability = "batch_read"
	CapabilityBatchWrite Capability = "batch_write"
	CapabilityTruncate   Capability = "truncate"
)

// CapabilitySet is an enumerable set of capabilities.
type CapabilitySet []Capability

// Has reports whether the set contains the given capability.
func (s CapabilitySet) Has(c Capability) bool {
	for _, have := range s {
		if have == c {
			return true
		}
	}
	return false
}

// fileTableCapabilities is the capability set common to every file-backed
// table. It is a constant shared read-only across all instances and never
// mutates after process start, so no locking is required.
var fileTableCapabilities = CapabilitySet{
	CapabilityBatchRead,
	CapabilityBatchWrite,
	CapabilityTruncate,
}

// Capabilities returns the fixed capability set for file-backed tables.
func Capabilities() CapabilitySet {
	return fileTableCapabilities
}
