package model

import "time"

// FileRef identifies a single discovered data file within its storage
// backend. Path is backend-relative (an object key for object stores, an
// absolute path for file systems).
type FileRef struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}
