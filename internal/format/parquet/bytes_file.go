package parquet

import (
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go/source"
)

// bytesFile adapts an in-memory byte slice to the parquet-go source
// interface. Footer reading needs random access, which the storage backends
// do not expose, so inference downloads the sampled file first.
type bytesFile struct {
	data   []byte
	offset int64
}

func newBytesFile(data []byte) *bytesFile {
	return &bytesFile{data: data}
}

func (f *bytesFile) Open(name string) (source.ParquetFile, error) {
	return &bytesFile{data: f.data}, nil
}

func (f *bytesFile) Create(name string) (source.ParquetFile, error) {
	return nil, fmt.Errorf("bytes file is read-only")
}

func (f *bytesFile) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = f.offset + offset
	case io.SeekEnd:
		next = int64(len(f.data)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("negative seek offset")
	}
	f.offset = next
	return next, nil
}

func (f *bytesFile) Read(p []byte) (int, error) {
	if f.offset >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.offset:])
	f.offset += int64(n)
	return n, nil
}

func (f *bytesFile) Write(p []byte) (int, error) {
	return 0, fmt.Errorf("bytes file is read-only")
}

func (f *bytesFile) Close() error {
	return nil
}
