package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrCatalogNotFound is returned when the catalog file does not exist.
var ErrCatalogNotFound = errors.New("catalog file not found")

// Reader is a Stream whose first record has been consumed as the header.
type Reader struct {
	*Stream
	header Header
}

// NewReader reads the header row from r.
func NewReader(r io.Reader) (*Reader, error) {
	s := NewStream(r)
	rec, err := s.Next()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, err
	}
	return &Reader{Stream: s, header: NewHeader(rec.Fields)}, nil
}

// Header returns the catalog header.
func (r *Reader) Header() Header {
	return r.header
}

// Open opens a catalog file and reads its header. The caller closes the file.
func Open(path string) (*Reader, *os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}
	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("read catalog header %s: %w", path, err)
	}
	return r, f, nil
}
