// Package inspect reads properties of downloaded files.
package inspect

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDF reads page counts from PDF files.
type PDF struct{}

// PageCount returns the number of pages of the PDF at path. Malformed files
// return an error; the parser's panics are recovered.
func (PDF) PageCount(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("malformed pdf %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return r.NumPage(), nil
}
