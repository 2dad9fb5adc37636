package catalog

import (
	"errors"
	"fmt"
	"io"

	"github.com/vietddude/harvester/internal/core/domain"
)

// Columns appended by Filter.
const (
	CategoryColumn = "License_Category"
	ReasonColumn   = "License_Reason"
)

// ClassifyFunc maps a raw license string to a category and reason.
type ClassifyFunc func(raw string) (domain.Category, string)

// FilterStats counts records per category.
type FilterStats struct {
	Total     int
	Included  int
	Excluded  int
	Ambiguous int
}

// Filter classifies every record of r by its license column and writes it,
// with category and reason appended, to excluded when the category is
// CategoryExcluded and to kept otherwise. Both outputs receive the header.
func Filter(r io.Reader, licenseColumn string, classify ClassifyFunc, kept, excluded io.Writer) (FilterStats, error) {
	var st FilterStats

	rd, err := NewReader(r)
	if err != nil {
		return st, err
	}
	header := append(rd.Header().Names(), CategoryColumn, ReasonColumn)
	for _, w := range []io.Writer{kept, excluded} {
		if err := WriteRow(w, header); err != nil {
			return st, fmt.Errorf("write header: %w", err)
		}
	}

	for {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return st, nil
		}
		if err != nil {
			return st, err
		}
		st.Total++

		cat, reason := classify(rd.Header().Get(rec.Fields, licenseColumn))
		row := append(append([]string(nil), rec.Fields...), string(cat), reason)

		dst := kept
		switch cat {
		case domain.CategoryExcluded:
			dst = excluded
			st.Excluded++
		case domain.CategoryIncluded:
			st.Included++
		default:
			st.Ambiguous++
		}
		if err := WriteRow(dst, row); err != nil {
			return st, fmt.Errorf("write record %d: %w", st.Total, err)
		}
	}
}
