package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// SplitResult reports how many data records went to each part.
type SplitResult struct {
	Total int
	First int
	Last  int
}

// CountRecords counts data records (header excluded).
func CountRecords(r io.Reader) (int, error) {
	s := NewStream(r)
	n := -1
	for {
		if _, err := s.Next(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		n++
	}
	if n < 0 {
		return 0, ErrNoHeader
	}
	return n, nil
}

// SplitInto copies the header to both writers and sends the first half of the
// data records (rounded up) to first and the rest to last. Records are copied
// as reassembled text, so multi-line quoted fields survive unchanged.
func SplitInto(r io.Reader, total int, first, last io.Writer) (SplitResult, error) {
	half := (total + 1) / 2
	res := SplitResult{Total: total}

	s := NewStream(r)
	rec, err := s.Next()
	if errors.Is(err, io.EOF) {
		return res, ErrNoHeader
	}
	if err != nil {
		return res, err
	}
	for _, w := range []io.Writer{first, last} {
		if _, err := io.WriteString(w, rec.Raw); err != nil {
			return res, fmt.Errorf("write header: %w", err)
		}
	}

	count := 0
	for {
		rec, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, err
		}
		count++
		dst := last
		if count <= half {
			dst = first
			res.First++
		} else {
			res.Last++
		}
		if _, err := io.WriteString(dst, rec.Raw); err != nil {
			return res, fmt.Errorf("write record %d: %w", count, err)
		}
	}
	return res, nil
}

// SplitFile halves the catalog at src into dst1 and dst2.
func SplitFile(src, dst1, dst2 string) (SplitResult, error) {
	in, err := os.Open(src)
	if errors.Is(err, os.ErrNotExist) {
		return SplitResult{}, fmt.Errorf("%w: %s", ErrCatalogNotFound, src)
	}
	if err != nil {
		return SplitResult{}, fmt.Errorf("open catalog: %w", err)
	}
	defer in.Close()

	total, err := CountRecords(in)
	if err != nil {
		return SplitResult{}, err
	}
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return SplitResult{}, fmt.Errorf("rewind catalog: %w", err)
	}

	out1, err := os.Create(dst1)
	if err != nil {
		return SplitResult{}, fmt.Errorf("create %s: %w", dst1, err)
	}
	defer out1.Close()
	out2, err := os.Create(dst2)
	if err != nil {
		return SplitResult{}, fmt.Errorf("create %s: %w", dst2, err)
	}
	defer out2.Close()

	w1, w2 := bufio.NewWriter(out1), bufio.NewWriter(out2)
	res, err := SplitInto(in, total, w1, w2)
	if err != nil {
		return res, err
	}
	if err := w1.Flush(); err != nil {
		return res, err
	}
	if err := w2.Flush(); err != nil {
		return res, err
	}
	return res, nil
}
