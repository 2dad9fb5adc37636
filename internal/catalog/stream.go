// Package catalog reads repository export catalogs record by record.
//
// A logical record may span several physical lines when a quoted field
// contains newlines. Lines are accumulated until the number of '"' characters
// in the buffer is even, and only then is the buffer parsed into fields.
//
// Fallbacks are intentional:
//   - a record still unbalanced at end of input is dropped, see Stream.Dropped
//   - a lookup for an unknown column or a short row yields ""
package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoHeader is returned when the input holds no complete record at all.
var ErrNoHeader = errors.New("catalog has no header row")

// Record is one logical catalog row.
type Record struct {
	Fields []string
	// Raw is the reassembled source text, newline terminated.
	Raw string
	// Line is the physical line number the record started on.
	Line int
}

// Stream yields logical records from CSV text.
type Stream struct {
	r       *bufio.Reader
	buf     strings.Builder
	quotes  int
	line    int
	start   int
	dropped string
	err     error
}

// NewStream wraps r. Reading is lazy; nothing is consumed until Next.
func NewStream(r io.Reader) *Stream {
	return &Stream{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next logical record, or io.EOF when the input is exhausted.
// Blank lines between records are skipped.
func (s *Stream) Next() (Record, error) {
	if s.err != nil {
		return Record{}, s.err
	}

	for {
		line, err := s.r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			s.err = fmt.Errorf("read catalog: %w", err)
			return Record{}, s.err
		}
		eof := errors.Is(err, io.EOF)

		if line != "" {
			s.line++
			if s.buf.Len() == 0 {
				s.start = s.line
			}
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			s.buf.WriteString(line)
			s.buf.WriteByte('\n')
			s.quotes += strings.Count(line, `"`)

			if s.quotes%2 == 0 {
				raw := s.buf.String()
				s.buf.Reset()
				s.quotes = 0
				if raw == "\n" {
					if eof {
						break
					}
					continue
				}
				return Record{Fields: ParseRecord(raw), Raw: raw, Line: s.start}, nil
			}
		}

		if eof {
			break
		}
	}

	if s.buf.Len() > 0 {
		s.dropped = s.buf.String()
		s.buf.Reset()
	}
	s.err = io.EOF
	return Record{}, s.err
}

// Dropped returns the unbalanced tail discarded at end of input, if any.
func (s *Stream) Dropped() string {
	return s.dropped
}

// ParseRecord splits one reassembled record into fields. A trailing \r?\n is
// ignored. Outside quotes ',' ends a field and '"' opens a quoted section;
// inside quotes '""' is a literal quote and a lone '"' closes the section.
func ParseRecord(raw string) []string {
	raw = strings.TrimSuffix(raw, "\n")
	raw = strings.TrimSuffix(raw, "\r")

	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if inQuotes {
			if ch == '"' {
				if i+1 < len(raw) && raw[i+1] == '"' {
					cur.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				cur.WriteByte(ch)
			}
			continue
		}
		switch ch {
		case '"':
			inQuotes = true
		case ',':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	return append(fields, cur.String())
}
