package catalog

import (
	"io"
	"strings"
)

// FormatField quotes a value when it contains a separator, a quote or a line
// break. Embedded quotes are doubled.
func FormatField(v string) string {
	if strings.ContainsAny(v, ",\"\r\n") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}

// FormatRow renders a newline-terminated record.
func FormatRow(fields []string) string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = FormatField(f)
	}
	return strings.Join(out, ",") + "\n"
}

// WriteRow writes a formatted record to w.
func WriteRow(w io.Writer, fields []string) error {
	_, err := io.WriteString(w, FormatRow(fields))
	return err
}
