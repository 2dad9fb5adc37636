package catalog

// Header maps column names to positions. The first occurrence of a name wins.
type Header struct {
	names []string
	index map[string]int
}

// NewHeader builds a header from the first catalog record.
func NewHeader(fields []string) Header {
	h := Header{
		names: append([]string(nil), fields...),
		index: make(map[string]int, len(fields)),
	}
	for i, name := range fields {
		if _, ok := h.index[name]; !ok {
			h.index[name] = i
		}
	}
	return h
}

// Names returns the column names in order.
func (h Header) Names() []string {
	return append([]string(nil), h.names...)
}

// Index returns the position of a column.
func (h Header) Index(name string) (int, bool) {
	i, ok := h.index[name]
	return i, ok
}

// Get returns the named field of a row, or "" when the column is unknown or
// the row is too short.
func (h Header) Get(row []string, name string) string {
	i, ok := h.index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// First returns the first non-empty value among the named columns.
func (h Header) First(row []string, names ...string) string {
	for _, name := range names {
		if v := h.Get(row, name); v != "" {
			return v
		}
	}
	return ""
}
