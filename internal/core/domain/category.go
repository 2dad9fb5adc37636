package domain

import "strings"

// Category is the license-derived classification of a catalog record.
type Category string

const (
	CategoryIncluded  Category = "included"
	CategoryExcluded  Category = "excluded"
	CategoryAmbiguous Category = "ambiguous"
)

// DefaultCategoryAliases maps the labels written by the legacy catalog filter
// onto categories.
var DefaultCategoryAliases = map[string]Category{
	"포함": CategoryIncluded,
	"제외": CategoryExcluded,
	"애매": CategoryAmbiguous,
}

// ParseCategory normalises a pre-computed category value. Canonical names are
// matched case-insensitively before the alias table is consulted.
func ParseCategory(raw string, aliases map[string]Category) (Category, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", false
	}
	switch c := Category(strings.ToLower(v)); c {
	case CategoryIncluded, CategoryExcluded, CategoryAmbiguous:
		return c, true
	}
	if c, ok := aliases[v]; ok {
		return c, true
	}
	return Category(v), true
}

func (c Category) String() string {
	return string(c)
}
