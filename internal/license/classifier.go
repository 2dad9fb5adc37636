// Package license routes catalog records by their license text.
//
// Classification is a literal, ordered substring scan over the lower-cased
// text. Exclusion keywords are tested before inclusion keywords, so a license
// matching both is always excluded. Within a pass the first keyword wins.
package license

import (
	"fmt"
	"strings"

	"github.com/vietddude/harvester/internal/core/domain"
)

// Reasons for the two keyword-less outcomes.
const (
	ReasonEmpty     = "no license information"
	ReasonNoKeyword = "no explicit license keyword found"
)

// ExcludeKeywords signal non-commercial, no-derivatives or share-alike terms.
var ExcludeKeywords = []string{
	"-nc", "/nc/", "nc/", "non-commercial", "noncommercial",
	"-nd", "/nd/", "nd/", "no derivatives", "noderivs",
	"-sa", "/sa/", "sa/", "share alike", "sharealike",
}

// IncludeKeywords signal attribution-only, public-domain or CC0 licensing.
var IncludeKeywords = []string{
	"/by/", "-by/", "cc by", "cc-by", "public domain", "publicdomain", "cc0", "pdm",
}

// Classify maps raw license text to a category and a human-readable reason.
func Classify(raw string) (domain.Category, string) {
	if strings.TrimSpace(raw) == "" {
		return domain.CategoryAmbiguous, ReasonEmpty
	}

	val := strings.ToLower(raw)
	if kw, ok := firstMatch(val, ExcludeKeywords); ok {
		return domain.CategoryExcluded, fmt.Sprintf("restrictive term (%s)", kw)
	}
	if kw, ok := firstMatch(val, IncludeKeywords); ok {
		return domain.CategoryIncluded, fmt.Sprintf("permissive license (%s)", kw)
	}
	return domain.CategoryAmbiguous, ReasonNoKeyword
}

func firstMatch(val string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(val, kw) {
			return kw, true
		}
	}
	return "", false
}
