package fetch

import (
	"net/url"
	"path"
	"slices"
	"strings"
)

// FallbackExt is used when neither URL nor content type identify the format.
const FallbackExt = ".bin"

// AllowedURLExts are the URL path extensions trusted as-is.
var AllowedURLExts = []string{".pdf", ".epub", ".xml", ".html", ".htm", ".txt", ".zip", ".jpg", ".png"}

// contentTypeExts is checked in order by substring.
var contentTypeExts = []struct {
	needle string
	ext    string
}{
	{"pdf", ".pdf"},
	{"epub", ".epub"},
	{"xml", ".xml"},
	{"html", ".html"},
	{"plain", ".txt"},
	{"zip", ".zip"},
}

// ExtFromURL returns the allow-listed extension of the URL path, or "".
func ExtFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if slices.Contains(AllowedURLExts, ext) {
		return ext
	}
	return ""
}

// ExtFromContentType maps a Content-Type header to an extension, or "".
func ExtFromContentType(ct string) string {
	ct = strings.ToLower(ct)
	if ct == "" {
		return ""
	}
	for _, m := range contentTypeExts {
		if strings.Contains(ct, m.needle) {
			return m.ext
		}
	}
	return ""
}

// ResolveExt picks the file extension for a download.
func ResolveExt(rawURL, contentType string) string {
	if ext := ExtFromURL(rawURL); ext != "" {
		return ext
	}
	if ext := ExtFromContentType(contentType); ext != "" {
		return ext
	}
	return FallbackExt
}
