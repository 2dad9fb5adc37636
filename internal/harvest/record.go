package harvest

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/vietddude/harvester/internal/catalog"
	"github.com/vietddude/harvester/internal/core/config"
	"github.com/vietddude/harvester/internal/core/domain"
)

// URLSeparator separates alternative download URLs in one field.
const URLSeparator = "||"

// UnknownSite is the source site of records whose URL has no host.
const UnknownSite = "unknown"

// ResolveID returns the record identifier, or a placeholder built from the
// clock and the record's catalog line when the column is empty.
func ResolveID(h catalog.Header, row []string, column string, line int, now time.Time) string {
	if id := strings.TrimSpace(h.Get(row, column)); id != "" {
		return id
	}
	return fmt.Sprintf("unknown_%d_%d", now.UnixMilli(), line)
}

// ResolveURL keeps the first of several "||"-separated alternatives.
func ResolveURL(raw string) string {
	first, _, _ := strings.Cut(raw, URLSeparator)
	return strings.TrimSpace(first)
}

// SourceSite returns the host of raw, or UnknownSite.
func SourceSite(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Hostname() == "" {
		return UnknownSite
	}
	return u.Hostname()
}

// fileStem makes a record identifier safe to use as a single file name
// inside the partition: separators become '_' and a leading dot is escaped.
func fileStem(id string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_")
	stem := r.Replace(id)
	if stem == "" || strings.HasPrefix(stem, ".") {
		stem = "_" + stem
	}
	return stem
}

// buildMetadata fills the catalog-derived fields of a record. Status fields
// are set once the outcome is known.
func buildMetadata(h catalog.Header, row []string, cols config.CatalogConfig, id, downloadURL string,
	category domain.Category, reason, evidence string, now time.Time) domain.ResourceMetadata {
	sourcePage := h.Get(row, cols.SourcePage)
	site := sourcePage
	if site == "" {
		site = downloadURL
	}

	return domain.ResourceMetadata{
		Title:           h.Get(row, cols.Title),
		SourceSite:      SourceSite(site),
		SourcePageURL:   sourcePage,
		DownloadURL:     downloadURL,
		LicenseRaw:      h.Get(row, cols.License),
		LicenseEvidence: evidence,
		LicenseCategory: category,
		LicenseReason:   reason,
		DownloadedAt:    now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		SourceRecordID:  id,
		ResourceType:    h.Get(row, cols.ResourceType),
		Authors:         h.Get(row, cols.Authors),
		Publisher:       h.First(row, cols.Publisher...),
		DOI:             h.Get(row, cols.DOI),
		ISBN:            h.First(row, cols.ISBN...),
		Language:        h.Get(row, cols.Language),
		Note:            fmt.Sprintf("[Category: %s] %s", category, reason),
	}
}

// applyOutcome records the fetch result on meta.
func applyOutcome(meta *domain.ResourceMetadata, out domain.Outcome) {
	if !out.Success {
		meta.DownloadStatus = domain.DownloadStatusFailed
		meta.StatusReason = out.Reason
		return
	}
	meta.DownloadStatus = domain.DownloadStatusSuccess
	meta.LocalFileName = filepath.Base(out.FinalPath)
	meta.FileFormat = strings.TrimPrefix(filepath.Ext(out.FinalPath), ".")
	meta.FileSize = out.Size
}
