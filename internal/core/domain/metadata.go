package domain

// ResourceMetadata is written once per processed catalog row, as a JSON
// document and as one line of the partition's JSONL log.
type ResourceMetadata struct {
	Title           string         `json:"title"`
	SourceSite      string         `json:"source_site"`
	SourcePageURL   string         `json:"source_page_url"`
	DownloadURL     string         `json:"download_url"`
	LicenseRaw      string         `json:"license_raw"`
	LicenseEvidence string         `json:"license_evidence"`
	LicenseCategory Category       `json:"license_category"`
	LicenseReason   string         `json:"license_reason"`
	FileFormat      string         `json:"file_format"`
	DownloadStatus  DownloadStatus `json:"download_status"`
	StatusReason    string         `json:"download_status_reason"`
	DownloadedAt    string         `json:"downloaded_at"`
	SourceRecordID  string         `json:"source_record_id"`
	ResourceType    string         `json:"resource_type"`
	Authors         string         `json:"authors"`
	Publisher       string         `json:"publisher"`
	DOI             string         `json:"doi"`
	ISBN            string         `json:"isbn"`
	Language        string         `json:"language"`
	LocalFileName   string         `json:"local_file_name"`
	FileSize        int64          `json:"file_size"`
	PageCount       int            `json:"page_count,omitempty"`
	Note            string         `json:"note"`
	RunID           string         `json:"run_id"`
}
