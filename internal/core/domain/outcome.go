package domain

// Outcome is the result of one fetch attempt sequence for a single record.
type Outcome struct {
	Success   bool
	FinalPath string
	Size      int64
	Reason    string
}

// Succeeded builds a successful outcome.
func Succeeded(path string, size int64) Outcome {
	return Outcome{Success: true, FinalPath: path, Size: size}
}

// Failed builds a terminal failure with a human-readable reason.
func Failed(reason string) Outcome {
	return Outcome{Reason: reason}
}

// DownloadStatus is the persisted status of a processed record.
type DownloadStatus string

const (
	DownloadStatusSuccess DownloadStatus = "success"
	DownloadStatusFailed  DownloadStatus = "failed"
)

// IsFailed reports whether the record belongs to the failure partition.
func (s DownloadStatus) IsFailed() bool {
	return s == DownloadStatusFailed
}
