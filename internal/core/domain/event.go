package domain

// Event is published once per processed record.
type Event struct {
	EventType EventType      `json:"event_type"`
	RunID     string         `json:"run_id"`
	Partition string         `json:"partition"`
	RecordID  string         `json:"record_id"`
	Status    DownloadStatus `json:"status"`
	Reason    string         `json:"reason,omitempty"`
	FileName  string         `json:"file_name,omitempty"`
	Size      int64          `json:"size,omitempty"`
	EmittedAt int64          `json:"emitted_at"`
}

type EventType string

const (
	EventTypeRecordDownloaded EventType = "record_downloaded"
	EventTypeRecordFailed     EventType = "record_failed"
	EventTypeRunFinished      EventType = "run_finished"
)
