package harvest

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vietddude/harvester/internal/core/domain"
)

// Sink writes metadata records: one indented JSON document per record and
// one line in the partition's append-only log. Failed records go to the
// failed/ partition. Documents are named after the same stem as the
// downloaded file.
type Sink struct {
	layout Layout
}

func NewSink(layout Layout) *Sink {
	return &Sink{layout: layout}
}

// Write persists meta. Records are never rewritten once the log line exists.
func (s *Sink) Write(meta domain.ResourceMetadata) error {
	docDir, logPath := s.layout.MetadataDir(), s.layout.SuccessLog()
	if meta.DownloadStatus.IsFailed() {
		docDir, logPath = s.layout.FailedDir(), s.layout.FailedLog()
	}

	doc, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	docPath := filepath.Join(docDir, fileStem(meta.SourceRecordID)+".json")
	if err := os.WriteFile(docPath, doc, 0o644); err != nil {
		return fmt.Errorf("write metadata document: %w", err)
	}

	line, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata line: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open metadata log: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("append metadata log: %w", err)
	}
	return f.Close()
}

// ReadLog decodes a JSONL metadata log. A missing log is empty.
func ReadLog(path string) ([]domain.ResourceMetadata, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open metadata log: %w", err)
	}
	defer f.Close()

	var out []domain.ResourceMetadata
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var meta domain.ResourceMetadata
		if err := json.Unmarshal(sc.Bytes(), &meta); err != nil {
			return out, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		out = append(out, meta)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("read metadata log: %w", err)
	}
	return out, nil
}

// CountLines returns the number of entries in a JSONL log. A missing log has none.
func CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if len(sc.Bytes()) > 0 {
			n++
		}
	}
	return n, sc.Err()
}
