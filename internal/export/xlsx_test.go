package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/vietddude/harvester/internal/core/domain"
	"github.com/vietddude/harvester/internal/harvest"
)

func TestWrite(t *testing.T) {
	layout := harvest.NewLayout(t.TempDir(), "allowed")
	if err := layout.Ensure(); err != nil {
		t.Fatal(err)
	}
	sink := harvest.NewSink(layout)
	records := []domain.ResourceMetadata{
		{SourceRecordID: "r1", Title: "One", DownloadStatus: domain.DownloadStatusSuccess, FileFormat: "pdf", FileSize: 10},
		{SourceRecordID: "r2", Title: "Two", DownloadStatus: domain.DownloadStatusSuccess, FileFormat: "epub"},
		{SourceRecordID: "r3", DownloadStatus: domain.DownloadStatusFailed, StatusReason: "HTTP 404 Not Found"},
	}
	for _, r := range records {
		if err := sink.Write(r); err != nil {
			t.Fatal(err)
		}
	}

	out := filepath.Join(t.TempDir(), "report.xlsx")
	sum, err := Write(layout, out)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if sum.Success != 2 || sum.Failed != 1 {
		t.Errorf("Write() = %+v, want 2 success, 1 failed", sum)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetSuccess)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("success rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "source_record_id" || rows[1][0] != "r1" || rows[2][1] != "Two" {
		t.Errorf("success sheet = %v", rows)
	}

	failed, err := f.GetRows(SheetFailed)
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 2 || failed[1][15] != "HTTP 404 Not Found" {
		t.Errorf("failed sheet = %v", failed)
	}
}

func TestWriteEmptyPartition(t *testing.T) {
	layout := harvest.NewLayout(t.TempDir(), "empty")
	out := filepath.Join(t.TempDir(), "report.xlsx")

	sum, err := Write(layout, out)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if sum != (Summary{}) {
		t.Errorf("Write() = %+v, want zero", sum)
	}
}
