// Package export writes a partition's metadata logs to a spreadsheet.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vietddude/harvester/internal/core/domain"
	"github.com/vietddude/harvester/internal/harvest"
)

// Sheet names.
const (
	SheetSuccess = "success"
	SheetFailed  = "failed"
)

// Columns is the header row of both sheets.
var Columns = []string{
	"source_record_id", "title", "authors", "publisher", "doi", "isbn", "language",
	"resource_type", "source_site", "source_page_url", "download_url",
	"license_raw", "license_category", "license_reason",
	"download_status", "download_status_reason", "file_format", "local_file_name",
	"file_size", "page_count", "downloaded_at", "run_id",
}

// Summary counts exported rows.
type Summary struct {
	Success int
	Failed  int
}

// Write exports the success and failed logs of layout to an .xlsx file at out.
func Write(layout harvest.Layout, out string) (Summary, error) {
	success, err := harvest.ReadLog(layout.SuccessLog())
	if err != nil {
		return Summary{}, err
	}
	failed, err := harvest.ReadLog(layout.FailedLog())
	if err != nil {
		return Summary{}, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSuccess); err != nil {
		return Summary{}, err
	}
	if _, err := f.NewSheet(SheetFailed); err != nil {
		return Summary{}, err
	}

	for sheet, rows := range map[string][]domain.ResourceMetadata{SheetSuccess: success, SheetFailed: failed} {
		if err := writeSheet(f, sheet, rows); err != nil {
			return Summary{}, fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(out); err != nil {
		return Summary{}, fmt.Errorf("save workbook: %w", err)
	}
	return Summary{Success: len(success), Failed: len(failed)}, nil
}

func writeSheet(f *excelize.File, sheet string, rows []domain.ResourceMetadata) error {
	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	for i, m := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			m.SourceRecordID, m.Title, m.Authors, m.Publisher, m.DOI, m.ISBN, m.Language,
			m.ResourceType, m.SourceSite, m.SourcePageURL, m.DownloadURL,
			m.LicenseRaw, string(m.LicenseCategory), m.LicenseReason,
			string(m.DownloadStatus), m.StatusReason, m.FileFormat, m.LocalFileName,
			m.FileSize, m.PageCount, m.DownloadedAt, m.RunID,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
