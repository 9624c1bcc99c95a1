package spreadsheet

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"docdigest/internal/core/domain"
	"docdigest/internal/infrastructure/resilience"
)

func testRow(fileName string) domain.SheetRow {
	return domain.SheetRow{
		Timestamp:        time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC).Format(time.RFC3339),
		UploaderID:       "42",
		FileName:         fileName,
		FileType:         "pdf",
		FileSize:         2048,
		CharCount:        950,
		Language:         "en",
		Summary:          "First. Second. Third.",
		Keywords:         "storage, replication",
		Status:           "completed",
		Model:            "gpt-4",
		ExtractionMethod: "pdf_read",
		ProcessingTime:   1.25,
	}
}

func newTestWorkbook(t *testing.T) *Workbook {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.xlsx")
	executor := resilience.NewExecutor(resilience.Config{
		MaxRetries:      1,
		BaseDelay:       time.Millisecond,
		MaxDelay:        time.Millisecond,
		ExponentialBase: 2,
	})
	return NewWorkbook(path, executor, nil)
}

func TestAppendRowCreatesWorkbookWithHeaders(t *testing.T) {
	w := newTestWorkbook(t)

	if err := w.AppendRow(context.Background(), testRow("report.pdf")); err != nil {
		t.Fatalf("AppendRow failed: %v", err)
	}

	file, err := excelize.OpenFile(w.path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer file.Close()

	rows, err := file.GetRows(SheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 data row, got %d rows", len(rows))
	}
	if rows[0][0] != "Timestamp" || len(rows[0]) != len(headers) {
		t.Fatalf("unexpected header row %v", rows[0])
	}
	if rows[1][3] != "report.pdf" {
		t.Fatalf("expected file name in column 4, got %v", rows[1])
	}
}

func TestAppendRowAppendsAfterExistingRows(t *testing.T) {
	w := newTestWorkbook(t)
	ctx := context.Background()

	if err := w.AppendRow(ctx, testRow("first.pdf")); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if err := w.AppendRow(ctx, testRow("second.pdf")); err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	file, err := excelize.OpenFile(w.path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer file.Close()

	rows, err := file.GetRows(SheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 data rows, got %d", len(rows))
	}
	if rows[2][3] != "second.pdf" {
		t.Fatalf("expected second.pdf in last row, got %v", rows[2])
	}
}

func TestAppendRowRejectsMissingRequiredFields(t *testing.T) {
	w := newTestWorkbook(t)

	row := testRow("report.pdf")
	row.Summary = ""
	err := w.AppendRow(context.Background(), row)
	if err == nil {
		t.Fatal("expected error for missing summary")
	}

	var scenarioErr *domain.ScenarioError
	if !errors.As(err, &scenarioErr) {
		t.Fatalf("expected scenario error, got %v", err)
	}
	if scenarioErr.Scenario != domain.ScenarioSheetWriteError {
		t.Fatalf("expected sheet_write_error, got %s", scenarioErr.Scenario)
	}
}

func TestAppendRowOCRUsedRenderedAsText(t *testing.T) {
	w := newTestWorkbook(t)

	row := testRow("scan.pdf")
	row.OCRUsed = true
	if err := w.AppendRow(context.Background(), row); err != nil {
		t.Fatalf("AppendRow failed: %v", err)
	}

	file, err := excelize.OpenFile(w.path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer file.Close()

	value, err := file.GetCellValue(SheetName, "O2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if value != "true" {
		t.Fatalf("expected OCR flag rendered as \"true\", got %q", value)
	}
}
