// Package spreadsheet appends processing results as flat rows to a local
// XLSX workbook, one row per document.
package spreadsheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"

	"docdigest/internal/core/domain"
	"docdigest/internal/infrastructure/resilience"
)

const SheetName = "Documents"

var headers = []string{
	"Timestamp",
	"Uploader ID",
	"Uploader Username",
	"File Name",
	"File Type",
	"File Size",
	"Char Count",
	"Language",
	"Summary",
	"Keywords",
	"Status",
	"Error Message",
	"Model",
	"Extraction Method",
	"OCR Used",
	"Processing Time (s)",
}

// Workbook serializes appends through a mutex: excelize files are not
// safe for concurrent mutation and the workbook is shared per process.
type Workbook struct {
	path     string
	executor *resilience.Executor
	logger   *slog.Logger

	mu sync.Mutex
}

func NewWorkbook(path string, executor *resilience.Executor, logger *slog.Logger) *Workbook {
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Workbook{path: path, executor: executor, logger: logger}
}

// AppendRow writes one result row after the existing rows. Rows missing
// required fields are rejected with sheet_write_error before any I/O.
func (w *Workbook) AppendRow(ctx context.Context, row domain.SheetRow) error {
	if !row.HasRequiredFields() {
		return domain.NewScenarioError(domain.ScenarioSheetWriteError,
			fmt.Errorf("row for %q is missing required fields", row.FileName))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	return w.executor.Execute(ctx, "sheet_append", func(ctx context.Context) error {
		return w.appendOnce(row)
	}, func(err error) bool {
		var scenarioErr *domain.ScenarioError
		if errors.As(err, &scenarioErr) {
			return scenarioErr.Scenario.Retryable()
		}
		return false
	})
}

func (w *Workbook) appendOnce(row domain.SheetRow) error {
	file, created, err := w.open()
	if err != nil {
		return err
	}
	defer file.Close()

	if created {
		if err := w.writeHeaders(file); err != nil {
			return domain.NewScenarioError(domain.ScenarioSheetWriteError, err)
		}
	}

	rows, err := file.GetRows(SheetName)
	if err != nil {
		return domain.NewScenarioError(domain.ScenarioSheetWriteError, fmt.Errorf("read sheet rows: %w", err))
	}
	target := len(rows) + 1

	for i, value := range row.ToRow() {
		cell, err := excelize.CoordinatesToCellName(i+1, target)
		if err != nil {
			return domain.NewScenarioError(domain.ScenarioSheetWriteError, err)
		}
		if err := file.SetCellValue(SheetName, cell, value); err != nil {
			return domain.NewScenarioError(domain.ScenarioSheetWriteError, fmt.Errorf("set cell %s: %w", cell, err))
		}
	}

	if err := file.SaveAs(w.path); err != nil {
		return domain.NewScenarioError(domain.ScenarioSheetWriteError, fmt.Errorf("save workbook: %w", err))
	}

	w.logger.Info("sheet_row_appended", "sheet", SheetName, "row", target, "file_name", row.FileName)
	return nil
}

// open loads the workbook, creating a fresh file with the results sheet
// when none exists yet. Open failures on an existing file classify as
// sheet_auth_error: the workbook is present but not accessible.
func (w *Workbook) open() (*excelize.File, bool, error) {
	if _, err := os.Stat(w.path); os.IsNotExist(err) {
		file := excelize.NewFile()
		if _, err := file.NewSheet(SheetName); err != nil {
			file.Close()
			return nil, false, domain.NewScenarioError(domain.ScenarioSheetWriteError, err)
		}
		if err := file.DeleteSheet("Sheet1"); err != nil {
			file.Close()
			return nil, false, domain.NewScenarioError(domain.ScenarioSheetWriteError, err)
		}
		return file, true, nil
	}

	file, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, false, domain.NewScenarioError(domain.ScenarioSheetAuthError,
			fmt.Errorf("open workbook %s: %w", w.path, err))
	}
	if index, _ := file.GetSheetIndex(SheetName); index == -1 {
		if _, err := file.NewSheet(SheetName); err != nil {
			file.Close()
			return nil, false, domain.NewScenarioError(domain.ScenarioSheetWriteError, err)
		}
		return file, true, nil
	}
	return file, false, nil
}

func (w *Workbook) writeHeaders(file *excelize.File) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
	}
	return nil
}
