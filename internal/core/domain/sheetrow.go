package domain

import (
	"strconv"
	"time"
)

// SheetRow is the flat 16-column record appended to the results workbook.
// Column order is fixed; the sheet writer rejects rows missing required
// fields (timestamp, an uploader identifier, file name, summary, keywords).
type SheetRow struct {
	Timestamp        string
	UploaderID       string
	UploaderUsername string
	FileName         string
	FileType         string
	FileSize         int64
	CharCount        int
	Language         string
	Summary          string
	Keywords         string
	Status           string
	ErrorMessage     string
	Model            string
	ExtractionMethod string
	OCRUsed          bool
	ProcessingTime   float64
}

func (r SheetRow) ToRow() []any {
	ocrUsed := "false"
	if r.OCRUsed {
		ocrUsed = "true"
	}
	return []any{
		r.Timestamp,
		r.UploaderID,
		r.UploaderUsername,
		r.FileName,
		r.FileType,
		r.FileSize,
		r.CharCount,
		r.Language,
		r.Summary,
		r.Keywords,
		r.Status,
		r.ErrorMessage,
		r.Model,
		r.ExtractionMethod,
		ocrUsed,
		r.ProcessingTime,
	}
}

func (r SheetRow) HasRequiredFields() bool {
	return r.Timestamp != "" &&
		(r.UploaderID != "" || r.UploaderUsername != "") &&
		r.FileName != "" &&
		r.Summary != "" &&
		r.Keywords != ""
}

// SheetRowFromResult flattens an aggregate result into the storage row.
func SheetRowFromResult(result ProcessingResult) SheetRow {
	return SheetRow{
		Timestamp:        result.Metadata.UploadedAt.Format(time.RFC3339),
		UploaderID:       formatUploaderID(result.Metadata.UploaderID),
		UploaderUsername: result.Metadata.UploaderUsername,
		FileName:         result.Metadata.FileName,
		FileType:         string(result.Metadata.Format),
		FileSize:         result.Metadata.FileSize,
		CharCount:        result.Parse.CharCount,
		Language:         result.Summary.Language,
		Summary:          result.Summary.Summary,
		Keywords:         result.Keywords.Formatted,
		Status:           string(result.Status),
		ErrorMessage:     result.Summary.ErrorMessage,
		Model:            result.Summary.Model,
		ExtractionMethod: string(result.Parse.Method),
		OCRUsed:          result.Parse.UsedOCR,
		ProcessingTime:   result.ProcessingTime.Seconds(),
	}
}

func formatUploaderID(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
