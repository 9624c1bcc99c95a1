// Package audit writes one JSON line per pipeline event to a dedicated
// processing log, separate from the service log stream. Every record has
// the shape {timestamp, event_type, details{...}} plus error and
// error_scenario on failure events.
package audit

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"docdigest/internal/core/domain"
)

const (
	eventUpload     = "file_upload"
	eventExtraction = "text_extraction"
	eventAPICall    = "api_call"
	eventKeywords   = "keyword_extraction"
	eventSheetWrite = "sheet_write"
	eventError      = "error"
)

type Log struct {
	logger *slog.Logger
	closer io.Closer
}

// New writes audit events to w as JSON lines.
func New(w io.Writer) *Log {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       slog.LevelInfo,
		ReplaceAttr: recordShape,
	})
	return &Log{logger: slog.New(handler)}
}

// recordShape strips the slog built-ins down to the audit record contract:
// time becomes timestamp, level and msg are dropped (event_type is the
// only discriminator).
func recordShape(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.LevelKey, slog.MessageKey:
		return slog.Attr{}
	}
	return a
}

// NewFile opens (or creates) an append-only audit log at path.
func NewFile(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	log := New(f)
	log.closer = f
	return log, nil
}

func (l *Log) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Log) emit(eventType string, details []any) {
	l.logger.Info(eventType,
		slog.String("event_type", eventType),
		slog.Group("details", details...),
	)
}

func (l *Log) Upload(meta domain.Metadata) {
	details := []any{
		slog.String("file_name", meta.FileName),
		slog.Int64("file_size", meta.FileSize),
		slog.String("file_type", string(meta.Format)),
		slog.Int64("uploader_id", meta.UploaderID),
		slog.String("uploader_username", meta.UploaderUsername),
	}
	if meta.SourceURL != "" {
		details = append(details, slog.String("source_url", meta.SourceURL))
	}
	if meta.TransportFileID != "" {
		details = append(details, slog.String("transport_file_id", meta.TransportFileID))
	}
	l.emit(eventUpload, details)
}

func (l *Log) Extraction(status string, charCount int, method domain.ExtractionMethod, usedOCR bool, fileName string) {
	details := []any{
		slog.String("status", status),
		slog.Int("char_count", charCount),
		slog.Bool("used_ocr", usedOCR),
	}
	if method != "" {
		details = append(details, slog.String("extraction_method", string(method)))
	}
	if fileName != "" {
		details = append(details, slog.String("file_name", fileName))
	}
	l.emit(eventExtraction, details)
}

func (l *Log) APICall(service, status, model string, tokensUsed int) {
	details := []any{
		slog.String("service", service),
		slog.String("status", status),
	}
	if model != "" {
		details = append(details, slog.String("model", model))
	}
	if tokensUsed > 0 {
		details = append(details, slog.Int("tokens_used", tokensUsed))
	}
	l.emit(eventAPICall, details)
}

func (l *Log) Keywords(method string, count int, status, language string) {
	details := []any{
		slog.String("extraction_method", method),
		slog.Int("keyword_count", count),
		slog.String("status", status),
	}
	if language != "" {
		details = append(details, slog.String("language", language))
	}
	l.emit(eventKeywords, details)
}

func (l *Log) SheetWrite(status string, sheetName string) {
	l.emit(eventSheetWrite, []any{
		slog.String("status", status),
		slog.String("sheet_name", sheetName),
	})
}

func (l *Log) Error(errorType, message string, scenario domain.ErrorScenario) {
	attrs := []any{
		slog.String("event_type", eventError),
		slog.Group("details", slog.String("error_type", errorType)),
		slog.String("error", message),
	}
	if scenario != "" {
		attrs = append(attrs, slog.String("error_scenario", string(scenario)))
	}
	l.logger.Error(eventError, attrs...)
}
