package ports

import (
	"context"
	"io"

	"docdigest/internal/core/domain"
)

// Parser extracts text from one supported document format.
type Parser interface {
	Supports(extension string) bool
	Parse(path string) domain.ParseResult
}

// ParserRegistry resolves the extraction strategy for a format.
type ParserRegistry interface {
	ForFormat(format domain.Format) (Parser, bool)
	IsSupported(fileName string) bool
}

// PageOCR recognizes text on rendered document pages.
type PageOCR interface {
	ProcessPages(ctx context.Context, documentPath string) domain.ParseResult
}

// Summarizer produces a bounded-length summary of extracted text.
type Summarizer interface {
	Summarize(ctx context.Context, text, language string) domain.SummaryResult
}

// KeywordExtractor produces a bounded, deduplicated keyword set.
type KeywordExtractor interface {
	Extract(text string, count int, language string) domain.KeywordsResult
}

// LanguageDetector classifies raw text as one of the two locales.
type LanguageDetector interface {
	Detect(text string) string
}

// ResultRepository persists document state and the final aggregate.
type ResultRepository interface {
	Create(ctx context.Context, meta domain.Metadata, storagePath string) error
	GetByID(ctx context.Context, documentID string) (domain.Metadata, string, error)
	UpdateStatus(ctx context.Context, documentID string, status domain.ProcessingStatus, errMessage string) error
	SaveResult(ctx context.Context, result domain.ProcessingResult) error
}

// SheetWriter appends one flat row per processed document.
type SheetWriter interface {
	AppendRow(ctx context.Context, row domain.SheetRow) error
}

// ObjectStorage stores source documents and reports where they landed.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) (string, error)
}

// MessageQueue publishes/consumes ingestion events and notifications.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
	PublishNotification(ctx context.Context, uploaderID int64, text string) error
}

// AuditLog records one structured event per pipeline step.
type AuditLog interface {
	Upload(meta domain.Metadata)
	Extraction(status string, charCount int, method domain.ExtractionMethod, usedOCR bool, fileName string)
	APICall(service, status, model string, tokensUsed int)
	Keywords(method string, count int, status, language string)
	SheetWrite(status string, sheetName string)
	Error(errorType, message string, scenario domain.ErrorScenario)
}

// Downloader fetches a remote document to a local temp file.
type Downloader interface {
	Download(ctx context.Context, url string) (path string, fileName string, scenario domain.ErrorScenario, err error)
}
