package domain

import "time"

type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// ExtractionMethod names the technique that produced extracted text.
type ExtractionMethod string

const (
	MethodPlainRead    ExtractionMethod = "plain_read"
	MethodPDFRead      ExtractionMethod = "pdf_read"
	MethodDOCXRead     ExtractionMethod = "docx_read"
	MethodTesseractOCR ExtractionMethod = "tesseract_ocr"
)

// ParseResult is the outcome of one extraction attempt.
// Invariant: Success implies non-empty Text and CharCount == len([]rune(Text)).
type ParseResult struct {
	Text          string
	CharCount     int
	Success       bool
	Method        ExtractionMethod
	ErrorMessage  string
	ErrorScenario ErrorScenario
	UsedOCR       bool
	OCRConfidence *float64 // 0..100, nil when no confidence was reported
}

func FailedParse(method ExtractionMethod, scenario ErrorScenario, message string) ParseResult {
	return ParseResult{
		Method:        method,
		ErrorMessage:  message,
		ErrorScenario: scenario,
	}
}

// SummaryResult is the outcome of summarization.
// Invariant: on success the sentence count is within the configured bounds,
// except when the input was below the minimum summarization threshold and
// was echoed verbatim.
type SummaryResult struct {
	Summary       string
	SentenceCount int
	Language      string
	Success       bool
	Model         string
	TokensUsed    int
	ErrorMessage  string
	ErrorScenario ErrorScenario
}

// KeywordsResult is the outcome of keyword extraction.
// Invariant: Count == len(Keywords); Formatted is the ", "-joined rendering.
type KeywordsResult struct {
	Keywords      []string
	Formatted     string
	Count         int
	Success       bool
	Method        string
	ErrorMessage  string
	ErrorScenario ErrorScenario
}

// ProcessingResult aggregates every stage outcome for one document. The
// orchestrator builds it exactly once; it is never partially filled when
// Status is completed.
type ProcessingResult struct {
	Metadata       Metadata
	Parse          ParseResult
	Summary        SummaryResult
	Keywords       KeywordsResult
	Status         ProcessingStatus
	ProcessingTime time.Duration
	ErrorScenario  ErrorScenario
}
