package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docdigest/internal/core/domain"
	"docdigest/internal/core/ports"
)

// Notifier renders user-facing messages for terminal pipeline states.
type Notifier interface {
	ProcessingStarted() string
	ResultMessage(result domain.ProcessingResult) string
	ValidationMessage(scenario domain.ErrorScenario, message string) string
}

// ProcessDocumentUseCase runs the sequential pipeline for one document:
// extraction, language detection, summarization, keyword extraction.
// The first failing stage short-circuits the run; downstream results are
// synthesized carrying the failing stage's scenario.
type ProcessDocumentUseCase struct {
	repo         ports.ResultRepository
	registry     ports.ParserRegistry
	ocr          ports.PageOCR
	detector     ports.LanguageDetector
	summarizer   ports.Summarizer
	keywords     ports.KeywordExtractor
	sheet        ports.SheetWriter
	queue        ports.MessageQueue
	audit        ports.AuditLog
	notifier     Notifier
	keywordCount int
}

func NewProcessDocumentUseCase(
	repo ports.ResultRepository,
	registry ports.ParserRegistry,
	ocr ports.PageOCR,
	detector ports.LanguageDetector,
	summarizer ports.Summarizer,
	keywords ports.KeywordExtractor,
	sheet ports.SheetWriter,
	queue ports.MessageQueue,
	auditLog ports.AuditLog,
	notifier Notifier,
	keywordCount int,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:         repo,
		registry:     registry,
		ocr:          ocr,
		detector:     detector,
		summarizer:   summarizer,
		keywords:     keywords,
		sheet:        sheet,
		queue:        queue,
		audit:        auditLog,
		notifier:     notifier,
		keywordCount: keywordCount,
	}
}

// ProcessByID loads a queued document, runs the pipeline and persists the
// aggregate. The returned result is terminal: completed or failed, never
// pending.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) (domain.ProcessingResult, error) {
	meta, storagePath, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return domain.ProcessingResult{}, fmt.Errorf("fetch document by id: %w", err)
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return domain.ProcessingResult{}, fmt.Errorf("set status=processing: %w", err)
	}
	uc.notify(ctx, meta.UploaderID, uc.notifier.ProcessingStarted())

	result := uc.Process(ctx, storagePath, meta)

	if result.Status == domain.StatusCompleted {
		if err := uc.appendSheetRow(ctx, &result); err != nil {
			result = uc.failSheetWrite(result, err)
		}
	}

	if err := uc.repo.SaveResult(ctx, result); err != nil {
		return result, fmt.Errorf("save result: %w", err)
	}
	uc.notify(ctx, meta.UploaderID, uc.notifier.ResultMessage(result))

	return result, nil
}

// Process runs the pipeline against an already-stored file. The metadata
// language is attached after detection so persisted rows carry it.
func (uc *ProcessDocumentUseCase) Process(ctx context.Context, path string, meta domain.Metadata) domain.ProcessingResult {
	start := time.Now()
	uc.audit.Upload(meta)

	parse := uc.parse(ctx, path, meta.Format)
	if !parse.Success {
		uc.audit.Error("ParseError", parse.ErrorMessage, parse.ErrorScenario)
		return uc.failedResult(meta, parse, nil, nil, time.Since(start), parse.ErrorScenario)
	}
	uc.audit.Extraction("success", parse.CharCount, parse.Method, parse.UsedOCR, meta.FileName)

	language := uc.detector.Detect(parse.Text)
	meta.Language = language

	summary := uc.summarizer.Summarize(ctx, parse.Text, language)
	if !summary.Success {
		uc.audit.APICall("openai", "error", summary.Model, 0)
		uc.audit.Error("SummarizationError", summary.ErrorMessage, summary.ErrorScenario)
		return uc.failedResult(meta, parse, &summary, nil, time.Since(start), summary.ErrorScenario)
	}
	uc.audit.APICall("openai", "success", summary.Model, summary.TokensUsed)

	keywords := uc.keywords.Extract(parse.Text, uc.keywordCount, language)
	if !keywords.Success {
		uc.audit.Error("KeywordExtractionError", keywords.ErrorMessage, keywords.ErrorScenario)
		return uc.failedResult(meta, parse, &summary, &keywords, time.Since(start), keywords.ErrorScenario)
	}
	uc.audit.Keywords(keywords.Method, keywords.Count, "success", language)

	return domain.ProcessingResult{
		Metadata:       meta,
		Parse:          parse,
		Summary:        summary,
		Keywords:       keywords,
		Status:         domain.StatusCompleted,
		ProcessingTime: time.Since(start),
	}
}

// parse resolves the format's strategy and falls back to OCR for PDFs
// that extracted no text, the signature of scanned documents.
func (uc *ProcessDocumentUseCase) parse(ctx context.Context, path string, format domain.Format) domain.ParseResult {
	parser, ok := uc.registry.ForFormat(format)
	if !ok {
		return domain.FailedParse(
			domain.MethodPlainRead,
			domain.ScenarioUnsupportedFormat,
			fmt.Sprintf("no parser available for format: %s", format),
		)
	}

	result := parser.Parse(path)
	if result.Success {
		return result
	}
	if format == domain.FormatPDF && result.ErrorScenario == domain.ScenarioEmptyDocument && uc.ocr != nil {
		return uc.ocr.ProcessPages(ctx, path)
	}
	return result
}

// failedResult fills the stages that never ran with empty failures
// carrying the terminal scenario.
func (uc *ProcessDocumentUseCase) failedResult(
	meta domain.Metadata,
	parse domain.ParseResult,
	summary *domain.SummaryResult,
	keywords *domain.KeywordsResult,
	elapsed time.Duration,
	scenario domain.ErrorScenario,
) domain.ProcessingResult {
	if summary == nil {
		language := meta.Language
		if language == "" {
			language = "en"
		}
		summary = &domain.SummaryResult{Language: language, ErrorScenario: scenario}
	}
	if keywords == nil {
		keywords = &domain.KeywordsResult{Method: "statistical", ErrorScenario: scenario}
	}
	return domain.ProcessingResult{
		Metadata:       meta,
		Parse:          parse,
		Summary:        *summary,
		Keywords:       *keywords,
		Status:         domain.StatusFailed,
		ProcessingTime: elapsed,
		ErrorScenario:  scenario,
	}
}

func (uc *ProcessDocumentUseCase) appendSheetRow(ctx context.Context, result *domain.ProcessingResult) error {
	if uc.sheet == nil {
		return nil
	}
	if err := uc.sheet.AppendRow(ctx, domain.SheetRowFromResult(*result)); err != nil {
		uc.audit.SheetWrite("error", "Documents")
		return err
	}
	uc.audit.SheetWrite("success", "Documents")
	return nil
}

func (uc *ProcessDocumentUseCase) failSheetWrite(result domain.ProcessingResult, err error) domain.ProcessingResult {
	scenario := domain.ScenarioSheetWriteError
	var scenarioErr *domain.ScenarioError
	if errors.As(err, &scenarioErr) {
		scenario = scenarioErr.Scenario
	}
	uc.audit.Error("SheetWriteError", err.Error(), scenario)
	result.Status = domain.StatusFailed
	result.ErrorScenario = scenario
	return result
}

func (uc *ProcessDocumentUseCase) notify(ctx context.Context, uploaderID int64, text string) {
	if uc.queue == nil || uploaderID <= 0 || text == "" {
		return
	}
	// Notification delivery is best effort; processing never fails on it.
	_ = uc.queue.PublishNotification(ctx, uploaderID, text)
}
