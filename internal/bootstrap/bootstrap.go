package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"docdigest/internal/config"
	"docdigest/internal/core/ports"
	"docdigest/internal/core/usecase"
	"docdigest/internal/infrastructure/download"
	"docdigest/internal/infrastructure/keywords"
	"docdigest/internal/infrastructure/language"
	"docdigest/internal/infrastructure/llm/openai"
	"docdigest/internal/infrastructure/ocr"
	"docdigest/internal/infrastructure/parser"
	"docdigest/internal/infrastructure/queue/nats"
	"docdigest/internal/infrastructure/repository/postgres"
	"docdigest/internal/infrastructure/resilience"
	"docdigest/internal/infrastructure/spreadsheet"
	"docdigest/internal/infrastructure/storage/localfs"
	"docdigest/internal/notify"
	"docdigest/internal/observability/audit"
	"docdigest/internal/observability/logging"
)

type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Notifier *notify.Service

	Queue     ports.MessageQueue
	Repo      ports.ResultRepository
	IngestUC  *usecase.IngestDocumentUseCase
	ProcessUC *usecase.ProcessDocumentUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := logging.NewJSONLogger("docdigest", cfg.LogLevel)

	auditLog, err := audit.NewFile(cfg.AuditLogPath)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewResultRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSIngestSubject, cfg.NATSNotifySubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	registry := parser.NewRegistry()
	downloader := download.NewDownloader(registry, cfg.DownloadTimeout, logging.Component(logger, "download"))
	detector := language.NewDetector()

	ocrEngine := ocr.NewEngine(ocr.Config{
		Tesseract: cfg.TesseractPath,
		Pdftoppm:  cfg.PdftoppmPath,
		Language:  cfg.OCRLanguage,
		DPI:       cfg.OCRDPI,
		MaxPages:  cfg.OCRMaxPages,
	}, logging.Component(logger, "ocr"))

	client := openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	summarizer := openai.NewSummarizer(client, cfg.OpenAIModel, newExecutor(cfg), logging.Component(logger, "summarizer"))

	extractor := keywords.NewExtractor(detector)
	workbook := spreadsheet.NewWorkbook(cfg.WorkbookPath, newExecutor(cfg), logging.Component(logger, "spreadsheet"))
	notifier := notify.NewService(cfg.MaxFileSizeMB)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue, downloader, cfg.MaxFileSizeBytes())
	processUC := usecase.NewProcessDocumentUseCase(
		repo,
		registry,
		ocrEngine,
		detector,
		summarizer,
		extractor,
		workbook,
		queue,
		auditLog,
		notifier,
		cfg.KeywordCount,
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Notifier: notifier,

		Queue: queue,
		Repo:  repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,

		closeFn: func() {
			queue.Close()
			_ = auditLog.Close()
			_ = db.Close()
		},
	}, nil
}

// newExecutor builds one retry executor per consumer; executors track
// attempt state and must not be shared across components.
func newExecutor(cfg config.Config) *resilience.Executor {
	rc := resilience.DefaultConfig()
	rc.MaxRetries = cfg.RetryMaxRetries
	rc.BaseDelay = cfg.RetryBaseDelay
	rc.MaxDelay = cfg.RetryMaxDelay
	rc.ExponentialBase = cfg.RetryExponentialBase
	rc.Jitter = cfg.RetryJitter
	rc.BreakerEnabled = true
	return resilience.NewExecutor(rc)
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
