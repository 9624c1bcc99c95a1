package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"docdigest/internal/core/domain"
	"docdigest/internal/core/ports"
)

// IngestDocumentUseCase accepts documents by direct upload or by URL,
// validates them, stores the bytes and enqueues the document for the
// worker pool.
type IngestDocumentUseCase struct {
	repo        ports.ResultRepository
	storage     ports.ObjectStorage
	queue       ports.MessageQueue
	downloader  ports.Downloader
	maxFileSize int64
}

func NewIngestDocumentUseCase(
	repo ports.ResultRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	downloader ports.Downloader,
	maxFileSize int64,
) *IngestDocumentUseCase {
	if maxFileSize <= 0 {
		maxFileSize = domain.DefaultMaxFileSizeBytes
	}
	return &IngestDocumentUseCase{
		repo:        repo,
		storage:     storage,
		queue:       queue,
		downloader:  downloader,
		maxFileSize: maxFileSize,
	}
}

// Upload validates and stores one document. Validation failures return a
// ScenarioError so transports can render the user-facing message.
func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	fileName string,
	fileSize int64,
	uploaderID int64,
	uploaderUsername string,
	body io.Reader,
) (domain.Metadata, error) {
	if validation := domain.ValidateFile(fileName, fileSize, uc.maxFileSize); !validation.Valid {
		return domain.Metadata{}, domain.NewScenarioError(validation.ErrorScenario, errors.New(validation.ErrorMessage))
	}

	format, _ := domain.FormatFromExtension(extensionOf(fileName))
	meta := domain.Metadata{
		DocumentID:       uuid.NewString(),
		FileName:         fileName,
		FileSize:         fileSize,
		Format:           format,
		UploaderID:       uploaderID,
		UploaderUsername: uploaderUsername,
		UploadedAt:       time.Now().UTC(),
	}
	return uc.ingest(ctx, meta, body)
}

// UploadFromURL downloads the remote document into a temp file, then
// ingests it like a direct upload.
func (uc *IngestDocumentUseCase) UploadFromURL(
	ctx context.Context,
	url string,
	uploaderID int64,
	uploaderUsername string,
) (domain.Metadata, error) {
	path, fileName, scenario, err := uc.downloader.Download(ctx, url)
	if err != nil {
		return domain.Metadata{}, domain.NewScenarioError(scenario, err)
	}
	defer os.Remove(path)

	info, err := os.Stat(path)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("stat downloaded file: %w", err)
	}
	if validation := domain.ValidateFile(fileName, info.Size(), uc.maxFileSize); !validation.Valid {
		return domain.Metadata{}, domain.NewScenarioError(validation.ErrorScenario, errors.New(validation.ErrorMessage))
	}

	f, err := os.Open(path)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("open downloaded file: %w", err)
	}
	defer f.Close()

	format, _ := domain.FormatFromExtension(extensionOf(fileName))
	meta := domain.Metadata{
		DocumentID:       uuid.NewString(),
		FileName:         fileName,
		FileSize:         info.Size(),
		Format:           format,
		UploaderID:       uploaderID,
		UploaderUsername: uploaderUsername,
		UploadedAt:       time.Now().UTC(),
		SourceURL:        url,
	}
	return uc.ingest(ctx, meta, f)
}

func (uc *IngestDocumentUseCase) ingest(ctx context.Context, meta domain.Metadata, body io.Reader) (domain.Metadata, error) {
	storageKey := fmt.Sprintf("%s_%s", meta.DocumentID, sanitizeFilename(meta.FileName))

	storagePath, err := uc.storage.Save(ctx, storageKey, body)
	if err != nil {
		return domain.Metadata{}, domain.WrapError(domain.ErrTemporary, "save to object storage", err)
	}

	if err := uc.repo.Create(ctx, meta, storagePath); err != nil {
		return domain.Metadata{}, fmt.Errorf("create document record: %w", err)
	}

	// The record exists but the worker will never hear about it; surface
	// this as retryable so the caller re-submits.
	if err := uc.queue.PublishDocumentIngested(ctx, meta.DocumentID); err != nil {
		return domain.Metadata{}, domain.WrapError(domain.ErrTemporary, "publish ingestion event", err)
	}
	return meta, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}

func extensionOf(fileName string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
}
