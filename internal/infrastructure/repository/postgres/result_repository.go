package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"docdigest/internal/core/domain"
)

type ResultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ResultRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	file_name TEXT NOT NULL,
	file_size BIGINT NOT NULL,
	format TEXT NOT NULL,
	uploader_id BIGINT NOT NULL,
	uploader_username TEXT,
	source_url TEXT,
	transport_file_id TEXT,
	storage_path TEXT NOT NULL,
	language TEXT,
	status TEXT NOT NULL,
	char_count INTEGER NOT NULL DEFAULT 0,
	extraction_method TEXT,
	used_ocr BOOLEAN NOT NULL DEFAULT FALSE,
	ocr_confidence DOUBLE PRECISION,
	summary TEXT,
	sentence_count INTEGER NOT NULL DEFAULT 0,
	model TEXT,
	tokens_used INTEGER NOT NULL DEFAULT 0,
	keywords TEXT,
	error_message TEXT,
	error_scenario TEXT,
	processing_time_ms BIGINT NOT NULL DEFAULT 0,
	uploaded_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_uploaded_at ON documents(uploaded_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ResultRepository) Create(ctx context.Context, meta domain.Metadata, storagePath string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, file_name, file_size, format, uploader_id, uploader_username, source_url, transport_file_id, storage_path, status, uploaded_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		meta.DocumentID, meta.FileName, meta.FileSize, string(meta.Format), meta.UploaderID,
		meta.UploaderUsername, meta.SourceURL, meta.TransportFileID, storagePath,
		string(domain.StatusPending), meta.UploadedAt, now,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *ResultRepository) GetByID(ctx context.Context, documentID string) (domain.Metadata, string, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, file_name, file_size, format, uploader_id, uploader_username, source_url, transport_file_id, storage_path, COALESCE(language, ''), uploaded_at
FROM documents
WHERE id = $1
`, documentID)

	var meta domain.Metadata
	var format, storagePath string
	err := row.Scan(
		&meta.DocumentID, &meta.FileName, &meta.FileSize, &format, &meta.UploaderID,
		&meta.UploaderUsername, &meta.SourceURL, &meta.TransportFileID, &storagePath,
		&meta.Language, &meta.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Metadata{}, "", domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("document %s", documentID))
		}
		return domain.Metadata{}, "", fmt.Errorf("scan document: %w", err)
	}
	meta.Format = domain.Format(format)
	return meta, storagePath, nil
}

func (r *ResultRepository) UpdateStatus(ctx context.Context, documentID string, status domain.ProcessingStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, documentID, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return requireRowAffected(res, "update status", documentID)
}

func (r *ResultRepository) SaveResult(ctx context.Context, result domain.ProcessingResult) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2,
	language = $3,
	char_count = $4,
	extraction_method = $5,
	used_ocr = $6,
	ocr_confidence = $7,
	summary = $8,
	sentence_count = $9,
	model = $10,
	tokens_used = $11,
	keywords = $12,
	error_message = $13,
	error_scenario = $14,
	processing_time_ms = $15,
	updated_at = $16
WHERE id = $1
`,
		result.Metadata.DocumentID, string(result.Status), result.Metadata.Language,
		result.Parse.CharCount, string(result.Parse.Method), result.Parse.UsedOCR,
		result.Parse.OCRConfidence, result.Summary.Summary, result.Summary.SentenceCount,
		result.Summary.Model, result.Summary.TokensUsed, result.Keywords.Formatted,
		errorMessageOf(result), string(result.ErrorScenario),
		result.ProcessingTime.Milliseconds(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save processing result: %w", err)
	}
	return requireRowAffected(res, "save result", result.Metadata.DocumentID)
}

func requireRowAffected(res sql.Result, op, documentID string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, op, fmt.Errorf("document %s", documentID))
	}
	return nil
}

// errorMessageOf surfaces the first stage error, walking the pipeline in
// execution order.
func errorMessageOf(result domain.ProcessingResult) string {
	if result.Parse.ErrorMessage != "" {
		return result.Parse.ErrorMessage
	}
	if result.Summary.ErrorMessage != "" {
		return result.Summary.ErrorMessage
	}
	return result.Keywords.ErrorMessage
}
