package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"docdigest/internal/core/domain"
	"docdigest/internal/core/usecase"
	"docdigest/internal/notify"
)

type repoStub struct {
	meta   domain.Metadata
	getErr error
}

func (s *repoStub) Create(context.Context, domain.Metadata, string) error { return nil }

func (s *repoStub) GetByID(context.Context, string) (domain.Metadata, string, error) {
	if s.getErr != nil {
		return domain.Metadata{}, "", s.getErr
	}
	return s.meta, "/data/doc", nil
}

func (s *repoStub) UpdateStatus(context.Context, string, domain.ProcessingStatus, string) error {
	return nil
}

func (s *repoStub) SaveResult(context.Context, domain.ProcessingResult) error { return nil }

type storageStub struct{}

func (storageStub) Save(_ context.Context, key string, data io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, data); err != nil {
		return "", err
	}
	return "/data/storage/" + key, nil
}

type queueStub struct {
	publishErr error
}

func (s queueStub) PublishDocumentIngested(context.Context, string) error { return s.publishErr }
func (queueStub) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return nil
}
func (queueStub) PublishNotification(context.Context, int64, string) error { return nil }

type downloaderStub struct{}

func (downloaderStub) Download(context.Context, string) (string, string, domain.ErrorScenario, error) {
	return "", "", domain.ScenarioURLInvalid, errors.New("host unreachable")
}

func newTestRouter(repo *repoStub) http.Handler {
	return newTestRouterWithQueue(repo, queueStub{})
}

func newTestRouterWithQueue(repo *repoStub, queue queueStub) http.Handler {
	ingestUC := usecase.NewIngestDocumentUseCase(repo, storageStub{}, queue, downloaderStub{}, 0)
	return NewRouter(ingestUC, repo, notify.NewService(notify.DefaultMaxFileSizeMB)).Handler()
}

func multipartUpload(t *testing.T, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.WriteField("uploader_id", "42"); err != nil {
		t.Fatalf("WriteField() error = %v", err)
	}
	if err := writer.WriteField("uploader_username", "alice"); err != nil {
		t.Fatalf("WriteField() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestRouter(&repoStub{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestUploadDocumentAccepted(t *testing.T) {
	handler := newTestRouter(&repoStub{})

	body, contentType := multipartUpload(t, "report.pdf", []byte("pdf bytes"))
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}

	var resp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["document_id"] == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp["file_name"] != "report.pdf" {
		t.Fatalf("file_name = %v", resp["file_name"])
	}
}

func TestUploadDocumentUnsupportedExtension(t *testing.T) {
	handler := newTestRouter(&repoStub{})

	body, contentType := multipartUpload(t, "setup.exe", []byte("binary"))
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", res.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] != string(domain.ScenarioUnsupportedFormat) {
		t.Fatalf("error = %q", resp["error"])
	}
	if !strings.HasPrefix(resp["message"], "❌") {
		t.Fatalf("expected user-facing message, got %q", resp["message"])
	}
}

func TestUploadDocumentMissingMultipartField(t *testing.T) {
	handler := newTestRouter(&repoStub{})

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", bytes.NewBufferString("plain-text"))
	req.Header.Set("Content-Type", "text/plain")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestUploadDocumentRejectsBadUploaderID(t *testing.T) {
	handler := newTestRouter(&repoStub{})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("file", "report.pdf")
	_, _ = part.Write([]byte("pdf bytes"))
	_ = writer.WriteField("uploader_id", "zero")
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestUploadQueueOutageMapsToServiceUnavailable(t *testing.T) {
	queue := queueStub{publishErr: errors.New("nats: no servers available")}
	handler := newTestRouterWithQueue(&repoStub{}, queue)

	body, contentType := multipartUpload(t, "report.pdf", []byte("pdf bytes"))
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}

func TestUploadFromURLInvalid(t *testing.T) {
	handler := newTestRouter(&repoStub{})

	payload := `{"url":"https://bad.example.com/doc.pdf","uploader_id":7}`
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/url", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] != string(domain.ScenarioURLInvalid) {
		t.Fatalf("error = %q", resp["error"])
	}
}

func TestGetDocumentByID(t *testing.T) {
	meta := domain.Metadata{
		DocumentID: "doc-1",
		FileName:   "report.pdf",
		FileSize:   2048,
		Format:     domain.FormatPDF,
		UploaderID: 42,
		UploadedAt: time.Now().UTC(),
		Language:   "en",
	}
	handler := newTestRouter(&repoStub{meta: meta})

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["document_id"] != "doc-1" || resp["language"] != "en" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGetDocumentByIDNotFound(t *testing.T) {
	repo := &repoStub{getErr: domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("no rows"))}
	handler := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}
