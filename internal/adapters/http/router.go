package httpadapter

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"docdigest/internal/core/domain"
	"docdigest/internal/core/ports"
	"docdigest/internal/core/usecase"
)

type Router struct {
	ingestUC *usecase.IngestDocumentUseCase
	repo     ports.ResultRepository
	notifier usecase.Notifier
}

func NewRouter(
	ingestUC *usecase.IngestDocumentUseCase,
	repo ports.ResultRepository,
	notifier usecase.Notifier,
) *Router {
	return &Router{
		ingestUC: ingestUC,
		repo:     repo,
		notifier: notifier,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/url", rt.uploadFromURL)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	return loggingMiddleware(mux)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type documentResponse struct {
	DocumentID       string `json:"document_id"`
	FileName         string `json:"file_name"`
	FileSize         int64  `json:"file_size"`
	Format           string `json:"format"`
	UploaderID       int64  `json:"uploader_id"`
	UploaderUsername string `json:"uploader_username,omitempty"`
	UploadedAt       string `json:"uploaded_at"`
	Language         string `json:"language,omitempty"`
	SourceURL        string `json:"source_url,omitempty"`
}

func toDocumentResponse(meta domain.Metadata) documentResponse {
	return documentResponse{
		DocumentID:       meta.DocumentID,
		FileName:         meta.FileName,
		FileSize:         meta.FileSize,
		Format:           string(meta.Format),
		UploaderID:       meta.UploaderID,
		UploaderUsername: meta.UploaderUsername,
		UploadedAt:       meta.UploadedAt.UTC().Format(time.RFC3339),
		Language:         meta.Language,
		SourceURL:        meta.SourceURL,
	}
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	uploaderID, err := parseUploaderID(r.FormValue("uploader_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	meta, err := rt.ingestUC.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Size,
		uploaderID,
		r.FormValue("uploader_username"),
		file,
	)
	if err != nil {
		rt.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, toDocumentResponse(meta))
}

func (rt *Router) uploadFromURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		URL              string `json:"url"`
		UploaderID       int64  `json:"uploader_id"`
		UploaderUsername string `json:"uploader_username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url is required"})
		return
	}
	if req.UploaderID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "uploader_id must be positive"})
		return
	}

	meta, err := rt.ingestUC.UploadFromURL(r.Context(), req.URL, req.UploaderID, req.UploaderUsername)
	if err != nil {
		rt.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, toDocumentResponse(meta))
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	meta, _, err := rt.repo.GetByID(r.Context(), id)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentResponse(meta))
}

func parseUploaderID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errUploaderID
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
