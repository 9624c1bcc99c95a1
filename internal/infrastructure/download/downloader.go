package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docdigest/internal/core/domain"
	"docdigest/internal/core/ports"
)

const defaultTimeout = 30 * time.Second

// Downloader fetches remote documents into temp files. Any network or
// protocol failure maps to the url_invalid scenario; only a fetched file
// in an unsupported format maps to unsupported_format.
type Downloader struct {
	registry ports.ParserRegistry
	client   *http.Client
	logger   *slog.Logger
}

func NewDownloader(registry ports.ParserRegistry, timeout time.Duration, logger *slog.Logger) *Downloader {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		registry: registry,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (d *Downloader) Download(ctx context.Context, rawURL string) (string, string, domain.ErrorScenario, error) {
	if validation := domain.ValidateURL(rawURL); !validation.Valid {
		return "", "", validation.ErrorScenario, errors.New(validation.ErrorMessage)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", domain.ScenarioURLInvalid, fmt.Errorf("create download request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Error("url_download_failed", "url", rawURL, "error", err)
		return "", "", domain.ScenarioURLInvalid, fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", "", domain.ScenarioURLInvalid, fmt.Errorf("download %s: status %s", rawURL, resp.Status)
	}

	fileName := filenameFromResponse(rawURL, resp)
	if fileName == "" {
		return "", "", domain.ScenarioURLInvalid, fmt.Errorf("cannot determine file name for %s", rawURL)
	}
	if !d.registry.IsSupported(fileName) {
		return "", "", domain.ScenarioUnsupportedFormat, fmt.Errorf("unsupported file format: %s", fileName)
	}

	tmp, err := os.CreateTemp("", "docdigest-*"+filepath.Ext(fileName))
	if err != nil {
		return "", "", domain.ScenarioURLInvalid, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", "", domain.ScenarioURLInvalid, fmt.Errorf("write download body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", "", domain.ScenarioURLInvalid, fmt.Errorf("close temp file: %w", err)
	}
	return tmp.Name(), fileName, "", nil
}

// filenameFromResponse prefers the Content-Disposition filename and
// falls back to the last URL path segment when it carries an extension.
func filenameFromResponse(rawURL string, resp *http.Response) string {
	disposition := resp.Header.Get("Content-Disposition")
	if idx := strings.Index(disposition, "filename="); idx >= 0 {
		name := strings.Trim(disposition[idx+len("filename="):], `"' `)
		if semi := strings.IndexByte(name, ';'); semi >= 0 {
			name = strings.TrimSpace(name[:semi])
		}
		if name != "" {
			return name
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Path == "" || parsed.Path == "/" {
		return ""
	}
	name := parsed.Path[strings.LastIndexByte(parsed.Path, '/')+1:]
	if name == "" || !strings.Contains(name, ".") {
		return ""
	}
	return name
}
