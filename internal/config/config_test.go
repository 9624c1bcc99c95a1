package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.APIPort != "8080" {
		t.Fatalf("unexpected default api port %q", cfg.APIPort)
	}
	if cfg.MaxFileSizeMB != 20 {
		t.Fatalf("unexpected default max file size %d", cfg.MaxFileSizeMB)
	}
	if cfg.MaxFileSizeBytes() != 20*1024*1024 {
		t.Fatalf("unexpected byte conversion %d", cfg.MaxFileSizeBytes())
	}
	if cfg.RetryMaxRetries != 3 || !cfg.RetryJitter {
		t.Fatalf("unexpected retry defaults: %+v", cfg)
	}
	if cfg.TesseractPath != "tesseract" || cfg.PdftoppmPath != "pdftoppm" {
		t.Fatalf("unexpected ocr binary defaults: %q, %q", cfg.TesseractPath, cfg.PdftoppmPath)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("MAX_FILE_SIZE_MB", "50")
	t.Setenv("RETRY_BASE_DELAY", "250ms")
	t.Setenv("RETRY_JITTER", "false")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("TESSERACT_PATH", "/opt/tesseract/bin/tesseract")

	cfg := Load()
	if cfg.MaxFileSizeMB != 50 {
		t.Fatalf("expected 50, got %d", cfg.MaxFileSizeMB)
	}
	if cfg.RetryBaseDelay != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", cfg.RetryBaseDelay)
	}
	if cfg.RetryJitter {
		t.Fatal("expected jitter disabled")
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("expected gpt-4o-mini, got %q", cfg.OpenAIModel)
	}
	if cfg.TesseractPath != "/opt/tesseract/bin/tesseract" {
		t.Fatalf("expected overridden tesseract path, got %q", cfg.TesseractPath)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_FILE_SIZE_MB", "not-a-number")
	t.Setenv("RETRY_EXPONENTIAL_BASE", "oops")

	cfg := Load()
	if cfg.MaxFileSizeMB != 20 {
		t.Fatalf("expected fallback 20, got %d", cfg.MaxFileSizeMB)
	}
	if cfg.RetryExponentialBase != 2.0 {
		t.Fatalf("expected fallback 2.0, got %f", cfg.RetryExponentialBase)
	}
}
