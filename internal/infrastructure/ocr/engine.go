// Package ocr recognizes text on rendered document pages by driving the
// tesseract and pdftoppm binaries.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"

	Language string // tesseract language spec, default "rus+eng"
	DPI      int    // rasterization DPI for scanned pages, default 300
	MaxPages int    // 0 = no limit
}

type Result struct {
	Text         string
	Confidence   *float64 // mean token confidence 0..100, nil when unreported
	Success      bool
	ErrorMessage string
}

type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Language == "" {
		cfg.Language = "rus+eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Engine{cfg: cfg, runner: execRunner{}, logger: logger}
}

// ExtractText OCRs one rendered page image.
func (e *Engine) ExtractText(ctx context.Context, imagePath string) Result {
	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, imagePath, "stdout", "-l", e.cfg.Language)
	if err != nil {
		return Result{ErrorMessage: fmt.Sprintf("tesseract: %v: %s", err, strings.TrimSpace(string(errb)))}
	}

	text := strings.TrimSpace(string(out))
	confidence := e.tsvConfidence(ctx, imagePath)

	return Result{
		Text:       text,
		Confidence: confidence,
		Success:    true,
	}
}

// tsvConfidence runs tesseract in TSV mode and returns the arithmetic mean
// of valid non-negative word confidences, on the 0..100 scale.
func (e *Engine) tsvConfidence(ctx context.Context, imagePath string) *float64 {
	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, imagePath, "stdout", "-l", e.cfg.Language, "tsv")
	if err != nil {
		e.logger.Debug("tesseract tsv confidence unavailable", "error", err)
		return nil
	}

	lines := strings.Split(string(out), "\n")
	var sum float64
	var n int
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue // skip header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[10]
		if confStr == "" || confStr == "-1" {
			continue
		}
		v, err := strconv.ParseFloat(confStr, 64)
		if err != nil || v < 0 {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return nil
	}
	mean := sum / float64(n)
	return &mean
}
