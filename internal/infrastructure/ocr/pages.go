package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"docdigest/internal/core/domain"
)

// ProcessPages renders every page of a fixed-layout document to an image,
// OCRs each, and concatenates successful per-page text. A legible
// zero-page document is an empty-document failure; pages that render but
// yield no text are an OCR failure.
func (e *Engine) ProcessPages(ctx context.Context, documentPath string) domain.ParseResult {
	tmpDir, err := os.MkdirTemp("", "docdigest-ocr-*")
	if err != nil {
		return ocrFailure(fmt.Sprintf("create temp dir: %v", err))
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("failed to remove ocr temp dir", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", documentPath, prefix)
	if err != nil {
		return classifyRenderError(err, string(errb))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return domain.ParseResult{
			Method:        domain.MethodTesseractOCR,
			UsedOCR:       true,
			ErrorMessage:  "no pages found in document",
			ErrorScenario: domain.ScenarioEmptyDocument,
		}
	}

	var parts []string
	var confidences []float64
	for _, img := range matches {
		res := e.ExtractText(ctx, img)
		if !res.Success {
			e.logger.Warn("page ocr failed", "image", img, "error", res.ErrorMessage)
			continue
		}
		if res.Text != "" {
			parts = append(parts, res.Text)
			if res.Confidence != nil {
				confidences = append(confidences, *res.Confidence)
			}
		}
	}

	text := strings.Join(parts, "\n\n")
	charCount := utf8.RuneCountInString(text)

	var avgConfidence *float64
	if len(confidences) > 0 {
		var sum float64
		for _, c := range confidences {
			sum += c
		}
		avg := sum / float64(len(confidences))
		avgConfidence = &avg
	}

	if charCount == 0 {
		return domain.ParseResult{
			Method:        domain.MethodTesseractOCR,
			UsedOCR:       true,
			OCRConfidence: avgConfidence,
			ErrorMessage:  "ocr could not extract any text",
			ErrorScenario: domain.ScenarioOCRFailed,
		}
	}

	return domain.ParseResult{
		Text:          text,
		CharCount:     charCount,
		Success:       true,
		Method:        domain.MethodTesseractOCR,
		UsedOCR:       true,
		OCRConfidence: avgConfidence,
	}
}

func classifyRenderError(err error, stderr string) domain.ParseResult {
	msg := strings.ToLower(err.Error() + " " + stderr)

	if strings.Contains(msg, "password") || strings.Contains(msg, "encrypted") {
		return domain.ParseResult{
			Method:        domain.MethodTesseractOCR,
			UsedOCR:       true,
			ErrorMessage:  "document is password protected",
			ErrorScenario: domain.ScenarioPasswordProtected,
		}
	}
	if errors.Is(err, exec.ErrNotFound) {
		return ocrFailure("pdftoppm not installed (required for page rendering)")
	}
	return ocrFailure(fmt.Sprintf("render pages: %v: %s", err, strings.TrimSpace(stderr)))
}

func ocrFailure(message string) domain.ParseResult {
	return domain.ParseResult{
		Method:        domain.MethodTesseractOCR,
		UsedOCR:       true,
		ErrorMessage:  message,
		ErrorScenario: domain.ScenarioOCRFailed,
	}
}
