package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"docdigest/internal/core/domain"
)

// ocrThreshold is the character count under which extracted PDF text is
// considered too thin and OCR fallback should be attempted.
const ocrThreshold = 50

type PDFParser struct{}

func NewPDFParser() *PDFParser { return &PDFParser{} }

func (p *PDFParser) Supports(extension string) bool {
	return NormalizeExtension(extension) == string(domain.FormatPDF)
}

func (p *PDFParser) Parse(path string) (result domain.ParseResult) {
	// The pdf reader panics on some malformed files; recover so a corrupt
	// upload cannot take the worker down.
	defer func() {
		if r := recover(); r != nil {
			result = classifyPDFError(fmt.Errorf("pdf reader panic: %v", r))
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return classifyPDFError(err)
	}
	defer f.Close()

	var parts []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return classifyPDFError(err)
		}
		pageText = strings.TrimSpace(pageText)
		if pageText != "" {
			parts = append(parts, pageText)
		}
	}

	text := strings.Join(parts, "\n\n")
	charCount := utf8.RuneCountInString(text)
	if charCount == 0 {
		// The common case for scanned/image-only documents; the
		// orchestrator decides whether to fall back to OCR.
		return domain.FailedParse(domain.MethodPDFRead, domain.ScenarioEmptyDocument,
			"document appears empty or contains only images")
	}

	return domain.ParseResult{
		Text:      text,
		CharCount: charCount,
		Success:   true,
		Method:    domain.MethodPDFRead,
	}
}

// NeedsOCR flags extraction output too thin to be a legible text layer.
func (p *PDFParser) NeedsOCR(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) < ocrThreshold
}

func classifyPDFError(err error) domain.ParseResult {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "password") || strings.Contains(msg, "encrypted") {
		return domain.FailedParse(domain.MethodPDFRead, domain.ScenarioPasswordProtected,
			"pdf is password protected")
	}
	return domain.FailedParse(domain.MethodPDFRead, domain.ScenarioCorruptedFile,
		fmt.Sprintf("failed to parse pdf: %v", err))
}
