package parser

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"docdigest/internal/core/domain"
)

// DOCXParser reads the word/document.xml part of the OOXML archive and
// concatenates non-empty paragraph text.
type DOCXParser struct{}

func NewDOCXParser() *DOCXParser { return &DOCXParser{} }

func (p *DOCXParser) Supports(extension string) bool {
	return NormalizeExtension(extension) == string(domain.FormatDOCX)
}

func (p *DOCXParser) Parse(path string) domain.ParseResult {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return classifyDOCXError(err)
	}
	defer archive.Close()

	var document *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return domain.FailedParse(domain.MethodDOCXRead, domain.ScenarioCorruptedFile,
			"file is corrupted or not a valid docx: word/document.xml missing")
	}

	rc, err := document.Open()
	if err != nil {
		return classifyDOCXError(err)
	}
	defer rc.Close()

	paragraphs, err := extractParagraphs(rc)
	if err != nil {
		return classifyDOCXError(err)
	}

	text := strings.Join(paragraphs, "\n\n")
	charCount := utf8.RuneCountInString(text)
	if charCount == 0 {
		return domain.FailedParse(domain.MethodDOCXRead, domain.ScenarioEmptyDocument,
			"document appears empty")
	}

	return domain.ParseResult{
		Text:      text,
		CharCount: charCount,
		Success:   true,
		Method:    domain.MethodDOCXRead,
	}
}

// extractParagraphs streams the document XML, collecting w:t runs and
// breaking paragraphs on w:p boundaries.
func extractParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var paragraphs []string
	var current strings.Builder
	var inText bool

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode document xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if para := strings.TrimSpace(current.String()); para != "" {
					paragraphs = append(paragraphs, para)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	if para := strings.TrimSpace(current.String()); para != "" {
		paragraphs = append(paragraphs, para)
	}
	return paragraphs, nil
}

func classifyDOCXError(err error) domain.ParseResult {
	msg := strings.ToLower(err.Error())
	if errors.Is(err, zip.ErrFormat) || strings.Contains(msg, "not a valid") || strings.Contains(msg, "corrupt") {
		return domain.FailedParse(domain.MethodDOCXRead, domain.ScenarioCorruptedFile,
			"file is corrupted or not a valid docx")
	}
	return domain.FailedParse(domain.MethodDOCXRead, domain.ScenarioCorruptedFile,
		fmt.Sprintf("failed to parse docx: %v", err))
}
