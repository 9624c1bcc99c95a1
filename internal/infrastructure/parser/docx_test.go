package parser

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"docdigest/internal/core/domain"
)

func writeDOCX(t *testing.T, paragraphs []string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create docx: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	part, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document part: %v", err)
	}

	body := `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	for _, p := range paragraphs {
		body += `<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`
	}
	body += `</w:body></w:document>`

	if _, err := part.Write([]byte(body)); err != nil {
		t.Fatalf("write document part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

func TestParseDOCXJoinsParagraphs(t *testing.T) {
	p := NewDOCXParser()
	path := writeDOCX(t, []string{"Первый абзац.", "Second paragraph.", ""})

	res := p.Parse(path)
	if !res.Success {
		t.Fatalf("Parse() failed: %s", res.ErrorMessage)
	}
	want := "Первый абзац.\n\nSecond paragraph."
	if res.Text != want {
		t.Fatalf("text = %q, want %q", res.Text, want)
	}
	if res.Method != domain.MethodDOCXRead {
		t.Fatalf("method = %q, want docx_read", res.Method)
	}
}

func TestParseDOCXWithOnlyEmptyParagraphsIsEmptyDocument(t *testing.T) {
	p := NewDOCXParser()
	path := writeDOCX(t, []string{"", "   "})

	res := p.Parse(path)
	if res.Success {
		t.Fatal("expected failure for empty document")
	}
	if res.ErrorScenario != domain.ScenarioEmptyDocument {
		t.Fatalf("scenario = %q, want empty_document", res.ErrorScenario)
	}
}

func TestParseDOCXRejectsNonZipFile(t *testing.T) {
	p := NewDOCXParser()
	path := filepath.Join(t.TempDir(), "fake.docx")
	if err := os.WriteFile(path, []byte("not a zip archive at all"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	res := p.Parse(path)
	if res.Success {
		t.Fatal("expected failure for non-zip input")
	}
	if res.ErrorScenario != domain.ScenarioCorruptedFile {
		t.Fatalf("scenario = %q, want corrupted_file", res.ErrorScenario)
	}
}
