package domain

import "strings"

// Format is the closed set of supported document formats. Strategy
// selection in the parser registry keys off this value.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
	FormatMD   Format = "md"
)

var supportedFormats = []Format{FormatPDF, FormatDOCX, FormatTXT, FormatMD}

// FormatFromExtension resolves a format from a file extension, with or
// without the leading dot. Unknown extensions return ok=false.
func FormatFromExtension(ext string) (Format, bool) {
	normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	for _, f := range supportedFormats {
		if string(f) == normalized {
			return f, true
		}
	}
	return "", false
}

func SupportedExtensions() []string {
	out := make([]string, 0, len(supportedFormats))
	for _, f := range supportedFormats {
		out = append(out, string(f))
	}
	return out
}

// SupportedFormatsList renders the supported set for user-facing messages,
// e.g. "PDF, DOCX, TXT, MD".
func SupportedFormatsList() string {
	return strings.ToUpper(strings.Join(SupportedExtensions(), ", "))
}
