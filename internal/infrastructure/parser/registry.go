// Package parser implements one text-extraction strategy per supported
// document format, selected through a closed lookup table keyed by
// normalized file extension.
package parser

import (
	"path/filepath"
	"strings"

	"docdigest/internal/core/domain"
	"docdigest/internal/core/ports"
)

type Registry struct {
	parsers []ports.Parser
}

func NewRegistry() *Registry {
	return &Registry{
		parsers: []ports.Parser{
			NewPDFParser(),
			NewDOCXParser(),
			NewPlainTextParser(domain.FormatTXT),
			NewPlainTextParser(domain.FormatMD),
		},
	}
}

// ForFormat returns the single strategy claiming the format's extension.
func (r *Registry) ForFormat(format domain.Format) (ports.Parser, bool) {
	return r.forExtension(string(format))
}

func (r *Registry) IsSupported(fileName string) bool {
	_, ok := r.forExtension(filepath.Ext(fileName))
	return ok
}

func (r *Registry) forExtension(ext string) (ports.Parser, bool) {
	normalized := NormalizeExtension(ext)
	for _, p := range r.parsers {
		if p.Supports(normalized) {
			return p, true
		}
	}
	return nil, false
}

// NormalizeExtension lower-cases and strips the leading dot.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
