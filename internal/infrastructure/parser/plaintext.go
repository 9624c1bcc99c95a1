package parser

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"docdigest/internal/core/domain"
)

type textEncoding struct {
	name string
	enc  encoding.Encoding
}

// fallbackEncodings is the fixed order of legacy encodings tried when a
// plain-text file is not valid UTF-8. A detected encoding, when the
// detector recognizes one this parser can decode, is tried first.
var fallbackEncodings = []textEncoding{
	{"cp1251", charmap.Windows1251},
	{"latin-1", charmap.ISO8859_1},
	{"cp1252", charmap.Windows1252},
}

// PlainTextParser handles txt and lightly-marked md files. Both formats
// share the same read path: the markup in md stays in the extracted text.
type PlainTextParser struct {
	format domain.Format
}

func NewPlainTextParser(format domain.Format) *PlainTextParser {
	return &PlainTextParser{format: format}
}

func (p *PlainTextParser) Supports(extension string) bool {
	return NormalizeExtension(extension) == string(p.format)
}

func (p *PlainTextParser) Parse(path string) domain.ParseResult {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.FailedParse(domain.MethodPlainRead, domain.ScenarioCorruptedFile,
			fmt.Sprintf("read file: %v", err))
	}

	if utf8.Valid(raw) {
		return plainResult(string(raw))
	}

	candidates := fallbackEncodings
	if detected, ok := detectEncoding(raw); ok && detected.name != candidates[0].name {
		candidates = append([]textEncoding{detected}, candidates...)
	}

	text, err := decodeChain(raw, candidates)
	if err != nil {
		return domain.FailedParse(domain.MethodPlainRead, domain.ScenarioCorruptedFile,
			fmt.Sprintf("failed to decode file with any encoding: %v", err))
	}
	return plainResult(text)
}

// detectEncoding asks the statistical detector for the likeliest charset
// and maps it onto an encoding this parser can decode. Charsets outside
// that set are ignored and the fixed fallback order decides.
func detectEncoding(raw []byte) (textEncoding, bool) {
	best, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil {
		return textEncoding{}, false
	}
	switch strings.ToLower(best.Charset) {
	case "windows-1251":
		return textEncoding{"cp1251", charmap.Windows1251}, true
	case "iso-8859-1":
		return textEncoding{"latin-1", charmap.ISO8859_1}, true
	case "windows-1252":
		return textEncoding{"cp1252", charmap.Windows1252}, true
	case "utf-16le":
		return textEncoding{"utf-16le", unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)}, true
	case "utf-16be":
		return textEncoding{"utf-16be", unicode.UTF16(unicode.BigEndian, unicode.UseBOM)}, true
	}
	return textEncoding{}, false
}

func decodeChain(raw []byte, candidates []textEncoding) (string, error) {
	var lastErr error
	for _, enc := range candidates {
		text, err := decodeStrict(enc, raw)
		if err != nil {
			lastErr = err
			continue
		}
		return text, nil
	}
	return "", lastErr
}

// decodeStrict fails on bytes the charset leaves unassigned. The charmap
// decoders substitute U+FFFD for those instead of erroring, which would
// make every candidate "succeed" and stop the chain on mojibake.
func decodeStrict(enc textEncoding, raw []byte) (string, error) {
	decoded, err := enc.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", enc.name, err)
	}
	text := string(decoded)
	if strings.ContainsRune(text, utf8.RuneError) {
		return "", fmt.Errorf("%s: input contains bytes unassigned in %s", enc.name, enc.name)
	}
	return text, nil
}

func plainResult(text string) domain.ParseResult {
	charCount := utf8.RuneCountInString(text)
	if charCount == 0 {
		return domain.FailedParse(domain.MethodPlainRead, domain.ScenarioEmptyDocument,
			"document is empty")
	}
	return domain.ParseResult{
		Text:      text,
		CharCount: charCount,
		Success:   true,
		Method:    domain.MethodPlainRead,
	}
}
