package keywords

import (
	"fmt"
	"strings"
	"unicode"

	"docdigest/internal/core/domain"
	"docdigest/internal/core/ports"
	"docdigest/internal/infrastructure/language"
)

const (
	// MinKeywords and MaxKeywords bound the requested keyword count.
	MinKeywords = 5
	MaxKeywords = 10

	minTextRunes = 10

	firstPassNgram  = 2
	secondPassNgram = 3
	dedupThreshold  = 0.9
	windowSize      = 1
)

// Extractor ranks document keywords with a purely statistical scorer,
// no model calls involved.
type Extractor struct {
	detector ports.LanguageDetector
}

func NewExtractor(detector ports.LanguageDetector) *Extractor {
	if detector == nil {
		detector = language.NewDetector()
	}
	return &Extractor{detector: detector}
}

// Extract returns up to count keywords for text. count is clamped to
// [MinKeywords, MaxKeywords]. A first pass uses bigrams at most; when
// fewer than MinKeywords phrases survive filtering, a second pass with
// trigrams reruns over the same text.
func (e *Extractor) Extract(text string, count int, lang string) (result domain.KeywordsResult) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.KeywordsResult{
				Success:       false,
				Method:        "statistical",
				ErrorMessage:  fmt.Sprintf("keyword extraction failed: %v", r),
				ErrorScenario: domain.ScenarioAPIError,
			}
		}
	}()

	if nonSpaceRunes(text) < minTextRunes {
		return domain.KeywordsResult{
			Success:       false,
			Method:        "statistical",
			ErrorMessage:  "document too short for keyword extraction",
			ErrorScenario: domain.ScenarioEmptyDocument,
		}
	}

	if count < MinKeywords {
		count = MinKeywords
	}
	if count > MaxKeywords {
		count = MaxKeywords
	}
	if lang == "" {
		lang = e.detector.Detect(text)
	}

	kws := e.extractPass(text, lang, firstPassNgram, count)
	if len(kws) < MinKeywords {
		kws = e.extractPass(text, lang, secondPassNgram, count)
	}
	if len(kws) > MaxKeywords {
		kws = kws[:MaxKeywords]
	}

	return domain.KeywordsResult{
		Keywords:  kws,
		Formatted: strings.Join(kws, ", "),
		Count:     len(kws),
		Success:   true,
		Method:    "statistical",
	}
}

func (e *Extractor) extractPass(text, lang string, maxNgram, count int) []string {
	candidates := rankCandidates(text, lang, maxNgram, windowSize, count*2, dedupThreshold)
	phrases := make([]string, 0, len(candidates))
	for _, c := range candidates {
		phrases = append(phrases, c.phrase)
	}
	cleaned := cleanKeywords(phrases)
	if len(cleaned) > count {
		cleaned = cleaned[:count]
	}
	return cleaned
}

// cleanKeywords collapses whitespace, drops short or letterless
// fragments and removes case-insensitive duplicates, preserving rank
// order.
func cleanKeywords(phrases []string) []string {
	seen := make(map[string]struct{}, len(phrases))
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.Join(strings.Fields(p), " ")
		if len([]rune(p)) < 2 || !hasLetter(p) {
			continue
		}
		key := strings.ToLower(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func nonSpaceRunes(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
