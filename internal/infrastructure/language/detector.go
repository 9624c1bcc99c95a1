// Package language classifies text as Russian or English using the
// Cyrillic/Latin letter ratio with a marker-word tiebreak.
package language

import (
	"strings"
	"unicode"
)

const (
	LangRU = "ru"
	LangEN = "en"
)

var russianMarkers = markerSet(
	"и", "в", "на", "с", "по", "для", "что", "это", "как", "не",
	"из", "к", "от", "до", "за", "при", "но", "или", "а", "о",
	"он", "она", "они", "мы", "вы", "я", "ты", "его", "её", "их",
)

var englishMarkers = markerSet(
	"the", "a", "an", "is", "are", "was", "were", "be", "been",
	"have", "has", "had", "do", "does", "did", "will", "would",
	"could", "should", "may", "might", "must", "can", "shall",
	"of", "to", "in", "for", "on", "with", "at", "by", "from",
	"and", "or", "but", "not", "this", "that", "it", "as", "if",
)

type Detector struct{}

func NewDetector() *Detector { return &Detector{} }

// Detect classifies text by Cyrillic letter ratio: above 0.7 it is Russian,
// below 0.3 English, in between the marker-word sets break the tie. Empty
// or letterless input defaults to English.
func (d *Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return LangEN
	}

	var cyrillic, latin int
	for _, r := range text {
		switch {
		case isCyrillic(r):
			cyrillic++
		case isLatin(r):
			latin++
		}
	}

	total := cyrillic + latin
	if total == 0 {
		return LangEN
	}

	ratio := float64(cyrillic) / float64(total)
	if ratio > 0.7 {
		return LangRU
	}
	if ratio < 0.3 {
		return LangEN
	}

	return detectByMarkers(text)
}

func (d *Detector) IsRussian(text string) bool { return d.Detect(text) == LangRU }

func detectByMarkers(text string) string {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = struct{}{}
	}

	var ruMatches, enMatches int
	for w := range words {
		if _, ok := russianMarkers[w]; ok {
			ruMatches++
		}
		if _, ok := englishMarkers[w]; ok {
			enMatches++
		}
	}

	if ruMatches > enMatches {
		return LangRU
	}
	if enMatches > ruMatches {
		return LangEN
	}

	for _, r := range text {
		if isCyrillic(r) {
			return LangRU
		}
	}
	return LangEN
}

// StopWords returns the closed function-word set for a locale. The same
// sets drive the marker-word tiebreak in Detect.
func StopWords(lang string) map[string]struct{} {
	if lang == LangRU {
		return russianMarkers
	}
	return englishMarkers
}

func isCyrillic(r rune) bool { return r >= 0x0400 && r <= 0x04FF }

func isLatin(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func markerSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
