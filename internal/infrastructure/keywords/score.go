package keywords

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"docdigest/internal/infrastructure/language"
)

type token struct {
	text     string
	lower    string
	sentence int
	position int
}

type termStats struct {
	freq      int
	firstPos  int
	sentences map[int]struct{}
	neighbors map[string]struct{}
	upper     int
}

type candidate struct {
	phrase string
	score  float64
	freq   int
}

// tokenize splits text into word tokens, tracking sentence index and
// absolute position for the positional and spread features.
func tokenize(text string) []token {
	var tokens []token
	sentence := 0
	position := 0
	word := strings.Builder{}

	flush := func() {
		if word.Len() == 0 {
			return
		}
		w := word.String()
		tokens = append(tokens, token{
			text:     w,
			lower:    strings.ToLower(w),
			sentence: sentence,
			position: position,
		})
		position++
		word.Reset()
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			word.WriteRune(r)
		case r == '.' || r == '!' || r == '?' || r == '…':
			flush()
			sentence++
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// collectStats builds per-term statistics over a sliding co-occurrence
// window. Stop words are counted but never become candidate heads.
func collectStats(tokens []token, window int) map[string]*termStats {
	stats := make(map[string]*termStats)
	for i, tok := range tokens {
		st, ok := stats[tok.lower]
		if !ok {
			st = &termStats{
				firstPos:  tok.position,
				sentences: make(map[int]struct{}),
				neighbors: make(map[string]struct{}),
			}
			stats[tok.lower] = st
		}
		st.freq++
		st.sentences[tok.sentence] = struct{}{}
		if first := []rune(tok.text); len(first) > 0 && unicode.IsUpper(first[0]) {
			st.upper++
		}
		for j := i - window; j <= i+window; j++ {
			if j < 0 || j >= len(tokens) || j == i {
				continue
			}
			st.neighbors[tokens[j].lower] = struct{}{}
		}
	}
	return stats
}

// termScore assigns a weight where lower means more characteristic of
// the document. The features follow the statistical keyword literature:
// early first occurrence, high frequency, wide sentence coverage and a
// narrow co-occurrence context all pull the score down.
func termScore(st *termStats, totalTerms, totalSentences int) float64 {
	pos := math.Log2(2 + float64(st.firstPos))
	freq := float64(st.freq) / (1 + meanFreq(totalTerms, st.freq))
	spread := float64(len(st.sentences)) / float64(max(totalSentences, 1))
	relatedness := 1 + float64(len(st.neighbors))/float64(max(st.freq, 1))
	casing := 1 + float64(st.upper)/float64(st.freq)

	return (relatedness * pos) / (casing + freq + spread)
}

func meanFreq(totalTerms, freq int) float64 {
	if totalTerms == 0 {
		return float64(freq)
	}
	return float64(freq) / float64(totalTerms)
}

// rankCandidates produces up to limit phrases of at most maxNgram words,
// ordered best first and deduplicated against already selected phrases
// at the given similarity threshold.
func rankCandidates(text, lang string, maxNgram, window, limit int, dedupThreshold float64) []candidate {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	stop := language.StopWords(lang)
	stats := collectStats(tokens, window)

	totalSentences := tokens[len(tokens)-1].sentence + 1
	scores := make(map[string]float64, len(stats))
	for term, st := range stats {
		scores[term] = termScore(st, len(tokens), totalSentences)
	}

	phrases := make(map[string]*candidate)
	for i := range tokens {
		for n := 1; n <= maxNgram && i+n <= len(tokens); n++ {
			part := tokens[i : i+n]
			if !validPhrase(part, stop) {
				continue
			}
			key := joinLower(part)
			sum := 0.0
			prod := 1.0
			for _, t := range part {
				s := scores[t.lower]
				sum += s
				prod *= s
			}
			if c, ok := phrases[key]; ok {
				c.freq++
				continue
			}
			phrases[key] = &candidate{phrase: key, score: prod / (1 + sum), freq: 1}
		}
	}

	ranked := make([]candidate, 0, len(phrases))
	for _, c := range phrases {
		// Repetition across the document lowers the phrase score further.
		c.score /= float64(c.freq)
		ranked = append(ranked, *c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score < ranked[j].score
		}
		return ranked[i].phrase < ranked[j].phrase
	})

	var selected []candidate
	for _, c := range ranked {
		if len(selected) >= limit {
			break
		}
		dup := false
		for _, s := range selected {
			if similarity(c.phrase, s.phrase) >= dedupThreshold {
				dup = true
				break
			}
		}
		if !dup {
			selected = append(selected, c)
		}
	}
	return selected
}

// validPhrase rejects n-grams that start or end with a stop word and
// sentence-crossing spans, which produce broken fragments.
func validPhrase(part []token, stop map[string]struct{}) bool {
	if _, ok := stop[part[0].lower]; ok {
		return false
	}
	if _, ok := stop[part[len(part)-1].lower]; ok {
		return false
	}
	for i := 1; i < len(part); i++ {
		if part[i].sentence != part[0].sentence {
			return false
		}
		if part[i].position != part[i-1].position+1 {
			return false
		}
	}
	return true
}

func joinLower(part []token) string {
	words := make([]string, len(part))
	for i, t := range part {
		words[i] = t.lower
	}
	return strings.Join(words, " ")
}

// similarity is the Ratcliff/Obershelp ratio over runes: twice the
// total matched length divided by the combined length.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 1
	}
	matched := matchBlocks(ra, rb)
	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

func matchBlocks(a, b []rune) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchBlocks(a[:ai], b[:bi])
	total += matchBlocks(a[ai+size:], b[bi+size:])
	return total
}

func longestMatch(a, b []rune) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0
	// lengths[j] holds the match length ending at a[i-1], b[j-1].
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > bestSize {
					bestSize = lengths[j]
					bestA = i - lengths[j]
					bestB = j - lengths[j]
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}
	return bestA, bestB, bestSize
}
