package keywords

import (
	"strings"
	"testing"

	"docdigest/internal/core/domain"
	"docdigest/internal/infrastructure/language"
)

const sampleText = `Distributed storage systems replicate data across machines.
Replication protocols keep storage replicas consistent under failures.
Consensus algorithms such as Raft coordinate replication in distributed storage.
Storage engines batch writes to amortize disk latency.
Distributed systems trade consistency against availability during partitions.
Raft elects a leader to order replication requests.`

func TestExtractReturnsRankedKeywords(t *testing.T) {
	e := NewExtractor(language.NewDetector())

	result := e.Extract(sampleText, 7, "en")
	if !result.Success {
		t.Fatalf("Extract failed: %s", result.ErrorMessage)
	}
	if result.Count != len(result.Keywords) {
		t.Fatalf("count %d does not match %d keywords", result.Count, len(result.Keywords))
	}
	if result.Count < MinKeywords || result.Count > 7 {
		t.Fatalf("expected between %d and 7 keywords, got %d", MinKeywords, result.Count)
	}
	if result.Formatted != strings.Join(result.Keywords, ", ") {
		t.Fatalf("formatted string %q does not join keywords", result.Formatted)
	}
	if result.Method != "statistical" {
		t.Fatalf("unexpected method %q", result.Method)
	}

	seen := make(map[string]struct{})
	for _, kw := range result.Keywords {
		lower := strings.ToLower(kw)
		if _, dup := seen[lower]; dup {
			t.Fatalf("duplicate keyword %q", kw)
		}
		seen[lower] = struct{}{}
		if len([]rune(kw)) < 2 {
			t.Fatalf("keyword %q shorter than 2 runes", kw)
		}
	}
}

func TestExtractShortTextIsEmptyDocument(t *testing.T) {
	e := NewExtractor(nil)

	result := e.Extract("   ab c  ", 5, "")
	if result.Success {
		t.Fatal("expected failure on short text")
	}
	if result.ErrorScenario != domain.ScenarioEmptyDocument {
		t.Fatalf("expected empty_document, got %s", result.ErrorScenario)
	}
}

func TestExtractClampsRequestedCount(t *testing.T) {
	e := NewExtractor(nil)

	low := e.Extract(sampleText, 1, "en")
	if !low.Success {
		t.Fatalf("Extract failed: %s", low.ErrorMessage)
	}
	if low.Count > MinKeywords {
		t.Fatalf("count 1 should clamp to at most %d, got %d", MinKeywords, low.Count)
	}

	high := e.Extract(sampleText, 50, "en")
	if !high.Success {
		t.Fatalf("Extract failed: %s", high.ErrorMessage)
	}
	if high.Count > MaxKeywords {
		t.Fatalf("count 50 should clamp to %d, got %d", MaxKeywords, high.Count)
	}
}

func TestExtractDetectsLanguageWhenUnset(t *testing.T) {
	e := NewExtractor(nil)

	text := strings.Repeat("Хранилище данных реплицирует записи на несколько узлов кластера. ", 4)
	result := e.Extract(text, 5, "")
	if !result.Success {
		t.Fatalf("Extract failed: %s", result.ErrorMessage)
	}
	for _, kw := range result.Keywords {
		for _, marker := range []string{"и", "на", "в"} {
			if kw == marker {
				t.Fatalf("stop word %q leaked into keywords", marker)
			}
		}
	}
}

func TestCleanKeywordsFiltersFragments(t *testing.T) {
	in := []string{"  storage   engine ", "a", "123", "Raft", "raft", "--"}
	out := cleanKeywords(in)

	want := []string{"storage engine", "Raft"}
	if len(out) != len(want) {
		t.Fatalf("got %v, want %v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("got %v, want %v", out, want)
		}
	}
}

func TestSimilarityDetectsNearDuplicates(t *testing.T) {
	if s := similarity("distributed storage", "distributed storage"); s != 1 {
		t.Fatalf("identical phrases should score 1, got %f", s)
	}
	if s := similarity("distributed storage", "distributed storages"); s < 0.9 {
		t.Fatalf("near duplicates should score >= 0.9, got %f", s)
	}
	if s := similarity("raft consensus", "disk latency"); s >= 0.9 {
		t.Fatalf("unrelated phrases should score < 0.9, got %f", s)
	}
}

func TestRankCandidatesRespectsNgramCeiling(t *testing.T) {
	ranked := rankCandidates(sampleText, "en", 2, windowSize, 20, dedupThreshold)
	if len(ranked) == 0 {
		t.Fatal("expected candidates")
	}
	for _, c := range ranked {
		if n := len(strings.Fields(c.phrase)); n > 2 {
			t.Fatalf("phrase %q exceeds bigram ceiling", c.phrase)
		}
	}
}
