package openai

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"docdigest/internal/core/domain"
	"docdigest/internal/infrastructure/resilience"
)

const (
	// MinSentences and MaxSentences bound an acceptable summary. A summary
	// outside the band triggers exactly one corrective call.
	MinSentences = 3
	MaxSentences = 7

	// Texts shorter than this are returned verbatim without an API call.
	minTextForSummary = 100
)

// Summarizer produces bounded-length document summaries over a chat
// completion API, with retry handled by the shared executor.
type Summarizer struct {
	caller   ChatCaller
	model    string
	executor *resilience.Executor
	logger   *slog.Logger
}

func NewSummarizer(caller ChatCaller, model string, executor *resilience.Executor, logger *slog.Logger) *Summarizer {
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{caller: caller, model: model, executor: executor, logger: logger}
}

func (s *Summarizer) Summarize(ctx context.Context, text, language string) domain.SummaryResult {
	if utf8.RuneCountInString(text) < minTextForSummary {
		return domain.SummaryResult{
			Summary:       text,
			SentenceCount: CountSentences(text),
			Language:      language,
			Success:       true,
			Model:         s.model,
		}
	}

	summary, tokens, err := s.call(ctx, buildSummaryPrompt(text, language))
	if err != nil {
		return s.failure(language, err)
	}

	count := CountSentences(summary)
	if count < MinSentences || count > MaxSentences {
		s.logger.Info("summary_adjustment",
			"sentence_count", count,
			"min", MinSentences,
			"max", MaxSentences,
		)
		adjusted, extra, err := s.call(ctx, buildAdjustPrompt(text, language, count))
		if err != nil {
			return s.failure(language, err)
		}
		summary = adjusted
		tokens += extra
		count = CountSentences(summary)
	}

	return domain.SummaryResult{
		Summary:       summary,
		SentenceCount: count,
		Language:      language,
		Success:       true,
		Model:         s.model,
		TokensUsed:    tokens,
	}
}

func (s *Summarizer) call(ctx context.Context, prompt string) (string, int, error) {
	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}

	var content string
	var tokens int
	err := s.executor.Execute(ctx, "summarize", func(ctx context.Context) error {
		c, t, err := s.caller.ChatCompletion(ctx, messages)
		if err != nil {
			return err
		}
		content, tokens = c, t
		return nil
	}, func(err error) bool {
		return ClassifyError(err).Retryable()
	})
	return content, tokens, err
}

func (s *Summarizer) failure(language string, err error) domain.SummaryResult {
	return domain.SummaryResult{
		Language:      language,
		Model:         s.model,
		ErrorMessage:  err.Error(),
		ErrorScenario: ClassifyError(err),
	}
}

// CountSentences counts sentence segments: a boundary is a terminator
// (. ! ?) followed by whitespace and further text.
func CountSentences(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	runes := []rune(text)
	count := 1
	for i := 0; i+1 < len(runes); i++ {
		if !isTerminator(runes[i]) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j < len(runes) {
			count++
			i = j - 1
		}
	}
	return count
}

func isTerminator(r rune) bool { return r == '.' || r == '!' || r == '?' }
