package notify

import (
	"strings"
	"testing"

	"docdigest/internal/core/domain"
)

func TestErrorMessageCoversEveryScenario(t *testing.T) {
	s := NewService(20)

	scenarios := []domain.ErrorScenario{
		domain.ScenarioFileTooLarge,
		domain.ScenarioUnsupportedFormat,
		domain.ScenarioCorruptedFile,
		domain.ScenarioPasswordProtected,
		domain.ScenarioEmptyDocument,
		domain.ScenarioOCRFailed,
		domain.ScenarioAPIRateLimit,
		domain.ScenarioAPITimeout,
		domain.ScenarioAPIError,
		domain.ScenarioSheetAuthError,
		domain.ScenarioSheetWriteError,
		domain.ScenarioURLInvalid,
	}
	for _, scenario := range scenarios {
		msg := s.ErrorMessage(scenario)
		if msg == errUnknown {
			t.Errorf("scenario %s fell through to the unknown message", scenario)
		}
		if !strings.HasPrefix(msg, "❌") {
			t.Errorf("scenario %s message %q missing error prefix", scenario, msg)
		}
	}
}

func TestErrorMessageIncludesConfiguredLimit(t *testing.T) {
	s := NewService(50)

	msg := s.ErrorMessage(domain.ScenarioFileTooLarge)
	if !strings.Contains(msg, "50MB") {
		t.Fatalf("expected configured 50MB limit in %q", msg)
	}
}

func TestAPIScenariosShareOneMessage(t *testing.T) {
	s := NewService(20)

	rate := s.ErrorMessage(domain.ScenarioAPIRateLimit)
	timeout := s.ErrorMessage(domain.ScenarioAPITimeout)
	generic := s.ErrorMessage(domain.ScenarioAPIError)
	if rate != timeout || timeout != generic {
		t.Fatal("API scenarios must render the same user message")
	}
}

func TestResultMessage(t *testing.T) {
	s := NewService(20)

	completed := domain.ProcessingResult{
		Status:   domain.StatusCompleted,
		Summary:  domain.SummaryResult{Summary: "Краткое содержание."},
		Keywords: domain.KeywordsResult{Formatted: "слово, документ"},
	}
	msg := s.ResultMessage(completed)
	if !strings.Contains(msg, "Краткое содержание.") || !strings.Contains(msg, "слово, документ") {
		t.Fatalf("completion message missing content: %q", msg)
	}

	failed := domain.ProcessingResult{
		Status:        domain.StatusFailed,
		ErrorScenario: domain.ScenarioPasswordProtected,
	}
	if got := s.ResultMessage(failed); got != errPassword {
		t.Fatalf("expected password message, got %q", got)
	}
}

func TestValidationMessageFallbacks(t *testing.T) {
	s := NewService(20)

	if got := s.ValidationMessage(domain.ScenarioURLInvalid, ""); got != errURL {
		t.Fatalf("expected url message, got %q", got)
	}
	if got := s.ValidationMessage("", "file name is empty"); got != "❌ file name is empty" {
		t.Fatalf("unexpected fallback %q", got)
	}
}
