package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"docdigest/internal/core/domain"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "openai status error"
	}
	if e.Body == "" {
		return fmt.Sprintf("openai %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("openai %s status: %s: %s", e.Operation, e.Status, e.Body)
}

// ClassifyError maps an API failure into the closed scenario vocabulary.
// The message substrings take precedence so that provider errors carried
// through intermediate wrappers still classify correctly.
func ClassifyError(err error) domain.ErrorScenario {
	if err == nil {
		return ""
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "rate limit") || strings.Contains(msg, "rate_limit") {
		return domain.ScenarioAPIRateLimit
	}
	if strings.Contains(msg, "timeout") || errors.Is(err, context.DeadlineExceeded) {
		return domain.ScenarioAPITimeout
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests:
			return domain.ScenarioAPIRateLimit
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return domain.ScenarioAPITimeout
		}
	}
	return domain.ScenarioAPIError
}
