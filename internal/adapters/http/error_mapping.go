package httpadapter

import (
	"errors"
	"net/http"

	"docdigest/internal/core/domain"
)

var errUploaderID = errors.New("uploader_id must be a positive integer")

// writeError maps domain failures onto transport statuses. Scenario errors
// carry the user-facing message rendered by the notification templates.
func (rt *Router) writeError(w http.ResponseWriter, err error) {
	var scenarioErr *domain.ScenarioError
	if errors.As(err, &scenarioErr) {
		payload := map[string]string{
			"error":   string(scenarioErr.Scenario),
			"message": rt.notifier.ValidationMessage(scenarioErr.Scenario, scenarioErr.Error()),
		}
		writeJSON(w, scenarioStatus(scenarioErr.Scenario), payload)
		return
	}

	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func scenarioStatus(scenario domain.ErrorScenario) int {
	switch scenario {
	case domain.ScenarioFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case domain.ScenarioUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case domain.ScenarioURLInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
