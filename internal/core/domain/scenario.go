package domain

// ErrorScenario is the closed failure vocabulary shared by every pipeline
// stage. Each stage maps its own failures into one of these values; the
// orchestrator never sees an error it cannot classify.
type ErrorScenario string

const (
	ScenarioFileTooLarge      ErrorScenario = "file_too_large"
	ScenarioUnsupportedFormat ErrorScenario = "unsupported_format"
	ScenarioCorruptedFile     ErrorScenario = "corrupted_file"
	ScenarioPasswordProtected ErrorScenario = "password_protected"
	ScenarioEmptyDocument     ErrorScenario = "empty_document"
	ScenarioOCRFailed         ErrorScenario = "ocr_failed"
	ScenarioAPIRateLimit      ErrorScenario = "api_rate_limit"
	ScenarioAPITimeout        ErrorScenario = "api_timeout"
	ScenarioAPIError          ErrorScenario = "api_error"
	ScenarioSheetAuthError    ErrorScenario = "sheet_auth_error"
	ScenarioSheetWriteError   ErrorScenario = "sheet_write_error"
	ScenarioURLInvalid        ErrorScenario = "url_invalid"
)

// Retryable reports whether the scenario is a transient condition worth
// retrying. Structural input problems (bad format, corruption, password,
// emptiness) never are.
func (s ErrorScenario) Retryable() bool {
	switch s {
	case ScenarioAPIRateLimit, ScenarioAPITimeout, ScenarioAPIError,
		ScenarioSheetAuthError, ScenarioSheetWriteError:
		return true
	default:
		return false
	}
}

// ScenarioError carries a scenario alongside the underlying error so that
// infrastructure failures surface with a classification already attached.
type ScenarioError struct {
	Scenario ErrorScenario
	Err      error
}

func (e *ScenarioError) Error() string {
	if e.Err == nil {
		return string(e.Scenario)
	}
	return string(e.Scenario) + ": " + e.Err.Error()
}

func (e *ScenarioError) Unwrap() error { return e.Err }

func NewScenarioError(scenario ErrorScenario, err error) *ScenarioError {
	return &ScenarioError{Scenario: scenario, Err: err}
}
