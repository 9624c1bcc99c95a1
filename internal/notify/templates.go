// Package notify renders user-facing messages for delivery over the
// notification queue.
package notify

import (
	"fmt"

	"docdigest/internal/core/domain"
)

const (
	processingStarted = "⏳ Обработка документа..."

	processingComplete = "✅ Документ обработан!\n\n" +
		"<b>Суммаризация:</b>\n%s\n\n" +
		"<b>Ключевые слова:</b>\n%s"

	errUnsupportedFormat = "❌ Формат файла не поддерживается.\nПоддерживаемые форматы: PDF, DOCX, TXT, MD"
	errFileTooLarge      = "❌ Файл слишком большой.\nМаксимальный размер: %dMB"
	errCorrupted         = "❌ Не удалось прочитать файл. Возможно, файл повреждён"
	errPassword          = "❌ Файл защищён паролем. Пожалуйста, снимите защиту"
	errEmpty             = "❌ Документ пуст или не содержит текста"
	errOCR               = "❌ Не удалось распознать текст. Качество документа недостаточное"
	errAPI               = "❌ Ошибка при обработке текста. Попробуйте позже"
	errStorage           = "❌ Ошибка сохранения результатов. Попробуйте позже"
	errURL               = "❌ Не удалось загрузить файл по ссылке. Проверьте URL"
	errUnknown           = "❌ Произошла неизвестная ошибка. Попробуйте позже"

	instructions = "📄 Отправьте мне документ (PDF, DOCX, TXT, MD) или ссылку на файл"
)

const DefaultMaxFileSizeMB = 20

// Service renders notification texts. Scenario-to-message mapping is
// many-to-one: all API failures read the same to the user.
type Service struct {
	maxFileSizeMB int
}

func NewService(maxFileSizeMB int) *Service {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = DefaultMaxFileSizeMB
	}
	return &Service{maxFileSizeMB: maxFileSizeMB}
}

func (s *Service) ProcessingStarted() string { return processingStarted }

func (s *Service) Instructions() string { return instructions }

func (s *Service) ProcessingComplete(summary, keywords string) string {
	return fmt.Sprintf(processingComplete, summary, keywords)
}

func (s *Service) ErrorMessage(scenario domain.ErrorScenario) string {
	switch scenario {
	case domain.ScenarioFileTooLarge:
		return fmt.Sprintf(errFileTooLarge, s.maxFileSizeMB)
	case domain.ScenarioUnsupportedFormat:
		return errUnsupportedFormat
	case domain.ScenarioCorruptedFile:
		return errCorrupted
	case domain.ScenarioPasswordProtected:
		return errPassword
	case domain.ScenarioEmptyDocument:
		return errEmpty
	case domain.ScenarioOCRFailed:
		return errOCR
	case domain.ScenarioAPIRateLimit, domain.ScenarioAPITimeout, domain.ScenarioAPIError:
		return errAPI
	case domain.ScenarioSheetAuthError, domain.ScenarioSheetWriteError:
		return errStorage
	case domain.ScenarioURLInvalid:
		return errURL
	default:
		return errUnknown
	}
}

// ValidationMessage prefers the scenario mapping and falls back to the
// raw validation message.
func (s *Service) ValidationMessage(scenario domain.ErrorScenario, message string) string {
	if scenario != "" {
		return s.ErrorMessage(scenario)
	}
	if message != "" {
		return "❌ " + message
	}
	return "❌ Произошла ошибка валидации. Попробуйте позже"
}

// ResultMessage renders the terminal notification for a finished run.
func (s *Service) ResultMessage(result domain.ProcessingResult) string {
	if result.Status == domain.StatusCompleted {
		return s.ProcessingComplete(result.Summary.Summary, result.Keywords.Formatted)
	}
	return s.ErrorMessage(result.ErrorScenario)
}
