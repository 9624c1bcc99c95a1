package openai

import "fmt"

const systemPrompt = "Ты - помощник для создания кратких резюме документов."

func langInstruction(language string) string {
	if language == "ru" {
		return "на русском языке"
	}
	return "in English"
}

func buildSummaryPrompt(text, language string) string {
	return fmt.Sprintf(`Создай краткое резюме следующего текста %s.
Резюме должно содержать от %d до %d предложений.
Резюме должно точно отражать основные темы и ключевые моменты документа.

Текст:
%s

Резюме:`, langInstruction(language), MinSentences, MaxSentences, text)
}

// buildAdjustPrompt asks for a summary of exactly the violated bound:
// the lower bound when the first summary was too short, the upper bound
// when it was too long.
func buildAdjustPrompt(text, language string, currentCount int) string {
	target := MaxSentences
	if currentCount < MinSentences {
		target = MinSentences
	}
	return fmt.Sprintf(`Создай резюме ровно из %d предложений %s.
Резюме должно точно отражать основные темы и ключевые моменты документа.

Текст:
%s

Резюме:`, target, langInstruction(language), text)
}
