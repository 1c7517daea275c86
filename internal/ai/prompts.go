package ai

import (
	"fmt"
	"strings"
)

const quizPromptTemplate = `Generate exactly %d multiple-choice quiz questions about the topic: "%s".

Format the output STRICTLY as a single JSON object. This object must contain ONE key named "questions".
The value of "questions" MUST be a JSON array where each element is a question object.

Each question object in the array MUST have the following fields:
- "id": A unique UUID string generated for this question.
- "type": The string "multiple_choice".
- "question_text": The string containing the question text.
- "answers": A JSON array containing exactly 4 answer option objects.

Each answer option object in the "answers" array MUST have the following fields:
- "id": A unique UUID string generated for this answer option.
- "answer_text": The string containing the answer text.
- "is_correct": A boolean value (true for ONLY ONE answer per question, false for the others).

Example of a single question object within the "questions" array:
{
  "id": "f47ac10b-58cc-4372-a567-0e02b2c3d479",
  "type": "multiple_choice",
  "question_text": "What is the powerhouse of the cell?",
  "answers": [
    { "id": "a1b2c3d4-...", "answer_text": "Nucleus", "is_correct": false },
    { "id": "e5f6g7h8-...", "answer_text": "Ribosome", "is_correct": false },
    { "id": "i9j0k1l2-...", "answer_text": "Mitochondrion", "is_correct": true },
    { "id": "m3n4o5p6-...", "answer_text": "Chloroplast", "is_correct": false }
  ]
}

Ensure the entire output is only the valid JSON object with the "questions" key and its array value. Do not include any other text, explanations, or markdown formatting. Generate unique UUIDs for all 'id' fields.`

// quizPrompt builds the deterministic generation prompt.
func quizPrompt(topic string, numQuestions int) string {
	return fmt.Sprintf(quizPromptTemplate, numQuestions, topic)
}

// ChatContext carries the optional quiz context attached to a chat message.
// UserAnswerText is a pointer so "did not answer" is distinguishable from an
// empty answer.
type ChatContext struct {
	QuizTitle         string   `json:"quizTitle,omitempty"`
	QuestionText      string   `json:"questionText,omitempty"`
	Options           []string `json:"options,omitempty"`
	IsReviewMode      bool     `json:"isReviewMode,omitempty"`
	UserAnswerText    *string  `json:"userAnswerText,omitempty"`
	CorrectAnswerText string   `json:"correctAnswerText,omitempty"`
	WasCorrect        bool     `json:"wasCorrect,omitempty"`
}

// chatPrompt composes the assistant prompt. Review mode must explain
// correctness, including the correct answer when the user missed it; active
// quiz mode must never reveal the answer.
func chatPrompt(message string, c ChatContext) string {
	parts := []string{"You are a helpful quiz assistant."}

	if c.QuizTitle != "" {
		parts = append(parts, fmt.Sprintf("The user is interacting with the quiz titled '%s'.", c.QuizTitle))
	}
	if c.QuestionText != "" {
		parts = append(parts, fmt.Sprintf("The current question is: %q", c.QuestionText))
		if len(c.Options) > 0 {
			quoted := make([]string, len(c.Options))
			for i, opt := range c.Options {
				quoted[i] = "'" + opt + "'"
			}
			parts = append(parts, fmt.Sprintf("Options: %s.", strings.Join(quoted, ", ")))
		}

		if c.IsReviewMode {
			parts = append(parts, "\nThe user is currently reviewing their answer to this question.")
			if c.UserAnswerText != nil {
				correctness := "incorrect"
				if c.WasCorrect {
					correctness = "correct"
				}
				parts = append(parts, fmt.Sprintf("They previously answered '%s', which was %s.", *c.UserAnswerText, correctness))
				if !c.WasCorrect && c.CorrectAnswerText != "" {
					parts = append(parts, fmt.Sprintf("The correct answer is '%s'.", c.CorrectAnswerText))
				}
			} else {
				parts = append(parts, "They did not answer this question during the quiz.")
				if c.CorrectAnswerText != "" {
					parts = append(parts, fmt.Sprintf("The correct answer is '%s'.", c.CorrectAnswerText))
				}
			}
			parts = append(parts, "Focus on explaining why the correct answer is right or why their answer was wrong based on their query.")
		} else {
			parts = append(parts, "\nThe user is actively taking the quiz and asking about this question.")
			parts = append(parts, "Provide helpful hints or conceptual explanations related ONLY to the question or its options. DO NOT REVEAL THE CORRECT ANSWER directly.")
		}
	} else {
		parts = append(parts, "\nThe user is asking a general question, possibly about the quiz topic.")
	}

	parts = append(parts, fmt.Sprintf("\nUser's message: %q", message))
	parts = append(parts, "\nAssistant's concise and helpful response:")
	return strings.Join(parts, "\n")
}
