package quiz

import (
	"fmt"
	"strings"
)

// ValidateTitle rejects empty or whitespace-only titles.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: missing 'title'", ErrValidation)
	}
	return nil
}

// ValidateQuestions enforces the answer invariant on caller-supplied
// questions: every question carries at least one answer, and exactly one of
// them is marked correct.
func ValidateQuestions(questions []Question) error {
	for i, q := range questions {
		if len(q.Answers) == 0 {
			return fmt.Errorf("%w: question %d has no answers", ErrValidation, i+1)
		}
		correct := 0
		for _, a := range q.Answers {
			if a.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("%w: question %d must have exactly one correct answer, got %d", ErrValidation, i+1, correct)
		}
	}
	return nil
}
