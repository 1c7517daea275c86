package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/quizmentor/quizmentor-backend/internal/quiz"
)

// stripFences removes an optional markdown code fence around a model reply.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseGeneratedQuestions turns a raw oracle reply into validated questions.
// Elements that do not match the expected shape are dropped, not fatal; the
// dropped count lets the caller log a warning. A reply that is not the
// expected top-level object at all is an error.
func parseGeneratedQuestions(raw string) (questions []quiz.Question, dropped int, err error) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, 0, fmt.Errorf("empty content after cleaning")
	}

	var payload struct {
		Questions []json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, 0, fmt.Errorf("parsing generated JSON: %w", err)
	}
	if payload.Questions == nil {
		return nil, 0, fmt.Errorf("generated JSON missing 'questions' array")
	}

	for _, rawQ := range payload.Questions {
		var q struct {
			ID           string            `json:"id"`
			Type         string            `json:"type"`
			QuestionText string            `json:"question_text"`
			Answers      []json.RawMessage `json:"answers"`
		}
		if err := json.Unmarshal(rawQ, &q); err != nil || q.QuestionText == "" || q.Answers == nil {
			dropped++
			continue
		}

		answers := make([]quiz.Answer, 0, len(q.Answers))
		for _, rawA := range q.Answers {
			var a struct {
				ID         string `json:"id"`
				AnswerText *string `json:"answer_text"`
				IsCorrect  *bool  `json:"is_correct"`
			}
			if err := json.Unmarshal(rawA, &a); err != nil || a.AnswerText == nil {
				continue
			}
			answers = append(answers, quiz.Answer{
				ID:         a.ID,
				AnswerText: *a.AnswerText,
				IsCorrect:  a.IsCorrect != nil && *a.IsCorrect,
			})
		}
		if len(answers) == 0 {
			dropped++
			continue
		}

		qType := q.Type
		if qType == "" {
			qType = quiz.TypeMultipleChoice
		}
		questions = append(questions, quiz.Question{
			ID:           q.ID,
			Type:         qType,
			QuestionText: q.QuestionText,
			Answers:      answers,
		})
	}

	return questions, dropped, nil
}
