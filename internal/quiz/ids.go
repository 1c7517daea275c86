package quiz

import "github.com/google/uuid"

// WithIDs returns a copy of q with a fresh public id assigned wherever one is
// missing, down through questions and answers. Existing ids are kept; the
// input value is never mutated.
func WithIDs(q Quiz) Quiz {
	out := q
	if out.PublicID == "" {
		out.PublicID = uuid.NewString()
	}
	out.Questions = QuestionsWithIDs(q.Questions)
	return out
}

// QuestionsWithIDs copies questions, backfilling missing question and answer
// ids and defaulting the question type.
func QuestionsWithIDs(questions []Question) []Question {
	out := make([]Question, len(questions))
	for i, q := range questions {
		qq := q
		if qq.ID == "" {
			qq.ID = uuid.NewString()
		}
		if qq.Type == "" {
			qq.Type = TypeMultipleChoice
		}
		qq.Answers = make([]Answer, len(q.Answers))
		for j, a := range q.Answers {
			aa := a
			if aa.ID == "" {
				aa.ID = uuid.NewString()
			}
			qq.Answers[j] = aa
		}
		out[i] = qq
	}
	return out
}
