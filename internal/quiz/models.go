package quiz

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TypeMultipleChoice is the only question type currently produced or accepted.
const TypeMultipleChoice = "multiple_choice"

type Answer struct {
	ID         string `bson:"id" json:"id"`
	AnswerText string `bson:"answer_text" json:"answer_text"`
	IsCorrect  bool   `bson:"is_correct" json:"is_correct"`
}

type Question struct {
	ID           string   `bson:"id" json:"id"`
	Type         string   `bson:"type" json:"type"`
	QuestionText string   `bson:"question_text" json:"question_text"`
	Answers      []Answer `bson:"answers" json:"answers"`
}

// Quiz is the stored document. PublicID is the caller-visible identifier and
// is never the store's internal _id; OwnerID nil marks a public/shared quiz.
type Quiz struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"-"`
	PublicID  string              `bson:"id" json:"id"`
	Title     string              `bson:"title" json:"title"`
	Topic     string              `bson:"topic,omitempty" json:"topic,omitempty"`
	OwnerID   *primitive.ObjectID `bson:"userId" json:"-"`
	Questions []Question          `bson:"questions" json:"questions"`
}
