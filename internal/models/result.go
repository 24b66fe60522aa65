package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuizResult struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	User         primitive.ObjectID  `bson:"user" json:"user"`
	Quiz         primitive.ObjectID  `bson:"quiz" json:"quiz"`
	Answers      []Answer            `bson:"answers" json:"answers"`
	Score        float64             `bson:"score" json:"score"`
	CompletedAt  time.Time           `bson:"completedAt" json:"completedAt"`
	Terminated   bool                `bson:"terminated" json:"terminated"`
	TerminatedAt *time.Time          `bson:"terminatedAt,omitempty" json:"terminatedAt,omitempty"`
	TerminatedBy *primitive.ObjectID `bson:"terminatedBy,omitempty" json:"terminatedBy,omitempty"`
}

// AttemptedQuiz is one row of a user's attempt history.
type AttemptedQuiz struct {
	Quiz        QuizSummary `json:"quiz"`
	Score       float64     `json:"score"`
	CompletedAt time.Time   `json:"completedAt"`
	Terminated  bool        `json:"terminated"`
}
