package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Quiz is an admin-authored question set. TimeLimit is in minutes; nil means untimed.
type Quiz struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title     string             `bson:"title" json:"title"`
	Questions []Question         `bson:"questions" json:"questions"`
	TimeLimit *int               `bson:"timeLimit,omitempty" json:"timeLimit,omitempty"`
	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// QuizInput is the mutable part of a quiz, shared by create and update.
type QuizInput struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
	TimeLimit *int       `json:"timeLimit"`
}

// Validate reports every problem with the input at once.
func (in QuizInput) Validate() error {
	var problems []string
	if isBlank(in.Title) {
		problems = append(problems, "title is required")
	}
	if len(in.Questions) == 0 {
		problems = append(problems, "questions must be a non-empty list")
	}
	for i, q := range in.Questions {
		problems = append(problems, q.problems(i)...)
	}
	if in.TimeLimit != nil && *in.TimeLimit <= 0 {
		problems = append(problems, "timeLimit must be a positive number of minutes")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// QuizSummary is the projection returned with attempted quizzes.
type QuizSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Title     string             `bson:"title" json:"title"`
	Questions []Question         `bson:"questions" json:"questions"`
}

func (q Quiz) Summary() QuizSummary {
	return QuizSummary{ID: q.ID, Title: q.Title, Questions: q.Questions}
}

// QuizWithStatus flattens the quiz and adds the caller's attempt flag.
type QuizWithStatus struct {
	Quiz
	Attempted bool `json:"attempted"`
}
