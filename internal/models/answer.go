package models

import "fmt"

// Answer is one submitted response, in question order.
type Answer struct {
	QuestionIndex int   `bson:"questionIndex" json:"questionIndex"`
	Selected      []int `bson:"selected" json:"selected"`
}

// Submission is the body of an attempt. The score is taken as given.
type Submission struct {
	Answers []Answer `json:"answers"`
	Score   *float64 `json:"score"`
}

func (s Submission) Validate() error {
	var problems []string
	if s.Score == nil {
		problems = append(problems, "score is required")
	} else if *s.Score < 0 {
		problems = append(problems, "score must not be negative")
	}
	for i, a := range s.Answers {
		if a.QuestionIndex < 0 {
			problems = append(problems, fmt.Sprintf("answers[%d]: questionIndex must not be negative", i))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
