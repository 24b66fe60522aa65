package models

import (
	"fmt"
	"strings"
)

type Question struct {
	Question       string   `bson:"question" json:"question"`
	Options        []string `bson:"options" json:"options"`
	CorrectAnswers []int    `bson:"correctAnswers" json:"correctAnswers"`
}

const minOptions = 2

func (q Question) problems(idx int) []string {
	var out []string
	prefix := fmt.Sprintf("questions[%d]", idx)
	if isBlank(q.Question) {
		out = append(out, prefix+": question text is required")
	}
	if len(q.Options) < minOptions {
		out = append(out, fmt.Sprintf("%s: at least %d options are required", prefix, minOptions))
	}
	for i, opt := range q.Options {
		if isBlank(opt) {
			out = append(out, fmt.Sprintf("%s: option %d is empty", prefix, i))
		}
	}
	if len(q.CorrectAnswers) == 0 {
		out = append(out, prefix+": at least one correct answer is required")
	}
	for _, a := range q.CorrectAnswers {
		if a < 0 || a >= len(q.Options) {
			out = append(out, fmt.Sprintf("%s: correct answer %d is out of range", prefix, a))
		}
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
