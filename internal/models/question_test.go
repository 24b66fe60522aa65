package models

import (
	"errors"
	"strings"
	"testing"
)

func intPtr(v int) *int { return &v }

func validQuestion() Question {
	return Question{
		Question:       "What is 2 + 2?",
		Options:        []string{"3", "4", "5"},
		CorrectAnswers: []int{1},
	}
}

func TestQuizInputValidate(t *testing.T) {
	testCases := []struct {
		name    string
		input   QuizInput
		wantErr bool
		problem string
	}{
		{"valid", QuizInput{Title: "Math", Questions: []Question{validQuestion()}, TimeLimit: intPtr(60)}, false, ""},
		{"valid without time limit", QuizInput{Title: "Math", Questions: []Question{validQuestion()}}, false, ""},
		{"blank title", QuizInput{Title: "   ", Questions: []Question{validQuestion()}}, true, "title is required"},
		{"no questions", QuizInput{Title: "Math"}, true, "non-empty list"},
		{"zero time limit", QuizInput{Title: "Math", Questions: []Question{validQuestion()}, TimeLimit: intPtr(0)}, true, "timeLimit"},
		{"empty prompt", QuizInput{Title: "Math", Questions: []Question{{Options: []string{"a", "b"}, CorrectAnswers: []int{0}}}}, true, "question text is required"},
		{"single option", QuizInput{Title: "Math", Questions: []Question{{Question: "q", Options: []string{"a"}, CorrectAnswers: []int{0}}}}, true, "at least 2 options"},
		{"blank option", QuizInput{Title: "Math", Questions: []Question{{Question: "q", Options: []string{"a", " "}, CorrectAnswers: []int{0}}}}, true, "option 1 is empty"},
		{"no correct answer", QuizInput{Title: "Math", Questions: []Question{{Question: "q", Options: []string{"a", "b"}}}}, true, "correct answer is required"},
		{"correct answer out of range", QuizInput{Title: "Math", Questions: []Question{{Question: "q", Options: []string{"a", "b"}, CorrectAnswers: []int{2}}}}, true, "out of range"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.input.Validate()
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Expected ErrValidation, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *ValidationError, got %T", err)
			}
			if !strings.Contains(strings.Join(verr.Problems, "\n"), tc.problem) {
				t.Errorf("Expected a problem mentioning %q, got %v", tc.problem, verr.Problems)
			}
		})
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	err := QuizInput{}.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *ValidationError, got %v", err)
	}
	if len(verr.Problems) != 2 {
		t.Errorf("Expected 2 problems, got %d: %v", len(verr.Problems), verr.Problems)
	}
}

func TestDisplayNameFallback(t *testing.T) {
	testCases := []struct {
		name string
		user *User
		want string
	}{
		{"name", &User{Name: "Ada", Email: "ada@example.com"}, "Ada"},
		{"email", &User{Email: "ada@example.com"}, "ada@example.com"},
		{"placeholder", &User{}, "User"},
		{"missing user", nil, "User"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.user.DisplayName(); got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSubmissionValidate(t *testing.T) {
	score := func(v float64) *float64 { return &v }

	tests := []struct {
		name     string
		in       Submission
		problems int
	}{
		{"valid", Submission{Answers: []Answer{{QuestionIndex: 0, Selected: []int{1}}}, Score: score(8)}, 0},
		{"no answers", Submission{Score: score(0)}, 0},
		{"missing score", Submission{}, 1},
		{"negative score", Submission{Score: score(-1)}, 1},
		{"negative index", Submission{Answers: []Answer{{QuestionIndex: -1}}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.problems == 0 {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if len(verr.Problems) != tt.problems {
				t.Errorf("Expected %d problems, got %v", tt.problems, verr.Problems)
			}
		})
	}
}
