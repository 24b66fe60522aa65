package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is wrapped by every "referenced entity is missing" error.
	ErrNotFound = errors.New("not found")
	// ErrQuizNotFound is returned when a quiz id does not resolve.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
	// ErrUserNotFound is returned when a user id does not resolve.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrValidation is wrapped by every malformed-input error.
	ErrValidation = errors.New("validation failed")
)

type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(problem string) *ValidationError {
	return &ValidationError{Problems: []string{problem}}
}
