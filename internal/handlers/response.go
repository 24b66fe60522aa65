package handlers

import (
	"errors"
	"log"
	"net/http"

	"quiz-platform/internal/middleware"
	"quiz-platform/internal/models"

	"github.com/gin-gonic/gin"
)

func messageResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

func badRequestResponse(c *gin.Context, message string, problems []string) {
	body := gin.H{"message": message}
	if len(problems) > 0 {
		body["errors"] = problems
	}
	c.JSON(http.StatusBadRequest, body)
}

const (
	invalidQuiz        = "Invalid quiz data"
	invalidSubmission  = "Invalid submission"
	invalidTermination = "Invalid termination request"
	invalidRequest     = "Invalid request"
)

// errorResponse maps service errors onto status codes. Validation failures
// are reported under invalid, the caller's message for its operation.
// Anything that is not a validation or not-found error is logged and
// reported as a server error.
func errorResponse(c *gin.Context, op, invalid string, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		badRequestResponse(c, invalid, verr.Problems)
	case errors.Is(err, models.ErrValidation):
		badRequestResponse(c, err.Error(), nil)
	case errors.Is(err, models.ErrUserNotFound):
		messageResponse(c, http.StatusNotFound, "User not found")
	case errors.Is(err, models.ErrQuizNotFound):
		messageResponse(c, http.StatusNotFound, "Quiz not found")
	default:
		log.Printf("[%s] %s error: %v", middleware.GetRequestID(c), op, err)
		messageResponse(c, http.StatusInternalServerError, "Server error")
	}
}
