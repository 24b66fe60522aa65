package handlers

import (
	"context"
	"net/http"
	"time"

	"quiz-platform/internal/middleware"
	"quiz-platform/internal/models"
	"quiz-platform/internal/service"

	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	Quizzes     *service.QuizService
	Attempts    *service.AttemptService
	Terminator  *service.TerminationService
	Visibility  *service.VisibilityService
	Leaderboard *service.LeaderboardService
	Timeout     time.Duration
}

func NewQuizHandler(
	quizzes *service.QuizService,
	attempts *service.AttemptService,
	terminator *service.TerminationService,
	visibility *service.VisibilityService,
	leaderboard *service.LeaderboardService,
	timeout time.Duration,
) *QuizHandler {
	return &QuizHandler{
		Quizzes:     quizzes,
		Attempts:    attempts,
		Terminator:  terminator,
		Visibility:  visibility,
		Leaderboard: leaderboard,
		Timeout:     timeout,
	}
}

// RegisterRoutes mounts the quiz API. requireAuth must run before admin.
func (h *QuizHandler) RegisterRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	quiz := rg.Group("/quiz", requireAuth)
	admin := middleware.RequireAdmin()

	quiz.POST("/create", admin, h.CreateQuiz)
	quiz.GET("/all", h.ListVisibleQuizzes)
	quiz.GET("/attempted", h.ListAttemptedQuizzes)
	quiz.POST("/terminate/:quizId", h.TerminateSelf)
	quiz.POST("/terminate/:quizId/user/:userId", admin, h.TerminateUser)
	quiz.GET("/:id", h.GetQuiz)
	quiz.PUT("/:id", admin, h.UpdateQuiz)
	quiz.DELETE("/:id", admin, h.DeleteQuiz)
	quiz.POST("/:id/submit", h.SubmitQuiz)
	quiz.GET("/:id/leaderboard", h.GetLeaderboard)
}

func (h *QuizHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.Timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.Timeout)
}

func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	caller, _ := middleware.CurrentUser(c)
	var in models.QuizInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequestResponse(c, invalidQuiz, []string{err.Error()})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()
	quiz, err := h.Quizzes.CreateQuiz(ctx, in, caller.UserID)
	if err != nil {
		errorResponse(c, "create quiz", invalidQuiz, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Quiz created successfully", "quiz": quiz})
}

func (h *QuizHandler) ListVisibleQuizzes(c *gin.Context) {
	caller, _ := middleware.CurrentUser(c)
	ctx, cancel := h.requestContext(c)
	defer cancel()

	quizzes, err := h.Visibility.ListVisibleQuizzes(ctx, caller.UserID)
	if err != nil {
		errorResponse(c, "list quizzes", invalidRequest, err)
		return
	}
	c.JSON(http.StatusOK, quizzes)
}

func (h *QuizHandler) ListAttemptedQuizzes(c *gin.Context) {
	caller, _ := middleware.CurrentUser(c)
	ctx, cancel := h.requestContext(c)
	defer cancel()

	attempted, err := h.Visibility.ListAttemptedQuizzes(ctx, caller.UserID)
	if err != nil {
		errorResponse(c, "list attempted quizzes", invalidRequest, err)
		return
	}
	c.JSON(http.StatusOK, attempted)
}

func (h *QuizHandler) GetQuiz(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	quiz, err := h.Quizzes.GetQuiz(ctx, c.Param("id"))
	if err != nil {
		errorResponse(c, "get quiz", invalidRequest, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	var in models.QuizInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequestResponse(c, invalidQuiz, []string{err.Error()})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()
	quiz, err := h.Quizzes.UpdateQuiz(ctx, c.Param("id"), in)
	if err != nil {
		errorResponse(c, "update quiz", invalidQuiz, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz updated successfully", "quiz": quiz})
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.Quizzes.DeleteQuiz(ctx, c.Param("id")); err != nil {
		errorResponse(c, "delete quiz", invalidRequest, err)
		return
	}
	messageResponse(c, http.StatusOK, "Quiz deleted successfully")
}

func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	caller, _ := middleware.CurrentUser(c)
	var sub models.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		badRequestResponse(c, invalidSubmission, []string{err.Error()})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()
	result, err := h.Attempts.Submit(ctx, caller.UserID, c.Param("id"), sub)
	if err != nil {
		errorResponse(c, "submit quiz", invalidSubmission, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Quiz submitted successfully", "result": result})
}

func (h *QuizHandler) TerminateSelf(c *gin.Context) {
	caller, _ := middleware.CurrentUser(c)
	h.terminate(c, caller.UserID.Hex(), caller)
}

func (h *QuizHandler) TerminateUser(c *gin.Context) {
	caller, _ := middleware.CurrentUser(c)
	h.terminate(c, c.Param("userId"), caller)
}

func (h *QuizHandler) terminate(c *gin.Context, userID string, caller middleware.Identity) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	uid, err := h.Terminator.Terminate(ctx, userID, c.Param("quizId"), caller.UserID)
	if err != nil {
		errorResponse(c, "terminate quiz", invalidTermination, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz terminated for user", "userId": uid})
}

func (h *QuizHandler) GetLeaderboard(c *gin.Context) {
	caller, _ := middleware.CurrentUser(c)
	ctx, cancel := h.requestContext(c)
	defer cancel()

	board, err := h.Leaderboard.Leaderboard(ctx, c.Param("id"), caller.UserID)
	if err != nil {
		errorResponse(c, "leaderboard", invalidRequest, err)
		return
	}
	c.JSON(http.StatusOK, board)
}
