package service

import (
	"context"
	"time"

	"quiz-platform/internal/event"
	"quiz-platform/internal/metrics"
	"quiz-platform/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AttemptService struct {
	Quizzes QuizStore
	Results ResultStore
	Cache   LeaderboardCache
	Events  event.Publisher
	Now     func() time.Time
}

func NewAttemptService(quizzes QuizStore, results ResultStore, cache LeaderboardCache, events event.Publisher) *AttemptService {
	return &AttemptService{Quizzes: quizzes, Results: results, Cache: cache, Events: events, Now: time.Now}
}

// Submit records an attempt. Every call inserts a new result.
func (s *AttemptService) Submit(ctx context.Context, userID primitive.ObjectID, quizID string, sub models.Submission) (*models.QuizResult, error) {
	id, err := parseQuizID(quizID)
	if err != nil {
		return nil, err
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Quizzes.FindByID(ctx, id); err != nil {
		return nil, err
	}

	answers := sub.Answers
	if answers == nil {
		answers = []models.Answer{}
	}
	result := &models.QuizResult{
		User:        userID,
		Quiz:        id,
		Answers:     answers,
		Score:       *sub.Score,
		CompletedAt: s.Now(),
	}
	if err := s.Results.Create(ctx, result); err != nil {
		return nil, err
	}

	metrics.Submissions.Inc()
	s.Cache.Invalidate(ctx, id.Hex())
	publish(s.Events, event.QuizSubmitted, map[string]interface{}{
		"resultId": result.ID.Hex(),
		"quizId":   id.Hex(),
		"userId":   userID.Hex(),
		"score":    result.Score,
	})
	return result, nil
}
