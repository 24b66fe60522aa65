package service

import (
	"context"
	"time"

	"quiz-platform/internal/event"
	"quiz-platform/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuizService struct {
	Repo   QuizStore
	Cache  LeaderboardCache
	Events event.Publisher
	Now    func() time.Time
}

func NewQuizService(repo QuizStore, cache LeaderboardCache, events event.Publisher) *QuizService {
	return &QuizService{Repo: repo, Cache: cache, Events: events, Now: time.Now}
}

func (s *QuizService) CreateQuiz(ctx context.Context, in models.QuizInput, creator primitive.ObjectID) (*models.Quiz, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := s.Now()
	quiz := &models.Quiz{
		Title:     in.Title,
		Questions: in.Questions,
		TimeLimit: in.TimeLimit,
		CreatedBy: creator,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, quiz); err != nil {
		return nil, err
	}
	publish(s.Events, event.QuizCreated, map[string]interface{}{
		"quizId":    quiz.ID.Hex(),
		"title":     quiz.Title,
		"createdBy": creator.Hex(),
	})
	return quiz, nil
}

func (s *QuizService) GetQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	quizID, err := parseQuizID(id)
	if err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, quizID)
}

// UpdateQuiz replaces title, questions and timeLimit; an absent timeLimit clears it.
func (s *QuizService) UpdateQuiz(ctx context.Context, id string, in models.QuizInput) (*models.Quiz, error) {
	quizID, err := parseQuizID(id)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	quiz, err := s.Repo.Replace(ctx, quizID, in, s.Now())
	if err != nil {
		return nil, err
	}
	publish(s.Events, event.QuizUpdated, map[string]interface{}{"quizId": quiz.ID.Hex(), "title": quiz.Title})
	return quiz, nil
}

// DeleteQuiz is a hard delete. Results referencing the quiz are left in place.
func (s *QuizService) DeleteQuiz(ctx context.Context, id string) error {
	quizID, err := parseQuizID(id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, quizID); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, quizID.Hex())
	publish(s.Events, event.QuizDeleted, map[string]interface{}{"quizId": quizID.Hex()})
	return nil
}
