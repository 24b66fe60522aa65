package service

import (
	"context"
	"log"
	"time"

	"quiz-platform/internal/cache"
	"quiz-platform/internal/event"
	"quiz-platform/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Both the Mongo repositories and the in-memory store satisfy these.

type QuizStore interface {
	FindAll(ctx context.Context) ([]models.Quiz, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Quiz, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Quiz, error)
	Create(ctx context.Context, quiz *models.Quiz) error
	Replace(ctx context.Context, id primitive.ObjectID, in models.QuizInput, updatedAt time.Time) (*models.Quiz, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ResultStore interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.QuizResult, error)
	FindByQuiz(ctx context.Context, quizID primitive.ObjectID) ([]models.QuizResult, error)
	Create(ctx context.Context, result *models.QuizResult) error
	MarkTerminated(ctx context.Context, userID, quizID, by primitive.ObjectID, at time.Time) (*models.QuizResult, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	AddTerminatedQuiz(ctx context.Context, userID, quizID primitive.ObjectID) error
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// LeaderboardCache is keyed by the quiz id in canonical lower-case hex.
type LeaderboardCache interface {
	GetOrLoad(ctx context.Context, quizID string, load cache.LoadFunc) ([]models.LeaderboardEntry, error)
	Invalidate(ctx context.Context, quizID string)
}

// parseQuizID treats a malformed id like an unknown one.
func parseQuizID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, models.ErrQuizNotFound
	}
	return id, nil
}

func publish(events event.Publisher, eventType string, payload interface{}) {
	if events == nil {
		return
	}
	if err := events.Publish(eventType, payload); err != nil {
		log.Printf("Warning: failed to publish %s: %v", eventType, err)
	}
}
