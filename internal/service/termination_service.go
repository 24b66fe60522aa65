package service

import (
	"context"
	"time"

	"quiz-platform/internal/event"
	"quiz-platform/internal/metrics"
	"quiz-platform/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TerminationService struct {
	Users   UserStore
	Results ResultStore
	Tx      Transactor
	Cache   LeaderboardCache
	Events  event.Publisher
	Now     func() time.Time
}

func NewTerminationService(users UserStore, results ResultStore, tx Transactor, cache LeaderboardCache, events event.Publisher) *TerminationService {
	return &TerminationService{Users: users, Results: results, Tx: tx, Cache: cache, Events: events, Now: time.Now}
}

// Terminate marks userID as terminated for quizID in both the legacy user
// list and the latest result, creating a zero-score result if none exists.
// Repeating the call leaves the same state. The quiz itself is not looked up.
func (s *TerminationService) Terminate(ctx context.Context, userID string, quizID string, initiator primitive.ObjectID) (primitive.ObjectID, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, models.ErrUserNotFound
	}
	qid, err := primitive.ObjectIDFromHex(quizID)
	if err != nil {
		return primitive.NilObjectID, models.NewValidationError("quizId must be a valid id")
	}

	now := s.Now()
	err = s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.Users.FindByID(ctx, uid); err != nil {
			return err
		}
		if err := s.Users.AddTerminatedQuiz(ctx, uid, qid); err != nil {
			return err
		}
		_, err := s.Results.MarkTerminated(ctx, uid, qid, initiator, now)
		return err
	})
	if err != nil {
		return primitive.NilObjectID, err
	}

	initiatedBy := metrics.InitiatorSelf
	if initiator != uid {
		initiatedBy = metrics.InitiatorAdmin
	}
	metrics.Terminations.WithLabelValues(initiatedBy).Inc()
	s.Cache.Invalidate(ctx, qid.Hex())
	publish(s.Events, event.QuizTerminated, map[string]interface{}{
		"quizId":      qid.Hex(),
		"userId":      uid.Hex(),
		"initiatedBy": initiator.Hex(),
	})
	return uid, nil
}
