package service

import (
	"context"
	"errors"

	"quiz-platform/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

type VisibilityService struct {
	Quizzes QuizStore
	Results ResultStore
	Users   UserStore
}

func NewVisibilityService(quizzes QuizStore, results ResultStore, users UserStore) *VisibilityService {
	return &VisibilityService{Quizzes: quizzes, Results: results, Users: users}
}

// ListVisibleQuizzes returns every quiz the user has not been terminated
// from, newest first, flagged with whether the user has any result for it.
func (s *VisibilityService) ListVisibleQuizzes(ctx context.Context, userID primitive.ObjectID) ([]models.QuizWithStatus, error) {
	var (
		quizzes []models.Quiz
		results []models.QuizResult
		user    *models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		quizzes, err = s.Quizzes.FindAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		results, err = s.Results.FindByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		user, err = s.lookupUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	terminated := models.NewTerminatedSet(results, user)
	attempted := make(map[primitive.ObjectID]struct{}, len(results))
	for _, r := range results {
		attempted[r.Quiz] = struct{}{}
	}

	out := make([]models.QuizWithStatus, 0, len(quizzes))
	for _, q := range quizzes {
		if terminated.Has(q.ID) {
			continue
		}
		_, ok := attempted[q.ID]
		out = append(out, models.QuizWithStatus{Quiz: q, Attempted: ok})
	}
	return out, nil
}

// ListAttemptedQuizzes returns the user's results, newest first. Results
// whose quiz has been deleted are dropped.
func (s *VisibilityService) ListAttemptedQuizzes(ctx context.Context, userID primitive.ObjectID) ([]models.AttemptedQuiz, error) {
	var (
		results []models.QuizResult
		user    *models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		results, err = s.Results.FindByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		user, err = s.lookupUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(results))
	seen := make(map[primitive.ObjectID]struct{}, len(results))
	for _, r := range results {
		if _, ok := seen[r.Quiz]; !ok {
			seen[r.Quiz] = struct{}{}
			ids = append(ids, r.Quiz)
		}
	}
	quizzes, err := s.Quizzes.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Quiz, len(quizzes))
	for _, q := range quizzes {
		byID[q.ID] = q
	}

	legacy := make(models.TerminatedSet)
	legacy.AddLegacy(user)

	out := make([]models.AttemptedQuiz, 0, len(results))
	for _, r := range results {
		q, ok := byID[r.Quiz]
		if !ok {
			continue
		}
		out = append(out, models.AttemptedQuiz{
			Quiz:        q.Summary(),
			Score:       r.Score,
			CompletedAt: r.CompletedAt,
			Terminated:  r.Terminated || legacy.Has(r.Quiz),
		})
	}
	return out, nil
}

// lookupUser returns nil without error when the user document is missing;
// such users simply have no legacy list.
func (s *VisibilityService) lookupUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, nil
	}
	return user, err
}
