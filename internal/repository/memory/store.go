// Package memory keeps quizzes, results and users in process memory with the
// same ordering and not-found semantics as the Mongo repositories.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quiz-platform/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu      sync.RWMutex
	quizzes map[primitive.ObjectID]models.Quiz
	results []models.QuizResult
	users   map[primitive.ObjectID]models.User
}

func NewStore() *Store {
	return &Store{
		quizzes: make(map[primitive.ObjectID]models.Quiz),
		users:   make(map[primitive.ObjectID]models.User),
	}
}

// PutUser inserts or replaces a user. The users collection is owned by the
// auth service, so this exists for tests and local development only.
func (s *Store) PutUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users[u.ID] = u
	return u
}

func (s *Store) Quizzes() *QuizRepository   { return &QuizRepository{s: s} }
func (s *Store) Results() *ResultRepository { return &ResultRepository{s: s} }
func (s *Store) Users() *UserRepository     { return &UserRepository{s: s} }

type QuizRepository struct{ s *Store }

func (r *QuizRepository) FindAll(_ context.Context) ([]models.Quiz, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Quiz, 0, len(r.s.quizzes))
	for _, q := range r.s.quizzes {
		out = append(out, q)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

func (r *QuizRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Quiz, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q, ok := r.s.quizzes[id]
	if !ok {
		return nil, models.ErrQuizNotFound
	}
	return &q, nil
}

func (r *QuizRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Quiz, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Quiz
	for _, id := range ids {
		if q, ok := r.s.quizzes[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *QuizRepository) Create(_ context.Context, quiz *models.Quiz) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if quiz.ID.IsZero() {
		quiz.ID = primitive.NewObjectID()
	}
	r.s.quizzes[quiz.ID] = *quiz
	return nil
}

func (r *QuizRepository) Replace(_ context.Context, id primitive.ObjectID, in models.QuizInput, updatedAt time.Time) (*models.Quiz, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.quizzes[id]
	if !ok {
		return nil, models.ErrQuizNotFound
	}
	q.Title = in.Title
	q.Questions = in.Questions
	q.TimeLimit = in.TimeLimit
	q.UpdatedAt = updatedAt
	r.s.quizzes[id] = q
	return &q, nil
}

func (r *QuizRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.quizzes[id]; !ok {
		return models.ErrQuizNotFound
	}
	delete(r.s.quizzes, id)
	return nil
}

type ResultRepository struct{ s *Store }

func (r *ResultRepository) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.QuizResult, error) {
	out := r.filter(func(res models.QuizResult) bool { return res.User == userID })
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}

func (r *ResultRepository) FindByQuiz(_ context.Context, quizID primitive.ObjectID) ([]models.QuizResult, error) {
	out := r.filter(func(res models.QuizResult) bool { return res.Quiz == quizID })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CompletedAt.Before(out[j].CompletedAt)
	})
	return out, nil
}

func (r *ResultRepository) filter(keep func(models.QuizResult) bool) []models.QuizResult {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.QuizResult
	for _, res := range r.s.results {
		if keep(res) {
			out = append(out, res)
		}
	}
	return out
}

func (r *ResultRepository) Create(_ context.Context, result *models.QuizResult) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if result.ID.IsZero() {
		result.ID = primitive.NewObjectID()
	}
	if result.Answers == nil {
		result.Answers = []models.Answer{}
	}
	r.s.results = append(r.s.results, *result)
	return nil
}

func (r *ResultRepository) MarkTerminated(_ context.Context, userID, quizID, by primitive.ObjectID, at time.Time) (*models.QuizResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	latest := -1
	for i, res := range r.s.results {
		if res.User != userID || res.Quiz != quizID {
			continue
		}
		if latest == -1 || res.CompletedAt.After(r.s.results[latest].CompletedAt) {
			latest = i
		}
	}

	if latest == -1 {
		r.s.results = append(r.s.results, models.QuizResult{
			ID:          primitive.NewObjectID(),
			User:        userID,
			Quiz:        quizID,
			Answers:     []models.Answer{},
			CompletedAt: at,
		})
		latest = len(r.s.results) - 1
	}

	res := &r.s.results[latest]
	res.Terminated = true
	res.TerminatedAt = &at
	res.TerminatedBy = &by
	out := *res
	return &out, nil
}

type UserRepository struct{ s *Store }

func (r *UserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	u.TerminatedQuizzes = append([]primitive.ObjectID(nil), u.TerminatedQuizzes...)
	return &u, nil
}

func (r *UserRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, models.User{ID: u.ID, Name: u.Name, Email: u.Email})
		}
	}
	return out, nil
}

func (r *UserRepository) AddTerminatedQuiz(_ context.Context, userID, quizID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	for _, id := range u.TerminatedQuizzes {
		if id == quizID {
			return nil
		}
	}
	u.TerminatedQuizzes = append(u.TerminatedQuizzes, quizID)
	r.s.users[userID] = u
	return nil
}

// Transactor runs work directly; the store has no multi-step rollback.
type Transactor struct{}

func (Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
