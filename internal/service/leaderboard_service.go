package service

import (
	"context"
	"sort"

	"quiz-platform/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LeaderboardService struct {
	Results ResultStore
	Users   UserStore
	Cache   LeaderboardCache
}

func NewLeaderboardService(results ResultStore, users UserStore, cache LeaderboardCache) *LeaderboardService {
	return &LeaderboardService{Results: results, Users: users, Cache: cache}
}

// Leaderboard ranks every result for the quiz by score, earliest completion
// first on ties. Ranks are positions, so equal scores never share a rank.
// UserRank is the requester's best entry, or nil.
func (s *LeaderboardService) Leaderboard(ctx context.Context, quizID string, requester primitive.ObjectID) (*models.Leaderboard, error) {
	id, err := parseQuizID(quizID)
	if err != nil {
		return nil, err
	}
	entries, err := s.Cache.GetOrLoad(ctx, id.Hex(), func(ctx context.Context) ([]models.LeaderboardEntry, error) {
		return s.rank(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	board := &models.Leaderboard{Entries: entries}
	if board.Entries == nil {
		board.Entries = []models.LeaderboardEntry{}
	}
	for i := range board.Entries {
		if board.Entries[i].UserID == requester {
			entry := board.Entries[i]
			board.UserRank = &entry
			break
		}
	}
	return board, nil
}

func (s *LeaderboardService) rank(ctx context.Context, quizID primitive.ObjectID) ([]models.LeaderboardEntry, error) {
	results, err := s.Results.FindByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []models.LeaderboardEntry{}, nil
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.CompletedAt.Equal(b.CompletedAt) {
			return a.CompletedAt.Before(b.CompletedAt)
		}
		return a.ID.Hex() < b.ID.Hex()
	})

	ids := make([]primitive.ObjectID, 0, len(results))
	seen := make(map[primitive.ObjectID]struct{}, len(results))
	for _, r := range results {
		if _, ok := seen[r.User]; !ok {
			seen[r.User] = struct{}{}
			ids = append(ids, r.User)
		}
	}
	users, err := s.Users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	entries := make([]models.LeaderboardEntry, len(results))
	for i, r := range results {
		u := byID[r.User]
		email := ""
		if u != nil {
			email = u.Email
		}
		entries[i] = models.LeaderboardEntry{
			UserID:      r.User,
			Name:        u.DisplayName(),
			Email:       email,
			Score:       r.Score,
			CompletedAt: r.CompletedAt,
			Rank:        i + 1,
		}
	}
	return entries, nil
}
