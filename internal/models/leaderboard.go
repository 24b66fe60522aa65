package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LeaderboardEntry struct {
	UserID      primitive.ObjectID `json:"userId"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	Score       float64            `json:"score"`
	CompletedAt time.Time          `json:"completedAt"`
	Rank        int                `json:"rank"`
}

type Leaderboard struct {
	Entries  []LeaderboardEntry `json:"leaderboard"`
	UserRank *LeaderboardEntry  `json:"userRank"`
}
