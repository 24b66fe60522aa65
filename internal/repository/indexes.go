package repository

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureIndexes creates the indexes the read paths rely on. Existing indexes
// with the same keys are left alone by the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	plan := map[string][]mongo.IndexModel{
		QuizCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		ResultCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "completedAt", Value: -1}}},
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "quiz", Value: 1}}},
			{Keys: bson.D{{Key: "quiz", Value: 1}, {Key: "score", Value: -1}, {Key: "completedAt", Value: 1}}},
		},
	}

	for collection, indexes := range plan {
		names, err := db.Collection(collection).Indexes().CreateMany(ctx, indexes)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
		log.Printf("Indexes ready on %s: %v", collection, names)
	}
	return nil
}
