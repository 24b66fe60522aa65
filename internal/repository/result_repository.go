package repository

import (
	"context"
	"fmt"
	"time"

	"quiz-platform/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ResultCollection = "quizresults"

type ResultRepository struct {
	Col *mongo.Collection
}

func NewResultRepository(db *mongo.Database) *ResultRepository {
	return &ResultRepository{Col: db.Collection(ResultCollection)}
}

// FindByUser returns the user's results, most recently completed first.
func (r *ResultRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.QuizResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}})
	return r.find(ctx, bson.M{"user": userID}, opts)
}

// FindByQuiz returns the quiz's results in leaderboard order.
func (r *ResultRepository) FindByQuiz(ctx context.Context, quizID primitive.ObjectID) ([]models.QuizResult, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "score", Value: -1},
		{Key: "completedAt", Value: 1},
		{Key: "_id", Value: 1},
	})
	return r.find(ctx, bson.M{"quiz": quizID}, opts)
}

func (r *ResultRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.QuizResult, error) {
	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find results: %w", err)
	}
	defer cur.Close(ctx)

	var results []models.QuizResult
	for cur.Next(ctx) {
		var res models.QuizResult
		if err := cur.Decode(&res); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		results = append(results, res)
	}
	return results, cur.Err()
}

func (r *ResultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	if result.ID.IsZero() {
		result.ID = primitive.NewObjectID()
	}
	if result.Answers == nil {
		result.Answers = []models.Answer{}
	}
	if _, err := r.Col.InsertOne(ctx, result); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// MarkTerminated flags the user's latest result for the quiz, or inserts a
// zero-score terminated result when there is none. Score and answers of an
// existing result are left untouched.
func (r *ResultRepository) MarkTerminated(ctx context.Context, userID, quizID, by primitive.ObjectID, at time.Time) (*models.QuizResult, error) {
	filter := bson.M{"user": userID, "quiz": quizID}
	update := bson.M{
		"$set": bson.M{
			"terminated":   true,
			"terminatedAt": at,
			"terminatedBy": by,
		},
		"$setOnInsert": bson.M{
			"answers":     bson.A{},
			"score":       0,
			"completedAt": at,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetSort(bson.D{{Key: "completedAt", Value: -1}}).
		SetReturnDocument(options.After)

	var result models.QuizResult
	if err := r.Col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		return nil, fmt.Errorf("terminate result user=%s quiz=%s: %w", userID.Hex(), quizID.Hex(), err)
	}
	return &result, nil
}
