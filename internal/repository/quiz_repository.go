package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quiz-platform/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const QuizCollection = "quizzes"

type QuizRepository struct {
	Col *mongo.Collection
}

func NewQuizRepository(db *mongo.Database) *QuizRepository {
	return &QuizRepository{Col: db.Collection(QuizCollection)}
}

// FindAll returns every quiz, newest first.
func (r *QuizRepository) FindAll(ctx context.Context) ([]models.Quiz, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.Col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find quizzes: %w", err)
	}
	defer cur.Close(ctx)

	var quizzes []models.Quiz
	for cur.Next(ctx) {
		var q models.Quiz
		if err := cur.Decode(&q); err != nil {
			return nil, fmt.Errorf("decode quiz: %w", err)
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, cur.Err()
}

func (r *QuizRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&quiz)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrQuizNotFound
		}
		return nil, fmt.Errorf("find quiz %s: %w", id.Hex(), err)
	}
	return &quiz, nil
}

// FindByIDs resolves a batch of references; ids that no longer exist are
// simply absent from the result.
func (r *QuizRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Quiz, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.Col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find quizzes by id: %w", err)
	}
	defer cur.Close(ctx)

	var quizzes []models.Quiz
	if err := cur.All(ctx, &quizzes); err != nil {
		return nil, fmt.Errorf("decode quizzes: %w", err)
	}
	return quizzes, nil
}

func (r *QuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	if quiz.ID.IsZero() {
		quiz.ID = primitive.NewObjectID()
	}
	if _, err := r.Col.InsertOne(ctx, quiz); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

// Replace overwrites title, questions and time limit in one step and returns
// the stored document.
func (r *QuizRepository) Replace(ctx context.Context, id primitive.ObjectID, in models.QuizInput, updatedAt time.Time) (*models.Quiz, error) {
	set := bson.M{
		"title":     in.Title,
		"questions": in.Questions,
		"updatedAt": updatedAt,
	}
	update := bson.M{"$set": set}
	if in.TimeLimit != nil {
		set["timeLimit"] = *in.TimeLimit
	} else {
		update["$unset"] = bson.M{"timeLimit": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var quiz models.Quiz
	err := r.Col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&quiz)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrQuizNotFound
		}
		return nil, fmt.Errorf("update quiz %s: %w", id.Hex(), err)
	}
	return &quiz, nil
}

func (r *QuizRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete quiz %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return models.ErrQuizNotFound
	}
	return nil
}
