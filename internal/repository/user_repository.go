package repository

import (
	"context"
	"errors"
	"fmt"

	"quiz-platform/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const UserCollection = "users"

// UserRepository reads the users collection owned by the auth service. The
// only write it performs is maintaining the legacy terminated list.
type UserRepository struct {
	Col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{Col: db.Collection(UserCollection)}
}

var userProjection = bson.M{"name": 1, "email": 1, "terminatedQuizzes": 1}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	opts := options.FindOne().SetProjection(userProjection)
	err := r.Col.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", id.Hex(), err)
	}
	return &user, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1})
	cur, err := r.Col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find users by id: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// AddTerminatedQuiz appends quizID to the legacy list unless it is already there.
func (r *UserRepository) AddTerminatedQuiz(ctx context.Context, userID, quizID primitive.ObjectID) error {
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"terminatedQuizzes": quizID}},
	)
	if err != nil {
		return fmt.Errorf("add terminated quiz for user %s: %w", userID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return models.ErrUserNotFound
	}
	return nil
}
