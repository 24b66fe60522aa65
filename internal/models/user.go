package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const anonymousDisplayName = "User"

// User is the slice of the shared users collection this service reads.
// TerminatedQuizzes predates QuizResult.Terminated and is still written
// for readers that have not moved off it.
type User struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name              string               `bson:"name" json:"name"`
	Email             string               `bson:"email" json:"email"`
	TerminatedQuizzes []primitive.ObjectID `bson:"terminatedQuizzes,omitempty" json:"terminatedQuizzes,omitempty"`
}

func (u *User) DisplayName() string {
	if u == nil {
		return anonymousDisplayName
	}
	if !isBlank(u.Name) {
		return u.Name
	}
	if !isBlank(u.Email) {
		return u.Email
	}
	return anonymousDisplayName
}
