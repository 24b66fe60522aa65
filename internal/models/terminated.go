package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// TerminatedSet is the union of both termination sources for one user:
// the per-result flag and the user's legacy list.
type TerminatedSet map[primitive.ObjectID]struct{}

func NewTerminatedSet(results []QuizResult, user *User) TerminatedSet {
	set := make(TerminatedSet)
	for _, r := range results {
		if r.Terminated {
			set[r.Quiz] = struct{}{}
		}
	}
	set.AddLegacy(user)
	return set
}

func (s TerminatedSet) AddLegacy(user *User) {
	if user == nil {
		return
	}
	for _, id := range user.TerminatedQuizzes {
		s[id] = struct{}{}
	}
}

func (s TerminatedSet) Has(quizID primitive.ObjectID) bool {
	_, ok := s[quizID]
	return ok
}
