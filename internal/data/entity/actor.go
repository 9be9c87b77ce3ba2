package entity

import (
	"github.com/google/uuid"
)

// Actor identifies who is calling an operation. The zero value is the
// anonymous caller.
type Actor struct {
	UserID        uuid.UUID
	Gender        Gender
	authenticated bool
}

var Anonymous = Actor{}

func Authenticated(userID uuid.UUID, gender Gender) Actor {
	return Actor{UserID: userID, Gender: gender, authenticated: true}
}

func (a Actor) IsAuthenticated() bool {
	return a.authenticated
}

// Is reports whether the actor is the authenticated user with the given id.
func (a Actor) Is(userID uuid.UUID) bool {
	return a.authenticated && a.UserID == userID
}
