package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/shareit/service-booking/internal/platform/apperr"
)

// User is the local projection of a registered user.
type User struct {
	id        uuid.UUID
	name      string
	email     string
	updatedAt time.Time
}

// NewUser creates a user projection.
func NewUser(id uuid.UUID, name, email string) (*User, error) {
	if id == uuid.Nil {
		return nil, apperr.NewValidationError("user ID is required")
	}
	return &User{id: id, name: name, email: email, updatedAt: time.Now().UTC()}, nil
}

// Reconstruct rebuilds a User from persistence data.
func Reconstruct(id uuid.UUID, name, email string, updatedAt time.Time) *User {
	return &User{id: id, name: name, email: email, updatedAt: updatedAt}
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }
