package user

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines persistence operations for the user projection.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Upsert(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}
