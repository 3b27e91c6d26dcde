package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/avdeenkov/taskdeck/internal/model"
)

// UserRepository provides CRUD access to the identity store.
type UserRepository interface {
	// Create inserts a new user. Returns errs.ErrAlreadyExists when the
	// email is taken.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateName changes the display name and returns the updated user.
	UpdateName(ctx context.Context, id uuid.UUID, name string) (*model.User, error)
	// List returns all users, newest first.
	List(ctx context.Context) ([]model.User, error)
}
