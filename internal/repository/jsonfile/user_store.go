package jsonfile

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/gofrs/uuid/v5"

	"github.com/avdeenkov/taskdeck/internal/errs"
	"github.com/avdeenkov/taskdeck/internal/model"
)

// UserStore implements UserRepository over a users.json array, so the file
// backend runs with no external identity service.
type UserStore struct{ f *file }

// NewUserStore opens (or lazily creates) the user file in dir.
func NewUserStore(dir string) (*UserStore, error) {
	f, err := newFile(filepath.Join(dir, "users.json"))
	if err != nil {
		return nil, err
	}
	return &UserStore{f: f}, nil
}

// Create appends the user, enforcing email uniqueness.
func (s *UserStore) Create(_ context.Context, u *model.User) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var users []model.User
	if err := s.f.readInto(&users); err != nil {
		return err
	}
	for i := range users {
		if users[i].Email == u.Email {
			return errs.ErrAlreadyExists
		}
	}
	users = append(users, *u)
	return s.f.write(users)
}

// GetByID scans for a user by ID.
func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.ID == id })
}

// GetByEmail scans for a user by email.
func (s *UserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.Email == email })
}

// UpdateName changes the display name and returns the updated user.
func (s *UserStore) UpdateName(_ context.Context, id uuid.UUID, name string) (*model.User, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var users []model.User
	if err := s.f.readInto(&users); err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			users[i].Name = name
			if err := s.f.write(users); err != nil {
				return nil, err
			}
			u := users[i]
			return &u, nil
		}
	}
	return nil, errs.ErrNotFound
}

// List returns all users, newest first.
func (s *UserStore) List(_ context.Context) ([]model.User, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var users []model.User
	if err := s.f.readInto(&users); err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (s *UserStore) find(match func(model.User) bool) (*model.User, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var users []model.User
	if err := s.f.readInto(&users); err != nil {
		return nil, err
	}
	for i := range users {
		if match(users[i]) {
			u := users[i]
			return &u, nil
		}
	}
	return nil, errs.ErrNotFound
}
