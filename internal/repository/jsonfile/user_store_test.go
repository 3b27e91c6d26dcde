package jsonfile

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/avdeenkov/taskdeck/internal/errs"
	"github.com/avdeenkov/taskdeck/internal/model"
)

func newUser(email string, createdAt time.Time) model.User {
	return model.User{
		ID:        uuid.Must(uuid.NewV4()),
		Name:      "alice",
		Email:     email,
		Role:      model.RoleUser,
		PwdHash:   []byte("h"),
		CreatedAt: createdAt,
	}
}

func TestUserStore_CreateAndLookup(t *testing.T) {
	t.Parallel()
	s, err := NewUserStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	u := newUser("alice@example.com", time.Now().UTC())
	require.NoError(t, s.Create(ctx, &u))

	// Email uniqueness.
	dup := newUser("alice@example.com", time.Now().UTC())
	require.ErrorIs(t, s.Create(ctx, &dup), errs.ErrAlreadyExists)

	byID, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)

	byEmail, err := s.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	_, err = s.GetByEmail(ctx, "ghost@example.com")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUserStore_UpdateNameAndList(t *testing.T) {
	t.Parallel()
	s, err := NewUserStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	older := newUser("a@example.com", base)
	newer := newUser("b@example.com", base.Add(time.Second))
	require.NoError(t, s.Create(ctx, &older))
	require.NoError(t, s.Create(ctx, &newer))

	got, err := s.UpdateName(ctx, older.ID, "renamed")
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Name)

	_, err = s.UpdateName(ctx, uuid.Must(uuid.NewV4()), "x")
	require.ErrorIs(t, err, errs.ErrNotFound)

	users, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, newer.ID, users[0].ID) // newest first
}
