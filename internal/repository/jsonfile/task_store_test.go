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

func newTask(owner uuid.UUID, status model.Status, createdAt time.Time) model.Task {
	return model.Task{
		ID:         uuid.Must(uuid.NewV4()),
		OwnerID:    owner,
		OwnerName:  "bob",
		OwnerEmail: "bob@example.com",
		Title:      "t",
		Status:     status,
		Priority:   model.PriorityMedium,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestTaskStore_CRUD(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s, err := NewTaskStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	task := newTask(uuid.Must(uuid.NewV4()), model.StatusPending, time.Now().UTC())
	require.NoError(t, s.Insert(ctx, &task))

	got, err := s.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, task.ID, got.ID)

	got.Status = model.StatusCompleted
	require.NoError(t, s.Update(ctx, got))

	// Records survive a reopen of the same directory.
	s2, err := NewTaskStore(dir)
	require.NoError(t, err)
	got2, err := s2.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, got2.Status)

	require.NoError(t, s.Delete(ctx, task.ID))
	_, err = s.GetByID(ctx, task.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, task.ID), errs.ErrNotFound)
	require.ErrorIs(t, s.Update(ctx, &task), errs.ErrNotFound)
}

func TestTaskStore_List(t *testing.T) {
	t.Parallel()
	s, err := NewTaskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	owner := uuid.Must(uuid.NewV4())
	other := uuid.Must(uuid.NewV4())
	base := time.Now().UTC().Truncate(time.Second)

	// Five owned tasks with ascending creation times plus one foreign task.
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		status := model.StatusPending
		if i%2 == 1 {
			status = model.StatusCompleted
		}
		task := newTask(owner, status, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, s.Insert(ctx, &task))
		ids = append(ids, task.ID)
	}
	foreign := newTask(other, model.StatusPending, base)
	require.NoError(t, s.Insert(ctx, &foreign))

	// Owner filter plus newest-first ordering.
	tasks, total, err := s.List(ctx, model.TaskFilter{OwnerID: owner, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, tasks, 5)
	require.Equal(t, ids[4], tasks[0].ID)
	require.Equal(t, ids[0], tasks[4].ID)

	// Status filter.
	tasks, total, err = s.List(ctx, model.TaskFilter{OwnerID: owner, Status: model.StatusCompleted, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, tasks, 2)

	// Pagination: page past the end is empty, total unchanged.
	tasks, total, err = s.List(ctx, model.TaskFilter{OwnerID: owner, Page: 2, Limit: 3})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, tasks, 2)
	tasks, total, err = s.List(ctx, model.TaskFilter{OwnerID: owner, Page: 4, Limit: 3})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Empty(t, tasks)
}

func TestTaskStore_Stats(t *testing.T) {
	t.Parallel()
	s, err := NewTaskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	owner := uuid.Must(uuid.NewV4())
	now := time.Now().UTC()
	for _, st := range []model.Status{model.StatusPending, model.StatusPending, model.StatusCompleted} {
		task := newTask(owner, st, now)
		require.NoError(t, s.Insert(ctx, &task))
	}
	foreign := newTask(uuid.Must(uuid.NewV4()), model.StatusInProgress, now)
	require.NoError(t, s.Insert(ctx, &foreign))

	stats, err := s.Stats(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, model.Stats{Total: 3, Pending: 2, InProgress: 0, Completed: 1}, stats)

	all, err := s.Stats(ctx, uuid.Nil)
	require.NoError(t, err)
	require.Equal(t, 4, all.Total)
	require.Equal(t, 1, all.InProgress)
}
