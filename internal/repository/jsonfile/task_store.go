package jsonfile

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/gofrs/uuid/v5"

	"github.com/avdeenkov/taskdeck/internal/errs"
	"github.com/avdeenkov/taskdeck/internal/model"
)

// TaskStore implements TaskRepository over a tasks.json array.
type TaskStore struct{ f *file }

// NewTaskStore opens (or lazily creates) the task file in dir.
func NewTaskStore(dir string) (*TaskStore, error) {
	f, err := newFile(filepath.Join(dir, "tasks.json"))
	if err != nil {
		return nil, err
	}
	return &TaskStore{f: f}, nil
}

// Insert appends the task and rewrites the file.
func (s *TaskStore) Insert(_ context.Context, t *model.Task) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var tasks []model.Task
	if err := s.f.readInto(&tasks); err != nil {
		return err
	}
	tasks = append(tasks, *t)
	return s.f.write(tasks)
}

// GetByID scans for the task by ID.
func (s *TaskStore) GetByID(_ context.Context, id uuid.UUID) (*model.Task, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var tasks []model.Task
	if err := s.f.readInto(&tasks); err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			t := tasks[i]
			return &t, nil
		}
	}
	return nil, errs.ErrNotFound
}

// List filters, sorts by created_at descending, and slices the page in
// memory, mirroring the backend this store replaces.
func (s *TaskStore) List(_ context.Context, f model.TaskFilter) ([]model.Task, int, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var tasks []model.Task
	if err := s.f.readInto(&tasks); err != nil {
		return nil, 0, err
	}

	matched := tasks[:0:0]
	for _, t := range tasks {
		if f.OwnerID != uuid.Nil && t.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		matched = append(matched, t)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := f.Offset()
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// Update replaces the stored record with the same ID.
func (s *TaskStore) Update(_ context.Context, t *model.Task) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var tasks []model.Task
	if err := s.f.readInto(&tasks); err != nil {
		return err
	}
	for i := range tasks {
		if tasks[i].ID == t.ID {
			tasks[i] = *t
			return s.f.write(tasks)
		}
	}
	return errs.ErrNotFound
}

// Delete removes the record permanently.
func (s *TaskStore) Delete(_ context.Context, id uuid.UUID) error {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var tasks []model.Task
	if err := s.f.readInto(&tasks); err != nil {
		return err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			tasks = append(tasks[:i], tasks[i+1:]...)
			return s.f.write(tasks)
		}
	}
	return errs.ErrNotFound
}

// Stats counts per-status totals for one owner, or all owners when ownerID
// is the zero UUID.
func (s *TaskStore) Stats(_ context.Context, ownerID uuid.UUID) (model.Stats, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	var tasks []model.Task
	if err := s.f.readInto(&tasks); err != nil {
		return model.Stats{}, err
	}
	var st model.Stats
	for _, t := range tasks {
		if ownerID != uuid.Nil && t.OwnerID != ownerID {
			continue
		}
		st.Total++
		switch t.Status {
		case model.StatusPending:
			st.Pending++
		case model.StatusInProgress:
			st.InProgress++
		case model.StatusCompleted:
			st.Completed++
		}
	}
	return st, nil
}
