// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/avdeenkov/taskdeck/internal/model"
)

// TaskRepository is the record-store capability over task records. Both the
// Postgres and the JSON-file backends implement it; callers never see which
// one is wired.
type TaskRepository interface {
	// Insert persists a new task record.
	Insert(ctx context.Context, t *model.Task) error
	// GetByID loads a task by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	// List returns the page of tasks matching the filter, ordered by
	// created_at descending, plus the unpaginated total count.
	List(ctx context.Context, f model.TaskFilter) ([]model.Task, int, error)
	// Update overwrites an existing task record.
	Update(ctx context.Context, t *model.Task) error
	// Delete removes a task permanently.
	Delete(ctx context.Context, id uuid.UUID) error
	// Stats counts tasks per status for one owner, or for all owners
	// when ownerID is the zero UUID.
	Stats(ctx context.Context, ownerID uuid.UUID) (model.Stats, error)
}
