package service

import (
	"context"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/avdeenkov/taskdeck/internal/authz"
	"github.com/avdeenkov/taskdeck/internal/errs"
	"github.com/avdeenkov/taskdeck/internal/model"
	"github.com/avdeenkov/taskdeck/internal/repository"
)

// Listing defaults when the client omits paging parameters.
const (
	defaultPage  = 1
	defaultLimit = 10
)

// CreateTaskInput is the accepted shape for task creation. Ownership is
// never taken from the input; it always comes from the principal.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      model.Status
	Priority    model.Priority
}

// TaskService is the task lifecycle manager: CRUD plus derived read views.
// All access decisions go through the authz package; storage is delegated
// to the injected repository.
type TaskService interface {
	// Create validates input and stores a task owned by the principal.
	Create(ctx context.Context, p model.Principal, in CreateTaskInput) (*model.Task, error)
	// Get returns one task the principal may view.
	Get(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Task, error)
	// List returns one page of the principal's visible tasks plus the total.
	List(ctx context.Context, p model.Principal, f model.TaskFilter) ([]model.Task, int, error)
	// Update sanitizes and merges a partial update onto a task.
	Update(ctx context.Context, p model.Principal, id uuid.UUID, upd model.TaskUpdate) (*model.Task, error)
	// Delete removes a task permanently.
	Delete(ctx context.Context, p model.Principal, id uuid.UUID) error
	// Stats aggregates per-status counts over the principal's visible set.
	Stats(ctx context.Context, p model.Principal) (model.Stats, error)
}

type TaskServiceImpl struct {
	repo repository.TaskRepository
}

// NewTaskService constructs TaskService over a record store.
func NewTaskService(repo repository.TaskRepository) *TaskServiceImpl {
	return &TaskServiceImpl{repo: repo}
}

// Create builds the record with ownership snapshotted from the principal
// and enum defaults applied, then persists it.
func (s *TaskServiceImpl) Create(ctx context.Context, p model.Principal, in CreateTaskInput) (*model.Task, error) {
	var details []errs.FieldError
	if strings.TrimSpace(in.Title) == "" {
		details = append(details, errs.Field("title", "Title is required"))
	}
	if in.Status == "" {
		in.Status = model.StatusPending
	}
	if !in.Status.Valid() {
		details = append(details, errs.Field("status", "Invalid status"))
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !in.Priority.Valid() {
		details = append(details, errs.Field("priority", "Invalid priority"))
	}
	if len(details) > 0 {
		return nil, errs.Validation(details...)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	t := model.Task{
		ID:          id,
		OwnerID:     p.ID,
		OwnerName:   p.Name,
		OwnerEmail:  p.Email,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Get fetches by id, then checks visibility. Existence is checked first,
// so a forbidden caller learns the id exists; this ordering is kept from
// the source behavior.
func (s *TaskServiceImpl) Get(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanView(p, *t) {
		return nil, errs.ErrForbidden
	}
	return t, nil
}

// List scopes the filter to the principal, normalizes paging, and returns
// the page plus the unpaginated total.
func (s *TaskServiceImpl) List(ctx context.Context, p model.Principal, f model.TaskFilter) ([]model.Task, int, error) {
	f = authz.ScopeListQuery(p, f)
	if f.Page < 1 {
		f.Page = defaultPage
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	return s.repo.List(ctx, f)
}

// Update applies a sanitized partial update and refreshes updated_at.
func (s *TaskServiceImpl) Update(ctx context.Context, p model.Principal, id uuid.UUID, upd model.TaskUpdate) (*model.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutate(p, *t) {
		return nil, errs.ErrForbidden
	}

	upd = authz.SanitizeUpdate(p, upd)

	var details []errs.FieldError
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		details = append(details, errs.Field("title", "Title cannot be empty"))
	}
	if upd.Status != nil && !upd.Status.Valid() {
		details = append(details, errs.Field("status", "Invalid status"))
	}
	if upd.Priority != nil && !upd.Priority.Valid() {
		details = append(details, errs.Field("priority", "Invalid priority"))
	}
	if len(details) > 0 {
		return nil, errs.Validation(details...)
	}

	upd.ApplyTo(t)
	t.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a task the principal may mutate. No soft delete.
func (s *TaskServiceImpl) Delete(ctx context.Context, p model.Principal, id uuid.UUID) error {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanMutate(p, *t) {
		return errs.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

// Stats aggregates over the principal's visible set: everything for an
// admin, own tasks otherwise.
func (s *TaskServiceImpl) Stats(ctx context.Context, p model.Principal) (model.Stats, error) {
	owner := p.ID
	if p.IsAdmin() {
		owner = uuid.Nil
	}
	return s.repo.Stats(ctx, owner)
}
