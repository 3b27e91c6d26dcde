package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/avdeenkov/taskdeck/internal/errs"
	"github.com/avdeenkov/taskdeck/internal/model"
)

// TaskRepo implements TaskRepository using PostgreSQL. Filtering, ordering,
// and pagination are pushed into SQL rather than scanned in memory.
type TaskRepo struct{ db *DB }

// NewTaskRepo constructs a task repository.
func NewTaskRepo(db *DB) *TaskRepo { return &TaskRepo{db: db} }

const taskColumns = `id, user_id, user_name, user_email, title, description, status, priority, created_at, updated_at`

// Insert persists a new task row.
func (r *TaskRepo) Insert(ctx context.Context, t *model.Task) error {
	const q = `
INSERT INTO tasks (id, user_id, user_name, user_email, title, description, status, priority, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Pool.Exec(ctx, q,
		t.ID, t.OwnerID, t.OwnerName, t.OwnerEmail,
		t.Title, t.Description, t.Status, t.Priority,
		t.CreatedAt, t.UpdatedAt)
	return err
}

// GetByID selects a task by ID.
func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var t model.Task
	if err := scanTask(row, &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List returns one page of matching tasks plus the unpaginated total.
// Order is always created_at descending; the filter's Sort field only ever
// reselects that order.
func (r *TaskRepo) List(ctx context.Context, f model.TaskFilter) ([]model.Task, int, error) {
	where, args := buildWhere(f)

	var total int
	countQ := `SELECT COUNT(*) FROM tasks` + where
	if err := r.db.Pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageQ := fmt.Sprintf(`SELECT `+taskColumns+` FROM tasks%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset())

	rows, err := r.db.Pool.Query(ctx, pageQ, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0, f.Limit)
	for rows.Next() {
		var t model.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	return tasks, total, rows.Err()
}

// Update overwrites the mutable columns of an existing row.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task) error {
	const q = `
UPDATE tasks
SET user_id=$2, user_name=$3, user_email=$4, title=$5, description=$6, status=$7, priority=$8, updated_at=$9
WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q,
		t.ID, t.OwnerID, t.OwnerName, t.OwnerEmail,
		t.Title, t.Description, t.Status, t.Priority, t.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a task row permanently.
func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM tasks WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Stats counts tasks per status, for one owner or for all owners when
// ownerID is the zero UUID.
func (r *TaskRepo) Stats(ctx context.Context, ownerID uuid.UUID) (model.Stats, error) {
	q := `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE status='pending'),
       COUNT(*) FILTER (WHERE status='in_progress'),
       COUNT(*) FILTER (WHERE status='completed')
FROM tasks`
	var args []any
	if ownerID != uuid.Nil {
		q += ` WHERE user_id=$1`
		args = append(args, ownerID)
	}
	var s model.Stats
	err := r.db.Pool.QueryRow(ctx, q, args...).Scan(&s.Total, &s.Pending, &s.InProgress, &s.Completed)
	return s, err
}

// buildWhere assembles the WHERE clause for the non-empty filter fields.
func buildWhere(f model.TaskFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.OwnerID != uuid.Nil {
		add("user_id=$%d", f.OwnerID)
	}
	if f.Status != "" {
		add("status=$%d", f.Status)
	}
	if f.Priority != "" {
		add("priority=$%d", f.Priority)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// scanTask reads one task row; works for both Row and Rows.
func scanTask(row pgx.Row, t *model.Task) error {
	return row.Scan(&t.ID, &t.OwnerID, &t.OwnerName, &t.OwnerEmail,
		&t.Title, &t.Description, &t.Status, &t.Priority,
		&t.CreatedAt, &t.UpdatedAt)
}
