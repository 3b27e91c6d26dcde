// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Role is the authorization role carried by a principal.
type Role string

// Known roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// Status is the task lifecycle state. No transition ordering is enforced.
type Status string

// Known statuses.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether the status is one of the enumerated values.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// Priority is the task priority level.
type Priority string

// Known priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether the priority is one of the enumerated values.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Principal is the authenticated actor attached to a request by the auth
// middleware. It is a view of token claims and is never persisted.
type Principal struct {
	ID    uuid.UUID `json:"id"`
	Role  Role      `json:"role"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Task is the managed entity. Field names are part of the wire contract
// consumed by the frontend and must not change.
type Task struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"user_id"`
	OwnerName   string    `json:"user_name"`
	OwnerEmail  string    `json:"user_email"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskFilter selects and pages a task listing. A zero OwnerID means
// "all owners" and is only ever set for admin principals.
type TaskFilter struct {
	OwnerID  uuid.UUID
	Status   Status
	Priority Priority
	Sort     string
	Page     int
	Limit    int
}

// Offset returns the zero-based offset of the requested page.
func (f TaskFilter) Offset() int { return (f.Page - 1) * f.Limit }

// Stats aggregates per-status counts over the principal's visible set.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

// User is an account stored in the identity store. The password hash never
// leaves the repository/service layers; handlers expose users through
// response DTOs, not this struct.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	PwdHash   []byte    `json:"pwd_hash"`
	CreatedAt time.Time `json:"created_at"`
}

// Principal returns the principal view of the user.
func (u User) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Role, Name: u.Name, Email: u.Email}
}

// Tokens collects an issued access token and its expiry.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time
}
