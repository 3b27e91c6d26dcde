package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// TaskUpdate is a partial task mutation as received from a client. Nil
// fields are absent from the request and left untouched on merge. Immutable
// and owner fields are present here so the authorization layer can strip
// them instead of trusting handlers to ignore them.
type TaskUpdate struct {
	ID          *uuid.UUID `json:"id"`
	OwnerID     *uuid.UUID `json:"user_id"`
	OwnerName   *string    `json:"user_name"`
	OwnerEmail  *string    `json:"user_email"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *Status    `json:"status"`
	Priority    *Priority  `json:"priority"`
	CreatedAt   *time.Time `json:"created_at"`
}

// ApplyTo merges the update onto a task in place. Sanitization happens
// before merge, so whatever is non-nil here is allowed to land.
func (u TaskUpdate) ApplyTo(t *Task) {
	if u.OwnerID != nil {
		t.OwnerID = *u.OwnerID
	}
	if u.OwnerName != nil {
		t.OwnerName = *u.OwnerName
	}
	if u.OwnerEmail != nil {
		t.OwnerEmail = *u.OwnerEmail
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
}
