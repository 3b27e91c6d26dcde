// Package authz is the authorization model: pure decisions over
// (principal, task) with no I/O. Ownership is the only discretionary axis;
// every endpoint goes through these predicates rather than re-deriving the
// owner-or-admin rule ad hoc.
package authz

import "github.com/avdeenkov/taskdeck/internal/model"

// CanView reports whether the principal may read the task.
func CanView(p model.Principal, t model.Task) bool {
	return p.IsAdmin() || t.OwnerID == p.ID
}

// CanMutate reports whether the principal may update or delete the task.
// Same rule as CanView: owner or admin.
func CanMutate(p model.Principal, t model.Task) bool {
	return CanView(p, t)
}

// SanitizeUpdate strips fields the principal may not set. The id and
// created_at are immutable for everyone; ownership fields are admin-only.
// Applying it twice yields the same result as applying it once.
func SanitizeUpdate(p model.Principal, upd model.TaskUpdate) model.TaskUpdate {
	upd.ID = nil
	upd.CreatedAt = nil
	if !p.IsAdmin() {
		upd.OwnerID = nil
		upd.OwnerName = nil
		upd.OwnerEmail = nil
	}
	return upd
}

// ScopeListQuery restricts a listing filter to the principal's visible set.
// Non-admins only ever see their own tasks, regardless of what the filter
// asked for.
func ScopeListQuery(p model.Principal, f model.TaskFilter) model.TaskFilter {
	if !p.IsAdmin() {
		f.OwnerID = p.ID
	}
	return f
}
