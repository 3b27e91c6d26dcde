package httpserver

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/avdeenkov/taskdeck/internal/errs"
	"github.com/avdeenkov/taskdeck/internal/model"
	"github.com/avdeenkov/taskdeck/internal/service"
)

// taskHandlers serves /api/v1/tasks. Every route runs behind RequireAuth.
type taskHandlers struct {
	tasks service.TaskService
}

type createTaskRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      model.Status   `json:"status"`
	Priority    model.Priority `json:"priority"`
}

// paginationBody is the listing pagination envelope.
type paginationBody struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Create handles POST /tasks.
func (h *taskHandlers) Create(c *fiber.Ctx) error {
	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return failWith(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", nil)
	}
	p, _ := PrincipalFromCtx(c)
	t, err := h.tasks.Create(c.UserContext(), p, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	})
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Task created successfully", fiber.Map{"task": t})
}

// List handles GET /tasks with page/limit/status/priority/sort query
// parameters.
func (h *taskHandlers) List(c *fiber.Ctx) error {
	p, _ := PrincipalFromCtx(c)
	f := model.TaskFilter{
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 10),
		Status:   model.Status(c.Query("status")),
		Priority: model.Priority(c.Query("priority")),
		Sort:     c.Query("sort"),
	}
	tasks, total, err := h.tasks.List(c.UserContext(), p, f)
	if err != nil {
		return fail(c, err)
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	return ok(c, "Tasks retrieved successfully", fiber.Map{
		"tasks": tasks,
		"pagination": paginationBody{
			Page:       f.Page,
			Limit:      f.Limit,
			Total:      total,
			TotalPages: (total + f.Limit - 1) / f.Limit,
		},
	})
}

// Stats handles GET /tasks/stats.
func (h *taskHandlers) Stats(c *fiber.Ctx) error {
	p, _ := PrincipalFromCtx(c)
	stats, err := h.tasks.Stats(c.UserContext(), p)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Stats retrieved", fiber.Map{"stats": stats})
}

// Get handles GET /tasks/:id.
func (h *taskHandlers) Get(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return fail(c, err)
	}
	p, _ := PrincipalFromCtx(c)
	t, err := h.tasks.Get(c.UserContext(), p, id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Task retrieved successfully", fiber.Map{"task": t})
}

// Update handles PUT and PATCH /tasks/:id; both accept any field subset.
func (h *taskHandlers) Update(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return fail(c, err)
	}
	var upd model.TaskUpdate
	if err := c.BodyParser(&upd); err != nil {
		return failWith(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", nil)
	}
	p, _ := PrincipalFromCtx(c)
	t, err := h.tasks.Update(c.UserContext(), p, id, upd)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Task updated successfully", fiber.Map{"task": t})
}

// Delete handles DELETE /tasks/:id.
func (h *taskHandlers) Delete(c *fiber.Ctx) error {
	id, err := taskID(c)
	if err != nil {
		return fail(c, err)
	}
	p, _ := PrincipalFromCtx(c)
	if err := h.tasks.Delete(c.UserContext(), p, id); err != nil {
		return fail(c, err)
	}
	return ok(c, "Task deleted successfully", nil)
}

// taskID parses the :id path parameter. A malformed id cannot name any
// stored task, so it reads as not found.
func taskID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.FromString(c.Params("id"))
	if err != nil {
		return uuid.Nil, errs.ErrNotFound
	}
	return id, nil
}
