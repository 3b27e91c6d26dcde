// Package httpserver exposes the REST API over Fiber: routing, auth
// middleware, and the response envelope shared with the frontend.
package httpserver

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/avdeenkov/taskdeck/internal/errs"
)

// successBody is the success envelope: {success, message, data, timestamp}.
type successBody struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

// errorBody is the error envelope.
type errorBody struct {
	Success   bool        `json:"success"`
	Error     errorDetail `json:"error"`
	Timestamp string      `json:"timestamp"`
}

type errorDetail struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Details    any    `json:"details,omitempty"`
}

func respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(successBody{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func ok(c *fiber.Ctx, message string, data any) error {
	return respond(c, fiber.StatusOK, message, data)
}

func created(c *fiber.Ctx, message string, data any) error {
	return respond(c, fiber.StatusCreated, message, data)
}

func failWith(c *fiber.Ctx, status int, code, message string, details any) error {
	return c.Status(status).JSON(errorBody{
		Success: false,
		Error: errorDetail{
			Code:       code,
			Message:    message,
			StatusCode: status,
			Details:    details,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// fail maps service and repository errors onto the error envelope. Unknown
// errors render as a generic 500 so internals never leak.
func fail(c *fiber.Ctx, err error) error {
	var ve *errs.ValidationError
	switch {
	case errors.As(err, &ve):
		return failWith(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Validation Error", ve.Details)
	case errors.Is(err, errs.ErrUnauthorized):
		return failWith(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials", nil)
	case errors.Is(err, errs.ErrForbidden):
		return failWith(c, fiber.StatusForbidden, "FORBIDDEN", "Forbidden: You do not have access to this resource", nil)
	case errors.Is(err, errs.ErrNotFound):
		return failWith(c, fiber.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	case errors.Is(err, errs.ErrAlreadyExists):
		return failWith(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Email is already registered", nil)
	case errors.Is(err, errs.ErrRateLimited):
		return failWith(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "Too many attempts, try again later", nil)
	default:
		return failWith(c, fiber.StatusInternalServerError, "SERVER_ERROR", "Internal Server Error", nil)
	}
}
