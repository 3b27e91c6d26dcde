package httpserver

import (
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/avdeenkov/taskdeck/internal/model"
	"github.com/avdeenkov/taskdeck/internal/token"
)

// principalKey is the Locals key under which RequireAuth stores the principal.
const principalKey = "principal"

// RequireAuth validates the Bearer token and attaches the embedded
// principal to the request.
func RequireAuth(tokens *token.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return failWith(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized: No token provided", nil)
		}
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			return failWith(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized: No token provided", nil)
		}
		p, err := tokens.Verify(raw)
		if err != nil {
			return failWith(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized: Invalid token", nil)
		}
		c.Locals(principalKey, p)
		return c.Next()
	}
}

// RequireAdmin gates a route to admin principals. Must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFromCtx(c)
		if !ok || !p.IsAdmin() {
			return failWith(c, fiber.StatusForbidden, "FORBIDDEN", "Forbidden: Admin access only", nil)
		}
		return c.Next()
	}
}

// PrincipalFromCtx fetches the authenticated principal from the request.
func PrincipalFromCtx(c *fiber.Ctx) (model.Principal, bool) {
	p, ok := c.Locals(principalKey).(model.Principal)
	return p, ok
}

// Logging returns a middleware for structured request logging. Only
// metadata is logged, never payloads.
func Logging(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info("http",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("dur", time.Since(start)),
			zap.String("ip", c.IP()),
		)
		return err
	}
}

// Recover returns a middleware that recovers from handler panics and
// renders a generic 500.
func Recover(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", c.Path()),
				)
				err = failWith(c, fiber.StatusInternalServerError, "SERVER_ERROR", "Internal Server Error", nil)
			}
		}()
		return c.Next()
	}
}
