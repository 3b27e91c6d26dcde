package httpserver

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/avdeenkov/taskdeck/internal/service"
	"github.com/avdeenkov/taskdeck/internal/token"
)

// Config holds transport-level settings.
type Config struct {
	// CORSOrigins is the comma-separated allow list for browser clients.
	CORSOrigins string
	// RateLimitMax caps requests per client IP within RateLimitWindow.
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// New assembles the Fiber application: global middleware, the versioned
// API routes, and the health endpoint. All dependencies are injected; the
// returned app owns no process-wide state.
func New(cfg Config, log *zap.Logger, auth service.AuthService, tasks service.TaskService, tokens *token.Manager) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "taskdeck",
		DisableStartupMessage: true,
	})

	app.Use(Recover(log))
	app.Use(requestid.New())
	app.Use(Logging(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "OK", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	requireAuth := RequireAuth(tokens)

	api := app.Group("/api/v1")

	ah := &authHandlers{auth: auth}
	ag := api.Group("/auth")
	ag.Post("/register", ah.Register)
	ag.Post("/login", ah.Login)
	ag.Post("/logout", ah.Logout)
	ag.Post("/refresh", requireAuth, ah.Refresh)
	ag.Get("/profile", requireAuth, ah.Profile)
	ag.Put("/profile", requireAuth, ah.UpdateProfile)
	ag.Get("/users", requireAuth, RequireAdmin(), ah.ListUsers)

	th := &taskHandlers{tasks: tasks}
	tg := api.Group("/tasks", requireAuth)
	tg.Post("/", th.Create)
	tg.Get("/", th.List)
	// stats before :id so "stats" is not matched as a task id
	tg.Get("/stats", th.Stats)
	tg.Get("/:id", th.Get)
	tg.Put("/:id", th.Update)
	tg.Patch("/:id", th.Update)
	tg.Delete("/:id", th.Delete)

	return app
}
