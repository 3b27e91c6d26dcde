package httpserver

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/avdeenkov/taskdeck/internal/model"
	"github.com/avdeenkov/taskdeck/internal/service"
)

// authHandlers serves /api/v1/auth.
type authHandlers struct {
	auth service.AuthService
}

type registerRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

// userResponse is the user shape exposed to clients; it never carries the
// password hash.
type userResponse struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func userFromModel(u model.User) userResponse {
	return userResponse{ID: u.ID.String(), Name: u.Name, Email: u.Email, Role: u.Role}
}

func userFromPrincipal(p model.Principal) userResponse {
	return userResponse{ID: p.ID.String(), Name: p.Name, Email: p.Email, Role: p.Role}
}

// Register handles POST /auth/register.
func (h *authHandlers) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return failWith(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", nil)
	}
	u, toks, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return fail(c, err)
	}
	return created(c, "Registration successful", fiber.Map{
		"user":      userFromModel(u),
		"token":     toks.AccessToken,
		"expiresIn": int64(time.Until(toks.ExpiresAt).Seconds()),
	})
}

// Login handles POST /auth/login.
func (h *authHandlers) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return failWith(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", nil)
	}
	u, toks, err := h.auth.Login(c.UserContext(), req.Email, req.Password, c.IP())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Login successful", fiber.Map{
		"user":      userFromModel(u),
		"token":     toks.AccessToken,
		"expiresIn": int64(time.Until(toks.ExpiresAt).Seconds()),
	})
}

// Logout handles POST /auth/logout. Tokens are stateless; the client
// simply forgets its copy.
func (h *authHandlers) Logout(c *fiber.Ctx) error {
	return ok(c, "Logout successful", nil)
}

// Refresh handles POST /auth/refresh for an authenticated principal.
func (h *authHandlers) Refresh(c *fiber.Ctx) error {
	p, _ := PrincipalFromCtx(c)
	toks, err := h.auth.Refresh(p)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Token refreshed", fiber.Map{"token": toks.AccessToken})
}

// Profile handles GET /auth/profile. The user view comes from token
// claims, same as the rest of the request pipeline.
func (h *authHandlers) Profile(c *fiber.Ctx) error {
	p, _ := PrincipalFromCtx(c)
	return ok(c, "Profile retrieved", fiber.Map{"user": userFromPrincipal(p)})
}

// UpdateProfile handles PUT /auth/profile.
func (h *authHandlers) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return failWith(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", nil)
	}
	p, _ := PrincipalFromCtx(c)
	u, err := h.auth.UpdateProfile(c.UserContext(), p.ID, req.Name)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, "Profile updated", fiber.Map{"user": userFromModel(*u)})
}

// ListUsers handles GET /auth/users (admin only; gated by RequireAdmin).
func (h *authHandlers) ListUsers(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userFromModel(u))
	}
	return ok(c, "Users retrieved", fiber.Map{"users": out})
}
