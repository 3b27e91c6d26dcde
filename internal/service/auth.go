// Package service contains application services for authentication and tasks.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/avdeenkov/taskdeck/internal/crypto"
	"github.com/avdeenkov/taskdeck/internal/errs"
	"github.com/avdeenkov/taskdeck/internal/limiter"
	"github.com/avdeenkov/taskdeck/internal/model"
	"github.com/avdeenkov/taskdeck/internal/repository"
	"github.com/avdeenkov/taskdeck/internal/token"
)

// AuthService is the identity capability: registration, password
// authentication, profile access, and user listing.
type AuthService interface {
	// Register creates a new user and issues an access token.
	Register(ctx context.Context, name, email, password string, role model.Role) (model.User, model.Tokens, error)
	// Login applies rate limiting and authenticates the user.
	Login(ctx context.Context, email, password, ip string) (model.User, model.Tokens, error)
	// Refresh re-issues a token for an already-authenticated principal.
	Refresh(p model.Principal) (model.Tokens, error)
	// UpdateProfile changes the principal's display name.
	UpdateProfile(ctx context.Context, id uuid.UUID, name string) (*model.User, error)
	// ListUsers returns all users. Handlers gate it to admins.
	ListUsers(ctx context.Context) ([]model.User, error)
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	tokens *token.Manager
	lim    limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, tokens *token.Manager, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, tokens: tokens, lim: lim}
}

// Register validates input, hashes the password, stores the user, and
// issues a token. Role defaults to user when absent.
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string, role model.Role) (model.User, model.Tokens, error) {
	var details []errs.FieldError
	if strings.TrimSpace(name) == "" {
		details = append(details, errs.Field("name", "Name is required"))
	}
	if !validEmail(email) {
		details = append(details, errs.Field("email", "Valid email is required"))
	}
	if len(password) < 6 {
		details = append(details, errs.Field("password", "Password must be at least 6 characters"))
	}
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		details = append(details, errs.Field("role", "Invalid role"))
	}
	if len(details) > 0 {
		return model.User{}, model.Tokens{}, errs.Validation(details...)
	}

	uid, err := uuid.NewV4()
	if err != nil {
		return model.User{}, model.Tokens{}, err
	}
	hash, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return model.User{}, model.Tokens{}, err
	}

	u := model.User{ID: uid, Name: name, Email: email, Role: role, PwdHash: hash, CreatedAt: time.Now()}
	if err := s.users.Create(ctx, &u); err != nil {
		return model.User{}, model.Tokens{}, err
	}

	toks, err := s.tokens.Issue(u.Principal())
	if err != nil {
		return model.User{}, model.Tokens{}, err
	}
	return u, toks, nil
}

// Login authenticates with rate limiting by (email, ip). Lookup failures
// and wrong passwords are both reported as unauthorized so account
// existence does not leak through the login path.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password, ip string) (model.User, model.Tokens, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.User{}, model.Tokens{}, err
	}
	if !allowed {
		return model.User{}, model.Tokens{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !pkgcrypto.VerifyPassword(password, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.User{}, model.Tokens{}, errs.ErrRateLimited
		}
		return model.User{}, model.Tokens{}, errs.ErrUnauthorized
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, email, ipHash)

	toks, err := s.tokens.Issue(u.Principal())
	if err != nil {
		return model.User{}, model.Tokens{}, err
	}
	return *u, toks, nil
}

// Refresh re-signs a token for the verified principal. The role claim is
// carried over as-is; a role change lands at the next full login.
func (s *AuthServiceImpl) Refresh(p model.Principal) (model.Tokens, error) {
	return s.tokens.Issue(p)
}

// UpdateProfile persists a new display name.
func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, id uuid.UUID, name string) (*model.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errs.Validation(errs.Field("name", "Name cannot be empty"))
	}
	return s.users.UpdateName(ctx, id, name)
}

// ListUsers returns all users, newest first.
func (s *AuthServiceImpl) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// validEmail applies the minimal shape check; real deliverability is the
// mail system's problem.
func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t") && strings.Contains(email[at+1:], ".")
}
