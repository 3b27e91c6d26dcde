// Package token issues and verifies the signed HS256 JWTs that carry the
// principal between requests. The role claim embedded at issue time is
// trusted as-is on later requests; a role change takes effect only once a
// fresh token is issued.
package token

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/avdeenkov/taskdeck/internal/errs"
	"github.com/avdeenkov/taskdeck/internal/model"
)

// Claims are the custom JWT claims: the principal plus registered fields.
type Claims struct {
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and verifies access tokens with a shared HS256 key.
type Manager struct {
	signKey []byte
	ttl     time.Duration
}

// NewManager constructs a Manager with the signing key and token lifetime.
func NewManager(signKey []byte, ttl time.Duration) *Manager {
	return &Manager{signKey: signKey, ttl: ttl}
}

// TTL returns the configured token lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue creates a signed access token for the principal.
func (m *Manager) Issue(p model.Principal) (model.Tokens, error) {
	now := time.Now()
	exp := now.Add(m.ttl)
	claims := Claims{
		Name:  p.Name,
		Email: p.Email,
		Role:  p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.signKey)
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: signed, ExpiresAt: exp}, nil
}

// Verify parses and validates a token and returns the embedded principal.
// Any parse, signature, or expiry failure maps to ErrUnauthorized.
func (m *Manager) Verify(tokenString string) (model.Principal, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.ErrUnauthorized
		}
		return m.signKey, nil
	})
	if err != nil {
		return model.Principal{}, errs.ErrUnauthorized
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return model.Principal{}, errs.ErrUnauthorized
	}
	id, err := uuid.FromString(claims.Subject)
	if err != nil {
		return model.Principal{}, errs.ErrUnauthorized
	}
	return model.Principal{ID: id, Role: claims.Role, Name: claims.Name, Email: claims.Email}, nil
}
