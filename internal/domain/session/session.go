package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"llavedesol/internal/domain/account"
)

// MaxAge is how long a portal session stays valid after login.
const MaxAge = 24 * time.Hour

// Domain errors
var (
	ErrEmptyToken   = errors.New("access token is empty")
	ErrMalformedJWT = errors.New("access token is not a valid JWT")
	ErrNotFound     = errors.New("session not found")
)

// Tokens is the pair issued by the backend's token endpoint.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Claims are the fields the portal reads from the access token.
type Claims struct {
	UserID      int64
	Username    string
	IsAdmin     bool
	IsTreasurer bool
	IsMember    bool
	ExpiresAt   time.Time
}

type tokenClaims struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	IsAdmin    bool   `json:"is_admin"`
	IsTesorero bool   `json:"is_tesorero"`
	IsSocio    bool   `json:"is_socio"`
	jwt.RegisteredClaims
}

// DecodeClaims reads the access token payload without verifying its signature.
// The backend verifies every request it receives; the portal only needs the role flags.
// PRE: access is a compact JWT
// POST: returns ErrMalformedJWT if the token cannot be parsed
func DecodeClaims(access string) (Claims, error) {
	if access == "" {
		return Claims{}, ErrEmptyToken
	}
	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(access, &tc); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedJWT, err)
	}
	c := Claims{
		UserID:      tc.UserID,
		Username:    tc.Username,
		IsAdmin:     tc.IsAdmin,
		IsTreasurer: tc.IsTesorero,
		IsMember:    tc.IsSocio,
	}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c, nil
}

// Context is the authentication state of one browser session.
// It is built on login, rebuilt from storage on every request and dropped on logout.
// INVARIANT: Role agrees with the flags in Claims
type Context struct {
	ID        string
	Tokens    Tokens
	Claims    Claims
	Role      account.Role
	CreatedAt time.Time
}

// New decodes tokens into a session.
// PRE: id is a fresh unguessable token
// POST: returns account.ErrNoRole when the token carries no role flag
func New(id string, tokens Tokens, createdAt time.Time) (Context, error) {
	claims, err := DecodeClaims(tokens.Access)
	if err != nil {
		return Context{}, err
	}
	role, err := account.RoleFromFlags(claims.IsAdmin, claims.IsTreasurer, claims.IsMember)
	if err != nil {
		return Context{}, err
	}
	return Context{
		ID:        id,
		Tokens:    tokens,
		Claims:    claims,
		Role:      role,
		CreatedAt: createdAt,
	}, nil
}

// Username returns the display name from the claims.
func (c Context) Username() string {
	return c.Claims.Username
}

// ExpiresAt is when the portal session ends.
func (c Context) ExpiresAt() time.Time {
	return c.CreatedAt.Add(MaxAge)
}

// Expired reports whether the session is past MaxAge.
func (c Context) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt())
}

// Bearer returns the Authorization header value for backend calls.
func (c Context) Bearer() string {
	return "Bearer " + c.Tokens.Access
}
