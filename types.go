package login

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Authenticator holds methods to deal with the login lifecycle
type Authenticator interface {
	Login(ctx context.Context, input LoginInput) (*SessionDescriptor, error)
	Authenticate(ctx context.Context, token string) (*Principal, error)
	Logout(ctx context.Context, userID uuid.UUID) (bool, error)
	AuditTrail(ctx context.Context, userID uuid.UUID) ([]*AuditEntry, error)
}

// LoginInput is one login attempt as received at the boundary
type LoginInput struct {
	Username  string
	Password  string
	UserAgent string
}

// TokenService mints and verifies bearer tokens
type TokenService interface {
	Issue(userID uuid.UUID) (string, error)
	Verify(token string) (uuid.UUID, error)
}

// Config holds login options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenLookup() string
	GetAuthScheme() string
}

// SimpleConfig is a plain value implementation of Config. Zero-value fields
// fall back to the same defaults the middleware uses; an empty SigningKey
// makes the authenticator mint a process-lifetime key.
type SimpleConfig struct {
	SigningKey    string
	SigningMethod string
	ContextKey    string
	TokenLookup   string
	AuthScheme    string
}

func (c SimpleConfig) GetSigningKey() string    { return c.SigningKey }
func (c SimpleConfig) GetSigningMethod() string { return c.SigningMethod }
func (c SimpleConfig) GetContextKey() string    { return c.ContextKey }
func (c SimpleConfig) GetTokenLookup() string   { return c.TokenLookup }
func (c SimpleConfig) GetAuthScheme() string    { return c.AuthScheme }

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] LOGIN "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] LOGIN "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] LOGIN "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
