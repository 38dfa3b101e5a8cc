package storefront

import (
	"context"
	"fmt"
	"strings"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Identity is the minimal view of a user the token layer needs.
type Identity interface {
	ID() int64
	Username() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*User, error)
	Login(ctx context.Context, username, password string) (string, error)
	ResolveSubject(ctx context.Context, claims *TokenClaims) (*User, error)
	TokenService() TokenService
}

// UserStore is the capability interface the core needs from persistence.
// Any backend with unique-keyed lookups (bun/SQLite in production, a map in
// tests) satisfies it.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
}

type LoginPayload interface {
	GetIdentifier() string
	GetPassword() string
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// defLogger is the zero-dependency fallback logger. Call sites pass a
// message followed by key-value pairs, the same shape slog-backed loggers
// accept.
type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Println(logLine("[ERR] STOREFRONT "+msg, args...))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Println(logLine("[WRN] STOREFRONT "+msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Println(logLine("[INF] STOREFRONT "+msg, args...))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Println(logLine("[DBG] STOREFRONT "+msg, args...))
}

func logLine(msg string, args ...any) string {
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", args[i], args[i+1])
	}
	if len(args)%2 == 1 {
		fmt.Fprintf(&sb, " %v", args[len(args)-1])
	}
	return sb.String()
}
