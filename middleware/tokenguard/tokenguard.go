package tokenguard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup       = "header:" + router.HeaderAuthorization
	ErrTokenMissing          = errors.New("missing or malformed token")
	ErrVerifierNotConfigured = errors.New("tokenguard: Verifier is required")
)

// Claims is the subset of token claims the guard needs. It mirrors the
// claims type of the issuing package without importing it.
type Claims interface {
	Subject() string
	UserID() int64
}

// Verifier checks a raw token string and returns its claims.
type Verifier interface {
	Validate(tokenString string) (Claims, error)
}

// VerifierFunc adapts a function into a Verifier.
type VerifierFunc func(tokenString string) (Claims, error)

// Validate satisfies the Verifier interface.
func (f VerifierFunc) Validate(tokenString string) (Claims, error) {
	if f == nil {
		return nil, ErrVerifierNotConfigured
	}
	return f(tokenString)
}

// Resolver maps verified claims to a live subject. Claims whose subject no
// longer exists must be rejected here.
type Resolver interface {
	Resolve(ctx context.Context, claims Claims) (any, error)
}

// ResolverFunc adapts a function into a Resolver.
type ResolverFunc func(ctx context.Context, claims Claims) (any, error)

// Resolve satisfies the Resolver interface.
func (f ResolverFunc) Resolve(ctx context.Context, claims Claims) (any, error) {
	if f == nil {
		return nil, nil
	}
	return f(ctx, claims)
}

type Config struct {
	// Filter skips the guard for requests it returns true for.
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	// ErrorHandler renders every guard failure. The default collapses all
	// of them, missing token included, into one 401 body.
	ErrorHandler router.ErrorHandler
	// Verifier is required.
	Verifier Verifier
	// Resolver is optional. When set, its result is stored under UserContextKey.
	Resolver Resolver
	// ContextKey is the Locals key for claims. Defaults to "user".
	ContextKey string
	// UserContextKey is the Locals key for the resolved subject. Defaults to "auth_user".
	UserContextKey string
	// TokenLookup is a comma separated list of sources, e.g.
	// "header:Authorization,cookie:jwt,query:auth_token,param:token".
	TokenLookup string
	// AuthScheme is the expected prefix on header tokens. Defaults to "JWT".
	AuthScheme string
	// ContextEnricher propagates claims into the standard Go context.
	ContextEnricher func(c context.Context, claims Claims) context.Context
}

// New builds the guard middleware. Requests flow token extraction, claim
// verification, subject resolution, then the success handler; any failure
// goes to the error handler with the classified error intact.
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := ExtractRawTokenFromContext(ctx, cfg.getExtractors())
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			claims, err := cfg.Verifier.Validate(raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, claims)

			if cfg.Resolver != nil {
				subject, err := cfg.Resolver.Resolve(ctx.Context(), claims)
				if err != nil {
					return cfg.ErrorHandler(ctx, err)
				}
				if subject != nil {
					ctx.Locals(cfg.UserContextKey, subject)
				}
			}

			if cfg.ContextEnricher != nil {
				stdCtx := ctx.Context()
				ctx.SetContext(cfg.ContextEnricher(stdCtx, claims))
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			return c.JSON(router.StatusUnauthorized, map[string]string{
				"message": "Could not authorize request.",
			})
		}
	}

	if cfg.Verifier == nil {
		panic("tokenguard: middleware configuration: Verifier is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.UserContextKey == "" {
		cfg.UserContextKey = "auth_user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "JWT"
	}

	return cfg
}

func ExtractRawTokenFromContext(ctx router.Context, extractors []TokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	if raw == "" && err == nil {
		err = ErrTokenMissing
	}

	return raw, err
}

func (cfg *Config) getExtractors() []TokenExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func GetExtractors(tokenLookup string, authSchemes ...string) []TokenExtractor {
	extractors := make([]TokenExtractor, 0)

	authScheme := "JWT"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	// header:Authorization,cookie:jwt,query:auth_token,param:token
	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "query":
			extractors = append(extractors, tokenFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, tokenFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

type TokenExtractor func(c router.Context) (string, error)

// tokenFromHeader returns a function that extracts the token from the request header.
func tokenFromHeader(header string, authScheme string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		a := c.GetString(header, "")
		l := len(authScheme)
		if l == 0 {
			fmt.Println("[WARNING] Missing auth scheme in config definition")
			return "", ErrTokenMissing
		}
		authScheme = strings.TrimSpace(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrTokenMissing
	}
}

// tokenFromQuery returns a function that extracts the token from the query string.
func tokenFromQuery(param string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrTokenMissing
		}
		return token, nil
	}
}

// tokenFromParam returns a function that extracts the token from the url param string.
func tokenFromParam(param string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Param(param)
		if token == "" {
			return "", ErrTokenMissing
		}
		return token, nil
	}
}

// tokenFromCookie returns a function that extracts the token from the named cookie.
func tokenFromCookie(name string) func(c router.Context) (string, error) {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrTokenMissing
		}
		return token, nil
	}
}
