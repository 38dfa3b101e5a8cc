package storefront

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-storefront/middleware/tokenguard"
)

// RouteAuthenticator adapts an Authenticator to the HTTP layer: it exposes
// the login flow and builds the guard middleware for protected routes.
type RouteAuthenticator struct {
	auth         Authenticator
	cfg          Config
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	a := &RouteAuthenticator{
		cfg:    cfg,
		auth:   auther,
		Logger: defLogger{},
	}

	a.ErrorHandler = a.defaultGuardErrHandler

	return a, nil
}

// ProtectedRoute builds the token guard for routes that need a verified,
// still-existing subject. Verification and subject resolution both run per
// request; a token whose user has since been deleted is rejected.
func (a *RouteAuthenticator) ProtectedRoute() router.MiddlewareFunc {
	return tokenguard.New(tokenguard.Config{
		ErrorHandler: a.ErrorHandler,
		Verifier: tokenguard.VerifierFunc(func(raw string) (tokenguard.Claims, error) {
			claims, err := a.auth.TokenService().Validate(raw)
			if err != nil {
				return nil, err
			}
			return claims, nil
		}),
		Resolver: tokenguard.ResolverFunc(func(ctx context.Context, claims tokenguard.Claims) (any, error) {
			tc, ok := claims.(*TokenClaims)
			if !ok {
				return nil, ErrTokenMalformed
			}
			return a.auth.ResolveSubject(ctx, tc)
		}),
		AuthScheme:  a.cfg.GetAuthScheme(),
		ContextKey:  a.cfg.GetContextKey(),
		TokenLookup: a.cfg.GetTokenLookup(),
		ContextEnricher: func(c context.Context, claims tokenguard.Claims) context.Context {
			if tc, ok := claims.(*TokenClaims); ok {
				return WithClaimsContext(c, tc)
			}
			return c
		},
	})
}

// Login runs the credential flow and returns a signed token.
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) (string, error) {
	token, err := a.auth.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error", "error", err)
		return "", err
	}

	return token, nil
}

// defaultGuardErrHandler logs the classified failure and renders the one
// 401 body every guard failure maps to. Clients cannot distinguish a
// missing token from an expired or forged one.
func (a *RouteAuthenticator) defaultGuardErrHandler(c router.Context, err error) error {
	if errors.Is(err, tokenguard.ErrTokenMissing) {
		err = ErrTokenMissing
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryAuth, "Invalid authentication token").
			WithCode(goerrors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Request authorization rejected",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	return c.JSON(router.StatusUnauthorized, map[string]string{
		"message": "Could not authorize request.",
	})
}
