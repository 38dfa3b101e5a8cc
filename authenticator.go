package storefront

import (
	"context"
	"time"
)

type Auther struct {
	store           UserStore
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        []string
	logger          Logger
	tokenService    TokenService
	activitySink    ActivitySink
}

// NewAuthenticator returns a new Authenticator backed by the given user store.
func NewAuthenticator(store UserStore, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		store:           store,
		signingKey:      []byte(opts.GetSigningKey()),
		tokenExpiration: opts.GetTokenExpiration(),
		audience:        opts.GetAudience(),
		issuer:          opts.GetIssuer(),
		logger:          defLogger{},
		tokenService:    tokenService,
		activitySink:    noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.tokenService = NewTokenService(
		s.signingKey,
		s.tokenExpiration,
		s.issuer,
		s.audience,
		logger,
	)
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Authenticate verifies a username/password pair against the store. A missing
// user and a wrong password both come back as ErrMismatchedHashAndPassword so
// callers cannot tell the two apart.
func (s *Auther) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if IsNotFoundError(err) {
			s.logger.Debug("Authenticate unknown username", "username", username)
			return nil, ErrMismatchedHashAndPassword
		}
		s.logger.Error("Authenticate lookup error", "username", username, "error", err)
		return nil, err
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	return user, nil
}

// Login authenticates the credentials and, on success, mints a signed token
// for the user.
func (s *Auther) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		s.logger.Error("Login authenticate error", "username", username, "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, 0, username, map[string]any{
			"error": err.Error(),
		})
		return "", err
	}

	token, err := s.tokenService.Generate(IdentityFromUser(user))
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, user.ID, username, map[string]any{
			"error": err.Error(),
		})
		return "", err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, user.ID, username, nil)

	return token, nil
}

// ResolveSubject loads the user a set of verified claims refers to. Claims
// that point at a deleted or unknown user are rejected, not served stale.
func (s *Auther) ResolveSubject(ctx context.Context, claims *TokenClaims) (*User, error) {
	if claims == nil {
		return nil, ErrUnknownSubject
	}

	uid := claims.UserID()
	if uid == 0 {
		return nil, ErrUnknownSubject
	}

	user, err := s.store.FindByID(ctx, uid)
	if err != nil {
		s.logger.Warn("ResolveSubject unknown user", "uid", uid, "error", err)
		s.emitAuthEvent(ctx, ActivityEventSubjectRejected, uid, "", map[string]any{
			"error": err.Error(),
		})
		return nil, ErrUnknownSubject
	}

	return user, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, userID int64, username string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		UserID:    userID,
		Username:  username,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error", "error", err)
	}
}
