package storefront

import (
	"context"
	"sync"
)

// memStore is an in-memory UserStore used across tests.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*User
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*User{}}
}

func (s *memStore) add(username, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	user := &User{
		ID:           s.nextID,
		Username:     username,
		PasswordHash: hash,
	}
	s.users[username] = user
	return user, nil
}

func (s *memStore) remove(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, username)
}

func (s *memStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.users[username]; ok {
		return user, nil
	}
	return nil, ErrIdentityNotFound
}

func (s *memStore) FindByID(ctx context.Context, id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, ErrIdentityNotFound
}

// testConfig satisfies Config with sane test defaults.
type testConfig struct {
	signingKey string
	expiration int
}

func (c testConfig) GetSigningKey() string {
	if c.signingKey == "" {
		return "test-signing-key"
	}
	return c.signingKey
}

func (c testConfig) GetSigningMethod() string { return "HS256" }

func (c testConfig) GetContextKey() string { return "user" }

func (c testConfig) GetTokenExpiration() int {
	if c.expiration == 0 {
		return 4
	}
	return c.expiration
}

func (c testConfig) GetTokenLookup() string { return "header:Authorization" }

func (c testConfig) GetAuthScheme() string { return "JWT" }

func (c testConfig) GetIssuer() string { return "storefront" }

func (c testConfig) GetAudience() []string { return nil }

// recordingSink captures activity events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []ActivityEvent
}

func (s *recordingSink) Record(ctx context.Context, event ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) byType(t ActivityEventType) []ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []ActivityEvent{}
	for _, e := range s.events {
		if e.EventType == t {
			out = append(out, e)
		}
	}
	return out
}
