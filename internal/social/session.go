package social

import (
	"context"
	"errors"
	"sync"
	"time"
)

// SessionState is a point in the session lifecycle.
type SessionState int

const (
	StateUninitialized SessionState = iota
	StateActive
	StateExpired
	StateDestroyed
)

func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateExpired:
		return "expired"
	case StateDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// Credentials is the outcome of one authentication exchange.
type Credentials struct {
	ProfileID string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Authenticator runs a platform's authentication exchange.
type Authenticator interface {
	// Authenticate proves wallet ownership upstream and returns fresh credentials.
	Authenticate(ctx context.Context) (Credentials, error)
	// Invalidate asks the upstream to forget token.
	Invalidate(ctx context.Context, token string) error
}

// Session holds the credentials of one platform account. Refresh updates it
// in place so every holder of the pointer observes the new token.
type Session struct {
	platform Platform
	auth     Authenticator

	mu        sync.RWMutex
	profileID string
	token     string
	createdAt time.Time
	expiresAt time.Time
	destroyed bool
}

// NewSession wraps credentials produced by auth.
func NewSession(platform Platform, auth Authenticator, creds Credentials) *Session {
	s := &Session{platform: platform, auth: auth}
	s.apply(creds)
	return s
}

func (s *Session) apply(creds Credentials) {
	s.profileID = creds.ProfileID
	s.token = creds.Token
	s.createdAt = creds.CreatedAt
	s.expiresAt = creds.ExpiresAt
}

// Platform returns the platform the session authenticates against.
func (s *Session) Platform() Platform { return s.platform }

func (s *Session) ProfileID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profileID
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) CreatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.createdAt
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Credentials returns a consistent snapshot of the session fields.
func (s *Session) Credentials() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Credentials{
		ProfileID: s.profileID,
		Token:     s.token,
		CreatedAt: s.createdAt,
		ExpiresAt: s.expiresAt,
	}
}

// ActiveAt reports whether the session can be used at t.
func (s *Session) ActiveAt(t time.Time) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.destroyed && s.expiresAt.After(t)
}

// State reports the lifecycle state at t.
func (s *Session) State(t time.Time) SessionState {
	if s == nil {
		return StateUninitialized
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.destroyed:
		return StateDestroyed
	case s.expiresAt.After(t):
		return StateActive
	default:
		return StateExpired
	}
}

// Refresh re-runs the authentication exchange and overwrites the session in place.
func (s *Session) Refresh(ctx context.Context) error {
	if s.auth == nil {
		return errors.New("session has no authenticator")
	}
	creds, err := s.auth.Authenticate(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(creds)
	s.destroyed = false
	return nil
}

// Destroy invalidates the token upstream and expires the session. The session
// is expired even when the upstream call fails; that error is still returned.
func (s *Session) Destroy(ctx context.Context) error {
	var err error
	if s.auth != nil {
		err = s.auth.Invalidate(ctx, s.Token())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = time.UnixMilli(0)
	s.destroyed = true
	return err
}
