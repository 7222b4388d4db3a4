package social

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const flightKey = "session"

// Keeper owns the single live session of a provider instance. Concurrent
// Resume calls during an expired window share one authentication exchange.
type Keeper struct {
	platform Platform
	auth     Authenticator
	now      func() time.Time
	onCreate func(*Session)

	mu      sync.Mutex
	current *Session
	flight  singleflight.Group
}

// KeeperOption configures a Keeper.
type KeeperOption func(*Keeper)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) KeeperOption {
	return func(k *Keeper) {
		k.now = now
	}
}

// WithCreateHook registers fn to run after every successful exchange.
func WithCreateHook(fn func(*Session)) KeeperOption {
	return func(k *Keeper) {
		k.onCreate = fn
	}
}

// NewKeeper returns a keeper that authenticates with auth.
func NewKeeper(platform Platform, auth Authenticator, opts ...KeeperOption) *Keeper {
	k := &Keeper{platform: platform, auth: auth, now: time.Now}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Current returns the held session, which may be nil or expired.
func (k *Keeper) Current() *Session {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.current
}

// Adopt installs a previously created session, e.g. one loaded from disk.
// Sessions that are already expired are ignored.
func (k *Keeper) Adopt(creds Credentials) *Session {
	s := NewSession(k.platform, k.auth, creds)
	if !s.ActiveAt(k.now()) {
		return nil
	}
	k.mu.Lock()
	k.current = s
	k.mu.Unlock()
	return s
}

// Create always runs the default authentication exchange and replaces the held session.
func (k *Keeper) Create(ctx context.Context) (*Session, error) {
	return k.CreateWith(ctx, k.auth)
}

// CreateWith runs the exchange of auth and replaces the held session. The
// new session refreshes through auth as well.
func (k *Keeper) CreateWith(ctx context.Context, auth Authenticator) (*Session, error) {
	creds, err := auth.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	s := NewSession(k.platform, auth, creds)

	k.mu.Lock()
	k.current = s
	k.mu.Unlock()

	if k.onCreate != nil {
		k.onCreate(s)
	}
	return s, nil
}

// Resume returns the held session while it is active and creates a new one
// otherwise. The exchange runs under the context of the first caller.
func (k *Keeper) Resume(ctx context.Context) (*Session, error) {
	if cur := k.Current(); cur.ActiveAt(k.now()) {
		return cur, nil
	}

	ch := k.flight.DoChan(flightKey, func() (any, error) {
		if cur := k.Current(); cur.ActiveAt(k.now()) {
			return cur, nil
		}
		return k.Create(ctx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Session), nil
	}
}

// Destroy invalidates the held session, if any.
func (k *Keeper) Destroy(ctx context.Context) error {
	cur := k.Current()
	if cur == nil {
		return nil
	}
	return cur.Destroy(ctx)
}

// Now returns the keeper's notion of the current time.
func (k *Keeper) Now() time.Time { return k.now() }
