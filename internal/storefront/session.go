package storefront

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Session owns the current Principal and its lifecycle. It is a
// single-writer, multi-reader observation channel: every identity
// transition is broadcast to subscribers, and a late subscriber sees
// only the latest value, never history.
//
// Each transition bumps an epoch. In-flight work captures the epoch
// when it starts and compares it when it finishes, so results that
// belong to a signed-out (or replaced) principal are never applied to
// the new session.
type Session struct {
	gateway IdentityGateway
	logger  *zap.Logger

	mu      sync.RWMutex
	current Principal
	epoch   uint64
	subs    map[int]func(Principal)
	nextSub int
}

// NewSession creates a session provider with no current principal.
func NewSession(gateway IdentityGateway, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		gateway: gateway,
		logger:  logger,
		subs:    make(map[int]func(Principal)),
	}
}

// Current returns the current principal and whether one is signed in.
func (s *Session) Current() (Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current.Authenticated()
}

// Epoch returns the current session epoch. It changes on every
// sign-in and sign-out.
func (s *Session) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// SignIn authenticates and makes the returned principal current.
func (s *Session) SignIn(ctx context.Context, email, password string) (Principal, error) {
	principal, err := s.gateway.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Warn("Sign-in failed", zap.String("email", email), zap.Error(err))
		return Principal{}, err
	}

	s.logger.Info("Signed in",
		zap.String("user_id", principal.ID.String()),
		zap.String("email", principal.Email))
	s.transition(principal)
	return principal, nil
}

// SignOut clears the current principal. Idempotent: signing out with
// no principal is a no-op that still leaves the session empty.
func (s *Session) SignOut(ctx context.Context) error {
	if err := s.gateway.SignOut(ctx); err != nil {
		s.logger.Warn("Identity provider sign-out failed", zap.Error(err))
		// The local session is cleared regardless.
	}

	s.mu.RLock()
	had := s.current.Authenticated()
	s.mu.RUnlock()

	s.transition(Principal{})
	if had {
		s.logger.Info("Signed out")
	}
	return nil
}

// Token returns a fresh bearer token for the current principal. Tokens
// are not cached here: every call goes to the identity provider so an
// expiring token is always renewed before use.
func (s *Session) Token(ctx context.Context) (string, error) {
	if _, ok := s.Current(); !ok {
		return "", ErrNotAuthenticated
	}
	return s.gateway.Token(ctx)
}

// Subscribe registers a listener for principal changes. The listener
// is invoked immediately with the latest value, then on every
// transition. The returned function cancels the subscription.
func (s *Session) Subscribe(fn func(Principal)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	latest := s.current
	s.mu.Unlock()

	fn(latest)

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// transition replaces the current principal, bumps the epoch and
// notifies subscribers outside the lock.
func (s *Session) transition(next Principal) {
	s.mu.Lock()
	s.current = next
	s.epoch++
	listeners := make([]func(Principal), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
}
