package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "licmgr/internal/errors"
)

// Authenticator checks administrator passwords
type Authenticator interface {
	Login(ctx context.Context, password string) error
}

// Session tracks the login state of an interactive front end. Failed
// attempts draw from a token bucket; once it is empty further attempts are
// refused with ErrLoginThrottled until a token refills.
type Session struct {
	auth    Authenticator
	limiter *rate.Limiter
	logger  *slog.Logger
	now     func() time.Time

	mu            sync.Mutex
	authenticated bool
}

// NewSession creates a Session allowing burst failed logins, then one more
// per interval
func NewSession(auth Authenticator, interval time.Duration, burst int, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		auth:    auth,
		limiter: rate.NewLimiter(rate.Every(interval), burst),
		logger:  logger.With(slog.String("component", "session")),
		now:     time.Now,
	}
}

// Login authenticates the session
func (s *Session) Login(ctx context.Context, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.limiter.TokensAt(now) < 1 {
		s.logger.WarnContext(ctx, "Login attempt throttled")
		return apperrors.ErrLoginThrottled
	}

	err := s.auth.Login(ctx, password)
	if err != nil {
		if errors.Is(err, apperrors.ErrAuthentication) {
			s.limiter.AllowN(now, 1)
		}
		return err
	}

	s.authenticated = true
	return nil
}

// Authenticated reports whether Login has succeeded since the last Logout
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Logout ends the session
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
}
