package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/domain"
)

// SessionStatus describes the stored credentials
type SessionStatus struct {
	LoggedIn      bool
	AccessExpiry  time.Time // zero when the token carries no exp claim
	ProfileID     int64
	ProfileChosen bool
}

// SessionService manages login state. Everything in the session cache
// belongs to one login and is dropped when it starts or ends.
type SessionService struct {
	repo   domain.AccountRepository
	tokens domain.TokenStore
	prefs  domain.PreferenceStore
	cache  *cache.Session
	logger *slog.Logger
}

// NewSessionService creates a new session service
func NewSessionService(repo domain.AccountRepository, tokens domain.TokenStore, prefs domain.PreferenceStore, c *cache.Session, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		repo:   repo,
		tokens: tokens,
		prefs:  prefs,
		cache:  c,
		logger: logger,
	}
}

// Login authenticates and starts a fresh session
func (s *SessionService) Login(ctx context.Context, username, password string) error {
	s.reset()
	return s.repo.Login(ctx, username, password)
}

// Logout ends the session. The repository's session hook also resets, so
// this is safe to call twice.
func (s *SessionService) Logout() error {
	if err := s.repo.Logout(); err != nil {
		return err
	}
	s.reset()
	return nil
}

// Register creates an account without logging in
func (s *SessionService) Register(ctx context.Context, username, email, password string) error {
	return s.repo.Register(ctx, username, email, password)
}

// WhoAmI returns the logged-in account
func (s *SessionService) WhoAmI(ctx context.Context) (*domain.UserInfo, error) {
	if _, ok := s.tokens.Get(); !ok {
		return nil, domain.ErrNotLoggedIn
	}
	return s.repo.UserInfo(ctx)
}

// Status reports the stored session without any network call
func (s *SessionService) Status() SessionStatus {
	var status SessionStatus
	creds, ok := s.tokens.Get()
	status.LoggedIn = ok && !creds.IsZero()
	if exp, ok := creds.AccessExpiry(); ok {
		status.AccessExpiry = exp
	}
	status.ProfileID, status.ProfileChosen = s.prefs.CurrentProfile()
	return status
}

// SessionExpired is the hook the backend client fires when credentials are
// destroyed.
func (s *SessionService) SessionExpired() {
	s.logger.Info("session ended")
	s.reset()
}

func (s *SessionService) reset() {
	s.cache.Clear()
	if err := s.prefs.ClearCurrentProfile(); err != nil {
		s.logger.Warn("failed to clear current profile", "error", err)
	}
}
