package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/domain"
)

// DefaultProfilesTTL is how long the profile list is reused
const DefaultProfilesTTL = 5 * time.Minute

// ProfileService manages viewer profiles and the current selection
type ProfileService struct {
	repo   domain.AccountRepository
	prefs  domain.PreferenceStore
	cache  *cache.Session
	ttl    time.Duration
	logger *slog.Logger
}

// NewProfileService creates a new profile service. A ttl of zero uses
// DefaultProfilesTTL.
func NewProfileService(repo domain.AccountRepository, prefs domain.PreferenceStore, c *cache.Session, ttl time.Duration, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultProfilesTTL
	}
	return &ProfileService{
		repo:   repo,
		prefs:  prefs,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

// Profiles returns the account's profiles, cached for the service TTL
func (s *ProfileService) Profiles(ctx context.Context) ([]domain.Profile, error) {
	if profiles, ok := cache.Lookup[[]domain.Profile](s.cache, cache.KeyProfiles); ok {
		s.logger.Debug("cache hit", "key", cache.KeyProfiles)
		return profiles, nil
	}

	profiles, err := s.repo.Profiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	s.cache.Set(cache.KeyProfiles, profiles, s.ttl)
	return profiles, nil
}

// Refresh drops the cached profile list and fetches it again
func (s *ProfileService) Refresh(ctx context.Context) ([]domain.Profile, error) {
	s.cache.Invalidate(cache.KeyProfiles)
	return s.Profiles(ctx)
}

// Create adds a profile
func (s *ProfileService) Create(ctx context.Context, name, avatar string) (*domain.Profile, error) {
	p, err := s.repo.CreateProfile(ctx, domain.Profile{Name: name, Avatar: avatar})
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	s.cache.Invalidate(cache.KeyProfiles)
	s.logger.Info("created profile", "id", p.ID, "name", p.Name)
	return p, nil
}

// Update saves changes to an existing profile
func (s *ProfileService) Update(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	updated, err := s.repo.UpdateProfile(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile %d: %w", p.ID, err)
	}
	s.cache.Invalidate(cache.KeyProfiles)
	return updated, nil
}

// Rename changes a profile's name, keeping its avatar and preferences
func (s *ProfileService) Rename(ctx context.Context, id int64, name string) (*domain.Profile, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = name
	return s.Update(ctx, p)
}

// Delete removes a profile. Deleting the current profile clears the
// selection.
func (s *ProfileService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteProfile(ctx, id); err != nil {
		return fmt.Errorf("failed to delete profile %d: %w", id, err)
	}
	s.cache.Invalidate(cache.KeyProfiles)

	if current, ok := s.prefs.CurrentProfile(); ok && current == id {
		if err := s.prefs.ClearCurrentProfile(); err != nil {
			s.logger.Warn("failed to clear current profile", "error", err)
		}
		s.invalidateProfileScoped()
	}
	return nil
}

// Switch makes id the current profile and drops everything cached for the
// previous one.
func (s *ProfileService) Switch(ctx context.Context, id int64) (*domain.Profile, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.prefs.SetCurrentProfile(id); err != nil {
		return nil, fmt.Errorf("failed to save current profile: %w", err)
	}
	s.invalidateProfileScoped()
	s.logger.Info("switched profile", "id", p.ID, "name", p.Name)
	return &p, nil
}

// Current returns the selected profile, or nil when none is selected or it
// no longer exists.
func (s *ProfileService) Current(ctx context.Context) (*domain.Profile, error) {
	id, ok := s.prefs.CurrentProfile()
	if !ok {
		return nil, nil
	}
	p, err := s.find(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *ProfileService) find(ctx context.Context, id int64) (domain.Profile, error) {
	profiles, err := s.Profiles(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	for _, p := range profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Profile{}, domain.ErrProfileNotFound
}

func (s *ProfileService) invalidateProfileScoped() {
	for _, prefix := range cache.ProfileScopedPrefixes() {
		s.cache.InvalidatePrefix(prefix)
	}
}
