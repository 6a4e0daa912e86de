package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/domain"
)

// ListService manages the saved-items list
type ListService struct {
	repo   domain.AccountRepository
	prefs  domain.PreferenceStore
	cache  *cache.Session
	ttl    time.Duration
	logger *slog.Logger
}

// NewListService creates a new list service. The list is cached per
// profile for ttl.
func NewListService(repo domain.AccountRepository, prefs domain.PreferenceStore, c *cache.Session, ttl time.Duration, logger *slog.Logger) *ListService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListService{
		repo:   repo,
		prefs:  prefs,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *ListService) key() string {
	id, _ := s.prefs.CurrentProfile()
	return cache.ListKey(id)
}

// List returns the saved items, newest first as the backend orders them
func (s *ListService) List(ctx context.Context) ([]domain.ListEntry, error) {
	key := s.key()
	if entries, ok := cache.Lookup[[]domain.ListEntry](s.cache, key); ok {
		s.logger.Debug("cache hit", "key", key)
		return entries, nil
	}

	entries, err := s.repo.MyList(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load list: %w", err)
	}
	s.cache.Set(key, entries, s.ttl)
	return entries, nil
}

// Contains reports whether an item is on the list
func (s *ListService) Contains(ctx context.Context, kind domain.MediaKind, itemID int64) (bool, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.ItemID == itemID && (e.MediaType == "" || e.MediaType == kind) {
			return true, nil
		}
	}
	return false, nil
}

// Add saves a catalog item to the list
func (s *ListService) Add(ctx context.Context, item domain.CatalogItem) (*domain.ListEntry, error) {
	entry, err := s.repo.AddToList(ctx, domain.ListEntry{
		ItemID:     item.ID,
		Title:      item.Title,
		PosterPath: item.PosterPath,
		MediaType:  item.Kind,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add %q to list: %w", item.Title, err)
	}
	s.invalidate(item.Kind, item.ID)
	s.logger.Info("added to list", "id", item.ID, "title", item.Title)
	return entry, nil
}

// Remove deletes an item from the list
func (s *ListService) Remove(ctx context.Context, kind domain.MediaKind, itemID int64) error {
	if err := s.repo.RemoveFromList(ctx, itemID); err != nil {
		return fmt.Errorf("failed to remove %d from list: %w", itemID, err)
	}
	s.invalidate(kind, itemID)
	s.logger.Info("removed from list", "id", itemID)
	return nil
}

func (s *ListService) invalidate(kind domain.MediaKind, itemID int64) {
	s.cache.Invalidate(s.key())
	s.cache.Invalidate(cache.DetailsKey(kind, itemID))
}
