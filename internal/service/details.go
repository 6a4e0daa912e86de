package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/marquee/internal/cache"
	"github.com/mmcdole/marquee/internal/domain"
)

// rowTTL bounds how long a resolved catalog row is reused; rows such as
// trending change during the day.
const rowTTL = 30 * time.Minute

// ErrEmptyQuery is returned when a search has nothing to look for
var ErrEmptyQuery = errors.New("search query is empty")

// MediaResolver derives trailers and logos for catalog items
type MediaResolver interface {
	Resolve(ctx context.Context, item domain.CatalogItem) domain.ResolvedMedia
	ResolveAll(ctx context.Context, items []domain.CatalogItem) []domain.ResolvedMedia
}

// DetailsService serves detail pages and catalog rows, resolving media on a
// cache miss.
type DetailsService struct {
	repo     domain.DetailsRepository
	resolver MediaResolver
	cache    *cache.Session
	logger   *slog.Logger
}

// NewDetailsService creates a new details service
func NewDetailsService(repo domain.DetailsRepository, resolver MediaResolver, c *cache.Session, logger *slog.Logger) *DetailsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailsService{
		repo:     repo,
		resolver: resolver,
		cache:    c,
		logger:   logger,
	}
}

// Details returns the catalog entry and resolved media for one item. The
// result is cached until a profile switch or list change invalidates it.
func (s *DetailsService) Details(ctx context.Context, kind domain.MediaKind, id int64) (*domain.Details, error) {
	key := cache.DetailsKey(kind, id)
	if d, ok := cache.Lookup[domain.Details](s.cache, key); ok {
		s.logger.Debug("cache hit", "key", key)
		return &d, nil
	}

	item, err := s.repo.Details(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s %d: %w", kind, id, err)
	}

	d := domain.Details{
		Item:  *item,
		Media: s.resolver.Resolve(ctx, *item),
	}
	s.cache.Set(key, d, 0)
	return &d, nil
}

// Row lists a named catalog row with media resolved for every item
func (s *DetailsService) Row(ctx context.Context, row domain.Row) ([]domain.Details, error) {
	key := cache.RowKey(row.Name)
	if rows, ok := cache.Lookup[[]domain.Details](s.cache, key); ok {
		s.logger.Debug("cache hit", "key", key)
		return rows, nil
	}

	items, err := s.repo.List(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", row.Name, err)
	}

	media := s.resolver.ResolveAll(ctx, items)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Details, len(items))
	for i := range items {
		out[i] = domain.Details{Item: items[i], Media: media[i]}
	}
	s.cache.Set(key, out, rowTTL)
	s.logger.Info("loaded row", "row", row.Name, "count", len(out))
	return out, nil
}

// Search runs a free-text catalog search across movies and TV and resolves
// media for every hit. Pages are cached like rows.
func (s *DetailsService) Search(ctx context.Context, query string, page int) ([]domain.Details, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	key := cache.SearchKey(query, page)
	if hits, ok := cache.Lookup[[]domain.Details](s.cache, key); ok {
		s.logger.Debug("cache hit", "key", key)
		return hits, nil
	}

	items, err := s.repo.SearchMulti(ctx, query, page)
	if err != nil {
		return nil, fmt.Errorf("failed to search %q: %w", query, err)
	}

	media := s.resolver.ResolveAll(ctx, items)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Details, len(items))
	for i := range items {
		out[i] = domain.Details{Item: items[i], Media: media[i]}
	}
	s.cache.Set(key, out, rowTTL)
	s.logger.Info("searched catalog", "query", query, "page", page, "count", len(out))
	return out, nil
}
