// Package resolver picks the trailer and title logo shown for a catalog item.
// Lookup failures degrade to "no trailer" or the poster; they are logged and
// never returned.
package resolver

import (
	"context"
	"log/slog"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/ranking"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/sourcegraph/conc/pool"
)

const (
	defaultConcurrency = 4

	logoSize   = "original"
	posterSize = "w500"
)

// Resolver derives ResolvedMedia from catalog lookups
type Resolver struct {
	catalog     domain.CatalogRepository
	concurrency int
	logger      *slog.Logger
}

// New creates a resolver. concurrency bounds ResolveAll; values below one
// use the default.
func New(catalog domain.CatalogRepository, concurrency int, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &Resolver{
		catalog:     catalog,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ResolveTrailer returns the best trailer for item, or nil. When the item's
// own videos yield no winner it runs exactly one fallback search for the
// same title under another id and considers only that match's trailers. A
// failed video fetch returns nil without searching.
func (r *Resolver) ResolveTrailer(ctx context.Context, item domain.CatalogItem) *domain.VideoCandidate {
	videos, err := r.catalog.Videos(ctx, item.Kind, item.ID)
	if err != nil {
		r.logger.Warn("failed to fetch videos", "kind", item.Kind, "id", item.ID, "error", err)
		return nil
	}
	if best := ranking.BestTrailer(videos); best != nil {
		return best
	}

	if ctx.Err() != nil {
		return nil
	}
	return r.fallbackTrailer(ctx, item)
}

func (r *Resolver) fallbackTrailer(ctx context.Context, item domain.CatalogItem) *domain.VideoCandidate {
	if item.Title == "" {
		return nil
	}

	results, err := r.catalog.Search(ctx, item.Kind, item.Title, item.Year())
	if err != nil {
		r.logger.Warn("fallback search failed", "title", item.Title, "error", err)
		return nil
	}

	match, ok := search.BestMatch(item, results)
	if !ok {
		r.logger.Debug("no fallback match", "title", item.Title, "candidates", len(results))
		return nil
	}

	kind := match.Kind
	if kind == "" {
		kind = item.Kind
	}
	videos, err := r.catalog.Videos(ctx, kind, match.ID)
	if err != nil {
		r.logger.Warn("failed to fetch fallback videos", "kind", kind, "id", match.ID, "error", err)
		return nil
	}

	best := ranking.BestTrailer(ranking.TrailersOnly(videos))
	if best != nil {
		r.logger.Debug("trailer found via fallback", "title", item.Title, "fallback_id", match.ID)
	}
	return best
}

// ResolveLogo returns the URL of the best dedicated title logo. Without one
// it returns the poster with dedicated=false, and "" when there is no poster
// either.
func (r *Resolver) ResolveLogo(ctx context.Context, item domain.CatalogItem) (string, bool) {
	logos, err := r.catalog.Logos(ctx, item.Kind, item.ID)
	if err != nil {
		r.logger.Warn("failed to fetch logos", "kind", item.Kind, "id", item.ID, "error", err)
	} else if best := ranking.BestLogo(logos); best != nil {
		return r.catalog.ImageURL(best.FilePath, logoSize), true
	}
	return r.catalog.ImageURL(item.PosterPath, posterSize), false
}

// Resolve returns both the trailer and logo for item
func (r *Resolver) Resolve(ctx context.Context, item domain.CatalogItem) domain.ResolvedMedia {
	trailer := r.ResolveTrailer(ctx, item)
	logoURL, dedicated := r.ResolveLogo(ctx, item)
	return domain.ResolvedMedia{
		Trailer:      trailer,
		LogoURL:      logoURL,
		LogoIsPoster: !dedicated,
	}
}

// ResolveAll resolves every item with bounded concurrency. Results are in
// input order.
func (r *Resolver) ResolveAll(ctx context.Context, items []domain.CatalogItem) []domain.ResolvedMedia {
	results := make([]domain.ResolvedMedia, len(items))

	p := pool.New().WithMaxGoroutines(r.concurrency)
	for i, item := range items {
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			results[i] = r.Resolve(ctx, item)
		})
	}
	p.Wait()

	return results
}
