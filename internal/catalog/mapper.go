package catalog

import (
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

// MapItem converts a catalog item response to a domain item. kind is used
// when the payload does not carry its own media_type.
func MapItem(r ItemResponse, kind domain.MediaKind) domain.CatalogItem {
	if mt, err := domain.ParseMediaKind(r.MediaType); err == nil {
		kind = mt
	}

	item := domain.CatalogItem{
		ID:           r.ID,
		Kind:         kind,
		Title:        r.Title,
		Overview:     r.Overview,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		VoteAverage:  r.VoteAverage,
		VoteCount:    r.VoteCount,
		ReleaseDate:  r.ReleaseDate,
		Runtime:      r.Runtime,
	}
	if kind == domain.KindTV {
		item.Title = r.Name
		item.ReleaseDate = r.FirstAirDate
		if len(r.EpisodeRunTime) > 0 {
			item.Runtime = r.EpisodeRunTime[0]
		}
	}
	if item.Title == "" {
		item.Title = r.Name
	}

	for _, g := range r.Genres {
		item.Genres = append(item.Genres, g.Name)
	}
	return item
}

// MapItems converts a page of results, dropping entries that are neither
// movies nor TV (people on trending/all).
func MapItems(results []ItemResponse, kind domain.MediaKind) []domain.CatalogItem {
	items := make([]domain.CatalogItem, 0, len(results))
	for _, r := range results {
		if r.MediaType != "" {
			if _, err := domain.ParseMediaKind(r.MediaType); err != nil {
				continue
			}
		} else if kind == "" {
			continue
		}
		items = append(items, MapItem(r, kind))
	}
	return items
}

// WithArtwork keeps items that have a poster or a backdrop
func WithArtwork(items []domain.CatalogItem) []domain.CatalogItem {
	out := items[:0]
	for _, item := range items {
		if item.PosterPath != "" || item.BackdropPath != "" {
			out = append(out, item)
		}
	}
	return out
}

// MapSearchResults converts search hits for the fallback lookup
func MapSearchResults(results []ItemResponse, kind domain.MediaKind) []domain.SearchResult {
	out := make([]domain.SearchResult, 0, len(results))
	for _, item := range MapItems(results, kind) {
		out = append(out, domain.SearchResult{
			ID:          item.ID,
			Kind:        item.Kind,
			Title:       item.Title,
			ReleaseDate: item.ReleaseDate,
		})
	}
	return out
}

// MapVideos converts video records to ranking candidates
func MapVideos(videos []Video) []domain.VideoCandidate {
	out := make([]domain.VideoCandidate, 0, len(videos))
	for _, v := range videos {
		c := domain.VideoCandidate{
			Key:       v.Key,
			Name:      v.Name,
			Site:      v.Site,
			Type:      v.Type,
			Official:  v.Official,
			VoteCount: v.VoteCount,
		}
		if v.ISO6391 != nil {
			c.Language = *v.ISO6391
		}
		if v.PublishedAt != "" {
			if t, err := time.Parse(time.RFC3339, v.PublishedAt); err == nil {
				c.PublishedAt = t
			}
		}
		out = append(out, c)
	}
	return out
}

// MapLogos converts logo records to ranking candidates
func MapLogos(images []Image) []domain.LogoCandidate {
	out := make([]domain.LogoCandidate, 0, len(images))
	for _, img := range images {
		c := domain.LogoCandidate{
			FilePath:    img.FilePath,
			AspectRatio: img.AspectRatio,
			Width:       img.Width,
			Height:      img.Height,
			VoteAverage: img.VoteAverage,
		}
		if img.ISO6391 != nil {
			c.Language = *img.ISO6391
		}
		out = append(out, c)
	}
	return out
}
