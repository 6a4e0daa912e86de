package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MediaKind distinguishes movie and TV catalog entries, which use different
// metadata endpoints.
type MediaKind string

const (
	KindMovie MediaKind = "movie"
	KindTV    MediaKind = "tv"
)

// ParseMediaKind accepts the usual spellings of a media kind.
func ParseMediaKind(s string) (MediaKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies", "film":
		return KindMovie, nil
	case "tv", "show", "shows", "series":
		return KindTV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMediaKind, s)
	}
}

// CatalogItem is a movie or TV show as described by the catalog API.
// Identified by (Kind, ID).
type CatalogItem struct {
	ID           int64
	Kind         MediaKind
	Title        string
	Overview     string
	PosterPath   string
	BackdropPath string
	VoteAverage  float64
	VoteCount    int
	ReleaseDate  string // YYYY-MM-DD; first air date for TV
	Genres       []string
	Runtime      int // minutes; episode runtime for TV
}

// Year returns the release year, or 0 when the date is missing or malformed.
func (c CatalogItem) Year() int {
	if len(c.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(c.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// CacheKey returns the identity string used for detail caching.
func (c CatalogItem) CacheKey() string {
	return fmt.Sprintf("%s:%d", c.Kind, c.ID)
}

// FormattedRuntime returns the runtime in a human-readable format
func (c CatalogItem) FormattedRuntime() string {
	if c.Runtime <= 0 {
		return ""
	}
	h := c.Runtime / 60
	mins := c.Runtime % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// VideoCandidate is one video record returned for an item, not yet judged
// suitable for display.
type VideoCandidate struct {
	Key         string
	Name        string
	Site        string    // "YouTube", "Vimeo", "Dailymotion", ...
	Type        string    // "Trailer", "Teaser", "Clip", "Featurette", ...
	Official    bool
	Language    string    // ISO 639-1, empty when unset
	PublishedAt time.Time // zero when unknown
	VoteCount   int       // 0 when unknown
}

// WatchURL returns a browser URL for the video, or "" for unknown hosts.
func (v VideoCandidate) WatchURL() string {
	if v.Key == "" {
		return ""
	}
	switch strings.ToLower(v.Site) {
	case "youtube":
		return "https://www.youtube.com/watch?v=" + v.Key
	case "vimeo":
		return "https://vimeo.com/" + v.Key
	case "dailymotion":
		return "https://www.dailymotion.com/video/" + v.Key
	default:
		return ""
	}
}

// LogoCandidate is one title-logo image returned for an item.
type LogoCandidate struct {
	FilePath    string
	Language    string
	AspectRatio float64
	Width       int
	Height      int
	VoteAverage float64
}

// ResolvedMedia is the trailer and logo chosen for one catalog item.
// A nil Trailer and an empty LogoURL are degraded results, not errors.
type ResolvedMedia struct {
	Trailer      *VideoCandidate
	LogoURL      string
	LogoIsPoster bool // no dedicated logo; render the title as text
}

// Details is the cached payload behind a detail page.
type Details struct {
	Item  CatalogItem
	Media ResolvedMedia
}

// SearchResult is a catalog search hit used by fallback search.
type SearchResult struct {
	ID          int64
	Kind        MediaKind
	Title       string
	ReleaseDate string
}
