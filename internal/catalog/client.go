package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/mmcdole/marquee/internal/domain"
	"golang.org/x/text/language"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultLanguage     = "en-US"
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
)

// Options configures a catalog client
type Options struct {
	BaseURL      string
	APIKey       string
	Language     string // BCP 47; "en" is expanded to "en-US"
	ImageBaseURL string
	Timeout      time.Duration
	HTTPCache    bool // Cache GET responses in memory per Cache-Control
	HTTPClient   *http.Client
}

// Client is an unauthenticated client for the metadata catalog. Every
// request carries the api_key and language query parameters unless the
// caller supplies its own. It never retries.
type Client struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	language     string
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewClient creates a new catalog client
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.ImageBaseURL == "" {
		opts.ImageBaseURL = DefaultImageBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
		if opts.HTTPCache {
			httpClient.Transport = httpcache.NewMemoryCacheTransport()
		}
	}

	return &Client{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		imageBaseURL: strings.TrimRight(opts.ImageBaseURL, "/"),
		apiKey:       opts.APIKey,
		language:     NormalizeLanguage(opts.Language),
		httpClient:   httpClient,
		logger:       logger,
	}
}

// NormalizeLanguage turns a language setting into the region-qualified tag
// the catalog expects. Unparseable or empty input falls back to en-US.
func NormalizeLanguage(lang string) string {
	if strings.TrimSpace(lang) == "" {
		return defaultLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return defaultLanguage
	}
	base, _ := tag.Base()
	region, _ := tag.Region()
	if region.String() == "ZZ" {
		return base.String()
	}
	return base.String() + "-" + region.String()
}

// Language returns the default language sent with every request
func (c *Client) Language() string {
	return c.language
}

// Fetch issues a GET for path and decodes the JSON body into out. Non-2xx
// responses are returned as *domain.HTTPError.
func (c *Client) Fetch(ctx context.Context, path string, params url.Values, out any) error {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	if !query.Has("api_key") {
		query.Set("api_key", c.apiKey)
	}
	if !query.Has("language") {
		query.Set("language", c.language)
	}

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, strings.TrimLeft(path, "/"), query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("catalog request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Error("catalog request failed", "path", path, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &domain.HTTPError{
			Method:  http.MethodGet,
			URL:     c.baseURL + "/" + strings.TrimLeft(path, "/"),
			Status:  resp.StatusCode,
			Payload: body,
		}
		c.logger.Warn("catalog request error", "path", path, "status", resp.StatusCode, "detail", httpErr.Detail())
		return httpErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Details returns the full catalog entry for an item
func (c *Client) Details(ctx context.Context, kind domain.MediaKind, id int64) (*domain.CatalogItem, error) {
	var resp ItemResponse
	if err := c.Fetch(ctx, fmt.Sprintf("%s/%d", kind, id), nil, &resp); err != nil {
		return nil, err
	}
	item := MapItem(resp, kind)
	return &item, nil
}

// Videos returns every video attached to an item
func (c *Client) Videos(ctx context.Context, kind domain.MediaKind, id int64) ([]domain.VideoCandidate, error) {
	var resp VideosResponse
	if err := c.Fetch(ctx, fmt.Sprintf("%s/%d/videos", kind, id), nil, &resp); err != nil {
		return nil, err
	}
	return MapVideos(resp.Results), nil
}

// Images returns the image sets for an item, limited to English and
// language-neutral images.
func (c *Client) Images(ctx context.Context, kind domain.MediaKind, id int64) (*ImagesResponse, error) {
	params := url.Values{}
	params.Set("include_image_language", "en,null")

	var resp ImagesResponse
	if err := c.Fetch(ctx, fmt.Sprintf("%s/%d/images", kind, id), params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logos returns the title-logo candidates for an item
func (c *Client) Logos(ctx context.Context, kind domain.MediaKind, id int64) ([]domain.LogoCandidate, error) {
	images, err := c.Images(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return MapLogos(images.Logos), nil
}

// Search finds items of one kind by title. year narrows the search when
// non-zero (release year for movies, first-air year for TV).
func (c *Client) Search(ctx context.Context, kind domain.MediaKind, query string, year int) ([]domain.SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if year > 0 {
		if kind == domain.KindTV {
			params.Set("first_air_date_year", strconv.Itoa(year))
		} else {
			params.Set("year", strconv.Itoa(year))
		}
	}

	var resp PageResponse
	if err := c.Fetch(ctx, "search/"+string(kind), params, &resp); err != nil {
		return nil, err
	}
	return MapSearchResults(resp.Results, kind), nil
}

// SearchMulti searches movies and TV together. People and entries without
// any artwork are dropped. page starts at 1; values below one request the
// first page.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) ([]domain.CatalogItem, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}

	var resp PageResponse
	if err := c.Fetch(ctx, "search/multi", params, &resp); err != nil {
		return nil, err
	}
	return WithArtwork(MapItems(resp.Results, "")), nil
}

// Discover lists items of one kind matching the given discover filters
func (c *Client) Discover(ctx context.Context, kind domain.MediaKind, filters url.Values) ([]domain.CatalogItem, error) {
	params := url.Values{}
	params.Set("sort_by", "popularity.desc")
	for k, v := range filters {
		params[k] = v
	}

	var resp PageResponse
	if err := c.Fetch(ctx, "discover/"+string(kind), params, &resp); err != nil {
		return nil, err
	}
	return MapItems(resp.Results, kind), nil
}

// List returns the first page of a named catalog row
func (c *Client) List(ctx context.Context, row domain.Row) ([]domain.CatalogItem, error) {
	if strings.HasPrefix(row.Path, "discover/") {
		return c.Discover(ctx, row.Kind, nil)
	}

	var resp PageResponse
	if err := c.Fetch(ctx, row.Path, nil, &resp); err != nil {
		return nil, err
	}
	return MapItems(resp.Results, row.Kind), nil
}

// ImageURL builds a display URL for an image path. An empty path yields "".
func (c *Client) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.imageBaseURL + "/" + size + path
}

// Compile-time interface checks
var (
	_ domain.CatalogRepository = (*Client)(nil)
	_ domain.DetailsRepository = (*Client)(nil)
)
