package domain

import (
	"context"
)

// CatalogRepository provides the read-only metadata lookups the media
// resolver needs.
type CatalogRepository interface {
	// Videos returns every video candidate for an item
	Videos(ctx context.Context, kind MediaKind, id int64) ([]VideoCandidate, error)

	// Logos returns every logo candidate for an item
	Logos(ctx context.Context, kind MediaKind, id int64) ([]LogoCandidate, error)

	// Search finds items by title, narrowed to a release year when year > 0
	Search(ctx context.Context, kind MediaKind, query string, year int) ([]SearchResult, error)

	// ImageURL builds a display URL for an image path at the given size ("original", "w500", ...)
	ImageURL(path, size string) string
}

// DetailsRepository fetches the base catalog entry for a detail page.
type DetailsRepository interface {
	Details(ctx context.Context, kind MediaKind, id int64) (*CatalogItem, error)
	List(ctx context.Context, row Row) ([]CatalogItem, error)
	// SearchMulti searches movies and TV by free text, one page at a time
	SearchMulti(ctx context.Context, query string, page int) ([]CatalogItem, error)
}

// AccountRepository is the backend surface behind the authenticated client.
type AccountRepository interface {
	Login(ctx context.Context, username, password string) error
	Logout() error
	Register(ctx context.Context, username, email, password string) error
	UserInfo(ctx context.Context) (*UserInfo, error)

	Profiles(ctx context.Context) ([]Profile, error)
	CreateProfile(ctx context.Context, p Profile) (*Profile, error)
	UpdateProfile(ctx context.Context, p Profile) (*Profile, error)
	DeleteProfile(ctx context.Context, id int64) error

	MyList(ctx context.Context) ([]ListEntry, error)
	AddToList(ctx context.Context, entry ListEntry) (*ListEntry, error)
	RemoveFromList(ctx context.Context, itemID int64) error
}
