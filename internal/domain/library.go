package domain

import "fmt"

// Row is a named catalog listing shown as one row in the browse view.
type Row struct {
	Name string    // stable identifier, e.g. "popular"
	Kind MediaKind // empty for mixed rows such as trending/all
	Path string    // catalog path
}

// Rows are the catalog listings the client knows how to browse.
var Rows = []Row{
	{Name: "movies-now-playing", Kind: KindMovie, Path: "movie/now_playing"},
	{Name: "movies-popular", Kind: KindMovie, Path: "movie/popular"},
	{Name: "movies-top-rated", Kind: KindMovie, Path: "movie/top_rated"},
	{Name: "movies-upcoming", Kind: KindMovie, Path: "movie/upcoming"},
	{Name: "movies-discover", Kind: KindMovie, Path: "discover/movie"},
	{Name: "tv-airing-today", Kind: KindTV, Path: "tv/airing_today"},
	{Name: "tv-on-the-air", Kind: KindTV, Path: "tv/on_the_air"},
	{Name: "tv-popular", Kind: KindTV, Path: "tv/popular"},
	{Name: "tv-top-rated", Kind: KindTV, Path: "tv/top_rated"},
	{Name: "tv-discover", Kind: KindTV, Path: "discover/tv"},
	{Name: "trending-day", Path: "trending/all/day"},
	{Name: "trending-week", Path: "trending/all/week"},
	{Name: "trending-movies-day", Kind: KindMovie, Path: "trending/movie/day"},
	{Name: "trending-movies-week", Kind: KindMovie, Path: "trending/movie/week"},
	{Name: "trending-tv-day", Kind: KindTV, Path: "trending/tv/day"},
	{Name: "trending-tv-week", Kind: KindTV, Path: "trending/tv/week"},
}

// LookupRow finds a row by name.
func LookupRow(name string) (Row, error) {
	for _, r := range Rows {
		if r.Name == name {
			return r, nil
		}
	}
	return Row{}, fmt.Errorf("unknown row: %s", name)
}
