package search

import (
	"testing"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Amélie":                 "amelie",
		"  Spider-Man: No Way ":  "spider man no way",
		"WALL·E":                 "wall e",
		"":                       "",
		"Léon: The Professional": "leon the professional",
	}
	for input, want := range tests {
		assert.Equal(t, want, Normalize(input), "Normalize(%q)", input)
	}
}

func TestMatchScore(t *testing.T) {
	assert.Equal(t, 0, MatchScore("Amélie", "amelie"))
	assert.Equal(t, 10, MatchScore("Dune", "Dune: Part One"))
	assert.Equal(t, 50, MatchScore("Matrix", "The Matrix"))
	assert.Equal(t, 101, MatchScore("Interstellar", "Intersteller"))
	assert.Less(t, MatchScore("Heat", "Frozen"), 0)
	assert.Less(t, MatchScore("", "Frozen"), 0)
}

func TestBestMatch_SkipsOwnIDAndWrongYear(t *testing.T) {
	item := domain.CatalogItem{ID: 10, Kind: domain.KindMovie, Title: "Dune", ReleaseDate: "2021-09-15"}
	results := []domain.SearchResult{
		{ID: 10, Title: "Dune", ReleaseDate: "2021-09-15"},
		{ID: 11, Title: "Dune", ReleaseDate: "1984-12-14"},
		{ID: 12, Title: "Dune", ReleaseDate: "2021-10-22"},
		{ID: 13, Title: "Dune: Part Two", ReleaseDate: "2022-01-01"},
	}

	got, ok := BestMatch(item, results)
	require.True(t, ok)
	assert.Equal(t, int64(12), got.ID)
}

func TestBestMatch_NoCandidate(t *testing.T) {
	item := domain.CatalogItem{ID: 10, Title: "Heat", ReleaseDate: "1995-12-15"}

	_, ok := BestMatch(item, nil)
	assert.False(t, ok)

	_, ok = BestMatch(item, []domain.SearchResult{
		{ID: 10, Title: "Heat", ReleaseDate: "1995-12-15"},
		{ID: 99, Title: "Frozen", ReleaseDate: "1995-01-01"},
	})
	assert.False(t, ok)
}

func TestBestMatch_UnknownYearAccepted(t *testing.T) {
	item := domain.CatalogItem{ID: 1, Title: "Severance"}
	got, ok := BestMatch(item, []domain.SearchResult{{ID: 2, Title: "Severance", ReleaseDate: "2022-02-18"}})
	require.True(t, ok)
	assert.Equal(t, int64(2), got.ID)
}

func TestFilter(t *testing.T) {
	items := []domain.CatalogItem{
		{ID: 1, Title: "The Dark Knight"},
		{ID: 2, Title: "Dunkirk"},
		{ID: 3, Title: "Inception"},
	}

	all := Filter("", items)
	require.Len(t, all, 3)
	assert.Equal(t, int64(1), all[0].Item.ID)

	got := Filter("dark", items)
	require.NotEmpty(t, got)
	assert.Equal(t, int64(1), got[0].Item.ID)
	assert.NotEmpty(t, got[0].MatchedIndexes)

	assert.Empty(t, Filter("zzz", items))
}
