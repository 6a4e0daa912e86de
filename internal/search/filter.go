package search

import (
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/sahilm/fuzzy"
)

// FilterResult is a catalog item that matched a filter query
type FilterResult struct {
	Item           domain.CatalogItem
	MatchedIndexes []int // Character positions that matched (for highlighting)
	Score          int   // Higher is better
}

// itemIndex implements sahilm/fuzzy.Source over normalized titles
type itemIndex struct {
	items  []domain.CatalogItem
	titles []string
}

func (idx *itemIndex) String(i int) string { return idx.titles[i] }
func (idx *itemIndex) Len() int            { return len(idx.items) }

// Filter narrows a row to the items whose titles fuzzily match query, best
// first. An empty query returns every item in its original order.
func Filter(query string, items []domain.CatalogItem) []FilterResult {
	query = strings.TrimSpace(query)
	if query == "" {
		results := make([]FilterResult, len(items))
		for i, item := range items {
			results[i] = FilterResult{Item: item}
		}
		return results
	}

	idx := &itemIndex{items: items, titles: make([]string, len(items))}
	for i, item := range items {
		idx.titles[i] = strings.ToLower(item.Title)
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), idx)
	results := make([]FilterResult, len(matches))
	for i, m := range matches {
		results[i] = FilterResult{
			Item:           items[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}
