package search

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mozillazg/go-unidecode"
)

// maxYearDrift is how far apart two release years may be and still describe
// the same title (festival premiere vs. wide release).
const maxYearDrift = 1

// Normalize folds a title to lowercase ASCII words separated by single spaces.
// "Amélie", "AMELIE" and "amelie!" all normalize to "amelie".
func Normalize(title string) string {
	ascii := strings.ToLower(unidecode.Unidecode(title))
	fields := strings.FieldsFunc(ascii, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}

// MatchScore rates how well candidate matches title. Lower is better; a
// negative score means no match.
func MatchScore(title, candidate string) int {
	title, candidate = Normalize(title), Normalize(candidate)
	if title == "" || candidate == "" {
		return -1
	}

	// Exact match is best
	if title == candidate {
		return 0
	}

	// Prefix match is very good
	if strings.HasPrefix(candidate, title) || strings.HasPrefix(title, candidate) {
		return 10
	}

	// Contains match is good
	if strings.Contains(candidate, title) || strings.Contains(title, candidate) {
		return 50
	}

	// Fuzzy distance, bounded so unrelated titles do not match
	distance := fuzzy.LevenshteinDistance(title, candidate)
	limit := len(title) / 3
	if limit < 2 {
		limit = 2
	}
	if distance > limit {
		return -1
	}
	return 100 + distance
}

func yearsAgree(a, b int) bool {
	if a == 0 || b == 0 {
		return true
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= maxYearDrift
}

// BestMatch picks the search result most likely to be the same title as item
// under a different id. Results with item's own id, disagreeing years, or
// dissimilar titles are skipped.
func BestMatch(item domain.CatalogItem, results []domain.SearchResult) (domain.SearchResult, bool) {
	bestIdx, bestScore := -1, 0
	itemYear := item.Year()

	for i, r := range results {
		if r.ID == item.ID {
			continue
		}
		candidateYear := domain.CatalogItem{ReleaseDate: r.ReleaseDate}.Year()
		if !yearsAgree(itemYear, candidateYear) {
			continue
		}
		score := MatchScore(item.Title, r.Title)
		if score < 0 {
			continue
		}
		if itemYear != 0 && candidateYear == itemYear {
			score -= 5
		}
		if bestIdx < 0 || score < bestScore {
			bestIdx, bestScore = i, score
		}
	}

	if bestIdx < 0 {
		return domain.SearchResult{}, false
	}
	return results[bestIdx], true
}
