// Package ranking scores trailer and logo candidates. Everything here is pure:
// same input, same winner.
package ranking

import (
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
)

// Tier scores, highest first.
const (
	ScoreOfficialTrailerEnglish = 100
	ScoreOfficialTrailer        = 80
	ScoreTeaserOrClipEnglish    = 60
	ScoreOfficialVideo          = 40
	ScoreAnyVideo               = 20
)

var allowedSites = map[string]struct{}{
	"youtube":     {},
	"vimeo":       {},
	"dailymotion": {},
}

// AllowedSite reports whether the video host can be embedded.
func AllowedSite(site string) bool {
	_, ok := allowedSites[strings.ToLower(strings.TrimSpace(site))]
	return ok
}

// IsTrailerType reports whether the video type is a trailer proper.
func IsTrailerType(t string) bool {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "trailer", "official trailer":
		return true
	}
	return false
}

func isTeaserOrClip(t string) bool {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "teaser", "clip":
		return true
	}
	return false
}

func englishOrUnset(lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	return lang == "" || lang == "en"
}

// ScoreTrailer places v in its highest matching tier. 0 means excluded.
func ScoreTrailer(v domain.VideoCandidate) int {
	if !AllowedSite(v.Site) {
		return 0
	}
	trailer := IsTrailerType(v.Type)
	english := englishOrUnset(v.Language)

	switch {
	case trailer && v.Official && english && strings.TrimSpace(v.Key) != "":
		return ScoreOfficialTrailerEnglish
	case trailer && v.Official:
		return ScoreOfficialTrailer
	case isTeaserOrClip(v.Type) && english:
		return ScoreTeaserOrClipEnglish
	case v.Official:
		return ScoreOfficialVideo
	default:
		return ScoreAnyVideo
	}
}

// better reports whether a outranks b on the (score, publishedAt, voteCount)
// tuple. A known publish date beats an unknown one.
func better(a domain.VideoCandidate, aScore int, b domain.VideoCandidate, bScore int) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	aDated, bDated := !a.PublishedAt.IsZero(), !b.PublishedAt.IsZero()
	switch {
	case aDated && bDated && !a.PublishedAt.Equal(b.PublishedAt):
		return a.PublishedAt.After(b.PublishedAt)
	case aDated != bDated:
		return aDated
	}
	return a.VoteCount > b.VoteCount
}

// BestTrailer returns the winning candidate, or nil when nothing scores.
// Ties after every key go to the earliest candidate in input order.
func BestTrailer(candidates []domain.VideoCandidate) *domain.VideoCandidate {
	bestIdx, bestScore := -1, 0
	for i := range candidates {
		score := ScoreTrailer(candidates[i])
		if score == 0 {
			continue
		}
		if bestIdx < 0 || better(candidates[i], score, candidates[bestIdx], bestScore) {
			bestIdx, bestScore = i, score
		}
	}
	if bestIdx < 0 {
		return nil
	}
	winner := candidates[bestIdx]
	return &winner
}

// TrailersOnly keeps trailer-type videos on an allowed host. Fallback search
// ranks only these.
func TrailersOnly(candidates []domain.VideoCandidate) []domain.VideoCandidate {
	out := make([]domain.VideoCandidate, 0, len(candidates))
	for _, v := range candidates {
		if IsTrailerType(v.Type) && AllowedSite(v.Site) {
			out = append(out, v)
		}
	}
	return out
}
