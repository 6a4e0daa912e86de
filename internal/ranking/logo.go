package ranking

import (
	"math"

	"github.com/mmcdole/marquee/internal/domain"
)

// Logo filter bounds
const (
	MinLogoAspect = 1.5
	MaxLogoAspect = 4.0
	MinLogoWidth  = 400
	MinLogoHeight = 100

	idealLogoAspect = 2.5
)

// LogoUsable reports whether a logo passes the shape filter. Candidates that
// fail are discarded whatever their votes.
func LogoUsable(l domain.LogoCandidate) bool {
	return l.AspectRatio >= MinLogoAspect && l.AspectRatio <= MaxLogoAspect &&
		l.Width >= MinLogoWidth && l.Height >= MinLogoHeight
}

// ScoreLogo scores a usable logo: votes dominate, width is capped at 1000px,
// and distance from a 2.5:1 banner shape costs points.
func ScoreLogo(l domain.LogoCandidate) float64 {
	width := math.Min(float64(l.Width), 1000)
	return l.VoteAverage*10 + width/100 - math.Abs(l.AspectRatio-idealLogoAspect)*5
}

// BestLogo returns the highest-scoring usable logo, or nil.
func BestLogo(candidates []domain.LogoCandidate) *domain.LogoCandidate {
	bestIdx := -1
	var bestScore float64
	for i := range candidates {
		if !LogoUsable(candidates[i]) {
			continue
		}
		score := ScoreLogo(candidates[i])
		if bestIdx < 0 || score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestIdx < 0 {
		return nil
	}
	winner := candidates[bestIdx]
	return &winner
}
