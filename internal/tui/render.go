package tui

import (
	"fmt"
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/tui/styles"
)

const maxBodyWidth = 80

// RenderDetails renders a detail page: header, meta line, overview and the
// resolved trailer
func RenderDetails(d domain.Details, inList bool, width int) string {
	if width <= 0 {
		width = maxBodyWidth
	}
	item := d.Item
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(styles.Truncate(item.Title, width)))
	b.WriteString("\n")
	switch {
	case d.Media.LogoURL != "" && !d.Media.LogoIsPoster:
		b.WriteString(styles.DimStyle.Render("Logo   " + d.Media.LogoURL))
		b.WriteString("\n")
	case d.Media.LogoURL != "":
		b.WriteString(styles.DimStyle.Render("Poster " + d.Media.LogoURL))
		b.WriteString("\n")
	}

	// Meta line: Year · Runtime · Genres
	var meta []string
	if year := item.Year(); year > 0 {
		meta = append(meta, fmt.Sprintf("%d", year))
	}
	if rt := item.FormattedRuntime(); rt != "" {
		meta = append(meta, rt)
	}
	if len(item.Genres) > 0 {
		meta = append(meta, strings.Join(item.Genres, ", "))
	}
	if len(meta) > 0 {
		b.WriteString(styles.SubtitleStyle.Render(strings.Join(meta, " · ")))
		b.WriteString("\n")
	}

	var status []string
	if rating := styles.RenderRating(item.VoteAverage); rating != "" {
		status = append(status, rating)
	}
	if inList {
		status = append(status, styles.BadgeStyle.Render("✓ My List"))
	} else {
		status = append(status, styles.DimBadgeStyle.Render("+ My List"))
	}
	b.WriteString(strings.Join(status, "   "))
	b.WriteString("\n")

	if item.Overview != "" {
		bodyWidth := min(width-2, maxBodyWidth)
		b.WriteString("\n")
		b.WriteString(styles.SubtitleStyle.Render(styles.WordWrap(item.Overview, bodyWidth)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderTrailer(d.Media.Trailer))

	return b.String()
}

func renderTrailer(t *domain.VideoCandidate) string {
	if t == nil || t.WatchURL() == "" {
		return styles.DimStyle.Render("No trailer available")
	}
	label := t.Type
	if t.Name != "" {
		label = t.Name
	}
	return styles.AccentStyle.Render("▶ "+label) + " " +
		styles.DimStyle.Render("("+t.Site+")") + "\n" +
		styles.LinkStyle.Render(t.WatchURL())
}

// renderRowItem renders one filtered row entry with matched characters
// highlighted
func renderRowItem(r search.FilterResult, d domain.Details, selected bool, width int) string {
	title := highlightMatches(r.Item.Title, r.MatchedIndexes)

	var suffix []string
	if year := r.Item.Year(); year > 0 {
		suffix = append(suffix, fmt.Sprintf("%d", year))
	}
	if d.Media.Trailer != nil {
		suffix = append(suffix, "▶")
	}
	line := title
	if len(suffix) > 0 {
		line += " " + styles.DimStyle.Render(strings.Join(suffix, " "))
	}

	style := styles.NormalItemStyle
	if selected {
		style = styles.SelectedItemStyle
	}
	return style.MaxWidth(width).Render(line)
}

// highlightMatches styles the characters at the matched byte offsets
func highlightMatches(title string, matched []int) string {
	if len(matched) == 0 {
		return title
	}
	set := make(map[int]bool, len(matched))
	for _, i := range matched {
		set[i] = true
	}

	var b strings.Builder
	for i, r := range title {
		if set[i] {
			b.WriteString(styles.MatchHighlightStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func helpKey(s string) string  { return styles.HelpKeyStyle.Render(s) }
func helpDesc(s string) string { return styles.HelpDescStyle.Render(s) }
