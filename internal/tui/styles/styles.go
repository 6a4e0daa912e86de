package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	Marquee    = lipgloss.Color("#E5A00D")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Blue       = lipgloss.Color("#3B82F6")
)

// Borders
var (
	ActiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Marquee)

	InactiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Marquee)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	LinkStyle = lipgloss.NewStyle().
			Foreground(Blue).
			Underline(true)
)

// Panel styles
var (
	DetailsStyle = lipgloss.NewStyle().
			Padding(1, 2)

	RowStyle = lipgloss.NewStyle().
			Padding(1, 2)
)

// List item styles
var (
	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(SlateLight).
				Padding(0, 1)

	NormalItemStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Padding(0, 1)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Marquee)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Badge styles
var (
	BadgeStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Marquee).
			Padding(0, 1)

	DimBadgeStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(SlateLight).
			Padding(0, 1)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Marquee)
)

// Filter styles
var (
	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(Marquee).
				Bold(true)

	MatchHighlightStyle = lipgloss.NewStyle().
				Foreground(Marquee).
				Bold(true)
)

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// WordWrap breaks text into lines no wider than width
func WordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(text) {
		wordLen := len([]rune(word))
		if lineLen > 0 && lineLen+wordLen+1 > width {
			result.WriteString("\n")
			lineLen = 0
		}
		if lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}
		result.WriteString(word)
		lineLen += wordLen
	}
	return result.String()
}

// RenderRating renders a vote average colored by how well it scored
func RenderRating(vote float64) string {
	if vote <= 0 {
		return ""
	}
	var color lipgloss.Color
	switch {
	case vote >= 7:
		color = Green
	case vote >= 5:
		color = Marquee
	default:
		color = Red
	}
	return lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("★ %.1f", vote))
}
