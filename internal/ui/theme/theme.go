package theme

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Palette: warm purple with amber stars and teal for good news.
var (
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#14B8A6")
	Error     = lipgloss.Color("#FB7185") // Coral
	Text      = lipgloss.Color("#F5F3FF")
	TextDim   = lipgloss.Color("#9CA3AF")
	BgDark    = lipgloss.Color("#1E1B4B") // Indigo night
	BgCard    = lipgloss.Color("#312E81")
	Border    = lipgloss.Color("#4C1D95")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Chat bubbles
var (
	UserBubble = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(Primary).
			Padding(0, 1)

	BotBubble = lipgloss.NewStyle().
			Foreground(Text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	ErrorBubble = lipgloss.NewStyle().
			Foreground(Text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Error).
			Padding(0, 1)

	FeedbackCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(0, 1)

	SectionHeading = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)
)

// Buttons
var (
	ButtonActive = lipgloss.NewStyle().
			Background(Primary).
			Foreground(Text).
			Bold(true).
			Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
			Background(BgCard).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2)
)

// MaxStars is the length of a star rating row.
const MaxStars = 5

// Stars renders count filled stars padded with hollow ones to MaxStars.
func Stars(count int) string {
	if count < 0 {
		count = 0
	}
	if count > MaxStars {
		count = MaxStars
	}
	return strings.Repeat("⭐", count) + strings.Repeat("☆", MaxStars-count)
}

// criterionIcons maps rubric criterion ids to their card icon.
var criterionIcons = map[string]string{
	"ideas_organization": "💡",
	"voice_style":        "🎨",
	"conventions":        "📏",
	"reflection":         "🤔",
	"critical_thinking":  "🧠",
	"critical_literacy":  "🌍",
}

// CriterionIcon returns the icon for a criterion id, or a clipboard.
func CriterionIcon(id string) string {
	if icon, ok := criterionIcons[id]; ok {
		return icon
	}
	return "📋"
}
