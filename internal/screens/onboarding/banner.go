package onboarding

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/schoolbuddy/internal/personas"
	"github.com/abhisek/schoolbuddy/internal/ui/theme"
)

const bannerArt = `╔═╗┌─┐┬ ┬┌─┐┌─┐┬    ╔╗ ┬ ┬┌┬┐┌┬┐┬ ┬
╚═╗│  ├─┤│ ││ ││    ╠╩╗│ │ ││ │││└┬┘
╚═╝└─┘┴ ┴└─┘└─┘┴─┘  ╚═╝└─┘─┴┘─┴┘ ┴ `

const bannerCompact = "S C H O O L B U D D Y"

// sparkle frames alternate around the pet parade
var sparkleFrames = []string{"✨", "⭐"}

// RenderBanner returns the title banner, compact below 44 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	if width < 44 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}

// petParade lines up every persona emoji between two sparkles.
func petParade(frame int) string {
	var emojis []string
	for _, p := range personas.All() {
		emojis = append(emojis, p.Emoji)
	}
	s := sparkleFrames[frame%len(sparkleFrames)]
	return s + "  " + strings.Join(emojis, " ") + "  " + s
}
