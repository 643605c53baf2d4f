package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/schoolbuddy/internal/ui/theme"
)

// StepDots renders onboarding progress as dots, e.g. "● ● ○  2/3".
func StepDots(current, total int) string {
	if total <= 0 {
		return ""
	}
	if current < 0 {
		current = 0
	}
	if current > total {
		current = total
	}
	dots := make([]string, total)
	for i := range dots {
		if i < current {
			dots[i] = lipgloss.NewStyle().Foreground(theme.Accent).Render("●")
		} else {
			dots[i] = lipgloss.NewStyle().Foreground(theme.Border).Render("○")
		}
	}
	return strings.Join(dots, " ") + theme.Hint.Render(fmt.Sprintf("  %d/%d", current, total))
}
