// Package pastwork lists the writing analyses kept in the saved chat.
package pastwork

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/schoolbuddy/internal/history"
	"github.com/abhisek/schoolbuddy/internal/prefs"
	"github.com/abhisek/schoolbuddy/internal/router"
	"github.com/abhisek/schoolbuddy/internal/screen"
	"github.com/abhisek/schoolbuddy/internal/ui/layout"
	"github.com/abhisek/schoolbuddy/internal/ui/theme"
)

// Entry is one analysis with the photo that prompted it.
type Entry struct {
	When          time.Time
	Stars         int
	Encouragement string
	Photo         string
}

type loadedMsg struct {
	Entries []Entry
	Err     error
}

// Screen shows past analyses, newest first.
type Screen struct {
	ctx      context.Context
	prefs    *prefs.Prefs
	entries  []Entry
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the past work screen.
func New(ctx context.Context, p *prefs.Prefs) *Screen {
	return &Screen{ctx: ctx, prefs: p, expanded: make(map[int]bool)}
}

// Entries extracts the analyses from a transcript, newest first.
func Entries(msgs []history.Message) []Entry {
	var out []Entry
	photo := ""
	for _, m := range msgs {
		if m.Type == history.TypeUser {
			photo = m.ImageURI
			continue
		}
		if m.Feedback == nil {
			continue
		}
		out = append(out, Entry{
			When:          m.Timestamp,
			Stars:         m.Feedback.OverallStars,
			Encouragement: m.Feedback.OverallEncouragement,
			Photo:         photo,
		})
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (s *Screen) Init() tea.Cmd {
	return func() tea.Msg {
		msgs, err := s.prefs.History(s.ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		return loadedMsg{Entries: Entries(msgs)}
	}
}

func (s *Screen) Title() string {
	return "Past Work"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.entries = msg.Entries
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.entries)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\n  Loading past work...")
	}
	if len(s.entries) == 0 {
		return center.Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No feedback yet. Share a photo of your writing with /photo!")
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, e := range s.entries {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "▸ "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		line := fmt.Sprintf("%s%s  %s  %s", prefix, e.When.Local().Format("Jan 02, 2006 3:04PM"), theme.Stars(e.Stars), firstLine(e.Encouragement, 40))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := e.Encouragement
			if e.Photo != "" {
				detail += "\n" + theme.Hint.Render("📸 "+e.Photo)
			}
			card := theme.FeedbackCard.Width(min(width-4, 80)).Render(detail)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// firstLine shortens s to its first line, at most n runes.
func firstLine(s string, n int) string {
	s, _, cut := strings.Cut(s, "\n")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	if cut {
		return s + "…"
	}
	return s
}
