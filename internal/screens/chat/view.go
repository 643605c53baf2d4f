package chat

import (
	"context"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/schoolbuddy/internal/feedback"
	"github.com/abhisek/schoolbuddy/internal/history"
	"github.com/abhisek/schoolbuddy/internal/i18n"
	"github.com/abhisek/schoolbuddy/internal/ui/layout"
	"github.com/abhisek/schoolbuddy/internal/ui/theme"
)

// bubbleWidth is the widest a chat bubble grows.
func bubbleWidth(width int) int {
	w := width * 3 / 4
	if layout.IsCompactWidth(width) {
		w = width - 4
	}
	if w > 90 {
		w = 90
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (s *Screen) renderTranscript(width int) string {
	if !s.loaded {
		return theme.Hint.Render("\n  Opening your notebook...")
	}

	bw := bubbleWidth(width)
	var blocks []string
	for _, m := range s.msgs {
		blocks = append(blocks, s.renderMessage(m, width, bw))
	}
	if s.loading {
		thinking := s.spin.View() + " " + i18n.Td(s.ctx, "chat.thinking", map[string]any{"Name": s.persona.Name})
		blocks = append(blocks, theme.Hint.Render("  "+thinking))
	}
	return strings.Join(blocks, "\n\n")
}

func (s *Screen) renderMessage(m history.Message, width, bw int) string {
	if m.Type == history.TypeUser {
		text := m.Text
		if m.ImageURI != "" {
			text += "\n" + theme.Hint.Render(m.ImageURI)
		}
		bubble := theme.UserBubble.Width(min(bw, lipgloss.Width(text)+2)).Render(text)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble)
	}

	avatar := s.persona.Emoji + " "
	switch {
	case m.IsError:
		return avatar + theme.ErrorBubble.Width(bw).Render(m.Text)
	case m.Full != nil:
		return avatar + theme.FeedbackCard.Width(bw).Render(RenderFeedbackCard(s.ctx, m.Full))
	case m.Feedback != nil:
		return avatar + theme.FeedbackCard.Width(bw).Render(RenderSummary(*m.Feedback))
	}
	return avatar + theme.BotBubble.Width(bw).Render(m.Text)
}

// RenderSummary renders the reduced feedback kept in saved history.
func RenderSummary(s feedback.Summary) string {
	return theme.Stars(s.OverallStars) + "\n" + s.OverallEncouragement
}

// RenderFeedbackCard renders a full analysis: overall stars, one section
// per criterion, then the fun fact and next challenge.
func RenderFeedbackCard(ctx context.Context, fb *feedback.Feedback) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Render(theme.Stars(fb.OverallStars)))
	b.WriteString("\n")
	b.WriteString(fb.OverallEncouragement)

	if len(fb.Criteria) > 0 {
		b.WriteString("\n\n")
		b.WriteString(theme.SectionHeading.Render(i18n.T(ctx, "feedback.detailed")))
		for _, c := range fb.Criteria {
			b.WriteString("\n\n")
			b.WriteString(fmt.Sprintf("%s %s  %s", theme.CriterionIcon(c.ID), lipgloss.NewStyle().Bold(true).Render(c.Name), theme.Stars(c.Stars)))
			if c.Feedback != "" {
				b.WriteString("\n" + c.Feedback)
			}
			if c.Tip != "" {
				b.WriteString("\n" + theme.Hint.Render(i18n.T(ctx, "feedback.tip")+" "+c.Tip))
			}
		}
	}

	if fb.FunFact != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.SectionHeading.Render(i18n.T(ctx, "feedback.fun_fact")))
		b.WriteString("\n" + fb.FunFact)
	}
	if fb.NextChallenge != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.SectionHeading.Render(i18n.T(ctx, "feedback.next_challenge")))
		b.WriteString("\n" + fb.NextChallenge)
	}
	return b.String()
}

func (s *Screen) renderStatus(width int) string {
	if s.notice == "" {
		return ""
	}
	return lipgloss.NewStyle().Width(width).Foreground(theme.Accent).Render("  " + s.notice)
}

func (s *Screen) renderInput(width int) string {
	s.input.SetWidth(max(width-8, 10))
	style := lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary)
	if s.loading {
		style = style.BorderForeground(theme.Border)
	}
	return style.Render(s.input.View())
}
