// Package history models the chat transcript shown to the student and kept
// between runs.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/schoolbuddy/internal/feedback"
	"github.com/abhisek/schoolbuddy/internal/i18n"
	"github.com/abhisek/schoolbuddy/internal/llm"
	"github.com/abhisek/schoolbuddy/internal/personas"
)

// MaxSaved is the number of most recent messages persisted.
const MaxSaved = 50

// WelcomeID marks the persona welcome message.
const WelcomeID = "welcome"

// Type is who wrote a message.
type Type string

const (
	TypeUser Type = "user"
	TypeBot  Type = "bot"
)

// Message is one entry in the transcript.
type Message struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Text      string    `json:"text"`
	ImageURI  string    `json:"imageUri,omitempty"`
	IsError   bool      `json:"isError,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	Feedback *feedback.Summary `json:"feedback,omitempty"`

	// Full is the complete analysis for rendering. It is never persisted.
	Full *feedback.Feedback `json:"-"`
}

var now = time.Now

func newMessage(t Type, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Type:      t,
		Text:      text,
		Timestamp: now().UTC(),
	}
}

// UserText is a typed question from the student.
func UserText(text string) Message {
	return newMessage(TypeUser, text)
}

// UserPhoto is the student sharing a photo of their writing.
func UserPhoto(ctx context.Context, uri string) Message {
	m := newMessage(TypeUser, i18n.T(ctx, "chat.photo_sent"))
	m.ImageURI = uri
	return m
}

// BotText is a plain chat reply.
func BotText(text string) Message {
	return newMessage(TypeBot, text)
}

// BotFeedback carries a writing analysis. The message text is the overall
// encouragement.
func BotFeedback(fb *feedback.Feedback) Message {
	m := newMessage(TypeBot, fb.OverallEncouragement)
	s := fb.Summary()
	m.Feedback = &s
	m.Full = fb
	return m
}

// BotError is a friendly failure message.
func BotError(text string) Message {
	m := newMessage(TypeBot, text)
	m.IsError = true
	return m
}

// Welcome is the first bot message of a fresh transcript.
func Welcome(ctx context.Context, p personas.Persona, grade int) Message {
	m := newMessage(TypeBot, i18n.Td(ctx, "chat.welcome", map[string]any{
		"Greeting": p.Greeting,
		"Name":     p.Name,
		"Emoji":    p.Emoji,
		"Grade":    grade,
	}))
	m.ID = WelcomeID
	return m
}

// Reduce returns a copy of msgs holding only the feedback summary of each
// analysis.
func Reduce(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		if m.Full != nil && m.Feedback == nil {
			s := m.Full.Summary()
			m.Feedback = &s
		}
		m.Full = nil
		out[i] = m
	}
	return out
}

// Trim returns the last n messages of msgs.
func Trim(msgs []Message, n int) []Message {
	if n <= 0 {
		return []Message{}
	}
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

// Turns converts the text exchanges of msgs into model turns. Photos,
// analyses, errors and the welcome message are left out.
func Turns(msgs []Message) []llm.Message {
	var turns []llm.Message
	for _, m := range msgs {
		if m.IsError || m.ImageURI != "" || m.Feedback != nil || m.Full != nil || m.ID == WelcomeID {
			continue
		}
		switch m.Type {
		case TypeUser:
			turns = append(turns, llm.UserText(m.Text))
		case TypeBot:
			turns = append(turns, llm.AssistantText(m.Text))
		}
	}
	return turns
}
