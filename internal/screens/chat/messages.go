package chat

import (
	"github.com/abhisek/schoolbuddy/internal/feedback"
	"github.com/abhisek/schoolbuddy/internal/history"
	"github.com/abhisek/schoolbuddy/internal/personas"
	"github.com/abhisek/schoolbuddy/internal/photo"
)

// loadedMsg carries the saved settings and transcript.
type loadedMsg struct {
	APIKey  string
	Grade   int
	Persona personas.Persona
	History []history.Message
	Err     error
}

// replyMsg is sent when a chat reply arrives.
type replyMsg struct {
	Text string
	Err  error
}

// photoLoadedMsg is sent when a photo has been read from disk.
type photoLoadedMsg struct {
	Capture *photo.Capture
	Err     error
}

// analysisMsg is sent when a writing analysis finishes.
type analysisMsg struct {
	Feedback *feedback.Feedback
	Err      error
}

// savedMsg confirms a history save.
type savedMsg struct {
	Err error
}

// resetDoneMsg is sent after every stored setting has been cleared.
type resetDoneMsg struct {
	Err error
}
