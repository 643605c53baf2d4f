// Package chat is the main screen: a conversation with the pet buddy that
// also takes photos of writing for feedback.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"github.com/abhisek/schoolbuddy/internal/buddy"
	"github.com/abhisek/schoolbuddy/internal/curriculum"
	"github.com/abhisek/schoolbuddy/internal/errclass"
	"github.com/abhisek/schoolbuddy/internal/feedback"
	"github.com/abhisek/schoolbuddy/internal/history"
	"github.com/abhisek/schoolbuddy/internal/i18n"
	"github.com/abhisek/schoolbuddy/internal/llm"
	"github.com/abhisek/schoolbuddy/internal/personas"
	"github.com/abhisek/schoolbuddy/internal/photo"
	"github.com/abhisek/schoolbuddy/internal/prefs"
	"github.com/abhisek/schoolbuddy/internal/router"
	"github.com/abhisek/schoolbuddy/internal/screen"
	"github.com/abhisek/schoolbuddy/internal/ui/components"
	"github.com/abhisek/schoolbuddy/internal/ui/layout"
)

// Commands typed into the input.
const (
	cmdPhoto   = "/photo"
	cmdReset   = "/reset"
	cmdHistory = "/history"
)

// Buddy is the model-facing service the screen talks to.
type Buddy interface {
	AnalyzeWriting(ctx context.Context, in buddy.AnalyzeInput) (*feedback.Feedback, error)
	Chat(ctx context.Context, in buddy.ChatInput) (string, error)
}

// Deps are the collaborators of the chat screen.
type Deps struct {
	Buddy  Buddy
	Prefs  *prefs.Prefs
	Logger zerolog.Logger

	// Onboarding builds the setup screen shown after a reset.
	Onboarding func() screen.Screen

	// PastWork builds the screen listing earlier analyses.
	PastWork func() screen.Screen
}

// Screen is the chat screen.
type Screen struct {
	ctx  context.Context
	deps Deps

	apiKey  string
	grade   int
	persona personas.Persona
	msgs    []history.Message

	input        components.TextInput
	vp           viewport.Model
	spin         spinner.Model
	follow       bool
	loaded       bool
	loading      bool
	confirmReset bool
	notice       string
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.StatusProvider = (*Screen)(nil)

// New creates the chat screen.
func New(ctx context.Context, deps Deps) *Screen {
	return &Screen{
		ctx:     ctx,
		deps:    deps,
		grade:   curriculum.BaselineGrade,
		persona: personas.ByID(""),
		input:   components.NewTextInput(i18n.T(ctx, "chat.placeholder"), false, 2000),
		vp:      viewport.New(),
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		follow:  true,
	}
}

func (s *Screen) Title() string { return "Chat" }

func (s *Screen) Status() string {
	return fmt.Sprintf("%s %s · Grade %d", s.persona.Emoji, s.persona.Name, s.grade)
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.confirmReset {
		return []layout.KeyHint{
			{Key: "/reset", Description: "Confirm start over"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "/photo <file>", Description: "Check writing"},
		{Key: "/history", Description: "Past work"},
		{Key: "/reset", Description: "Start over"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
	}
}

// Messages returns the transcript shown on screen.
func (s *Screen) Messages() []history.Message { return s.msgs }

// Loading reports whether a request is in flight.
func (s *Screen) Loading() bool { return s.loading }

func (s *Screen) Init() tea.Cmd {
	return tea.Batch(s.load(), s.input.Init())
}

func (s *Screen) load() tea.Cmd {
	return func() tea.Msg {
		ctx := s.ctx
		key, err := s.deps.Prefs.APIKey(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		grade, err := s.deps.Prefs.Grade(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		id, err := s.deps.Prefs.PersonaID(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		msgs, err := s.deps.Prefs.History(ctx)
		if err != nil {
			// A damaged transcript starts over rather than blocking the chat.
			s.deps.Logger.Warn().Err(err).Msg("discarding saved chat history")
		}
		return loadedMsg{APIKey: key, Grade: grade, Persona: personas.ByID(id), History: msgs}
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return s.handleLoaded(msg)

	case replyMsg:
		s.loading = false
		if msg.Err != nil {
			return s, s.appendError(msg.Err, false)
		}
		return s, s.appendMessage(history.BotText(clean(msg.Text)))

	case photoLoadedMsg:
		return s.handlePhoto(msg)

	case analysisMsg:
		s.loading = false
		if msg.Err != nil {
			return s, s.appendError(msg.Err, true)
		}
		return s, s.appendMessage(history.BotFeedback(cleanFeedback(msg.Feedback)))

	case savedMsg:
		if msg.Err != nil {
			s.deps.Logger.Warn().Err(msg.Err).Msg("save chat history")
		}
		return s, nil

	case resetDoneMsg:
		if msg.Err != nil {
			s.notice = msg.Err.Error()
			return s, nil
		}
		next := s.deps.Onboarding()
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		return s.handleKey(msg)

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		s.vp, cmd = s.vp.Update(msg)
		s.follow = s.vp.AtBottom()
		return s, cmd
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Screen) handleLoaded(msg loadedMsg) (screen.Screen, tea.Cmd) {
	s.loaded = true
	if msg.Err != nil {
		s.notice = msg.Err.Error()
		return s, nil
	}
	s.apiKey = msg.APIKey
	s.grade = msg.Grade
	s.persona = msg.Persona
	if len(msg.History) > 0 {
		s.msgs = msg.History
		return s, nil
	}
	s.msgs = []history.Message{history.Welcome(s.ctx, s.persona, s.grade)}
	return s, s.save()
}

func (s *Screen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		s.vp, cmd = s.vp.Update(msg)
		s.follow = s.vp.AtBottom()
		return s, cmd
	case "esc":
		if s.confirmReset {
			s.confirmReset = false
			s.notice = ""
		}
		return s, nil
	case "enter":
		return s.submit()
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Screen) submit() (screen.Screen, tea.Cmd) {
	text := strings.TrimSpace(s.input.Value())
	if text == "" || s.loading || !s.loaded {
		return s, nil
	}
	s.input.Reset()

	word, rest, _ := strings.Cut(text, " ")
	switch strings.ToLower(word) {
	case cmdReset:
		if !s.confirmReset {
			s.confirmReset = true
			s.notice = i18n.T(s.ctx, "chat.reset_confirm")
			return s, nil
		}
		return s, s.reset()
	case cmdHistory:
		s.confirmReset = false
		if s.deps.PastWork == nil {
			return s, nil
		}
		next := s.deps.PastWork()
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	case cmdPhoto:
		s.confirmReset = false
		s.notice = ""
		s.loading = true
		path := strings.TrimSpace(rest)
		return s, tea.Batch(loadPhoto(path), s.spin.Tick)
	}

	s.confirmReset = false
	s.notice = ""
	prior := s.msgs
	s.loading = true
	save := s.appendMessage(history.UserText(text))
	return s, tea.Batch(save, s.sendChat(text, prior), s.spin.Tick)
}

func loadPhoto(path string) tea.Cmd {
	return func() tea.Msg {
		c, err := photo.Load(path)
		return photoLoadedMsg{Capture: c, Err: err}
	}
}

func (s *Screen) handlePhoto(msg photoLoadedMsg) (screen.Screen, tea.Cmd) {
	if errors.Is(msg.Err, photo.ErrCanceled) {
		s.loading = false
		s.notice = "Add the path to your photo, like /photo ~/Pictures/essay.jpg"
		return s, nil
	}
	if msg.Err != nil {
		s.loading = false
		s.deps.Logger.Warn().Err(msg.Err).Msg("load photo")
		return s, s.appendMessage(history.BotError(i18n.T(s.ctx, "error.photo")))
	}

	save := s.appendMessage(history.UserPhoto(s.ctx, msg.Capture.URI))
	in := buddy.AnalyzeInput{
		APIKey:      s.apiKey,
		ImageBase64: msg.Capture.Base64,
		MIMEType:    msg.Capture.MIMEType,
		Grade:       s.grade,
		Subject:     curriculum.SubjectEnglish,
		Persona:     s.persona.ID,
	}
	ctx := s.ctx
	analyze := func() tea.Msg {
		fb, err := s.deps.Buddy.AnalyzeWriting(ctx, in)
		return analysisMsg{Feedback: fb, Err: err}
	}
	return s, tea.Batch(save, analyze)
}

// sendChat asks the buddy for a reply. Earlier text exchanges follow the
// persona opening so the model keeps the thread.
func (s *Screen) sendChat(text string, prior []history.Message) tea.Cmd {
	var hist []llm.Message
	if turns := history.Turns(prior); len(turns) > 0 {
		hist = append(buddy.SeedHistory(s.grade, s.persona.ID), turns...)
	}
	in := buddy.ChatInput{
		APIKey:  s.apiKey,
		Message: text,
		Grade:   s.grade,
		Persona: s.persona.ID,
		History: hist,
	}
	ctx := s.ctx
	return func() tea.Msg {
		reply, err := s.deps.Buddy.Chat(ctx, in)
		return replyMsg{Text: reply, Err: err}
	}
}

func (s *Screen) appendError(err error, isImage bool) tea.Cmd {
	cat := errclass.Classify(err)
	s.deps.Logger.Warn().Err(err).Str("category", cat.String()).Bool("image", isImage).Msg("buddy request failed")
	return s.appendMessage(history.BotError(errclass.Message(s.ctx, cat, isImage)))
}

// appendMessage adds m to the transcript and returns the save command.
func (s *Screen) appendMessage(m history.Message) tea.Cmd {
	s.msgs = append(s.msgs, m)
	s.follow = true
	return s.save()
}

func (s *Screen) save() tea.Cmd {
	msgs := make([]history.Message, len(s.msgs))
	copy(msgs, s.msgs)
	ctx := s.ctx
	return func() tea.Msg {
		return savedMsg{Err: s.deps.Prefs.SaveHistory(ctx, msgs)}
	}
}

func (s *Screen) reset() tea.Cmd {
	s.confirmReset = false
	ctx := s.ctx
	return func() tea.Msg {
		return resetDoneMsg{Err: s.deps.Prefs.ClearAll(ctx)}
	}
}

func cleanFeedback(fb *feedback.Feedback) *feedback.Feedback {
	out := *fb
	out.OverallEncouragement = clean(fb.OverallEncouragement)
	out.FunFact = clean(fb.FunFact)
	out.NextChallenge = clean(fb.NextChallenge)
	out.Criteria = make([]feedback.CriterionFeedback, len(fb.Criteria))
	for i, c := range fb.Criteria {
		c.Name = clean(c.Name)
		c.Feedback = clean(c.Feedback)
		c.Tip = clean(c.Tip)
		out.Criteria[i] = c
	}
	return &out
}

func (s *Screen) View(width, height int) string {
	inputBox := s.renderInput(width)
	status := s.renderStatus(width)
	vpHeight := height - lipgloss.Height(inputBox) - lipgloss.Height(status)
	if vpHeight < 1 {
		vpHeight = 1
	}

	s.vp.SetWidth(width)
	s.vp.SetHeight(vpHeight)
	s.vp.SetContent(s.renderTranscript(width))
	if s.follow {
		s.vp.GotoBottom()
	}

	return lipgloss.JoinVertical(lipgloss.Left, s.vp.View(), status, inputBox)
}
