// Package onboarding is the first-run flow: pick a pet, pick a grade and
// enter an API key.
package onboarding

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/schoolbuddy/internal/curriculum"
	"github.com/abhisek/schoolbuddy/internal/i18n"
	"github.com/abhisek/schoolbuddy/internal/personas"
	"github.com/abhisek/schoolbuddy/internal/prefs"
	"github.com/abhisek/schoolbuddy/internal/router"
	"github.com/abhisek/schoolbuddy/internal/screen"
	"github.com/abhisek/schoolbuddy/internal/ui/components"
	"github.com/abhisek/schoolbuddy/internal/ui/layout"
	"github.com/abhisek/schoolbuddy/internal/ui/theme"
)

const tickInterval = 400 * time.Millisecond

// Step is a page of the onboarding flow.
type Step int

const (
	StepIntro Step = iota
	StepPet
	StepGrade
	StepAPIKey
)

const totalSteps = 3

type tickMsg time.Time

// prefsLoadedMsg carries the saved choices used to preselect the menus.
type prefsLoadedMsg struct {
	PersonaID string
	Grade     int
	HasKey    bool
}

// savedMsg reports that the choices were persisted.
type savedMsg struct {
	Err error
}

// Screen walks the student through first-run setup and then hands over to
// the chat screen built by next.
type Screen struct {
	ctx   context.Context
	prefs *prefs.Prefs
	next  func() screen.Screen

	step      Step
	pets      components.Menu
	grades    components.Menu
	keyInput  components.TextInput
	start     components.Button
	personaID string
	grade     int
	hasKey    bool
	frame     int
	saving    bool
	errMsg    string
	done      bool
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the onboarding screen.
func New(ctx context.Context, p *prefs.Prefs, next func() screen.Screen) *Screen {
	s := &Screen{
		ctx:       ctx,
		prefs:     p,
		next:      next,
		personaID: personas.DefaultID,
		grade:     curriculum.BaselineGrade,
		keyInput:  components.NewTextInput("AIza...", true, 200),
	}
	s.start = components.NewButton(i18n.T(ctx, "onboarding.start"), true, func() tea.Cmd {
		s.step = StepPet
		return nil
	})
	s.pets = s.petMenu()
	s.grades = s.gradeMenu()
	return s
}

func (s *Screen) petMenu() components.Menu {
	var items []components.MenuItem
	for _, p := range personas.All() {
		items = append(items, components.MenuItem{
			Label: p.Emoji + " " + p.Name,
			Hint:  p.Tagline,
			Action: func() tea.Cmd {
				s.personaID = p.ID
				s.step = StepGrade
				return nil
			},
		})
	}
	return components.NewMenu(items)
}

func (s *Screen) gradeMenu() components.Menu {
	var items []components.MenuItem
	for _, g := range curriculum.SupportedGrades() {
		items = append(items, components.MenuItem{
			Label: fmt.Sprintf("Grade %d", g),
			Action: func() tea.Cmd {
				s.grade = g
				s.step = StepAPIKey
				return s.keyInput.Focus()
			},
		})
	}
	return components.NewMenu(items)
}

func (s *Screen) Title() string { return "" }

// Step returns the current page.
func (s *Screen) Step() Step { return s.step }

func (s *Screen) Init() tea.Cmd {
	return tea.Batch(s.loadPrefs(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (s *Screen) loadPrefs() tea.Cmd {
	return func() tea.Msg {
		id, _ := s.prefs.PersonaID(s.ctx)
		grade, _ := s.prefs.Grade(s.ctx)
		key, _ := s.prefs.APIKey(s.ctx)
		return prefsLoadedMsg{PersonaID: id, Grade: grade, HasKey: key != ""}
	}
}

func (s *Screen) KeyHints() []layout.KeyHint {
	switch s.step {
	case StepIntro:
		return []layout.KeyHint{{Key: "Enter", Description: "Start"}, {Key: "Ctrl+C", Description: "Quit"}}
	case StepAPIKey:
		return []layout.KeyHint{{Key: "Enter", Description: "Finish"}, {Key: "Esc", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		s.frame++
		if s.step == StepIntro {
			return s, tick()
		}
		return s, nil

	case prefsLoadedMsg:
		s.hasKey = msg.HasKey
		for i, p := range personas.All() {
			if p.ID == msg.PersonaID {
				s.pets.Select(i)
			}
		}
		for i, g := range curriculum.SupportedGrades() {
			if g == msg.Grade {
				s.grades.Select(i)
			}
		}
		return s, nil

	case savedMsg:
		s.saving = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, s.finish()

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.step == StepAPIKey {
		var cmd tea.Cmd
		s.keyInput, cmd = s.keyInput.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.saving {
		return s, nil
	}
	if msg.String() == "esc" {
		if s.step > StepIntro {
			s.step--
			s.errMsg = ""
		}
		return s, nil
	}

	var cmd tea.Cmd
	switch s.step {
	case StepIntro:
		s.start, cmd = s.start.Update(msg)
		if cmd == nil && s.step == StepIntro && msg.String() == "space" {
			s.step = StepPet
		}
	case StepPet:
		s.pets, cmd = s.pets.Update(msg)
	case StepGrade:
		s.grades, cmd = s.grades.Update(msg)
	case StepAPIKey:
		if msg.String() == "enter" {
			return s.submit()
		}
		s.keyInput, cmd = s.keyInput.Update(msg)
	}
	return s, cmd
}

func (s *Screen) submit() (screen.Screen, tea.Cmd) {
	key := strings.TrimSpace(s.keyInput.Value())
	if key == "" && !s.hasKey {
		s.errMsg = i18n.T(s.ctx, "onboarding.api_key_required")
		return s, nil
	}
	s.errMsg = ""
	s.saving = true

	personaID, grade := s.personaID, s.grade
	return s, func() tea.Msg {
		ctx := s.ctx
		if err := s.prefs.SetPersonaID(ctx, personaID); err != nil {
			return savedMsg{Err: err}
		}
		if err := s.prefs.SetGrade(ctx, grade); err != nil {
			return savedMsg{Err: err}
		}
		if key != "" {
			if err := s.prefs.SetAPIKey(ctx, key); err != nil {
				return savedMsg{Err: err}
			}
		}
		return savedMsg{Err: s.prefs.SetOnboarded(ctx)}
	}
}

func (s *Screen) finish() tea.Cmd {
	if s.done {
		return nil
	}
	s.done = true
	next := s.next()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (s *Screen) View(width, height int) string {
	var sections []string

	switch s.step {
	case StepIntro:
		sections = append(sections,
			lipgloss.NewStyle().Foreground(theme.Accent).Render(petParade(s.frame)),
			"",
			theme.Subtitle.Render(i18n.T(s.ctx, "onboarding.hello")),
			RenderBanner(width),
			theme.Title.Render(i18n.T(s.ctx, "onboarding.welcome")),
			"",
			lipgloss.NewStyle().Width(min(width-4, 60)).Align(lipgloss.Center).Foreground(theme.Text).
				Render(i18n.T(s.ctx, "onboarding.description")),
			"",
			s.start.View(),
		)

	case StepPet:
		p := personas.All()[s.pets.Selected]
		sections = append(sections,
			components.StepDots(1, totalSteps),
			"",
			theme.Title.Render(i18n.T(s.ctx, "onboarding.choose_pet")),
			theme.Subtitle.Render(i18n.T(s.ctx, "onboarding.choose_pet_sub")),
			"",
			s.pets.View(),
			theme.ButtonActive.Render(fmt.Sprintf("%s I choose %s!", p.Emoji, p.Name)),
		)

	case StepGrade:
		p := personas.ByID(s.personaID)
		sections = append(sections,
			components.StepDots(2, totalSteps),
			"",
			lipgloss.NewStyle().Render(p.Emoji),
			theme.Title.Render(i18n.T(s.ctx, "onboarding.choose_grade")),
			theme.Subtitle.Render(i18n.Td(s.ctx, "onboarding.choose_grade_sub", map[string]any{"Name": p.Name})),
			"",
			s.grades.View(),
			theme.Hint.Render("← Change pet (Esc)"),
		)

	case StepAPIKey:
		sections = append(sections,
			components.StepDots(3, totalSteps),
			"",
			theme.Title.Render(i18n.T(s.ctx, "onboarding.api_key")),
			lipgloss.NewStyle().Width(min(width-4, 60)).Align(lipgloss.Center).Foreground(theme.TextDim).
				Render(i18n.T(s.ctx, "onboarding.api_key_sub")),
			"",
			s.keyInput.View(),
			"",
			theme.ButtonActive.Render(i18n.T(s.ctx, "onboarding.finish")),
		)
		if s.errMsg != "" {
			sections = append(sections, "", lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
