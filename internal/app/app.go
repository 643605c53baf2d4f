// Package app hosts the root Bubble Tea model and wires screens together.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"github.com/abhisek/schoolbuddy/internal/prefs"
	"github.com/abhisek/schoolbuddy/internal/router"
	"github.com/abhisek/schoolbuddy/internal/screen"
	"github.com/abhisek/schoolbuddy/internal/screens/chat"
	"github.com/abhisek/schoolbuddy/internal/screens/onboarding"
	"github.com/abhisek/schoolbuddy/internal/screens/pastwork"
	"github.com/abhisek/schoolbuddy/internal/ui/layout"
)

// Options holds the dependencies the screens need.
type Options struct {
	Ctx    context.Context
	Prefs  *prefs.Prefs
	Buddy  chat.Buddy
	Logger zerolog.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// screens builds each top-level screen on demand so a reset always starts
// from fresh state.
type screens struct {
	opts Options
}

func (f screens) onboarding() screen.Screen {
	return onboarding.New(f.opts.Ctx, f.opts.Prefs, f.chat)
}

func (f screens) chat() screen.Screen {
	return chat.New(f.opts.Ctx, chat.Deps{
		Buddy:      f.opts.Buddy,
		Prefs:      f.opts.Prefs,
		Logger:     f.opts.Logger,
		Onboarding: f.onboarding,
		PastWork:   f.pastWork,
	})
}

func (f screens) pastWork() screen.Screen {
	return pastwork.New(f.opts.Ctx, f.opts.Prefs)
}

// newAppModel starts on onboarding until setup has been completed once.
func newAppModel(opts Options) (AppModel, error) {
	if opts.Ctx == nil {
		opts.Ctx = context.Background()
	}
	onboarded, err := opts.Prefs.Onboarded(opts.Ctx)
	if err != nil {
		return AppModel{}, fmt.Errorf("read onboarding state: %w", err)
	}

	f := screens{opts: opts}
	first := f.onboarding()
	if onboarded {
		first = f.chat()
	}
	return AppModel{router: router.New(first)}, nil
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the frame for the current size. It is empty until the first
// window size arrives.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
	}
	if sp, ok := active.(screen.StatusProvider); ok {
		status = sp.Status()
	}
	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	var hints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		hints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		hints = []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	model, err := newAppModel(opts)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
