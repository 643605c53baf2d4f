package app

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/schoolbuddy/internal/buddy"
	"github.com/abhisek/schoolbuddy/internal/llm"
	"github.com/abhisek/schoolbuddy/internal/prefs"
	"github.com/abhisek/schoolbuddy/internal/router"
	"github.com/abhisek/schoolbuddy/internal/screens/chat"
	"github.com/abhisek/schoolbuddy/internal/screens/onboarding"
	"github.com/abhisek/schoolbuddy/internal/store"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mock := llm.NewMockProvider()
	return Options{
		Ctx:    context.Background(),
		Prefs:  prefs.New(st.KV(), ""),
		Buddy:  buddy.NewService(func(context.Context, string) (llm.Provider, error) { return mock, nil }, zerolog.Nop()),
		Logger: zerolog.Nop(),
	}
}

func TestStartsWithOnboarding(t *testing.T) {
	m, err := newAppModel(testOptions(t))
	require.NoError(t, err)
	assert.IsType(t, &onboarding.Screen{}, m.router.Active())
}

func TestStartsWithChatOnceOnboarded(t *testing.T) {
	opts := testOptions(t)
	require.NoError(t, opts.Prefs.SetOnboarded(context.Background()))

	m, err := newAppModel(opts)
	require.NoError(t, err)
	assert.IsType(t, &chat.Screen{}, m.router.Active())
}

func TestCtrlCQuits(t *testing.T) {
	m, err := newAppModel(testOptions(t))
	require.NoError(t, err)

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestEscPopsOnlyAboveRoot(t *testing.T) {
	opts := testOptions(t)
	require.NoError(t, opts.Prefs.SetOnboarded(context.Background()))
	m, err := newAppModel(opts)
	require.NoError(t, err)

	f := screens{opts: opts}
	m.router.Push(f.pastWork())
	require.Equal(t, 2, m.router.Depth())

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.IsType(t, router.PopScreenMsg{}, cmd())

	m.router.Pop()
	assert.Equal(t, 1, m.router.Depth())
}

func TestViewShowsStatusAndHints(t *testing.T) {
	opts := testOptions(t)
	ctx := context.Background()
	require.NoError(t, opts.Prefs.SetOnboarded(ctx))
	require.NoError(t, opts.Prefs.SetPersonaID(ctx, "sage"))
	require.NoError(t, opts.Prefs.SetGrade(ctx, 7))

	model, err := newAppModel(opts)
	require.NoError(t, err)
	next, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	view := ansi.Strip(next.(AppModel).render())
	assert.Contains(t, view, "SchoolBuddy")
	assert.Contains(t, view, "Ctrl+C")
	assert.Contains(t, view, "Opening your notebook")
}

func TestViewTooSmall(t *testing.T) {
	model, err := newAppModel(testOptions(t))
	require.NoError(t, err)
	next, _ := model.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	view := ansi.Strip(next.(AppModel).render())
	assert.Contains(t, view, "a bit small")
	assert.NotContains(t, view, "Ctrl+C")
}
