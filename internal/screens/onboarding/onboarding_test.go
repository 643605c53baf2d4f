package onboarding

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/schoolbuddy/internal/prefs"
	"github.com/abhisek/schoolbuddy/internal/router"
	"github.com/abhisek/schoolbuddy/internal/screen"
	"github.com/abhisek/schoolbuddy/internal/store"
)

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "chat" }
func (s *stubScreen) Title() string                           { return "Chat" }

func newTestPrefs(t *testing.T, configuredKey string) *prefs.Prefs {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return prefs.New(st.KV(), configuredKey)
}

func newTestScreen(t *testing.T, configuredKey string) (*Screen, *prefs.Prefs, *int) {
	t.Helper()
	p := newTestPrefs(t, configuredKey)
	calls := 0
	s := New(context.Background(), p, func() screen.Screen {
		calls++
		return &stubScreen{}
	})
	// Apply the saved preferences the way Init would.
	s.Update(s.loadPrefs()())
	return s, p, &calls
}

func press(s *Screen, keys ...tea.KeyPressMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = s.Update(k)
	}
	return cmd
}

var (
	enter = tea.KeyPressMsg{Code: tea.KeyEnter}
	down  = tea.KeyPressMsg{Code: tea.KeyDown}
	esc   = tea.KeyPressMsg{Code: tea.KeyEscape}
)

func typeText(s *Screen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func TestFullFlowPersistsChoices(t *testing.T) {
	s, p, calls := newTestScreen(t, "")

	press(s, enter)
	if s.Step() != StepPet {
		t.Fatalf("expected pet step, got %v", s.Step())
	}

	// scout -> whiskers -> sage
	press(s, down, down, enter)
	if s.Step() != StepGrade {
		t.Fatalf("expected grade step, got %v", s.Step())
	}

	// 6 -> 7
	press(s, down, enter)
	if s.Step() != StepAPIKey {
		t.Fatalf("expected api key step, got %v", s.Step())
	}

	typeText(s, "AIza-test-key")
	cmd := press(s, enter)
	if cmd == nil {
		t.Fatal("expected save command")
	}
	_, cmd = s.Update(cmd())
	if cmd == nil {
		t.Fatal("expected navigation after save")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if *calls != 1 {
		t.Errorf("next factory called %d times, want 1", *calls)
	}

	ctx := context.Background()
	if id, _ := p.PersonaID(ctx); id != "sage" {
		t.Errorf("persona = %q, want sage", id)
	}
	if g, _ := p.Grade(ctx); g != 7 {
		t.Errorf("grade = %d, want 7", g)
	}
	if k, _ := p.APIKey(ctx); k != "AIza-test-key" {
		t.Errorf("api key = %q", k)
	}
	if on, _ := p.Onboarded(ctx); !on {
		t.Error("expected onboarded flag")
	}
}

func TestBlankKeyRequiresDefault(t *testing.T) {
	s, _, _ := newTestScreen(t, "")
	press(s, enter, enter, enter)
	if s.Step() != StepAPIKey {
		t.Fatalf("expected api key step, got %v", s.Step())
	}

	if cmd := press(s, enter); cmd != nil {
		t.Error("blank key without a default should not save")
	}
	if !strings.Contains(s.View(80, 24), "key is needed") {
		t.Error("expected key required message")
	}
}

func TestBlankKeyAllowedWithDefault(t *testing.T) {
	s, p, _ := newTestScreen(t, "configured-key")
	press(s, enter, enter, enter)

	cmd := press(s, enter)
	if cmd == nil {
		t.Fatal("expected save command")
	}
	s.Update(cmd())

	stored, err := p.StoredAPIKey(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stored {
		t.Error("blank entry should not store a key")
	}
}

func TestEscGoesBack(t *testing.T) {
	s, _, _ := newTestScreen(t, "")
	press(s, enter, enter)
	if s.Step() != StepGrade {
		t.Fatalf("expected grade step, got %v", s.Step())
	}
	press(s, esc)
	if s.Step() != StepPet {
		t.Errorf("expected pet step after esc, got %v", s.Step())
	}
	press(s, esc, esc)
	if s.Step() != StepIntro {
		t.Errorf("esc should stop at intro, got %v", s.Step())
	}
}

func TestPreselectsSavedChoices(t *testing.T) {
	p := newTestPrefs(t, "")
	ctx := context.Background()
	if err := p.SetPersonaID(ctx, "finn"); err != nil {
		t.Fatal(err)
	}
	if err := p.SetGrade(ctx, 8); err != nil {
		t.Fatal(err)
	}

	s := New(ctx, p, func() screen.Screen { return &stubScreen{} })
	s.Update(s.loadPrefs()())

	if s.pets.Selected != 4 {
		t.Errorf("pet selection = %d, want 4 (finn)", s.pets.Selected)
	}
	if s.grades.Selected != 2 {
		t.Errorf("grade selection = %d, want 2 (grade 8)", s.grades.Selected)
	}
}

func TestViews(t *testing.T) {
	s, _, _ := newTestScreen(t, "")
	if v := s.View(80, 24); !strings.Contains(v, "Welcome to SchoolBuddy!") {
		t.Errorf("intro view missing welcome:\n%s", v)
	}
	press(s, enter)
	if v := s.View(80, 24); !strings.Contains(v, "I choose Scout!") {
		t.Errorf("pet view missing choice button:\n%s", v)
	}
	press(s, enter)
	if v := s.View(80, 24); !strings.Contains(v, "Scout will tailor feedback") {
		t.Errorf("grade view missing subtitle:\n%s", v)
	}
}
