// Package prefs stores the student's settings and transcript in a KV store.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/schoolbuddy/internal/curriculum"
	"github.com/abhisek/schoolbuddy/internal/history"
	"github.com/abhisek/schoolbuddy/internal/personas"
	"github.com/abhisek/schoolbuddy/internal/store"
)

// Storage keys.
const (
	KeyAPIKey      = "@schoolbuddy_api_key"
	KeyGrade       = "@schoolbuddy_grade"
	KeyPersona     = "@schoolbuddy_pet_id"
	KeyChatHistory = "@schoolbuddy_chat_history"
	KeyOnboarded   = "@schoolbuddy_onboarded"
)

// BuiltinAPIKey is baked in at build time with
// -ldflags "-X github.com/abhisek/schoolbuddy/internal/prefs.BuiltinAPIKey=...".
var BuiltinAPIKey = ""

// Prefs reads and writes the student's settings.
type Prefs struct {
	kv         store.KV
	configured string
}

// New returns Prefs over kv. configuredKey is the last API key fallback,
// usually the key of the configured model provider.
func New(kv store.KV, configuredKey string) *Prefs {
	return &Prefs{kv: kv, configured: configuredKey}
}

// APIKey returns the stored key, else the built-in key, else the configured
// key. An empty result means no key is available.
func (p *Prefs) APIKey(ctx context.Context) (string, error) {
	v, ok, err := p.kv.Get(ctx, KeyAPIKey)
	if err != nil {
		return "", err
	}
	if ok && v != "" {
		return v, nil
	}
	return p.DefaultAPIKey(), nil
}

// DefaultAPIKey is the key used when the student has not entered one.
func (p *Prefs) DefaultAPIKey() string {
	if BuiltinAPIKey != "" {
		return BuiltinAPIKey
	}
	return p.configured
}

// StoredAPIKey reports whether the student has saved their own key.
func (p *Prefs) StoredAPIKey(ctx context.Context) (bool, error) {
	v, ok, err := p.kv.Get(ctx, KeyAPIKey)
	return ok && v != "", err
}

func (p *Prefs) SetAPIKey(ctx context.Context, key string) error {
	return p.kv.Set(ctx, KeyAPIKey, strings.TrimSpace(key))
}

// Grade returns the saved grade. Missing or unparsable values read as the
// baseline grade.
func (p *Prefs) Grade(ctx context.Context) (int, error) {
	v, ok, err := p.kv.Get(ctx, KeyGrade)
	if err != nil {
		return curriculum.BaselineGrade, err
	}
	if !ok {
		return curriculum.BaselineGrade, nil
	}
	g, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return curriculum.BaselineGrade, nil
	}
	return g, nil
}

func (p *Prefs) SetGrade(ctx context.Context, grade int) error {
	return p.kv.Set(ctx, KeyGrade, strconv.Itoa(grade))
}

// PersonaID returns the saved persona id or the default persona.
func (p *Prefs) PersonaID(ctx context.Context) (string, error) {
	v, ok, err := p.kv.Get(ctx, KeyPersona)
	if err != nil {
		return personas.DefaultID, err
	}
	if !ok || v == "" {
		return personas.DefaultID, nil
	}
	return v, nil
}

func (p *Prefs) SetPersonaID(ctx context.Context, id string) error {
	return p.kv.Set(ctx, KeyPersona, id)
}

// History returns the saved transcript, oldest first.
func (p *Prefs) History(ctx context.Context) ([]history.Message, error) {
	v, ok, err := p.kv.Get(ctx, KeyChatHistory)
	if err != nil {
		return nil, err
	}
	if !ok || v == "" {
		return []history.Message{}, nil
	}
	var msgs []history.Message
	if err := json.Unmarshal([]byte(v), &msgs); err != nil {
		return []history.Message{}, fmt.Errorf("decode chat history: %w", err)
	}
	return msgs, nil
}

// SaveHistory stores the most recent messages with analyses reduced to
// their summaries.
func (p *Prefs) SaveHistory(ctx context.Context, msgs []history.Message) error {
	kept := history.Reduce(history.Trim(msgs, history.MaxSaved))
	data, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("encode chat history: %w", err)
	}
	return p.kv.Set(ctx, KeyChatHistory, string(data))
}

func (p *Prefs) Onboarded(ctx context.Context) (bool, error) {
	v, _, err := p.kv.Get(ctx, KeyOnboarded)
	return v == "true", err
}

func (p *Prefs) SetOnboarded(ctx context.Context) error {
	return p.kv.Set(ctx, KeyOnboarded, "true")
}

// ClearAll removes every stored setting and the transcript.
func (p *Prefs) ClearAll(ctx context.Context) error {
	return p.kv.Delete(ctx, KeyAPIKey, KeyGrade, KeyPersona, KeyChatHistory, KeyOnboarded)
}
