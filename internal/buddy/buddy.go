// Package buddy talks to the hosted model on behalf of a student: it turns a
// photo of writing into rubric feedback and carries on a persona chat.
package buddy

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/abhisek/schoolbuddy/internal/curriculum"
	"github.com/abhisek/schoolbuddy/internal/feedback"
	"github.com/abhisek/schoolbuddy/internal/llm"
	"github.com/abhisek/schoolbuddy/internal/personas"
)

// Purposes recorded with every model request.
const (
	PurposeAnalyze = "analyze-writing"
	PurposeChat    = "chat"
)

// DefaultMIMEType is assumed when a capture does not report one.
const DefaultMIMEType = "image/jpeg"

var (
	// ErrMissingCredential is returned when no API key is available.
	ErrMissingCredential = errors.New("buddy: no API key configured")

	// ErrMissingInput is returned when there is no image or message to send.
	ErrMissingInput = errors.New("buddy: nothing to send")
)

// ProviderFactory returns a provider that authenticates with apiKey.
type ProviderFactory func(ctx context.Context, apiKey string) (llm.Provider, error)

// NewProviderFactory builds providers from cfg with the per-call key
// substituted for the selected provider's key.
func NewProviderFactory(cfg llm.Config, obs llm.Observers) ProviderFactory {
	return func(ctx context.Context, apiKey string) (llm.Provider, error) {
		return llm.NewProvider(ctx, cfg.WithAPIKey(apiKey), obs)
	}
}

// AnalyzeInput is one writing-analysis request.
type AnalyzeInput struct {
	APIKey      string
	ImageBase64 string
	MIMEType    string
	Grade       int
	Subject     string
	Persona     string
}

// ChatInput is one chat turn. History is the conversation so far and is
// never modified.
type ChatInput struct {
	APIKey  string
	Message string
	Grade   int
	Persona string
	History []llm.Message
}

// Service runs analysis and chat requests. It holds no per-conversation
// state and is safe for concurrent use.
type Service struct {
	providers ProviderFactory
	logger    zerolog.Logger
}

// NewService creates a Service.
func NewService(providers ProviderFactory, logger zerolog.Logger) *Service {
	return &Service{providers: providers, logger: logger}
}

// AnalyzeWriting sends the photo with the grade's rubric prompt and parses
// the reply into feedback. Provider errors are returned wrapped, unretried.
func (s *Service) AnalyzeWriting(ctx context.Context, in AnalyzeInput) (*feedback.Feedback, error) {
	if in.APIKey == "" {
		return nil, ErrMissingCredential
	}
	if in.ImageBase64 == "" {
		return nil, ErrMissingInput
	}
	mimeType := in.MIMEType
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}
	data, err := base64.StdEncoding.DecodeString(in.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	persona := personas.ByID(in.Persona)
	prompt := curriculum.BuildPrompt(in.Grade, in.Subject, persona.Name, persona.Personality)

	provider, err := s.providers(ctx, in.APIKey)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	s.logger.Debug().
		Int("grade", in.Grade).
		Str("persona", persona.ID).
		Str("mime", mimeType).
		Int("image_bytes", len(data)).
		Msg("analyzing writing")

	resp, err := provider.Generate(llm.WithPurpose(ctx, PurposeAnalyze), llm.Request{
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: prompt + "\n\n" + curriculum.AnalyzeInstruction,
			Images:  []llm.Image{{MIMEType: mimeType, Data: data}},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("analyze writing: %w", err)
	}

	return feedback.Parse(resp.Text)
}

// Chat sends one student message and returns the model's reply text.
// An empty History starts a new conversation with SeedHistory.
func (s *Service) Chat(ctx context.Context, in ChatInput) (string, error) {
	if in.APIKey == "" {
		return "", ErrMissingCredential
	}
	if strings.TrimSpace(in.Message) == "" {
		return "", ErrMissingInput
	}

	history := in.History
	if len(history) == 0 {
		history = SeedHistory(in.Grade, in.Persona)
	}
	msgs := make([]llm.Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, llm.UserText(in.Message))

	provider, err := s.providers(ctx, in.APIKey)
	if err != nil {
		return "", fmt.Errorf("create provider: %w", err)
	}

	resp, err := provider.Generate(llm.WithPurpose(ctx, PurposeChat), llm.Request{Messages: msgs})
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return resp.Text, nil
}

// SeedHistory is the opening of every chat: the persona instruction as a
// user turn followed by the persona's scripted greeting.
func SeedHistory(grade int, personaID string) []llm.Message {
	p := personas.ByID(personaID)
	return []llm.Message{
		llm.UserText(curriculum.BuildChatPrompt(grade, p.Name, p.Personality)),
		llm.AssistantText(curriculum.Greeting(p.Name)),
	}
}
