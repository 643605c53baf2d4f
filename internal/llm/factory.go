package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/schoolbuddy/internal/store"
)

// Observers are the optional decorators applied around every provider.
// Nil fields are skipped, except Tracer which falls back to the global
// tracer provider.
type Observers struct {
	Events  store.EventRepo
	Metrics *Metrics
	Logger  zerolog.Logger
	Tracer  trace.TracerProvider
}

// NewProvider creates a Provider from configuration, wrapped with tracing,
// metrics and event logging. Requests are never retried.
func NewProvider(ctx context.Context, cfg Config, obs Observers) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderMock:
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return Decorate(base, cfg.Provider, obs), nil
}

// Decorate wraps base with the observers, in the order
// caller → tracing → metrics → logging → base.
func Decorate(base Provider, provider string, obs Observers) Provider {
	p := base
	if obs.Events != nil {
		p = WithLogging(p, provider, obs.Events, obs.Logger)
	}
	if obs.Metrics != nil {
		p = WithMetrics(p, provider, obs.Metrics)
	}
	return WithTracing(p, provider, obs.Tracer)
}
