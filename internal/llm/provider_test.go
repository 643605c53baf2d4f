package llm

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/abhisek/schoolbuddy/internal/store"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "first reply", Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Text: "second reply"},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{UserText("first")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text != "first reply" {
		t.Fatalf("expected 'first reply', got %q", resp1.Text)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{UserText("second")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text != "second reply" {
		t.Fatalf("expected 'second reply', got %q", resp2.Text)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "ok"})
	mock.AddResponse(MockResponse{Err: &ErrRateLimit{Err: errors.New("quota")}})

	req := Request{Messages: []Message{UserText("hello")}}
	_, _ = mock.Generate(context.Background(), req)
	_, err := mock.Generate(context.Background(), req)

	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected queued ErrRateLimit, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
	last, ok := mock.LastCall()
	if !ok || last.Messages[0].Content != "hello" {
		t.Fatalf("last call = %+v", last)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, "chat")
	if p := PurposeFrom(ctx); p != "chat" {
		t.Fatalf("expected 'chat', got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"gemini without key", Config{Provider: ProviderGemini}, true},
		{"gemini with key", Config{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "k"}}, false},
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"openai with key", Config{Provider: ProviderOpenAI, OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"openrouter without key", Config{Provider: ProviderOpenRouter}, true},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_WithAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	keyed := cfg.WithAPIKey("AIza-test")

	if keyed.Gemini.APIKey != "AIza-test" || keyed.APIKey() != "AIza-test" {
		t.Fatalf("key not set on selected provider: %+v", keyed.Gemini)
	}
	if cfg.Gemini.APIKey != "" {
		t.Fatal("WithAPIKey mutated the receiver")
	}
	if keyed.OpenAI.APIKey != "" {
		t.Fatal("WithAPIKey touched an unselected provider")
	}
	if keyed.Model() != "gemma-3-27b-it" {
		t.Fatalf("default model = %q", keyed.Model())
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no config without keys")
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENAI_API_KEY", "sk-oai")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "sk-oai" {
		t.Fatalf("DiscoverConfig = %+v, %v; want openai first", cfg, ok)
	}
}

type recordingRepo struct {
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func TestWithLogging_RecordsEvents(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(
		MockResponse{Text: "hi!", Usage: Usage{InputTokens: 7, OutputTokens: 3}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("quota exceeded")}},
	)
	p := WithLogging(mock, ProviderGemini, repo, zerolog.Nop())
	ctx := WithPurpose(context.Background(), "chat")

	if _, err := p.Generate(ctx, Request{Messages: []Message{{
		Role: RoleUser, Content: "look", Images: []Image{{MIMEType: "image/jpeg", Data: make([]byte, 42)}},
	}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, Request{Messages: []Message{UserText("again")}}); err == nil {
		t.Fatal("expected error to propagate")
	}

	if len(repo.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(repo.events))
	}
	ok := repo.events[0]
	if !ok.Success || ok.Provider != ProviderGemini || ok.Purpose != "chat" || ok.ResponseBody != "hi!" {
		t.Errorf("success event = %+v", ok)
	}
	if ok.InputTokens != 7 || ok.OutputTokens != 3 {
		t.Errorf("tokens = %d/%d", ok.InputTokens, ok.OutputTokens)
	}
	if want := "[user]\n[image image/jpeg, 42 bytes]\nlook\n\n"; ok.RequestBody != want {
		t.Errorf("request body = %q, want %q", ok.RequestBody, want)
	}
	failed := repo.events[1]
	if failed.Success || failed.ErrorMessage == "" {
		t.Errorf("failure event = %+v", failed)
	}
}

func TestWithLogging_RepoErrorDoesNotFailRequest(t *testing.T) {
	repo := &recordingRepo{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(MockResponse{Text: "ok"}), ProviderMock, repo, zerolog.Nop())

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("expected success despite repo error, got %v", err)
	}
	if resp.Text != "ok" {
		t.Fatalf("text = %q", resp.Text)
	}
}

func TestWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	mock := NewMockProvider(
		MockResponse{Text: "ok", Usage: Usage{InputTokens: 100, OutputTokens: 20}},
		MockResponse{Err: &ErrUnauthorized{Err: errors.New("API key not valid")}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("quota")}},
	)
	p := WithMetrics(mock, ProviderGemini, m)
	ctx := WithPurpose(context.Background(), "analyze-writing")

	for range 3 {
		_, _ = p.Generate(ctx, Request{})
	}

	for outcome, want := range map[string]float64{"ok": 1, "unauthorized": 1, "rate_limited": 1, "error": 0} {
		got := testutil.ToFloat64(m.requests.WithLabelValues(ProviderGemini, "analyze-writing", outcome))
		if got != want {
			t.Errorf("requests{outcome=%s} = %v, want %v", outcome, got, want)
		}
	}
	if got := testutil.ToFloat64(m.tokens.WithLabelValues(ProviderGemini, "input")); got != 100 {
		t.Errorf("input tokens = %v, want 100", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestOutcome(t *testing.T) {
	if got := outcome(context.Canceled); got != "canceled" {
		t.Errorf("outcome(Canceled) = %q", got)
	}
	if got := outcome(&ErrContentBlocked{}); got != "blocked" {
		t.Errorf("outcome(blocked) = %q", got)
	}
	if got := outcome(errors.New("boom")); got != "error" {
		t.Errorf("outcome(plain) = %q", got)
	}
}

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}

func TestWithTracing_RecordsSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer tp.Shutdown(context.Background())

	mock := NewMockProvider(
		MockResponse{Text: "traced", Usage: Usage{InputTokens: 12, OutputTokens: 4}},
		MockResponse{Err: errors.New("boom")},
	)
	p := WithTracing(mock, ProviderMock, tp)
	ctx := WithPurpose(context.Background(), "chat")

	resp, err := p.Generate(ctx, Request{Messages: []Message{UserText("hi"), UserText("again")}})
	if err != nil || resp.Text != "traced" {
		t.Fatalf("Generate = %v, %v", resp, err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("ModelID = %q", p.ModelID())
	}

	spans := sr.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	ok := spans[0]
	if ok.Name() != "llm.generate" {
		t.Errorf("span name = %q", ok.Name())
	}
	attrs := spanAttrs(ok)
	if got := attrs["llm.provider"].AsString(); got != ProviderMock {
		t.Errorf("llm.provider = %q", got)
	}
	if got := attrs["llm.model"].AsString(); got != "mock" {
		t.Errorf("llm.model = %q", got)
	}
	if got := attrs["llm.purpose"].AsString(); got != "chat" {
		t.Errorf("llm.purpose = %q", got)
	}
	if got := attrs["llm.messages"].AsInt64(); got != 2 {
		t.Errorf("llm.messages = %d", got)
	}
	if got := attrs["llm.input_tokens"].AsInt64(); got != 12 {
		t.Errorf("llm.input_tokens = %d", got)
	}
	if got := attrs["llm.output_tokens"].AsInt64(); got != 4 {
		t.Errorf("llm.output_tokens = %d", got)
	}
	if ok.Status().Code != codes.Unset {
		t.Errorf("success status = %v", ok.Status().Code)
	}

	failed := spans[1]
	if failed.Status().Code != codes.Error || failed.Status().Description != "boom" {
		t.Errorf("error status = %+v", failed.Status())
	}
	if len(failed.Events()) != 1 || failed.Events()[0].Name != "exception" {
		t.Errorf("expected one exception event, got %+v", failed.Events())
	}
	if _, has := spanAttrs(failed)["llm.input_tokens"]; has {
		t.Error("failed span should not carry token counts")
	}
}

func TestWithTracing_NilUsesGlobalProvider(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	p := WithTracing(NewMockProvider(MockResponse{Text: "ok"}), ProviderMock, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if n := len(sr.Ended()); n != 1 {
		t.Fatalf("expected 1 span on the global provider, got %d", n)
	}
}

func TestNewProvider_MockRunsDecoratorChain(t *testing.T) {
	repo := &recordingRepo{}
	m := NewMetrics(prometheus.NewRegistry())
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer tp.Shutdown(context.Background())

	p, err := NewProvider(context.Background(), Config{Provider: ProviderMock}, Observers{
		Events:  repo,
		Metrics: m,
		Logger:  zerolog.Nop(),
		Tracer:  tp,
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	// The bare mock has nothing queued, so the request fails all the way up.
	ctx := WithPurpose(context.Background(), "analyze-writing")
	_, err = p.Generate(ctx, Request{Messages: []Message{UserText("hello")}})
	var unavailable *ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 logged event, got %d", len(repo.events))
	}
	ev := repo.events[0]
	if ev.Provider != ProviderMock || ev.Purpose != "analyze-writing" || ev.Success {
		t.Errorf("unexpected event %+v", ev)
	}
	if n := testutil.CollectAndCount(m.requests); n != 1 {
		t.Errorf("expected 1 request series, got %d", n)
	}
	spans := sr.Ended()
	if len(spans) != 1 || spans[0].Status().Code != codes.Error {
		t.Fatalf("expected one failed span, got %d", len(spans))
	}
}

func TestDecorate_CannedMock(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{Text: "hello back", Usage: Usage{InputTokens: 3, OutputTokens: 2}})
	p := Decorate(mock, ProviderMock, Observers{Events: repo, Logger: zerolog.Nop()})

	resp, err := p.Generate(WithPurpose(context.Background(), "chat"), Request{Messages: []Message{UserText("hi")}})
	if err != nil || resp.Text != "hello back" {
		t.Fatalf("Generate = %v, %v", resp, err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("CallCount = %d", mock.CallCount())
	}
	if len(repo.events) != 1 || !repo.events[0].Success || repo.events[0].OutputTokens != 2 {
		t.Errorf("unexpected events %+v", repo.events)
	}
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	if _, err := NewProvider(ctx, Config{Provider: "nope"}, Observers{}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if _, err := NewProvider(ctx, DefaultConfig(), Observers{}); err == nil {
		t.Fatal("expected error for missing gemini key")
	}

	p, err := NewProvider(ctx, DefaultConfig().WithAPIKey("AIza-test"), Observers{
		Events:  &recordingRepo{},
		Metrics: NewMetrics(prometheus.NewRegistry()),
		Logger:  zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.ModelID() != "gemma-3-27b-it" {
		t.Fatalf("ModelID = %q", p.ModelID())
	}

	mock, err := NewProvider(ctx, Config{Provider: ProviderMock}, Observers{})
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	if _, ok := mock.(*TracingProvider); !ok {
		t.Fatalf("mock provider type = %T, want it decorated", mock)
	}
	if mock.ModelID() != "mock" {
		t.Fatalf("mock ModelID = %q", mock.ModelID())
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	if c == nil {
		t.Fatal("expected pricing for gpt-4o-mini")
	}
	if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("cost = %v, want 0.75", got)
	}
	if g := LookupCost("gemma-3-27b-it"); g == nil || g.Cost(5000, 500) != 0 {
		t.Errorf("gemma should be free, got %+v", g)
	}
	if LookupCost("no-such-model") != nil {
		t.Error("expected nil for unknown model")
	}
}
