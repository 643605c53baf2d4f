package llm

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for model requests.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	tokens   *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schoolbuddy",
			Subsystem: "llm",
			Name:      "requests_total",
			Help:      "Model requests by provider, purpose and outcome.",
		}, []string{"provider", "purpose", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "schoolbuddy",
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Duration of model requests.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"provider", "purpose"}),
		tokens: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schoolbuddy",
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Tokens consumed by direction.",
		}, []string{"provider", "direction"}),
	}
}

// MetricsProvider is a decorator that observes every request.
type MetricsProvider struct {
	inner    Provider
	provider string
	m        *Metrics
}

// WithMetrics wraps a Provider with Prometheus instrumentation.
func WithMetrics(p Provider, provider string, m *Metrics) Provider {
	return &MetricsProvider{inner: p, provider: provider, m: m}
}

func (mp *MetricsProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	purpose := PurposeFrom(ctx)
	start := time.Now()

	resp, err := mp.inner.Generate(ctx, req)

	mp.m.duration.WithLabelValues(mp.provider, purpose).Observe(time.Since(start).Seconds())
	mp.m.requests.WithLabelValues(mp.provider, purpose, outcome(err)).Inc()
	if resp != nil {
		mp.m.tokens.WithLabelValues(mp.provider, "input").Add(float64(resp.Usage.InputTokens))
		mp.m.tokens.WithLabelValues(mp.provider, "output").Add(float64(resp.Usage.OutputTokens))
	}
	return resp, err
}

func (mp *MetricsProvider) ModelID() string {
	return mp.inner.ModelID()
}

// outcome labels an error by its typed kind.
func outcome(err error) string {
	var (
		rl      *ErrRateLimit
		auth    *ErrUnauthorized
		blocked *ErrContentBlocked
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &rl):
		return "rate_limited"
	case errors.As(err, &auth):
		return "unauthorized"
	case errors.As(err, &blocked):
		return "blocked"
	}
	return "error"
}
