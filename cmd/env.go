package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/abhisek/schoolbuddy/internal/buddy"
	"github.com/abhisek/schoolbuddy/internal/config"
	"github.com/abhisek/schoolbuddy/internal/i18n"
	"github.com/abhisek/schoolbuddy/internal/llm"
	"github.com/abhisek/schoolbuddy/internal/logging"
	"github.com/abhisek/schoolbuddy/internal/prefs"
	"github.com/abhisek/schoolbuddy/internal/store"
	"github.com/abhisek/schoolbuddy/internal/telemetry"
)

// providerFactory builds the provider factory handed to the buddy service.
var providerFactory = buddy.NewProviderFactory

// env is everything a command needs, built from config and flags.
type env struct {
	ctx    context.Context
	cfg    config.Config
	store  *store.Store
	prefs  *prefs.Prefs
	buddy  *buddy.Service
	logger zerolog.Logger

	closers []func() error
}

// newEnv loads configuration, opens storage and builds the buddy
// service. The TUI logs only to --log-file so output does not tear the
// screen; other commands log to stderr.
func newEnv(cmd *cobra.Command, tui bool) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := i18n.Init(cfg.Language); err != nil {
		return nil, err
	}

	e := &env{ctx: cmd.Context(), cfg: cfg}
	if e.ctx == nil {
		e.ctx = context.Background()
	}
	e.ctx = i18n.WithLanguage(e.ctx, cfg.Language)

	if err := e.openLogger(tui); err != nil {
		return nil, err
	}
	if err := e.openStore(); err != nil {
		e.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	obs := llm.Observers{
		Events:  e.store.Events(),
		Metrics: llm.NewMetrics(reg),
		Logger:  e.logger,
	}
	if cfg.MetricsAddr != "" {
		e.serveMetrics(reg)
	}
	if cfg.Trace.File != "" {
		tp, closeFn, err := telemetry.Open(e.ctx, cfg.Trace.File, version)
		if err != nil {
			e.Close()
			return nil, err
		}
		otel.SetTracerProvider(tp)
		obs.Tracer = tp
		e.closers = append(e.closers, closeFn)
	}

	e.buddy = buddy.NewService(providerFactory(cfg.LLM, obs), e.logger)
	return e, nil
}

// loadConfig reads config.Load and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{ConfigFile: file})
	if err != nil {
		return config.Config{}, err
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Store.Path = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-file"); v != "" {
		cfg.Log.File = v
	}
	if v, _ := cmd.Flags().GetString("trace-file"); v != "" {
		cfg.Trace.File = v
	}
	if v, _ := cmd.Flags().GetString("metrics-addr"); v != "" {
		cfg.MetricsAddr = v
	}
	if v, _ := cmd.Flags().GetString("lang"); v != "" {
		cfg.Language = v
	}
	return cfg, nil
}

func (e *env) openLogger(tui bool) error {
	switch {
	case e.cfg.Log.File != "":
		l, closeFn, err := logging.File(e.cfg.Log.File, e.cfg.Log.Level)
		if err != nil {
			return err
		}
		e.logger = l
		e.closers = append(e.closers, closeFn)
	case tui:
		e.logger = zerolog.Nop()
	default:
		l, err := logging.Stderr(e.cfg.Log.Level, e.cfg.Log.Format)
		if err != nil {
			return err
		}
		e.logger = l
	}
	return nil
}

// openStore opens the SQLite file and picks the preferences backend.
func (e *env) openStore() error {
	dbPath := e.cfg.Store.Path
	if dbPath != "" {
		if err := store.EnsureDir(dbPath); err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
	} else {
		p, err := store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		dbPath = p
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	e.store = st
	e.closers = append(e.closers, st.Close)

	var kv store.KV = st.KV()
	if e.cfg.Store.Backend == "redis" {
		rkv, err := store.OpenRedisKV(e.ctx, e.cfg.Store.RedisURL)
		if err != nil {
			return err
		}
		kv = rkv
		e.closers = append(e.closers, rkv.Close)
	}
	e.prefs = prefs.New(kv, e.cfg.LLM.APIKey())

	e.logger.Debug().
		Str("db", dbPath).
		Str("prefs_backend", e.cfg.Store.Backend).
		Str("provider", e.cfg.LLM.Provider).
		Msg("storage ready")
	return nil
}

func (e *env) serveMetrics(reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: e.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error().Err(err).Str("addr", e.cfg.MetricsAddr).Msg("metrics server stopped")
		}
	}()
	e.closers = append(e.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})
}

// Close releases resources in reverse order of acquisition.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.logger.Warn().Err(err).Msg("close")
		}
	}
	e.closers = nil
}
