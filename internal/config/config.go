// Package config loads runtime settings from the environment, an optional
// .env file and an optional schoolbuddy.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/schoolbuddy/internal/llm"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SCHOOLBUDDY"

// Config holds runtime configuration values.
type Config struct {
	Language    string `validate:"oneof=en fr"`
	MetricsAddr string
	Store       StoreConfig
	Log         LogConfig
	Trace       TraceConfig
	LLM         llm.Config
}

// StoreConfig selects where preferences are kept. LLM request events always
// go to the SQLite file at Path.
type StoreConfig struct {
	Backend  string `validate:"oneof=sqlite redis"`
	Path     string
	RedisURL string `validate:"required_if=Backend redis"`
}

type LogConfig struct {
	Level  string `validate:"oneof=trace debug info warn error disabled"`
	Format string `validate:"oneof=console json"`
	File   string
}

// TraceConfig turns on span export for model requests. File "-" means
// stderr; empty disables tracing.
type TraceConfig struct {
	File string
}

// Options adjusts where Load looks.
type Options struct {
	// ConfigFile is an explicit YAML file. It must exist when set.
	ConfigFile string

	// EnvFiles are loaded before the environment is read. Missing files are
	// ignored. Defaults to ".env".
	EnvFiles []string
}

// Load reads configuration values from environment variables, .env files
// and the optional config file, then validates them.
func Load(opts Options) (Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("schoolbuddy")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	defaults := llm.DefaultConfig()
	v.SetDefault("language", "en")
	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("llm.gemini.model", defaults.Gemini.Model)
	v.SetDefault("llm.openai.model", defaults.OpenAI.Model)
	v.SetDefault("llm.anthropic.model", defaults.Anthropic.Model)
	v.SetDefault("llm.openrouter.model", defaults.OpenRouter.Model)

	cfg := Config{
		Language:    strings.ToLower(v.GetString("language")),
		MetricsAddr: v.GetString("metrics_addr"),
		Store: StoreConfig{
			Backend:  strings.ToLower(v.GetString("store.backend")),
			Path:     v.GetString("db"),
			RedisURL: v.GetString("store.redis_url"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
			File:   v.GetString("log.file"),
		},
		Trace: TraceConfig{
			File: v.GetString("trace.file"),
		},
		LLM: llm.Config{
			Provider: strings.ToLower(v.GetString("llm.provider")),
			Gemini: llm.GeminiConfig{
				APIKey:  v.GetString("llm.gemini.api_key"),
				Model:   v.GetString("llm.gemini.model"),
				BaseURL: v.GetString("llm.gemini.base_url"),
			},
			OpenAI: llm.OpenAIConfig{
				APIKey:  v.GetString("llm.openai.api_key"),
				Model:   v.GetString("llm.openai.model"),
				BaseURL: v.GetString("llm.openai.base_url"),
			},
			Anthropic: llm.AnthropicConfig{
				APIKey:  v.GetString("llm.anthropic.api_key"),
				Model:   v.GetString("llm.anthropic.model"),
				BaseURL: v.GetString("llm.anthropic.base_url"),
			},
			OpenRouter: llm.OpenRouterConfig{
				APIKey:  v.GetString("llm.openrouter.api_key"),
				Model:   v.GetString("llm.openrouter.model"),
				BaseURL: v.GetString("llm.openrouter.base_url"),
			},
		},
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = llm.ProviderGemini
		if cfg.LLM.APIKey() == "" {
			if found, ok := llm.DiscoverConfig(); ok {
				found.Gemini.Model = cfg.LLM.Gemini.Model
				found.OpenAI.Model = cfg.LLM.OpenAI.Model
				found.Anthropic.Model = cfg.LLM.Anthropic.Model
				found.OpenRouter.Model = cfg.LLM.OpenRouter.Model
				cfg.LLM = found
			}
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// configDir is $XDG_CONFIG_HOME/schoolbuddy or ~/.config/schoolbuddy.
func configDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "schoolbuddy"), nil
}
