package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/schoolbuddy/internal/llm"
)

// isolate clears every variable Load might pick up and points the config
// search path at an empty directory.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
		"SCHOOLBUDDY_LANGUAGE", "SCHOOLBUDDY_LLM_PROVIDER", "SCHOOLBUDDY_LLM_GEMINI_API_KEY",
		"SCHOOLBUDDY_STORE_BACKEND", "SCHOOLBUDDY_STORE_REDIS_URL", "SCHOOLBUDDY_LOG_LEVEL", "SCHOOLBUDDY_TRACE_FILE",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, llm.ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gemma-3-27b-it", cfg.LLM.Gemini.Model)
	assert.Empty(t, cfg.LLM.APIKey())
	assert.Empty(t, cfg.Trace.File)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("SCHOOLBUDDY_LANGUAGE", "FR")
	t.Setenv("SCHOOLBUDDY_LLM_PROVIDER", "anthropic")
	t.Setenv("SCHOOLBUDDY_LLM_ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("SCHOOLBUDDY_LOG_LEVEL", "debug")
	t.Setenv("SCHOOLBUDDY_TRACE_FILE", "-")

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "fr", cfg.Language)
	assert.Equal(t, "-", cfg.Trace.File)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, llm.ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, "sk-ant", cfg.LLM.APIKey())
}

func TestLoad_DiscoversVendorKey(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-openai", cfg.LLM.APIKey())
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAI.Model)
}

func TestLoad_ConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
language: fr
store:
  backend: redis
  redis_url: redis://localhost:6379/2
llm:
  provider: gemini
  gemini:
    api_key: AIza-file
    model: gemini-flash
`), 0o644))

	cfg, err := Load(Options{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis://localhost:6379/2", cfg.Store.RedisURL)
	assert.Equal(t, "AIza-file", cfg.LLM.APIKey())
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model())
}

func TestLoad_SearchPath(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("schoolbuddy.yaml", []byte("log:\n  format: json\n"), 0o644))

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvFile(t *testing.T) {
	isolate(t)
	env := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(env, []byte("SCHOOLBUDDY_LLM_GEMINI_API_KEY=AIza-dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SCHOOLBUDDY_LLM_GEMINI_API_KEY") })

	cfg, err := Load(Options{EnvFiles: []string{env}})
	require.NoError(t, err)
	assert.Equal(t, "AIza-dotenv", cfg.LLM.APIKey())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"language", map[string]string{"SCHOOLBUDDY_LANGUAGE": "de"}},
		{"backend", map[string]string{"SCHOOLBUDDY_STORE_BACKEND": "postgres"}},
		{"redis without url", map[string]string{"SCHOOLBUDDY_STORE_BACKEND": "redis"}},
		{"provider", map[string]string{"SCHOOLBUDDY_LLM_PROVIDER": "llama"}},
		{"log level", map[string]string{"SCHOOLBUDDY_LOG_LEVEL": "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(Options{})
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(Options{ConfigFile: filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}
