package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("INFERENCE_PROVIDER", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ProviderGemini, cfg.Inference.Provider)
	require.Equal(t, "8000", cfg.HTTP.Port)
	require.Equal(t, 2*time.Second, cfg.Session.ProgressInterval)
	require.Equal(t, 60*time.Second, cfg.Inference.AnalyzeTimeout)
	require.Equal(t, int64(10<<20), cfg.HTTP.MaxUploadBytes)
	require.True(t, cfg.ImageProbe)
}

func TestLoad_ProviderKeyRequired(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	t.Setenv("INFERENCE_PROVIDER", "gemini")
	_, err := Load()
	require.ErrorContains(t, err, "GEMINI_API_KEY")

	t.Setenv("INFERENCE_PROVIDER", "OpenAI")
	_, err = Load()
	require.ErrorContains(t, err, "OPENAI_API_KEY")

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ProviderOpenAI, cfg.Inference.Provider)

	t.Setenv("INFERENCE_PROVIDER", "llava")
	_, err = Load()
	require.ErrorContains(t, err, "unknown INFERENCE_PROVIDER")
}

func TestConfig_SlogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, (&Config{LogLevel: "debug"}).SlogLevel())
	require.Equal(t, slog.LevelInfo, (&Config{LogLevel: "chatty"}).SlogLevel())
}

func TestLoadPrompt_Embedded(t *testing.T) {
	p, err := LoadPrompt("")
	require.NoError(t, err)
	require.Contains(t, p.Text, `"corners"`)
	require.Len(t, p.Captions, 3)
	require.Contains(t, p.RefusalMarkers, "sorry")
}

func TestLoadPrompt_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("captions:\n  - one\n  - two\n"), 0o644))

	p, err := LoadPrompt(path)
	require.NoError(t, err)
	require.Equal(t, []string{"one", "two"}, p.Captions)
	require.NotEmpty(t, p.Text)
	require.Contains(t, p.RefusalMarkers, "sorry")

	_, err = LoadPrompt(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
