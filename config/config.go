package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	HTTP      HTTPConfig
	Inference InferenceConfig
	Gemini    GeminiConfig
	OpenAI    OpenAIConfig
	Session   SessionConfig

	TelegramToken string `envconfig:"TELEGRAM_TOKEN"`
	PromptFile    string `envconfig:"PROMPT_FILE"`
	ImageProbe    bool   `envconfig:"IMAGE_PROBE" default:"true"`
	ImageMinSide  int    `envconfig:"IMAGE_MIN_SIDE" default:"0"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
}

type HTTPConfig struct {
	Host           string        `envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port           string        `envconfig:"HTTP_PORT" default:"8000"`
	ReadTimeout    time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"30s"`
	WriteTimeout   time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	MaxUploadBytes int64         `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
}

type InferenceConfig struct {
	Provider       string        `envconfig:"INFERENCE_PROVIDER" default:"gemini"`
	AnalyzeTimeout time.Duration `envconfig:"ANALYZE_TIMEOUT" default:"60s"`
}

type GeminiConfig struct {
	APIKey string `envconfig:"GEMINI_API_KEY"`
	Model  string `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
}

type OpenAIConfig struct {
	Provider    string `envconfig:"OPENAI_PROVIDER" default:"openai"`
	APIKey      string `envconfig:"OPENAI_API_KEY"`
	APIEndpoint string `envconfig:"OPENAI_ENDPOINT" default:"https://api.openai.com/v1"`
	Model       string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	APIVersion  string `envconfig:"OPENAI_API_VERSION" default:"2024-06-01"`
}

type SessionConfig struct {
	ProgressInterval time.Duration `envconfig:"PROGRESS_INTERVAL" default:"2s"`
	TTL              time.Duration `envconfig:"SESSION_TTL" default:"1h"`
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("configuration loaded", "provider", cfg.Inference.Provider, "telegram", cfg.TelegramToken != "")
	return &cfg, nil
}

// Validate проверяет, что для выбранного провайдера есть ключ.
func (c *Config) Validate() error {
	c.Inference.Provider = strings.ToLower(strings.TrimSpace(c.Inference.Provider))
	if c.Inference.Provider == "" {
		c.Inference.Provider = ProviderGemini
	}
	switch c.Inference.Provider {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for provider %q", c.Inference.Provider)
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for provider %q", c.Inference.Provider)
		}
	default:
		return fmt.Errorf("unknown INFERENCE_PROVIDER %q", c.Inference.Provider)
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// SlogLevel переводит LOG_LEVEL в уровень slog.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
