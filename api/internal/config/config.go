package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// DefaultLLM используется, когда в запросе нет llm_name
	DefaultLLM string
	// PromptMode: профиль промпта по умолчанию (см. prompt/profiles.yaml)
	PromptMode  string
	PromptsFile string

	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	UpstreamTimeout  time.Duration
	UpstreamAttempts int
	MaxImageBytes    int64

	LogLevel  string
	LogFormat string

	TelegramBotToken string
	WebhookURL       string
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := getEnv(k, "")
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("bad %s=%q: want seconds or a Go duration", k, v)
	}
	return d, nil
}

func getInt(k string, def int) (int, error) {
	v := getEnv(k, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("bad %s=%q: want a positive integer", k, v)
	}
	return n, nil
}

// Load читает конфигурацию из окружения. Ключи API не обязательны:
// движок без ключа вернёт ошибку только при вызове.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "8000"),

		DefaultLLM:  getEnv("DEFAULT_LLM", "gpt"),
		PromptMode:  getEnv("PROMPT_MODE", "standard"),
		PromptsFile: getEnv("PROMPTS_FILE", ""),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
	}

	var err error
	if cfg.UpstreamTimeout, err = getDuration("UPSTREAM_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.UpstreamAttempts, err = getInt("UPSTREAM_ATTEMPTS", 2); err != nil {
		return nil, err
	}
	maxImage, err := getInt("MAX_IMAGE_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}
	cfg.MaxImageBytes = int64(maxImage)
	return cfg, nil
}
