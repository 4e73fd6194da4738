package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultGeminiModel  = "gemini-1.5-flash"
	defaultGroqModel    = "llama-3.3-70b-versatile"
	defaultDatabasePath = "data/meal-planner.db"
	defaultPort         = "8080"
	defaultOrigin       = "http://localhost:5173"
)

// Config holds the configuration for the application.
type Config struct {
	AppEnv string

	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string

	DatabasePath   string
	Port           string
	SessionSecret  string
	AllowedOrigins []string

	// Telegram Config (optional, enables plan sharing)
	TelegramBotToken string
	TelegramChatID   int64
}

// Load reads a .env file when not running in production and then builds the
// Config from the environment.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}
	return NewFromEnv()
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable not set")
	}

	var telegramChatID int64
	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
		telegramChatID = id
	}

	return &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		GeminiAPIKey:     geminiAPIKey,
		GeminiModel:      getEnv("GEMINI_MODEL", defaultGeminiModel),
		GroqAPIKey:       os.Getenv("GROQ_API_KEY"),
		GroqModel:        getEnv("GROQ_MODEL", defaultGroqModel),
		DatabasePath:     getEnv("DATABASE_PATH", defaultDatabasePath),
		Port:             getEnv("PORT", defaultPort),
		SessionSecret:    sessionSecret,
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", defaultOrigin)),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   telegramChatID,
	}, nil
}

// TelegramEnabled reports whether plan sharing over Telegram is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
