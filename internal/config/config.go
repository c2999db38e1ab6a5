// Package config reads server settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"mindbot-vr/internal/agent"
	"mindbot-vr/internal/triage"
	"mindbot-vr/internal/vitals"
)

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

type Config struct {
	Port             string
	DatabaseURL      string
	DBConnectRetries int

	LogLevel  string
	LogFormat string

	TriageProfile triage.Profile
	LLM           agent.Config

	AdminToken       string
	TelegramBotToken string
	TelegramChatID   int64

	PDFFontPath   string
	ReportsDir    string
	HospitalsFile string

	MaxBodyBytes      int64
	CORSOrigins       []string
	MapsEnabled       bool
	VitalsMaxSessions int
}

// Load reads .env when present, then the process environment. Variables
// already set in the environment win over .env.
func Load() (*Config, error) {
	_ = godotenv.Load()

	p := &parser{}
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBConnectRetries: p.int("DB_CONNECT_RETRIES", 10),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(getEnv("LOG_FORMAT", "json")),
		LLM: agent.Config{
			Provider:      os.Getenv("LLM_PROVIDER"),
			OllamaURL:     os.Getenv("OLLAMA_URL"),
			OllamaModel:   getEnv("OLLAMA_MODEL", "llama3.1"),
			OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
			Timeout:       p.duration("LLM_TIMEOUT", 12*time.Second),
		},
		AdminToken:        strings.TrimSpace(os.Getenv("ADMIN_TOKEN")),
		TelegramBotToken:  strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		TelegramChatID:    p.int64("TELEGRAM_CHAT_ID", 0),
		PDFFontPath:       os.Getenv("PDF_FONT_PATH"),
		ReportsDir:        os.Getenv("REPORTS_DIR"),
		HospitalsFile:     os.Getenv("HOSPITALS_FILE"),
		MaxBodyBytes:      p.int64("MAX_BODY_BYTES", 1<<20),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "*")),
		MapsEnabled:       strings.TrimSpace(os.Getenv("GOOGLE_MAPS_API_KEY")) != "",
		VitalsMaxSessions: p.int("VITALS_MAX_SESSIONS", vitals.DefaultMaxSessions),
	}

	profile, err := triage.ParseProfile(os.Getenv("TRIAGE_PROFILE"))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("TRIAGE_PROFILE: %w", err))
	}
	cfg.TriageProfile = profile

	if cfg.DatabaseURL == "" {
		p.errs = append(p.errs, ErrMissingDatabaseURL)
	}
	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TelegramEnabled reports whether SOS alerts can be delivered.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser collects every malformed variable so Load reports them together.
type parser struct {
	errs []error
}

func (p *parser) int(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid non-negative integer %q", key, raw))
		return fallback
	}
	return n
}

func (p *parser) int64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return fallback
	}
	return n
}

// duration accepts Go durations ("12s") or a bare number of seconds.
func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return fallback
	}
	return d
}
