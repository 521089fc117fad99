package config

import (
	"os"
	"strconv"
	"strings"
)

// Config keeps runtime settings for the service.
type Config struct {
	ListenAddr    string
	DatabaseURL   string
	PlanStorePath string

	OpenAIAPIKey string
	GoogleAPIKey string
	GeminiModel  string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string

	DefaultTimezone string
	DayStartHour    int
	DayEndHour      int
	GraceHours      int
}

// Load reads configuration from environment variables with sane defaults.
// Missing provider credentials are not an error here; the affected endpoints
// answer 501 instead.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:      envOr("LISTEN_ADDR", ":1234"),
		DatabaseURL:     envOr("DATABASE_URL", "focuscoach.db"),
		PlanStorePath:   envOr("PLAN_STORE_PATH", "plans"),
		OpenAIAPIKey:    strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		GoogleAPIKey:    strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")),
		GeminiModel:     envOr("GOOGLE_GEMINI_MODEL", "gemini-1.5-flash"),
		VAPIDPublicKey:  strings.TrimSpace(os.Getenv("VAPID_PUBLIC_KEY")),
		VAPIDPrivateKey: strings.TrimSpace(os.Getenv("VAPID_PRIVATE_KEY")),
		VAPIDSubject:    envOr("VAPID_SUBJECT", "mailto:you@example.com"),
		DefaultTimezone: envOr("DEFAULT_TIMEZONE", "Europe/Berlin"),
		DayStartHour:    envIntOr("DAY_START_HOUR", 9),
		DayEndHour:      envIntOr("DAY_END_HOUR", 18),
		GraceHours:      envIntOr("GRACE_HOURS", 10),
	}

	if cfg.DayStartHour < 0 || cfg.DayStartHour > 23 {
		cfg.DayStartHour = 9
	}
	if cfg.DayEndHour <= cfg.DayStartHour || cfg.DayEndHour > 24 {
		cfg.DayStartHour, cfg.DayEndHour = 9, 18
	}
	if cfg.GraceHours < 0 {
		cfg.GraceHours = 10
	}

	return cfg, nil
}

// HasPushCredentials reports whether both VAPID keys are configured.
func (c Config) HasPushCredentials() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
