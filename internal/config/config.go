package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	// Server
	Port            int
	CORSAllowOrigin string

	// Database
	DatabaseURL string
	DBHost      string
	DBPort      int
	DBName      string
	DBUser      string
	DBPassword  string
	AutoMigrate bool

	// Quote provider
	QuoteAPIKey         string
	QuoteBaseURL        string
	QuoteTimeoutSeconds int
	QuoteMaxAttempts    int

	// Logging
	LogLevel    string
	LogEncoding string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            envInt("PORT", 5000),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		DatabaseURL: envStr("DATABASE_URL", ""),
		DBHost:      envStr("DB_HOST", "localhost"),
		DBPort:      envInt("DB_PORT", 5432),
		DBName:      envStr("DB_NAME", "portfolio_tracker"),
		DBUser:      envStr("DB_USER", "postgres"),
		DBPassword:  envStr("DB_PASSWORD", ""),
		AutoMigrate: envBool("AUTO_MIGRATE", true),

		QuoteAPIKey:         envStr("QUOTE_API_KEY", ""),
		QuoteBaseURL:        strings.TrimRight(envStr("QUOTE_BASE_URL", "https://api.example.com"), "/"),
		QuoteTimeoutSeconds: envInt("QUOTE_TIMEOUT_SECONDS", 5),
		QuoteMaxAttempts:    envInt("QUOTE_MAX_ATTEMPTS", 1),

		LogLevel:    envStr("LOG_LEVEL", "info"),
		LogEncoding: envStr("LOG_ENCODING", "json"),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.QuoteAPIKey == "" {
		errs = append(errs, "QUOTE_API_KEY is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT %d is out of range", c.Port))
	}
	if c.QuoteTimeoutSeconds <= 0 {
		errs = append(errs, "QUOTE_TIMEOUT_SECONDS must be positive")
	}
	if c.QuoteMaxAttempts < 1 {
		errs = append(errs, "QUOTE_MAX_ATTEMPTS must be at least 1")
	}
	if c.LogEncoding != "json" && c.LogEncoding != "console" {
		errs = append(errs, fmt.Sprintf("LOG_ENCODING %q must be json or console", c.LogEncoding))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// Print logs the effective configuration. Secrets are reported as set or unset only.
func (c *Config) Print(log *zap.Logger) {
	db := fmt.Sprintf("%s:%d/%s", c.DBHost, c.DBPort, c.DBName)
	if c.DatabaseURL != "" {
		db = "DATABASE_URL"
	}
	log.Info("configuration",
		zap.Int("port", c.Port),
		zap.String("corsAllowOrigin", c.CORSAllowOrigin),
		zap.String("database", db),
		zap.Bool("autoMigrate", c.AutoMigrate),
		zap.String("quoteBaseURL", c.QuoteBaseURL),
		zap.String("quoteAPIKey", boolLabel(c.QuoteAPIKey != "", "configured", "not set")),
		zap.Duration("quoteTimeout", c.QuoteTimeout()),
		zap.Int("quoteMaxAttempts", c.QuoteMaxAttempts),
	)
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func (c *Config) QuoteTimeout() time.Duration {
	return time.Duration(c.QuoteTimeoutSeconds) * time.Second
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
