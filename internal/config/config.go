package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	JWTIssuer   string
	JWTTTL      time.Duration
	BcryptCost  int
	CORSOrigins []string
	Environment string
	LogLevel    string
	StaticDir   string
	RedisURL    string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:        fallback(os.Getenv("PORT"), "6900"),
		DatabaseURL: fallback(os.Getenv("DATABASE_URL"), "sqlite:campus.db"),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:   fallback(os.Getenv("JWT_ISSUER"), "campus-connect"),
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), fallback(os.Getenv("ALLOWED_ORIGINS"), "*"))),
		Environment: strings.ToLower(fallback(os.Getenv("APP_ENV"), "production")),
		LogLevel:    fallback(os.Getenv("LOG_LEVEL"), "info"),
		StaticDir:   strings.TrimSpace(os.Getenv("STATIC_DIR")),
		RedisURL:    strings.TrimSpace(os.Getenv("REDIS_URL")),
	}

	minutes := fallback(os.Getenv("JWT_TTL_MINUTES"), "1440")
	if ttlMinutes, err := strconv.Atoi(minutes); err == nil && ttlMinutes > 0 {
		cfg.JWTTTL = time.Duration(ttlMinutes) * time.Minute
	} else {
		cfg.JWTTTL = 24 * time.Hour
	}

	cost := fallback(os.Getenv("BCRYPT_COST"), "10")
	if n, err := strconv.Atoi(cost); err == nil && n > 0 {
		cfg.BcryptCost = n
	} else {
		cfg.BcryptCost = 10
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Development reports whether error details may be exposed to clients.
func (c Config) Development() bool {
	return c.Environment == "development"
}

// UsesPostgres reports whether DatabaseURL points at a Postgres server
// rather than a SQLite file.
func (c Config) UsesPostgres() bool {
	url := strings.ToLower(c.DatabaseURL)
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
