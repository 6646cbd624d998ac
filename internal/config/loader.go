package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Session backends.
const (
	SessionBackendSQLite = "sqlite"
	SessionBackendRedis  = "redis"
)

// Config captures environment driven configuration values for the court booking service.
type Config struct {
	HTTPPort       int
	SQLitePath     string
	SessionBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	SessionTTL     time.Duration
	Location       *time.Location
	LogLevel       slog.Level
}

type rawConfig struct {
	HTTPPort       int           `env:"COURTBOT_HTTP_PORT"       envDefault:"8080"`
	SQLitePath     string        `env:"COURTBOT_SQLITE_PATH"     envDefault:"courtbot.db"`
	SessionBackend string        `env:"COURTBOT_SESSION_BACKEND" envDefault:"sqlite"`
	RedisAddr      string        `env:"COURTBOT_REDIS_ADDR"`
	RedisPassword  string        `env:"COURTBOT_REDIS_PASSWORD"`
	RedisDB        int           `env:"COURTBOT_REDIS_DB"        envDefault:"0"`
	SessionTTL     time.Duration `env:"COURTBOT_SESSION_TTL"     envDefault:"30m"`
	Timezone       string        `env:"COURTBOT_TIMEZONE"        envDefault:"America/Santiago"`
	LogLevel       string        `env:"COURTBOT_LOG_LEVEL"       envDefault:"info"`
}

// LoadDotEnv loads variables from the given files (".env" when none are
// named) without overriding the process environment. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load parses configuration values from the current process environment.
//
// Missing and invalid variables are reported together in one error.
func Load() (Config, error) {
	var raw rawConfig
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg := Config{
		HTTPPort:       raw.HTTPPort,
		SQLitePath:     strings.TrimSpace(raw.SQLitePath),
		SessionBackend: strings.ToLower(strings.TrimSpace(raw.SessionBackend)),
		RedisAddr:      strings.TrimSpace(raw.RedisAddr),
		RedisPassword:  raw.RedisPassword,
		RedisDB:        raw.RedisDB,
		SessionTTL:     raw.SessionTTL,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		invalid = append(invalid, "COURTBOT_HTTP_PORT")
	}

	if cfg.SQLitePath == "" {
		missing = append(missing, "COURTBOT_SQLITE_PATH")
	}

	switch cfg.SessionBackend {
	case SessionBackendSQLite:
	case SessionBackendRedis:
		if cfg.RedisAddr == "" {
			missing = append(missing, "COURTBOT_REDIS_ADDR")
		}
		if cfg.RedisDB < 0 {
			invalid = append(invalid, "COURTBOT_REDIS_DB")
		}
	default:
		invalid = append(invalid, "COURTBOT_SESSION_BACKEND")
	}

	if cfg.SessionTTL < 0 {
		invalid = append(invalid, "COURTBOT_SESSION_TTL")
	}

	location, err := time.LoadLocation(strings.TrimSpace(raw.Timezone))
	if err != nil {
		invalid = append(invalid, "COURTBOT_TIMEZONE")
	} else {
		cfg.Location = location
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(strings.TrimSpace(raw.LogLevel))); err != nil {
		invalid = append(invalid, "COURTBOT_LOG_LEVEL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
