package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const devJWTSecret = "pocketpilot-dev-secret"

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Plaid      PlaidConfig
	Encryption EncryptionConfig
	Sync       SyncConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Port        string `toml:"port"`
	FrontendURL string `toml:"frontend_url"`
}

type DatabaseConfig struct {
	Driver string `toml:"driver"` // memory or postgres
	URL    string `toml:"url"`
}

type JWTConfig struct {
	Secret string        `toml:"secret"`
	TTL    time.Duration `toml:"-"`
	TTLRaw string        `toml:"ttl"`
}

type PlaidConfig struct {
	ClientID      string `toml:"client_id"`
	Secret        string `toml:"secret"`
	Env           string `toml:"env"`
	SyncStartDate string `toml:"sync_start_date"`
	PageSize      int    `toml:"page_size"`
}

// Configured reports whether Plaid credentials are present.
func (p PlaidConfig) Configured() bool {
	return p.ClientID != "" && p.Secret != ""
}

type EncryptionConfig struct {
	Key string `toml:"key"`
}

type SyncConfig struct {
	Schedule string `toml:"schedule"` // cron spec, empty disables
}

type RateLimitConfig struct {
	PerMinute int `toml:"per_minute"`
}

// fileConfig is the shape of the optional TOML file.
type fileConfig struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	JWT        JWTConfig        `toml:"jwt"`
	Plaid      PlaidConfig      `toml:"plaid"`
	Encryption EncryptionConfig `toml:"encryption"`
	Sync       SyncConfig       `toml:"sync"`
	RateLimit  RateLimitConfig  `toml:"rate_limit"`
}

// Load reads .env, an optional TOML file named by POCKETPILOT_CONFIG and the
// process environment. Environment variables override file values.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var file fileConfig
	if path := os.Getenv("POCKETPILOT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", orDefault(file.Server.Port, "5000")),
			FrontendURL: getEnv("FRONTEND_URL", orDefault(file.Server.FrontendURL, "http://localhost:3000")),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("STORE", orDefault(file.Database.Driver, "memory"))),
			URL:    getEnv("DATABASE_URL", file.Database.URL),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", file.JWT.Secret),
		},
		Plaid: PlaidConfig{
			ClientID:      getEnv("PLAID_CLIENT_ID", file.Plaid.ClientID),
			Secret:        getEnv("PLAID_SECRET", file.Plaid.Secret),
			Env:           getEnv("PLAID_ENV", orDefault(file.Plaid.Env, "sandbox")),
			SyncStartDate: getEnv("PLAID_SYNC_START_DATE", orDefault(file.Plaid.SyncStartDate, "2024-01-01")),
		},
		Encryption: EncryptionConfig{
			Key: getEnv("DATA_ENCRYPTION_KEY", file.Encryption.Key),
		},
		Sync: SyncConfig{
			Schedule: getEnv("SYNC_SCHEDULE", file.Sync.Schedule),
		},
	}

	ttl, err := time.ParseDuration(getEnv("JWT_TTL", orDefault(file.JWT.TTLRaw, "168h")))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.JWT.TTL = ttl

	cfg.Plaid.PageSize, err = getIntEnv("PLAID_PAGE_SIZE", orDefaultInt(file.Plaid.PageSize, 500))
	if err != nil {
		return nil, err
	}
	if cfg.Plaid.PageSize < 1 || cfg.Plaid.PageSize > 500 {
		return nil, fmt.Errorf("invalid PLAID_PAGE_SIZE: must be between 1 and 500")
	}

	cfg.RateLimit.PerMinute, err = getIntEnv("RATE_LIMIT_PER_MINUTE", orDefaultInt(file.RateLimit.PerMinute, 100))
	if err != nil {
		return nil, err
	}

	if _, err := time.Parse("2006-01-02", cfg.Plaid.SyncStartDate); err != nil {
		return nil, fmt.Errorf("invalid PLAID_SYNC_START_DATE: %w", err)
	}

	switch cfg.Database.Driver {
	case "memory":
	case "postgres":
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required when STORE=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown STORE %q (want memory or postgres)", cfg.Database.Driver)
	}

	if cfg.Encryption.Key != "" && len(cfg.Encryption.Key) != 32 {
		return nil, fmt.Errorf("DATA_ENCRYPTION_KEY must be exactly 32 characters")
	}

	if cfg.JWT.Secret == "" {
		log.Println("⚠️ JWT_SECRET not set, using development secret")
		cfg.JWT.Secret = devJWTSecret
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func orDefaultInt(value, fallback int) int {
	if value != 0 {
		return value
	}
	return fallback
}
