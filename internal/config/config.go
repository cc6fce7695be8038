// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Credential store backends.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// Config holds the client's runtime settings.
type Config struct {
	APIURL          string
	CredentialStore string
	SQLitePath      string
	DatabaseURL     string
	StoreOwner      string
	RedisAddr       string
	RedisPrefix     string
	Timeout         time.Duration
	Metrics         bool
}

// Load reads the configuration from environment variables, applying defaults
// for anything unset.
func Load() (Config, error) {
	cfg := Config{
		APIURL:          strings.TrimRight(fallback(os.Getenv("FIELDSYNC_API_URL"), "http://localhost:8080/api"), "/"),
		CredentialStore: strings.ToLower(fallback(os.Getenv("FIELDSYNC_CREDENTIAL_STORE"), StoreSQLite)),
		SQLitePath:      fallback(os.Getenv("FIELDSYNC_SQLITE_PATH"), defaultSQLitePath()),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		StoreOwner:      fallback(os.Getenv("FIELDSYNC_STORE_OWNER"), hostname()),
		RedisAddr:       fallback(os.Getenv("REDIS_ADDR"), "localhost:6379"),
		RedisPrefix:     fallback(os.Getenv("FIELDSYNC_REDIS_PREFIX"), "fieldsync:session:"),
	}

	seconds := fallback(os.Getenv("FIELDSYNC_TIMEOUT_SECONDS"), "15")
	if n, err := strconv.Atoi(seconds); err == nil && n > 0 {
		cfg.Timeout = time.Duration(n) * time.Second
	} else {
		cfg.Timeout = 15 * time.Second
	}

	if v := strings.TrimSpace(os.Getenv("FIELDSYNC_METRICS")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("FIELDSYNC_METRICS: %w", err)
		}
		cfg.Metrics = b
	}

	switch cfg.CredentialStore {
	case StoreSQLite, StoreRedis, StoreMemory:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for the %s credential store", StorePostgres)
		}
	default:
		return Config{}, fmt.Errorf("unknown credential store %q", cfg.CredentialStore)
	}

	return cfg, nil
}

func defaultSQLitePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "fieldsync.db"
	}
	return filepath.Join(dir, "fieldsync", "credentials.db")
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "default"
	}
	return h
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
