package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
)

// Config captures environment driven configuration values for the workspace service.
type Config struct {
	HTTPPort       int
	StorageDriver  string
	StorageDSN     string
	BadgerPath     string
	Codec          string
	SeedPath       string
	UsersSeedPath  string
	CommitAttempts int
	PollInterval   time.Duration
	LogLevel       string
}

// Load reads configuration from the process environment, after merging a
// .env file from the working directory when one exists. Variables use the
// WORKSPACE_ prefix.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("WORKSPACE")
	v.AutomaticEnv()

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("STORAGE_DRIVER", DriverSQLite)
	v.SetDefault("STORAGE_DSN", "")
	v.SetDefault("BADGER_PATH", "data/badger")
	v.SetDefault("CODEC", "json")
	v.SetDefault("SEED_PATH", "")
	v.SetDefault("USERS_SEED_PATH", "")
	v.SetDefault("COMMIT_ATTEMPTS", "3")
	v.SetDefault("POLL_INTERVAL", "2s")
	v.SetDefault("LOG_LEVEL", "info")

	get := func(key string) string { return strings.TrimSpace(v.GetString(key)) }

	cfg := Config{
		StorageDriver: strings.ToLower(get("STORAGE_DRIVER")),
		StorageDSN:    get("STORAGE_DSN"),
		BadgerPath:    get("BADGER_PATH"),
		Codec:         strings.ToLower(get("CODEC")),
		SeedPath:      get("SEED_PATH"),
		UsersSeedPath: get("USERS_SEED_PATH"),
		LogLevel:      strings.ToLower(get("LOG_LEVEL")),
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if port, err := strconv.Atoi(get("HTTP_PORT")); err != nil || port <= 0 || port > 65535 {
		invalid = append(invalid, "WORKSPACE_HTTP_PORT")
	} else {
		cfg.HTTPPort = port
	}

	switch cfg.StorageDriver {
	case DriverMemory:
	case DriverSQLite:
		if cfg.StorageDSN == "" {
			cfg.StorageDSN = "file:workspace.db"
		}
	case DriverBadger:
		if cfg.BadgerPath == "" {
			missing = append(missing, "WORKSPACE_BADGER_PATH")
		}
	case DriverPostgres:
		if cfg.StorageDSN == "" {
			missing = append(missing, "WORKSPACE_STORAGE_DSN")
		}
	default:
		invalid = append(invalid, "WORKSPACE_STORAGE_DRIVER")
	}

	if cfg.Codec != "json" && cfg.Codec != "cbor" {
		invalid = append(invalid, "WORKSPACE_CODEC")
	}

	if attempts, err := strconv.Atoi(get("COMMIT_ATTEMPTS")); err != nil || attempts < 1 {
		invalid = append(invalid, "WORKSPACE_COMMIT_ATTEMPTS")
	} else {
		cfg.CommitAttempts = attempts
	}

	if interval, err := time.ParseDuration(get("POLL_INTERVAL")); err != nil || interval <= 0 {
		invalid = append(invalid, "WORKSPACE_POLL_INTERVAL")
	} else {
		cfg.PollInterval = interval
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		invalid = append(invalid, "WORKSPACE_LOG_LEVEL")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
