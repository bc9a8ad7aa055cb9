package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"

	appDir = "ecb-exchange"
)

type Config struct {
	Storage         string        `env:"STORAGE" env-default:"sqlite" env-description:"storage backend: sqlite or memory"`
	DBPath          string        `env:"DB_PATH" env-description:"sqlite database file"`
	Endpoint        string        `env:"ECB_ENDPOINT" env-default:"https://data-api.ecb.europa.eu/service/data/EXR/D..EUR.SP00.A?format=jsondata&lastNObservations=1"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT" env-default:"30s"`
	HTTPAddr        string        `env:"HTTP_ADDR" env-description:"optional HTTP listen address, disabled when empty"`
	Stdio           bool          `env:"MCP_STDIO" env-default:"true" env-description:"serve the tool protocol on stdin/stdout"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" env-default:"0s" env-description:"background cache warm-up period, disabled when zero"`
	LogLevel        string        `env:"LOG_LEVEL" env-default:"info"`
}

// Load reads an optional .env file from the working directory and then the
// process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	cfg.Storage = strings.ToLower(cfg.Storage)
	if cfg.Storage != StorageSQLite && cfg.Storage != StorageMemory {
		return Config{}, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}

	if cfg.Storage == StorageSQLite && cfg.DBPath == "" {
		dir, err := DatabaseDir()
		if err != nil {
			return Config{}, err
		}
		cfg.DBPath = filepath.Join(dir, "exchange.db")
	}

	return cfg, nil
}

// DatabaseDir returns $HOME/.config/ecb-exchange/database.
func DatabaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", appDir, "database"), nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
