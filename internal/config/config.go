// Package config loads cashraaga settings from a TOML file, a .env file and
// CASHRAAGA_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const appName = "cashraaga"

// Config holds all cashraaga configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Redis   RedisConfig   `toml:"redis"`
	Advisor AdvisorConfig `toml:"advisor"`
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`
}

// StorageConfig selects where the analysis is persisted.
type StorageConfig struct {
	Backend string `toml:"backend" validate:"oneof=sqlite redis memory"`
	Path    string `toml:"path,omitempty"`
}

// RedisConfig holds the Redis connection used by the redis backend.
type RedisConfig struct {
	Addr                  string `toml:"addr,omitempty"`
	Password              string `toml:"password,omitempty"`
	DB                    int    `toml:"db" validate:"gte=0"`
	ConnectTimeoutSeconds int    `toml:"connect_timeout_seconds" validate:"gte=0"`
}

// ConnectTimeout returns the dial timeout as a duration.
func (r RedisConfig) ConnectTimeout() time.Duration {
	return time.Duration(r.ConnectTimeoutSeconds) * time.Second
}

// AdvisorConfig holds the starting values of the affordability form.
type AdvisorConfig struct {
	DefaultRate        string `toml:"default_rate"`
	DefaultTenureYears string `toml:"default_tenure_years"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=console json"`
}

// ServerConfig holds the local HTTP API settings.
type ServerConfig struct {
	Addr         string `toml:"addr" validate:"required"`
	EventHistory int    `toml:"event_history" validate:"gte=1"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend: "sqlite",
		},
		Redis: RedisConfig{
			Addr:                  "127.0.0.1:6379",
			ConnectTimeoutSeconds: 5,
		},
		Advisor: AdvisorConfig{
			DefaultRate:        "12",
			DefaultTenureYears: "3",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8787",
			EventHistory: 200,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}

// DefaultDBPath returns the SQLite file used when storage.path is unset.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "cashraaga.db")
}

// DBPath returns the configured SQLite path or the default one.
func (c Config) DBPath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return DefaultDBPath()
}

// Load reads .env from the working directory, then the config file, then
// applies environment overrides. A missing file yields defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), fmt.Errorf("reading .env: %w", err)
	}
	return LoadFile(ConfigPath())
}

// LoadFile reads the config at path and applies environment overrides.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate reports the first invalid setting.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Storage.Backend = GetEnvOrDefaultAsString("CASHRAAGA_STORE", cfg.Storage.Backend)
	cfg.Storage.Path = GetEnvOrDefaultAsString("CASHRAAGA_DB", cfg.Storage.Path)

	cfg.Redis.Addr = GetEnvOrDefaultAsString("CASHRAAGA_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = GetEnvOrDefaultAsString("CASHRAAGA_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = GetEnvOrDefaultAsInt("CASHRAAGA_REDIS_DB", cfg.Redis.DB)
	cfg.Redis.ConnectTimeoutSeconds = GetEnvOrDefaultAsInt("CASHRAAGA_REDIS_CONNECT_TIMEOUT_SECONDS", cfg.Redis.ConnectTimeoutSeconds)

	cfg.Advisor.DefaultRate = GetEnvOrDefaultAsString("CASHRAAGA_DEFAULT_RATE", cfg.Advisor.DefaultRate)
	cfg.Advisor.DefaultTenureYears = GetEnvOrDefaultAsString("CASHRAAGA_DEFAULT_TENURE_YEARS", cfg.Advisor.DefaultTenureYears)

	cfg.Log.Level = GetEnvOrDefaultAsString("CASHRAAGA_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = GetEnvOrDefaultAsString("CASHRAAGA_LOG_FORMAT", cfg.Log.Format)

	cfg.Server.Addr = GetEnvOrDefaultAsString("CASHRAAGA_SERVER_ADDR", cfg.Server.Addr)
	cfg.Server.EventHistory = GetEnvOrDefaultAsInt("CASHRAAGA_SERVER_EVENT_HISTORY", cfg.Server.EventHistory)
}

// GetEnvOrDefaultAsString returns the env value, or def when unset or empty.
func GetEnvOrDefaultAsString(key, def string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return def
}

// GetEnvOrDefaultAsInt returns the env value as an int, or def when unset
// or not an integer.
func GetEnvOrDefaultAsInt(key string, def int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return n
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(ConfigPath(), cfg)
}

// SaveFile writes cfg to path, creating parent directories.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
