// Package config loads taskflow's TOML configuration file and applies
// TASKFLOW_* environment overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "taskflow.db"
	DefaultLogName        = "taskflow.log"
	DefaultExportDirName  = "exports"
	DefaultDebounceMS     = 300
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type RedisConfig struct {
	Addr     string `toml:"addr" env:"TASKFLOW_REDIS_ADDR"`
	Password string `toml:"password,omitempty" env:"TASKFLOW_REDIS_PASSWORD"`
	DB       int    `toml:"db" env:"TASKFLOW_REDIS_DB"`
	Key      string `toml:"key" env:"TASKFLOW_REDIS_KEY"`
	// URL overrides Addr, Password and DB, e.g. redis://:secret@localhost:6379/2
	URL string `toml:"url,omitempty" env:"TASKFLOW_REDIS_URL"`
}

type SettingsConfig struct {
	Backend string      `toml:"backend" env:"TASKFLOW_SETTINGS_BACKEND"`
	Redis   RedisConfig `toml:"redis"`
}

type Config struct {
	DBPath           string         `toml:"db_path" env:"TASKFLOW_DB_PATH"`
	LogPath          string         `toml:"log_path" env:"TASKFLOW_LOG_PATH"`
	LogLevel         string         `toml:"log_level" env:"TASKFLOW_LOG_LEVEL"`
	SearchDebounceMS int            `toml:"search_debounce_ms" env:"TASKFLOW_SEARCH_DEBOUNCE_MS"`
	ExportDir        string         `toml:"export_dir" env:"TASKFLOW_EXPORT_DIR"`
	Settings         SettingsConfig `toml:"settings"`
}

// DefaultPath returns ~/.config/taskflow/config.toml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "taskflow", DefaultConfigFileName), nil
}

// LoadOrCreate reads the config at path, writing the defaults there first if
// the file does not exist. Relative file locations default to the config's
// directory. Environment variables win over file values.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(filepath.Dir(path))

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, fmt.Errorf("write default config: %w", err)
		}
		log.WithField("path", path).Info("default config written")
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("read env: %w", err)
	}
	cfg.fillDefaults(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig(dir string) Config {
	return Config{
		DBPath:           filepath.Join(dir, DefaultDBName),
		LogPath:          filepath.Join(dir, DefaultLogName),
		LogLevel:         "info",
		SearchDebounceMS: DefaultDebounceMS,
		ExportDir:        filepath.Join(dir, DefaultExportDirName),
		Settings: SettingsConfig{
			Backend: BackendSQLite,
			Redis: RedisConfig{
				Addr: "localhost:6379",
				Key:  "taskflow:settings",
			},
		},
	}
}

// fillDefaults restores defaults for values a file or env var blanked out.
func (c *Config) fillDefaults(dir string) {
	def := defaultConfig(dir)
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.LogPath == "" {
		c.LogPath = def.LogPath
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.ExportDir == "" {
		c.ExportDir = def.ExportDir
	}
	if c.Settings.Backend == "" {
		c.Settings.Backend = def.Settings.Backend
	}
	c.Settings.Backend = strings.ToLower(c.Settings.Backend)
}

func (c Config) Validate() error {
	if c.SearchDebounceMS < 0 {
		return fmt.Errorf("search_debounce_ms must not be negative, got %d", c.SearchDebounceMS)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.Settings.Backend {
	case BackendSQLite:
	case BackendRedis:
		if c.Settings.Redis.Addr == "" && c.Settings.Redis.URL == "" {
			return fmt.Errorf("settings.redis.addr or settings.redis.url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown settings backend %q", c.Settings.Backend)
	}
	return nil
}

// SearchDebounce is the idle time before a typed search is applied.
func (c Config) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMS) * time.Millisecond
}

func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// RedisOptions builds client options for the redis settings backend.
func (c Config) RedisOptions() (*redis.Options, error) {
	rc := c.Settings.Redis
	if rc.URL != "" {
		opts, err := redis.ParseURL(rc.URL)
		if err != nil {
			return nil, fmt.Errorf("settings.redis.url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB}, nil
}
