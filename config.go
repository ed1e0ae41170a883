package penpal

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type StorageConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
	DSN     string `toml:"dsn"`
}

// Config is everything the command line needs to build a session.
type Config struct {
	LLM      LLMConfig     `toml:"llm"`
	Storage  StorageConfig `toml:"storage"`
	Session  SessionConfig `toml:"session"`
	PacingMS int           `toml:"pacing_ms"`
	LogLevel string        `toml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL:    DefaultBaseURL,
			Model:      DefaultModel,
			MaxRetries: DefaultMaxRetries,
		},
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    "penpal.db",
		},
		Session: SessionConfig{
			Tone:  DefaultTone,
			Style: DefaultStyle,
		},
		PacingMS: int(DefaultPacing / time.Millisecond),
		LogLevel: "info",
	}
}

// LoadConfig reads .env, then the TOML file at path when path is not empty,
// then the environment. Later sources win.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded, using environment variables", "error", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = getEnv("PENPAL_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = getEnv("PENPAL_MODEL", c.LLM.Model)
	c.Storage.Backend = getEnv("PENPAL_STORAGE", c.Storage.Backend)
	c.Storage.Path = getEnv("PENPAL_SQLITE_PATH", c.Storage.Path)
	c.Storage.DSN = getEnv("PENPAL_POSTGRES_DSN", c.Storage.DSN)
	c.LogLevel = getEnv("PENPAL_LOG_LEVEL", c.LogLevel)

	if pacing := getEnv("PENPAL_PACING_MS", ""); pacing != "" {
		ms, err := strconv.Atoi(pacing)
		if err != nil {
			return fmt.Errorf("invalid PENPAL_PACING_MS %q: %w", pacing, err)
		}
		c.PacingMS = ms
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage backend %s needs a path", c.Storage.Backend)
		}
	case BackendPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage backend %s needs a dsn", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.PacingMS < 0 {
		return fmt.Errorf("pacing_ms must not be negative, got %d", c.PacingMS)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

func (c *Config) Pacing() time.Duration {
	return time.Duration(c.PacingMS) * time.Millisecond
}

// SlogLevel returns the configured level, or info when it does not parse.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// OpenStorage opens the configured backend. The returned close function is
// never nil.
func (c *Config) OpenStorage() (Storage, func() error, error) {
	noop := func() error { return nil }
	switch c.Storage.Backend {
	case BackendSQLite:
		st, err := NewSQLiteStorage(c.Storage.Path)
		if err != nil {
			return nil, noop, err
		}
		return st, st.Close, nil
	case BackendPostgres:
		st, err := NewPostgresStorage(c.Storage.DSN)
		if err != nil {
			return nil, noop, err
		}
		return st, st.Close, nil
	case BackendMemory:
		return NewMemoryStorage(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
