// Package config resolves casetree settings from defaults, an optional YAML
// file, a .env file and CASETREE_* environment variables, in that order.
// Command flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListenAddr       = "127.0.0.1:8087"
	DefaultRequestTimeoutMs = 10000
)

type Config struct {
	DBPath           string `yaml:"db_path"`
	Project          string `yaml:"project"`
	RemoteURL        string `yaml:"remote_url"`
	ListenAddr       string `yaml:"listen_addr"`
	StatePath        string `yaml:"state_path"`
	LogLevel         string `yaml:"log_level"`
	LogUseCases      bool   `yaml:"log_use_cases"`
	RequestTimeoutMs int    `yaml:"request_timeout_ms"`
}

// DefaultConfig keeps everything under ~/.casetree.
func DefaultConfig() Config {
	dir := defaultDir()
	return Config{
		DBPath:           filepath.Join(dir, "casetree.db"),
		ListenAddr:       DefaultListenAddr,
		StatePath:        filepath.Join(dir, "tree-state.json"),
		LogLevel:         "info",
		RequestTimeoutMs: DefaultRequestTimeoutMs,
	}
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".casetree"
	}
	return filepath.Join(home, ".casetree")
}

// Load builds the effective configuration. A missing config file or .env is
// not an error; a malformed one is.
func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CASETREE_CONFIG")
	explicit := path != ""
	if !explicit {
		path = filepath.Join(defaultDir(), "config.yaml")
	}
	if err := loadFile(&cfg, path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return Config{}, err
		}
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func loadFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("CASETREE_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CASETREE_PROJECT"); v != "" {
		cfg.Project = v
	}
	if v := os.Getenv("CASETREE_REMOTE"); v != "" {
		cfg.RemoteURL = v
	}
	if v := os.Getenv("CASETREE_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("CASETREE_STATE_PATH"); v != "" {
		cfg.StatePath = v
	}
	if v := os.Getenv("CASETREE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CASETREE_LOG_USE_CASES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CASETREE_LOG_USE_CASES: %w", err)
		}
		cfg.LogUseCases = b
	}
	if v := os.Getenv("CASETREE_REQUEST_TIMEOUT_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CASETREE_REQUEST_TIMEOUT_MS: %w", err)
		}
		cfg.RequestTimeoutMs = n
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" && c.RemoteURL == "" {
		return errors.New("db_path must be set when no remote_url is configured")
	}
	if c.RequestTimeoutMs <= 0 {
		return fmt.Errorf("request_timeout_ms must be positive, got %d", c.RequestTimeoutMs)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel (debug, info, warn, error).
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// Logger returns a text logger at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
