package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything njtstatus reads from its config file.
type Config struct {
	Endpoint      string
	RequestCookie int32
	PollInterval  time.Duration // zero disables the refresh timer
	Timeout       time.Duration
	LogFile       string
	LogLevel      slog.Level
	Clock24h      bool
}

const (
	defaultConfigPath    = "~/.config/njtstatus/config.toml"
	defaultEnvFile       = ".env"
	defaultEndpoint      = "http://pebble.mattdonders.com/njtransit/v1/status.php"
	defaultRequestCookie = 1597854
	defaultPollSeconds   = 300
	defaultTimeout       = 10
	defaultLogFile       = "~/.local/state/njtstatus/njtstatus.log"

	envEndpoint    = "NJT_ENDPOINT"
	envPollSeconds = "NJT_POLL_SECONDS"
	envLogLevel    = "NJT_LOG_LEVEL"
)

type rawConfig struct {
	Endpoint       string `toml:"endpoint"`
	RequestCookie  *int64 `toml:"request_cookie"`
	PollSeconds    *int   `toml:"poll_seconds"`
	TimeoutSeconds *int   `toml:"timeout_seconds"`
	LogFile        string `toml:"log_file"`
	LogLevel       string `toml:"log_level"`
	Clock24h       *bool  `toml:"clock_24h"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Endpoint:      defaultEndpoint,
		RequestCookie: defaultRequestCookie,
		PollInterval:  defaultPollSeconds * time.Second,
		Timeout:       defaultTimeout * time.Second,
		LogFile:       mustExpand(defaultLogFile),
		LogLevel:      slog.LevelInfo,
		Clock24h:      true,
	}
}

// Load reads the config file at path (or the default location), falling
// back to defaults when it is missing, then applies environment overrides.
// Variables from a .env file in the working directory are loaded first and
// never replace variables already set.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", defaultEnvFile, err)
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		var raw rawConfig
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		if err := cfg.merge(raw); err != nil {
			return Config{}, err
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) merge(raw rawConfig) error {
	if v := strings.TrimSpace(raw.Endpoint); v != "" {
		c.Endpoint = v
	}
	if raw.RequestCookie != nil {
		if *raw.RequestCookie <= 0 || *raw.RequestCookie > math.MaxInt32 {
			return fmt.Errorf("request_cookie %d out of range", *raw.RequestCookie)
		}
		c.RequestCookie = int32(*raw.RequestCookie)
	}
	if raw.PollSeconds != nil {
		c.PollInterval = time.Duration(*raw.PollSeconds) * time.Second
	}
	if raw.TimeoutSeconds != nil {
		c.Timeout = time.Duration(*raw.TimeoutSeconds) * time.Second
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		c.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		level, err := parseLevel(v)
		if err != nil {
			return err
		}
		c.LogLevel = level
	}
	if raw.Clock24h != nil {
		c.Clock24h = *raw.Clock24h
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(envEndpoint)); v != "" {
		c.Endpoint = v
	}
	if v := strings.TrimSpace(os.Getenv(envPollSeconds)); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envPollSeconds, err)
		}
		c.PollInterval = time.Duration(seconds) * time.Second
	}
	if v := strings.TrimSpace(os.Getenv(envLogLevel)); v != "" {
		level, err := parseLevel(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envLogLevel, err)
		}
		c.LogLevel = level
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint %q must be an http(s) URL", c.Endpoint)
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("poll interval %v must not be negative", c.PollInterval)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout %v must be positive", c.Timeout)
	}
	return nil
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", value, err)
	}
	return level, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
