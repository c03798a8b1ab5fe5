package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the server connection and logging settings shelver needs.
type Config struct {
	ServerURL      string
	Token          string
	Library        string
	RequestTimeout time.Duration
	RetryMax       int
	LogLevel       string
	LogFile        string
}

// TokenEnv overrides the token from the config file when set.
const TokenEnv = "SHELVER_TOKEN"

const (
	defaultConfigPath     = "~/.config/shelver/config.toml"
	defaultServerURL      = "http://127.0.0.1:13378"
	defaultRequestTimeout = 10 * time.Second
	defaultRetryMax       = 2
	defaultLogLevel       = "info"
	defaultLogFile        = "~/.local/state/shelver/shelver.log"
)

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		ServerURL:      defaultServerURL,
		RequestTimeout: defaultRequestTimeout,
		RetryMax:       defaultRetryMax,
		LogLevel:       defaultLogLevel,
		LogFile:        mustExpand(defaultLogFile),
	}
}

// Load locates and parses the shelver config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		ServerURL      string `toml:"server_url"`
		Token          string `toml:"token"`
		Library        string `toml:"library"`
		RequestTimeout int    `toml:"request_timeout"`
		RetryMax       *int   `toml:"retry_max"`
		LogLevel       string `toml:"log_level"`
		LogFile        string `toml:"log_file"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.ServerURL); v != "" {
		cfg.ServerURL = v
	}
	cfg.Token = strings.TrimSpace(raw.Token)
	cfg.Library = strings.TrimSpace(raw.Library)
	if raw.RequestTimeout > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeout) * time.Second
	}
	if raw.RetryMax != nil {
		if *raw.RetryMax < 0 {
			return Config{}, fmt.Errorf("parse config: retry_max must not be negative, got %d", *raw.RetryMax)
		}
		cfg.RetryMax = *raw.RetryMax
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}

	cfg.applyEnv()
	return cfg, nil
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

func (c *Config) applyEnv() {
	if token := strings.TrimSpace(os.Getenv(TokenEnv)); token != "" {
		c.Token = token
	}
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
