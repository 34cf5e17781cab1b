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

// Config holds the erpdesk settings after defaults and path expansion.
type Config struct {
	APIBase       string
	APIToken      string
	StorageDir    string
	RedisAddr     string
	RedisDB       int
	CacheDuration time.Duration
	DevPathPrefix string
	LogLevel      string
	LogFormat     string
	LogFile       string
	TeardownDelay time.Duration
	MaxTabs       int
}

const (
	defaultConfigPath    = "~/.config/erpdesk/config.toml"
	defaultAPIBase       = "http://127.0.0.1:8080"
	defaultStorageDir    = "~/.local/state/erpdesk/storage"
	defaultLogFile       = "~/.local/state/erpdesk/erpdesk.log"
	defaultCacheMinutes  = 30
	defaultDevPathPrefix = "/src"
	defaultLogLevel      = "info"
	defaultLogFormat     = "text"
	defaultTeardownMS    = 300

	// TokenEnv supplies the API token when the config file has none.
	TokenEnv = "ERPDESK_API_TOKEN"
)

// DefaultPath returns the config location used when none is given.
func DefaultPath() string {
	return defaultConfigPath
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		APIBase:       defaultAPIBase,
		APIToken:      strings.TrimSpace(os.Getenv(TokenEnv)),
		StorageDir:    mustExpand(defaultStorageDir),
		CacheDuration: defaultCacheMinutes * time.Minute,
		DevPathPrefix: defaultDevPathPrefix,
		LogLevel:      defaultLogLevel,
		LogFormat:     defaultLogFormat,
		LogFile:       mustExpand(defaultLogFile),
		TeardownDelay: defaultTeardownMS * time.Millisecond,
	}
}

// Load locates and parses the erpdesk config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
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
		APIBase       string  `toml:"api_base"`
		APIToken      string  `toml:"api_token"`
		StorageDir    string  `toml:"storage_dir"`
		RedisAddr     string  `toml:"redis_addr"`
		RedisDB       int     `toml:"redis_db"`
		CacheMinutes  int     `toml:"cache_minutes"`
		DevPathPrefix *string `toml:"dev_path_prefix"`
		LogLevel      string  `toml:"log_level"`
		LogFormat     string  `toml:"log_format"`
		LogFile       string  `toml:"log_file"`
		TeardownMS    *int    `toml:"teardown_ms"`
		MaxTabs       int     `toml:"max_tabs"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = v
	}
	if v := strings.TrimSpace(raw.APIToken); v != "" {
		cfg.APIToken = v
	}
	if v := strings.TrimSpace(raw.StorageDir); v != "" {
		cfg.StorageDir = mustExpand(v)
	}
	cfg.RedisAddr = strings.TrimSpace(raw.RedisAddr)
	if raw.RedisDB < 0 {
		return Config{}, fmt.Errorf("redis_db must not be negative")
	}
	cfg.RedisDB = raw.RedisDB
	if raw.CacheMinutes < 0 {
		return Config{}, fmt.Errorf("cache_minutes must not be negative")
	}
	if raw.CacheMinutes > 0 {
		cfg.CacheDuration = time.Duration(raw.CacheMinutes) * time.Minute
	}
	if raw.DevPathPrefix != nil {
		cfg.DevPathPrefix = strings.TrimSpace(*raw.DevPathPrefix)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		cfg.LogLevel = v
	}
	switch v := strings.ToLower(strings.TrimSpace(raw.LogFormat)); v {
	case "":
	case "text", "json":
		cfg.LogFormat = v
	default:
		return Config{}, fmt.Errorf("log_format %q: want text or json", raw.LogFormat)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		switch strings.ToLower(v) {
		case "stderr", "stdout", "none":
			cfg.LogFile = strings.ToLower(v)
		default:
			cfg.LogFile = mustExpand(v)
		}
	}
	if raw.TeardownMS != nil {
		if *raw.TeardownMS < 0 {
			return Config{}, fmt.Errorf("teardown_ms must not be negative")
		}
		cfg.TeardownDelay = time.Duration(*raw.TeardownMS) * time.Millisecond
	}
	if raw.MaxTabs < 0 {
		return Config{}, fmt.Errorf("max_tabs must not be negative")
	}
	cfg.MaxTabs = raw.MaxTabs

	return cfg, nil
}

// UsesRedis reports whether the menu cache should live in Redis.
func (c Config) UsesRedis() bool {
	return c.RedisAddr != ""
}

// LogDestination returns the path handed to the logger; "none" becomes empty.
func (c Config) LogDestination() string {
	if c.LogFile == "none" {
		return ""
	}
	if strings.TrimSpace(c.LogFile) == "" {
		return mustExpand(defaultLogFile)
	}
	return c.LogFile
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
