package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is loaded from an optional YAML file (comicshelf.yaml or
// COMICSHELF_CONFIG), then .env, then environment variables; env wins.
type Config struct {
	Environment string
	AppName     string
	Port        string
	LogLevel    slog.Level

	// ServerURL/Username/Password identify the remote comics service.
	ServerURL string
	Username  string
	Password  string

	DataDir    string
	SQLitePath string
	CacheDir   string

	// PageWidth is the display long edge used when rendering document
	// pages to images.
	PageWidth int

	SyncEnabled bool
	SyncMinutes int

	WebhookURL string
}

type fileConfig struct {
	ServerURL   string `yaml:"server_url"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	DataDir     string `yaml:"data_dir"`
	Port        string `yaml:"port"`
	PageWidth   int    `yaml:"page_width"`
	SyncMinutes int    `yaml:"sync_minutes"`
	WebhookURL  string `yaml:"webhook_url"`
	LogLevel    string `yaml:"log_level"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	fileCfg, err := loadFile()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment: getEnv("APP_ENV", "development"),
		AppName:     getEnv("APP_NAME", "comicshelf"),
		Port:        getEnv("APP_PORT", fallback(fileCfg.Port, "8090")),
		ServerURL:   getEnv("COMICS_SERVER_URL", fileCfg.ServerURL),
		Username:    getEnv("COMICS_USERNAME", fileCfg.Username),
		Password:    getEnv("COMICS_PASSWORD", fileCfg.Password),
		DataDir:     getEnv("DATA_DIR", fallback(fileCfg.DataDir, defaultDataDir())),
		PageWidth:   getEnvAsInt("PAGE_WIDTH", fallback(fileCfg.PageWidth, 1920)),
		SyncEnabled: getEnvAsBool("SYNC_ENABLED", true),
		SyncMinutes: getEnvAsInt("SYNC_MINUTES", fallback(fileCfg.SyncMinutes, 30)),
		WebhookURL:  getEnv("WEBHOOK_URL", fileCfg.WebhookURL),
	}

	cfg.SQLitePath = getEnv("SQLITE_PATH", filepath.Join(cfg.DataDir, "comicshelf.sqlite"))
	cfg.CacheDir = getEnv("CACHE_DIR", filepath.Join(cfg.DataDir, "cache"))

	if cfg.SyncMinutes <= 0 {
		cfg.SyncMinutes = 30
	}
	if cfg.PageWidth <= 0 {
		cfg.PageWidth = 1920
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", fallback(fileCfg.LogLevel, "INFO")))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func loadFile() (fileConfig, error) {
	path := os.Getenv("COMICSHELF_CONFIG")
	if path == "" {
		path = "comicshelf.yaml"
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return cfg, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".comicshelf")
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q, expected DEBUG|INFO|WARN|ERROR", raw)
	}
}

func fallback[T comparable](value T, def T) T {
	var zero T
	if value == zero {
		return def
	}
	return value
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
