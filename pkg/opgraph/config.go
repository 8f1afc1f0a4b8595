package opgraph

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// Config holds client session configuration.
// Priority: env vars > settings.json > defaults.
type Config struct {
	// TmpDir is the staging directory for locally supplied data and
	// file-channel payloads. It is session-private and swept after each
	// terminal computation. Empty means a fresh directory under the
	// system temp dir.
	TmpDir string `json:"tmp_dir"`
	// EngineBin is the engine binary path for the exec bridge.
	EngineBin string `json:"engine_bin"`
	LogLevel  string `json:"log_level"`

	// Logger overrides the default slog logger. Not configurable from
	// file or env.
	Logger *slog.Logger `json:"-"`
}

func defaultConfig() Config {
	return Config{
		EngineBin: "daphne",
		LogLevel:  "info",
	}
}

func opgraphDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".opgraph"
	}
	return filepath.Join(home, ".opgraph")
}

func settingsPath() string {
	return filepath.Join(opgraphDir(), "settings.json")
}

// LoadConfig resolves the layered configuration.
func LoadConfig() Config {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(settingsPath()); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	// Layer 3: env vars override.
	if v := os.Getenv("OPGRAPH_TMP_DIR"); v != "" {
		cfg.TmpDir = v
	}
	if v := os.Getenv("OPGRAPH_ENGINE_BIN"); v != "" {
		cfg.EngineBin = v
	}
	if v := os.Getenv("OPGRAPH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg
}

// logger resolves the configured logger, falling back to a text handler at
// the configured level.
func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	level := slog.LevelInfo
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
