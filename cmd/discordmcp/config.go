package main

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the process configuration: a yaml file layered under
// environment variables and flags. The bot token is the only required
// setting.
type Config struct {
	// Token is the Discord bot token. The DISCORD_BOT_TOKEN and
	// DISCORD_TOKEN environment variables override the file value.
	Token string `yaml:"token"`

	// HTTPAddr, when set, serves MCP over streamable HTTP on this address
	// instead of stdio.
	HTTPAddr string `yaml:"http_addr"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`
}

// loadConfig reads the optional yaml file at path and applies environment
// overrides.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if t := os.Getenv("DISCORD_BOT_TOKEN"); t != "" {
		cfg.Token = t
	} else if t := os.Getenv("DISCORD_TOKEN"); t != "" {
		cfg.Token = t
	}
	return cfg, nil
}

// parseLevel maps a config string to a slog level, defaulting to info.
func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
