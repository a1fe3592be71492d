// Package config loads serdump settings from an optional TOML file and
// the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"serdump/internal/decode"
	"serdump/internal/input"
)

const (
	EnvLogLevel = "SERDUMP_LOG_LEVEL"
	EnvMaxDepth = "SERDUMP_MAX_DEPTH"
	EnvMaxInput = "SERDUMP_MAX_INPUT"
)

// Output formats.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatEvents = "events"
)

type Config struct {
	MaxDepth     int
	MaxInput     int64
	LogLevel     string
	LogTimestamp bool
	Format       string
	Hex          bool
}

type fileConfig struct {
	MaxDepth     int    `toml:"max_depth"`
	MaxInput     int64  `toml:"max_input"`
	LogLevel     string `toml:"log_level"`
	LogTimestamp bool   `toml:"log_timestamp"`
	Format       string `toml:"format"`
	Hex          bool   `toml:"hex"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MaxDepth: decode.DefaultMaxDepth,
		MaxInput: input.DefaultMaxInput,
		LogLevel: "info",
		Format:   FormatText,
	}
}

// Load returns defaults overlaid with the keys defined in path (skipped
// when path is empty) and then with the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnv(&cfg, os.Getenv); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overlayFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return errors.Wrapf(err, "config load failed (%s)", path)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		return errors.Errorf("config %s: unknown key %q", path, undec[0].String())
	}

	if meta.IsDefined("max_depth") {
		cfg.MaxDepth = raw.MaxDepth
	}
	if meta.IsDefined("max_input") {
		cfg.MaxInput = raw.MaxInput
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_timestamp") {
		cfg.LogTimestamp = raw.LogTimestamp
	}
	if meta.IsDefined("format") {
		cfg.Format = strings.ToLower(strings.TrimSpace(raw.Format))
	}
	if meta.IsDefined("hex") {
		cfg.Hex = raw.Hex
	}
	return nil
}

// ApplyEnv overlays the SERDUMP_* variables read through getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(getenv(EnvMaxDepth)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "parse %s", EnvMaxDepth)
		}
		cfg.MaxDepth = n
	}
	if v := strings.TrimSpace(getenv(EnvMaxInput)); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "parse %s", EnvMaxInput)
		}
		cfg.MaxInput = n
	}
	return nil
}

func Validate(cfg Config) error {
	if cfg.MaxDepth <= 0 {
		return errors.Errorf("max_depth must be positive, got %d", cfg.MaxDepth)
	}
	if cfg.MaxInput <= 0 {
		return errors.Errorf("max_input must be positive, got %d", cfg.MaxInput)
	}
	switch cfg.Format {
	case FormatText, FormatJSON, FormatEvents:
	default:
		return errors.Errorf("format must be text, json or events, got %q", cfg.Format)
	}
	return nil
}
