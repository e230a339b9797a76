// Package config loads callmatch.toml, the configuration file of the callmatch command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/toejough/callmatch/internal/logging"
	"github.com/toejough/callmatch/internal/patternfile"
)

// FileName is the configuration file looked up by Find.
const FileName = "callmatch.toml"

// Color modes.
const (
	ColorAuto = "auto"
	ColorOn   = "on"
	ColorOff  = "off"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the decoded callmatch.toml.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Output OutputConfig `toml:"output"`
	Input  InputConfig  `toml:"input"`
}

// LogConfig configures the command's slog logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// OutputConfig configures result rendering.
type OutputConfig struct {
	Color string `toml:"color"`
}

// InputConfig configures document decoding.
type InputConfig struct {
	Format string `toml:"format"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	return Config{
		Log:    LogConfig{Level: "info", Format: string(logging.FormatText)},
		Output: OutputConfig{Color: ColorAuto},
		Input:  InputConfig{Format: string(patternfile.FormatAuto)},
	}
}

// Find looks for FileName in dir and its parents. It returns "" when there is none.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve start directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %q: %w", candidate, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}

		dir = parent
	}
}

// Load decodes the file at path over the defaults and validates the result. Unknown
// keys are rejected.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}

		return Config{}, fmt.Errorf("%s: %w: unknown keys %s", path, ErrInvalid, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects values the command does not understand.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: [log].level: %w", ErrInvalid, err)
	}

	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("%w: [log].format: %w", ErrInvalid, err)
	}

	switch c.Output.Color {
	case ColorAuto, ColorOn, ColorOff:
	default:
		return fmt.Errorf("%w: [output].color must be auto, on or off, got %q", ErrInvalid, c.Output.Color)
	}

	if _, err := patternfile.ParseFormat(c.Input.Format); err != nil {
		return fmt.Errorf("%w: [input].format: %w", ErrInvalid, err)
	}

	return nil
}

// Logging converts the [log] section for logging.New.
func (c Config) Logging() logging.Config {
	level, _ := logging.ParseLevel(c.Log.Level)
	format, _ := logging.ParseFormat(c.Log.Format)

	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Format = format

	return cfg
}
