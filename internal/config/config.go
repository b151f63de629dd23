// Package config resolves tool settings from a YAML file, environment
// variables and built-in defaults. Precedence: flags (applied by the
// caller) over environment over file over defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix is shared by all recognized environment variables.
	EnvPrefix = "TAILSV_"

	defaultDebounceMS     = 100
	defaultMaxColumnWidth = 40
)

type Config struct {
	// Delimiter is a single character or one of the names "comma",
	// "tab", "semicolon", "space", "pipe".
	Delimiter string `yaml:"delimiter"`
	// DebounceMS is the notification settle window in milliseconds.
	DebounceMS int `yaml:"debounce_ms"`
	// LogLevel is one of debug, info, warning, error.
	LogLevel string `yaml:"log_level"`
	// ServeAddr, when set, enables the websocket streaming server.
	ServeAddr string `yaml:"serve_addr"`
	// MaxColumnWidth bounds rendered table cells.
	MaxColumnWidth int `yaml:"max_column_width"`
}

func Default() Config {
	return Config{
		Delimiter:      "comma",
		DebounceMS:     defaultDebounceMS,
		LogLevel:       "info",
		MaxColumnWidth: defaultMaxColumnWidth,
	}
}

// Load reads the config file at path over the defaults. An empty path
// falls back to DefaultPath; a missing file at the fallback location is
// fine, a missing explicit path is an error.
func Load(fs afero.Fs, path string) (Config, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath is ~/.config/tailsv/config.yaml, or empty when the home
// directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tailsv", "config.yaml")
}

// ApplyEnv overlays recognized environment variables, resolved through
// lookup (usually os.Getenv). Unparsable numeric values are ignored.
func (c Config) ApplyEnv(lookup func(string) string) Config {
	if lookup == nil {
		lookup = os.Getenv
	}
	if value := lookup(EnvPrefix + "DELIMITER"); value != "" {
		c.Delimiter = value
	}
	if value := lookup(EnvPrefix + "DEBOUNCE_MS"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			c.DebounceMS = parsed
		}
	}
	if value := lookup(EnvPrefix + "LOG_LEVEL"); value != "" {
		c.LogLevel = value
	}
	if value := lookup(EnvPrefix + "SERVE_ADDR"); value != "" {
		c.ServeAddr = value
	}
	if value := lookup(EnvPrefix + "MAX_COLUMN_WIDTH"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			c.MaxColumnWidth = parsed
		}
	}
	return c
}

// DelimiterRune resolves the configured delimiter to a rune.
func (c Config) DelimiterRune() (rune, error) {
	switch c.Delimiter {
	case "", "comma":
		return ',', nil
	case "tab", "\\t":
		return '\t', nil
	case "semicolon":
		return ';', nil
	case "space":
		return ' ', nil
	case "pipe":
		return '|', nil
	}
	runes := []rune(c.Delimiter)
	if len(runes) != 1 {
		return 0, fmt.Errorf("config: invalid delimiter %q", c.Delimiter)
	}
	return runes[0], nil
}
