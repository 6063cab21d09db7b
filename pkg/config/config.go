// Package config loads and saves the flexlist configuration.
//
// Files follow the XDG Base Directory layout:
//   - Config: ~/.config/flexlist/config.yaml
//   - State:  ~/.local/state/flexlist/ (saved list state)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/flexlist/pkg/selection"
)

const appName = "flexlist"

// Data formats understood by the data source.
const (
	FormatJSONL  = "jsonl"
	FormatSQLite = "sqlite"
)

// DataConfig locates the item source.
type DataConfig struct {
	Path   string `yaml:"path,omitempty"`
	Format string `yaml:"format,omitempty"` // jsonl or sqlite; guessed from the extension when empty
}

// StateConfig locates the saved list state.
type StateConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// MetricsConfig controls the metrics endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"` // empty disables the endpoint
}

// Config is the top-level configuration.
type Config struct {
	UndoTimeout          time.Duration  `yaml:"undo_timeout,omitempty"`
	SelectionMode        selection.Mode `yaml:"selection_mode"`
	HeadersShown         bool           `yaml:"headers_shown,omitempty"`
	AutoCollapseOnExpand bool           `yaml:"auto_collapse_on_expand,omitempty"`
	AutoScrollOnExpand   bool           `yaml:"auto_scroll_on_expand,omitempty"`
	RemoveOrphanHeaders  bool           `yaml:"remove_orphan_headers,omitempty"`
	PermanentDelete      bool           `yaml:"permanent_delete,omitempty"`

	Data    DataConfig    `yaml:"data,omitempty"`
	State   StateConfig   `yaml:"state,omitempty"`
	Log     LogConfig     `yaml:"log,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UndoTimeout:        5 * time.Second,
		SelectionMode:      selection.Multi,
		AutoScrollOnExpand: true,
		State:              StateConfig{Dir: StateDir()},
		Log:                LogConfig{Level: "info"},
	}
}

func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...)
}

// ConfigDir returns the XDG config directory.
func ConfigDir() string { return xdgDir("XDG_CONFIG_HOME", ".config") }

// StateDir returns the XDG state directory.
func StateDir() string { return xdgDir("XDG_STATE_HOME", ".local", "state") }

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	cfg.Data.Path = ExpandHome(cfg.Data.Path)
	cfg.State.Dir = ExpandHome(cfg.State.Dir)
	cfg.Log.File = ExpandHome(cfg.Log.File)
	return cfg, nil
}

// Validate rejects values no component can use.
func (c Config) Validate() error {
	if c.UndoTimeout < 0 {
		return fmt.Errorf("undo_timeout must not be negative, got %s", c.UndoTimeout)
	}
	switch c.Data.Format {
	case "", FormatJSONL, FormatSQLite:
	default:
		return fmt.Errorf("unknown data format %q", c.Data.Format)
	}
	return nil
}

// DataFormat returns the configured format, or the one implied by the
// data path's extension.
func (c Config) DataFormat() string {
	if c.Data.Format != "" {
		return c.Data.Format
	}
	switch strings.ToLower(filepath.Ext(c.Data.Path)) {
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatJSONL
	}
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
