package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Components map[string]string `mapstructure:"components"`
}

// HistoryConfig configures the session history store.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Config represents the application configuration.
type Config struct {
	MinSize     string        `mapstructure:"min_size"`
	DefaultPath string        `mapstructure:"default_path"`
	Recursive   bool          `mapstructure:"recursive"`
	Exclude     []string      `mapstructure:"exclude"`
	SnapshotDir string        `mapstructure:"snapshot_dir"`
	History     HistoryConfig `mapstructure:"history"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/cull/config.yaml
//   - $HOME/.config/cull/config.yaml
//
// Environment variables are prefixed with CULL_ (e.g., CULL_MIN_SIZE).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "cull"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "cull"))

	v.SetEnvPrefix("CULL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SnapshotDir, err = ExpandPath(cfg.SnapshotDir)
	if err != nil {
		return nil, err
	}
	cfg.History.Path, err = ExpandPath(cfg.History.Path)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers the default value for every key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("min_size", DefaultMinSize)
	v.SetDefault("default_path", DefaultPath)
	v.SetDefault("recursive", DefaultRecursive)
	v.SetDefault("exclude", DefaultExclusions)
	v.SetDefault("snapshot_dir", DefaultSnapshotDir())
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", DefaultHistoryDir())
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use the default state-dir path
	v.SetDefault("logging.components", map[string]string{
		"scanner":  "info",
		"review":   "info",
		"transfer": "info",
		"watcher":  "warn",
		"tui":      "info",
	})
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "cull"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "cull"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// DataDir returns $XDG_DATA_HOME/cull/ for the history store and
// snapshots.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "cull")
}

// StateDir returns $XDG_STATE_HOME/cull/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "cull")
}

// DefaultHistoryDir returns the default history store directory.
func DefaultHistoryDir() string {
	return filepath.Join(DataDir(), "history")
}

// DefaultSnapshotDir returns the default directory for session
// snapshots.
func DefaultSnapshotDir() string {
	return filepath.Join(DataDir(), "snapshots")
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# Cull Media Triage Configuration

# Minimum file size for a scanned entry to enter the review queue
min_size: %s

# Default path to scan when none is specified
default_path: %s

# Descend into subdirectories
recursive: %t

# Basenames to exclude from scanning
exclude:
  - .git
  - .thumbnails
  - "@eaDir"
  - .DS_Store

# Directory for session snapshots
snapshot_dir: %s

# Session history store
history:
  enabled: true
  path: %s

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/cull/cull.log)
  path: ""
  # Per-component log levels
  components:
    scanner: info
    review: info
    transfer: info
    watcher: warn
    tui: info
`, DefaultMinSize, DefaultPath, DefaultRecursive, DefaultSnapshotDir(), DefaultHistoryDir())

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
