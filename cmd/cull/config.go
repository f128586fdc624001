package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jamesainslie/cull/pkg/cull/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage cull configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/cull/config.yaml (if set)
  2. ~/.config/cull/config.yaml

Environment variables can override config file settings using the CULL_ prefix:
  CULL_MIN_SIZE=500K
  CULL_RECURSIVE=false`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the effective configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printInfo("min_size:     %s", cfg.MinSize)
	printInfo("default_path: %s", cfg.DefaultPath)
	printInfo("recursive:    %t", cfg.Recursive)
	printInfo("exclude:      %v", cfg.Exclude)
	printInfo("snapshot_dir: %s", cfg.SnapshotDir)
	printInfo("history:      enabled=%t path=%s", cfg.History.Enabled, cfg.History.Path)
	printInfo("logging:      level=%s path=%s", cfg.Logging.Level, cfg.Logging.Path)
	return nil
}

// runConfigInit writes a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	printInfo("Configuration written to %s", filepath.Join(dir, "config.yaml"))
	return nil
}

// runConfigPath prints the config file location.
func runConfigPath(cmd *cobra.Command, args []string) error {
	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	path := filepath.Join(dir, "config.yaml")
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		printInfo("%s (not created yet; run 'cull config init')", path)
		return nil
	}
	printInfo("%s", path)
	return nil
}
