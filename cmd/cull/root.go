package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/cull/pkg/cull/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "cull [path]",
		Short: "Triage media files one at a time",
		Long: `Cull scans a directory for image and video files and walks you
through them one at a time: keep or delete. Deletes are deferred by one
step so the last decision can always be undone. Sessions can be paused
with a snapshot and resumed later.

Without --dest, DELETE removes files in place. With --dest, KEEP copies
the file into the destination directory and DELETE becomes a skip.

Examples:
  cull ~/Pictures              # Triage in place
  cull --dest ~/Keep ~/Inbox   # Copy keepers, skip the rest
  cull --resume sess.json .    # Resume from a snapshot
  cull -n -o json ~/Pictures   # Non-interactive scan listing
  cull history                 # Past sessions`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTriage,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/cull/config.yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Triage flags
	rootCmd.Flags().String("dest", "", "destination directory (enables copy mode)")
	rootCmd.Flags().Bool("no-recursive", false, "scan only the root's direct children")
	rootCmd.Flags().String("resume", "", "snapshot file to resume from")
	rootCmd.Flags().StringP("min-size", "s", "", "minimum file size to queue (e.g., 500K, 1M)")
	rootCmd.Flags().StringSliceP("exclude", "e", nil, "exclude basename patterns (can be specified multiple times)")
	rootCmd.Flags().BoolP("no-interactive", "n", false, "disable TUI, print the scan result")
	rootCmd.Flags().StringP("output", "o", "plain", "non-interactive output format (plain, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("dest", rootCmd.Flags().Lookup("dest"))
	_ = viper.BindPFlag("no_recursive", rootCmd.Flags().Lookup("no-recursive"))
	_ = viper.BindPFlag("resume", rootCmd.Flags().Lookup("resume"))
	_ = viper.BindPFlag("min_size", rootCmd.Flags().Lookup("min-size"))
	_ = viper.BindPFlag("exclude", rootCmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("no_interactive", rootCmd.Flags().Lookup("no-interactive"))
	_ = viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Add config paths in order of precedence
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "cull"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "cull"))
		}
	}

	// Set environment variable prefix and enable auto env binding
	viper.SetEnvPrefix("CULL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Set defaults from config package
	viper.SetDefault("min_size", config.DefaultMinSize)
	viper.SetDefault("default_path", config.DefaultPath)
	viper.SetDefault("recursive", config.DefaultRecursive)
	viper.SetDefault("exclude", config.DefaultExclusions)
	viper.SetDefault("snapshot_dir", config.DefaultSnapshotDir())
	viper.SetDefault("history.enabled", true)
	viper.SetDefault("history.path", config.DefaultHistoryDir())
	viper.SetDefault("logging.level", "info")

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printWarning prints a warning message to stderr.
func printWarning(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
