package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/jamesainslie/cull/cmd/cull/tui"
	"github.com/jamesainslie/cull/pkg/cull/config"
	"github.com/jamesainslie/cull/pkg/cull/fsys"
	"github.com/jamesainslie/cull/pkg/cull/logging"
	"github.com/jamesainslie/cull/pkg/cull/output"
	"github.com/jamesainslie/cull/pkg/cull/scanner"
	"github.com/jamesainslie/cull/pkg/cull/session"
	"github.com/jamesainslie/cull/pkg/cull/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runTriage is the root command handler: scan, filter, review.
func runTriage(_ *cobra.Command, args []string) error {
	scanPath := "."
	if len(args) > 0 {
		scanPath = args[0]
	} else if defaultPath := viper.GetString("default_path"); defaultPath != "" {
		scanPath = defaultPath
	}

	expandedPath, err := config.ExpandPath(scanPath)
	if err != nil {
		return fmt.Errorf("failed to expand path: %w", err)
	}
	absPath, err := filepath.Abs(expandedPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	noInteractive := viper.GetBool("no_interactive")
	if outFormat := viper.GetString("output"); outFormat != "" && outFormat != "plain" {
		noInteractive = true
	}

	if err := initLogging(noInteractive); err != nil {
		return err
	}
	defer func() { _ = logging.Close() }()

	src, err := fsys.OpenDir(absPath)
	if err != nil {
		return fmt.Errorf("cannot open source: %w", err)
	}

	var dst *fsys.DirHandle
	if destPath := viper.GetString("dest"); destPath != "" {
		expanded, err := config.ExpandPath(destPath)
		if err != nil {
			return fmt.Errorf("failed to expand destination: %w", err)
		}
		dst, err = fsys.OpenDirCreate(expanded)
		if err != nil {
			return fmt.Errorf("cannot open destination: %w", err)
		}
		if err := fsys.EnsureWritable(dst); err != nil {
			return fmt.Errorf("destination check failed: %w", err)
		}
		printVerbose("Destination mode: keepers copied to %s", dst.Name())
	}

	minSizeStr := viper.GetString("min_size")
	if minSizeStr == "" {
		minSizeStr = config.DefaultMinSize
	}
	minSize, err := types.ParseSize(minSizeStr)
	if err != nil {
		return fmt.Errorf("invalid minimum size %q: %w", minSizeStr, err)
	}

	ignored, err := loadResumeSnapshot(absPath)
	if err != nil {
		return err
	}

	recursive := viper.GetBool("recursive") && !viper.GetBool("no_recursive")
	exclude := viper.GetStringSlice("exclude")

	if noInteractive {
		return runScanListing(src, ignored, recursive, minSize, exclude)
	}

	opts := tui.Options{
		Root:        absPath,
		Src:         src,
		Dst:         dst,
		Recursive:   recursive,
		MinSize:     minSize,
		Exclude:     exclude,
		Ignored:     ignored,
		SnapshotDir: viper.GetString("snapshot_dir"),
		HistoryDir:  historyDirIfEnabled(),
	}
	return tui.Run(opts)
}

// initLogging initializes logging; the TUI owns the screen, so console
// mirroring is enabled only in non-interactive mode with --verbose.
func initLogging(noInteractive bool) error {
	cfg := logging.Config{
		Level:   viper.GetString("logging.level"),
		Path:    viper.GetString("logging.path"),
		TUIMode: !noInteractive || !getVerbose(),
	}
	if getVerbose() {
		cfg.Level = "debug"
	}
	if err := logging.Init(cfg); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// loadResumeSnapshot imports the --resume snapshot, if any, and returns
// the ignored-path set. A source identity mismatch warns but proceeds.
func loadResumeSnapshot(absPath string) (map[string]struct{}, error) {
	resumePath := viper.GetString("resume")
	if resumePath == "" {
		return nil, nil
	}

	snap, err := session.Load(resumePath)
	if err != nil {
		return nil, fmt.Errorf("cannot resume: %w", err)
	}

	if !snap.MatchesSource(filepath.Base(absPath)) {
		printWarning("snapshot was taken from %q, scanning %q; resuming anyway",
			snap.FolderName, filepath.Base(absPath))
	}

	printVerbose("Resuming: %d previously processed paths", snap.ProcessedCount)
	return snap.IgnoredPaths(), nil
}

// historyDirIfEnabled returns the history store directory, or empty
// when history is disabled.
func historyDirIfEnabled() string {
	if !viper.GetBool("history.enabled") {
		return ""
	}
	return viper.GetString("history.path")
}

// runScanListing performs a non-interactive scan and prints the queue.
func runScanListing(src *fsys.DirHandle, ignored map[string]struct{}, recursive bool, minSize int64, exclude []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scanner.New(scanner.Options{
		Dir:       src,
		Recursive: recursive,
		MinSize:   minSize,
		Exclude:   exclude,
	})

	entries, err := s.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	interrupted := ctx.Err() != nil

	before := len(entries)
	entries = session.Filter(entries, ignored)

	// Queue order: heaviest first, ties in discovery order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Size > entries[j].Size
	})

	formatter, err := output.Get(viper.GetString("output"))
	if err != nil {
		return err
	}

	result := output.NewResult(src.Name(), entries, before-len(entries), interrupted)
	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	fmt.Print(buf.String())
	return nil
}
