// Package config provides configuration management for cull.
package config

// Default configuration values for cull.
const (
	// DefaultMinSize is the minimum file size to include in scans.
	// Zero accepts everything; triage is user-decided, not threshold
	// driven.
	DefaultMinSize = "0"

	// DefaultPath is the default path to scan when none is specified.
	DefaultPath = "."

	// DefaultRecursive controls whether scans descend into
	// subdirectories.
	DefaultRecursive = true

	// DefaultHistoryLimit is the default number of history entries
	// shown.
	DefaultHistoryLimit = 20
)

// DefaultExclusions contains basenames skipped during scanning: VCS
// metadata and thumbnail litter that should never enter a triage queue.
var DefaultExclusions = []string{
	".git",
	".thumbnails",
	"@eaDir",
	".DS_Store",
}
