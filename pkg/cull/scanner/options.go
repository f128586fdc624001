package scanner

import (
	"path/filepath"

	"github.com/jamesainslie/cull/pkg/cull/fsys"
	"github.com/jamesainslie/cull/pkg/cull/types"
)

// Options configures the scanner behavior.
type Options struct {
	// Dir is the handle for the scan root.
	Dir fsys.Handle

	// Recursive controls whether subdirectories are descended into.
	// When false only the root's direct children are scanned.
	Recursive bool

	// MinSize is the minimum file size in bytes to accept.
	MinSize int64

	// Exclude contains glob patterns matched against entry basenames;
	// matching files and directories are skipped.
	Exclude []string

	// OnProgress, if set, receives the accepted entry count at least
	// once per progressInterval accepted entries and once more with the
	// final count when the scan ends or is cancelled.
	OnProgress func(accepted int)

	// OnEntry, if set, receives each accepted entry as it is
	// discovered.
	OnEntry func(entry types.MediaEntry)
}

// Validate applies defaults for invalid option values.
func (o *Options) Validate() {
	if o.MinSize < 0 {
		o.MinSize = 0
	}
}

// isExcluded checks a basename against the exclusion patterns.
func (o *Options) isExcluded(base string) bool {
	for _, pattern := range o.Exclude {
		if pattern == "" {
			continue
		}
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}
