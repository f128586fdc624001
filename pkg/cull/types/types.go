// Package types provides core data types for the cull media triage tool.
// It defines the media entry produced by scanning, the running session
// totals, and utility functions for parsing and formatting file sizes.
package types

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// Kind classifies a media entry by its sniffed content type.
type Kind string

const (
	// KindImage is any file whose content type has an image/ prefix.
	KindImage Kind = "image"
	// KindVideo is any file whose content type has a video/ prefix.
	KindVideo Kind = "video"
)

// MediaEntry is one candidate file discovered by a scan.
// Entries are immutable after creation; the path is the /-joined
// relative path from the scan root and is unique within one scan.
type MediaEntry struct {
	// Path is the slash-joined path relative to the scan root.
	Path string `json:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// Kind is the sniffed media kind (image or video).
	Kind Kind `json:"kind"`
}

// HumanSize returns the entry size formatted as a human-readable string.
func (e MediaEntry) HumanSize() string {
	return FormatSize(e.Size)
}

// Totals holds the running counters for one review session.
// All counters are monotonically non-decreasing within a session and
// reset only when a new scan begins.
type Totals struct {
	// OriginalTotalBytes is the sum of all queue entry sizes at
	// queue-creation time.
	OriginalTotalBytes int64 `json:"original_total_bytes"`

	// BytesDeleted is the total size of files removed from storage.
	BytesDeleted int64 `json:"bytes_deleted"`

	// FilesDeleted is the number of files removed from storage.
	FilesDeleted int64 `json:"files_deleted"`

	// FilesKept is the number of files kept (or copied, in
	// destination mode).
	FilesKept int64 `json:"files_kept"`

	// FilesSkipped is the number of files skipped (destination-mode
	// DELETE decisions, which have no filesystem effect).
	FilesSkipped int64 `json:"files_skipped"`
}

// sizePattern matches size strings like "100M", "2G", "500K", "1.5GB", etc.
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)\s*$`)

// ErrInvalidSize indicates that the size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string and returns the size in
// bytes. It accepts plain byte counts ("1024"), byte suffixes ("512B"),
// and K/M/G/T with optional B or iB ("100K", "1.5MiB", "2g"). Decimal
// values are truncated to the nearest byte.
//
// Returns ErrInvalidSize if the format is not recognized.
// Returns ErrNegativeSize if the value is negative.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	suffix := strings.ToUpper(matches[2])
	suffix = strings.TrimSuffix(suffix, "IB")
	suffix = strings.TrimSuffix(suffix, "B")

	var multiplier int64
	switch suffix {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, suffix)
	}

	return int64(value * float64(multiplier)), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units for consistency with common filesystem tools.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
