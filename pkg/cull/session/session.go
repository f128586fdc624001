// Package session provides the resumable-session ledger: the set of
// file paths already processed in current or prior sessions, its
// portable JSON snapshot form, and set-subtraction filtering of freshly
// scanned entries.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jamesainslie/cull/pkg/cull/types"
)

// ErrInvalidFormat indicates a snapshot payload that lacks a well-formed
// array of path strings. The current session state is unchanged.
var ErrInvalidFormat = errors.New("invalid snapshot format")

// Snapshot is the persisted record of a paused session.
type Snapshot struct {
	// FolderName identifies the scan source the snapshot was taken
	// from. Matching against a newly chosen root is advisory only.
	FolderName string `json:"folderName"`

	// Timestamp is when the snapshot was exported.
	Timestamp time.Time `json:"timestamp"`

	// ProcessedCount is len(ProcessedPaths).
	ProcessedCount int `json:"processedCount"`

	// ProcessedPaths holds every path processed so far, sorted for
	// stable output.
	ProcessedPaths []string `json:"processedPaths"`
}

// Export builds a snapshot from the previously ignored paths and the
// paths consumed by the live queue (items strictly before the cursor).
func Export(folderName string, ignored map[string]struct{}, consumed []string) *Snapshot {
	set := make(map[string]struct{}, len(ignored)+len(consumed))
	for p := range ignored {
		set[p] = struct{}{}
	}
	for _, p := range consumed {
		set[p] = struct{}{}
	}

	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	return &Snapshot{
		FolderName:     folderName,
		Timestamp:      time.Now().UTC(),
		ProcessedCount: len(paths),
		ProcessedPaths: paths,
	}
}

// Parse decodes a snapshot payload. Returns ErrInvalidFormat when the
// payload is not valid JSON or lacks a processedPaths array of strings.
func Parse(data []byte) (*Snapshot, error) {
	var raw struct {
		FolderName     string    `json:"folderName"`
		Timestamp      time.Time `json:"timestamp"`
		ProcessedCount int       `json:"processedCount"`
		ProcessedPaths *[]string `json:"processedPaths"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if raw.ProcessedPaths == nil {
		return nil, fmt.Errorf("%w: missing processedPaths", ErrInvalidFormat)
	}

	return &Snapshot{
		FolderName:     raw.FolderName,
		Timestamp:      raw.Timestamp,
		ProcessedCount: len(*raw.ProcessedPaths),
		ProcessedPaths: *raw.ProcessedPaths,
	}, nil
}

// IgnoredPaths returns the snapshot's paths as a set for filtering.
func (s *Snapshot) IgnoredPaths() map[string]struct{} {
	set := make(map[string]struct{}, len(s.ProcessedPaths))
	for _, p := range s.ProcessedPaths {
		set[p] = struct{}{}
	}
	return set
}

// MatchesSource reports whether the snapshot was taken from the given
// source identity. A mismatch is a warning for the caller, never a
// reason to refuse the import.
func (s *Snapshot) MatchesSource(folderName string) bool {
	return s.FolderName == folderName
}

// Save writes the snapshot as JSON, atomically via a temp file and
// rename.
func Save(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming snapshot: %w", err)
	}
	return nil
}

// Load reads and parses a snapshot file.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return Parse(data)
}

// Filter removes every entry whose path is a member of ignored,
// preserving the order of the rest. Pure, no side effects; filtering
// twice with the same set equals filtering once.
func Filter(entries []types.MediaEntry, ignored map[string]struct{}) []types.MediaEntry {
	if len(ignored) == 0 {
		return entries
	}

	out := make([]types.MediaEntry, 0, len(entries))
	for _, e := range entries {
		if _, skip := ignored[e.Path]; skip {
			continue
		}
		out = append(out, e)
	}
	return out
}
