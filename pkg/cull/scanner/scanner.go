// Package scanner discovers candidate media files beneath a directory
// handle. The traversal is an explicit-stack depth-first walk: it
// descends fully into one subtree before moving to a sibling, reports
// incremental progress, and honors cooperative cancellation at
// enumeration boundaries.
package scanner

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/h2non/filetype"

	"github.com/jamesainslie/cull/pkg/cull/logging"
	"github.com/jamesainslie/cull/pkg/cull/types"
)

// headerSize is the number of leading bytes sniffed for type detection.
// filetype needs at most 261 bytes to recognize every supported format.
const headerSize = 261

// progressInterval is the accepted-entry cadence for progress callbacks.
const progressInterval = 5

// Scanner walks a directory handle and accumulates media entries.
type Scanner struct {
	opts Options
	log  *logging.Logger
}

// New creates a Scanner with the given options.
func New(opts Options) *Scanner {
	opts.Validate()
	return &Scanner{
		opts: opts,
		log:  logging.Get("scanner"),
	}
}

// Scan walks the root depth-first and returns the accepted entries in
// discovery order (unsorted). Cancellation is checked before popping
// each directory and before processing each child; on cancellation the
// entries accumulated so far are returned with a nil error. A single
// unreadable file or directory is logged and skipped, never aborting
// the scan.
func (s *Scanner) Scan(ctx context.Context) ([]types.MediaEntry, error) {
	entries := make([]types.MediaEntry, 0)

	accepted := 0
	lastReported := -1
	report := func() {
		if s.opts.OnProgress != nil && accepted != lastReported {
			s.opts.OnProgress(accepted)
			lastReported = accepted
		}
	}
	// The final callback fires exactly once, even when the count has
	// already been reported.
	finish := func() {
		if s.opts.OnProgress != nil {
			s.opts.OnProgress(accepted)
		}
	}

	// LIFO work stack seeded with the root. Popping visits the most
	// recently discovered directory next.
	stack := []string{"."}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			finish()
			return entries, nil
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := s.opts.Dir.ReadDir(dir)
		if err != nil {
			s.log.Warn("skipping unreadable directory", "path", dir, "error", err)
			continue
		}

		var subdirs []string
		for _, child := range children {
			if ctx.Err() != nil {
				finish()
				return entries, nil
			}

			name := joinPath(dir, child.Name())
			if s.opts.isExcluded(child.Name()) {
				continue
			}

			if child.IsDir() {
				if s.opts.Recursive {
					subdirs = append(subdirs, name)
				}
				continue
			}
			if !child.Mode().IsRegular() {
				continue
			}
			if child.Size() < s.opts.MinSize {
				continue
			}

			kind, ok := s.classify(name)
			if !ok {
				continue
			}

			entry := types.MediaEntry{
				Path: name,
				Size: child.Size(),
				Kind: kind,
			}
			entries = append(entries, entry)
			accepted++
			if s.opts.OnEntry != nil {
				s.opts.OnEntry(entry)
			}
			if accepted%progressInterval == 0 {
				report()
			}
		}

		// Push in reverse discovery order so the first-discovered
		// child directory is processed first.
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}

	finish()
	return entries, nil
}

// classify opens a file's content and sniffs its media kind. Files that
// cannot be opened or whose content type is neither image/ nor video/
// are rejected.
func (s *Scanner) classify(name string) (types.Kind, bool) {
	f, err := s.opts.Dir.Open(name)
	if err != nil {
		s.log.Warn("skipping unreadable file", "path", name, "error", err)
		return "", false
	}
	defer f.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		s.log.Warn("skipping unreadable file", "path", name, "error", err)
		return "", false
	}

	t, err := filetype.Match(head[:n])
	if err != nil || t == filetype.Unknown {
		return "", false
	}

	switch {
	case strings.HasPrefix(t.MIME.Value, "image/"):
		return types.KindImage, true
	case strings.HasPrefix(t.MIME.Value, "video/"):
		return types.KindVideo, true
	default:
		return "", false
	}
}

// joinPath joins slash-separated relative paths, keeping root children
// free of a leading "./".
func joinPath(dir, name string) string {
	if dir == "." {
		return name
	}
	return path.Join(dir, name)
}
