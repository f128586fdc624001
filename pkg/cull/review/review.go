// Package review implements the triage state machine: an ordered queue
// of media entries, a cursor, a one-slot deferred deletion, and
// exactly-one-step undo. All session mutation flows through Session
// methods; decide and undo are not reentrant.
package review

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jamesainslie/cull/pkg/cull/logging"
	"github.com/jamesainslie/cull/pkg/cull/transfer"
	"github.com/jamesainslie/cull/pkg/cull/types"
)

// Action is a triage decision for the current item.
type Action int

const (
	// Keep retains the current item (and copies it in destination mode).
	Keep Action = iota
	// Delete removes the current item in single-folder mode; in
	// destination mode it is a skip with no filesystem effect.
	Delete
)

// String returns the action name.
func (a Action) String() string {
	if a == Delete {
		return "delete"
	}
	return "keep"
}

// Mode selects the session's operating mode, fixed at construction.
type Mode int

const (
	// SingleFolder triages in place: Delete removes source files.
	SingleFolder Mode = iota
	// Destination copies kept files into a destination directory and
	// downgrades Delete to a skip.
	Destination
)

// State is the queue lifecycle state.
type State int

const (
	// StateEmpty is a queue built from zero entries. Terminal.
	StateEmpty State = iota
	// StateActive has a current item under the cursor.
	StateActive
	// StateDone has consumed every entry. Terminal.
	StateDone
)

// ErrQueueDone is returned by Decide once the queue is terminal.
var ErrQueueDone = errors.New("review queue exhausted")

// ErrTransferFailed marks a copy or delete that failed mid-session. It
// is a transient notice: the queue advances past the item regardless.
var ErrTransferFailed = errors.New("transfer failed")

// Session owns one scan→review→finish cycle. The queue order is fixed
// at construction: entries sorted descending by size, ties keeping
// their discovery order.
type Session struct {
	entries []types.MediaEntry
	cursor  int
	mode    Mode
	exec    *transfer.Executor

	// pending is the at-most-one entry whose deletion has been decided
	// but not yet performed. Deletion is deferred one step so undo is
	// instantaneous and lossless.
	pending   *types.MediaEntry
	pendingAt int

	// lastCursor backs the one-step undo; hasUndo gates it.
	lastCursor int
	hasUndo    bool

	totals types.Totals
	log    *logging.Logger
}

// New builds a session over the filtered scan result. The entry slice
// is copied and sorted heaviest-first.
func New(entries []types.MediaEntry, mode Mode, exec *transfer.Executor) *Session {
	queue := make([]types.MediaEntry, len(entries))
	copy(queue, entries)
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].Size > queue[j].Size
	})

	var total int64
	for _, e := range queue {
		total += e.Size
	}

	return &Session{
		entries: queue,
		mode:    mode,
		exec:    exec,
		totals:  types.Totals{OriginalTotalBytes: total},
		log:     logging.Get("review"),
	}
}

// State returns the queue lifecycle state.
func (s *Session) State() State {
	switch {
	case len(s.entries) == 0:
		return StateEmpty
	case s.cursor >= len(s.entries):
		return StateDone
	default:
		return StateActive
	}
}

// Current returns the entry under the cursor, or false when the queue
// is terminal.
func (s *Session) Current() (types.MediaEntry, bool) {
	if s.State() != StateActive {
		return types.MediaEntry{}, false
	}
	return s.entries[s.cursor], true
}

// Mode returns the session's operating mode.
func (s *Session) Mode() Mode {
	return s.mode
}

// Len returns the queue length.
func (s *Session) Len() int {
	return len(s.entries)
}

// Cursor returns the current cursor position.
func (s *Session) Cursor() int {
	return s.cursor
}

// Totals returns a copy of the running counters.
func (s *Session) Totals() types.Totals {
	return s.totals
}

// PendingDelete returns the deferred deletion, if one is outstanding.
func (s *Session) PendingDelete() (types.MediaEntry, bool) {
	if s.pending == nil {
		return types.MediaEntry{}, false
	}
	return *s.pending, true
}

// Progress returns the fraction of the queue consumed, in [0, 1].
func (s *Session) Progress() float64 {
	if len(s.entries) == 0 {
		return 1
	}
	return float64(s.cursor) / float64(len(s.entries))
}

// ConsumedPaths returns the paths of every entry strictly before the
// cursor, for snapshot export. The current and future items are never
// included.
func (s *Session) ConsumedPaths() []string {
	paths := make([]string, 0, s.cursor)
	for _, e := range s.entries[:s.cursor] {
		paths = append(paths, e.Path)
	}
	return paths
}

// Decide applies an action to the current item and advances the cursor.
//
// Any deferred deletion from the prior step is flushed first. A Delete
// in single-folder mode only arms the pending slot; the filesystem is
// untouched until the next queue-advancing action, or immediately when
// this was the final item (there is no next step to trigger the flush).
//
// Storage failures during flush or copy are returned as a non-nil
// notice for display, but the queue advances regardless: a locked or
// externally modified file must never stall the session.
func (s *Session) Decide(action Action) error {
	if s.State() != StateActive {
		return ErrQueueDone
	}

	notice := s.flushPending()

	current := s.entries[s.cursor]
	switch action {
	case Keep:
		if err := s.keep(current); err != nil {
			notice = errors.Join(notice, err)
		}
	case Delete:
		if s.mode == SingleFolder {
			entry := current
			s.pending = &entry
			s.pendingAt = s.cursor
		} else {
			s.totals.FilesSkipped++
		}
	}

	s.lastCursor = s.cursor
	s.hasUndo = true

	// The final item gets no next step, so a deletion armed here is
	// flushed within the same decide.
	if s.cursor == len(s.entries)-1 && s.pending != nil && s.pendingAt == s.cursor {
		notice = errors.Join(notice, s.flushPending())
	}

	s.cursor++
	return notice
}

// keep records a kept item, copying it first in destination mode.
func (s *Session) keep(entry types.MediaEntry) error {
	if s.mode == Destination {
		if err := s.exec.Copy(entry); err != nil {
			s.log.Warn("copy failed", "path", entry.Path, "error", err)
			return fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}
	}
	s.totals.FilesKept++
	return nil
}

// flushPending performs the deferred deletion, if any. The pending slot
// is cleared even on failure; the item is reported and left behind.
func (s *Session) flushPending() error {
	if s.pending == nil {
		return nil
	}

	entry := *s.pending
	s.pending = nil

	if err := s.exec.Delete(entry); err != nil {
		s.log.Warn("deferred delete failed", "path", entry.Path, "error", err)
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	s.totals.FilesDeleted++
	s.totals.BytesDeleted += entry.Size
	return nil
}

// Undo restores exactly one step: the cursor returns to the last
// decided item and a deferred deletion of that item is discarded
// (nothing was removed from storage, so the undo is lossless). Already
// flushed deletes and completed copies are not restored. Returns false
// when there is nothing to undo.
func (s *Session) Undo() bool {
	if !s.hasUndo {
		return false
	}

	if s.pending != nil && s.pendingAt == s.lastCursor {
		s.pending = nil
	}

	s.cursor = s.lastCursor
	s.hasUndo = false
	return true
}

// FlushPending forces the deferred deletion without advancing the
// queue. Exposed for session teardown paths that must settle storage
// before exiting; quitting without calling it abandons the deletion and
// leaves the file on disk.
func (s *Session) FlushPending() error {
	err := s.flushPending()
	s.hasUndo = false
	return err
}
