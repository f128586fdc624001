// Package watcher reports external filesystem changes beneath the scan
// root while a review session is active, so the session can flag queued
// files that were removed or renamed outside the tool.
package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jamesainslie/cull/pkg/cull/logging"
)

// Event describes one external change to a file under the watched root.
type Event struct {
	// Path is the slash-joined path relative to the watched root.
	Path string

	// Removed is true when the file was deleted or renamed away.
	Removed bool
}

// Watcher watches a directory tree and translates raw notifications
// into review-relevant events.
type Watcher struct {
	fsw    *fsnotify.Watcher
	root   string
	events chan Event
	log    *logging.Logger

	mu     sync.Mutex
	closed bool
}

// New creates a watcher over root and starts its event loop. Watches
// are added for the root and every subdirectory; symlinks are not
// followed.
func New(root string) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:    fsw,
		root:   absRoot,
		events: make(chan Event, 64),
		log:    logging.Get("watcher"),
	}

	if err := w.addTree(absRoot); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	go w.run()
	return w, nil
}

// Events returns the channel of translated events. It is closed when
// the watcher is closed.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Close stops watching and closes the event channel.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.fsw.Close()
}

// addTree adds watches for dir and all directories beneath it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() {
			if err := w.fsw.Add(path); err != nil {
				w.log.Warn("cannot watch directory", "path", path, "error", err)
			}
		}
		return nil
	})
}

// run translates fsnotify events until the watcher closes.
func (w *Watcher) run() {
	defer close(w.events)

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// handle converts a raw notification into an Event.
func (w *Watcher) handle(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	switch {
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		w.emit(Event{Path: rel, Removed: true})

	case ev.Op.Has(fsnotify.Create):
		// New directories join the watch so removals inside them are
		// still observed.
		if info, statErr := os.Lstat(ev.Name); statErr == nil && info.IsDir() {
			if err := w.fsw.Add(ev.Name); err != nil {
				w.log.Warn("cannot watch directory", "path", ev.Name, "error", err)
			}
		}
	}
}

// emit delivers an event without blocking the notification loop.
func (w *Watcher) emit(ev Event) {
	select {
	case w.events <- ev:
	default:
		w.log.Warn("dropping watch event", "path", ev.Path)
	}
}
