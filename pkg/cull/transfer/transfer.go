// Package transfer performs the destructive and copy operations decided
// by the review queue against the filesystem capability boundary.
package transfer

import (
	"fmt"
	"io"
	"path"

	"github.com/jamesainslie/cull/pkg/cull/fsys"
	"github.com/jamesainslie/cull/pkg/cull/logging"
	"github.com/jamesainslie/cull/pkg/cull/types"
)

// Executor applies decided actions to the underlying storage. The
// source handle is required; the destination handle is present only in
// destination mode.
type Executor struct {
	src fsys.Handle
	dst fsys.WriteHandle
	log *logging.Logger
}

// New creates an Executor. dst may be nil (single-folder mode).
func New(src fsys.Handle, dst fsys.WriteHandle) *Executor {
	return &Executor{
		src: src,
		dst: dst,
		log: logging.Get("transfer"),
	}
}

// Delete removes the entry's source file through the handle's direct
// removal capability. Returns fsys.ErrDeleteUnsupported when the handle
// grants no such capability; the caller must surface it, not retry.
func (e *Executor) Delete(entry types.MediaEntry) error {
	rem, ok := e.src.(fsys.Remover)
	if !ok {
		return fmt.Errorf("%w: %s", fsys.ErrDeleteUnsupported, entry.Path)
	}

	if err := rem.Remove(entry.Path); err != nil {
		return fmt.Errorf("deleting %q: %w", entry.Path, err)
	}

	e.log.Info("deleted", "path", entry.Path, "size", entry.Size)
	return nil
}

// Copy transfers the entry's source file into the destination directory,
// preserving the file name. The streaming transfer is preferred to
// bound memory use; when it fails the whole file is buffered and
// written in one pass. An existing same-named destination file is
// overwritten (Create truncates).
func (e *Executor) Copy(entry types.MediaEntry) error {
	if e.dst == nil {
		return fmt.Errorf("copying %q: no destination handle", entry.Path)
	}

	name := path.Base(entry.Path)

	if err := e.copyStream(entry.Path, name); err != nil {
		e.log.Warn("stream copy failed, falling back to buffered copy",
			"path", entry.Path, "error", err)
		if err := e.copyBuffered(entry.Path, name); err != nil {
			return fmt.Errorf("copying %q: %w", entry.Path, err)
		}
	}

	e.log.Info("copied", "path", entry.Path, "size", entry.Size)
	return nil
}

// copyStream pipes the source read stream directly into a destination
// write stream.
func (e *Executor) copyStream(srcName, dstName string) error {
	r, err := e.src.Open(srcName)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := e.dst.Create(dstName)
	if err != nil {
		return err
	}

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		e.removePartial(dstName)
		return err
	}
	if err := w.Close(); err != nil {
		e.removePartial(dstName)
		return err
	}
	return nil
}

// copyBuffered reads the whole source file into memory and writes it in
// one pass.
func (e *Executor) copyBuffered(srcName, dstName string) error {
	r, err := e.src.Open(srcName)
	if err != nil {
		return err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	return e.dst.WriteFile(dstName, data)
}

// removePartial cleans up a half-written destination file, best effort.
func (e *Executor) removePartial(name string) {
	if rem, ok := e.dst.(fsys.Remover); ok {
		_ = rem.Remove(name)
	}
}
