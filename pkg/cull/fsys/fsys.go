// Package fsys defines the narrow filesystem capability boundary that the
// scanner, review queue, and transfer executor operate against. A Handle
// grants enumerate and read access to one directory tree; write and
// remove access are separate capabilities so their absence is a
// reportable condition rather than a silent no-op.
package fsys

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

var (
	// ErrAccessDenied indicates permission was not granted for the
	// required access mode. Sessions must not start against the handle.
	ErrAccessDenied = errors.New("access denied")

	// ErrUnsupportedEnvironment indicates a required filesystem
	// capability is absent entirely.
	ErrUnsupportedEnvironment = errors.New("filesystem capability unavailable")

	// ErrDeleteUnsupported indicates a delete was invoked on a handle
	// that grants no removal capability. The target is left untouched.
	ErrDeleteUnsupported = errors.New("handle does not support delete")
)

// Handle grants enumerate and read access to one directory tree.
// Names are slash-joined paths relative to the handle root; "." names
// the root itself.
type Handle interface {
	// Name returns a human-readable identity for the handle root,
	// used for snapshot source matching and messages.
	Name() string

	// ReadDir enumerates the immediate children of a directory.
	ReadDir(name string) ([]os.FileInfo, error)

	// Open opens a file's content for reading.
	Open(name string) (io.ReadCloser, error)
}

// WriteHandle additionally grants write access: a streaming create and
// a whole-buffer write, mirroring the two transfer strategies.
type WriteHandle interface {
	Handle

	// Create opens a write stream for a file, truncating any existing
	// file of the same name.
	Create(name string) (io.WriteCloser, error)

	// WriteFile writes a file's full contents in one pass.
	WriteFile(name string, data []byte) error
}

// Remover is the optional direct-removal capability. Callers must type
// assert for it and surface ErrDeleteUnsupported when absent.
type Remover interface {
	Remove(name string) error
}

// DirHandle implements Handle, WriteHandle, and Remover over an afero
// filesystem rooted at one directory. Real sessions use an OS-backed
// BasePathFs; tests substitute a MemMapFs.
type DirHandle struct {
	fsys afero.Fs
	name string
}

// NewHandle wraps an afero filesystem as a DirHandle. The name is the
// handle's identity (typically the absolute root path, or the folder
// name for in-memory filesystems).
func NewHandle(fsys afero.Fs, name string) *DirHandle {
	return &DirHandle{fsys: fsys, name: name}
}

// OpenDir opens an existing directory as a handle rooted at it.
// Returns ErrAccessDenied when permission is refused.
func OpenDir(root string) (*DirHandle, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", root, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrAccessDenied, abs)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", abs)
	}

	return NewHandle(afero.NewBasePathFs(afero.NewOsFs(), abs), abs), nil
}

// OpenDirCreate opens a directory as a handle, creating it (and any
// missing parents) first. Used for the copy destination.
func OpenDirCreate(root string) (*DirHandle, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", root, err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrAccessDenied, abs)
		}
		return nil, fmt.Errorf("creating %q: %w", abs, err)
	}

	return OpenDir(abs)
}

// Name returns the handle root identity.
func (h *DirHandle) Name() string {
	return h.name
}

// ReadDir enumerates the immediate children of name.
func (h *DirHandle) ReadDir(name string) ([]os.FileInfo, error) {
	infos, err := afero.ReadDir(h.fsys, filepath.FromSlash(name))
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// Open opens the named file for reading.
func (h *DirHandle) Open(name string) (io.ReadCloser, error) {
	return h.fsys.Open(filepath.FromSlash(name))
}

// Create opens a write stream for the named file, truncating any
// existing file.
func (h *DirHandle) Create(name string) (io.WriteCloser, error) {
	return h.fsys.Create(filepath.FromSlash(name))
}

// WriteFile writes the named file's contents in one pass.
func (h *DirHandle) WriteFile(name string, data []byte) error {
	return afero.WriteFile(h.fsys, filepath.FromSlash(name), data, 0o644)
}

// Remove deletes the named file.
func (h *DirHandle) Remove(name string) error {
	err := h.fsys.Remove(filepath.FromSlash(name))
	if err != nil && os.IsPermission(err) {
		return fmt.Errorf("%w: %s", ErrAccessDenied, name)
	}
	return err
}

// writeProbeName is the throwaway file used to verify write access.
const writeProbeName = ".cull-write-probe"

// EnsureWritable verifies the handle grants write access by creating
// and removing a probe file. Returns ErrAccessDenied when the probe
// cannot be created.
func EnsureWritable(h WriteHandle) error {
	w, err := h.Create(writeProbeName)
	if err != nil {
		return fmt.Errorf("%w: %s not writable: %v", ErrAccessDenied, h.Name(), err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: %s not writable: %v", ErrAccessDenied, h.Name(), err)
	}

	if r, ok := h.(Remover); ok {
		_ = r.Remove(writeProbeName)
	}
	return nil
}

// readOnlyHandle wraps a Handle, structurally withholding the write and
// remove capabilities.
type readOnlyHandle struct {
	Handle
}

// ReadOnly returns a view of h that grants enumerate and read access
// only. Delete through it reports ErrDeleteUnsupported at the caller.
func ReadOnly(h Handle) Handle {
	return readOnlyHandle{Handle: h}
}
