package transfer

import (
	"errors"
	"io"
	"testing"

	"github.com/spf13/afero"

	"github.com/jamesainslie/cull/pkg/cull/fsys"
	"github.com/jamesainslie/cull/pkg/cull/types"
)

func memHandle(t *testing.T, files map[string]string) *fsys.DirHandle {
	t.Helper()
	mem := afero.NewMemMapFs()
	for name, content := range files {
		if err := afero.WriteFile(mem, name, []byte(content), 0o644); err != nil {
			t.Fatalf("writing fixture %q: %v", name, err)
		}
	}
	return fsys.NewHandle(mem, "mem")
}

func readBack(t *testing.T, h fsys.Handle, name string) string {
	t.Helper()
	r, err := h.Open(name)
	if err != nil {
		t.Fatalf("Open(%q) error = %v", name, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll(%q) error = %v", name, err)
	}
	return string(data)
}

func TestDelete(t *testing.T) {
	src := memHandle(t, map[string]string{"doomed.jpg": "x"})
	e := New(src, nil)

	err := e.Delete(types.MediaEntry{Path: "doomed.jpg", Size: 1, Kind: types.KindImage})
	if err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if _, err := src.Open("doomed.jpg"); err == nil {
		t.Error("file still present after Delete")
	}
}

func TestDelete_Unsupported(t *testing.T) {
	src := memHandle(t, map[string]string{"f.jpg": "x"})
	e := New(fsys.ReadOnly(src), nil)

	err := e.Delete(types.MediaEntry{Path: "f.jpg", Size: 1, Kind: types.KindImage})
	if !errors.Is(err, fsys.ErrDeleteUnsupported) {
		t.Errorf("Delete error = %v, want ErrDeleteUnsupported", err)
	}

	// The target must be untouched.
	if got := readBack(t, src, "f.jpg"); got != "x" {
		t.Errorf("file content = %q, want untouched", got)
	}
}

func TestDelete_MissingFile(t *testing.T) {
	src := memHandle(t, nil)
	e := New(src, nil)

	if err := e.Delete(types.MediaEntry{Path: "absent.jpg"}); err == nil {
		t.Error("Delete of missing file should fail")
	}
}

func TestCopy_Stream(t *testing.T) {
	src := memHandle(t, map[string]string{"albums/pic.jpg": "image bytes"})
	dst := memHandle(t, nil)
	e := New(src, dst)

	err := e.Copy(types.MediaEntry{Path: "albums/pic.jpg", Size: 11, Kind: types.KindImage})
	if err != nil {
		t.Fatalf("Copy error = %v", err)
	}

	// The destination is flat: only the base name survives.
	if got := readBack(t, dst, "pic.jpg"); got != "image bytes" {
		t.Errorf("copied content = %q, want %q", got, "image bytes")
	}
}

func TestCopy_OverwritesExisting(t *testing.T) {
	src := memHandle(t, map[string]string{"pic.jpg": "fresh"})
	dst := memHandle(t, map[string]string{"pic.jpg": "stale previous copy"})
	e := New(src, dst)

	if err := e.Copy(types.MediaEntry{Path: "pic.jpg", Size: 5}); err != nil {
		t.Fatalf("Copy error = %v", err)
	}
	if got := readBack(t, dst, "pic.jpg"); got != "fresh" {
		t.Errorf("content = %q, want %q", got, "fresh")
	}
}

func TestCopy_SourceMissing(t *testing.T) {
	src := memHandle(t, nil)
	dst := memHandle(t, nil)
	e := New(src, dst)

	if err := e.Copy(types.MediaEntry{Path: "absent.jpg"}); err == nil {
		t.Error("Copy of missing source should fail")
	}
}

func TestCopy_NoDestination(t *testing.T) {
	src := memHandle(t, map[string]string{"pic.jpg": "x"})
	e := New(src, nil)

	if err := e.Copy(types.MediaEntry{Path: "pic.jpg"}); err == nil {
		t.Error("Copy without destination handle should fail")
	}
}

// noStreamDst refuses streaming writes, forcing the buffered fallback.
type noStreamDst struct {
	*fsys.DirHandle
}

func (d noStreamDst) Create(name string) (io.WriteCloser, error) {
	return nil, errors.New("streaming unsupported")
}

func TestCopy_BufferedFallback(t *testing.T) {
	src := memHandle(t, map[string]string{"pic.jpg": "fallback payload"})
	dst := noStreamDst{DirHandle: memHandle(t, nil)}
	e := New(src, dst)

	if err := e.Copy(types.MediaEntry{Path: "pic.jpg", Size: 16}); err != nil {
		t.Fatalf("Copy error = %v", err)
	}
	if got := readBack(t, dst.DirHandle, "pic.jpg"); got != "fallback payload" {
		t.Errorf("content = %q, want %q", got, "fallback payload")
	}
}

// brokenWriter fails mid-stream to exercise partial-file cleanup.
type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }
func (brokenWriter) Close() error              { return nil }

// brokenStreamDst streams into a failing writer and also rejects the
// whole-buffer path, so the copy fails outright.
type brokenStreamDst struct {
	*fsys.DirHandle
}

func (d brokenStreamDst) Create(name string) (io.WriteCloser, error) {
	return brokenWriter{}, nil
}

func (d brokenStreamDst) WriteFile(name string, data []byte) error {
	return errors.New("disk full")
}

func TestCopy_BothStrategiesFail(t *testing.T) {
	src := memHandle(t, map[string]string{"pic.jpg": "payload"})
	dst := brokenStreamDst{DirHandle: memHandle(t, nil)}
	e := New(src, dst)

	if err := e.Copy(types.MediaEntry{Path: "pic.jpg", Size: 7}); err == nil {
		t.Error("Copy should fail when both strategies fail")
	}
}
