package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"github.com/jamesainslie/cull/pkg/cull/fsys"
	"github.com/jamesainslie/cull/pkg/cull/review"
	"github.com/jamesainslie/cull/pkg/cull/transfer"
	"github.com/jamesainslie/cull/pkg/cull/types"
)

func reviewFixture(t *testing.T, entries []types.MediaEntry) *review.Session {
	t.Helper()
	mem := afero.NewMemMapFs()
	for _, e := range entries {
		if err := afero.WriteFile(mem, e.Path, make([]byte, e.Size), 0o644); err != nil {
			t.Fatalf("writing fixture %q: %v", e.Path, err)
		}
	}
	src := fsys.NewHandle(mem, "mem")
	return review.New(entries, review.SingleFolder, transfer.New(src, nil))
}

func sampleEntries() []types.MediaEntry {
	return []types.MediaEntry{
		{Path: "big.mp4", Size: 3000, Kind: types.KindVideo},
		{Path: "mid.jpg", Size: 2000, Kind: types.KindImage},
		{Path: "small.jpg", Size: 1000, Kind: types.KindImage},
	}
}

func TestNewReviewModel(t *testing.T) {
	sess := reviewFixture(t, sampleEntries())
	m := NewReviewModel(sess)

	if m.Session() != sess {
		t.Error("Session() should expose the underlying session")
	}
	if m.notice != "" || m.status != "" {
		t.Error("notice and status should start empty")
	}
}

func TestReviewModel_Decide(t *testing.T) {
	sess := reviewFixture(t, sampleEntries())
	m := NewReviewModel(sess)

	m = m.Decide(review.Keep)
	if m.notice != "" {
		t.Errorf("notice = %q, want empty after clean keep", m.notice)
	}
	if sess.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", sess.Cursor())
	}
}

func TestReviewModel_DecideFailureBecomesNotice(t *testing.T) {
	entries := sampleEntries()
	mem := afero.NewMemMapFs()
	src := fsys.NewHandle(mem, "mem")
	// Read-only source: the deferred delete will fail when flushed.
	sess := review.New(entries, review.SingleFolder, transfer.New(fsys.ReadOnly(src), nil))
	m := NewReviewModel(sess)

	m = m.Decide(review.Delete)
	m = m.Decide(review.Keep)

	if m.notice == "" {
		t.Error("failed flush should surface a notice")
	}
	// The queue advanced regardless.
	if sess.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2", sess.Cursor())
	}
}

func TestReviewModel_Undo(t *testing.T) {
	sess := reviewFixture(t, sampleEntries())
	m := NewReviewModel(sess)

	m = m.Undo()
	if !strings.Contains(m.status, "nothing") {
		t.Errorf("status = %q, want nothing-to-undo notice", m.status)
	}

	m = m.Decide(review.Keep)
	m = m.Undo()
	if !strings.Contains(m.status, "undid") {
		t.Errorf("status = %q, want undo confirmation", m.status)
	}
	if sess.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0 after undo", sess.Cursor())
	}
}

func TestReviewModel_WatchEventFlagsMissing(t *testing.T) {
	sess := reviewFixture(t, sampleEntries())
	m := NewReviewModel(sess)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	m, _ = m.Update(WatchEventMsg{Path: "big.mp4", Removed: true})

	if !m.missing["big.mp4"] {
		t.Error("removed path not flagged")
	}
	if !strings.Contains(m.View(), "removed outside") {
		t.Error("view missing external-removal warning")
	}
}

func TestReviewModel_SnapshotSavedMsg(t *testing.T) {
	sess := reviewFixture(t, sampleEntries())
	m := NewReviewModel(sess)

	m, _ = m.Update(SnapshotSavedMsg{Path: "/tmp/snap.json"})
	if !strings.Contains(m.status, "snap.json") {
		t.Errorf("status = %q, want save path", m.status)
	}

	m, _ = m.Update(SnapshotSavedMsg{Err: errors.New("disk full")})
	if !strings.Contains(m.notice, "disk full") {
		t.Errorf("notice = %q, want save error", m.notice)
	}
}

func TestReviewModel_View(t *testing.T) {
	sess := reviewFixture(t, sampleEntries())
	m := NewReviewModel(sess)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	// Heaviest first.
	if !strings.Contains(view, "big.mp4") {
		t.Error("view missing current item")
	}
	if !strings.Contains(view, "1 of 3") {
		t.Error("view missing position indicator")
	}
	if !strings.Contains(view, "keep") || !strings.Contains(view, "undo") {
		t.Error("view missing key hints")
	}
}

func TestReviewModel_ViewShowsPendingDelete(t *testing.T) {
	sess := reviewFixture(t, sampleEntries())
	m := NewReviewModel(sess)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	m = m.Decide(review.Delete)
	if !strings.Contains(m.View(), "pending delete") {
		t.Error("view missing pending-delete warning")
	}
}
