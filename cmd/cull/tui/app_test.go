package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/cull/pkg/cull/fsys"
	"github.com/jamesainslie/cull/pkg/cull/review"
	"github.com/jamesainslie/cull/pkg/cull/types"
)

func appFixture(t *testing.T) Model {
	t.Helper()
	dir := t.TempDir()
	src, err := fsys.OpenDir(dir)
	if err != nil {
		t.Fatalf("OpenDir error = %v", err)
	}
	m := NewModel(Options{Root: dir, Src: src, Recursive: true})
	t.Cleanup(m.cancel)
	return m
}

func TestNewModel(t *testing.T) {
	m := appFixture(t)

	if m.state != StateScanning {
		t.Errorf("initial state = %v, want StateScanning", m.state)
	}
	if m.record.ID == "" {
		t.Error("history record should be created up front")
	}
	if m.record.Mode != "in-place" {
		t.Errorf("record mode = %q, want in-place", m.record.Mode)
	}
}

func TestNewModel_DestinationMode(t *testing.T) {
	dir := t.TempDir()
	src, err := fsys.OpenDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	dst, err := fsys.OpenDirCreate(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	m := NewModel(Options{Root: dir, Src: src, Dst: dst})
	defer m.cancel()

	if m.record.Mode != "copy" {
		t.Errorf("record mode = %q, want copy", m.record.Mode)
	}
}

func TestModel_ScanCompleteEntersReview(t *testing.T) {
	m := appFixture(t)

	entries := []types.MediaEntry{
		{Path: "a.jpg", Size: 100, Kind: types.KindImage},
	}
	updated, _ := m.Update(ScanCompleteMsg{Entries: entries})
	got := updated.(Model)

	if got.state != StateReview {
		t.Errorf("state = %v, want StateReview", got.state)
	}
	if got.reviewModel.Session().Len() != 1 {
		t.Errorf("queue length = %d, want 1", got.reviewModel.Session().Len())
	}
	if got.record.QueueLength != 1 {
		t.Errorf("record queue length = %d, want 1", got.record.QueueLength)
	}
}

func TestModel_EmptyScanGoesToSummary(t *testing.T) {
	m := appFixture(t)

	updated, _ := m.Update(ScanCompleteMsg{})
	got := updated.(Model)

	if got.state != StateSummary {
		t.Errorf("state = %v, want StateSummary", got.state)
	}
	if !strings.Contains(got.View(), "Nothing to review") {
		t.Error("summary missing empty-queue banner")
	}
}

func TestModel_IgnoredEntriesAreFiltered(t *testing.T) {
	dir := t.TempDir()
	src, err := fsys.OpenDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	m := NewModel(Options{
		Root:    dir,
		Src:     src,
		Ignored: map[string]struct{}{"seen.jpg": {}},
	})
	defer m.cancel()

	entries := []types.MediaEntry{
		{Path: "seen.jpg", Size: 200, Kind: types.KindImage},
		{Path: "new.jpg", Size: 100, Kind: types.KindImage},
	}
	updated, _ := m.Update(ScanCompleteMsg{Entries: entries})
	got := updated.(Model)

	if got.reviewModel.Session().Len() != 1 {
		t.Fatalf("queue length = %d, want 1 after filtering", got.reviewModel.Session().Len())
	}
	current, _ := got.reviewModel.Session().Current()
	if current.Path != "new.jpg" {
		t.Errorf("current = %q, want new.jpg", current.Path)
	}
}

func TestModel_ReviewKeys(t *testing.T) {
	m := appFixture(t)
	entries := []types.MediaEntry{
		{Path: "a.jpg", Size: 200, Kind: types.KindImage},
		{Path: "b.jpg", Size: 100, Kind: types.KindImage},
	}
	updated, _ := m.Update(ScanCompleteMsg{Entries: entries})
	got := updated.(Model)

	updated, _ = got.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	got = updated.(Model)
	if got.reviewModel.Session().Cursor() != 1 {
		t.Errorf("cursor = %d, want 1 after keep", got.reviewModel.Session().Cursor())
	}

	updated, _ = got.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'u'}})
	got = updated.(Model)
	if got.reviewModel.Session().Cursor() != 0 {
		t.Errorf("cursor = %d, want 0 after undo", got.reviewModel.Session().Cursor())
	}
}

func TestModel_FinishingQueueEntersSummary(t *testing.T) {
	m := appFixture(t)
	entries := []types.MediaEntry{
		{Path: "only.jpg", Size: 100, Kind: types.KindImage},
	}
	updated, _ := m.Update(ScanCompleteMsg{Entries: entries})
	got := updated.(Model)

	updated, _ = got.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	got = updated.(Model)

	if got.state != StateSummary {
		t.Errorf("state = %v, want StateSummary", got.state)
	}
	if got.reviewModel.Session().State() != review.StateDone {
		t.Error("session should be done")
	}

	view := got.View()
	if !strings.Contains(view, "Kept") {
		t.Errorf("summary missing totals:\n%s", view)
	}
}

func TestModel_EscCancelsScan(t *testing.T) {
	m := appFixture(t)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	got := updated.(Model)

	select {
	case <-got.ctx.Done():
	default:
		t.Error("esc during scan should cancel the context")
	}
	if got.state != StateScanning {
		t.Error("esc should not leave the scanning state; the scan winds down on its own")
	}
}

func TestModel_WatchEventReachesReview(t *testing.T) {
	m := appFixture(t)
	entries := []types.MediaEntry{
		{Path: "a.jpg", Size: 100, Kind: types.KindImage},
	}
	updated, _ := m.Update(ScanCompleteMsg{Entries: entries})
	got := updated.(Model)

	updated, _ = got.Update(WatchEventMsg{Path: "a.jpg", Removed: true})
	got = updated.(Model)

	if !got.reviewModel.missing["a.jpg"] {
		t.Error("watch event not forwarded to the review model")
	}
}
