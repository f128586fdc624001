package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/cull/pkg/cull/types"
)

func TestNewScanModel(t *testing.T) {
	m := NewScanModel("/photos")

	if m.rootPath != "/photos" {
		t.Errorf("rootPath = %q, want /photos", m.rootPath)
	}
	if m.done {
		t.Error("done should be false initially")
	}
	if m.accepted != 0 {
		t.Errorf("accepted = %d, want 0", m.accepted)
	}
}

func TestScanModel_ProgressUpdates(t *testing.T) {
	m := NewScanModel("/photos")

	m, _ = m.Update(ScanProgressMsg(7))
	if m.accepted != 7 {
		t.Errorf("accepted = %d, want 7", m.accepted)
	}

	m, _ = m.Update(EstimateMsg(120))
	if m.estimate != 120 {
		t.Errorf("estimate = %d, want 120", m.estimate)
	}
}

func TestScanModel_Complete(t *testing.T) {
	m := NewScanModel("/photos")
	m, _ = m.Update(ScanCompleteMsg{Entries: []types.MediaEntry{}})
	if !m.done {
		t.Error("done should be true after completion")
	}
}

func TestScanModel_View(t *testing.T) {
	m := NewScanModel("/photos")
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = m.Update(ScanProgressMsg(12))
	m, _ = m.Update(EstimateMsg(40))

	view := m.View()
	if !strings.Contains(view, "cull") {
		t.Error("view missing title")
	}
	if !strings.Contains(view, "12") {
		t.Error("view missing accepted count")
	}
	if !strings.Contains(view, "40") {
		t.Error("view missing estimate")
	}
	if !strings.Contains(view, "Scanning") {
		t.Error("view missing scanning banner")
	}
}

func TestScanModel_ViewDone(t *testing.T) {
	m := NewScanModel("/photos")
	m, _ = m.Update(ScanCompleteMsg{})

	if !strings.Contains(m.View(), "complete") {
		t.Error("done view missing completion banner")
	}
}
