package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/cull/pkg/cull/types"
)

// ScanProgressMsg carries the accepted entry count during a scan.
type ScanProgressMsg int

// EstimateMsg carries the pre-scan file count estimate.
type EstimateMsg int64

// ScanCompleteMsg is sent when the scan is complete.
type ScanCompleteMsg struct {
	Entries     []types.MediaEntry
	Interrupted bool
}

// ScanModel represents the scanning phase of the TUI.
type ScanModel struct {
	spinner   spinner.Model
	rootPath  string
	accepted  int
	estimate  int64
	startTime time.Time
	width     int
	height    int
	done      bool
}

// NewScanModel creates a new scanning model.
func NewScanModel(rootPath string) ScanModel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return ScanModel{
		spinner:   s,
		rootPath:  rootPath,
		startTime: time.Now(),
		width:     80,
		height:    24,
	}
}

// Init initializes the scanning model.
func (m ScanModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages for the scanning model.
func (m ScanModel) Update(msg tea.Msg) (ScanModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ScanProgressMsg:
		m.accepted = int(msg)
		return m, nil

	case EstimateMsg:
		m.estimate = int64(msg)
		return m, nil

	case ScanCompleteMsg:
		m.done = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the scanning model.
func (m ScanModel) View() string {
	var b strings.Builder

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  cull"))
	b.WriteString(mutedTextStyle.Render("  " + truncatePath(m.rootPath, contentWidth-10)))
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n\n")

	if m.done {
		b.WriteString(successTextStyle.Render("  Scan complete!"))
	} else {
		b.WriteString(fmt.Sprintf("  %s Scanning for media files…", m.spinner.View()))
	}
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  Found: %s", accentTextStyle.Render(fmt.Sprintf("%d", m.accepted))))
	if m.estimate > 0 {
		b.WriteString(mutedTextStyle.Render(fmt.Sprintf("  (~%d files to inspect)", m.estimate)))
	}
	b.WriteString("\n")
	b.WriteString(mutedTextStyle.Render(fmt.Sprintf("  Elapsed: %s", time.Since(m.startTime).Round(time.Second))))
	b.WriteString("\n\n")
	b.WriteString(mutedTextStyle.Render("  esc: stop and review what was found  •  q: quit"))
	b.WriteString("\n")

	return outerBoxStyle.Width(m.width - 2).Render(b.String())
}
