package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/cull/pkg/cull/review"
	"github.com/jamesainslie/cull/pkg/cull/types"
)

// WatchEventMsg reports an external filesystem change under the root.
type WatchEventMsg struct {
	Path    string
	Removed bool
}

// SnapshotSavedMsg reports the outcome of a snapshot save.
type SnapshotSavedMsg struct {
	Path string
	Err  error
}

// ReviewModel drives the one-item-at-a-time triage screen.
type ReviewModel struct {
	session *review.Session
	bar     progress.Model
	notice  string
	status  string
	missing map[string]bool
	width   int
	height  int
}

// NewReviewModel creates a review model over a session.
func NewReviewModel(sess *review.Session) ReviewModel {
	bar := progress.New(progress.WithDefaultGradient())
	return ReviewModel{
		session: sess,
		bar:     bar,
		missing: make(map[string]bool),
		width:   80,
		height:  24,
	}
}

// Session exposes the underlying review session.
func (m ReviewModel) Session() *review.Session {
	return m.session
}

// Decide applies an action to the current item. A transfer failure
// becomes a transient notice; the queue advances regardless.
func (m ReviewModel) Decide(action review.Action) ReviewModel {
	m.notice = ""
	m.status = ""
	if err := m.session.Decide(action); err != nil {
		m.notice = err.Error()
	}
	return m
}

// Undo restores the previous step, if any.
func (m ReviewModel) Undo() ReviewModel {
	m.notice = ""
	if m.session.Undo() {
		m.status = "undid last decision"
	} else {
		m.status = "nothing to undo"
	}
	return m
}

// Update handles messages for the review model.
func (m ReviewModel) Update(msg tea.Msg) (ReviewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = msg.Width - 10
		return m, nil

	case WatchEventMsg:
		if msg.Removed {
			m.missing[msg.Path] = true
		}
		return m, nil

	case SnapshotSavedMsg:
		if msg.Err != nil {
			m.notice = fmt.Sprintf("snapshot save failed: %v", msg.Err)
		} else {
			m.status = "snapshot saved to " + msg.Path
		}
		return m, nil
	}

	return m, nil
}

// View renders the review screen.
func (m ReviewModel) View() string {
	var b strings.Builder

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	current, ok := m.session.Current()
	if !ok {
		return ""
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  cull"))
	b.WriteString(mutedTextStyle.Render(fmt.Sprintf("  %d of %d", m.session.Cursor()+1, m.session.Len())))
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n\n")

	// Current item panel.
	var item strings.Builder
	item.WriteString(accentTextStyle.Render(truncatePath(current.Path, contentWidth-8)))
	item.WriteString("\n")
	item.WriteString(mutedTextStyle.Render(fmt.Sprintf("%s  •  %s", current.Kind, current.HumanSize())))
	if m.missing[current.Path] {
		item.WriteString("\n")
		item.WriteString(warningTextStyle.Render("file was removed outside cull"))
	}
	b.WriteString(itemBoxStyle.Width(contentWidth - 2).Render(item.String()))
	b.WriteString("\n\n")

	b.WriteString("  " + m.bar.ViewAs(m.session.Progress()))
	b.WriteString("\n\n")

	if pending, ok := m.session.PendingDelete(); ok {
		b.WriteString(warningTextStyle.Render(
			fmt.Sprintf("  pending delete: %s (undo to cancel)", truncatePath(pending.Path, contentWidth-30))))
		b.WriteString("\n")
	}

	b.WriteString(m.renderTotals())
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(errorTextStyle.Render("  " + m.notice))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(successTextStyle.Render("  " + m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderKeys())
	b.WriteString("\n")

	return outerBoxStyle.Width(m.width - 2).Render(b.String())
}

// renderTotals renders the running counters line.
func (m ReviewModel) renderTotals() string {
	t := m.session.Totals()
	parts := []string{
		fmt.Sprintf("kept %d", t.FilesKept),
		fmt.Sprintf("deleted %d (%s)", t.FilesDeleted, types.FormatSize(t.BytesDeleted)),
	}
	if m.session.Mode() == review.Destination {
		parts = append(parts, fmt.Sprintf("skipped %d", t.FilesSkipped))
	}
	return mutedTextStyle.Render("  " + strings.Join(parts, "  •  "))
}

// renderKeys renders the key hints line.
func (m ReviewModel) renderKeys() string {
	deleteHint := "delete"
	if m.session.Mode() == review.Destination {
		deleteHint = "skip"
	}
	hints := []string{
		keyStyle.Render("k") + mutedTextStyle.Render(" keep"),
		keyStyle.Render("d") + mutedTextStyle.Render(" "+deleteHint),
		keyStyle.Render("u") + mutedTextStyle.Render(" undo"),
		keyStyle.Render("s") + mutedTextStyle.Render(" snapshot"),
		keyStyle.Render("q") + mutedTextStyle.Render(" quit"),
	}
	return "  " + strings.Join(hints, "   ")
}
