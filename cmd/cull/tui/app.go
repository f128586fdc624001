package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jamesainslie/cull/pkg/cull/fsys"
	"github.com/jamesainslie/cull/pkg/cull/history"
	"github.com/jamesainslie/cull/pkg/cull/logging"
	"github.com/jamesainslie/cull/pkg/cull/review"
	"github.com/jamesainslie/cull/pkg/cull/scanner"
	"github.com/jamesainslie/cull/pkg/cull/session"
	"github.com/jamesainslie/cull/pkg/cull/transfer"
	"github.com/jamesainslie/cull/pkg/cull/types"
	"github.com/jamesainslie/cull/pkg/cull/watcher"
)

// AppState represents the current state of the application.
type AppState int

const (
	StateScanning AppState = iota
	StateReview
	StateSummary
)

// Options configures the TUI application.
type Options struct {
	Root        string
	Src         *fsys.DirHandle
	Dst         *fsys.DirHandle
	Recursive   bool
	MinSize     int64
	Exclude     []string
	Ignored     map[string]struct{}
	SnapshotDir string
	HistoryDir  string // empty disables history recording
}

// HistorySavedMsg reports the outcome of appending the session record.
type HistorySavedMsg struct{ Err error }

// Model is the main Bubble Tea model for the cull TUI.
type Model struct {
	state       AppState
	scanModel   ScanModel
	reviewModel ReviewModel
	options     Options

	// Scanning state
	ctx          context.Context
	cancel       context.CancelFunc
	progressChan chan int
	scanDone     bool
	interrupted  bool
	emptyQueue   bool

	// External change watch
	watch *watcher.Watcher

	// Session accounting
	record   history.Record
	recorded bool

	log *logging.Logger

	width  int
	height int
}

// Run starts the TUI and blocks until the session ends.
func Run(opts Options) error {
	m := NewModel(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// NewModel creates a new TUI model with the given options.
func NewModel(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())

	mode := "in-place"
	if opts.Dst != nil {
		mode = "copy"
	}

	return Model{
		state:        StateScanning,
		scanModel:    NewScanModel(opts.Root),
		options:      opts,
		ctx:          ctx,
		cancel:       cancel,
		progressChan: make(chan int, 64),
		record:       history.NewRecord(opts.Root, mode),
		log:          logging.Get("tui"),
		width:        80,
		height:       24,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.scanModel.Init(),
		m.startScan(),
		m.startEstimate(),
		m.listenForProgress(),
	)
}

// startScan runs the scanner in the background and reports completion.
func (m Model) startScan() tea.Cmd {
	ctx := m.ctx
	opts := m.options
	progress := m.progressChan

	return func() tea.Msg {
		s := scanner.New(scanner.Options{
			Dir:       opts.Src,
			Recursive: opts.Recursive,
			MinSize:   opts.MinSize,
			Exclude:   opts.Exclude,
			OnProgress: func(accepted int) {
				select {
				case progress <- accepted:
				default:
				}
			},
		})

		entries, err := s.Scan(ctx)
		if err != nil {
			// The scanner swallows per-entry failures; an error here is
			// unexpected but still ends the scanning phase.
			logging.Get("tui").Error("scan failed", "error", err)
		}
		return ScanCompleteMsg{Entries: entries, Interrupted: ctx.Err() != nil}
	}
}

// startEstimate pre-counts files for percent-style progress.
func (m Model) startEstimate() tea.Cmd {
	ctx := m.ctx
	opts := m.options
	return func() tea.Msg {
		return EstimateMsg(scanner.Estimate(ctx, opts.Root, opts.Recursive))
	}
}

// listenForProgress forwards scanner progress into the update loop.
func (m Model) listenForProgress() tea.Cmd {
	progress := m.progressChan
	return func() tea.Msg {
		accepted, ok := <-progress
		if !ok {
			return nil
		}
		return ScanProgressMsg(accepted)
	}
}

// listenForWatch forwards watcher events into the update loop.
func (m Model) listenForWatch() tea.Cmd {
	w := m.watch
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-w.Events()
		if !ok {
			return nil
		}
		return WatchEventMsg{Path: ev.Path, Removed: ev.Removed}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.scanModel, cmd = m.scanModel.Update(msg)
		cmds = append(cmds, cmd)
		m.reviewModel, cmd = m.reviewModel.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ScanProgressMsg:
		var cmd tea.Cmd
		m.scanModel, cmd = m.scanModel.Update(msg)
		return m, tea.Batch(cmd, m.listenForProgress())

	case EstimateMsg:
		var cmd tea.Cmd
		m.scanModel, cmd = m.scanModel.Update(msg)
		return m, cmd

	case ScanCompleteMsg:
		return m.beginReview(msg)

	case WatchEventMsg:
		var cmd tea.Cmd
		m.reviewModel, cmd = m.reviewModel.Update(msg)
		return m, tea.Batch(cmd, m.listenForWatch())

	case SnapshotSavedMsg:
		var cmd tea.Cmd
		m.reviewModel, cmd = m.reviewModel.Update(msg)
		return m, cmd

	case HistorySavedMsg:
		if msg.Err != nil {
			m.log.Warn("history record failed", "error", msg.Err)
		}
		return m, nil

	default:
		if m.state == StateScanning {
			var cmd tea.Cmd
			m.scanModel, cmd = m.scanModel.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

// beginReview transitions from scanning to the review queue.
func (m Model) beginReview(msg ScanCompleteMsg) (tea.Model, tea.Cmd) {
	m.scanDone = true
	m.interrupted = msg.Interrupted
	var cmd tea.Cmd
	m.scanModel, cmd = m.scanModel.Update(msg)

	entries := session.Filter(msg.Entries, m.options.Ignored)

	mode := review.SingleFolder
	var dst fsys.WriteHandle
	if m.options.Dst != nil {
		mode = review.Destination
		dst = m.options.Dst
	}
	exec := transfer.New(m.options.Src, dst)
	sess := review.New(entries, mode, exec)

	m.record.QueueLength = int64(sess.Len())
	m.record.BytesQueued = sess.Totals().OriginalTotalBytes

	if sess.State() != review.StateActive {
		m.emptyQueue = true
		m.state = StateSummary
		m.reviewModel = NewReviewModel(sess)
		return m, tea.Batch(cmd, m.saveHistory(sess))
	}

	m.reviewModel = NewReviewModel(sess)
	m.reviewModel.width = m.width
	m.reviewModel.height = m.height
	m.reviewModel.bar.Width = m.width - 10
	m.state = StateReview

	var cmds []tea.Cmd
	cmds = append(cmds, cmd)

	w, err := watcher.New(m.options.Root)
	if err != nil {
		m.log.Warn("cannot watch source for external changes", "error", err)
	} else {
		m.watch = w
		cmds = append(cmds, m.listenForWatch())
	}

	return m, tea.Batch(cmds...)
}

// handleKey handles keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global keys
	switch key {
	case "ctrl+c":
		return m.quit()
	}

	switch m.state {
	case StateScanning:
		switch key {
		case "q":
			return m.quit()
		case "esc":
			// Stop the scan and review the partial result.
			m.cancel()
			return m, nil
		}
		return m, nil

	case StateReview:
		return m.handleReviewKey(key)

	case StateSummary:
		switch key {
		case "q", "esc", "enter":
			return m.quit()
		}
		return m, nil
	}

	return m, nil
}

// handleReviewKey handles keys on the review screen.
func (m Model) handleReviewKey(key string) (tea.Model, tea.Cmd) {
	sess := m.reviewModel.Session()

	switch key {
	case "k", "right":
		m.reviewModel = m.reviewModel.Decide(review.Keep)
	case "d", "x":
		m.reviewModel = m.reviewModel.Decide(review.Delete)
	case "u":
		m.reviewModel = m.reviewModel.Undo()
		return m, nil
	case "s":
		return m, m.saveSnapshot()
	case "q":
		return m.quit()
	default:
		return m, nil
	}

	if sess.State() == review.StateDone {
		m.state = StateSummary
		return m, m.saveHistory(sess)
	}
	return m, nil
}

// saveSnapshot exports the processed set and writes it to the snapshot
// directory.
func (m Model) saveSnapshot() tea.Cmd {
	sess := m.reviewModel.Session()
	folderName := filepath.Base(m.options.Root)
	snap := session.Export(folderName, m.options.Ignored, sess.ConsumedPaths())
	dir := m.options.SnapshotDir

	return func() tea.Msg {
		name := fmt.Sprintf("%s-%s.json", folderName, snap.Timestamp.Format("2006-01-02T15-04-05"))
		path := filepath.Join(dir, name)
		if err := session.Save(path, snap); err != nil {
			return SnapshotSavedMsg{Err: err}
		}
		return SnapshotSavedMsg{Path: path}
	}
}

// saveHistory appends the session record to the history store.
func (m *Model) saveHistory(sess *review.Session) tea.Cmd {
	if m.recorded || m.options.HistoryDir == "" {
		return nil
	}
	m.recorded = true

	rec := m.record
	totals := sess.Totals()
	rec.FinishedAt = time.Now().UTC()
	rec.FilesKept = totals.FilesKept
	rec.FilesDeleted = totals.FilesDeleted
	rec.FilesSkipped = totals.FilesSkipped
	rec.BytesDeleted = totals.BytesDeleted
	dir := m.options.HistoryDir

	return func() tea.Msg {
		store, err := history.Open(dir)
		if err != nil {
			return HistorySavedMsg{Err: err}
		}
		defer func() { _ = store.Close() }()
		return HistorySavedMsg{Err: store.Append(rec)}
	}
}

// quit tears the session down. A live pending deletion is abandoned,
// not flushed: quitting is not a queue-advancing action, so the file
// stays on disk.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	if m.watch != nil {
		_ = m.watch.Close()
	}

	var cmds []tea.Cmd
	if m.state == StateReview {
		cmds = append(cmds, m.saveHistory(m.reviewModel.Session()))
	}
	cmds = append(cmds, tea.Quit)
	return m, tea.Sequence(cmds...)
}

// View renders the current state.
func (m Model) View() string {
	switch m.state {
	case StateScanning:
		return m.scanModel.View()
	case StateReview:
		return m.reviewModel.View()
	case StateSummary:
		return m.summaryView()
	}
	return ""
}

// summaryView renders the end-of-session screen.
func (m Model) summaryView() string {
	var b strings.Builder

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  cull"))
	b.WriteString(mutedTextStyle.Render("  session complete"))
	b.WriteString("\n")
	b.WriteString(renderDivider(contentWidth))
	b.WriteString("\n\n")

	if m.emptyQueue {
		b.WriteString(mutedTextStyle.Render("  Nothing to review."))
		if len(m.options.Ignored) > 0 {
			b.WriteString(mutedTextStyle.Render(
				fmt.Sprintf(" %d entries were already processed.", len(m.options.Ignored))))
		}
		b.WriteString("\n")
	} else {
		sess := m.reviewModel.Session()
		t := sess.Totals()
		b.WriteString(fmt.Sprintf("  Reviewed:  %s\n", accentTextStyle.Render(fmt.Sprintf("%d files", sess.Len()))))
		b.WriteString(fmt.Sprintf("  Kept:      %d\n", t.FilesKept))
		b.WriteString(fmt.Sprintf("  Deleted:   %d\n", t.FilesDeleted))
		if sess.Mode() == review.Destination {
			b.WriteString(fmt.Sprintf("  Skipped:   %d\n", t.FilesSkipped))
		}
		b.WriteString("  Freed:     " + successTextStyle.Render(types.FormatSize(t.BytesDeleted)) + "\n")

		if free, err := fsys.DiskFree(m.options.Root); err == nil {
			b.WriteString(mutedTextStyle.Render(fmt.Sprintf("  Disk free: %s", types.FormatSize(free))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(mutedTextStyle.Render("  q: quit"))
	b.WriteString("\n")

	return outerBoxStyle.Width(m.width - 2).Render(b.String())
}
