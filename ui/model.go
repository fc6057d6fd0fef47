package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/go-scripts/teamscribe/internal/controller"
	"github.com/go-scripts/teamscribe/internal/history"
	capprogress "github.com/go-scripts/teamscribe/internal/progress"
	"github.com/go-scripts/teamscribe/internal/scroll"
)

// Capture runs an export and can be stopped.
type Capture interface {
	Export(ctx context.Context, req controller.ExportRequest) (controller.ExportResult, error)
	Stop() bool
}

// ExportLog lists past exports.
type ExportLog interface {
	RecentExports(ctx context.Context, limit int) ([]history.Export, error)
}

// Message types
type ProgressMsg scroll.Progress

type doneMsg struct {
	result controller.ExportResult
	err    error
}

type exportsMsg []history.Export

type tickMsg time.Time

// Model runs one export and shows it.
type Model struct {
	ctx     context.Context
	capture Capture
	exports ExportLog
	req     controller.ExportRequest
	layout  *Layout

	stats    CaptureStats
	result   *controller.ExportResult
	err      error
	done     bool
	quitting bool
}

// NewModel creates the model. exports may be nil.
func NewModel(ctx context.Context, capture Capture, exports ExportLog, req controller.ExportRequest) Model {
	return Model{
		ctx:     ctx,
		capture: capture,
		exports: exports,
		req:     req,
		layout:  NewLayout(),
		stats:   CaptureStats{StartTime: time.Now()},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.layout.Init(),
		m.run,
		m.loadExports,
		tick(),
	)
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) run() tea.Msg {
	res, err := m.capture.Export(m.ctx, m.req)
	return doneMsg{result: res, err: err}
}

func (m Model) loadExports() tea.Msg {
	if m.exports == nil {
		return nil
	}
	exports, err := m.exports.RecentExports(m.ctx, 20)
	if err != nil {
		return nil
	}
	return exportsMsg(exports)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "s", "esc":
			m.stop()
			return m, nil
		case "ctrl+c", "q":
			if m.done {
				return m, tea.Quit
			}
			m.quitting = true
			m.stop()
			return m, nil
		}

	case tickMsg:
		if !m.done {
			cmds = append(cmds, tick())
		}

	case ProgressMsg:
		m.stats.Progress = scroll.Progress(msg)
		if msg.Step > 1 && msg.Added == 0 && msg.State == scroll.StateRunning {
			m.stats.Retries++
		}

	case doneMsg:
		m.done = true
		m.finish(msg)
		if m.quitting {
			return m, tea.Quit
		}
		cmds = append(cmds, m.loadExports)

	case exportsMsg:
		cmds = append(cmds, m.layout.SetExports(msg))
	}

	m.layout.UpdateStats(m.stats)
	cmds = append(cmds, m.layout.Update(msg))
	return m, tea.Batch(cmds...)
}

func (m *Model) stop() {
	if m.done || m.stats.Stopping {
		return
	}
	if m.capture.Stop() {
		m.stats.Stopping = true
		m.layout.AddInfo("Stopping capture, keeping what was captured…")
	}
}

func (m *Model) finish(msg doneMsg) {
	if msg.err != nil {
		m.err = msg.err
		switch {
		case errors.Is(msg.err, controller.ErrNoEntriesFound):
			m.layout.AddWarning("No transcript entries found. Is the transcript panel open?")
		case errors.Is(msg.err, controller.ErrPageMismatch):
			m.layout.AddWarning(msg.err.Error())
		default:
			m.layout.AddError(msg.err.Error())
		}
		return
	}

	m.result = &msg.result
	if !m.stats.Progress.State.Terminal() {
		m.stats.Progress.State = scroll.StateCompleted
	}
	m.layout.SetEntries(msg.result.Document.Transcript)
	m.layout.AddInfo(fmt.Sprintf("Saved %s", msg.result.Path))
	m.layout.AddInfo(capprogress.Summary(msg.result.Stats.Entries, msg.result.Stats.Speakers, msg.result.Stats.Duration))
}

func (m Model) View() string {
	help := "s/esc: stop capture • ↑/↓: scroll • 1-3: console filter • q: quit"
	if m.done {
		help = "q: quit • ↑/↓: scroll transcript"
	}
	return m.layout.View() + "\n" + helpStyle.Render(help)
}

// Result returns the export once finished successfully.
func (m Model) Result() (*controller.ExportResult, error) {
	return m.result, m.err
}

// Relay forwards driver progress to a running program. Progress arriving
// before Attach is dropped.
type Relay struct {
	mu      sync.Mutex
	program *tea.Program
}

// Attach sets the program that receives progress.
func (r *Relay) Attach(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Observe is a scroll.Observer.
func (r *Relay) Observe(p scroll.Progress) {
	r.mu.Lock()
	program := r.program
	r.mu.Unlock()
	if program != nil {
		program.Send(ProgressMsg(p))
	}
}
