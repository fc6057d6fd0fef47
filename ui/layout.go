package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-scripts/teamscribe/internal/history"
	"github.com/go-scripts/teamscribe/pkg/transcript"
)

// Layout arranges the panels: capture stats and recent exports on top, the
// transcript in the middle, the console at the bottom.
type Layout struct {
	stats   *StatsPanel
	exports *ExportsList
	entries *EntriesTable
	console *Console
	width   int
	height  int
}

func NewLayout() *Layout {
	return &Layout{
		stats:   NewStatsPanel(),
		exports: NewExportsList(),
		entries: NewEntriesTable(),
		console: NewConsole(),
	}
}

// SetSize splits the screen between the panels.
func (l *Layout) SetSize(width, height int) {
	l.width = width
	l.height = height

	halfWidth := width / 2
	topHeight := max(12, height*2/5)
	consoleHeight := max(7, height/5)
	entriesHeight := max(5, height-topHeight-consoleHeight-1)

	l.stats.SetSize(halfWidth, topHeight)
	l.exports.SetSize(width-halfWidth, topHeight)
	l.entries.SetSize(width, entriesHeight)
	l.console.SetSize(width, consoleHeight)
}

func (l *Layout) Init() tea.Cmd {
	return tea.Batch(
		l.stats.Init(),
		l.exports.Init(),
		l.entries.Init(),
		l.console.Init(),
	)
}

// Update forwards msg to every panel.
func (l *Layout) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		l.SetSize(msg.Width, msg.Height)
	}

	var cmds []tea.Cmd
	for _, c := range []Component{l.stats, l.exports, l.entries, l.console} {
		_, cmd := c.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (l *Layout) View() string {
	top := lipgloss.JoinHorizontal(lipgloss.Top, l.stats.View(), l.exports.View())
	return lipgloss.JoinVertical(lipgloss.Left, top, l.entries.View(), l.console.View())
}

func (l *Layout) UpdateStats(stats CaptureStats) { l.stats.UpdateStats(stats) }

func (l *Layout) SetEntries(entries []transcript.TranscriptEntry) { l.entries.SetEntries(entries) }

func (l *Layout) SetExports(exports []history.Export) tea.Cmd { return l.exports.SetExports(exports) }

func (l *Layout) AddInfo(msg string) { l.console.AddEntry(LevelInfo, msg) }

func (l *Layout) AddWarning(msg string) { l.console.AddEntry(LevelWarning, msg) }

func (l *Layout) AddError(msg string) { l.console.AddEntry(LevelError, msg) }
