package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-scripts/teamscribe/pkg/transcript"
)

// EntriesTable shows the assembled transcript.
type EntriesTable struct {
	viewport     viewport.Model
	entries      []transcript.TranscriptEntry
	width        int
	height       int
	headerStyle  lipgloss.Style
	speakerStyle lipgloss.Style
	style        lipgloss.Style
}

func NewEntriesTable() *EntriesTable {
	return &EntriesTable{
		viewport: viewport.New(0, 0),
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		speakerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")),
		style: borderStyle.BorderForeground(lipgloss.Color("35")),
	}
}

func (t *EntriesTable) Init() tea.Cmd { return nil }

func (t *EntriesTable) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.viewport.Width = max(0, width-4)
	t.viewport.Height = max(0, height-4)
	t.render()
}

func (t *EntriesTable) Update(msg tea.Msg) (Component, tea.Cmd) {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

func (t *EntriesTable) View() string {
	if len(t.entries) == 0 {
		return t.style.Width(t.width).Height(t.height).Render(infoStyle.Render("No transcript yet"))
	}
	speakers := make(map[string]bool)
	for _, e := range t.entries {
		if e.Speaker != "" {
			speakers[e.Speaker] = true
		}
	}
	footer := fmt.Sprintf("Entries: %d | Speakers: %d", len(t.entries), len(speakers))
	return t.style.Width(t.width).Render(t.viewport.View() + "\n" + infoStyle.Render(footer))
}

// SetEntries replaces the shown transcript.
func (t *EntriesTable) SetEntries(entries []transcript.TranscriptEntry) {
	t.entries = entries
	t.render()
	t.viewport.GotoTop()
}

func (t *EntriesTable) render() {
	speakerWidth := min(28, max(10, t.width/4))
	textWidth := max(10, t.width-speakerWidth-16)

	var rows []string
	rows = append(rows, t.headerStyle.Render(fmt.Sprintf("%4s %-6s %-*s %s",
		"#", "Time", speakerWidth, "Speaker", "Text")))
	for _, e := range t.entries {
		speaker := e.Speaker
		if speaker == "" {
			speaker = "-"
		}
		rows = append(rows, fmt.Sprintf("%4d %-6s %s %s",
			e.Index,
			e.Timestamp,
			t.speakerStyle.Render(fmt.Sprintf("%-*s", speakerWidth, truncate(speaker, speakerWidth))),
			truncate(e.Text, textWidth),
		))
	}
	t.viewport.SetContent(strings.Join(rows, "\n"))
}
