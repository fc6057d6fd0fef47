package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-scripts/teamscribe/internal/history"
)

// ExportItem is a past export in the list.
type ExportItem struct {
	export history.Export
}

// FilterValue implements list.Item.
func (i ExportItem) FilterValue() string { return i.export.Filename }

// Title returns the file name.
func (i ExportItem) Title() string { return i.export.Filename }

// Description summarizes the export.
func (i ExportItem) Description() string {
	return fmt.Sprintf("%s | %d entries | %d speakers",
		i.export.ExportedAt.Local().Format("2006-01-02 15:04"), i.export.Entries, i.export.Speakers)
}

// ExportsList shows recent exports.
type ExportsList struct {
	list   list.Model
	style  lipgloss.Style
	width  int
	height int
}

func NewExportsList() *ExportsList {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("205")).
		BorderForeground(lipgloss.Color("205"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Recent exports"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle

	return &ExportsList{
		list:  l,
		style: borderStyle.BorderForeground(lipgloss.Color("99")),
	}
}

func (e *ExportsList) Init() tea.Cmd { return nil }

func (e *ExportsList) SetSize(width, height int) {
	e.width = width
	e.height = height
	e.list.SetSize(max(0, width-4), max(0, height-2))
}

func (e *ExportsList) Update(msg tea.Msg) (Component, tea.Cmd) {
	var cmd tea.Cmd
	e.list, cmd = e.list.Update(msg)
	return e, cmd
}

func (e *ExportsList) View() string {
	return e.style.Width(e.width).Height(e.height).Render(e.list.View())
}

// SetExports replaces the listed exports, newest first.
func (e *ExportsList) SetExports(exports []history.Export) tea.Cmd {
	items := make([]list.Item, len(exports))
	for i, x := range exports {
		items[i] = ExportItem{export: x}
	}
	return e.list.SetItems(items)
}

// Len returns the number of listed exports.
func (e *ExportsList) Len() int {
	return len(e.list.Items())
}
