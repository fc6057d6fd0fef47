package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LogLevel is the severity of a console message.
type LogLevel int

const (
	LevelInfo LogLevel = iota
	LevelWarning
	LevelError
)

// LogEntry is one console message.
type LogEntry struct {
	timestamp time.Time
	level     LogLevel
	message   string
}

// Console lists session messages, filterable by level.
type Console struct {
	viewport  viewport.Model
	entries   []LogEntry
	width     int
	height    int
	style     lipgloss.Style
	showLevel LogLevel
	now       func() time.Time
}

var (
	errorLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	infoLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")).
			Italic(true)
)

func NewConsole() *Console {
	return &Console{
		viewport:  viewport.New(0, 0),
		style:     borderStyle.BorderForeground(lipgloss.Color("196")),
		showLevel: LevelInfo,
		now:       time.Now,
	}
}

func (c *Console) Init() tea.Cmd { return nil }

func (c *Console) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.viewport.Width = max(0, width-4)
	c.viewport.Height = max(0, height-5)
	c.updateContent()
}

// AddEntry appends a message.
func (c *Console) AddEntry(level LogLevel, msg string) {
	c.entries = append(c.entries, LogEntry{timestamp: c.now(), level: level, message: msg})
	c.updateContent()
}

func (c *Console) Update(msg tea.Msg) (Component, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "1":
			c.showLevel = LevelInfo
			c.updateContent()
		case "2":
			c.showLevel = LevelWarning
			c.updateContent()
		case "3":
			c.showLevel = LevelError
			c.updateContent()
		}
	}
	var cmd tea.Cmd
	c.viewport, cmd = c.viewport.Update(msg)
	return c, cmd
}

func (c *Console) View() string {
	filter := fmt.Sprintf("Filter: %s (1:Info 2:Warn 3:Error)", levelString(c.showLevel))
	counts := fmt.Sprintf("Total: %d | Errors: %d | Warnings: %d",
		len(c.entries), c.count(LevelError), c.count(LevelWarning))

	return c.style.Width(c.width).Render(
		c.viewport.View() + "\n" +
			infoStyle.Render(filter) + "\n" +
			infoStyle.Render(counts),
	)
}

// Entries returns the messages at or above level.
func (c *Console) Entries(level LogLevel) []string {
	var out []string
	for _, e := range c.entries {
		if e.level >= level {
			out = append(out, e.message)
		}
	}
	return out
}

func (c *Console) updateContent() {
	var sb strings.Builder
	for _, e := range c.entries {
		if e.level < c.showLevel {
			continue
		}
		style := infoLogStyle
		switch e.level {
		case LevelError:
			style = errorLogStyle
		case LevelWarning:
			style = warningLogStyle
		}
		sb.WriteString(fmt.Sprintf("%s [%s] %s\n",
			timestampStyle.Render(e.timestamp.Format("15:04:05")),
			style.Render(levelString(e.level)),
			e.message,
		))
	}

	atBottom := c.viewport.AtBottom()
	c.viewport.SetContent(sb.String())
	if atBottom {
		c.viewport.GotoBottom()
	}
}

func levelString(level LogLevel) string {
	switch level {
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARN"
	default:
		return "INFO"
	}
}

func (c *Console) count(level LogLevel) int {
	n := 0
	for _, e := range c.entries {
		if e.level == level {
			n++
		}
	}
	return n
}
