package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	capprogress "github.com/go-scripts/teamscribe/internal/progress"
	"github.com/go-scripts/teamscribe/internal/scroll"
)

// CaptureStats is what the stats panel shows.
type CaptureStats struct {
	Progress  scroll.Progress
	Retries   int
	StartTime time.Time
	Stopping  bool
}

// StatsPanel shows the scroll position and capture counters.
type StatsPanel struct {
	stats      CaptureStats
	spinner    spinner.Model
	bar        progress.Model
	width      int
	height     int
	style      lipgloss.Style
	labelStyle lipgloss.Style
	valueStyle lipgloss.Style
	now        func() time.Time
}

func NewStatsPanel() *StatsPanel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	return &StatsPanel{
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient()),
		style:   borderStyle.BorderForeground(lipgloss.Color("99")),
		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Bold(true),
		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")),
		now: time.Now,
	}
}

func (s *StatsPanel) Init() tea.Cmd {
	return s.spinner.Tick
}

func (s *StatsPanel) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.bar.Width = max(10, width-8)
}

func (s *StatsPanel) Update(msg tea.Msg) (Component, tea.Cmd) {
	if s.stats.Progress.State.Terminal() {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

func (s *StatsPanel) View() string {
	p := s.stats.Progress

	state := string(p.State)
	if state == "" {
		state = "locating transcript"
	}
	if s.stats.Stopping && !p.State.Terminal() {
		state = "stopping"
	}

	lines := []struct {
		label string
		value string
	}{
		{"State", state},
		{"Rows captured", fmt.Sprintf("%d (+%d last step)", p.Captured, p.Added)},
		{"Step", fmt.Sprintf("%d", p.Step)},
		{"Offset", fmt.Sprintf("%.0f / %.0f px", p.Offset, p.MaxOffset)},
		{"Elapsed", s.elapsed()},
	}

	var content strings.Builder
	header := titleStyle.Render("Capture")
	if !p.State.Terminal() {
		header = s.spinner.View() + " " + header
	}
	content.WriteString(header + "\n\n")
	content.WriteString(s.bar.ViewAs(capprogress.Fraction(p)) + "\n\n")
	for _, l := range lines {
		content.WriteString(fmt.Sprintf("%-16s %s\n",
			s.labelStyle.Render(l.label+":"),
			s.valueStyle.Render(l.value),
		))
	}

	return s.style.Width(s.width).Height(s.height).Render(content.String())
}

// UpdateStats replaces the shown statistics.
func (s *StatsPanel) UpdateStats(stats CaptureStats) {
	s.stats = stats
}

func (s *StatsPanel) elapsed() string {
	if s.stats.StartTime.IsZero() {
		return "00:00:00"
	}
	d := s.now().Sub(s.stats.StartTime)
	return fmt.Sprintf("%02d:%02d:%02d",
		int(d.Hours()),
		int(d.Minutes())%60,
		int(d.Seconds())%60,
	)
}
