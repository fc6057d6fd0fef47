// Package progress prints capture progress on a plain terminal.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/bubbles/progress"

	"github.com/go-scripts/teamscribe/internal/scroll"
)

// Reporter shows a spinner with the scroll position and the rows captured.
type Reporter struct {
	spinner *spinner.Spinner
	bar     progress.Model
	mu      sync.Mutex
	last    scroll.Progress
}

// New creates a Reporter writing to w.
func New(w io.Writer) *Reporter {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 24
	return &Reporter{
		spinner: spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w)),
		bar:     bar,
	}
}

// Start shows the spinner.
func (r *Reporter) Start() {
	r.spinner.Suffix = " locating transcript…"
	r.spinner.Start()
}

// Observe is a scroll.Observer.
func (r *Reporter) Observe(p scroll.Progress) {
	r.mu.Lock()
	r.last = p
	r.mu.Unlock()

	r.spinner.Lock()
	r.spinner.Suffix = " " + r.Line(p)
	r.spinner.Unlock()
}

// Line renders p as one status line.
func (r *Reporter) Line(p scroll.Progress) string {
	return fmt.Sprintf("%s %3.0f%%  %d rows  step %d",
		r.bar.ViewAs(Fraction(p)), Fraction(p)*100, p.Captured, p.Step)
}

// Stop hides the spinner.
func (r *Reporter) Stop() {
	r.spinner.Stop()
}

// Last returns the most recent progress seen.
func (r *Reporter) Last() scroll.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Fraction is how far down the list the offset is, in [0, 1].
func Fraction(p scroll.Progress) float64 {
	if p.MaxOffset <= 0 {
		if p.State == scroll.StateCompleted {
			return 1
		}
		return 0
	}
	f := p.Offset / p.MaxOffset
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// Summary is the one-line result shown after an export.
func Summary(entries, speakers int, duration string) string {
	if duration == "" {
		duration = "?"
	}
	return fmt.Sprintf("%d entries · %d speakers · duration %s", entries, speakers, duration)
}
