// Package capture runs transcript capture sessions against a page: it finds
// the scroll pane, drives the scroll loop and assembles the result, keeping
// at most one session alive per engine.
package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/teamscribe/internal/assemble"
	"github.com/go-scripts/teamscribe/internal/page"
	"github.com/go-scripts/teamscribe/internal/sampler"
	"github.com/go-scripts/teamscribe/internal/scroll"
	"github.com/go-scripts/teamscribe/pkg/transcript"
)

// Options configures an Engine. Zero values take defaults.
type Options struct {
	// Scroll defaults to scroll.AdaptiveConfig().
	Scroll *scroll.Config
	// LegacyHeaders parses header text with the tail parser.
	LegacyHeaders bool
	Logger        *log.Logger
	Clock         scroll.Clock
	// Observer receives the driver's progress for every session.
	Observer scroll.Observer
	// Now defaults to time.Now.
	Now func() time.Time
}

// Report is everything a finished session produced.
type Report struct {
	SessionID string
	Outcome   scroll.Outcome
	// Degraded is set when no scroll pane was found and only the visible rows
	// were captured.
	Degraded bool
	// Recycled counts node IDs seen again with different content.
	Recycled int
	Result   transcript.TranscriptResult
}

// Engine captures transcripts from one page.
type Engine struct {
	page   page.Page
	cfg    scroll.Config
	opts   Options
	logger *log.Logger

	mu      sync.Mutex
	current *Session
	last    *Session
}

// New creates an Engine for p.
func New(p page.Page, opts Options) (*Engine, error) {
	cfg := scroll.AdaptiveConfig()
	if opts.Scroll != nil {
		cfg = *opts.Scroll
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scroll config: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Clock == nil {
		opts.Clock = scroll.RealClock
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{page: p, cfg: cfg, opts: opts, logger: opts.Logger}, nil
}

// Extract runs a session and returns its transcript. A stopped session
// returns what was captured up to the stop.
func (e *Engine) Extract(ctx context.Context) (*transcript.TranscriptResult, error) {
	report, err := e.Run(ctx)
	if err != nil {
		return nil, err
	}
	return &report.Result, nil
}

// Run is Extract with the session details.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	s, err := e.begin()
	if err != nil {
		return Report{}, err
	}
	defer e.end(s)

	logger := e.logger.With("session", s.ID)
	logger.Info("capture started")
	s.setState(scroll.StateRunning)

	set := transcript.NewCapturedSet()
	smpOpts := []sampler.Option{sampler.WithLogger(logger)}
	if e.opts.LegacyHeaders {
		smpOpts = append(smpOpts, sampler.WithLegacyHeaders())
	}
	smp := sampler.New(e.page, smpOpts...)

	report := Report{SessionID: s.ID}

	region, err := e.page.LocateRegion(ctx)
	if err != nil {
		logger.Warn("locate scroll pane", "err", err)
		region = nil
	}

	if region == nil {
		logger.Warn("capturing visible rows only", "err", ErrNoContainerFound)
		s.mu.Lock()
		s.degraded = true
		s.mu.Unlock()
		report.Degraded = true

		if _, err := smp.Sample(ctx, set); err != nil {
			logger.Error("sample visible rows", "err", err)
		}
		report.Outcome = scroll.Outcome{
			State:    scroll.StateCompleted,
			Reason:   scroll.ReasonBottom,
			Steps:    1,
			Captured: set.Len(),
		}
	} else {
		driver, err := scroll.NewDriver(e.cfg, smp,
			scroll.WithClock(e.opts.Clock),
			scroll.WithLogger(logger),
			scroll.WithObserver(func(p scroll.Progress) {
				s.update(p)
				if e.opts.Observer != nil {
					e.opts.Observer(p)
				}
			}),
		)
		if err != nil {
			s.finish(scroll.StateFailed, 0)
			return Report{}, err
		}

		outcome, err := driver.Run(ctx, region, set, s.stop)
		report.Outcome = outcome
		if err != nil {
			s.finish(scroll.StateFailed, set.Len())
			logger.Error("capture failed", "err", err, "captured", set.Len())
			return Report{}, fmt.Errorf("capture transcript: %w", err)
		}
	}
	s.finish(report.Outcome.State, set.Len())

	// Page metadata is read even after a cancelled context so a stopped
	// session still has its source and title.
	info, err := e.page.Info(context.WithoutCancel(ctx))
	if err != nil {
		logger.Warn("read page info", "err", err)
	}

	report.Recycled = smp.Recycled()
	report.Result = assemble.Assemble(set, info)

	logger.Info("capture finished",
		"state", report.Outcome.State,
		"reason", report.Outcome.Reason,
		"steps", report.Outcome.Steps,
		"items", set.Len(),
		"entries", len(report.Result.Entries),
		"speakers", len(report.Result.Speakers),
		"recycled", report.Recycled,
	)
	return report, nil
}

// Stop asks the running session to stop. It reports whether one was running.
func (e *Engine) Stop() bool {
	e.mu.Lock()
	s := e.current
	e.mu.Unlock()

	if s == nil {
		return false
	}
	s.Stop()
	return true
}

// Status describes the running session, or the last one when idle.
func (e *Engine) Status() Status {
	e.mu.Lock()
	current, last := e.current, e.last
	e.mu.Unlock()

	switch {
	case current != nil:
		return current.status(true)
	case last != nil:
		return last.status(false)
	}
	return Status{State: scroll.StateIdle}
}

func (e *Engine) begin() (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current != nil {
		return nil, ErrAlreadyInProgress
	}
	e.current = newSession(e.opts.Now())
	return e.current, nil
}

func (e *Engine) end(s *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == s {
		e.current = nil
	}
	e.last = s
}
