// Package scroll drives a virtualized list from top to bottom, sampling the
// rendered rows after every step until the list is exhausted, the user stops
// it, or the step budget runs out.
package scroll

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/teamscribe/internal/page"
	"github.com/go-scripts/teamscribe/pkg/transcript"
)

// State is the driver's lifecycle state.
type State string

const (
	StateIdle          State = "idle"
	StateRunning       State = "running"
	StateStoppedByUser State = "stopped_by_user"
	StateCompleted     State = "completed"
	StateFailed        State = "failed"
)

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == StateStoppedByUser || s == StateCompleted || s == StateFailed
}

// Reason says why a run completed.
type Reason string

const (
	ReasonBottom   Reason = "bottom"
	ReasonStuck    Reason = "stuck"
	ReasonMaxSteps Reason = "max_steps"
	ReasonStopped  Reason = "stopped"
	ReasonError    Reason = "error"
)

// Sampler adds the currently rendered rows to a set.
type Sampler interface {
	Sample(ctx context.Context, set *transcript.CapturedSet) (int, error)
}

// Progress is reported after every iteration.
type Progress struct {
	Step      int
	Captured  int
	Added     int
	Offset    float64
	MaxOffset float64
	State     State
}

// Observer receives progress updates. It runs on the driver's goroutine.
type Observer func(Progress)

// Outcome summarizes a finished run.
type Outcome struct {
	State       State
	Reason      Reason
	Steps       int
	Captured    int
	Retries     int
	Regressions int
}

// Driver runs the scroll-and-sample loop.
type Driver struct {
	cfg      Config
	sampler  Sampler
	clock    Clock
	logger   *log.Logger
	observer Observer
}

// Option configures a Driver.
type Option func(*Driver)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(d *Driver) { d.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithObserver registers a progress observer.
func WithObserver(o Observer) Option {
	return func(d *Driver) { d.observer = o }
}

// NewDriver creates a Driver.
func NewDriver(cfg Config, sampler Sampler, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scroll config: %w", err)
	}
	d := &Driver{
		cfg:     cfg,
		sampler: sampler,
		clock:   RealClock,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// run holds the mutable state of one Run call.
type run struct {
	outcome     Outcome
	last        page.Metrics
	lastOffset  float64
	stuck       int
	highWater   float64
	emptyStreak int
}

// Run scrolls region from the top, sampling into set, until a terminal state
// is reached. Closing stop requests a cooperative stop: it is checked before
// every iteration and never interrupts a sample. The set keeps whatever was
// captured whatever the outcome; an error is returned only for StateFailed.
func (d *Driver) Run(ctx context.Context, region page.ScrollableRegion, set *transcript.CapturedSet, stop <-chan struct{}) (Outcome, error) {
	r := &run{lastOffset: -1}
	r.outcome.State = StateRunning

	if err := region.SetOffset(ctx, 0); err != nil {
		return d.fail(r, set, fmt.Errorf("scroll to top: %w", err))
	}
	wait(ctx, d.clock, d.cfg.SettleDelay, stop)

	for {
		if stopped(ctx, stop) {
			d.logger.Info("capture stopped by user", "steps", r.outcome.Steps, "captured", set.Len())
			return d.finish(r, set, StateStoppedByUser, ReasonStopped), nil
		}
		if r.outcome.Steps >= d.cfg.MaxSteps {
			d.logger.Warn("step budget exhausted", "max_steps", d.cfg.MaxSteps, "captured", set.Len())
			return d.finish(r, set, StateCompleted, ReasonMaxSteps), nil
		}
		r.outcome.Steps++

		added := d.sample(ctx, set)
		if d.shouldRetry(r, added) {
			r.outcome.Retries++
			d.logger.Debug("nothing new rendered, retrying position", "step", r.outcome.Steps, "streak", r.emptyStreak)
			d.report(r, set, added, r.last)
			wait(ctx, d.clock, d.cfg.RetryDelay, stop)
			continue
		}

		m, err := region.Metrics(ctx)
		if err != nil {
			return d.fail(r, set, fmt.Errorf("read scroll metrics: %w", err))
		}

		if math.Abs(m.Offset-r.lastOffset) < d.cfg.StuckEpsilon {
			r.stuck++
		} else {
			r.stuck = 0
		}
		r.lastOffset = m.Offset

		if d.cfg.Adaptive {
			restored, err := d.ratchet(ctx, r, region, &m)
			if err != nil {
				return d.fail(r, set, err)
			}
			if restored {
				r.outcome.Regressions++
			}
		}
		r.last = m
		d.report(r, set, added, m)

		if r.stuck >= d.cfg.StuckThreshold {
			d.logger.Debug("scroll offset stopped advancing", "offset", m.Offset, "steps", r.outcome.Steps)
			return d.finish(r, set, StateCompleted, ReasonStuck), nil
		}

		if m.AtBottom(d.cfg.BottomTolerance) {
			d.sample(ctx, set)
			d.logger.Debug("reached bottom of list", "offset", m.Offset, "max_offset", m.MaxOffset)
			return d.finish(r, set, StateCompleted, ReasonBottom), nil
		}

		if err := region.SetOffset(ctx, m.Offset+d.cfg.StepSize); err != nil {
			return d.fail(r, set, fmt.Errorf("advance scroll: %w", err))
		}
		wait(ctx, d.clock, d.cfg.StepDelay, stop)
	}
}

func (d *Driver) sample(ctx context.Context, set *transcript.CapturedSet) int {
	added, err := d.sampler.Sample(ctx, set)
	if err != nil {
		d.logger.Warn("sample failed", "err", err)
		return 0
	}
	return added
}

// shouldRetry decides whether an empty sample re-samples the same position.
// The first iteration never retries, and at most EmptyRetries consecutive
// empty iterations do.
func (d *Driver) shouldRetry(r *run, added int) bool {
	if !d.cfg.Adaptive {
		return false
	}
	if added > 0 {
		r.emptyStreak = 0
		return false
	}
	if r.outcome.Steps == 1 {
		return false
	}
	r.emptyStreak++
	return r.emptyStreak <= d.cfg.EmptyRetries
}

// ratchet restores the furthest confirmed offset when the page has reset the
// scroll position behind it.
func (d *Driver) ratchet(ctx context.Context, r *run, region page.ScrollableRegion, m *page.Metrics) (bool, error) {
	if m.Offset >= r.highWater-d.cfg.StuckEpsilon {
		r.highWater = math.Max(r.highWater, m.Offset)
		return false, nil
	}

	d.logger.Warn("scroll position regressed, restoring", "offset", m.Offset, "restore_to", r.highWater)
	if err := region.SetOffset(ctx, r.highWater); err != nil {
		return false, fmt.Errorf("restore scroll offset: %w", err)
	}
	m.Offset = r.highWater
	r.lastOffset = r.highWater
	r.stuck = 0
	return true, nil
}

func (d *Driver) report(r *run, set *transcript.CapturedSet, added int, m page.Metrics) {
	if d.observer == nil {
		return
	}
	d.observer(Progress{
		Step:      r.outcome.Steps,
		Captured:  set.Len(),
		Added:     added,
		Offset:    m.Offset,
		MaxOffset: m.MaxOffset,
		State:     r.outcome.State,
	})
}

func (d *Driver) finish(r *run, set *transcript.CapturedSet, state State, reason Reason) Outcome {
	r.outcome.State = state
	r.outcome.Reason = reason
	r.outcome.Captured = set.Len()
	if d.observer != nil {
		d.observer(Progress{
			Step:      r.outcome.Steps,
			Captured:  set.Len(),
			Offset:    r.last.Offset,
			MaxOffset: r.last.MaxOffset,
			State:     state,
		})
	}
	return r.outcome
}

func (d *Driver) fail(r *run, set *transcript.CapturedSet, err error) (Outcome, error) {
	d.logger.Error("capture failed", "err", err, "captured", set.Len())
	return d.finish(r, set, StateFailed, ReasonError), err
}

func stopped(ctx context.Context, stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
