package scroll

import (
	"context"
	"time"
)

// Clock provides the waits between scroll steps.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock waits in wall time.
var RealClock Clock = realClock{}

// wait blocks for d, returning early when stop is closed or ctx is done.
func wait(ctx context.Context, clock Clock, d time.Duration, stop <-chan struct{}) {
	if d <= 0 {
		return
	}
	select {
	case <-clock.After(d):
	case <-stop:
	case <-ctx.Done():
	}
}
