package capture

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/teamscribe/internal/page/pagetest"
	"github.com/go-scripts/teamscribe/internal/scroll"
	"github.com/go-scripts/teamscribe/pkg/transcript"
)

type instantClock struct{}

func (instantClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func newEngine(t *testing.T, list *pagetest.VirtualList, opts Options) *Engine {
	t.Helper()
	opts.Logger = log.New(io.Discard)
	opts.Clock = instantClock{}
	e, err := New(list, opts)
	require.NoError(t, err)
	return e
}

func entryTexts(entries []transcript.TranscriptEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out
}

func TestExtractWholeTranscript(t *testing.T) {
	list := pagetest.NewVirtualList(pagetest.Rows(40))
	e := newEngine(t, list, Options{})

	result, err := e.Extract(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Entries, 20)
	assert.Equal(t, "line 0 line 1", result.Entries[0].Text)
	assert.Equal(t, "Ana Gómez | Contoso", result.Entries[0].Speaker)
	assert.Equal(t, "0:00", result.Entries[0].Timestamp)
	assert.Equal(t, "line 38 line 39", result.Entries[19].Text)
	assert.Equal(t, 20, result.Entries[19].Index)
	assert.ElementsMatch(t, []string{"Ana Gómez | Contoso", "Luis Pérez"}, result.Speakers)
	assert.Equal(t, "0:38", result.Duration)
	assert.Equal(t, "https://contoso.sharepoint.com/sites/team/stream.aspx", result.Source)
	assert.Equal(t, "Weekly sync", result.Title)

	status := e.Status()
	assert.False(t, status.Active)
	assert.Equal(t, scroll.StateCompleted, status.State)
	assert.Equal(t, 40, status.Captured)
	assert.NotEmpty(t, status.SessionID)
}

func TestExtractRejectsConcurrentStart(t *testing.T) {
	list := pagetest.NewVirtualList(pagetest.Rows(40))
	e := newEngine(t, list, Options{})

	var (
		nestedErr    error
		nestedStatus Status
	)
	list.OnRender = func(call int) {
		if call == 2 {
			nestedStatus = e.Status()
			_, nestedErr = e.Extract(context.Background())
		}
	}

	result, err := e.Extract(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, nestedErr, ErrAlreadyInProgress)
	assert.True(t, nestedStatus.Active)
	assert.Equal(t, scroll.StateRunning, nestedStatus.State)
	assert.Len(t, result.Entries, 20, "rejected start must not disturb the running session")
}

func TestStopReturnsPartialResult(t *testing.T) {
	list := pagetest.NewVirtualList(pagetest.Rows(40))
	e := newEngine(t, list, Options{})

	assert.False(t, e.Stop(), "nothing to stop while idle")

	var stopped bool
	list.OnRender = func(call int) {
		if call == 3 {
			stopped = e.Stop()
			e.Stop()
		}
	}

	report, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, stopped)
	assert.Equal(t, scroll.StateStoppedByUser, report.Outcome.State)
	assert.NotEmpty(t, report.Result.Entries)
	assert.Less(t, len(report.Result.Entries), 20)
	assert.Equal(t, "line 0 line 1", report.Result.Entries[0].Text)
	assert.Equal(t, "https://contoso.sharepoint.com/sites/team/stream.aspx", report.Result.Source)
	assert.Equal(t, scroll.StateStoppedByUser, e.Status().State)
}

func TestStopIsPerSession(t *testing.T) {
	list := pagetest.NewVirtualList(pagetest.Rows(40))
	e := newEngine(t, list, Options{})

	list.OnRender = func(call int) {
		if call == 2 {
			e.Stop()
		}
	}
	first, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, scroll.StateStoppedByUser, first.Outcome.State)

	list.OnRender = nil
	require.NoError(t, list.SetOffset(context.Background(), 0))
	second, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, scroll.StateCompleted, second.Outcome.State)
	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.Len(t, second.Result.Entries, 20)
}

func TestExtractDegradesWithoutRegion(t *testing.T) {
	list := pagetest.NewVirtualList(pagetest.Rows(40))
	list.NoRegion = true
	e := newEngine(t, list, Options{})

	report, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Degraded)
	assert.True(t, e.Status().Degraded)
	assert.Equal(t, 1, list.RenderCalls())
	assert.Empty(t, list.Offsets())
	assert.Equal(t, []string{"line 0 line 1", "line 2 line 3"}, entryTexts(report.Result.Entries))
}

func TestExtractEmptyPage(t *testing.T) {
	list := pagetest.NewVirtualList(nil)
	e := newEngine(t, list, Options{})

	result, err := e.Extract(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, result.Entries)
	assert.Empty(t, result.Entries)
	assert.Empty(t, result.Speakers)
}

func TestExtractReturnsDriverFailure(t *testing.T) {
	list := pagetest.NewVirtualList(pagetest.Rows(40))
	list.FailMetricsAfter = 1
	e := newEngine(t, list, Options{})

	result, err := e.Extract(context.Background())

	assert.ErrorIs(t, err, pagetest.ErrMetrics)
	assert.Nil(t, result)
	assert.Equal(t, scroll.StateFailed, e.Status().State)

	list.FailMetricsAfter = 0
	_, err = e.Extract(context.Background())
	assert.NotErrorIs(t, err, ErrAlreadyInProgress, "a failed session must release the engine")
}

func TestExtractUsesConfiguredPolicy(t *testing.T) {
	list := pagetest.NewVirtualList(pagetest.Rows(40))
	cfg := scroll.StepConfig()
	cfg.StepSize = 200
	var steps []int
	e := newEngine(t, list, Options{
		Scroll:   &cfg,
		Observer: func(p scroll.Progress) { steps = append(steps, p.Step) },
	})

	report, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.Result.Entries, 20)
	assert.Contains(t, list.Offsets(), 200.0)
	assert.NotEmpty(t, steps)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := scroll.StepConfig()
	cfg.StepSize = 0
	_, err := New(pagetest.NewVirtualList(nil), Options{Scroll: &cfg})
	assert.Error(t, err)
}

func TestRunCountsRecycledNodes(t *testing.T) {
	list := pagetest.NewVirtualList(pagetest.Rows(12))
	list.Recycle = 4
	e := newEngine(t, list, Options{})

	report, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Outcome.Captured)
	assert.Positive(t, report.Recycled)
	assert.Equal(t, scroll.StateCompleted, report.Outcome.State)
}
