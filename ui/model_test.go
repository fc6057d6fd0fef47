package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/teamscribe/internal/controller"
	"github.com/go-scripts/teamscribe/internal/history"
	"github.com/go-scripts/teamscribe/internal/scroll"
	"github.com/go-scripts/teamscribe/pkg/transcript"
)

type fakeCapture struct {
	result controller.ExportResult
	err    error
	stops  int
}

func (f *fakeCapture) Export(context.Context, controller.ExportRequest) (controller.ExportResult, error) {
	return f.result, f.err
}

func (f *fakeCapture) Stop() bool {
	f.stops++
	return true
}

type fakeLog struct{ exports []history.Export }

func (f fakeLog) RecentExports(context.Context, int) ([]history.Export, error) {
	return f.exports, nil
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelFinishesWithResult(t *testing.T) {
	capture := &fakeCapture{result: controller.ExportResult{
		Path:  "/tmp/261017_ALFA_Transcripcion.json",
		Stats: controller.Stats{Entries: 1, Speakers: 1, Duration: "0:05"},
		Document: transcript.Document{Transcript: []transcript.TranscriptEntry{
			{Index: 1, Speaker: "Ana", Timestamp: "0:05", Text: "hola"},
		}},
	}}
	m := NewModel(context.Background(), capture, nil, controller.ExportRequest{})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m = update(t, m, ProgressMsg{Step: 1, Captured: 4, Added: 4, MaxOffset: 100, State: scroll.StateRunning})
	assert.Equal(t, 4, m.stats.Progress.Captured)

	m = update(t, m, m.run())
	res, err := m.Result()
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, m.done)
	assert.Contains(t, m.layout.console.Entries(LevelInfo), "Saved /tmp/261017_ALFA_Transcripcion.json")
	assert.Contains(t, m.layout.console.Entries(LevelInfo), "1 entries · 1 speakers · duration 0:05")
	assert.Len(t, m.layout.entries.entries, 1)
	assert.Contains(t, m.View(), "hola")

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelStopKey(t *testing.T) {
	capture := &fakeCapture{}
	m := NewModel(context.Background(), capture, nil, controller.ExportRequest{})

	m = update(t, m, key("s"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, 1, capture.stops, "stop is requested once")
	assert.True(t, m.stats.Stopping)
}

func TestModelQuitWhileRunningStopsFirst(t *testing.T) {
	capture := &fakeCapture{err: controller.ErrNoEntriesFound}
	m := NewModel(context.Background(), capture, nil, controller.ExportRequest{})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, m.quitting)
	assert.Equal(t, 1, capture.stops)

	next, cmd := m.Update(m.run())
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	_, err := m.Result()
	assert.ErrorIs(t, err, controller.ErrNoEntriesFound)
	assert.NotEmpty(t, m.layout.console.Entries(LevelWarning))
}

func TestModelReportsFailure(t *testing.T) {
	m := NewModel(context.Background(), &fakeCapture{err: errors.New("browser gone")}, nil, controller.ExportRequest{})

	m = update(t, m, m.run())

	assert.Equal(t, []string{"browser gone"}, m.layout.console.Entries(LevelError))
}

func TestModelLoadsExports(t *testing.T) {
	log := fakeLog{exports: []history.Export{
		{Filename: "a.json", ExportedAt: time.Now()},
		{Filename: "b.json", ExportedAt: time.Now()},
	}}
	m := NewModel(context.Background(), &fakeCapture{}, log, controller.ExportRequest{})

	m = update(t, m, m.loadExports())
	assert.Equal(t, 2, m.layout.exports.Len())

	none := NewModel(context.Background(), &fakeCapture{}, nil, controller.ExportRequest{})
	assert.Nil(t, none.loadExports())
}

func TestRelayDropsProgressBeforeAttach(t *testing.T) {
	var r Relay
	assert.NotPanics(t, func() { r.Observe(scroll.Progress{Step: 1}) })
}

func TestConsoleFilter(t *testing.T) {
	c := NewConsole()
	c.AddEntry(LevelInfo, "info")
	c.AddEntry(LevelWarning, "warn")
	c.AddEntry(LevelError, "err")

	assert.Equal(t, []string{"info", "warn", "err"}, c.Entries(LevelInfo))
	assert.Equal(t, []string{"warn", "err"}, c.Entries(LevelWarning))

	c.Update(key("3"))
	assert.Equal(t, LevelError, c.showLevel)
	assert.Contains(t, c.View(), "Errors: 1 | Warnings: 1")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hola", truncate("hola", 10))
	assert.Equal(t, "añoa...", truncate("añoaño año", 7))
}
