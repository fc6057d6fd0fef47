package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-scripts/teamscribe/internal/page"
	"github.com/go-scripts/teamscribe/pkg/transcript"
)

func setOf(items ...transcript.CapturedItem) *transcript.CapturedSet {
	set := transcript.NewCapturedSet()
	for _, item := range items {
		set.Add(item)
	}
	return set
}

func TestAssembleMergesTurns(t *testing.T) {
	set := setOf(
		transcript.CapturedItem{ID: "1", Speaker: "A", Timestamp: "1:00", Text: "hi"},
		transcript.CapturedItem{ID: "2", Text: "there"},
		transcript.CapturedItem{ID: "3", Speaker: "B", Timestamp: "1:05", Text: "hello"},
	)

	got := Assemble(set, page.Info{URL: "https://contoso.sharepoint.com/v", Title: "Sync"})

	assert.Equal(t, []transcript.TranscriptEntry{
		{Index: 1, Speaker: "A", Timestamp: "1:00", Text: "hi there"},
		{Index: 2, Speaker: "B", Timestamp: "1:05", Text: "hello"},
	}, got.Entries)
	assert.ElementsMatch(t, []string{"A", "B"}, got.Speakers)
	assert.Equal(t, "1:05", got.Duration)
	assert.Equal(t, "https://contoso.sharepoint.com/v", got.Source)
	assert.Equal(t, "Sync", got.Title)
	assert.Empty(t, got.MeetingDate)
}

func TestAssembleEdgeCases(t *testing.T) {
	t.Run("text before any speaker", func(t *testing.T) {
		got := Assemble(setOf(
			transcript.CapturedItem{ID: "1", Text: "orphan"},
			transcript.CapturedItem{ID: "2", Speaker: "A", Timestamp: "0:10"},
			transcript.CapturedItem{ID: "3", Text: "said"},
		), page.Info{})
		assert.Equal(t, []transcript.TranscriptEntry{
			{Index: 1, Text: "orphan"},
			{Index: 2, Speaker: "A", Timestamp: "0:10", Text: "said"},
		}, got.Entries)
	})

	t.Run("speaker without text emits nothing", func(t *testing.T) {
		got := Assemble(setOf(
			transcript.CapturedItem{ID: "1", Speaker: "A", Timestamp: "0:10"},
			transcript.CapturedItem{ID: "2", Speaker: "B", Timestamp: "0:20", Text: "yo"},
		), page.Info{})
		assert.Equal(t, []transcript.TranscriptEntry{
			{Index: 1, Speaker: "B", Timestamp: "0:20", Text: "yo"},
		}, got.Entries)
		assert.Equal(t, []string{"A", "B"}, got.Speakers)
	})

	t.Run("same speaker twice opens two turns", func(t *testing.T) {
		got := Assemble(setOf(
			transcript.CapturedItem{ID: "1", Speaker: "A", Timestamp: "0:10", Text: "one"},
			transcript.CapturedItem{ID: "2", Speaker: "A", Timestamp: "0:40", Text: "two"},
		), page.Info{})
		assert.Len(t, got.Entries, 2)
		assert.Equal(t, []string{"A"}, got.Speakers)
	})

	t.Run("duration ignores turns without timestamp", func(t *testing.T) {
		got := Assemble(setOf(
			transcript.CapturedItem{ID: "1", Speaker: "A", Timestamp: "0:10", Text: "one"},
			transcript.CapturedItem{ID: "2", Speaker: "B", Text: "two"},
		), page.Info{})
		assert.Equal(t, "0:10", got.Duration)
	})

	t.Run("empty set", func(t *testing.T) {
		got := Assemble(transcript.NewCapturedSet(), page.Info{})
		assert.NotNil(t, got.Entries)
		assert.Empty(t, got.Entries)
		assert.Empty(t, got.Duration)
	})
}

func TestMeetingDate(t *testing.T) {
	tests := map[string]string{
		"Reunión del equipo · 17 de octubre de 2026 · 45 min": "17 de octubre de 2026",
		"Grabado el 3 de Marzo de 2025":                       "3 de Marzo de 2025",
		"Recorded October 17, 2026":                           "October 17, 2026",
		"Recorded 17 October 2026":                            "17 October 2026",
		"Sin fecha":                                           "",
		"":                                                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, MeetingDate(in), in)
	}
}
