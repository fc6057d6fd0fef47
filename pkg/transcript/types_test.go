package transcript

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptEntryRendersMissingFieldsAsNull(t *testing.T) {
	data, err := json.Marshal(TranscriptEntry{Index: 1, Text: "hola"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"index":1,"timestamp":null,"speaker":null,"text":"hola"}`, string(data))

	var back TranscriptEntry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, TranscriptEntry{Index: 1, Text: "hola"}, back)
}

func TestEmptyResultKeepsArrays(t *testing.T) {
	data, err := json.Marshal(TranscriptResult{Source: "https://x.sharepoint.com/a", Title: "T"})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"entries": [],
		"speakers": [],
		"duration": null,
		"source": "https://x.sharepoint.com/a",
		"title": "T",
		"meetingDate": null
	}`, string(data))
}

func TestNewDocument(t *testing.T) {
	result := TranscriptResult{
		Entries: []TranscriptEntry{
			{Index: 1, Speaker: "A", Timestamp: "1:00", Text: "hi there"},
			{Index: 2, Speaker: "B", Timestamp: "1:05", Text: "hello"},
		},
		Speakers:    []string{"A", "B"},
		Duration:    "1:05",
		Source:      "https://contoso.sharepoint.com/video",
		Title:       "Weekly sync",
		MeetingDate: "17 de octubre de 2026",
	}
	exported := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

	doc := NewDocument(result, "ACME", exported)
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"metadata": {
			"projectName": "ACME",
			"exportDate": "2026-10-17T09:30:00.000Z",
			"source": "https://contoso.sharepoint.com/video",
			"title": "Weekly sync",
			"meetingDate": "17 de octubre de 2026",
			"totalEntries": 2,
			"speakers": ["A", "B"],
			"duration": "1:05"
		},
		"transcript": [
			{"index": 1, "timestamp": "1:00", "speaker": "A", "text": "hi there"},
			{"index": 2, "timestamp": "1:05", "speaker": "B", "text": "hello"}
		]
	}`, string(data))
}
