package writer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/teamscribe/pkg/transcript"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Proyecto Alfa", "PROYECTO_ALFA"},
		{"  año   fiscal\t2026 ", "AÑO_FISCAL_2026"},
		{"Q3/Q4: plan*final?", "Q3Q4_PLANFINAL"},
		{"equipo-núcleo_v2", "EQUIPO-NÚCLEO_V2"},
		{"日本語", DefaultLabel},
		{"", DefaultLabel},
		{"   ", DefaultLabel},
		{"__a__b__", "A_B"},
		{strings.Repeat("é", 70), strings.Repeat("É", 60)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), tt.in)
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Proyecto Alfa", Label("  Proyecto Alfa ", "Anything"))
	assert.Equal(t, "Weekly sync", Label("", "Weekly sync - Microsoft Stream"))
	assert.Equal(t, "Kickoff", Label("", "Kickoff.mp4"))
	assert.Equal(t, "Planificación", Label("", "Transcripción: Planificación | Microsoft Teams"))
	assert.Empty(t, Label("", "Recording - SharePoint"))
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, time.October, 17, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, "261017_PROYECTO_ALFA_Transcripcion.json", Filename("Proyecto Alfa", now))
	assert.Equal(t, "261017_PROYECTO_Transcripcion.json", Filename(Label("", "Meeting Recording"), now))
}

func TestWriteDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, w.Dir())

	result := transcript.TranscriptResult{
		Entries:  []transcript.TranscriptEntry{{Index: 1, Speaker: "A", Timestamp: "0:01", Text: "hola"}},
		Speakers: []string{"A"},
		Duration: "0:01",
		Source:   "https://contoso.sharepoint.com/x",
		Title:    "Sync",
	}
	doc := transcript.NewDocument(result, "Alfa", time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC))

	path, err := w.WriteDocument(doc, "261017_ALFA_Transcripcion.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "261017_ALFA_Transcripcion.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got struct {
		Metadata struct {
			ProjectName  string  `json:"projectName"`
			TotalEntries int     `json:"totalEntries"`
			MeetingDate  *string `json:"meetingDate"`
		} `json:"metadata"`
		Transcript []map[string]any `json:"transcript"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Alfa", got.Metadata.ProjectName)
	assert.Equal(t, 1, got.Metadata.TotalEntries)
	assert.Nil(t, got.Metadata.MeetingDate)
	require.Len(t, got.Transcript, 1)
	assert.Equal(t, "hola", got.Transcript[0]["text"])
}
