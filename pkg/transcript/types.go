// Package transcript holds the data captured from a meeting transcript view
// and the document it is exported as.
package transcript

import (
	"encoding/json"
	"time"
)

// CapturedItem is one transcript list node as first observed on the page.
// Empty Speaker, Timestamp or Text means the node did not carry that field.
type CapturedItem struct {
	ID             string `json:"id"`
	Speaker        string `json:"speaker,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
	Text           string `json:"text,omitempty"`
	InsertionIndex int    `json:"insertionIndex"`
}

// TranscriptEntry is one contiguous speaker turn.
type TranscriptEntry struct {
	Index     int    `json:"index"`
	Timestamp string `json:"timestamp"`
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
}

// MarshalJSON renders a missing timestamp or speaker as null.
func (e TranscriptEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Index     int     `json:"index"`
		Timestamp *string `json:"timestamp"`
		Speaker   *string `json:"speaker"`
		Text      string  `json:"text"`
	}{
		Index:     e.Index,
		Timestamp: nullable(e.Timestamp),
		Speaker:   nullable(e.Speaker),
		Text:      e.Text,
	})
}

// UnmarshalJSON accepts null for the optional fields.
func (e *TranscriptEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Index     int     `json:"index"`
		Timestamp *string `json:"timestamp"`
		Speaker   *string `json:"speaker"`
		Text      string  `json:"text"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = TranscriptEntry{Index: raw.Index, Text: raw.Text}
	if raw.Timestamp != nil {
		e.Timestamp = *raw.Timestamp
	}
	if raw.Speaker != nil {
		e.Speaker = *raw.Speaker
	}
	return nil
}

// TranscriptResult is the outcome of one capture session.
type TranscriptResult struct {
	Entries     []TranscriptEntry `json:"entries"`
	Speakers    []string          `json:"speakers"`
	Duration    string            `json:"duration"`
	Source      string            `json:"source"`
	Title       string            `json:"title"`
	MeetingDate string            `json:"meetingDate"`
}

// MarshalJSON keeps entries and speakers as arrays and renders a missing
// duration or meeting date as null.
func (r TranscriptResult) MarshalJSON() ([]byte, error) {
	entries := r.Entries
	if entries == nil {
		entries = []TranscriptEntry{}
	}
	speakers := r.Speakers
	if speakers == nil {
		speakers = []string{}
	}
	return json.Marshal(struct {
		Entries     []TranscriptEntry `json:"entries"`
		Speakers    []string          `json:"speakers"`
		Duration    *string           `json:"duration"`
		Source      string            `json:"source"`
		Title       string            `json:"title"`
		MeetingDate *string           `json:"meetingDate"`
	}{
		Entries:     entries,
		Speakers:    speakers,
		Duration:    nullable(r.Duration),
		Source:      r.Source,
		Title:       r.Title,
		MeetingDate: nullable(r.MeetingDate),
	})
}

// Metadata describes an exported document.
type Metadata struct {
	ProjectName  string    `json:"projectName,omitempty"`
	ExportDate   time.Time `json:"exportDate"`
	Source       string    `json:"source"`
	Title        string    `json:"title"`
	MeetingDate  string    `json:"meetingDate"`
	TotalEntries int       `json:"totalEntries"`
	Speakers     []string  `json:"speakers"`
	Duration     string    `json:"duration"`
}

// MarshalJSON renders the export date as ISO-8601 in UTC and missing
// optional fields as null.
func (m Metadata) MarshalJSON() ([]byte, error) {
	speakers := m.Speakers
	if speakers == nil {
		speakers = []string{}
	}
	return json.Marshal(struct {
		ProjectName  string   `json:"projectName,omitempty"`
		ExportDate   string   `json:"exportDate"`
		Source       string   `json:"source"`
		Title        string   `json:"title"`
		MeetingDate  *string  `json:"meetingDate"`
		TotalEntries int      `json:"totalEntries"`
		Speakers     []string `json:"speakers"`
		Duration     *string  `json:"duration"`
	}{
		ProjectName:  m.ProjectName,
		ExportDate:   m.ExportDate.UTC().Format(isoMillis),
		Source:       m.Source,
		Title:        m.Title,
		MeetingDate:  nullable(m.MeetingDate),
		TotalEntries: m.TotalEntries,
		Speakers:     speakers,
		Duration:     nullable(m.Duration),
	})
}

// Document is the persisted artifact of an export.
type Document struct {
	Metadata   Metadata          `json:"metadata"`
	Transcript []TranscriptEntry `json:"transcript"`
}

// NewDocument packages a result for export.
func NewDocument(result TranscriptResult, projectName string, exported time.Time) Document {
	entries := result.Entries
	if entries == nil {
		entries = []TranscriptEntry{}
	}
	return Document{
		Metadata: Metadata{
			ProjectName:  projectName,
			ExportDate:   exported,
			Source:       result.Source,
			Title:        result.Title,
			MeetingDate:  result.MeetingDate,
			TotalEntries: len(entries),
			Speakers:     result.Speakers,
			Duration:     result.Duration,
		},
		Transcript: entries,
	}
}

// isoMillis matches the ISO-8601 form browsers emit for Date.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
