// Package assemble folds captured rows into speaker turns.
package assemble

import (
	"regexp"
	"strings"

	"github.com/go-scripts/teamscribe/internal/page"
	"github.com/go-scripts/teamscribe/pkg/transcript"
)

// Assemble builds the transcript from set in insertion order. A row carrying
// a speaker closes the current turn and opens a new one; a row carrying text
// adds it to the current turn, even when it also opened that turn.
func Assemble(set *transcript.CapturedSet, info page.Info) transcript.TranscriptResult {
	result := transcript.TranscriptResult{
		Entries:     []transcript.TranscriptEntry{},
		Speakers:    []string{},
		Source:      info.URL,
		Title:       info.Title,
		MeetingDate: MeetingDate(info.DateText),
	}

	var (
		seen      = make(map[string]bool)
		speaker   string
		timestamp string
		buffer    []string
	)
	flush := func() {
		if len(buffer) == 0 {
			return
		}
		result.Entries = append(result.Entries, transcript.TranscriptEntry{
			Index:     len(result.Entries) + 1,
			Timestamp: timestamp,
			Speaker:   speaker,
			Text:      strings.Join(buffer, " "),
		})
		buffer = buffer[:0]
	}

	for _, item := range set.Items() {
		if item.Speaker != "" {
			flush()
			speaker = item.Speaker
			timestamp = item.Timestamp
			if !seen[speaker] {
				seen[speaker] = true
				result.Speakers = append(result.Speakers, speaker)
			}
			if timestamp != "" {
				result.Duration = timestamp
			}
		}
		if item.Text != "" {
			buffer = append(buffer, item.Text)
		}
	}
	flush()

	return result
}

var datePatterns = []*regexp.Regexp{
	// 17 de octubre de 2026
	regexp.MustCompile(`(?i)\d{1,2}\s+de\s+\p{L}+\s+de\s+\d{4}`),
	// October 17, 2026
	regexp.MustCompile(`(?i)\p{L}{3,}\s+\d{1,2},\s+\d{4}`),
	// 17 October 2026
	regexp.MustCompile(`(?i)\d{1,2}\s+\p{L}{3,}\s+\d{4}`),
}

// MeetingDate finds a localized date in text, or returns "".
func MeetingDate(text string) string {
	for _, re := range datePatterns {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return ""
}
