// Package parser extracts the speaker and timestamp from transcript header
// text, which the meeting client renders as "Name | Company 3:45" and often
// hands back with the separators between its fragments missing.
package parser

import (
	"regexp"
	"strings"
)

// Header is the speaker and timestamp found in a header. Empty means absent.
type Header struct {
	Speaker   string
	Timestamp string
}

var (
	exactTimestamp    = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
	trailingTimestamp = regexp.MustCompile(`(\d+):(\d{2})$`)
	tail5Timestamp    = regexp.MustCompile(`(\d{1,2}:\d{2})$`)
	tail4Timestamp    = regexp.MustCompile(`(\d:\d{2})$`)
	leadingNonDigits  = regexp.MustCompile(`^[^0-9]+`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
	trailingPipe      = regexp.MustCompile(`\s*\|\s*$`)
)

// ParseHeader parses header text by tokenizing it and scanning tokens from
// the end for the timestamp, so a digit glued to the timestamp is never
// merged into it.
func ParseHeader(raw string) Header {
	text := Normalize(raw)
	if text == "" {
		return Header{}
	}
	return Header{
		Speaker:   speakerOf(text),
		Timestamp: tokenTimestamp(text),
	}
}

// ParseHeaderTail parses header text by looking only at its last four or
// five characters for the timestamp.
func ParseHeaderTail(raw string) Header {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Header{}
	}
	return Header{
		Speaker:   speakerOf(text),
		Timestamp: tailTimestamp(text),
	}
}

// Timestamp returns the first h:mm or hh:mm run found in text.
func Timestamp(text string) string {
	return anyTimestamp.FindString(text)
}

var anyTimestamp = regexp.MustCompile(`\d{1,2}:\d{2}`)

// JoinFragments rebuilds header text from its sibling text fragments with a
// single space between them.
func JoinFragments(fragments []string) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

// Normalize collapses whitespace runs into single spaces and trims.
func Normalize(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

func tokenTimestamp(text string) string {
	tokens := strings.Fields(text)
	for i := len(tokens) - 1; i >= 0; i-- {
		if exactTimestamp.MatchString(tokens[i]) {
			return tokens[i]
		}
	}
	// Timestamp glued to the preceding word, as in "Acme3:45". A digit run
	// longer than two before the colon is ambiguous and rejected.
	for i := len(tokens) - 1; i >= 0; i-- {
		m := trailingTimestamp.FindStringSubmatch(tokens[i])
		if m == nil {
			continue
		}
		if len(m[1]) > 2 {
			return ""
		}
		return m[1] + ":" + m[2]
	}
	return ""
}

func tailTimestamp(text string) string {
	if m := tail5Timestamp.FindStringSubmatch(lastRunes(text, 5)); m != nil {
		return m[1]
	}
	if m := tail4Timestamp.FindStringSubmatch(lastRunes(text, 4)); m != nil {
		return m[1]
	}
	return ""
}

func speakerOf(text string) string {
	var speaker string
	if pipe := strings.Index(text, "|"); pipe > 0 {
		before := strings.TrimSpace(text[:pipe])
		company := strings.TrimSpace(leadingNonDigits.FindString(text[pipe+1:]))
		speaker = before + " | " + company
	} else {
		speaker = strings.TrimSpace(leadingNonDigits.FindString(text))
	}
	if speaker == "" {
		return ""
	}
	speaker = trailingPipe.ReplaceAllString(speaker, "")
	return Normalize(speaker)
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
