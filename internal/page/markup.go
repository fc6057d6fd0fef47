package page

import "strings"

// Markup names the DOM shape of the transcript list. Class names in the
// meeting client carry generated suffixes, so sub-nodes are matched by class
// substring.
type Markup struct {
	ItemIDPrefix  string   `json:"itemIdPrefix"`
	HeaderClasses []string `json:"headerClasses"`
	BodyClasses   []string `json:"bodyClasses"`
	NameClasses   []string `json:"nameClasses"`
	TimeClasses   []string `json:"timeClasses"`
	DateClasses   []string `json:"dateClasses"`
}

// DefaultMarkup matches the Stream and Teams transcript views.
func DefaultMarkup() Markup {
	return Markup{
		ItemIDPrefix:  "listItem-",
		HeaderClasses: []string{"itemHeader-", "itemHeader_"},
		BodyClasses:   []string{"entryText-", "entryText_"},
		NameClasses:   []string{"speakerName", "displayName"},
		TimeClasses:   []string{"timestamp", "time"},
		DateClasses:   []string{"subTitleBar"},
	}
}

// ItemSelector is the CSS selector of list nodes.
func (m Markup) ItemSelector() string {
	return `[id^="` + m.ItemIDPrefix + `"]`
}

// ClassSelector builds a CSS selector list matching any of the class
// substrings.
func ClassSelector(classes []string) string {
	parts := make([]string, len(classes))
	for i, c := range classes {
		parts[i] = `[class*="` + c + `"]`
	}
	return strings.Join(parts, ", ")
}

// HasClass reports whether a class attribute value contains any of the
// substrings.
func HasClass(attr string, classes []string) bool {
	for _, c := range classes {
		if c != "" && strings.Contains(attr, c) {
			return true
		}
	}
	return false
}
