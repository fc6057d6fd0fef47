// Package locator decides which element of the transcript view is the
// scrollable pane. Pages gather candidate measurements; Choose ranks them.
package locator

import (
	"errors"
	"slices"
)

// Source tells how a candidate was found.
type Source string

const (
	// FromSelector candidates matched one of the configured selectors.
	FromSelector Source = "selector"
	// FromAncestor candidates are ancestors of the first transcript header.
	FromAncestor Source = "ancestor"
)

// Config holds the locator heuristics.
type Config struct {
	// Selectors are tried in order; the first match that can scroll wins.
	Selectors []string `json:"selectors"`
	// MaxAncestorDepth bounds the walk up from the first header node.
	MaxAncestorDepth int `json:"max_ancestor_depth"`
	// MinScrollSlack is how much taller than its viewport an ancestor must be.
	MinScrollSlack float64 `json:"min_scroll_slack"`
}

// DefaultConfig returns the selectors known to match the transcript pane.
func DefaultConfig() Config {
	return Config{
		Selectors: []string{
			`[data-is-scrollable="true"]`,
			`[class*="scrollablePane"]`,
			`[class*="transcriptPane"]`,
			`.ms-ScrollablePane--contentContainer`,
		},
		MaxAncestorDepth: 12,
		MinScrollSlack:   100,
	}
}

// Validate checks cfg for unusable values.
func (c Config) Validate() error {
	if c.MaxAncestorDepth < 1 {
		return errors.New("max ancestor depth must be at least 1")
	}
	if c.MinScrollSlack < 0 {
		return errors.New("min scroll slack must not be negative")
	}
	return nil
}

// Candidate is one measured element.
type Candidate struct {
	// Ref identifies the element to the page that measured it.
	Ref    int    `json:"ref"`
	Source Source `json:"source"`
	// Selector is the matching selector for FromSelector candidates.
	Selector string `json:"selector,omitempty"`
	// Depth is the number of steps up from the header node, starting at 1.
	Depth        int     `json:"depth,omitempty"`
	OverflowY    string  `json:"overflowY"`
	ScrollHeight float64 `json:"scrollHeight"`
	ClientHeight float64 `json:"clientHeight"`
}

// Scrollable reports whether the element has content beyond its viewport.
func (c Candidate) Scrollable() bool {
	return c.ScrollHeight > c.ClientHeight
}

func (c Candidate) overflows() bool {
	switch c.OverflowY {
	case "auto", "scroll", "overlay":
		return true
	}
	return false
}

// Choose picks the scrollable pane among candidates. Selector matches win in
// configured order; otherwise the nearest qualifying header ancestor.
func Choose(cfg Config, candidates []Candidate) (Candidate, bool) {
	for _, sel := range cfg.Selectors {
		for _, c := range candidates {
			if c.Source == FromSelector && c.Selector == sel && c.Scrollable() {
				return c, true
			}
		}
	}

	ancestors := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Source == FromAncestor && c.Depth <= cfg.MaxAncestorDepth {
			ancestors = append(ancestors, c)
		}
	}
	slices.SortStableFunc(ancestors, func(a, b Candidate) int { return a.Depth - b.Depth })
	for _, c := range ancestors {
		if c.overflows() && c.ScrollHeight-c.ClientHeight > cfg.MinScrollSlack {
			return c, true
		}
	}

	return Candidate{}, false
}
