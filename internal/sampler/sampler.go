// Package sampler turns the currently rendered transcript nodes into captured
// items, adding the ones not seen before to the running set.
package sampler

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/teamscribe/internal/page"
	"github.com/go-scripts/teamscribe/internal/parser"
	"github.com/go-scripts/teamscribe/pkg/transcript"
)

// Sampler reads rendered nodes from a page.
type Sampler struct {
	page   page.Page
	logger *log.Logger
	// legacy parses the raw concatenated header with the tail parser instead
	// of rebuilding it from its fragments.
	legacy   bool
	recycled int
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Sampler) { s.logger = l }
}

// WithLegacyHeaders makes the sampler parse raw header text with the tail
// parser.
func WithLegacyHeaders() Option {
	return func(s *Sampler) { s.legacy = true }
}

// New creates a Sampler for p.
func New(p page.Page, opts ...Option) *Sampler {
	s := &Sampler{page: p, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample adds every rendered node not yet in set and returns how many were
// added. Nodes yielding neither a speaker nor text are skipped and may be
// picked up by a later call.
func (s *Sampler) Sample(ctx context.Context, set *transcript.CapturedSet) (int, error) {
	items, err := s.page.RenderedItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("read rendered items: %w", err)
	}

	added := 0
	for _, raw := range items {
		if raw.ID == "" {
			continue
		}
		if prev, ok := set.Get(raw.ID); ok {
			s.checkRecycled(prev, raw)
			continue
		}

		item, ok := s.Extract(raw)
		if !ok {
			continue
		}
		if set.Add(item) {
			added++
		}
	}
	return added, nil
}

// Recycled returns how many times a captured node ID was seen again carrying
// different text, which means the list reused the node for another row.
func (s *Sampler) Recycled() int {
	return s.recycled
}

// Extract reads one node. It reports false when the node has neither a
// speaker nor text.
func (s *Sampler) Extract(raw page.RawItem) (transcript.CapturedItem, bool) {
	item := transcript.CapturedItem{ID: raw.ID}

	if h := raw.Header; h != nil {
		item.Speaker = parser.Normalize(h.Name)
		item.Timestamp = parser.Timestamp(h.Time)

		if item.Speaker == "" || item.Timestamp == "" {
			parsed := s.parseHeader(h)
			if item.Speaker == "" {
				item.Speaker = parsed.Speaker
			}
			if item.Timestamp == "" {
				item.Timestamp = parsed.Timestamp
			}
		}
	}
	if raw.Body != nil {
		item.Text = strings.TrimSpace(*raw.Body)
	}

	if item.Speaker == "" && item.Text == "" {
		return transcript.CapturedItem{}, false
	}
	return item, true
}

func (s *Sampler) parseHeader(h *page.RawHeader) parser.Header {
	if s.legacy {
		return parser.ParseHeaderTail(h.Text)
	}
	text := parser.JoinFragments(h.Fragments)
	if text == "" {
		text = h.Text
	}
	return parser.ParseHeader(text)
}

func (s *Sampler) checkRecycled(prev transcript.CapturedItem, raw page.RawItem) {
	if raw.Body == nil {
		return
	}
	text := strings.TrimSpace(*raw.Body)
	if text == "" || text == prev.Text {
		return
	}
	s.recycled++
	s.logger.Debug("node id reused for different content",
		"id", raw.ID, "insertion_index", prev.InsertionIndex)
}
