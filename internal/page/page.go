// Package page defines what the capture engine needs from a transcript page:
// the rendered list nodes, page metadata and a scrollable region.
package page

import "context"

// RawItem is the structural data read from one rendered list node. Nothing
// here is interpreted yet; the sampler decides what it means.
type RawItem struct {
	ID     string
	Header *RawHeader
	// Body is nil when the node has no body-text sub-node.
	Body *string
}

// RawHeader is the data read from a node's header sub-node.
type RawHeader struct {
	// Text is the header's concatenated text content.
	Text string
	// Fragments are the header's non-empty text nodes in document order.
	Fragments []string
	// Name and Time are the texts of the dedicated name and time sub-nodes,
	// empty when those sub-nodes are missing.
	Name string
	Time string
}

// Info describes the page a transcript is captured from.
type Info struct {
	URL   string
	Title string
	// DateText is the text of the region that carries the meeting date.
	DateText string
}

// Metrics is a snapshot of a region's scroll state, in pixels.
type Metrics struct {
	Offset    float64
	MaxOffset float64
	Visible   float64
}

// AtBottom reports whether the offset is within tolerance of the end.
func (m Metrics) AtBottom(tolerance float64) bool {
	return m.Offset >= m.MaxOffset-tolerance
}

// ScrollableRegion is the scrollable pane that hosts the transcript list.
type ScrollableRegion interface {
	Metrics(ctx context.Context) (Metrics, error)
	SetOffset(ctx context.Context, offset float64) error
}

// Page is a transcript page.
type Page interface {
	Info(ctx context.Context) (Info, error)
	// RenderedItems returns the list nodes currently in the DOM, top to bottom.
	RenderedItems(ctx context.Context) ([]RawItem, error)
	// LocateRegion finds the scrollable pane of the transcript list. It
	// returns nil and no error when there is none.
	LocateRegion(ctx context.Context) (ScrollableRegion, error)
}

// Text returns a pointer to s, for building RawItem bodies.
func Text(s string) *string {
	return &s
}
