// Package pagetest provides an in-memory virtualized transcript list that
// behaves like the meeting client's: only rows intersecting the viewport are
// rendered, and scrolling is driven through page.ScrollableRegion.
package pagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-scripts/teamscribe/internal/page"
)

// Row is one logical transcript row. An empty Speaker renders a row without
// a header; an empty Text renders it without a body.
type Row struct {
	Speaker string
	Time    string
	Text    string
}

// ErrMetrics is returned by Metrics once FailMetricsAfter calls have been made.
var ErrMetrics = errors.New("pagetest: metrics unavailable")

// VirtualList is a fake page.Page and page.ScrollableRegion.
type VirtualList struct {
	Rows       []Row
	RowHeight  float64
	Viewport   float64
	Overscan   int
	PageInfo   page.Info
	NoRegion   bool
	Structured bool

	// RenderLag is how many RenderedItems calls after a scroll still return
	// the rows of the previous position.
	RenderLag int
	// Recycle, when positive, reuses node IDs modulo Recycle.
	Recycle int
	// Endless keeps the maximum offset one viewport ahead of the offset, so
	// the list never reaches its bottom.
	Endless bool
	// Adjust may rewrite the offset produced by the n-th SetOffset call.
	Adjust func(call int, requested float64) float64
	// OnRender runs at the start of every RenderedItems call.
	OnRender func(call int)
	// FailMetricsAfter makes Metrics fail after that many calls when positive.
	FailMetricsAfter int

	mu            sync.Mutex
	offset        float64
	renderedFrom  float64
	lagRemaining  int
	renderCalls   int
	setCalls      int
	metricsCalls  int
	offsetHistory []float64
}

// NewVirtualList returns a list of rows 50px high in a 200px viewport.
func NewVirtualList(rows []Row) *VirtualList {
	return &VirtualList{
		Rows:      rows,
		RowHeight: 50,
		Viewport:  200,
		PageInfo: page.Info{
			URL:   "https://contoso.sharepoint.com/sites/team/stream.aspx",
			Title: "Weekly sync",
		},
	}
}

// Info implements page.Page.
func (v *VirtualList) Info(context.Context) (page.Info, error) {
	return v.PageInfo, nil
}

// LocateRegion implements page.Page.
func (v *VirtualList) LocateRegion(context.Context) (page.ScrollableRegion, error) {
	if v.NoRegion {
		return nil, nil
	}
	return v, nil
}

// RenderedItems implements page.Page.
func (v *VirtualList) RenderedItems(context.Context) ([]page.RawItem, error) {
	v.mu.Lock()
	v.renderCalls++
	call := v.renderCalls
	v.mu.Unlock()

	if v.OnRender != nil {
		v.OnRender(call)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	from := v.offset
	if v.lagRemaining > 0 {
		v.lagRemaining--
		from = v.renderedFrom
	} else {
		v.renderedFrom = v.offset
	}

	first := int(from/v.RowHeight) - v.Overscan
	last := int((from+v.Viewport-1)/v.RowHeight) + v.Overscan
	if first < 0 {
		first = 0
	}
	if last >= len(v.Rows) {
		last = len(v.Rows) - 1
	}

	items := make([]page.RawItem, 0, last-first+1)
	for i := first; i <= last; i++ {
		items = append(items, v.render(i))
	}
	return items, nil
}

func (v *VirtualList) render(i int) page.RawItem {
	row := v.Rows[i]
	id := i
	if v.Recycle > 0 {
		id = i % v.Recycle
	}
	item := page.RawItem{ID: fmt.Sprintf("listItem-%d", id)}
	if row.Speaker != "" || row.Time != "" {
		header := &page.RawHeader{
			Text:      row.Speaker + row.Time,
			Fragments: []string{row.Speaker, row.Time},
		}
		if v.Structured {
			header.Name = row.Speaker
			header.Time = row.Time
		}
		item.Header = header
	}
	if row.Text != "" {
		item.Body = page.Text(row.Text)
	}
	return item
}

// Metrics implements page.ScrollableRegion.
func (v *VirtualList) Metrics(context.Context) (page.Metrics, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.metricsCalls++
	if v.FailMetricsAfter > 0 && v.metricsCalls > v.FailMetricsAfter {
		return page.Metrics{}, ErrMetrics
	}
	return page.Metrics{Offset: v.offset, MaxOffset: v.maxOffset(), Visible: v.Viewport}, nil
}

// SetOffset implements page.ScrollableRegion.
func (v *VirtualList) SetOffset(_ context.Context, offset float64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.setCalls++
	if v.Adjust != nil {
		offset = v.Adjust(v.setCalls, offset)
	}
	if offset < 0 {
		offset = 0
	}
	if max := v.maxOffset(); offset > max {
		offset = max
	}
	if offset != v.offset {
		v.lagRemaining = v.RenderLag
	}
	v.offset = offset
	v.offsetHistory = append(v.offsetHistory, offset)
	return nil
}

func (v *VirtualList) maxOffset() float64 {
	if v.Endless {
		return v.offset + v.Viewport
	}
	max := float64(len(v.Rows))*v.RowHeight - v.Viewport
	if max < 0 {
		return 0
	}
	return max
}

// Offsets returns every offset the list was scrolled to.
func (v *VirtualList) Offsets() []float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]float64, len(v.offsetHistory))
	copy(out, v.offsetHistory)
	return out
}

// RenderCalls returns how many times RenderedItems was called.
func (v *VirtualList) RenderCalls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.renderCalls
}

// Rows builds n rows alternating between two speakers, two rows per turn.
func Rows(n int) []Row {
	rows := make([]Row, n)
	speakers := []string{"Ana Gómez | Contoso", "Luis Pérez"}
	for i := range rows {
		rows[i].Text = fmt.Sprintf("line %d", i)
		if i%2 == 0 {
			rows[i].Speaker = speakers[(i/2)%2]
			rows[i].Time = fmt.Sprintf("%d:%02d", i/60, i%60)
		}
	}
	return rows
}
