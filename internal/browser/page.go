package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"

	"github.com/go-scripts/teamscribe/internal/locator"
	"github.com/go-scripts/teamscribe/internal/page"
)

// ErrRegionDetached is returned when the bound scroll pane left the DOM.
var ErrRegionDetached = errors.New("scroll region detached")

const (
	candidatesGlobal = "window.__transcriptCaptureCandidates"
	regionGlobal     = "window.__transcriptCaptureRegion"
)

// Page is the transcript view open in a tab.
type Page struct {
	tab     context.Context
	markup  page.Markup
	locator locator.Config
	logger  *log.Logger

	itemsJS      string
	candidatesJS string
}

// PageOption configures a Page.
type PageOption func(*Page)

// WithMarkup overrides the DOM shape.
func WithMarkup(m page.Markup) PageOption {
	return func(p *Page) { p.markup = m }
}

// WithLocator overrides the pane heuristics.
func WithLocator(cfg locator.Config) PageOption {
	return func(p *Page) { p.locator = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) PageOption {
	return func(p *Page) { p.logger = l }
}

// NewPage wraps the tab.
func NewPage(tab *Tab, opts ...PageOption) *Page {
	p := &Page{
		tab:     tab.Context(),
		markup:  page.DefaultMarkup(),
		locator: locator.DefaultConfig(),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.itemsJS = renderedItemsJS(p.markup)
	p.candidatesJS = candidatesJS(p.markup, p.locator)
	return p
}

// run evaluates against the tab. ctx only gates the call; chromedp needs the
// tab context to find its target.
func (p *Page) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(p.tab, actions...)
}

type infoJSON struct {
	Title    string `json:"title"`
	DateText string `json:"dateText"`
}

// Info reads the URL, title and date line of the page.
func (p *Page) Info(ctx context.Context) (page.Info, error) {
	var (
		url string
		res infoJSON
	)
	err := p.run(ctx,
		chromedp.Location(&url),
		chromedp.Evaluate(infoJS(p.markup), &res),
	)
	if err != nil {
		return page.Info{}, fmt.Errorf("read page info: %w", err)
	}
	return page.Info{URL: url, Title: res.Title, DateText: res.DateText}, nil
}

type headerJSON struct {
	Text      string   `json:"text"`
	Fragments []string `json:"fragments"`
	Name      string   `json:"name"`
	Time      string   `json:"time"`
}

type itemJSON struct {
	ID     string      `json:"id"`
	Header *headerJSON `json:"header"`
	Body   *string     `json:"body"`
}

// RenderedItems reads every list node in the DOM in one evaluation.
func (p *Page) RenderedItems(ctx context.Context) ([]page.RawItem, error) {
	var res []itemJSON
	if err := p.run(ctx, chromedp.Evaluate(p.itemsJS, &res)); err != nil {
		return nil, err
	}

	items := make([]page.RawItem, 0, len(res))
	for _, r := range res {
		item := page.RawItem{ID: r.ID, Body: r.Body}
		if r.Header != nil {
			h := page.RawHeader(*r.Header)
			item.Header = &h
		}
		items = append(items, item)
	}
	return items, nil
}

// LocateRegion measures candidate panes, lets locator.Choose decide and binds
// the winner to a page global for later scroll calls.
func (p *Page) LocateRegion(ctx context.Context) (page.ScrollableRegion, error) {
	var candidates []locator.Candidate
	if err := p.run(ctx, chromedp.Evaluate(p.candidatesJS, &candidates)); err != nil {
		return nil, fmt.Errorf("measure candidates: %w", err)
	}

	chosen, ok := locator.Choose(p.locator, candidates)
	if !ok {
		p.logger.Debug("no scroll pane qualified", "candidates", len(candidates))
		return nil, nil
	}
	p.logger.Debug("scroll pane chosen",
		"source", chosen.Source,
		"selector", chosen.Selector,
		"depth", chosen.Depth,
		"scrollHeight", chosen.ScrollHeight,
		"clientHeight", chosen.ClientHeight,
	)

	var bound bool
	bind := fmt.Sprintf(`(() => {
		const el = (%s || [])[%d];
		if (!el) return false;
		%s = el;
		return true;
	})()`, candidatesGlobal, chosen.Ref, regionGlobal)
	if err := p.run(ctx, chromedp.Evaluate(bind, &bound)); err != nil {
		return nil, fmt.Errorf("bind scroll pane: %w", err)
	}
	if !bound {
		return nil, nil
	}
	return &region{page: p}, nil
}

type region struct {
	page *Page
}

type metricsJSON struct {
	OK        bool    `json:"ok"`
	Offset    float64 `json:"offset"`
	MaxOffset float64 `json:"maxOffset"`
	Visible   float64 `json:"visible"`
}

func (r *region) Metrics(ctx context.Context) (page.Metrics, error) {
	var res metricsJSON
	if err := r.page.run(ctx, chromedp.Evaluate(metricsJS, &res)); err != nil {
		return page.Metrics{}, err
	}
	if !res.OK {
		return page.Metrics{}, ErrRegionDetached
	}
	return page.Metrics{Offset: res.Offset, MaxOffset: res.MaxOffset, Visible: res.Visible}, nil
}

func (r *region) SetOffset(ctx context.Context, offset float64) error {
	var ok bool
	expr := fmt.Sprintf(`(() => {
		const el = %s;
		if (!el || !el.isConnected) return false;
		el.scrollTop = %s;
		return true;
	})()`, regionGlobal, mustJSON(offset))
	if err := r.page.run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		return err
	}
	if !ok {
		return ErrRegionDetached
	}
	return nil
}

var metricsJS = fmt.Sprintf(`(() => {
	const el = %s;
	if (!el || !el.isConnected) return {ok: false};
	return {
		ok: true,
		offset: el.scrollTop,
		maxOffset: Math.max(0, el.scrollHeight - el.clientHeight),
		visible: el.clientHeight,
	};
})()`, regionGlobal)

func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func infoJS(m page.Markup) string {
	return fmt.Sprintf(`(() => {
	const date = document.querySelector(%s);
	return {
		title: document.title || "",
		dateText: date ? (date.textContent || "").trim() : "",
	};
})()`, mustJSON(page.ClassSelector(m.DateClasses)))
}

// renderedItemsJS returns every list node with its header pieces and body.
// Header fragments are the non-empty text nodes so the parser can rejoin them
// with separators.
func renderedItemsJS(m page.Markup) string {
	return fmt.Sprintf(`(() => {
	const itemSel = %s, headerSel = %s, bodySel = %s, nameSel = %s, timeSel = %s;
	const text = (el) => el ? (el.textContent || "").trim() : "";
	const fragments = (el) => {
		const out = [];
		const walker = document.createTreeWalker(el, NodeFilter.SHOW_TEXT);
		while (walker.nextNode()) {
			const t = (walker.currentNode.nodeValue || "").trim();
			if (t) out.push(t);
		}
		return out;
	};
	return Array.from(document.querySelectorAll(itemSel)).map((item) => {
		const header = item.querySelector(headerSel);
		const body = item.querySelector(bodySel);
		return {
			id: item.id || "",
			header: header ? {
				text: header.textContent || "",
				fragments: fragments(header),
				name: text(header.querySelector(nameSel)),
				time: text(header.querySelector(timeSel)),
			} : null,
			body: body ? (body.textContent || "") : null,
		};
	});
})()`,
		mustJSON(m.ItemSelector()),
		mustJSON(page.ClassSelector(m.HeaderClasses)),
		mustJSON(page.ClassSelector(m.BodyClasses)),
		mustJSON(page.ClassSelector(m.NameClasses)),
		mustJSON(page.ClassSelector(m.TimeClasses)),
	)
}

// candidatesJS measures selector matches and the ancestors of the first
// header node. Elements are kept in a page global so the chosen one can be
// bound by index.
func candidatesJS(m page.Markup, cfg locator.Config) string {
	return fmt.Sprintf(`(() => {
	const selectors = %s, headerSel = %s, maxDepth = %d;
	const els = [], out = [];
	const measure = (el, extra) => {
		els.push(el);
		out.push(Object.assign({
			ref: els.length - 1,
			overflowY: getComputedStyle(el).overflowY || "",
			scrollHeight: el.scrollHeight,
			clientHeight: el.clientHeight,
		}, extra));
	};
	for (const selector of selectors) {
		const el = document.querySelector(selector);
		if (el) measure(el, {source: "selector", selector: selector});
	}
	const header = document.querySelector(headerSel);
	let parent = header ? header.parentElement : null;
	for (let depth = 1; depth <= maxDepth && parent; depth++) {
		measure(parent, {source: "ancestor", depth: depth});
		parent = parent.parentElement;
	}
	%s = els;
	return out;
})()`,
		mustJSON(cfg.Selectors),
		mustJSON(page.ClassSelector(m.HeaderClasses)),
		cfg.MaxAncestorDepth,
		candidatesGlobal,
	)
}
