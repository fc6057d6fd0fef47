// Package htmlpage reads a saved transcript page from disk. A snapshot has no
// layout, so it has no scrollable region and captures only what was rendered
// when it was saved.
package htmlpage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"

	"github.com/go-scripts/teamscribe/internal/page"
)

// Page is a parsed HTML snapshot.
type Page struct {
	doc    *html.Node
	markup page.Markup
	url    string
}

// Option configures a Page.
type Option func(*Page)

// WithURL sets the source URL when the snapshot does not carry one.
func WithURL(url string) Option {
	return func(p *Page) { p.url = url }
}

// WithMarkup overrides the DOM shape.
func WithMarkup(m page.Markup) Option {
	return func(p *Page) { p.markup = m }
}

// Parse reads a snapshot from r.
func Parse(r io.Reader, opts ...Option) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	p := &Page{doc: doc, markup: page.DefaultMarkup()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Open reads a snapshot file.
func Open(path string, opts ...Option) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f, opts...)
}

// Info returns the snapshot's source URL, title and date line.
func (p *Page) Info(_ context.Context) (page.Info, error) {
	info := page.Info{URL: p.url}
	if info.URL == "" {
		info.URL = sourceURL(p.doc)
	}
	if t := find(p.doc, func(n *html.Node) bool { return n.Data == "title" }); t != nil {
		info.Title = strings.TrimSpace(textContent(t))
	}
	if d := find(p.doc, p.classMatcher(p.markup.DateClasses)); d != nil {
		info.DateText = strings.TrimSpace(textContent(d))
	}
	return info, nil
}

// RenderedItems returns every list node in the snapshot.
func (p *Page) RenderedItems(_ context.Context) ([]page.RawItem, error) {
	var items []page.RawItem
	walk(p.doc, func(n *html.Node) bool {
		id := attr(n, "id")
		if !strings.HasPrefix(id, p.markup.ItemIDPrefix) {
			return true
		}
		items = append(items, p.rawItem(n, id))
		return false
	})
	return items, nil
}

// LocateRegion always reports no region.
func (p *Page) LocateRegion(_ context.Context) (page.ScrollableRegion, error) {
	return nil, nil
}

func (p *Page) rawItem(n *html.Node, id string) page.RawItem {
	item := page.RawItem{ID: id}
	if h := find(n, p.classMatcher(p.markup.HeaderClasses)); h != nil {
		header := &page.RawHeader{
			Text:      textContent(h),
			Fragments: fragments(h),
		}
		if name := find(h, p.classMatcher(p.markup.NameClasses)); name != nil {
			header.Name = strings.TrimSpace(textContent(name))
		}
		if tm := find(h, p.classMatcher(p.markup.TimeClasses)); tm != nil {
			header.Time = strings.TrimSpace(textContent(tm))
		}
		item.Header = header
	}
	if b := find(n, p.classMatcher(p.markup.BodyClasses)); b != nil {
		item.Body = page.Text(textContent(b))
	}
	return item
}

func (p *Page) classMatcher(classes []string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return page.HasClass(attr(n, "class"), classes)
	}
}

func sourceURL(doc *html.Node) string {
	if l := find(doc, func(n *html.Node) bool {
		return n.Data == "link" && attr(n, "rel") == "canonical"
	}); l != nil {
		return attr(l, "href")
	}
	if m := find(doc, func(n *html.Node) bool {
		return n.Data == "meta" && attr(n, "property") == "og:url"
	}); m != nil {
		return attr(m, "content")
	}
	return ""
}

// walk visits element nodes depth first; visit returns false to skip the
// node's children.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if n.Type == html.ElementNode && !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// find returns the first element under n, excluding n, matching match.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}

func fragments(n *html.Node) []string {
	var out []string
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				out = append(out, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return out
}
