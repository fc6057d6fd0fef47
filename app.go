package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/teamscribe/internal/browser"
	"github.com/go-scripts/teamscribe/internal/config"
	"github.com/go-scripts/teamscribe/internal/controller"
	"github.com/go-scripts/teamscribe/internal/history"
	"github.com/go-scripts/teamscribe/internal/page"
	"github.com/go-scripts/teamscribe/internal/scroll"
	"github.com/go-scripts/teamscribe/internal/writer"
	"github.com/go-scripts/teamscribe/pkg/capture"
)

// app holds what one command run has opened.
type app struct {
	g       *Globals
	logger  *log.Logger
	history *history.Store
	closers []io.Closer
}

// start builds the logger, writing to w unless a log file is set, and opens
// the history store.
func (g *Globals) start(w io.Writer) (*app, error) {
	logger, closer, err := g.Logging.NewLogger(w)
	if err != nil {
		return nil, err
	}
	a := &app{g: g, logger: logger, closers: []io.Closer{closer}}

	if path := g.Output.HistoryPath(); path != "" {
		store, err := history.Open(path)
		if err != nil {
			// Exports still work without the history.
			logger.Warn("history disabled", "path", path, "err", err)
		} else {
			a.history = store
			a.closers = append(a.closers, store)
		}
	}
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
}

func (a *app) allowedHosts() []string {
	if a.g.AnyHost {
		return nil
	}
	return a.g.Hosts
}

type exportLog interface {
	RecentExports(ctx context.Context, limit int) ([]history.Export, error)
}

// exports returns the export log, nil when history is disabled.
func (a *app) exports() exportLog {
	if a.history == nil {
		return nil
	}
	return a.history
}

// controller wires the capture engine, the writer and the history for p.
func (a *app) controller(p page.Page, observer scroll.Observer) (*controller.Controller, error) {
	scrollCfg, err := a.g.Tuning.Scroll()
	if err != nil {
		return nil, err
	}
	engine, err := capture.New(p, capture.Options{
		Scroll:        &scrollCfg,
		LegacyHeaders: a.g.Tuning.LegacyHeaders,
		Logger:        a.logger,
		Observer:      observer,
	})
	if err != nil {
		return nil, err
	}

	w, err := writer.New(a.g.Output.Dir)
	if err != nil {
		return nil, err
	}

	opts := []controller.Option{
		controller.WithAllowedHosts(a.allowedHosts()),
		controller.WithLogger(a.logger),
	}
	if a.history != nil {
		opts = append(opts, controller.WithHistory(a.history))
	}
	return controller.New(p, engine, w, opts...), nil
}

// Source says which browser tab holds the transcript.
type Source struct {
	URL    string         `arg:"" optional:"" help:"Transcript page to open. Without it an open tab is used."`
	Attach []string       `help:"Use the open tab whose URL contains one of these fragments. Defaults to the allowed hosts."`
	Chrome config.Browser `embed:"" group:"Browser"`
}

// tab is an open transcript tab and the browser holding it.
type tab struct {
	browser *browser.Browser
	tab     *browser.Tab
}

func (t *tab) Close() error {
	t.tab.Close()
	t.browser.Close()
	return nil
}

// open connects to Chrome and returns the transcript page, either freshly
// navigated to URL or found among the open tabs.
func (s Source) open(ctx context.Context, a *app) (*browser.Page, error) {
	locCfg, err := a.g.Tuning.Locator()
	if err != nil {
		return nil, err
	}

	b, err := browser.Connect(ctx, s.Chrome.Options())
	if err != nil {
		return nil, err
	}

	var t *browser.Tab
	if s.URL != "" {
		a.logger.Info("opening transcript page", "url", s.URL)
		t, err = b.Open(s.URL, s.Chrome.LoadWait)
	} else {
		fragments := s.Attach
		if len(fragments) == 0 {
			fragments = a.allowedHosts()
		}
		a.logger.Info("attaching to open tab", "match", fragments)
		t, err = b.Attach(fragments...)
	}
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("open transcript tab: %w", err)
	}

	a.closers = append(a.closers, &tab{browser: b, tab: t})
	return browser.NewPage(t,
		browser.WithLocator(locCfg),
		browser.WithLogger(a.logger),
	), nil
}
