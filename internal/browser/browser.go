// Package browser drives a Chrome tab through the DevTools protocol and
// exposes the open transcript view as a page.Page.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// ErrNoTab is returned by Attach when no open tab matches.
var ErrNoTab = errors.New("no matching browser tab")

// Options configures how the browser is reached.
type Options struct {
	// RemoteURL attaches to a running Chrome started with
	// --remote-debugging-port, e.g. ws://127.0.0.1:9222. Empty launches one.
	RemoteURL string
	// ExecPath overrides the Chrome binary for launched browsers.
	ExecPath string
	// UserDataDir keeps the profile, and so the meeting login, between runs.
	UserDataDir string
	Headless    bool
	// LoadWait is how long to wait after navigation for the client to render.
	LoadWait time.Duration
}

// Browser is a connected Chrome instance.
type Browser struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

// Connect launches or attaches to Chrome.
func Connect(ctx context.Context, opts Options) (*Browser, error) {
	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if opts.RemoteURL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, opts.RemoteURL)
	} else {
		execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.DisableGPU,
			chromedp.Flag("headless", opts.Headless),
		)
		if opts.ExecPath != "" {
			execOpts = append(execOpts, chromedp.ExecPath(opts.ExecPath))
		}
		if opts.UserDataDir != "" {
			execOpts = append(execOpts, chromedp.UserDataDir(opts.UserDataDir))
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, execOpts...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	// An empty Run starts the browser so connection errors surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &Browser{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{browserCancel, allocCancel},
	}, nil
}

// Close releases the browser. Launched browsers are shut down.
func (b *Browser) Close() {
	for _, cancel := range b.cancels {
		cancel()
	}
}

// Tab is one browser tab.
type Tab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Context returns the chromedp context bound to the tab.
func (t *Tab) Context() context.Context { return t.ctx }

// Close detaches from the tab.
func (t *Tab) Close() { t.cancel() }

// Open navigates a new tab to url and waits for the page body.
func (b *Browser) Open(url string, loadWait time.Duration) (*Tab, error) {
	tabCtx, cancel := chromedp.NewContext(b.ctx)

	tasks := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	}
	if loadWait > 0 {
		tasks = append(tasks, chromedp.Sleep(loadWait))
	}
	if err := chromedp.Run(tabCtx, tasks...); err != nil {
		cancel()
		return nil, fmt.Errorf("navigate to %s: %w", url, err)
	}
	return &Tab{ctx: tabCtx, cancel: cancel}, nil
}

// Attach binds to an already open page tab whose URL contains any of the
// given fragments. With no fragments the first page tab is used.
func (b *Browser) Attach(fragments ...string) (*Tab, error) {
	targets, err := chromedp.Targets(b.ctx)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	t := pickTarget(targets, fragments)
	if t == nil {
		return nil, ErrNoTab
	}
	tabCtx, cancel := chromedp.NewContext(b.ctx, chromedp.WithTargetID(t.TargetID))
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("attach to %s: %w", t.URL, err)
	}
	return &Tab{ctx: tabCtx, cancel: cancel}, nil
}

// pickTarget returns the first page target matching fragments.
func pickTarget(targets []*target.Info, fragments []string) *target.Info {
	for _, t := range targets {
		if t.Type == "page" && matchesAny(t.URL, fragments) {
			return t
		}
	}
	return nil
}

func matchesAny(url string, fragments []string) bool {
	if len(fragments) == 0 {
		return true
	}
	for _, f := range fragments {
		if strings.Contains(url, f) {
			return true
		}
	}
	return false
}
