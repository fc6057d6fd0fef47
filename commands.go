package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-scripts/teamscribe/internal/controller"
	"github.com/go-scripts/teamscribe/internal/history"
	"github.com/go-scripts/teamscribe/internal/htmlpage"
	"github.com/go-scripts/teamscribe/internal/mcpserver"
	"github.com/go-scripts/teamscribe/internal/progress"
	"github.com/go-scripts/teamscribe/internal/scroll"
	"github.com/go-scripts/teamscribe/internal/server"
	"github.com/go-scripts/teamscribe/ui"
)

// CaptureCmd captures from a live browser tab.
type CaptureCmd struct {
	Source

	Project string `help:"Project name for the file name and metadata. Defaults to the last one used." short:"p" env:"TEAMSCRIBE_PROJECT"`
	Plain   bool   `help:"Print a progress line instead of the full-screen view." env:"TEAMSCRIBE_PLAIN"`
}

func (c *CaptureCmd) Run(g *Globals) error {
	if !c.Plain && g.Logging.File == "" {
		// The full-screen view owns the terminal.
		g.Logging.File = filepath.Join(filepath.Dir(history.DefaultPath()), "capture.log")
	}
	a, err := g.start(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := c.open(context.Background(), a)
	if err != nil {
		return err
	}
	req := controller.ExportRequest{ProjectName: c.Project}

	if c.Plain {
		reporter := progress.New(os.Stderr)
		ctrl, err := a.controller(p, reporter.Observe)
		if err != nil {
			return err
		}
		return exportPlain(ctrl, reporter, req)
	}

	relay := &ui.Relay{}
	ctrl, err := a.controller(p, relay.Observe)
	if err != nil {
		return err
	}
	model := ui.NewModel(context.Background(), ctrl, a.exports(), req)
	program := tea.NewProgram(model, tea.WithAltScreen())
	relay.Attach(program)

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("run interface: %w", err)
	}
	res, err := final.(ui.Model).Result()
	if err != nil {
		return err
	}
	if res != nil {
		printResult(*res)
	}
	return nil
}

// exportPlain runs one export behind a spinner. The first interrupt stops
// the capture and keeps what was captured; the second aborts.
func exportPlain(ctrl *controller.Controller, reporter *progress.Reporter, req controller.ExportRequest) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case <-sigs:
		case <-ctx.Done():
			return
		}
		ctrl.Stop()
		select {
		case <-sigs:
			cancel()
		case <-ctx.Done():
		}
	}()

	reporter.Start()
	res, err := ctrl.Export(ctx, req)
	reporter.Stop()
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

func printResult(res controller.ExportResult) {
	fmt.Println(res.Path)
	fmt.Fprintln(os.Stderr, progress.Summary(res.Stats.Entries, res.Stats.Speakers, res.Stats.Duration))
}

// SnapshotCmd exports a transcript page saved to disk.
type SnapshotCmd struct {
	File    string `arg:"" help:"Saved transcript page." type:"existingfile"`
	URL     string `help:"Page URL, when the file does not carry one."`
	Project string `help:"Project name for the file name and metadata." short:"p"`
}

func (c *SnapshotCmd) Run(g *Globals) error {
	a, err := g.start(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	var opts []htmlpage.Option
	if c.URL != "" {
		opts = append(opts, htmlpage.WithURL(c.URL))
	}
	p, err := htmlpage.Open(c.File, opts...)
	if err != nil {
		return err
	}
	ctrl, err := a.controller(p, nil)
	if err != nil {
		return err
	}
	res, err := ctrl.Export(context.Background(), controller.ExportRequest{ProjectName: c.Project})
	if err != nil {
		return err
	}
	printResult(res)
	return nil
}

// ServeCmd serves the HTTP control API.
type ServeCmd struct {
	Source

	Addr string `help:"Listen address." default:"127.0.0.1:8765" env:"TEAMSCRIBE_ADDR"`
}

func (c *ServeCmd) Run(g *Globals) error {
	a, err := g.start(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := c.open(context.Background(), a)
	if err != nil {
		return err
	}
	ctrl, err := a.controller(p, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              c.Addr,
		Handler:           server.New(ctrl, a.exports(), a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctrl.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	a.logger.Info("control API listening", "addr", c.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// MCPCmd serves the capture tools over MCP.
type MCPCmd struct {
	Source
}

func (c *MCPCmd) Run(g *Globals) error {
	// stdout carries the protocol.
	a, err := g.start(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := c.open(context.Background(), a)
	if err != nil {
		return err
	}
	ctrl, err := a.controller(p, func(pr scroll.Progress) {
		a.logger.Debug("capture progress", "step", pr.Step, "captured", pr.Captured, "state", pr.State)
	})
	if err != nil {
		return err
	}
	return mcpserver.Serve(mcpserver.New(ctrl, version, a.logger))
}

// ExportsCmd lists the export log.
type ExportsCmd struct {
	Limit int  `help:"How many exports to list." default:"10" short:"n"`
	JSON  bool `help:"Print as JSON."`
}

var (
	pathStyle = lipgloss.NewStyle().Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (c *ExportsCmd) Run(g *Globals) error {
	a, err := g.start(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	store := a.exports()
	if store == nil {
		return errors.New("export history is disabled")
	}
	exports, err := store.RecentExports(context.Background(), c.Limit)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(exports)
	}
	for _, e := range exports {
		fmt.Printf("%s  %s\n", dimStyle.Render(e.ExportedAt.Local().Format("2006-01-02 15:04")), pathStyle.Render(e.Path))
		fmt.Printf("    %s\n", dimStyle.Render(progress.Summary(e.Entries, e.Speakers, e.Duration)))
	}
	return nil
}
