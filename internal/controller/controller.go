// Package controller is the application layer shared by the CLI, the HTTP
// server and the MCP server: it checks the page, runs capture sessions and
// exports their documents.
package controller

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/teamscribe/internal/history"
	"github.com/go-scripts/teamscribe/internal/page"
	"github.com/go-scripts/teamscribe/internal/writer"
	"github.com/go-scripts/teamscribe/pkg/capture"
	"github.com/go-scripts/teamscribe/pkg/transcript"
)

var (
	// ErrPageMismatch means the page is not a meeting transcript view.
	ErrPageMismatch = errors.New("page is not a supported transcript view")
	// ErrNoEntriesFound means the capture produced no entries.
	ErrNoEntriesFound = errors.New("no transcript entries found")
)

// DefaultAllowedHosts are the meeting client domains, matched with their
// subdomains.
var DefaultAllowedHosts = []string{"sharepoint.com", "microsoft.com", "teams.microsoft.com"}

// Engine runs capture sessions.
type Engine interface {
	Run(ctx context.Context) (capture.Report, error)
	Stop() bool
	Status() capture.Status
}

// History stores the remembered project name and the export log.
type History interface {
	LastProjectName(ctx context.Context) (string, error)
	SetLastProjectName(ctx context.Context, name string) error
	RecordExport(ctx context.Context, e history.Export) (history.Export, error)
}

// Controller ties a page, its engine and the output together.
type Controller struct {
	page         page.Page
	engine       Engine
	writer       *writer.FileWriter
	history      History
	allowedHosts []string
	logger       *log.Logger
	now          func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithHistory enables the project name memory and the export log.
func WithHistory(h History) Option {
	return func(c *Controller) { c.history = h }
}

// WithAllowedHosts replaces DefaultAllowedHosts. No hosts disables the check.
func WithAllowedHosts(hosts []string) Option {
	return func(c *Controller) { c.allowedHosts = hosts }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock sets the export timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates a Controller.
func New(p page.Page, engine Engine, w *writer.FileWriter, opts ...Option) *Controller {
	c := &Controller{
		page:         p,
		engine:       engine,
		writer:       w,
		allowedHosts: DefaultAllowedHosts,
		logger:       log.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extract validates the page and runs a capture session.
func (c *Controller) Extract(ctx context.Context) (capture.Report, error) {
	if err := c.checkPage(ctx); err != nil {
		return capture.Report{}, err
	}
	return c.engine.Run(ctx)
}

// Stop asks the running session to stop and reports whether one was running.
func (c *Controller) Stop() bool {
	return c.engine.Stop()
}

// Status describes the current or last session.
func (c *Controller) Status() capture.Status {
	return c.engine.Status()
}

// ExportRequest names the project the document belongs to.
type ExportRequest struct {
	// ProjectName labels the file and the metadata. Empty falls back to the
	// remembered name, then to the page title.
	ProjectName string `json:"projectName"`
}

// Stats summarizes an exported transcript.
type Stats struct {
	Entries  int    `json:"entries"`
	Speakers int    `json:"speakers"`
	Duration string `json:"duration,omitempty"`
}

// ExportResult describes a written document.
type ExportResult struct {
	SessionID string              `json:"sessionId"`
	Filename  string              `json:"filename"`
	Path      string              `json:"path"`
	Stats     Stats               `json:"stats"`
	Document  transcript.Document `json:"document"`
}

// Export captures the transcript and writes it as a document.
func (c *Controller) Export(ctx context.Context, req ExportRequest) (ExportResult, error) {
	report, err := c.Extract(ctx)
	if err != nil {
		return ExportResult{}, err
	}
	return c.Write(ctx, report, req)
}

// Write exports an already captured session.
func (c *Controller) Write(ctx context.Context, report capture.Report, req ExportRequest) (ExportResult, error) {
	result := report.Result
	if len(result.Entries) == 0 {
		return ExportResult{}, ErrNoEntriesFound
	}

	projectName := c.projectName(ctx, req.ProjectName)
	now := c.now()
	doc := transcript.NewDocument(result, projectName, now)
	filename := writer.Filename(writer.Label(projectName, result.Title), now)

	path, err := c.writer.WriteDocument(doc, filename)
	if err != nil {
		return ExportResult{}, err
	}

	out := ExportResult{
		SessionID: report.SessionID,
		Filename:  filename,
		Path:      path,
		Stats: Stats{
			Entries:  len(result.Entries),
			Speakers: len(result.Speakers),
			Duration: result.Duration,
		},
		Document: doc,
	}
	c.remember(ctx, projectName, out)

	c.logger.Info("transcript exported",
		"session", report.SessionID,
		"path", path,
		"entries", out.Stats.Entries,
		"speakers", out.Stats.Speakers,
		"duration", out.Stats.Duration,
	)
	return out, nil
}

func (c *Controller) projectName(ctx context.Context, requested string) string {
	if name := strings.TrimSpace(requested); name != "" {
		return name
	}
	if c.history == nil {
		return ""
	}
	name, err := c.history.LastProjectName(ctx)
	if err != nil {
		c.logger.Warn("read last project name", "err", err)
	}
	return name
}

// remember saves the project name and logs the export. History failures do
// not fail an export that is already on disk.
func (c *Controller) remember(ctx context.Context, projectName string, out ExportResult) {
	if c.history == nil {
		return
	}
	if projectName != "" {
		if err := c.history.SetLastProjectName(ctx, projectName); err != nil {
			c.logger.Warn("save last project name", "err", err)
		}
	}
	_, err := c.history.RecordExport(ctx, history.Export{
		SessionID:   out.SessionID,
		ProjectName: projectName,
		Filename:    out.Filename,
		Path:        out.Path,
		Source:      out.Document.Metadata.Source,
		Title:       out.Document.Metadata.Title,
		Entries:     out.Stats.Entries,
		Speakers:    out.Stats.Speakers,
		Duration:    out.Stats.Duration,
		ExportedAt:  out.Document.Metadata.ExportDate,
	})
	if err != nil {
		c.logger.Warn("record export", "err", err)
	}
}

func (c *Controller) checkPage(ctx context.Context) error {
	if len(c.allowedHosts) == 0 {
		return nil
	}
	info, err := c.page.Info(ctx)
	if err != nil {
		return fmt.Errorf("read page info: %w", err)
	}
	if !AllowedURL(info.URL, c.allowedHosts) {
		return fmt.Errorf("%w: %q", ErrPageMismatch, info.URL)
	}
	return nil
}

// AllowedURL reports whether rawURL is served from one of hosts or their
// subdomains.
func AllowedURL(rawURL string, hosts []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, h := range hosts {
		h = strings.ToLower(h)
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
