// Package config holds the runtime settings shared by every command. The
// structs carry kong tags so commands embed them as flag groups; env vars
// and a JSON config file fill the same fields.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/teamscribe/internal/browser"
	"github.com/go-scripts/teamscribe/internal/history"
	"github.com/go-scripts/teamscribe/internal/locator"
	"github.com/go-scripts/teamscribe/internal/scroll"
)

// Capture tunes the scroll loop and the pane locator. Zero values keep the
// policy preset.
type Capture struct {
	Policy         string        `help:"Scroll policy: step or adaptive." enum:"step,adaptive" default:"adaptive" env:"TEAMSCRIBE_POLICY"`
	StepSize       float64       `help:"Pixels scrolled per step." env:"TEAMSCRIBE_STEP_SIZE"`
	StepDelay      time.Duration `help:"Wait after each step." env:"TEAMSCRIBE_STEP_DELAY"`
	SettleDelay    time.Duration `help:"Wait after scrolling to the top." env:"TEAMSCRIBE_SETTLE_DELAY"`
	MaxSteps       int           `help:"Step budget." env:"TEAMSCRIBE_MAX_STEPS"`
	StuckThreshold int           `help:"Steps without movement before giving up." env:"TEAMSCRIBE_STUCK_THRESHOLD"`
	EmptyRetries   int           `help:"Adaptive: retries of a position that rendered nothing new." env:"TEAMSCRIBE_EMPTY_RETRIES"`
	RetryDelay     time.Duration `help:"Adaptive: wait before a retry." env:"TEAMSCRIBE_RETRY_DELAY"`
	LegacyHeaders  bool          `help:"Parse speaker headers by their last characters only." env:"TEAMSCRIBE_LEGACY_HEADERS"`

	Selectors        []string `help:"Scroll pane selectors, in priority order." env:"TEAMSCRIBE_SELECTORS"`
	MaxAncestorDepth int      `help:"Ancestors of the first header inspected when no selector matches." env:"TEAMSCRIBE_MAX_ANCESTOR_DEPTH"`
	MinScrollSlack   float64  `help:"Pixels an ancestor must overflow by to qualify." env:"TEAMSCRIBE_MIN_SCROLL_SLACK"`
}

// Scroll resolves the driver configuration.
func (c Capture) Scroll() (scroll.Config, error) {
	cfg, err := scroll.ConfigFor(scroll.Policy(c.Policy))
	if err != nil {
		return scroll.Config{}, err
	}
	if c.StepSize > 0 {
		cfg.StepSize = c.StepSize
	}
	if c.StepDelay > 0 {
		cfg.StepDelay = c.StepDelay
	}
	if c.SettleDelay > 0 {
		cfg.SettleDelay = c.SettleDelay
	}
	if c.MaxSteps > 0 {
		cfg.MaxSteps = c.MaxSteps
	}
	if c.StuckThreshold > 0 {
		cfg.StuckThreshold = c.StuckThreshold
	}
	if cfg.Adaptive {
		if c.EmptyRetries > 0 {
			cfg.EmptyRetries = c.EmptyRetries
		}
		if c.RetryDelay > 0 {
			cfg.RetryDelay = c.RetryDelay
		}
	}
	if err := cfg.Validate(); err != nil {
		return scroll.Config{}, err
	}
	return cfg, nil
}

// Locator resolves the pane heuristics.
func (c Capture) Locator() (locator.Config, error) {
	cfg := locator.DefaultConfig()
	if len(c.Selectors) > 0 {
		cfg.Selectors = c.Selectors
	}
	if c.MaxAncestorDepth > 0 {
		cfg.MaxAncestorDepth = c.MaxAncestorDepth
	}
	if c.MinScrollSlack > 0 {
		cfg.MinScrollSlack = c.MinScrollSlack
	}
	if err := cfg.Validate(); err != nil {
		return locator.Config{}, err
	}
	return cfg, nil
}

// Browser says how to reach Chrome.
type Browser struct {
	RemoteURL   string        `help:"DevTools URL of a running Chrome, e.g. ws://127.0.0.1:9222. Empty launches one." env:"TEAMSCRIBE_REMOTE_URL"`
	ExecPath    string        `help:"Chrome binary to launch." env:"TEAMSCRIBE_CHROME"`
	UserDataDir string        `help:"Chrome profile directory, keeps the meeting login." env:"TEAMSCRIBE_PROFILE" type:"path"`
	Headless    bool          `help:"Launch Chrome without a window." env:"TEAMSCRIBE_HEADLESS"`
	LoadWait    time.Duration `help:"Wait after opening the URL for the transcript to render." default:"5s" env:"TEAMSCRIBE_LOAD_WAIT"`
}

// Options converts to browser options.
func (b Browser) Options() browser.Options {
	return browser.Options{
		RemoteURL:   b.RemoteURL,
		ExecPath:    b.ExecPath,
		UserDataDir: b.UserDataDir,
		Headless:    b.Headless,
		LoadWait:    b.LoadWait,
	}
}

// Output says where documents and history go.
type Output struct {
	Dir       string `name:"output-dir" help:"Directory for exported documents." default:"." env:"TEAMSCRIBE_OUTPUT_DIR" type:"path"`
	History   string `help:"History database path." env:"TEAMSCRIBE_HISTORY" type:"path"`
	NoHistory bool   `help:"Do not remember the project name or log exports." env:"TEAMSCRIBE_NO_HISTORY"`
}

// HistoryPath returns the database path, "" when history is disabled.
func (o Output) HistoryPath() string {
	if o.NoHistory {
		return ""
	}
	if o.History != "" {
		return o.History
	}
	return history.DefaultPath()
}

// Logging configures the logger.
type Logging struct {
	Level string `help:"Log level: debug, info, warn, error." default:"info" env:"TEAMSCRIBE_LOG_LEVEL"`
	JSON  bool   `help:"Log as JSON." env:"TEAMSCRIBE_LOG_JSON"`
	File  string `help:"Log to this file instead of stderr." env:"TEAMSCRIBE_LOG_FILE" type:"path"`
}

// Validate checks the logging settings.
func (l Logging) Validate() error {
	if _, err := log.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// NewLogger builds the logger. It writes to File when set, else to w. The
// returned closer releases the file.
func (l Logging) NewLogger(w io.Writer) (*log.Logger, io.Closer, error) {
	level, err := log.ParseLevel(l.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	var closer io.Closer = nopCloser{}
	if l.File != "" {
		if err := os.MkdirAll(filepath.Dir(l.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(l.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}

	opts := log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	}
	if l.JSON {
		opts.Formatter = log.JSONFormatter
	}
	return log.NewWithOptions(w, opts), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
