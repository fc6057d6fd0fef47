package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/teamscribe/pkg/transcript"
)

const savedPage = `<!DOCTYPE html>
<html>
<head>
  <title>Weekly sync - Microsoft Stream</title>
  <link rel="canonical" href="https://contoso.sharepoint.com/sites/team/stream.aspx?id=42">
</head>
<body>
  <div class="subTitleBar-7">17 de octubre de 2026</div>
  <div data-is-scrollable="true">
    <div id="listItem-0">
      <div class="itemHeader-3"><span>Ana Gómez | Contoso</span><span>0:05</span></div>
      <div class="entryText-4">Hola a todos</div>
    </div>
    <div id="listItem-1">
      <div class="entryText-4">seguimos</div>
    </div>
    <div id="listItem-2">
      <div class="itemHeader-3"><span>Luis Pérez</span><span>1:10</span></div>
      <div class="entryText-4">gracias</div>
    </div>
  </div>
</body>
</html>`

func parse(t *testing.T, args ...string) (*CLI, string) {
	t.Helper()
	var cli CLI
	parser, err := newParser(&cli)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx.Command()
}

func TestParseDefaults(t *testing.T) {
	cli, cmd := parse(t, "capture", "https://contoso.sharepoint.com/stream.aspx")

	assert.Equal(t, "capture <url>", cmd)
	assert.Equal(t, "https://contoso.sharepoint.com/stream.aspx", cli.Capture.URL)
	assert.Equal(t, "adaptive", cli.Tuning.Policy)
	assert.Equal(t, "info", cli.Logging.Level)
	assert.Equal(t, 5*time.Second, cli.Capture.Chrome.LoadWait)
	assert.Contains(t, cli.Hosts, "sharepoint.com")
}

func TestParseTuningFlags(t *testing.T) {
	cli, _ := parse(t, "serve", "--policy", "step", "--max-steps", "50",
		"--log-level", "debug", "--attach", "stream.aspx", "--addr", ":9000")

	assert.Equal(t, ":9000", cli.Serve.Addr)
	assert.Equal(t, []string{"stream.aspx"}, cli.Serve.Attach)

	cfg, err := cli.Tuning.Scroll()
	require.NoError(t, err)
	assert.False(t, cfg.Adaptive)
	assert.Equal(t, 50, cfg.MaxSteps)
	assert.Equal(t, "debug", cli.Logging.Level)
}

func TestParseRejectsUnknownPolicy(t *testing.T) {
	var cli CLI
	parser, err := newParser(&cli)
	require.NoError(t, err)

	_, err = parser.Parse([]string{"capture", "--policy", "sideways"})
	assert.Error(t, err)
}

func TestParseConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teamscribe.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"policy": "step", "any_host": true}`), 0644))

	cli, _ := parse(t, "--config", path, "exports")

	assert.Equal(t, "step", cli.Tuning.Policy)
	assert.True(t, cli.AnyHost)
}

func TestSnapshotExport(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(file, []byte(savedPage), 0644))
	out := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(out, 0755))

	var cli CLI
	parser, err := newParser(&cli)
	require.NoError(t, err)
	ctx, err := parser.Parse([]string{"snapshot", file,
		"--output-dir", out, "--no-history", "--log-level", "error", "-p", "Alpha"})
	require.NoError(t, err)
	require.NoError(t, ctx.Run(&cli.Globals))

	matches, err := filepath.Glob(filepath.Join(out, "*_ALPHA_Transcripcion.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	var doc transcript.Document
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "Alpha", doc.Metadata.ProjectName)
	assert.Equal(t, 2, doc.Metadata.TotalEntries)
	assert.Len(t, doc.Transcript, 2)
	assert.Equal(t, "Ana Gómez | Contoso", doc.Transcript[0].Speaker)
	assert.Equal(t, "Hola a todos seguimos", doc.Transcript[0].Text)
}

func TestSnapshotRejectsForeignHost(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(file, []byte(savedPage), 0644))

	var cli CLI
	parser, err := newParser(&cli)
	require.NoError(t, err)
	ctx, err := parser.Parse([]string{"snapshot", file, "--url", "https://example.org/x",
		"--output-dir", dir, "--no-history", "--log-level", "error"})
	require.NoError(t, err)

	assert.Error(t, ctx.Run(&cli.Globals))
}
