package main

import (
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/go-scripts/teamscribe/internal/config"
	"github.com/go-scripts/teamscribe/internal/controller"
)

var version = "dev"

// Globals are the flags every command shares.
type Globals struct {
	Config  kong.ConfigFlag  `help:"Load flag values from a JSON file." type:"path"`
	Version kong.VersionFlag `help:"Print the version and exit."`
	Hosts   []string         `help:"Hosts a transcript page may be served from." default:"${hosts}" env:"TEAMSCRIBE_HOSTS"`
	AnyHost bool             `help:"Accept transcript pages from any host." env:"TEAMSCRIBE_ANY_HOST"`

	Logging config.Logging `embed:"" prefix:"log-" group:"Logging"`
	Tuning  config.Capture `embed:"" group:"Capture"`
	Output  config.Output  `embed:"" group:"Output"`
}

// CLI is the command line.
type CLI struct {
	Globals

	Capture  CaptureCmd  `cmd:"" default:"withargs" help:"Capture the transcript of a meeting page and export it."`
	Snapshot SnapshotCmd `cmd:"" help:"Export the transcript of a saved transcript page."`
	Serve    ServeCmd    `cmd:"" help:"Serve the HTTP control API for an open transcript tab."`
	MCP      MCPCmd      `cmd:"" name:"mcp" help:"Serve the capture tools over MCP on stdio."`
	Exports  ExportsCmd  `cmd:"" help:"List recent exports."`
}

func newParser(cli *CLI, opts ...kong.Option) (*kong.Kong, error) {
	opts = append([]kong.Option{
		kong.Name("teamscribe"),
		kong.Description("Capture meeting transcripts from a virtualized transcript view."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, "~/.config/teamscribe/config.json"),
		kong.Vars{
			"version": version,
			"hosts":   strings.Join(controller.DefaultAllowedHosts, ","),
		},
	}, opts...)
	return kong.New(cli, opts...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}
