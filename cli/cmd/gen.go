package cmd

import (
	"context"
	"log/slog"

	"github.com/rockdoc/cdlgen/cdl"
	"github.com/rockdoc/cdlgen/log"
)

// Gen parses CDL input and writes the described dataset to a classic
// netCDF file.
type Gen struct {
	Output string `help:"Output netCDF file path (default: <dataset>.nc beside the source)." short:"o" type:"path"`

	Source string `arg:"" default:"-" help:"CDL source file or '-' for stdin." name:"source"`
}

// Run executes the gen command.
func (g *Gen) Run(ctx context.Context) error {
	ds, err := parseSource(g.Source)
	if err != nil {
		return err
	}

	out := g.Output
	if out == "" {
		source := g.Source
		if source == stdinSource {
			source = ""
		}

		out = cdl.DefaultOutput(source, ds)
	}

	log.InfoContext(ctx, "generating netCDF file",
		slog.String("dataset", ds.Name),
		slog.String("output", out),
	)

	return cdl.Generate(ds, out)
}
