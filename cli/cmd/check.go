package cmd

import (
	"context"
	"log/slog"

	"github.com/rockdoc/cdlgen/log"
)

// Check parses and validates CDL input without writing any output. A
// zero exit status means the input is well-formed.
type Check struct {
	Source string `arg:"" default:"-" help:"CDL source file or '-' for stdin." name:"source"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) error {
	ds, err := parseSource(c.Source)
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "input is valid",
		slog.String("dataset", ds.Name),
		slog.Int("dimensions", len(ds.Dimensions)),
		slog.Int("variables", len(ds.Variables)),
		slog.Int("attributes", len(ds.Attributes)),
		slog.Int("groups", len(ds.Groups)),
	)

	return nil
}
