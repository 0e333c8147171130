// Package cli wires the command-line interface: flag parsing via kong,
// logger and profiler flag groups, and configuration file resolution.
package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/rockdoc/cdlgen/cli/cmd"
	"github.com/rockdoc/cdlgen/pkg"
)

// CLI is the top-level command-line interface for cdlgen.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit."`

	Check cmd.Check `cmd:"" help:"Parse and validate CDL input without writing output"`
	Fmt   cmd.Fmt   `cmd:"" help:"Reformat CDL input"`

	Gen cmd.Gen `cmd:"" default:"withargs" help:"Generate a netCDF file from CDL input"`
}

// Run executes the cdlgen CLI with the given context and arguments. The
// exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolveYAML, configPath()),
		kong.Vars{"version": pkg.Version},
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Finalize logger configuration with all parsed flag values.
	cli.Log.start(ctx)

	// No-op unless a profiling mode was selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

// configPath returns the user-level configuration file path. A missing
// file is ignored by kong.
func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, pkg.Name, "config.yaml")
}
