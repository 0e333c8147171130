// Package cmd implements the cdlgen subcommands.
package cmd

import (
	"bufio"
	"os"

	"github.com/rockdoc/cdlgen/cdl"
	"github.com/rockdoc/cdlgen/model"
)

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// parseSource parses CDL from the named file, or from stdin when the
// source is "-".
func parseSource(source string) (*model.Dataset, error) {
	if source == stdinSource {
		return cdl.Parse(bufio.NewReader(os.Stdin))
	}

	return cdl.ParseFile(source)
}
