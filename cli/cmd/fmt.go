package cmd

import (
	"context"
	"os"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Fmt parses CDL input and reformats it in the chosen representation.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical CDL (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
}

// Native reformats input as canonical CDL notation.
type Native struct {
	Source string `arg:"" default:"-" help:"CDL source file or '-' for stdin." name:"source"`
}

// Run executes the native fmt command.
func (f *Native) Run(_ context.Context) error {
	ds, err := parseSource(f.Source)
	if err != nil {
		return err
	}

	return ds.WriteCDL(os.Stdout)
}

// JSON reformats input as a JSON description of the dataset.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source string `arg:"" default:"-" help:"CDL source file or '-' for stdin." name:"source"`
}

// Run executes the json fmt command.
func (j *JSON) Run(_ context.Context) error {
	ds, err := parseSource(j.Source)
	if err != nil {
		return err
	}

	out, err := gojson.MarshalIndent(ds, "", strings.Repeat(" ", j.Indent))
	if err != nil {
		return err
	}

	out = append(out, '\n')

	_, err = os.Stdout.Write(out)

	return err
}
