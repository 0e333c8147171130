// Package cdl is the high-level entry point for working with CDL text: it
// ties the lexer, parser, and semantic builder into one-call helpers and
// drives emission of validated datasets to netCDF files.
package cdl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rockdoc/cdlgen/emit"
	"github.com/rockdoc/cdlgen/emit/ncfile"
	"github.com/rockdoc/cdlgen/lang"
	"github.com/rockdoc/cdlgen/model"
)

// Option configures a parse operation.
type Option func(*options)

type options struct {
	output string
}

// WithOutput makes the parse operation also emit the validated dataset to
// a classic-format netCDF file at path.
func WithOutput(path string) Option {
	return func(o *options) { o.output = path }
}

func makeOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Parse reads CDL text from r and returns the validated dataset.
func Parse(r io.Reader, opts ...Option) (*model.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return ParseString(string(data), opts...)
}

// ParseString parses CDL text held in a string.
func ParseString(source string, opts ...Option) (*model.Dataset, error) {
	root, err := lang.ParseString(source)
	if err != nil {
		return nil, err
	}

	ds, err := model.Build(root)
	if err != nil {
		return nil, err
	}

	if o := makeOptions(opts); o.output != "" {
		if err := Generate(ds, o.output); err != nil {
			return nil, err
		}
	}

	return ds, nil
}

// ParseFile parses the CDL file at path.
func ParseFile(path string, opts ...Option) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := Parse(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return ds, nil
}

// DefaultOutput returns the conventional output path for a dataset parsed
// from the given source file: the dataset's own name with a ".nc"
// extension, beside the source. An empty source places the file in the
// working directory.
func DefaultOutput(source string, ds *model.Dataset) string {
	dir := "."
	if source != "" {
		dir = filepath.Dir(source)
	}

	return filepath.Join(dir, ds.Name+".nc")
}

// Generate writes the dataset to a classic-format netCDF file at path.
func Generate(ds *model.Dataset, path string) error {
	return emit.Emit(ds, ncfile.New(path))
}
