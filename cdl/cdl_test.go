package cdl

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rockdoc/cdlgen/lang"
	"github.com/rockdoc/cdlgen/model"
)

const sample = `
netcdf sample {
dimensions:
	x = 2 ;
variables:
	int v(x) ;
data:
	v = 1, 2 ;
}
`

func TestParseString(t *testing.T) {
	ds, err := ParseString(sample)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if ds.Name != "sample" || ds.Variable("v") == nil {
		t.Errorf("unexpected dataset: %+v", ds)
	}
}

func TestParseString_SyntaxError(t *testing.T) {
	_, err := ParseString("netcdf broken {")
	if err == nil {
		t.Fatal("expected an error")
	}

	var synErr *lang.SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("expected *lang.SyntaxError, got %T", err)
	}
}

func TestParseString_SemanticError(t *testing.T) {
	_, err := ParseString("netcdf broken { variables: int v(nope) ; }")
	if err == nil {
		t.Fatal("expected an error")
	}

	var semErr *model.SemanticError
	if !errors.As(err, &semErr) {
		t.Fatalf("expected *model.SemanticError, got %T", err)
	}
}

func TestParse_Reader(t *testing.T) {
	ds, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if ds.Name != "sample" {
		t.Errorf("unexpected dataset name %q", ds.Name)
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.cdl")

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	ds, err := ParseFile(path)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if ds.Name != "sample" {
		t.Errorf("unexpected dataset name %q", ds.Name)
	}
}

func TestParseFile_ErrorNamesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.cdl")

	if err := os.WriteFile(path, []byte("netcdf broken {"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ParseFile(path)
	if err == nil || !strings.Contains(err.Error(), "broken.cdl") {
		t.Errorf("expected error to name the file, got %v", err)
	}
}

func TestDefaultOutput(t *testing.T) {
	ds, err := ParseString(sample)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{name: "beside source", source: "/data/in/sample.cdl", want: "/data/in/sample.nc"},
		{name: "relative source", source: "sample.cdl", want: "sample.nc"},
		{name: "stdin", source: "", want: "sample.nc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultOutput(tt.source, ds); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	ds, err := ParseString(sample)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "sample.nc")

	if err := Generate(ds, path); err != nil {
		t.Fatalf("generate error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Classic netCDF magic.
	if len(data) < 4 || string(data[:3]) != "CDF" {
		t.Errorf("output is not a classic netCDF file: % x", data[:min(len(data), 4)])
	}
}

func TestGenerate_ByteData(t *testing.T) {
	ds, err := ParseString(`
netcdf bytes {
dimensions:
	x = 2 ;
variables:
	byte v(x) ;
	v:valid_min = -2b ;
data:
	v = -2b, 3b ;
}
`)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "bytes.nc")

	if err := Generate(ds, path); err != nil {
		t.Fatalf("generate error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(data) < 4 || string(data[:3]) != "CDF" {
		t.Errorf("output is not a classic netCDF file: % x", data[:min(len(data), 4)])
	}
}

func TestParseString_WithOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.nc")

	ds, err := ParseString(sample, WithOutput(path))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if ds.Name != "sample" {
		t.Errorf("unexpected dataset name %q", ds.Name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}

	if len(data) < 4 || string(data[:3]) != "CDF" {
		t.Errorf("output is not a classic netCDF file: % x", data[:min(len(data), 4)])
	}
}

func TestGenerate_RejectsGroups(t *testing.T) {
	ds, err := ParseString("netcdf g { group: sub { } }")
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "g.nc")

	if err := Generate(ds, path); err == nil {
		t.Fatal("expected groups to be rejected by the classic format")
	}

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("no output file should remain after a failed generate, stat: %v", err)
	}
}
