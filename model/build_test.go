package model

import (
	"errors"
	"testing"

	"github.com/rockdoc/cdlgen/lang"
	"github.com/rockdoc/cdlgen/nctype"
)

func build(t *testing.T, src string) *Dataset {
	t.Helper()

	root, err := lang.ParseString(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	ds, err := Build(root)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}

	return ds
}

func buildErr(t *testing.T, src string) *SemanticError {
	t.Helper()

	root, err := lang.ParseString(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	_, err = Build(root)
	if err == nil {
		t.Fatal("expected a semantic error")
	}

	var semErr *SemanticError
	if !errors.As(err, &semErr) {
		t.Fatalf("expected *SemanticError, got %T: %v", err, err)
	}

	return semErr
}

func TestBuild_Basic(t *testing.T) {
	ds := build(t, `
netcdf station {
dimensions:
	time = UNLIMITED ;
	lat = 2, lon = 3 ;
variables:
	float temp(time, lat, lon) ;
		temp:units = "celsius" ;
	double scale ;
	:title = "surface report" ;
data:
	scale = 0.5 ;
}
`)

	if ds.Name != "station" {
		t.Errorf("expected name %q, got %q", "station", ds.Name)
	}

	if len(ds.Dimensions) != 3 || !ds.Dimensions[0].Unlimited {
		t.Fatalf("unexpected dimensions: %+v", ds.Dimensions)
	}

	temp := ds.Variable("temp")
	if temp == nil || temp.Type != nctype.Float || len(temp.Dims) != 3 {
		t.Fatalf("unexpected variable temp: %+v", temp)
	}

	if temp.Dims[1] != ds.Dimension("lat") {
		t.Error("expected temp dims to reference the declared dimension objects")
	}

	units := temp.Attribute("units")
	if units == nil || units.Type != nctype.String || units.Values[0].Text() != "celsius" {
		t.Errorf("unexpected units attribute: %+v", units)
	}

	title := ds.Attribute("title")
	if title == nil || !title.Scalar() {
		t.Errorf("unexpected global attribute: %+v", title)
	}

	scale := ds.Variable("scale")
	if len(scale.Data) != 1 || scale.Data[0].Float64() != 0.5 {
		t.Errorf("unexpected scalar data: %+v", scale.Data)
	}
}

func TestBuild_DataConversion(t *testing.T) {
	ds := build(t, `
netcdf conv {
dimensions:
	x = 3 ;
variables:
	double v(x) ;
data:
	v = 1, 2.5, 3s ;
}
`)

	v := ds.Variable("v")
	for i, want := range []float64{1, 2.5, 3} {
		if v.Data[i].Type() != nctype.Double || v.Data[i].Float64() != want {
			t.Errorf("value %d: expected double %v, got %v", i, want, v.Data[i])
		}
	}
}

func TestBuild_UnlimitedInference(t *testing.T) {
	ds := build(t, `
netcdf rec {
dimensions:
	time = UNLIMITED ;
	x = 2 ;
variables:
	int a(time, x) ;
	int b(time) ;
data:
	a = 1, 2, 3, 4, 5, 6 ;
	b = 1, 2 ;
}
`)

	// a writes 3 records of size 2; b writes 2 records. The shared
	// unlimited dimension grows to the longest.
	if got := ds.Dimension("time").Length; got != 3 {
		t.Errorf("expected inferred length 3, got %d", got)
	}
}

func TestBuild_UnlimitedDivisibility(t *testing.T) {
	semErr := buildErr(t, `
netcdf rec {
dimensions:
	time = UNLIMITED ;
	x = 2 ;
variables:
	int a(time, x) ;
data:
	a = 1, 2, 3 ;
}
`)

	if semErr.Kind != ShapeMismatch {
		t.Errorf("expected ShapeMismatch, got %v", semErr.Kind)
	}
}

func TestBuild_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "fixed shape short",
			src: `netcdf s { dimensions: x = 3 ;
variables: int v(x) ; data: v = 1, 2 ; }`,
		},
		{
			name: "fixed shape long",
			src: `netcdf s { dimensions: x = 2 ;
variables: int v(x) ; data: v = 1, 2, 3 ; }`,
		},
		{
			name: "scalar with two values",
			src:  `netcdf s { variables: int v ; data: v = 1, 2 ; }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if kind := buildErr(t, tt.src).Kind; kind != ShapeMismatch {
				t.Errorf("expected ShapeMismatch, got %v", kind)
			}
		})
	}
}

func TestBuild_Duplicates(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "dimension",
			src:  `netcdf d { dimensions: x = 1 ; x = 2 ; }`,
		},
		{
			name: "variable",
			src:  `netcdf d { variables: int v ; float v ; }`,
		},
		{
			name: "global attribute",
			src:  `netcdf d { :a = 1 ; :a = 2 ; }`,
		},
		{
			name: "variable attribute",
			src:  `netcdf d { variables: int v ; v:a = 1 ; v:a = 2 ; }`,
		},
		{
			name: "data assignment",
			src:  `netcdf d { variables: int v ; data: v = 1 ; v = 2 ; }`,
		},
		{
			name: "group",
			src:  `netcdf d { group: g { } group: g { } }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if kind := buildErr(t, tt.src).Kind; kind != DuplicateName {
				t.Errorf("expected DuplicateName, got %v", kind)
			}
		})
	}
}

func TestBuild_UndefinedReferences(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "dimension",
			src:  `netcdf u { variables: int v(missing) ; }`,
		},
		{
			name: "attribute owner",
			src:  `netcdf u { variables: missing:a = 1 ; }`,
		},
		{
			name: "data variable",
			src:  `netcdf u { data: missing = 1 ; }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if kind := buildErr(t, tt.src).Kind; kind != UndefinedReference {
				t.Errorf("expected UndefinedReference, got %v", kind)
			}
		})
	}
}

func TestBuild_Suggestions(t *testing.T) {
	semErr := buildErr(t, `
netcdf s {
dimensions:
	latitude = 4 ;
variables:
	int v(latitud) ;
}
`)

	if semErr.Kind != UndefinedReference {
		t.Fatalf("expected UndefinedReference, got %v", semErr.Kind)
	}

	found := false

	for _, s := range semErr.Suggestions {
		if s == "latitude" {
			found = true
		}
	}

	if !found {
		t.Errorf("expected %q among suggestions %v", "latitude", semErr.Suggestions)
	}
}

func TestBuild_UnlimitedErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "two unlimited in one scope",
			src:  `netcdf u { dimensions: t = UNLIMITED ; r = UNLIMITED ; }`,
		},
		{
			name: "unlimited not first",
			src: `netcdf u { dimensions: t = UNLIMITED ; x = 2 ;
variables: int v(x, t) ; }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if kind := buildErr(t, tt.src).Kind; kind != InvalidUnlimited {
				t.Errorf("expected InvalidUnlimited, got %v", kind)
			}
		})
	}
}

func TestBuild_InvalidDimensionLength(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "zero", src: `netcdf i { dimensions: x = 0 ; }`},
		{name: "negative", src: `netcdf i { dimensions: x = -3 ; }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if kind := buildErr(t, tt.src).Kind; kind != InvalidDimension {
				t.Errorf("expected InvalidDimension, got %v", kind)
			}
		})
	}
}

func TestBuild_AttributeWidening(t *testing.T) {
	ds := build(t, `
netcdf a {
variables:
	int v ;
	v:range = 1b, 200s, 3.5 ;
	v:counts = 1, 2, 3 ;
}
`)

	v := ds.Variable("v")

	r := v.Attribute("range")
	if r.Type != nctype.Double {
		t.Errorf("expected mixed attribute to widen to double, got %v", r.Type)
	}

	for i, want := range []float64{1, 200, 3.5} {
		if r.Values[i].Float64() != want {
			t.Errorf("value %d: expected %v, got %v", i, want, r.Values[i])
		}
	}

	c := v.Attribute("counts")
	if c.Type != nctype.Int {
		t.Errorf("expected int attribute, got %v", c.Type)
	}
}

func TestBuild_AttributeTypeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "mixed string and numeric",
			src:  `netcdf a { :bad = "text", 42 ; }`,
		},
		{
			name: "fill value wrong type",
			src: `netcdf a { variables: short v ;
v:_FillValue = "not a number" ; }`,
		},
		{
			name: "fill value out of range",
			src: `netcdf a { variables: byte v ;
v:_FillValue = 999s ; }`,
		},
		{
			name: "real data for integral variable",
			src: `netcdf a { variables: int v ;
data: v = 1.5 ; }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if kind := buildErr(t, tt.src).Kind; kind != IncompatibleType {
				t.Errorf("expected IncompatibleType, got %v", kind)
			}
		})
	}
}

func TestBuild_FillValueCoercion(t *testing.T) {
	ds := build(t, `
netcdf f {
variables:
	short v ;
	v:_FillValue = -1 ;
}
`)

	fv := ds.Variable("v").Attribute("_FillValue")
	if fv.Type != nctype.Short || fv.Values[0].Int64() != -1 {
		t.Errorf("expected short fill value -1, got %+v", fv)
	}
}

func TestBuild_FillMarker(t *testing.T) {
	ds := build(t, `
netcdf f {
dimensions:
	x = 3 ;
variables:
	int a(x) ;
	int b(x) ;
	b:_FillValue = -999 ;
data:
	a = 1, _, 3 ;
	b = _, 2, _ ;
}
`)

	a := ds.Variable("a")
	if a.Data[1].Int64() != int64(nctype.FillInt) {
		t.Errorf("expected default fill %d, got %d", nctype.FillInt, a.Data[1].Int64())
	}

	b := ds.Variable("b")
	if b.Data[0].Int64() != -999 || b.Data[2].Int64() != -999 {
		t.Errorf("expected explicit fill -999, got %v", b.Data)
	}
}

func TestBuild_CharStringData(t *testing.T) {
	ds := build(t, `
netcdf c {
dimensions:
	n = 2, len = 5 ;
variables:
	char names(n, len) ;
data:
	names = "ab", "cdefg" ;
}
`)

	names := ds.Variable("names")
	if len(names.Data) != 10 {
		t.Fatalf("expected 10 chars, got %d", len(names.Data))
	}

	// "ab" is NUL-padded to the row width.
	row := make([]byte, 5)
	for i := range row {
		row[i] = byte(names.Data[i].Int64())
	}

	if string(row) != "ab\x00\x00\x00" {
		t.Errorf("unexpected first row: %q", row)
	}
}

func TestBuild_CharStringTooLong(t *testing.T) {
	semErr := buildErr(t, `
netcdf c {
dimensions:
	len = 3 ;
variables:
	char name(len) ;
data:
	name = "toolong" ;
}
`)

	if semErr.Kind != ShapeMismatch {
		t.Errorf("expected ShapeMismatch, got %v", semErr.Kind)
	}
}

func TestBuild_GroupScopes(t *testing.T) {
	ds := build(t, `
netcdf root {
dimensions:
	x = 4 ;
group: child {
	variables:
		int v(x) ;
	group: inner {
		dimensions:
			x = 2 ;
		variables:
			int w(x) ;
	}
}
}
`)

	child := ds.Group("child")
	if child == nil || child.Parent() != ds {
		t.Fatal("expected child group with parent back-reference")
	}

	// v(x) resolves x from the root scope.
	v := child.Variable("v")
	if v.Dims[0] != ds.Dimension("x") {
		t.Error("expected v to bind the root dimension x")
	}

	// inner redeclares x, shadowing the root's.
	inner := child.Group("inner")

	w := inner.Variable("w")
	if w.Dims[0] != inner.Dimension("x") || w.Dims[0].Length != 2 {
		t.Error("expected w to bind the shadowing local dimension x")
	}
}

func TestBuild_SecondUnlimitedInChildGroup(t *testing.T) {
	// Each group scope allows its own unlimited dimension.
	ds := build(t, `
netcdf u {
dimensions:
	t = UNLIMITED ;
group: g {
	dimensions:
		r = UNLIMITED ;
}
}
`)

	if !ds.Group("g").Dimension("r").Unlimited {
		t.Error("expected child group's own unlimited dimension")
	}
}

func TestBuild_CharDataFromCharLiterals(t *testing.T) {
	ds := build(t, `
netcdf c {
dimensions:
	n = 3 ;
variables:
	char v(n) ;
data:
	v = 'a', 'b', 'c' ;
}
`)

	v := ds.Variable("v")
	if byte(v.Data[0].Int64()) != 'a' || byte(v.Data[2].Int64()) != 'c' {
		t.Errorf("unexpected char data: %v", v.Data)
	}
}
