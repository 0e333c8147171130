package emit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rockdoc/cdlgen/lang"
	"github.com/rockdoc/cdlgen/model"
	"github.com/rockdoc/cdlgen/nctype"
)

// recorder is an Engine that records the sequence of calls it receives and
// can be told to fail a specific operation.
type recorder struct {
	calls  []string
	failOn string
	errOut error
}

func (r *recorder) record(format string, args ...any) error {
	call := fmt.Sprintf(format, args...)
	r.calls = append(r.calls, call)

	if r.failOn != "" && call == r.failOn {
		return r.errOut
	}

	return nil
}

func (r *recorder) CreateDimension(name string, length int64, unlimited bool) error {
	return r.record("dim %s %d %t", name, length, unlimited)
}

func (r *recorder) CreateVariable(name string, typ nctype.Type, dims []string) error {
	return r.record("var %s %s %v", name, typ, dims)
}

func (r *recorder) SetAttribute(owner string, attr *model.Attribute) error {
	return r.record("attr %s:%s", owner, attr.Name)
}

func (r *recorder) WriteData(name string, values []model.Value) error {
	return r.record("data %s %d", name, len(values))
}

func (r *recorder) BeginGroup(name string) error {
	return r.record("begin %s", name)
}

func (r *recorder) EndGroup() error {
	return r.record("end")
}

func (r *recorder) Close() error {
	return r.record("close")
}

func buildDataset(t *testing.T, src string) *model.Dataset {
	t.Helper()

	root, err := lang.ParseString(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	ds, err := model.Build(root)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}

	return ds
}

const emitSrc = `
netcdf e {
dimensions:
	time = UNLIMITED ;
	x = 2 ;
variables:
	int v(time, x) ;
		v:units = "m" ;
	float s ;
	:title = "t" ;
data:
	v = 1, 2, 3, 4 ;
group: sub {
	dimensions:
		y = 1 ;
	variables:
		int w(y) ;
	data:
		w = 9 ;
}
}
`

func TestEmit_Order(t *testing.T) {
	rec := &recorder{}

	if err := Emit(buildDataset(t, emitSrc), rec); err != nil {
		t.Fatalf("emit error: %v", err)
	}

	want := []string{
		"dim time 2 true",
		"dim x 2 false",
		"var v int [time x]",
		"var s float []",
		"attr :title",
		"attr v:units",
		"data v 4",
		"begin sub",
		"dim y 1 false",
		"var w int [y]",
		"data w 1",
		"end",
		"close",
	}

	if len(rec.calls) != len(want) {
		t.Fatalf("expected %d calls, got %d: %v", len(want), len(rec.calls), rec.calls)
	}

	for i, call := range want {
		if rec.calls[i] != call {
			t.Errorf("call %d: expected %q, got %q", i, call, rec.calls[i])
		}
	}
}

func TestEmit_AbortsOnFailure(t *testing.T) {
	cause := errors.New("disk full")
	rec := &recorder{failOn: "var v int [time x]", errOut: cause}

	err := Emit(buildDataset(t, emitSrc), rec)
	if err == nil {
		t.Fatal("expected an error")
	}

	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected *IOError, got %T", err)
	}

	if !errors.Is(err, cause) {
		t.Error("expected the engine's error to be wrapped")
	}

	if ioErr.Op != "create variable" || ioErr.Name != "v" {
		t.Errorf("unexpected error context: %+v", ioErr)
	}

	// Emission stops at the failure; only the close call follows.
	last := rec.calls[len(rec.calls)-1]
	if last != "close" {
		t.Errorf("expected close after failure, got %q", last)
	}

	for _, call := range rec.calls {
		if call == "data v 4" {
			t.Error("emission continued past the failure")
		}
	}
}

func TestEmit_CloseErrorDoesNotMaskFailure(t *testing.T) {
	cause := errors.New("write failed")
	rec := &recorder{failOn: "data v 4", errOut: cause}

	err := Emit(buildDataset(t, emitSrc), rec)
	if !errors.Is(err, cause) {
		t.Fatalf("expected the original failure, got %v", err)
	}
}

func TestEmit_CloseErrorSurfacedWhenAlone(t *testing.T) {
	cause := errors.New("flush failed")
	rec := &recorder{failOn: "close", errOut: cause}

	err := Emit(buildDataset(t, emitSrc), rec)
	if !errors.Is(err, cause) {
		t.Fatalf("expected close error, got %v", err)
	}

	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "close" {
		t.Fatalf("expected close IOError, got %v", err)
	}
}

func TestEmit_SkipsVariablesWithoutData(t *testing.T) {
	rec := &recorder{}

	if err := Emit(buildDataset(t, emitSrc), rec); err != nil {
		t.Fatalf("emit error: %v", err)
	}

	for _, call := range rec.calls {
		if call == "data s 0" || call == "data s 1" {
			t.Error("expected no data write for variable without data")
		}
	}
}
