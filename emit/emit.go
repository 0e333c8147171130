// Package emit replays a resolved dataset model against a storage engine in
// fixed dependency order: dimensions, then variables, then attributes, then
// data, recursing into nested groups only after the parent's own sections
// are fully emitted.
//
// The emitter performs no semantic validation; the builder's contract
// guarantees every invariant before a Dataset reaches this package. Any
// engine failure aborts emission immediately and is surfaced as an
// [*IOError] wrapping the engine's own error.
package emit

import (
	"fmt"
	"log/slog"

	"github.com/rockdoc/cdlgen/model"
	"github.com/rockdoc/cdlgen/nctype"
)

// Engine is the storage backend consumed by Emit. Implementations receive
// creation calls in dependency order and may defer physical work (for
// example, formats with a separate define phase may buffer definitions
// until the first WriteData or Close).
//
// The owner argument of SetAttribute is the variable name, or "" for a
// dataset-global attribute. BeginGroup and EndGroup bracket the emission of
// a nested group; engines for formats without hierarchical groups should
// fail BeginGroup.
type Engine interface {
	CreateDimension(name string, length int64, unlimited bool) error
	CreateVariable(name string, typ nctype.Type, dims []string) error
	SetAttribute(owner string, attr *model.Attribute) error
	WriteData(name string, values []model.Value) error
	BeginGroup(name string) error
	EndGroup() error
	Close() error
}

// IOError wraps a failure returned by the storage engine during emission.
// The engine's error is surfaced verbatim via Unwrap.
type IOError struct {
	Op   string // the engine operation that failed
	Name string // the dimension, variable, attribute, or group involved
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("storage engine: %s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("storage engine: %s %q: %v", e.Op, e.Name, e.Err)
}

// Unwrap returns the engine's original error.
func (e *IOError) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer.
func (e *IOError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("op", e.Op),
		slog.String("name", e.Name),
		slog.Any("cause", e.Err),
	)
}

// Emit replays the dataset against the engine and closes the engine. The
// first failure aborts emission; the engine is still closed, but a close
// error never masks the original failure.
func Emit(ds *model.Dataset, eng Engine) error {
	err := emitGroup(ds, eng)

	if cerr := eng.Close(); cerr != nil && err == nil {
		err = &IOError{Op: "close", Err: cerr}
	}

	return err
}

func emitGroup(ds *model.Dataset, eng Engine) error {
	for _, d := range ds.Dimensions {
		if err := eng.CreateDimension(d.Name, d.Length, d.Unlimited); err != nil {
			return &IOError{Op: "create dimension", Name: d.Name, Err: err}
		}
	}

	for _, v := range ds.Variables {
		dims := make([]string, len(v.Dims))
		for i, d := range v.Dims {
			dims[i] = d.Name
		}

		if err := eng.CreateVariable(v.Name, v.Type, dims); err != nil {
			return &IOError{Op: "create variable", Name: v.Name, Err: err}
		}
	}

	for _, a := range ds.Attributes {
		if err := eng.SetAttribute("", a); err != nil {
			return &IOError{Op: "set attribute", Name: a.Name, Err: err}
		}
	}

	for _, v := range ds.Variables {
		for _, a := range v.Attributes {
			if err := eng.SetAttribute(v.Name, a); err != nil {
				return &IOError{
					Op:   "set attribute",
					Name: v.Name + ":" + a.Name,
					Err:  err,
				}
			}
		}
	}

	for _, v := range ds.Variables {
		if v.Data == nil {
			continue
		}

		if err := eng.WriteData(v.Name, v.Data); err != nil {
			return &IOError{Op: "write data", Name: v.Name, Err: err}
		}
	}

	for _, g := range ds.Groups {
		if err := eng.BeginGroup(g.Name); err != nil {
			return &IOError{Op: "begin group", Name: g.Name, Err: err}
		}

		if err := emitGroup(g, eng); err != nil {
			return err
		}

		if err := eng.EndGroup(); err != nil {
			return &IOError{Op: "end group", Name: g.Name, Err: err}
		}
	}

	return nil
}
