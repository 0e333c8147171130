// Package ncfile implements the emit.Engine interface on top of
// github.com/ctessum/cdf, producing classic-format netCDF files.
//
// The classic format has a separate define phase: the engine buffers all
// dimension, variable, and attribute definitions, materializes the file
// header on the first data write (or on Close for datasets without data),
// and then streams variable data. Classic files have no hierarchical
// groups, no 64-bit integer variables, and no string-typed variables; the
// engine rejects those constructs with descriptive errors.
package ncfile

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/ctessum/cdf"

	"github.com/rockdoc/cdlgen/model"
	"github.com/rockdoc/cdlgen/nctype"
)

// ErrNoGroups is returned when a dataset with nested groups is emitted to
// a classic-format file.
var ErrNoGroups = errors.New("classic netCDF format does not support groups")

type dimDef struct {
	name      string
	length    int64
	unlimited bool
}

type varDef struct {
	name string
	typ  nctype.Type
	dims []string
}

type attrDef struct {
	owner string
	attr  *model.Attribute
}

// Engine buffers dataset definitions and writes a classic netCDF file.
type Engine struct {
	path string

	dims  []dimDef
	vars  []varDef
	attrs []attrDef

	file      *os.File
	cdfFile   *cdf.File
	defined   bool
	hasRecord bool
	failed    bool
}

// New creates an engine that will write the netCDF file at path. No file
// is created until the define phase completes.
func New(path string) *Engine {
	return &Engine{path: path}
}

// fail marks the emission as failed so that Close discards the output
// instead of materializing it.
func (e *Engine) fail(err error) error {
	if err != nil {
		e.failed = true
	}

	return err
}

// discard closes and removes whatever partial output reached the disk.
func (e *Engine) discard() error {
	var err error

	if e.file != nil {
		err = e.file.Close()
		e.file = nil
	}

	if rerr := os.Remove(e.path); rerr != nil && !errors.Is(rerr, os.ErrNotExist) && err == nil {
		err = rerr
	}

	return err
}

// CreateDimension implements emit.Engine.
func (e *Engine) CreateDimension(name string, length int64, unlimited bool) error {
	if e.defined {
		return e.fail(errors.New("cannot add dimensions after the define phase"))
	}

	if unlimited {
		// The record dimension is encoded with length zero; its true length
		// is fixed up via UpdateNumRecs after the data is written.
		length = 0
		e.hasRecord = true
	}

	e.dims = append(e.dims, dimDef{name: name, length: length, unlimited: unlimited})

	return nil
}

// CreateVariable implements emit.Engine.
func (e *Engine) CreateVariable(name string, typ nctype.Type, dims []string) error {
	if e.defined {
		return e.fail(errors.New("cannot add variables after the define phase"))
	}

	if typ == nctype.String {
		return e.fail(fmt.Errorf(
			"variable %q: string variables are not representable in the classic format", name,
		))
	}

	e.vars = append(e.vars, varDef{name: name, typ: typ, dims: dims})

	return nil
}

// SetAttribute implements emit.Engine.
func (e *Engine) SetAttribute(owner string, attr *model.Attribute) error {
	if e.defined {
		return e.fail(errors.New("cannot add attributes after the define phase"))
	}

	e.attrs = append(e.attrs, attrDef{owner: owner, attr: attr})

	return nil
}

// BeginGroup implements emit.Engine. Classic files are flat, so any group
// fails the emission.
func (e *Engine) BeginGroup(string) error { return e.fail(ErrNoGroups) }

// EndGroup implements emit.Engine.
func (e *Engine) EndGroup() error { return e.fail(ErrNoGroups) }

// define materializes the buffered definitions into a cdf header and
// creates the output file.
func (e *Engine) define() error {
	if e.defined {
		return nil
	}

	names := make([]string, len(e.dims))
	lengths := make([]int, len(e.dims))

	for i, d := range e.dims {
		names[i] = d.name
		lengths[i] = int(d.length)

		if d.unlimited {
			lengths[i] = 0
		}
	}

	h := cdf.NewHeader(names, lengths)

	for _, v := range e.vars {
		proto, err := prototype(v.typ)
		if err != nil {
			return e.fail(fmt.Errorf("variable %q: %w", v.name, err))
		}

		h.AddVariable(v.name, v.dims, proto)
	}

	for _, a := range e.attrs {
		val, err := attrNative(a.attr)
		if err != nil {
			return e.fail(fmt.Errorf("attribute %s:%s: %w", a.owner, a.attr.Name, err))
		}

		h.AddAttribute(a.owner, a.attr.Name, val)
	}

	h.Define()

	for _, err := range h.Check() {
		return e.fail(fmt.Errorf("invalid netCDF header: %w", err))
	}

	f, err := os.Create(e.path)
	if err != nil {
		return e.fail(err)
	}

	cf, err := cdf.Create(f, h)
	if err != nil {
		f.Close()
		os.Remove(e.path)

		return e.fail(err)
	}

	e.file = f
	e.cdfFile = cf
	e.defined = true

	return nil
}

// WriteData implements emit.Engine. The first write ends the define phase.
func (e *Engine) WriteData(name string, values []model.Value) error {
	if err := e.define(); err != nil {
		return err
	}

	def, ok := e.findVar(name)
	if !ok {
		return e.fail(fmt.Errorf("variable %q was never defined", name))
	}

	begin, end, err := e.extent(def, len(values))
	if err != nil {
		return e.fail(err)
	}

	data, err := nativeSlice(def.typ, values)
	if err != nil {
		return e.fail(fmt.Errorf("variable %q: %w", name, err))
	}

	w := e.cdfFile.Writer(name, begin, end)
	if _, err := w.Write(data); err != nil {
		return e.fail(fmt.Errorf("writing variable %q: %w", name, err))
	}

	return nil
}

// Close implements emit.Engine. Datasets without data still produce a
// valid (empty) file. After a failed emission, Close removes any partial
// output instead, so a failure never leaves a .nc file behind.
func (e *Engine) Close() error {
	if e.failed {
		return e.discard()
	}

	if err := e.define(); err != nil {
		e.discard()

		return err
	}

	if e.hasRecord {
		if err := cdf.UpdateNumRecs(e.file); err != nil {
			e.discard()

			return err
		}
	}

	return e.file.Close()
}

func (e *Engine) findVar(name string) (varDef, bool) {
	for _, v := range e.vars {
		if v.name == name {
			return v, true
		}
	}

	return varDef{}, false
}

func (e *Engine) dimLength(name string) int64 {
	for _, d := range e.dims {
		if d.name == name {
			return d.length
		}
	}

	return 0
}

// extent computes the begin/end corners for a full write of the variable.
// For record variables the leading extent is the record count implied by
// the data length.
func (e *Engine) extent(def varDef, n int) (begin, end []int, err error) {
	if len(def.dims) == 0 {
		return nil, nil, nil
	}

	begin = make([]int, len(def.dims))
	end = make([]int, len(def.dims))

	record := 1

	for i, dim := range def.dims {
		end[i] = int(e.dimLength(dim))
		if i > 0 {
			record *= end[i]
		}
	}

	if end[0] == 0 { // record dimension
		if record == 0 || n%record != 0 {
			return nil, nil, fmt.Errorf(
				"variable %q: %d values do not fill whole records of %d",
				def.name, n, record,
			)
		}

		end[0] = n / record
	}

	return begin, end, nil
}

// prototype returns the value that fixes a variable's external type in the
// cdf header: a typed slice for numeric types, a string for char. The cdf
// package carries byte data as []uint8; the stored external type is still
// the signed NC_BYTE. The classic format has no 64-bit integers, so long
// maps to the 32-bit external type, as ncgen3 does.
func prototype(typ nctype.Type) (any, error) {
	switch typ {
	case nctype.Byte:
		return []uint8{0}, nil
	case nctype.Char:
		return "", nil
	case nctype.Short:
		return []int16{0}, nil
	case nctype.Int, nctype.Long:
		return []int32{0}, nil
	case nctype.Float:
		return []float32{0}, nil
	case nctype.Double:
		return []float64{0}, nil
	default:
		return nil, fmt.Errorf("no classic external type for %s", typ)
	}
}

// nativeSlice converts flattened values to the typed slice the cdf writer
// expects. Byte values are reinterpreted as their two's-complement bit
// pattern, since cdf carries NC_BYTE data in []uint8.
func nativeSlice(typ nctype.Type, values []model.Value) (any, error) {
	switch typ {
	case nctype.Byte:
		out := make([]uint8, len(values))
		for i, v := range values {
			out[i] = uint8(int8(v.Int64()))
		}

		return out, nil

	case nctype.Char:
		out := make([]byte, len(values))
		for i, v := range values {
			out[i] = byte(v.Int64())
		}

		return out, nil

	case nctype.Short:
		out := make([]int16, len(values))
		for i, v := range values {
			out[i] = int16(v.Int64())
		}

		return out, nil

	case nctype.Int, nctype.Long:
		out := make([]int32, len(values))

		for i, v := range values {
			n := v.Int64()
			if n < math.MinInt32 || n > math.MaxInt32 {
				return nil, fmt.Errorf(
					"value %d overflows the classic 32-bit integer type", n,
				)
			}

			out[i] = int32(n)
		}

		return out, nil

	case nctype.Float:
		out := make([]float32, len(values))
		for i, v := range values {
			out[i] = float32(v.Float64())
		}

		return out, nil

	case nctype.Double:
		out := make([]float64, len(values))
		for i, v := range values {
			out[i] = v.Float64()
		}

		return out, nil

	default:
		return nil, fmt.Errorf("no classic external type for %s", typ)
	}
}

// attrNative converts an attribute value into the representation the cdf
// header accepts: a string for text attributes, or a typed numeric slice.
// The classic format has a single flat char array per text attribute, so
// multiple string values are concatenated without a separator, as ncgen
// flattens them.
func attrNative(a *model.Attribute) (any, error) {
	switch a.Type {
	case nctype.String:
		parts := make([]string, len(a.Values))
		for i, v := range a.Values {
			parts[i] = v.Text()
		}

		return strings.Join(parts, ""), nil

	case nctype.Char:
		buf := make([]byte, len(a.Values))
		for i, v := range a.Values {
			buf[i] = byte(v.Int64())
		}

		return string(buf), nil

	case nctype.Byte:
		out := make([]uint8, len(a.Values))
		for i, v := range a.Values {
			out[i] = uint8(int8(v.Int64()))
		}

		return out, nil

	case nctype.Short:
		out := make([]int16, len(a.Values))
		for i, v := range a.Values {
			out[i] = int16(v.Int64())
		}

		return out, nil

	case nctype.Int, nctype.Long:
		out := make([]int32, len(a.Values))

		for i, v := range a.Values {
			n := v.Int64()
			if n < math.MinInt32 || n > math.MaxInt32 {
				return nil, fmt.Errorf(
					"value %d overflows the classic 32-bit integer type", n,
				)
			}

			out[i] = int32(n)
		}

		return out, nil

	case nctype.Float:
		out := make([]float32, len(a.Values))
		for i, v := range a.Values {
			out[i] = float32(v.Float64())
		}

		return out, nil

	case nctype.Double:
		out := make([]float64, len(a.Values))
		for i, v := range a.Values {
			out[i] = v.Float64()
		}

		return out, nil

	default:
		return nil, fmt.Errorf("no attribute representation for %s", a.Type)
	}
}
