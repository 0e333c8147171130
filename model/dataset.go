// Package model defines the resolved dataset model produced by the
// semantic builder: dimensions, typed variables, attributes, and flattened
// data, organized into a tree of hierarchical groups.
package model

import "github.com/rockdoc/cdlgen/nctype"

// Dimension is a named axis with a fixed positive length, or an unlimited
// axis whose length is inferred from the data written along it.
type Dimension struct {
	Name      string
	Length    int64
	Unlimited bool
}

// Attribute is a named, typed metadata value attached to a variable or to
// a dataset globally. Values holds one element for a scalar attribute, or
// several for a sequence; string attributes hold String values.
type Attribute struct {
	Name   string
	Type   nctype.Type
	Values []Value
}

// Scalar reports whether the attribute holds exactly one value.
func (a *Attribute) Scalar() bool { return len(a.Values) == 1 }

// Variable is a typed multi-dimensional variable. Dims references the
// resolved Dimension objects, which may live in an ancestor group's scope.
// Data, when present, is the validated row-major flattening of the
// variable's declared shape.
type Variable struct {
	Name       string
	Type       nctype.Type
	Dims       []*Dimension
	Attributes []*Attribute
	Data       []Value
}

// Attribute returns the named attribute, or nil.
func (v *Variable) Attribute(name string) *Attribute {
	for _, a := range v.Attributes {
		if a.Name == name {
			return a
		}
	}

	return nil
}

// Scalar reports whether the variable has no dimensions.
func (v *Variable) Scalar() bool { return len(v.Dims) == 0 }

// FillValue returns the variable's explicit _FillValue attribute value if
// declared, else the default fill value for its element type.
func (v *Variable) FillValue() Value {
	if a := v.Attribute("_FillValue"); a != nil && len(a.Values) == 1 {
		return a.Values[0]
	}

	return DefaultFill(v.Type)
}

// Dataset is the fully resolved model of one CDL group: every dimension
// reference is bound, every name is unique within its scope, and all data
// is flattened and validated against its declared shape. Nested groups are
// child Datasets whose namespaces layer atop (not merge into) this one.
//
// A Dataset is built once per parse and owned by the caller afterwards; the
// builder never shares state between parses.
type Dataset struct {
	Name string

	Dimensions []*Dimension
	Variables  []*Variable
	Attributes []*Attribute
	Groups     []*Dataset

	// parent is a non-owning back-reference used for outward scope lookup.
	// It is nil on the root dataset.
	parent *Dataset
}

// Parent returns the enclosing dataset, or nil at the root.
func (ds *Dataset) Parent() *Dataset { return ds.parent }

// Dimension returns the named dimension declared in this scope, or nil.
func (ds *Dataset) Dimension(name string) *Dimension {
	for _, d := range ds.Dimensions {
		if d.Name == name {
			return d
		}
	}

	return nil
}

// Variable returns the named variable declared in this scope, or nil.
func (ds *Dataset) Variable(name string) *Variable {
	for _, v := range ds.Variables {
		if v.Name == name {
			return v
		}
	}

	return nil
}

// Attribute returns the named global attribute of this scope, or nil.
func (ds *Dataset) Attribute(name string) *Attribute {
	for _, a := range ds.Attributes {
		if a.Name == name {
			return a
		}
	}

	return nil
}

// Group returns the named child group, or nil.
func (ds *Dataset) Group(name string) *Dataset {
	for _, g := range ds.Groups {
		if g.Name == name {
			return g
		}
	}

	return nil
}

// ResolveDimension looks up a dimension by name, walking from this scope
// outward to the root. A local declaration shadows a same-named ancestor.
func (ds *Dataset) ResolveDimension(name string) *Dimension {
	for s := ds; s != nil; s = s.parent {
		if d := s.Dimension(name); d != nil {
			return d
		}
	}

	return nil
}

// ResolveVariable looks up a variable by name through the scope chain.
func (ds *Dataset) ResolveVariable(name string) *Variable {
	for s := ds; s != nil; s = s.parent {
		if v := s.Variable(name); v != nil {
			return v
		}
	}

	return nil
}

// Shape returns the declared dimension lengths of a variable in order.
// Unlimited dimensions report their current (inferred) length.
func (v *Variable) Shape() []int64 {
	shape := make([]int64, len(v.Dims))
	for i, d := range v.Dims {
		shape[i] = d.Length
	}

	return shape
}

// Equal reports whether two datasets have identical dimension, variable,
// attribute, and group structure, with equal data values. Order matters,
// matching the deterministic order the builder produces.
func (ds *Dataset) Equal(o *Dataset) bool {
	if ds.Name != o.Name ||
		len(ds.Dimensions) != len(o.Dimensions) ||
		len(ds.Variables) != len(o.Variables) ||
		len(ds.Attributes) != len(o.Attributes) ||
		len(ds.Groups) != len(o.Groups) {
		return false
	}

	for i, d := range ds.Dimensions {
		od := o.Dimensions[i]
		if d.Name != od.Name || d.Length != od.Length ||
			d.Unlimited != od.Unlimited {
			return false
		}
	}

	for i, v := range ds.Variables {
		if !v.equal(o.Variables[i]) {
			return false
		}
	}

	for i, a := range ds.Attributes {
		if !a.equal(o.Attributes[i]) {
			return false
		}
	}

	for i, g := range ds.Groups {
		if !g.Equal(o.Groups[i]) {
			return false
		}
	}

	return true
}

func (v *Variable) equal(o *Variable) bool {
	if v.Name != o.Name || v.Type != o.Type ||
		len(v.Dims) != len(o.Dims) ||
		len(v.Attributes) != len(o.Attributes) ||
		len(v.Data) != len(o.Data) {
		return false
	}

	for i, d := range v.Dims {
		if d.Name != o.Dims[i].Name {
			return false
		}
	}

	for i, a := range v.Attributes {
		if !a.equal(o.Attributes[i]) {
			return false
		}
	}

	for i, val := range v.Data {
		if !val.Equal(o.Data[i]) {
			return false
		}
	}

	return true
}

func (a *Attribute) equal(o *Attribute) bool {
	if a.Name != o.Name || a.Type != o.Type || len(a.Values) != len(o.Values) {
		return false
	}

	for i, v := range a.Values {
		if !v.Equal(o.Values[i]) {
			return false
		}
	}

	return true
}
