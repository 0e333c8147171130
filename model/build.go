package model

import (
	"fmt"

	"github.com/rockdoc/cdlgen/lang"
	"github.com/rockdoc/cdlgen/lang/token"
	"github.com/rockdoc/cdlgen/nctype"
)

// Build walks a parsed AST group and produces a validated Dataset, or fails
// with a *SemanticError at the first violated invariant. The builder holds
// no state outside the Dataset under construction, so concurrent builds are
// independent.
//
// Nested groups are built recursively: each child group's namespaces layer
// atop the parent's for read-only lookup, and a local declaration shadows a
// same-named declaration in an ancestor.
func Build(root *lang.Group) (*Dataset, error) {
	return buildGroup(root, nil)
}

func buildGroup(g *lang.Group, parent *Dataset) (*Dataset, error) {
	ds := &Dataset{Name: g.Name, parent: parent}

	if err := buildDimensions(ds, g); err != nil {
		return nil, err
	}

	if err := buildVariables(ds, g); err != nil {
		return nil, err
	}

	if err := buildAttributes(ds, g); err != nil {
		return nil, err
	}

	if err := buildData(ds, g); err != nil {
		return nil, err
	}

	for _, child := range g.Groups {
		if ds.Group(child.Name) != nil {
			return nil, &SemanticError{
				Kind:   DuplicateName,
				Name:   child.Name,
				Pos:    child.Pos,
				Detail: fmt.Sprintf("group %q declared twice", child.Name),
			}
		}

		built, err := buildGroup(child, ds)
		if err != nil {
			return nil, err
		}

		ds.Groups = append(ds.Groups, built)
	}

	return ds, nil
}

func buildDimensions(ds *Dataset, g *lang.Group) error {
	for _, decl := range g.Dimensions {
		if ds.Dimension(decl.Name) != nil {
			return &SemanticError{
				Kind:   DuplicateName,
				Name:   decl.Name,
				Pos:    decl.Pos,
				Detail: fmt.Sprintf("dimension %q declared twice", decl.Name),
			}
		}

		if decl.Unlimited {
			for _, d := range ds.Dimensions {
				if d.Unlimited {
					return &SemanticError{
						Kind: InvalidUnlimited,
						Name: decl.Name,
						Pos:  decl.Pos,
						Detail: fmt.Sprintf(
							"dimension %q: only one UNLIMITED dimension is allowed per group (%q is already unlimited)",
							decl.Name, d.Name,
						),
					}
				}
			}
		} else if decl.Length <= 0 {
			return &SemanticError{
				Kind: InvalidDimension,
				Name: decl.Name,
				Pos:  decl.Pos,
				Detail: fmt.Sprintf(
					"length of dimension %q must be positive, got %d",
					decl.Name, decl.Length,
				),
			}
		}

		ds.Dimensions = append(ds.Dimensions, &Dimension{
			Name:      decl.Name,
			Length:    decl.Length,
			Unlimited: decl.Unlimited,
		})
	}

	return nil
}

func buildVariables(ds *Dataset, g *lang.Group) error {
	for _, decl := range g.Variables {
		if ds.Variable(decl.Name) != nil {
			return &SemanticError{
				Kind:   DuplicateName,
				Name:   decl.Name,
				Pos:    decl.Pos,
				Detail: fmt.Sprintf("variable %q declared twice", decl.Name),
			}
		}

		v := &Variable{Name: decl.Name, Type: decl.Type}

		for i, dimName := range decl.Dims {
			dim := ds.ResolveDimension(dimName)
			if dim == nil {
				return &SemanticError{
					Kind: UndefinedReference,
					Name: dimName,
					Pos:  decl.Pos,
					Detail: fmt.Sprintf(
						"variable %q references undeclared dimension %q",
						decl.Name, dimName,
					),
					Suggestions: suggest(dimName, visibleDimensions(ds)),
				}
			}

			if dim.Unlimited && i != 0 {
				return &SemanticError{
					Kind: InvalidUnlimited,
					Name: dimName,
					Pos:  decl.Pos,
					Detail: fmt.Sprintf(
						"variable %q: unlimited dimension %q must be the first (outermost) dimension",
						decl.Name, dimName,
					),
				}
			}

			v.Dims = append(v.Dims, dim)
		}

		ds.Variables = append(ds.Variables, v)
	}

	return nil
}

func buildAttributes(ds *Dataset, g *lang.Group) error {
	for _, decl := range g.Attributes {
		if decl.Var == "" {
			if ds.Attribute(decl.Name) != nil {
				return &SemanticError{
					Kind:   DuplicateName,
					Name:   decl.Name,
					Pos:    decl.Pos,
					Detail: fmt.Sprintf("global attribute %q declared twice", decl.Name),
				}
			}

			attr, err := buildAttrValue(decl)
			if err != nil {
				return err
			}

			ds.Attributes = append(ds.Attributes, attr)

			continue
		}

		v := ds.ResolveVariable(decl.Var)
		if v == nil {
			return &SemanticError{
				Kind: UndefinedReference,
				Name: decl.Var,
				Pos:  decl.Pos,
				Detail: fmt.Sprintf(
					"attribute %s:%s: variable %q is not defined or its declaration follows this reference",
					decl.Var, decl.Name, decl.Var,
				),
				Suggestions: suggest(decl.Var, visibleVariables(ds)),
			}
		}

		if v.Attribute(decl.Name) != nil {
			return &SemanticError{
				Kind:   DuplicateName,
				Name:   decl.Name,
				Pos:    decl.Pos,
				Detail: fmt.Sprintf("attribute %s:%s declared twice", decl.Var, decl.Name),
			}
		}

		attr, err := buildAttrValue(decl)
		if err != nil {
			return err
		}

		// _FillValue is type-constrained: it must coerce losslessly to the
		// owning variable's element type.
		if decl.Name == "_FillValue" {
			if err := coerceAttr(attr, v.Type); err != nil {
				return &SemanticError{
					Kind: IncompatibleType,
					Name: decl.Name,
					Pos:  decl.Pos,
					Detail: fmt.Sprintf(
						"_FillValue for %s variable %q: %v", v.Type, v.Name, err,
					),
				}
			}
		}

		v.Attributes = append(v.Attributes, attr)
	}

	return nil
}

// buildAttrValue converts an attribute's literal tokens into a typed value
// list. Numeric values are widened to a single common element type; strings
// and numerics cannot be mixed.
func buildAttrValue(decl *lang.AttributeDecl) (*Attribute, error) {
	values := make([]Value, 0, len(decl.Values))
	for _, tok := range decl.Values {
		values = append(values, FromToken(tok))
	}

	strings, numerics := 0, 0

	target := nctype.Invalid
	for _, v := range values {
		if v.Type() == nctype.String {
			strings++

			continue
		}

		numerics++

		if widenRank(v.Type()) > widenRank(target) {
			target = v.Type()
		}
	}

	if strings > 0 && numerics > 0 {
		return nil, &SemanticError{
			Kind:   IncompatibleType,
			Name:   decl.Name,
			Pos:    decl.Pos,
			Detail: fmt.Sprintf("attribute %q mixes string and numeric values", decl.Name),
		}
	}

	attr := &Attribute{Name: decl.Name}

	if strings > 0 {
		attr.Type = nctype.String
		attr.Values = values

		return attr, nil
	}

	if err := unifyValues(values, target); err != nil {
		return nil, &SemanticError{
			Kind:   IncompatibleType,
			Name:   decl.Name,
			Pos:    decl.Pos,
			Detail: fmt.Sprintf("attribute %q: %v", decl.Name, err),
		}
	}

	attr.Type = target
	attr.Values = values

	return attr, nil
}

// widenRank orders numeric types for attribute unification. Char constants
// widen as bytes, matching ncgen.
func widenRank(t nctype.Type) int {
	if t == nctype.Char {
		t = nctype.Byte
	}

	if !t.Numeric() {
		return 0
	}

	r := 0
	for _, u := range []nctype.Type{
		nctype.Byte, nctype.Short, nctype.Int,
		nctype.Long, nctype.Float, nctype.Double,
	} {
		r++
		if t == u {
			return r
		}
	}

	return 0
}

func unifyValues(values []Value, target nctype.Type) error {
	for i, v := range values {
		cv, err := v.Convert(target)
		if err != nil {
			return err
		}

		values[i] = cv
	}

	return nil
}

func coerceAttr(attr *Attribute, target nctype.Type) error {
	if !attr.Scalar() {
		return fmt.Errorf("expected a single value, got %d", len(attr.Values))
	}

	cv, err := attr.Values[0].Convert(target)
	if err != nil {
		return err
	}

	attr.Values[0] = cv
	attr.Type = target

	return nil
}

func buildData(ds *Dataset, g *lang.Group) error {
	for _, assign := range g.Data {
		v := ds.ResolveVariable(assign.Var)
		if v == nil {
			return &SemanticError{
				Kind: UndefinedReference,
				Name: assign.Var,
				Pos:  assign.Pos,
				Detail: fmt.Sprintf(
					"data section references undefined variable %q", assign.Var,
				),
				Suggestions: suggest(assign.Var, visibleVariables(ds)),
			}
		}

		if v.Data != nil {
			return &SemanticError{
				Kind:   DuplicateName,
				Name:   assign.Var,
				Pos:    assign.Pos,
				Detail: fmt.Sprintf("data for variable %q assigned twice", assign.Var),
			}
		}

		flat, err := flattenData(v, assign)
		if err != nil {
			return err
		}

		if err := checkShape(v, assign, len(flat)); err != nil {
			return err
		}

		v.Data = flat
	}

	return nil
}

// flattenData converts the literal list of a data assignment into a typed,
// row-major value sequence. Fill markers take the variable's fill value;
// string literals assigned to char variables each fill one row of the last
// dimension, NUL-padded.
func flattenData(v *Variable, assign *lang.DataAssignment) ([]Value, error) {
	fill := v.FillValue()
	flat := make([]Value, 0, len(assign.Values))

	for _, tok := range assign.Values {
		if tok.Kind == token.Fill {
			flat = append(flat, fill)

			continue
		}

		val := FromToken(tok)

		if v.Type == nctype.Char && val.Type() == nctype.String {
			expanded, err := expandCharString(v, assign, val.Text())
			if err != nil {
				return nil, err
			}

			flat = append(flat, expanded...)

			continue
		}

		cv, err := val.Convert(v.Type)
		if err != nil {
			return nil, &SemanticError{
				Kind:   IncompatibleType,
				Name:   assign.Var,
				Pos:    tok.Pos,
				Detail: fmt.Sprintf("data for variable %q: %v", assign.Var, err),
			}
		}

		flat = append(flat, cv)
	}

	return flat, nil
}

// expandCharString maps a string literal onto rows of a char variable.
func expandCharString(
	v *Variable,
	assign *lang.DataAssignment,
	s string,
) ([]Value, error) {
	// With no fixed last dimension, each character is one element.
	if len(v.Dims) == 0 || v.Dims[len(v.Dims)-1].Unlimited {
		out := make([]Value, 0, len(s))
		for i := 0; i < len(s); i++ {
			out = append(out, IntValue(nctype.Char, int64(s[i])))
		}

		return out, nil
	}

	width := v.Dims[len(v.Dims)-1].Length
	if int64(len(s)) > width {
		return nil, &SemanticError{
			Kind: ShapeMismatch,
			Name: assign.Var,
			Pos:  assign.Pos,
			Detail: fmt.Sprintf(
				"string %q is longer than the last dimension of char variable %q (%d > %d)",
				s, assign.Var, len(s), width,
			),
		}
	}

	out := make([]Value, 0, width)
	for i := 0; i < len(s); i++ {
		out = append(out, IntValue(nctype.Char, int64(s[i])))
	}

	for int64(len(out)) < width {
		out = append(out, IntValue(nctype.Char, 0))
	}

	return out, nil
}

// checkShape validates the flattened data length against the variable's
// declared shape, inferring the unlimited dimension's length when the
// outermost dimension is unlimited.
func checkShape(v *Variable, assign *lang.DataAssignment, n int) error {
	if v.Scalar() {
		if n != 1 {
			return &SemanticError{
				Kind: ShapeMismatch,
				Name: assign.Var,
				Pos:  assign.Pos,
				Detail: fmt.Sprintf(
					"scalar variable %q takes exactly 1 value, got %d",
					assign.Var, n,
				),
			}
		}

		return nil
	}

	if v.Dims[0].Unlimited {
		record := int64(1)
		for _, d := range v.Dims[1:] {
			record *= d.Length
		}

		if int64(n)%record != 0 {
			return &SemanticError{
				Kind: ShapeMismatch,
				Name: assign.Var,
				Pos:  assign.Pos,
				Detail: fmt.Sprintf(
					"variable %q: data length %d is not a multiple of the record size %d",
					assign.Var, n, record,
				),
			}
		}

		// The unlimited dimension is shared: it grows to the longest record
		// count written along it.
		if inferred := int64(n) / record; inferred > v.Dims[0].Length {
			v.Dims[0].Length = inferred
		}

		return nil
	}

	total := int64(1)
	for _, d := range v.Dims {
		total *= d.Length
	}

	if int64(n) != total {
		return &SemanticError{
			Kind: ShapeMismatch,
			Name: assign.Var,
			Pos:  assign.Pos,
			Detail: fmt.Sprintf(
				"variable %q declares %d values (shape %v), got %d",
				assign.Var, total, v.Shape(), n,
			),
		}
	}

	return nil
}

// visibleDimensions collects every dimension name visible from a scope, for
// error suggestions.
func visibleDimensions(ds *Dataset) []string {
	var names []string
	for s := ds; s != nil; s = s.parent {
		for _, d := range s.Dimensions {
			names = append(names, d.Name)
		}
	}

	return names
}

// visibleVariables collects every variable name visible from a scope.
func visibleVariables(ds *Dataset) []string {
	var names []string
	for s := ds; s != nil; s = s.parent {
		for _, v := range s.Variables {
			names = append(names, v.Name)
		}
	}

	return names
}
