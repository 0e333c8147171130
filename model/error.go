package model

import (
	"log/slog"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/rockdoc/cdlgen/lang/token"
)

// Kind classifies a semantic error.
type Kind int

const (
	// DuplicateName reports a dimension, variable, attribute, or group
	// declared twice within one scope, or a repeated data assignment.
	DuplicateName Kind = iota

	// UndefinedReference reports a dimension or variable name that does not
	// resolve in the current scope or any ancestor scope.
	UndefinedReference

	// ShapeMismatch reports flattened data whose length is inconsistent
	// with the variable's declared or inferred shape.
	ShapeMismatch

	// InvalidUnlimited reports a second unlimited dimension in a scope or
	// on a variable, or an unlimited dimension in a non-leading position.
	InvalidUnlimited

	// IncompatibleType reports a literal whose element type cannot be
	// coerced into its context, such as a _FillValue that does not match
	// the owning variable's type.
	IncompatibleType

	// InvalidDimension reports a declared dimension length that is not a
	// positive integer.
	InvalidDimension
)

// String returns the kind's name as used in error messages.
func (k Kind) String() string {
	switch k {
	case DuplicateName:
		return "duplicate name"
	case UndefinedReference:
		return "undefined reference"
	case ShapeMismatch:
		return "shape mismatch"
	case InvalidUnlimited:
		return "invalid unlimited dimension"
	case IncompatibleType:
		return "incompatible type"
	case InvalidDimension:
		return "invalid dimension"
	default:
		return "semantic error"
	}
}

// SemanticError reports the first data-model invariant violated by a
// grammatically valid AST. It carries the offending name and source
// position, and, for unresolved references, close-match suggestions.
type SemanticError struct {
	Kind        Kind
	Name        string
	Pos         token.Pos
	Detail      string
	Suggestions []string
}

// Error implements the error interface.
func (e *SemanticError) Error() string {
	var buf strings.Builder

	buf.WriteString(e.Kind.String())
	buf.WriteString(" at ")
	buf.WriteString(e.Pos.String())
	buf.WriteString(": ")
	buf.WriteString(e.Detail)

	if len(e.Suggestions) > 0 {
		buf.WriteString(" (did you mean ")
		buf.WriteString(strings.Join(e.Suggestions, ", "))
		buf.WriteString("?)")
	}

	return buf.String()
}

// LogValue implements slog.LogValuer.
func (e *SemanticError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", e.Kind.String()),
		slog.String("name", e.Name),
		slog.String("pos", e.Pos.String()),
		slog.String("detail", e.Detail),
	}

	if len(e.Suggestions) > 0 {
		attrs = append(attrs, slog.Any("suggestions", e.Suggestions))
	}

	return slog.GroupValue(attrs...)
}

// maxSuggestions caps the number of close-match names attached to an
// undefined reference error.
const maxSuggestions = 3

// suggest ranks candidate names by fuzzy similarity to the unresolved name.
func suggest(name string, candidates []string) []string {
	matches := fuzzy.Find(name, candidates)

	n := len(matches)
	if n > maxSuggestions {
		n = maxSuggestions
	}

	out := make([]string, 0, n)
	for _, m := range matches[:n] {
		out = append(out, m.Str)
	}

	return out
}
