package lang

import (
	"github.com/rockdoc/cdlgen/lang/token"
	"github.com/rockdoc/cdlgen/nctype"
)

// Group is the AST node for a CDL group body: the top-level dataset or a
// nested "group:" declaration. Declarations are kept in source order; all
// reference resolution is deferred to the semantic builder.
type Group struct {
	Name string
	Pos  token.Pos

	Dimensions []*DimensionDecl
	Variables  []*VariableDecl
	Attributes []*AttributeDecl
	Data       []*DataAssignment
	Groups     []*Group
}

// DimensionDecl declares a named dimension with a fixed length or the
// UNLIMITED marker.
type DimensionDecl struct {
	Name string
	Pos  token.Pos

	Length    int64
	Unlimited bool
}

// VariableDecl declares a typed variable with an ordered list of dimension
// name references. An empty Dims list declares a scalar.
type VariableDecl struct {
	Name string
	Pos  token.Pos

	Type nctype.Type
	Dims []string
}

// AttributeDecl declares an attribute on a variable, or a global attribute
// when Var is empty. Values holds the literal tokens in source order.
type AttributeDecl struct {
	Var  string // owning variable name, or "" for a global attribute
	Name string
	Pos  token.Pos

	Values []token.Token
}

// DataAssignment assigns an ordered list of literal tokens to a variable's
// storage. Values may include fill-marker tokens.
type DataAssignment struct {
	Var string
	Pos token.Pos

	Values []token.Token
}
