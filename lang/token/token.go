// Package token defines the lexical tokens of the CDL grammar.
package token

import (
	"fmt"

	"github.com/rockdoc/cdlgen/nctype"
)

// Kind identifies the class of a token.
type Kind int

const (
	EOF Kind = iota

	// Reserved words.
	Netcdf     // netcdf
	Dimensions // dimensions:
	Variables  // variables:
	Data       // data:
	GroupKw    // group:
	Types      // types:
	Unlimited  // UNLIMITED
	TypeName   // byte, char, short, int, long, float, double, string

	Ident // dimension, variable, or attribute name
	Fill  // the fill marker "_" in a data list

	// Literals. Each numeric kind carries the element type fixed by its
	// suffix (or lack of one) during lexing.
	ByteLit
	CharLit
	ShortLit
	IntLit
	LongLit
	FloatLit
	DoubleLit
	StringLit

	// Punctuation.
	LBrace // {
	RBrace // }
	LParen // (
	RParen // )
	Equals // =
	Comma  // ,
	Semi   // ;
	Colon  // :
)

// String returns a human-readable name for the kind, used in syntax error
// messages.
func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case Netcdf:
		return "'netcdf'"
	case Dimensions:
		return "'dimensions:'"
	case Variables:
		return "'variables:'"
	case Data:
		return "'data:'"
	case GroupKw:
		return "'group:'"
	case Types:
		return "'types:'"
	case Unlimited:
		return "'UNLIMITED'"
	case TypeName:
		return "type name"
	case Ident:
		return "identifier"
	case Fill:
		return "fill marker"
	case ByteLit:
		return "byte constant"
	case CharLit:
		return "char constant"
	case ShortLit:
		return "short constant"
	case IntLit:
		return "int constant"
	case LongLit:
		return "long constant"
	case FloatLit:
		return "float constant"
	case DoubleLit:
		return "double constant"
	case StringLit:
		return "string"
	case LBrace:
		return "'{'"
	case RBrace:
		return "'}'"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case Equals:
		return "'='"
	case Comma:
		return "','"
	case Semi:
		return "';'"
	case Colon:
		return "':'"
	default:
		return "unknown token"
	}
}

// Pos locates a token in the source text. Lines and columns are 1-based.
type Pos struct {
	Line int
	Col  int
}

// String formats the position as "line L, column C".
func (p Pos) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Col)
}

// Token is a single lexical element. Tokens are immutable once produced by
// the lexer.
//
// Numeric and character literals carry their value in Int or Float, already
// parsed and range-checked against the element type implied by the literal
// suffix. String literals carry the unescaped text in Str.
type Token struct {
	Kind Kind
	Lit  string // raw source text of the token
	Pos  Pos

	Int   int64   // value for integral and char literal kinds
	Float float64 // value for float and double literal kinds
	Str   string  // unescaped value for string literals and identifiers
}

// Elem returns the element type fixed by a literal token's suffix, or
// nctype.Invalid for non-literal tokens.
func (t Token) Elem() nctype.Type {
	switch t.Kind {
	case ByteLit:
		return nctype.Byte
	case CharLit:
		return nctype.Char
	case ShortLit:
		return nctype.Short
	case IntLit:
		return nctype.Int
	case LongLit:
		return nctype.Long
	case FloatLit:
		return nctype.Float
	case DoubleLit:
		return nctype.Double
	case StringLit:
		return nctype.String
	default:
		return nctype.Invalid
	}
}

// IsLiteral reports whether the token is a literal constant usable in an
// attribute value or data list.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case ByteLit, CharLit, ShortLit, IntLit, LongLit, FloatLit, DoubleLit,
		StringLit:
		return true
	default:
		return false
	}
}
