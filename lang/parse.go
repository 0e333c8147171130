// Package lang parses CDL source text into an abstract syntax tree.
//
// The grammar is the fixed CDL notation used by ncgen: a top-level
// "netcdf <name> { ... }" group containing dimensions, variables (with
// inline attribute declarations), and data sections, plus netCDF-4 style
// nested "group:" declarations. Parsing is fail-fast: the first grammar
// violation aborts with a [SyntaxError] and no partial AST is returned.
package lang

import (
	"io"

	"github.com/rockdoc/cdlgen/lang/lexer"
	"github.com/rockdoc/cdlgen/lang/token"
	"github.com/rockdoc/cdlgen/nctype"
)

// ParseReader parses CDL text from an io.Reader.
func ParseReader(r io.Reader) (*Group, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return ParseString(string(data))
}

// ParseString parses CDL text and returns the root group. Each call uses an
// independent parser instance, so concurrent parses never share state.
func ParseString(source string) (*Group, error) {
	p := &parser{
		lex:    lexer.New(source),
		source: source,
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	root, err := p.parseDataset()
	if err != nil {
		return nil, err
	}

	if p.tok.Kind != token.EOF {
		return nil, p.syntax("end of input")
	}

	return root, nil
}

// parser holds all state for a single parse.
type parser struct {
	lex    *lexer.Lexer
	source string
	tok    token.Token
}

// next advances to the next token, surfacing lexical errors unchanged.
func (p *parser) next() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}

	p.tok = tok

	return nil
}

// syntax builds a fail-fast SyntaxError at the current token.
func (p *parser) syntax(expected string) error {
	return &SyntaxError{
		Pos:      p.tok.Pos,
		Expected: expected,
		Found:    p.tok.Kind.String(),
		Source:   p.source,
	}
}

// expect consumes a token of the given kind or fails.
func (p *parser) expect(kind token.Kind, expected string) (token.Token, error) {
	if p.tok.Kind != kind {
		return token.Token{}, p.syntax(expected)
	}

	tok := p.tok

	return tok, p.next()
}

// parseDataset parses: "netcdf" identifier "{" section* "}".
func (p *parser) parseDataset() (*Group, error) {
	start, err := p.expect(token.Netcdf, "'netcdf'")
	if err != nil {
		return nil, err
	}

	name, err := p.expect(token.Ident, "dataset name")
	if err != nil {
		return nil, err
	}

	group := &Group{Name: name.Str, Pos: start.Pos}

	if err := p.parseGroupBody(group); err != nil {
		return nil, err
	}

	return group, nil
}

// parseGroupBody parses: "{" section* "}".
func (p *parser) parseGroupBody(group *Group) error {
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return err
	}

	for {
		switch p.tok.Kind {
		case token.RBrace:
			return p.next()

		case token.Dimensions:
			if err := p.next(); err != nil {
				return err
			}

			if err := p.parseDimSection(group); err != nil {
				return err
			}

		case token.Variables:
			if err := p.next(); err != nil {
				return err
			}

			if err := p.parseVarSection(group); err != nil {
				return err
			}

		case token.Data:
			if err := p.next(); err != nil {
				return err
			}

			if err := p.parseDataSection(group); err != nil {
				return err
			}

		case token.GroupKw:
			if err := p.parseNestedGroup(group); err != nil {
				return err
			}

		case token.Colon, token.Ident:
			// Attribute declarations may appear outside an explicit
			// variables section, as ncgen allows.
			decl, err := p.parseAttrDecl()
			if err != nil {
				return err
			}

			group.Attributes = append(group.Attributes, decl)

		case token.Types:
			return p.syntax("a section ('types:' sections are not supported)")

		default:
			return p.syntax("a section or '}'")
		}
	}
}

// parseNestedGroup parses: "group:" identifier "{" section* "}".
func (p *parser) parseNestedGroup(parent *Group) error {
	start := p.tok
	if err := p.next(); err != nil {
		return err
	}

	name, err := p.expect(token.Ident, "group name")
	if err != nil {
		return err
	}

	child := &Group{Name: name.Str, Pos: start.Pos}

	if err := p.parseGroupBody(child); err != nil {
		return err
	}

	parent.Groups = append(parent.Groups, child)

	return nil
}

// parseDimSection parses repeated dimension declaration lines:
//
//	dim-decl ("," dim-decl)* ";"
//
// until the next token no longer begins a declaration.
func (p *parser) parseDimSection(group *Group) error {
	for p.tok.Kind == token.Ident {
		for {
			decl, err := p.parseDimDecl()
			if err != nil {
				return err
			}

			group.Dimensions = append(group.Dimensions, decl)

			if p.tok.Kind != token.Comma {
				break
			}

			if err := p.next(); err != nil {
				return err
			}
		}

		if _, err := p.expect(token.Semi, "';'"); err != nil {
			return err
		}
	}

	return nil
}

// parseDimDecl parses: identifier "=" (integer | "UNLIMITED").
func (p *parser) parseDimDecl() (*DimensionDecl, error) {
	name, err := p.expect(token.Ident, "dimension name")
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Equals, "'='"); err != nil {
		return nil, err
	}

	decl := &DimensionDecl{Name: name.Str, Pos: name.Pos}

	switch p.tok.Kind {
	case token.Unlimited:
		decl.Unlimited = true

	case token.IntLit, token.LongLit, token.ShortLit, token.ByteLit:
		decl.Length = p.tok.Int

	default:
		return nil, p.syntax("dimension length or 'UNLIMITED'")
	}

	return decl, p.next()
}

// parseVarSection parses a sequence of variable and attribute declarations.
func (p *parser) parseVarSection(group *Group) error {
	for {
		switch p.tok.Kind {
		case token.TypeName:
			if err := p.parseVarDecl(group); err != nil {
				return err
			}

		case token.Ident, token.Colon:
			decl, err := p.parseAttrDecl()
			if err != nil {
				return err
			}

			group.Attributes = append(group.Attributes, decl)

		default:
			return nil
		}
	}
}

// parseVarDecl parses: type varspec ("," varspec)* ";" where
// varspec := identifier ("(" identifier ("," identifier)* ")")?.
func (p *parser) parseVarDecl(group *Group) error {
	typ, _ := nctype.Parse(p.tok.Lit)
	if err := p.next(); err != nil {
		return err
	}

	for {
		name, err := p.expect(token.Ident, "variable name")
		if err != nil {
			return err
		}

		decl := &VariableDecl{Name: name.Str, Pos: name.Pos, Type: typ}

		if p.tok.Kind == token.LParen {
			if err := p.next(); err != nil {
				return err
			}

			for {
				dim, err := p.expect(token.Ident, "dimension name")
				if err != nil {
					return err
				}

				decl.Dims = append(decl.Dims, dim.Str)

				if p.tok.Kind != token.Comma {
					break
				}

				if err := p.next(); err != nil {
					return err
				}
			}

			if _, err := p.expect(token.RParen, "')'"); err != nil {
				return err
			}
		}

		group.Variables = append(group.Variables, decl)

		if p.tok.Kind != token.Comma {
			break
		}

		if err := p.next(); err != nil {
			return err
		}
	}

	_, err := p.expect(token.Semi, "';'")

	return err
}

// parseAttrDecl parses a variable attribute "var:name = literals;" or a
// global attribute ":name = literals;".
func (p *parser) parseAttrDecl() (*AttributeDecl, error) {
	decl := &AttributeDecl{Pos: p.tok.Pos}

	if p.tok.Kind == token.Ident {
		decl.Var = p.tok.Str
		if err := p.next(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.Colon, "':'"); err != nil {
		return nil, err
	}

	// Attribute names may collide with type keywords (e.g. "x:long").
	switch p.tok.Kind {
	case token.Ident, token.TypeName:
		decl.Name = p.tok.Lit
	default:
		return nil, p.syntax("attribute name")
	}

	if err := p.next(); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Equals, "'='"); err != nil {
		return nil, err
	}

	values, err := p.parseLiteralList(false)
	if err != nil {
		return nil, err
	}

	decl.Values = values

	_, err = p.expect(token.Semi, "';'")

	return decl, err
}

// parseDataSection parses: (identifier "=" literal ("," literal)* ";")+.
func (p *parser) parseDataSection(group *Group) error {
	for p.tok.Kind == token.Ident {
		name := p.tok
		if err := p.next(); err != nil {
			return err
		}

		if _, err := p.expect(token.Equals, "'='"); err != nil {
			return err
		}

		values, err := p.parseLiteralList(true)
		if err != nil {
			return err
		}

		if _, err := p.expect(token.Semi, "';'"); err != nil {
			return err
		}

		group.Data = append(group.Data, &DataAssignment{
			Var:    name.Str,
			Pos:    name.Pos,
			Values: values,
		})
	}

	return nil
}

// parseLiteralList parses one or more comma-separated literal constants.
// Fill markers ("_") are only permitted in data lists.
func (p *parser) parseLiteralList(allowFill bool) ([]token.Token, error) {
	var values []token.Token

	for {
		switch {
		case p.tok.IsLiteral():
			values = append(values, p.tok)

		case allowFill && p.tok.Kind == token.Fill:
			values = append(values, p.tok)

		default:
			return nil, p.syntax("a literal constant")
		}

		if err := p.next(); err != nil {
			return nil, err
		}

		if p.tok.Kind != token.Comma {
			return values, nil
		}

		if err := p.next(); err != nil {
			return nil, err
		}
	}
}
