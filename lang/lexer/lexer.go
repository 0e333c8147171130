// Package lexer converts raw CDL text into a lazy, finite, restartable
// sequence of tokens. Whitespace and comments are discarded; every other
// lexical element is reported as a typed token with its source position.
package lexer

import (
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rockdoc/cdlgen/lang/token"
	"github.com/rockdoc/cdlgen/nctype"
)

// Error reports a malformed token: an unterminated string or block comment,
// an unrecognized character, or a numeric constant outside the range of its
// declared type.
type Error struct {
	Pos    token.Pos
	Reason string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("lex error at %s: %s", e.Pos, e.Reason)
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("pos", e.Pos.String()),
		slog.String("reason", e.Reason),
	)
}

// Lexer scans CDL source text. Each Lexer instance carries its own state, so
// concurrent scans of independent inputs never interfere. Reset rewinds the
// lexer to the start of its input.
type Lexer struct {
	input []byte
	pos   int
	line  int
	col   int
}

// New creates a lexer over the given source text.
func New(input string) *Lexer {
	l := &Lexer{input: []byte(input)}
	l.Reset()

	return l
}

// Reset rewinds the lexer to the beginning of its input.
func (l *Lexer) Reset() {
	l.pos = 0
	l.line = 1
	l.col = 1
}

// Tokens returns an iterator over the remaining tokens. Iteration stops
// after the EOF token or the first error.
func (l *Lexer) Tokens() iter.Seq2[token.Token, error] {
	return func(yield func(token.Token, error) bool) {
		for {
			tok, err := l.Next()
			if !yield(tok, err) || err != nil || tok.Kind == token.EOF {
				return
			}
		}
	}
}

// Next scans and returns the next token. After the end of input it returns
// an EOF token indefinitely.
func (l *Lexer) Next() (token.Token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return token.Token{}, err
	}

	pos := l.position()

	if l.eof() {
		return token.Token{Kind: token.EOF, Pos: pos}, nil
	}

	ch := l.peek()

	switch {
	case isIdentStart(ch):
		return l.scanWord(pos)

	case ch >= '0' && ch <= '9', ch == '+', ch == '-', ch == '.':
		return l.scanNumber(pos)

	case ch == '"':
		return l.scanString(pos)

	case ch == '\'':
		return l.scanChar(pos)
	}

	l.advance()

	switch ch {
	case '{':
		return token.Token{Kind: token.LBrace, Lit: "{", Pos: pos}, nil
	case '}':
		return token.Token{Kind: token.RBrace, Lit: "}", Pos: pos}, nil
	case '(':
		return token.Token{Kind: token.LParen, Lit: "(", Pos: pos}, nil
	case ')':
		return token.Token{Kind: token.RParen, Lit: ")", Pos: pos}, nil
	case '=':
		return token.Token{Kind: token.Equals, Lit: "=", Pos: pos}, nil
	case ',':
		return token.Token{Kind: token.Comma, Lit: ",", Pos: pos}, nil
	case ';':
		return token.Token{Kind: token.Semi, Lit: ";", Pos: pos}, nil
	case ':':
		return token.Token{Kind: token.Colon, Lit: ":", Pos: pos}, nil
	}

	return token.Token{}, &Error{
		Pos:    pos,
		Reason: fmt.Sprintf("unrecognized character %q", ch),
	}
}

// sectionKinds maps section keywords (which include their trailing colon in
// the grammar) to token kinds.
var sectionKinds = map[string]token.Kind{
	"dimensions": token.Dimensions,
	"variables":  token.Variables,
	"data":       token.Data,
	"group":      token.GroupKw,
	"types":      token.Types,
}

// scanWord scans an identifier or reserved word. Reserved words are matched
// case-insensitively, as ncgen does.
func (l *Lexer) scanWord(pos token.Pos) (token.Token, error) {
	start := l.pos
	for !l.eof() && isIdentContinue(l.peek()) {
		l.advance()
	}

	word := string(l.input[start:l.pos])
	lower := strings.ToLower(word)

	if word == "_" {
		return token.Token{Kind: token.Fill, Lit: word, Pos: pos}, nil
	}

	switch lower {
	case "netcdf":
		return token.Token{Kind: token.Netcdf, Lit: word, Pos: pos}, nil
	case "unlimited":
		return token.Token{Kind: token.Unlimited, Lit: word, Pos: pos}, nil
	}

	// Section keywords are only reserved when immediately followed by a
	// colon, so names like "data" remain usable as identifiers elsewhere.
	if kind, ok := sectionKinds[lower]; ok && !l.eof() && l.peek() == ':' {
		l.advance()

		return token.Token{Kind: kind, Lit: word + ":", Pos: pos}, nil
	}

	if _, ok := nctype.Parse(word); ok {
		return token.Token{Kind: token.TypeName, Lit: lower, Pos: pos}, nil
	}

	return token.Token{Kind: token.Ident, Lit: word, Str: word, Pos: pos}, nil
}

// scanNumber scans a numeric constant with an optional sign, optional
// fraction and exponent, and an optional type suffix:
// b/B byte, s/S short, l/L long, f/F float, d/D double; no suffix is int for
// integral constants and double for reals. Hex (0x...) and octal (0...)
// integer constants are accepted.
func (l *Lexer) scanNumber(pos token.Pos) (token.Token, error) {
	start := l.pos

	if l.peek() == '+' || l.peek() == '-' {
		l.advance()
	}

	isReal := false
	hex := false

	if !l.eof() && l.peek() == '0' {
		l.advance()

		if !l.eof() && (l.peek() == 'x' || l.peek() == 'X') {
			hex = true

			l.advance()
			for !l.eof() && isHexDigit(l.peek()) {
				l.advance()
			}
		}
	}

	if !hex {
		for !l.eof() && isDigit(l.peek()) {
			l.advance()
		}

		if !l.eof() && l.peek() == '.' {
			isReal = true

			l.advance()
			for !l.eof() && isDigit(l.peek()) {
				l.advance()
			}
		}

		if !l.eof() && (l.peek() == 'e' || l.peek() == 'E') {
			isReal = true

			l.advance()

			if !l.eof() && (l.peek() == '+' || l.peek() == '-') {
				l.advance()
			}

			for !l.eof() && isDigit(l.peek()) {
				l.advance()
			}
		}
	}

	digits := string(l.input[start:l.pos])
	suffix := byte(0)

	if !l.eof() {
		switch l.peek() {
		case 'b', 'B', 's', 'S', 'l', 'L', 'f', 'F', 'd', 'D':
			suffix = l.peek()
			l.advance()
		}
	}

	lit := string(l.input[start:l.pos])

	// A bare sign or dot never starts a valid constant.
	if digits == "" || digits == "+" || digits == "-" || digits == "." {
		return token.Token{}, &Error{
			Pos:    pos,
			Reason: fmt.Sprintf("malformed numeric constant %q", lit),
		}
	}

	if isReal || suffix == 'f' || suffix == 'F' || suffix == 'd' || suffix == 'D' {
		return l.realToken(pos, lit, digits, suffix)
	}

	return l.intToken(pos, lit, digits, suffix)
}

func (l *Lexer) realToken(
	pos token.Pos,
	lit, digits string,
	suffix byte,
) (token.Token, error) {
	val, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return token.Token{}, &Error{
			Pos:    pos,
			Reason: fmt.Sprintf("bad floating-point constant %q", lit),
		}
	}

	kind := token.DoubleLit
	if suffix == 'f' || suffix == 'F' {
		kind = token.FloatLit
	}

	return token.Token{Kind: kind, Lit: lit, Pos: pos, Float: val}, nil
}

func (l *Lexer) intToken(
	pos token.Pos,
	lit, digits string,
	suffix byte,
) (token.Token, error) {
	// Base 0 handles decimal, hex (0x), and octal (leading 0) forms.
	val, err := strconv.ParseInt(digits, 0, 64)
	if err != nil {
		return token.Token{}, &Error{
			Pos:    pos,
			Reason: fmt.Sprintf("bad integer constant %q", lit),
		}
	}

	kind := token.IntLit

	switch suffix {
	case 'b', 'B':
		kind = token.ByteLit
	case 's', 'S':
		kind = token.ShortLit
	case 'l', 'L':
		kind = token.LongLit
	}

	elem := token.Token{Kind: kind}.Elem()
	if minVal, maxVal, ok := elem.Range(); ok {
		if val < minVal || val > maxVal {
			return token.Token{}, &Error{
				Pos: pos,
				Reason: fmt.Sprintf(
					"%s constant %s outside valid range (%d to %d)",
					elem, lit, minVal, maxVal,
				),
			}
		}
	}

	return token.Token{Kind: kind, Lit: lit, Pos: pos, Int: val}, nil
}

// scanString scans a double-quoted string with backslash escapes.
func (l *Lexer) scanString(pos token.Pos) (token.Token, error) {
	start := l.pos
	l.advance() // opening quote

	var out strings.Builder

	for {
		if l.eof() {
			return token.Token{}, &Error{Pos: pos, Reason: "unterminated string"}
		}

		ch := l.peek()

		if ch == '"' {
			l.advance()

			return token.Token{
				Kind: token.StringLit,
				Lit:  string(l.input[start:l.pos]),
				Pos:  pos,
				Str:  out.String(),
			}, nil
		}

		if ch == '\\' {
			l.advance()

			if l.eof() {
				return token.Token{}, &Error{Pos: pos, Reason: "unterminated string"}
			}

			out.WriteByte(unescape(l.peek()))
			l.advance()

			continue
		}

		out.WriteByte(ch)
		l.advance()
	}
}

// scanChar scans a single-quoted character constant, including octal
// (\101) and hex (\x41) escape forms.
func (l *Lexer) scanChar(pos token.Pos) (token.Token, error) {
	start := l.pos
	l.advance() // opening quote

	if l.eof() {
		return token.Token{}, &Error{Pos: pos, Reason: "unterminated char constant"}
	}

	var val int64

	if l.peek() == '\\' {
		l.advance()

		var err error

		val, err = l.scanCharEscape(pos)
		if err != nil {
			return token.Token{}, err
		}
	} else {
		val = int64(l.peek())
		l.advance()
	}

	if l.eof() || l.peek() != '\'' {
		return token.Token{}, &Error{Pos: pos, Reason: "unterminated char constant"}
	}

	l.advance() // closing quote

	return token.Token{
		Kind: token.CharLit,
		Lit:  string(l.input[start:l.pos]),
		Pos:  pos,
		Int:  val,
	}, nil
}

func (l *Lexer) scanCharEscape(pos token.Pos) (int64, error) {
	if l.eof() {
		return 0, &Error{Pos: pos, Reason: "unterminated char constant"}
	}

	ch := l.peek()

	switch {
	case ch == 'x' || ch == 'X':
		l.advance()

		digits := ""
		for !l.eof() && isHexDigit(l.peek()) && len(digits) < 2 {
			digits += string(l.peek())
			l.advance()
		}

		if digits == "" {
			return 0, &Error{Pos: pos, Reason: "bad hex escape in char constant"}
		}

		val, _ := strconv.ParseInt(digits, 16, 64)

		return val, nil

	case ch >= '0' && ch <= '7':
		digits := ""
		for !l.eof() && l.peek() >= '0' && l.peek() <= '7' && len(digits) < 3 {
			digits += string(l.peek())
			l.advance()
		}

		val, _ := strconv.ParseInt(digits, 8, 64)

		return val, nil

	default:
		l.advance()

		return int64(unescape(ch)), nil
	}
}

// unescape maps a simple backslash escape to its byte value. Unknown
// escapes yield the character itself, matching ncgen.
func unescape(ch byte) byte {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'f':
		return '\f'
	case 'b':
		return '\b'
	case '0':
		return 0
	default:
		return ch
	}
}

// skipSpaceAndComments discards whitespace, line comments, and block
// comments. An unterminated block comment is a lexical error.
func (l *Lexer) skipSpaceAndComments() error {
	for {
		for !l.eof() && isSpace(l.peek()) {
			l.advance()
		}

		if l.eof() || l.peek() != '/' || l.pos+1 >= len(l.input) {
			return nil
		}

		switch l.input[l.pos+1] {
		case '/':
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}

		case '*':
			pos := l.position()

			l.advance() // '/'
			l.advance() // '*'

			for {
				if l.eof() {
					return &Error{Pos: pos, Reason: "unterminated block comment"}
				}

				if l.peek() == '*' && l.pos+1 < len(l.input) &&
					l.input[l.pos+1] == '/' {
					l.advance()
					l.advance()

					break
				}

				l.advance()
			}

		default:
			return nil
		}
	}
}

// Low-level cursor helpers.

func (l *Lexer) peek() byte {
	if l.eof() {
		return 0
	}

	return l.input[l.pos]
}

func (l *Lexer) advance() {
	if l.eof() {
		return
	}

	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	l.pos++
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) position() token.Pos {
	return token.Pos{Line: l.line, Col: l.col}
}

// Character classification.

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
