package lang

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/rockdoc/cdlgen/lang/token"
)

// SyntaxError reports the first grammar violation encountered by the
// parser: the position, the construct that was expected, and the token that
// was found. No partial AST accompanies a SyntaxError.
type SyntaxError struct {
	Pos      token.Pos
	Expected string
	Found    string
	Source   string // original source text, for the snippet
}

// Error implements the error interface. When the source text is available
// the message includes the offending line with a caret marker.
func (e *SyntaxError) Error() string {
	var buf strings.Builder

	buf.WriteString("syntax error at ")
	buf.WriteString(e.Pos.String())
	buf.WriteString(": expected ")
	buf.WriteString(e.Expected)
	buf.WriteString(", found ")
	buf.WriteString(e.Found)

	if snippet := sourceSnippet(e.Source, e.Pos); snippet != "" {
		buf.WriteString("\n")
		buf.WriteString(snippet)
	}

	return buf.String()
}

// LogValue implements slog.LogValuer, exposing the error's fields as
// structured attributes.
func (e *SyntaxError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("pos", e.Pos.String()),
		slog.String("expected", e.Expected),
		slog.String("found", e.Found),
	)
}

// sourceSnippet renders the offending source line with a caret pointing at
// the error column.
func sourceSnippet(source string, pos token.Pos) string {
	if source == "" || pos.Line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	line := lines[pos.Line-1]

	var buf strings.Builder

	// Print the line with line number
	buf.WriteString("  ")
	buf.WriteString(strconv.Itoa(pos.Line))
	buf.WriteString(" | ")
	buf.WriteString(line)
	buf.WriteRune('\n')

	// Print marker pointing to the column
	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(strconv.Itoa(pos.Line))+5)
	if pos.Col > 0 {
		padding += strings.Repeat(" ", pos.Col-1)
	}

	buf.WriteString(padding + "^")

	return buf.String()
}
