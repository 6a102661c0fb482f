package parser

import (
	"fmt"
	"strings"

	"github.com/glintlang/glint/internal/token"
)

// Error is a fatal parse failure: the pipeline aborts and produces no
// AST. One message, one location, one code snippet; the grammar has no
// bracket recovery or suggestion list to carry.
type Error struct {
	Message string
	Loc     token.Location
	Source  []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("parse error: %s\n%s", e.Message, snippet(e.Source, e.Loc))
}

func snippet(src []byte, loc token.Location) string {
	lines := splitLines(src)
	var b strings.Builder
	fmt.Fprintf(&b, "  --> %d:%d\n", loc.Line, loc.FirstCol)
	b.WriteString("   |\n")
	if loc.Line >= 1 && loc.Line <= len(lines) {
		line := lines[loc.Line-1]
		fmt.Fprintf(&b, "%2d | %s\n", loc.Line, line)
		col := loc.FirstCol
		if col < 1 {
			col = 1
		}
		b.WriteString("   | ")
		b.WriteString(strings.Repeat(" ", col-1))
		b.WriteString("^")
	}
	return b.String()
}

func splitLines(src []byte) []string {
	text := strings.ReplaceAll(string(src), "\r\n", "\n")
	return strings.Split(text, "\n")
}
