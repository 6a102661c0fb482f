// Package lexer implements glint's indentation-aware tokenizer: it turns
// raw source text into a flat token stream, resolving layout (indent,
// dedent, line continuation vs. block-open) into explicit synthetic
// grouping tokens the parser consumes uniformly with real parentheses.
//
// The scanner works over the whole input held in memory (no streaming)
// with ASCII fast-path classification, and a Token/Location split that
// keeps layout bookkeeping out of the token payload itself.
package lexer

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/glintlang/glint/internal/invariant"
	"github.com/glintlang/glint/internal/token"
)

// newLogger is called per Lexer, not at package init, so flipping
// GLINT_DEBUG_LEXER (e.g. via the CLI's --debug flag) takes effect on
// the next tokenize.
func newLogger() *slog.Logger {
	level := slog.LevelError
	if os.Getenv("GLINT_DEBUG_LEXER") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Error is a fatal tokenizer failure: a hard stop, never recovered.
type Error struct {
	Message string
	Loc     token.Location
	Source  []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("lexer error at %s: %s\n%s", e.Loc, e.Message, snippet(e.Source, e.Loc))
}

// snippet renders a Rust/Clang-style caret pointer under the offending
// column.
func snippet(src []byte, loc token.Location) string {
	lines := splitLines(src)
	if loc.Line < 1 || loc.Line > len(lines) {
		return ""
	}
	line := lines[loc.Line-1]
	out := fmt.Sprintf("  --> %d:%d\n   |\n%2d | %s\n   | ", loc.Line, loc.FirstCol, loc.Line, line)
	if loc.FirstCol > 0 && loc.FirstCol <= len(line)+1 {
		for i := 0; i < loc.FirstCol-1; i++ {
			out += " "
		}
		out += "^"
	}
	return out
}

func splitLines(src []byte) []string {
	var lines []string
	start := 0
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			end := i
			if end > start && src[end-1] == '\r' {
				end--
			}
			lines = append(lines, string(src[start:end]))
			start = i + 1
		}
	}
	lines = append(lines, string(src[start:]))
	return lines
}

// margin is one entry of the indentation stack.
type margin struct {
	col  int
	real bool // true if this margin was pushed by a block-open trigger
}

// Lexer tokenizes one complete source buffer in a single pass.
type Lexer struct {
	src     []byte
	lines   [][]byte // physical lines, terminators stripped
	tokens  []token.SourceToken
	margins []margin
	log     *slog.Logger
}

// New creates a Lexer over src.
func New(src []byte) *Lexer {
	return &Lexer{src: src, lines: splitPhysicalLines(src), margins: []margin{{col: 0, real: true}}, log: newLogger()}
}

func splitPhysicalLines(src []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			end := i
			if end > start && src[end-1] == '\r' {
				end--
			}
			lines = append(lines, src[start:end])
			start = i + 1
		}
	}
	lines = append(lines, src[start:])
	return lines
}

// Tokenize runs the full algorithm, returning the flat token stream plus
// the byte offset of the start of each line.
func Tokenize(src []byte) ([]token.SourceToken, []int, error) {
	l := New(src)
	if err := l.run(); err != nil {
		return nil, nil, err
	}
	return l.tokens, l.startOfLine(), nil
}

func (l *Lexer) startOfLine() []int {
	starts := []int{0}
	for i, b := range l.src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (l *Lexer) last() token.Kind {
	if len(l.tokens) == 0 {
		return token.ILLEGAL
	}
	return l.tokens[len(l.tokens)-1].Token.Kind
}

func (l *Lexer) emit(k token.Kind, loc token.Location) {
	l.log.Debug("emit", "kind", k.String(), "loc", loc.String())
	l.tokens = append(l.tokens, token.SourceToken{Token: token.Token{Kind: k}, Loc: loc})
}

func (l *Lexer) emitTok(t token.Token, loc token.Location) {
	l.log.Debug("emit", "kind", t.Kind.String(), "text", t.String(), "loc", loc.String())
	l.tokens = append(l.tokens, token.SourceToken{Token: t, Loc: loc})
}

func (l *Lexer) run() error {
	for i := 0; i < len(l.lines); i++ {
		lineNo := i + 1
		if err := l.processLine(lineNo, l.lines[i]); err != nil {
			return err
		}
	}
	// End of input: pop all remaining real margins, emitting CPAREN.
	for len(l.margins) > 1 {
		top := l.margins[len(l.margins)-1]
		l.margins = l.margins[:len(l.margins)-1]
		if top.real {
			l.emit(token.CPAREN, token.Location{Line: len(l.lines) + 1, FirstCol: 1, LastCol: 1})
		}
	}
	l.emit(token.EOF, token.Location{Line: len(l.lines) + 1, FirstCol: 1, LastCol: 1})
	return nil
}

func (l *Lexer) topMargin() margin { return l.margins[len(l.margins)-1] }

func (l *Lexer) processLine(lineNo int, line []byte) error {
	// Count leading spaces; tabs anywhere in leading whitespace are fatal.
	n := 0
	for n < len(line) {
		switch line[n] {
		case ' ':
			n++
			continue
		case '\t':
			return &Error{Message: "tabs are not allowed in indentation", Loc: token.Location{Line: lineNo, FirstCol: n + 1, LastCol: n + 1}, Source: l.src}
		}
		break
	}

	rest := line[n:]

	// Empty-line skip: only spaces, nothing else.
	if len(rest) == 0 {
		return nil
	}

	m := l.topMargin()
	prev := l.last()
	colonIndent := prev == token.COLON
	assignIndent := prev == token.ASSIGN
	loc := token.Location{Line: lineNo, FirstCol: n + 1, LastCol: n + 1}

	switch {
	case n == m.col:
		if colonIndent {
			return &Error{Message: "indentation expected after ':'", Loc: loc, Source: l.src}
		}
		if len(l.tokens) > 0 && !isGroupingOpen(prev) {
			l.emit(token.LINE_END, loc)
		}
	case n > m.col:
		if colonIndent {
			// Rewrite the trailing ':' already emitted into an OPAREN.
			l.tokens[len(l.tokens)-1].Token.Kind = token.OPAREN
		} else if assignIndent {
			l.emit(token.OPAREN, loc)
		}
		l.margins = append(l.margins, margin{col: n, real: colonIndent || assignIndent})
	default: // n < m.col
		if colonIndent {
			return &Error{Message: "indentation expected after ':'", Loc: loc, Source: l.src}
		}
		for len(l.margins) > 1 && l.topMargin().col > n {
			top := l.margins[len(l.margins)-1]
			l.margins = l.margins[:len(l.margins)-1]
			if top.real {
				l.emit(token.CPAREN, loc)
			}
		}
		l.emit(token.LINE_END, loc)
	}

	// Multiline separators take effect after layout. A leading "--"
	// closes the current block and opens a fresh one at the same level,
	// folding into the LINE_END the layout just produced; a leading ".."
	// collapses the trailing LINE_END/";"/"," so the line continues the
	// previous logical line.
	if len(rest) >= 2 && rest[0] == '-' && rest[1] == '-' {
		sep := token.Location{Line: lineNo, FirstCol: n + 1, LastCol: n + 2}
		if l.last() == token.LINE_END {
			l.tokens[len(l.tokens)-1] = token.SourceToken{Token: token.Token{Kind: token.CPAREN}, Loc: sep}
		} else {
			l.emit(token.CPAREN, sep)
		}
		l.emit(token.LINE_END, sep)
		l.emit(token.OPAREN, sep)
		return l.scanLineTokens(lineNo, n+2, line)
	}
	if len(rest) >= 2 && rest[0] == '.' && rest[1] == '.' {
		if last := l.last(); last == token.SEMI || last == token.COMMA || last == token.LINE_END {
			l.tokens = l.tokens[:len(l.tokens)-1]
		}
		return l.scanLineTokens(lineNo, n+2, line)
	}

	return l.scanLineTokens(lineNo, n, line)
}

func isGroupingOpen(k token.Kind) bool {
	return k == token.OPAREN || k == token.LBRACE || k == token.LBRACKET
}

// scanLineTokens tokenizes the content of one physical line starting at
// byte column `col` (0-based), handling in-line comments, literals,
// identifiers, keywords, and punctuation.
func (l *Lexer) scanLineTokens(lineNo int, col int, line []byte) error {
	for col < len(line) {
		prevCol := col
		ch := line[col]

		if ch == ' ' {
			col++
			continue
		}

		// Inline comment: "-- to EOL".
		if ch == '-' && col+1 < len(line) && line[col+1] == '-' {
			break
		}

		startCol := col + 1 // 1-based

		switch {
		case isDigit(ch):
			newCol, err := l.scanNumber(lineNo, col, line)
			if err != nil {
				return err
			}
			col = newCol
		case ch == '"':
			newCol, err := l.scanString(lineNo, col, line)
			if err != nil {
				return err
			}
			col = newCol
		case isIdentStart(ch):
			newCol := l.scanIdentOrKeyword(lineNo, col, line)
			col = newCol
		default:
			d, matchLen := matchPunct(line[col:])
			if matchLen == 0 {
				return &Error{
					Message: fmt.Sprintf("unable to match next byte %q", ch),
					Loc:     token.Location{Line: lineNo, FirstCol: startCol, LastCol: startCol},
					Source:  l.src,
				}
			}
			loc := token.Location{Line: lineNo, FirstCol: startCol, LastCol: startCol + matchLen - 1}
			l.emit(d.Kind, loc)
			col += matchLen
		}
		invariant.Invariant(col > prevCol, "lexer column must advance while scanning line %d", lineNo)
	}
	return nil
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }

// matchPunct applies the longest-match rule against the non-reserved-word
// table entries.
func matchPunct(rest []byte) (token.Descriptor, int) {
	for _, d := range token.Table() {
		if d.Categories.Has(token.CategoryReservedWord) || d.Symbol == "" {
			continue
		}
		n := len(d.Symbol)
		if n == 0 || n > len(rest) {
			continue
		}
		if string(rest[:n]) == d.Symbol {
			return d, n
		}
	}
	return token.Descriptor{}, 0
}

func (l *Lexer) scanIdentOrKeyword(lineNo int, col int, line []byte) int {
	start := col
	for col < len(line) && isIdentPart(line[col]) {
		col++
	}
	text := string(line[start:col])
	loc := token.Location{Line: lineNo, FirstCol: start + 1, LastCol: col}

	if d, ok := reservedWord(text); ok {
		// A keyword only matches if the next character is not itself an
		// identifier character — already guaranteed since we consumed the
		// maximal identifier run above.
		l.emit(d.Kind, loc)
		return col
	}

	l.emitTok(token.Token{Kind: token.IDENT, Ident: text}, loc)
	return col
}

func reservedWord(text string) (token.Descriptor, bool) {
	for _, d := range token.Table() {
		if d.Categories.Has(token.CategoryReservedWord) && d.Symbol == text {
			return d, true
		}
	}
	return token.Descriptor{}, false
}

func (l *Lexer) scanString(lineNo int, col int, line []byte) (int, error) {
	start := col
	col++ // consume opening quote
	var out []byte
	for {
		if col >= len(line) {
			return col, &Error{Message: "unterminated string literal", Loc: token.Location{Line: lineNo, FirstCol: start + 1, LastCol: col}, Source: l.src}
		}
		ch := line[col]
		if ch == '"' {
			col++
			break
		}
		if ch == '\\' {
			if col+1 >= len(line) {
				return col, &Error{Message: "unterminated string literal", Loc: token.Location{Line: lineNo, FirstCol: start + 1, LastCol: col + 1}, Source: l.src}
			}
			esc := line[col+1]
			switch esc {
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			default:
				return col, &Error{
					Message: fmt.Sprintf("unknown escape sequence '\\%c'", esc),
					Loc:     token.Location{Line: lineNo, FirstCol: col + 1, LastCol: col + 2},
					Source:  l.src,
				}
			}
			col += 2
			continue
		}
		out = append(out, ch)
		col++
	}
	loc := token.Location{Line: lineNo, FirstCol: start + 1, LastCol: col}
	l.emitTok(token.Token{Kind: token.STRINGLIT, Str: out}, loc)
	return col, nil
}

var widthSuffixes = map[string]struct {
	sign  token.Signedness
	width int
	float bool
}{
	"i8": {token.SignSigned, 8, false}, "i16": {token.SignSigned, 16, false},
	"i32": {token.SignSigned, 32, false}, "i64": {token.SignSigned, 64, false},
	"u8": {token.SignUnsigned, 8, false}, "u16": {token.SignUnsigned, 16, false},
	"u32": {token.SignUnsigned, 32, false}, "u64": {token.SignUnsigned, 64, false},
	"f32": {0, 32, true}, "f64": {0, 64, true},
}

func (l *Lexer) scanNumber(lineNo int, col int, line []byte) (int, error) {
	start := col
	base := 10
	digitStart := col

	if line[col] == '0' && col+1 < len(line) {
		switch line[col+1] {
		case 'b', 'B':
			base = 2
			col += 2
			digitStart = col
		case 'x', 'X':
			base = 16
			col += 2
			digitStart = col
		default:
			if isDigit(line[col+1]) {
				base = 8
				col++
				digitStart = col
			}
		}
	}

	isValidDigit := func(ch byte) bool {
		switch base {
		case 2:
			return ch == '0' || ch == '1'
		case 8:
			return ch >= '0' && ch <= '7'
		case 16:
			return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
		default:
			return isDigit(ch)
		}
	}

	for col < len(line) && (isValidDigit(line[col]) || line[col] == '_') {
		col++
	}

	if (base == 2 || base == 8) && col < len(line) && isDigit(line[col]) {
		return col, &Error{
			Message: fmt.Sprintf("invalid digit %q in base-%d literal", line[col], base),
			Loc:     token.Location{Line: lineNo, FirstCol: col + 1, LastCol: col + 1},
			Source:  l.src,
		}
	}

	isFloat := false
	if base == 10 {
		if col < len(line) && line[col] == '.' && col+1 < len(line) && isDigit(line[col+1]) {
			isFloat = true
			col++
			for col < len(line) && (isDigit(line[col]) || line[col] == '_') {
				col++
			}
		}
		if col < len(line) && (line[col] == 'e' || line[col] == 'E') {
			save := col
			p := col + 1
			if p < len(line) && (line[p] == '+' || line[p] == '-') {
				p++
			}
			if p < len(line) && isDigit(line[p]) {
				isFloat = true
				col = p
				for col < len(line) && (isDigit(line[col]) || line[col] == '_') {
					col++
				}
			} else {
				col = save
			}
		}
	}

	digits := stripSeparators(line[digitStart:col])

	// Optional suffix.
	suffixStart := col
	for col < len(line) && isIdentPart(line[col]) {
		col++
	}
	suffix := string(line[suffixStart:col])

	loc := token.Location{Line: lineNo, FirstCol: start + 1, LastCol: col}

	if suffix != "" {
		info, ok := widthSuffixes[suffix]
		if !ok {
			return col, &Error{Message: fmt.Sprintf("invalid numeric literal suffix %q", suffix), Loc: loc, Source: l.src}
		}
		if info.float {
			isFloat = true
		} else if isFloat {
			return col, &Error{Message: fmt.Sprintf("integer suffix %q not valid on a float literal", suffix), Loc: loc, Source: l.src}
		}
		if isFloat {
			val := parseFloatBase10(digits)
			l.emitTok(token.Token{Kind: token.FLOAT, Flt: token.FloatLiteral{Value: val, Width: info.width}}, loc)
		} else {
			val := parseUintBase(digits, base)
			l.emitTok(token.Token{Kind: token.INTEGER, Int: token.IntLiteral{Value: val, Sign: info.sign, Width: info.width}}, loc)
		}
		return col, nil
	}

	if isFloat {
		val := parseFloatBase10(digits)
		l.emitTok(token.Token{Kind: token.FLOAT, Flt: token.FloatLiteral{Value: val, Width: 64}}, loc)
		return col, nil
	}

	val := parseUintBase(digits, base)
	l.emitTok(token.Token{Kind: token.INTEGER, Int: token.IntLiteral{Value: val, Sign: token.SignUnspecified, Width: 0}}, loc)
	return col, nil
}

func stripSeparators(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c != '_' {
			out = append(out, c)
		}
	}
	return out
}

func parseUintBase(digits []byte, base int) uint64 {
	var v uint64
	for _, c := range digits {
		var d uint64
		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = uint64(c-'A') + 10
		}
		v = v*uint64(base) + d
	}
	return v
}

func parseFloatBase10(digits []byte) float64 {
	var whole, frac uint64
	var fracDigits int
	var exp int
	expSign := 1
	i := 0
	for i < len(digits) && digits[i] != '.' && digits[i] != 'e' && digits[i] != 'E' {
		whole = whole*10 + uint64(digits[i]-'0')
		i++
	}
	if i < len(digits) && digits[i] == '.' {
		i++
		for i < len(digits) && digits[i] != 'e' && digits[i] != 'E' {
			frac = frac*10 + uint64(digits[i]-'0')
			fracDigits++
			i++
		}
	}
	if i < len(digits) && (digits[i] == 'e' || digits[i] == 'E') {
		i++
		if i < len(digits) && (digits[i] == '+' || digits[i] == '-') {
			if digits[i] == '-' {
				expSign = -1
			}
			i++
		}
		for i < len(digits) {
			exp = exp*10 + int(digits[i]-'0')
			i++
		}
	}
	result := float64(whole)
	if fracDigits > 0 {
		div := 1.0
		for k := 0; k < fracDigits; k++ {
			div *= 10
		}
		result += float64(frac) / div
	}
	for k := 0; k < exp; k++ {
		if expSign > 0 {
			result *= 10
		} else {
			result /= 10
		}
	}
	return result
}
