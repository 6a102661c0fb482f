// Package token defines the closed set of token kinds glint's tokenizer
// and parser share, along with the literal payload types (integer, float,
// string, identifier) and source location tracking.
package token

import (
	"fmt"
	"sort"
)

// Category is a bitfield classifying what role a Kind can play in the
// grammar. A Kind may belong to more than one category (e.g. "-" is both
// unary-prefix and binary).
type Category uint8

const (
	CategoryReservedWord Category = 1 << iota
	CategoryGrouping
	CategoryPunctuation
	CategoryUnaryPrefix
	CategoryUnaryPostfix
	CategoryBinaryOp
	CategorySynthetic
)

func (c Category) Has(flag Category) bool { return c&flag != 0 }

// Kind is a tag drawn from the closed token table.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF

	// Synthetic layout tokens. Empty symbol string; produced only by the
	// tokenizer, never matched directly against source text.
	INDENT
	DEDENT
	EOL
	LINE_END

	// Reserved words.
	ALIAS
	BREAK
	CASE
	CATCH
	CONST
	CONTINUE
	DATA
	DEF
	DO
	DOC
	ELSE
	ELIF
	FALSE
	FN
	FOR
	GOTO
	HELP
	IF
	IMPORT
	IN
	IS
	MACRO
	META
	NOT
	NOTE
	NULL
	OBJECT
	OR
	POST
	PRE
	PRIVATE
	PUBLIC
	REPEAT
	RETURN
	THEN
	THROW
	TRUE
	TYPE
	UNTIL
	VAR
	VERBATIM
	WHERE
	WHILE
	WITH
	XOR
	YIELD
	AND

	// Built-in type-name keywords (also reserved words).
	BYTE
	SHORT
	INT
	LONG
	UBYTE
	USHORT
	UINT
	ULONG
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	CHAR
	BOOL
	PTR
	ARRAY
	DYNARR
	SLICE
	VARIANT_KW
	TUPLE_KW
	STRING_KW

	// Multi-char punctuation.
	EQEQ     // ==
	NOTEQ    // !=
	LE       // <=
	GE       // >=
	FATARROW // =>
	ARROW    // ->
	SHL      // <<
	SHR      // >>
	POW      // **
	PLUSEQ   // +=
	MINUSEQ
	STAREQ
	SLASHEQ
	PERCENTEQ
	CARETEQ
	COLONEQ      // :=
	COLONSLASH   // :/
	COLONPERCENT // :%
	COLONSTAR    // :*
	COLONCOLON   // ::
	PLUSPLUS     // ++
	MINUSMINUS   // --

	// Single-char punctuation.
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	CARET
	PIPE
	AMP
	TILDE
	BANG
	QUESTION
	AT
	DOLLAR
	HASH
	COLON
	SEMI
	COMMA
	DOT
	OPAREN // ( — also emitted synthetically for layout
	CPAREN // ) — also emitted synthetically for layout
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE
	ASSIGN
	LT
	GT
	BACKTICK
	BACKSLASH

	// Literal / identifier kinds. Never appear in the descriptor table;
	// their payload lives on the Token itself.
	IDENT
	INTEGER
	FLOAT
	STRINGLIT
)

// Descriptor is the static metadata for one entry in the token table:
// symbolic name, source symbol, category bitset, and reserved-word flag.
type Descriptor struct {
	Kind       Kind
	Name       string // ALL_CAPS symbolic name
	Symbol     string // literal source spelling ("" for synthetic/literal kinds)
	Categories Category
}

func (d Descriptor) IsReservedWord() bool { return d.Categories.Has(CategoryReservedWord) }

var descriptors = []Descriptor{
	{ILLEGAL, "ILLEGAL", "", 0},
	{EOF, "EOF", "", 0},

	{INDENT, "INDENT", "", CategorySynthetic},
	{DEDENT, "DEDENT", "", CategorySynthetic},
	{EOL, "EOL", "", CategorySynthetic},
	{LINE_END, "LINE_END", "", CategorySynthetic},

	{ALIAS, "ALIAS", "alias", CategoryReservedWord},
	{BREAK, "BREAK", "break", CategoryReservedWord},
	{CASE, "CASE", "case", CategoryReservedWord},
	{CATCH, "CATCH", "catch", CategoryReservedWord},
	{CONST, "CONST", "const", CategoryReservedWord},
	{CONTINUE, "CONTINUE", "continue", CategoryReservedWord},
	{DATA, "DATA", "data", CategoryReservedWord},
	{DEF, "DEF", "def", CategoryReservedWord},
	{DO, "DO", "do", CategoryReservedWord},
	{DOC, "DOC", "doc", CategoryReservedWord},
	{ELSE, "ELSE", "else", CategoryReservedWord},
	{ELIF, "ELIF", "elif", CategoryReservedWord},
	{FALSE, "FALSE", "false", CategoryReservedWord},
	{FN, "FN", "fn", CategoryReservedWord},
	{FOR, "FOR", "for", CategoryReservedWord},
	{GOTO, "GOTO", "goto", CategoryReservedWord},
	{HELP, "HELP", "help", CategoryReservedWord},
	{IF, "IF", "if", CategoryReservedWord},
	{IMPORT, "IMPORT", "import", CategoryReservedWord},
	{IN, "IN", "in", CategoryReservedWord | CategoryBinaryOp},
	{IS, "IS", "is", CategoryReservedWord | CategoryBinaryOp},
	{MACRO, "MACRO", "macro", CategoryReservedWord},
	{META, "META", "meta", CategoryReservedWord},
	{NOT, "NOT", "not", CategoryReservedWord | CategoryUnaryPrefix},
	{NOTE, "NOTE", "note", CategoryReservedWord},
	{NULL, "NULL", "null", CategoryReservedWord},
	{OBJECT, "OBJECT", "object", CategoryReservedWord},
	{OR, "OR", "or", CategoryReservedWord | CategoryBinaryOp},
	{POST, "POST", "post", CategoryReservedWord},
	{PRE, "PRE", "pre", CategoryReservedWord},
	{PRIVATE, "PRIVATE", "private", CategoryReservedWord},
	{PUBLIC, "PUBLIC", "public", CategoryReservedWord},
	{REPEAT, "REPEAT", "repeat", CategoryReservedWord},
	{RETURN, "RETURN", "return", CategoryReservedWord},
	{THEN, "THEN", "then", CategoryReservedWord},
	{THROW, "THROW", "throw", CategoryReservedWord},
	{TRUE, "TRUE", "true", CategoryReservedWord},
	{TYPE, "TYPE", "type", CategoryReservedWord},
	{UNTIL, "UNTIL", "until", CategoryReservedWord},
	{VAR, "VAR", "var", CategoryReservedWord},
	{VERBATIM, "VERBATIM", "verbatim", CategoryReservedWord},
	{WHERE, "WHERE", "where", CategoryReservedWord},
	{WHILE, "WHILE", "while", CategoryReservedWord},
	{WITH, "WITH", "with", CategoryReservedWord},
	{XOR, "XOR", "xor", CategoryReservedWord | CategoryBinaryOp},
	{YIELD, "YIELD", "yield", CategoryReservedWord},
	{AND, "AND", "and", CategoryReservedWord | CategoryBinaryOp},

	{BYTE, "BYTE", "byte", CategoryReservedWord},
	{SHORT, "SHORT", "short", CategoryReservedWord},
	{INT, "INT", "int", CategoryReservedWord},
	{LONG, "LONG", "long", CategoryReservedWord},
	{UBYTE, "UBYTE", "ubyte", CategoryReservedWord},
	{USHORT, "USHORT", "ushort", CategoryReservedWord},
	{UINT, "UINT", "uint", CategoryReservedWord},
	{ULONG, "ULONG", "ulong", CategoryReservedWord},
	{I8, "I8", "i8", CategoryReservedWord},
	{I16, "I16", "i16", CategoryReservedWord},
	{I32, "I32", "i32", CategoryReservedWord},
	{I64, "I64", "i64", CategoryReservedWord},
	{U8, "U8", "u8", CategoryReservedWord},
	{U16, "U16", "u16", CategoryReservedWord},
	{U32, "U32", "u32", CategoryReservedWord},
	{U64, "U64", "u64", CategoryReservedWord},
	{F32, "F32", "f32", CategoryReservedWord},
	{F64, "F64", "f64", CategoryReservedWord},
	{CHAR, "CHAR", "char", CategoryReservedWord},
	{BOOL, "BOOL", "bool", CategoryReservedWord},
	{PTR, "PTR", "ptr", CategoryReservedWord},
	{ARRAY, "ARRAY", "array", CategoryReservedWord},
	{DYNARR, "DYNARR", "dynarr", CategoryReservedWord},
	{SLICE, "SLICE", "slice", CategoryReservedWord},
	{VARIANT_KW, "VARIANT", "variant", CategoryReservedWord},
	{TUPLE_KW, "TUPLE", "tuple", CategoryReservedWord},
	{STRING_KW, "STRING", "string", CategoryReservedWord},

	{EQEQ, "EQEQ", "==", CategoryPunctuation | CategoryBinaryOp},
	{NOTEQ, "NOTEQ", "!=", CategoryPunctuation | CategoryBinaryOp},
	{LE, "LE", "<=", CategoryPunctuation | CategoryBinaryOp},
	{GE, "GE", ">=", CategoryPunctuation | CategoryBinaryOp},
	{FATARROW, "FATARROW", "=>", CategoryPunctuation},
	{ARROW, "ARROW", "->", CategoryPunctuation},
	{SHL, "SHL", "<<", CategoryPunctuation | CategoryBinaryOp},
	{SHR, "SHR", ">>", CategoryPunctuation | CategoryBinaryOp},
	{POW, "POW", "**", CategoryPunctuation | CategoryBinaryOp},
	{PLUSEQ, "PLUSEQ", "+=", CategoryPunctuation},
	{MINUSEQ, "MINUSEQ", "-=", CategoryPunctuation},
	{STAREQ, "STAREQ", "*=", CategoryPunctuation},
	{SLASHEQ, "SLASHEQ", "/=", CategoryPunctuation},
	{PERCENTEQ, "PERCENTEQ", "%=", CategoryPunctuation},
	{CARETEQ, "CARETEQ", "^=", CategoryPunctuation},
	{COLONEQ, "COLONEQ", ":=", CategoryPunctuation},
	{COLONSLASH, "COLONSLASH", ":/", CategoryPunctuation | CategoryBinaryOp},
	{COLONPERCENT, "COLONPERCENT", ":%", CategoryPunctuation | CategoryBinaryOp},
	{COLONSTAR, "COLONSTAR", ":*", CategoryPunctuation | CategoryBinaryOp},
	{COLONCOLON, "COLONCOLON", "::", CategoryPunctuation},
	{PLUSPLUS, "PLUSPLUS", "++", CategoryPunctuation},
	{MINUSMINUS, "MINUSMINUS", "--", CategoryPunctuation},

	{PLUS, "PLUS", "+", CategoryPunctuation | CategoryUnaryPrefix | CategoryBinaryOp},
	{MINUS, "MINUS", "-", CategoryPunctuation | CategoryUnaryPrefix | CategoryBinaryOp},
	{STAR, "STAR", "*", CategoryPunctuation | CategoryBinaryOp},
	{SLASH, "SLASH", "/", CategoryPunctuation | CategoryBinaryOp},
	{PERCENT, "PERCENT", "%", CategoryPunctuation | CategoryBinaryOp},
	{CARET, "CARET", "^", CategoryPunctuation | CategoryBinaryOp},
	{PIPE, "PIPE", "|", CategoryPunctuation | CategoryBinaryOp},
	{AMP, "AMP", "&", CategoryPunctuation | CategoryBinaryOp},
	{TILDE, "TILDE", "~", CategoryPunctuation | CategoryUnaryPrefix},
	{BANG, "BANG", "!", CategoryPunctuation | CategoryUnaryPrefix},
	{QUESTION, "QUESTION", "?", CategoryPunctuation},
	{AT, "AT", "@", CategoryPunctuation},
	{DOLLAR, "DOLLAR", "$", CategoryPunctuation},
	{HASH, "HASH", "#", CategoryPunctuation},
	{COLON, "COLON", ":", CategoryPunctuation},
	{SEMI, "SEMI", ";", CategoryPunctuation},
	{COMMA, "COMMA", ",", CategoryPunctuation},
	{DOT, "DOT", ".", CategoryPunctuation},
	{OPAREN, "OPAREN", "(", CategoryPunctuation | CategoryGrouping},
	{CPAREN, "CPAREN", ")", CategoryPunctuation | CategoryGrouping},
	{LBRACKET, "LBRACKET", "[", CategoryPunctuation | CategoryGrouping},
	{RBRACKET, "RBRACKET", "]", CategoryPunctuation | CategoryGrouping},
	{LBRACE, "LBRACE", "{", CategoryPunctuation | CategoryGrouping},
	{RBRACE, "RBRACE", "}", CategoryPunctuation | CategoryGrouping},
	{ASSIGN, "ASSIGN", "=", CategoryPunctuation},
	{LT, "LT", "<", CategoryPunctuation | CategoryBinaryOp},
	{GT, "GT", ">", CategoryPunctuation | CategoryBinaryOp},
	{BACKTICK, "BACKTICK", "`", CategoryPunctuation},
	{BACKSLASH, "BACKSLASH", "\\", CategoryPunctuation},
}

var byKind = make(map[Kind]Descriptor, len(descriptors))

// bySymbol is sorted longest-symbol-first so a greedy linear scan
// performs the longest-match rule without per-call sorting.
var bySymbol []Descriptor

func init() {
	for _, d := range descriptors {
		byKind[d.Kind] = d
	}
	bySymbol = append(bySymbol, descriptors...)
	sort.SliceStable(bySymbol, func(i, j int) bool {
		return len(bySymbol[i].Symbol) > len(bySymbol[j].Symbol)
	})
}

// Describe returns the static descriptor for a Kind. Kinds with no table
// entry (IDENT, INTEGER, FLOAT, STRINGLIT) return the zero Descriptor with
// Kind set.
func Describe(k Kind) Descriptor {
	if d, ok := byKind[k]; ok {
		return d
	}
	return Descriptor{Kind: k}
}

// Table returns the descriptor list sorted by descending symbol length,
// the order the tokenizer's longest-match scan relies on.
func Table() []Descriptor { return bySymbol }

func (k Kind) String() string {
	if d, ok := byKind[k]; ok {
		return d.Name
	}
	switch k {
	case IDENT:
		return "IDENT"
	case INTEGER:
		return "INTEGER"
	case FLOAT:
		return "FLOAT"
	case STRINGLIT:
		return "STRING"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Signedness tags an integer literal's suffix.
type Signedness byte

const (
	SignUnspecified Signedness = '?'
	SignSigned      Signedness = 'i'
	SignUnsigned    Signedness = 'u'
)

// IntLiteral is the decoded payload of an integer literal token.
type IntLiteral struct {
	Value uint64
	Sign  Signedness
	Width int // 0, 8, 16, 32, or 64; 0 means unspecified
}

// FloatLiteral is the decoded payload of a floating literal token.
type FloatLiteral struct {
	Value float64
	Width int // 32 or 64
}

// Token is a tagged value: exactly one of the payload fields is
// meaningful, selected by Kind.
type Token struct {
	Kind  Kind
	Ident string       // IDENT
	Str   []byte       // STRINGLIT, decoded bytes
	Int   IntLiteral   // INTEGER
	Flt   FloatLiteral // FLOAT
}

// Location is a 1-based source span, monotonically non-decreasing over a
// token stream.
type Location struct {
	Line     int
	FirstCol int
	LastCol  int
}

// Cover extends a to the end of b: when b ends after a, the result takes
// b's Line and LastCol and keeps a's FirstCol; otherwise a is returned
// unchanged. A Location holds a single line, so a cover across lines
// keeps only the later line.
func (a Location) Cover(b Location) Location {
	loc := a
	if b.Line > loc.Line || (b.Line == loc.Line && b.LastCol > loc.LastCol) {
		loc.Line = b.Line
		loc.LastCol = b.LastCol
	}
	return loc
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.FirstCol)
}

// SourceToken pairs a Token with its Location.
type SourceToken struct {
	Token Token
	Loc   Location
}

func (t Token) String() string {
	switch t.Kind {
	case IDENT:
		return t.Ident
	case STRINGLIT:
		return fmt.Sprintf("%q", string(t.Str))
	case INTEGER:
		return fmt.Sprintf("%d", t.Int.Value)
	case FLOAT:
		return fmt.Sprintf("%g", t.Flt.Value)
	default:
		d := Describe(t.Kind)
		if d.Symbol != "" {
			return d.Symbol
		}
		return d.Name
	}
}
