package lexer

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/glintlang/glint/internal/token"
)

// kindsOf strips locations and literal payloads, leaving just the Kind
// sequence — the shape most of these tests care about.
func kindsOf(toks []token.SourceToken) []token.Kind {
	kinds := make([]token.Kind, len(toks))
	for i, t := range toks {
		kinds[i] = t.Token.Kind
	}
	return kinds
}

func mustTokenize(t *testing.T, src string) []token.SourceToken {
	t.Helper()
	toks, _, err := Tokenize([]byte(src))
	if err != nil {
		t.Fatalf("Tokenize(%q): unexpected error: %v", src, err)
	}
	return toks
}

func TestEveryTableSymbolTokenizesAlone(t *testing.T) {
	for _, d := range token.Table() {
		d := d
		if d.Symbol == "" || d.Categories.Has(token.CategorySynthetic) {
			continue
		}
		if d.Kind == token.MINUSMINUS {
			// "--" is the comment/block-separator introducer; it can never
			// reach the punctuation matcher in isolation.
			continue
		}
		t.Run(d.Name, func(t *testing.T) {
			toks := mustTokenize(t, d.Symbol)
			if len(toks) < 1 || toks[0].Token.Kind != d.Kind {
				t.Fatalf("tokenizing %q: got kinds %v, want first kind %s", d.Symbol, kindsOf(toks), d.Kind)
			}
		})
	}
}

func TestIdentifierRoundTrips(t *testing.T) {
	for _, name := range []string{"foo", "_bar", "Baz2", "x", "a_b_c"} {
		toks := mustTokenize(t, name)
		if toks[0].Token.Kind != token.IDENT || toks[0].Token.Ident != name {
			t.Fatalf("tokenizing %q: got %+v", name, toks[0].Token)
		}
	}
}

func TestNumericLiterals(t *testing.T) {
	cases := []struct {
		src  string
		want token.Token
	}{
		{"42", token.Token{Kind: token.INTEGER, Int: token.IntLiteral{Value: 42, Sign: token.SignUnspecified, Width: 0}}},
		{"42i64", token.Token{Kind: token.INTEGER, Int: token.IntLiteral{Value: 42, Sign: token.SignSigned, Width: 64}}},
		{"42.0", token.Token{Kind: token.FLOAT, Flt: token.FloatLiteral{Value: 42.0, Width: 64}}},
		{"0x2A", token.Token{Kind: token.INTEGER, Int: token.IntLiteral{Value: 42, Sign: token.SignUnspecified, Width: 0}}},
		{"0b101010", token.Token{Kind: token.INTEGER, Int: token.IntLiteral{Value: 42, Sign: token.SignUnspecified, Width: 0}}},
		{"052", token.Token{Kind: token.INTEGER, Int: token.IntLiteral{Value: 42, Sign: token.SignUnspecified, Width: 0}}},
		{"1_000", token.Token{Kind: token.INTEGER, Int: token.IntLiteral{Value: 1000, Sign: token.SignUnspecified, Width: 0}}},
	}
	for _, c := range cases {
		toks := mustTokenize(t, c.src)
		if diff := cmp.Diff(c.want, toks[0].Token); diff != "" {
			t.Errorf("tokenizing %q (-want +got):\n%s", c.src, diff)
		}
	}
}

func TestStringLiteralEscapes(t *testing.T) {
	toks := mustTokenize(t, `"a\nb"`)
	got := string(toks[0].Token.Str)
	want := "a\nb"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestInvalidOctalDigitIsFatal(t *testing.T) {
	_, _, err := Tokenize([]byte("09"))
	if err == nil {
		t.Fatal("expected error for invalid octal digit")
	}
	if !strings.Contains(err.Error(), "base-8") {
		t.Fatalf("error should name the octal base, got: %v", err)
	}
}

func TestUnknownEscapeIsFatal(t *testing.T) {
	_, _, err := Tokenize([]byte(`"a\qb"`))
	if err == nil {
		t.Fatal("expected error for unknown escape")
	}
}

func TestUnterminatedStringIsFatal(t *testing.T) {
	_, _, err := Tokenize([]byte(`"abc`))
	if err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestTabInIndentationIsFatal(t *testing.T) {
	_, _, err := Tokenize([]byte("foo:\n\tbar\n"))
	if err == nil {
		t.Fatal("expected error for tab in indentation")
	}
}

func TestLayoutBalancesParens(t *testing.T) {
	src := "foo:\n    bar\n    baz\n"
	toks := mustTokenize(t, src)
	open, close := 0, 0
	for _, tk := range toks {
		switch tk.Token.Kind {
		case token.OPAREN:
			open++
		case token.CPAREN:
			close++
		}
	}
	if open != close {
		t.Fatalf("unbalanced layout parens: %d OPAREN vs %d CPAREN in %v", open, close, kindsOf(toks))
	}
}

func TestVerbatimBlockOpens(t *testing.T) {
	// "foo:\n    verbatim\n" -> OPAREN, VERBATIM keyword, CPAREN somewhere
	// in the stream.
	toks := mustTokenize(t, "foo:\n    verbatim\n")
	kinds := kindsOf(toks)
	wantSub := []token.Kind{token.OPAREN, token.VERBATIM, token.CPAREN}
	if !containsSubsequence(kinds, wantSub) {
		t.Fatalf("got %v, want subsequence %v", kinds, wantSub)
	}
}

func containsSubsequence(haystack, needle []token.Kind) bool {
	j := 0
	for _, k := range haystack {
		if j < len(needle) && k == needle[j] {
			j++
		}
	}
	return j == len(needle)
}

func TestColonWithoutIndentIsFatal(t *testing.T) {
	_, _, err := Tokenize([]byte("foo:\nbar\n"))
	if err == nil {
		t.Fatal("expected error for missing indent after ':'")
	}
}

func TestBlockSeparatorClosesAndReopens(t *testing.T) {
	toks := mustTokenize(t, "foo:\n    a\n    --\n    b\n")
	want := []token.Kind{
		token.IDENT, token.OPAREN, token.IDENT,
		token.CPAREN, token.LINE_END, token.OPAREN,
		token.IDENT, token.CPAREN, token.EOF,
	}
	if diff := cmp.Diff(want, kindsOf(toks)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestDotDotCollapsesSeparator(t *testing.T) {
	toks := mustTokenize(t, "f(1,\n.. 2)\n")
	want := []token.Kind{
		token.IDENT, token.OPAREN, token.INTEGER, token.COMMA,
		token.INTEGER, token.CPAREN, token.EOF,
	}
	if diff := cmp.Diff(want, kindsOf(toks)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestInlineCommentRunsToEndOfLine(t *testing.T) {
	toks := mustTokenize(t, "x -- the rest is ignored\n")
	want := []token.Kind{token.IDENT, token.EOF}
	if diff := cmp.Diff(want, kindsOf(toks)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestEmptyLinesAreSkipped(t *testing.T) {
	toks := mustTokenize(t, "x\n\n   \ny\n")
	kinds := kindsOf(toks)
	// Expect IDENT, LINE_END, IDENT, EOF with no extra synthetic noise from
	// the blank lines.
	want := []token.Kind{token.IDENT, token.LINE_END, token.IDENT, token.EOF}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
