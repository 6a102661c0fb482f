package token

import (
	"strings"
	"testing"
)

func TestDescribeRoundTrips(t *testing.T) {
	for _, d := range Table() {
		got := Describe(d.Kind)
		if got.Name != d.Name || got.Symbol != d.Symbol || got.Categories != d.Categories {
			t.Errorf("Describe(%s): got %+v, want %+v", d.Name, got, d)
		}
	}
}

func TestTableSortedByDescendingSymbolLength(t *testing.T) {
	table := Table()
	for i := 1; i < len(table); i++ {
		if len(table[i-1].Symbol) < len(table[i].Symbol) {
			t.Fatalf("table not sorted longest-first: %q (len %d) before %q (len %d)",
				table[i-1].Symbol, len(table[i-1].Symbol), table[i].Symbol, len(table[i].Symbol))
		}
	}
}

func TestSyntheticTokensHaveEmptySymbols(t *testing.T) {
	for _, k := range []Kind{INDENT, DEDENT, EOL, LINE_END} {
		d := Describe(k)
		if d.Symbol != "" {
			t.Errorf("%s: synthetic token has symbol %q, want empty", d.Name, d.Symbol)
		}
		if !d.Categories.Has(CategorySynthetic) {
			t.Errorf("%s: missing CategorySynthetic", d.Name)
		}
	}
}

func TestReservedWordsAreAllCapsNamedAndLowercaseSpelled(t *testing.T) {
	for _, d := range Table() {
		if !d.IsReservedWord() {
			continue
		}
		if d.Symbol == "" {
			t.Errorf("%s: reserved word with empty symbol", d.Name)
		}
		if d.Symbol != strings.ToLower(d.Symbol) {
			t.Errorf("%s: reserved word symbol %q not lowercase", d.Name, d.Symbol)
		}
		if d.Name != strings.ToUpper(d.Name) {
			t.Errorf("reserved word name %q not ALL_CAPS", d.Name)
		}
	}
}

func TestSymbolsAreUnique(t *testing.T) {
	seen := map[string]string{}
	for _, d := range Table() {
		if d.Symbol == "" {
			continue
		}
		if prev, ok := seen[d.Symbol]; ok {
			t.Errorf("symbol %q claimed by both %s and %s", d.Symbol, prev, d.Name)
		}
		seen[d.Symbol] = d.Name
	}
}

func TestLocationCover(t *testing.T) {
	a := Location{Line: 1, FirstCol: 3, LastCol: 5}
	b := Location{Line: 2, FirstCol: 1, LastCol: 4}

	got := a.Cover(b)
	if got.Line != 2 || got.FirstCol != 3 || got.LastCol != 4 {
		t.Fatalf("Cover spanning lines: got %+v", got)
	}

	sameLine := Location{Line: 1, FirstCol: 6, LastCol: 9}
	got = a.Cover(sameLine)
	if got.Line != 1 || got.FirstCol != 3 || got.LastCol != 9 {
		t.Fatalf("Cover same line: got %+v", got)
	}
}

func TestTokenString(t *testing.T) {
	cases := []struct {
		tok  Token
		want string
	}{
		{Token{Kind: IDENT, Ident: "foo"}, "foo"},
		{Token{Kind: INTEGER, Int: IntLiteral{Value: 42}}, "42"},
		{Token{Kind: STRINGLIT, Str: []byte("hi")}, `"hi"`},
		{Token{Kind: PLUS}, "+"},
		{Token{Kind: LINE_END}, "LINE_END"},
	}
	for _, c := range cases {
		if got := c.tok.String(); got != c.want {
			t.Errorf("String(%s): got %q, want %q", c.tok.Kind, got, c.want)
		}
	}
}
