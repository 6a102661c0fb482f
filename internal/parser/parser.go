// Package parser implements glint's recursive-descent expression and
// statement parser: token stream in, Tree<Unit> out, one
// token of lookahead, and a single mutable "code" flag that toggles
// between statement-list and data-list interpretation of a parenthesised
// group. The parser is a struct holding the token slice and a position
// cursor, with one recursive-descent method per grammar production; any
// failed expectation aborts with a fatal Error carrying a code snippet.
package parser

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/invariant"
	"github.com/glintlang/glint/internal/token"
)

// newLogger is called per Parse, not at package init, so flipping
// GLINT_DEBUG_PARSER (e.g. via the CLI's --debug flag) takes effect on
// the next parse.
func newLogger() *slog.Logger {
	level := slog.LevelError
	if os.Getenv("GLINT_DEBUG_PARSER") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

type node = ast.Node[ast.Unit]

// Parser holds the token cursor and the statement-vs-data grouping mode.
type Parser struct {
	toks []token.SourceToken
	pos  int
	src  []byte
	code bool
	log  *slog.Logger
}

// Parse consumes a full token stream into a Tree<Unit> for the whole
// file: a Block of its statements, or the statement itself when the file
// holds exactly one.
func Parse(toks []token.SourceToken, src []byte) (node, error) {
	p := &Parser{toks: toks, src: src, code: true, log: newLogger()}
	root, err := p.block()
	if err != nil {
		return nil, err
	}
	if p.curKind() != token.EOF {
		return nil, p.errf(p.cur().Loc, "unexpected trailing token %s", p.cur().Token)
	}
	return root, nil
}

func (p *Parser) cur() token.SourceToken {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) curKind() token.Kind { return p.cur().Token.Kind }

func (p *Parser) advance() token.SourceToken {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	p.log.Debug("advance", "kind", t.Token.Kind, "loc", t.Loc.String())
	return t
}

func (p *Parser) expect(k token.Kind) (token.SourceToken, error) {
	if p.curKind() != k {
		return token.SourceToken{}, p.errf(p.cur().Loc, "expected %s, found %s", k, p.cur().Token)
	}
	return p.advance(), nil
}

func (p *Parser) expectIdent() (string, token.Location, error) {
	t, err := p.expect(token.IDENT)
	if err != nil {
		return "", token.Location{}, err
	}
	return t.Token.Ident, t.Loc, nil
}

func (p *Parser) errf(loc token.Location, format string, args ...interface{}) error {
	return &Error{Message: fmt.Sprintf(format, args...), Loc: loc, Source: p.src}
}

// block parses statement (LINE_END statement)*, collapsing to the
// single child when exactly one statement is present, and stopping at
// EOF or an enclosing CPAREN.
func (p *Parser) block() (node, error) {
	loc := p.cur().Loc
	var stmts []node
	for {
		prevPos := p.pos
		for p.curKind() == token.LINE_END {
			p.advance()
		}
		if p.curKind() == token.EOF || p.curKind() == token.CPAREN {
			break
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		invariant.Invariant(p.pos > prevPos, "block must make progress parsing a statement")
		if p.curKind() == token.LINE_END {
			continue
		}
		if p.curKind() == token.EOF || p.curKind() == token.CPAREN {
			break
		}
		return nil, p.errf(p.cur().Loc, "expected end of statement, found %s", p.cur().Token)
	}
	if len(stmts) == 1 {
		return stmts[0], nil
	}
	end := loc
	if len(stmts) > 0 {
		end = stmts[len(stmts)-1].Location()
	}
	return ast.NewBlock(loc.Cover(end), ast.Unit{}, stmts), nil
}

func (p *Parser) statement() (node, error) {
	switch p.curKind() {
	case token.TYPE:
		return p.typeDecl()
	case token.ALIAS:
		return p.aliasDecl()
	case token.VAR:
		return p.varDecl()
	case token.DEF:
		return p.fnDecl()
	case token.IF:
		return p.ifExpr()
	case token.WHILE:
		return p.whileStatement()
	case token.FOR:
		return p.forStatement()
	case token.ELIF:
		return nil, p.errf(p.cur().Loc, "dangling elif with no preceding if")
	case token.ELSE:
		return nil, p.errf(p.cur().Loc, "dangling else with no preceding if")
	default:
		return p.assignment()
	}
}

func (p *Parser) assignment() (node, error) {
	lhs, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.curKind() == token.ASSIGN {
		p.advance()
		rhs, err := p.assignment()
		if err != nil {
			return nil, err
		}
		return ast.NewAssign(lhs.Location().Cover(rhs.Location()), ast.Unit{}, lhs, rhs), nil
	}
	return lhs, nil
}

func (p *Parser) expression() (node, error) {
	switch p.curKind() {
	case token.IF:
		return p.ifExpr()
	case token.FN:
		return p.fnExprLit()
	case token.BREAK:
		t := p.advance()
		return ast.NewBreak[ast.Unit](t.Loc, ast.Unit{}), nil
	case token.CONTINUE:
		t := p.advance()
		return ast.NewContinue[ast.Unit](t.Loc, ast.Unit{}), nil
	case token.RETURN:
		t := p.advance()
		value, err := p.optionalExpr()
		if err != nil {
			return nil, err
		}
		loc := t.Loc
		if value != nil {
			loc = loc.Cover(value.Location())
		}
		return ast.NewReturn(loc, ast.Unit{}, value), nil
	case token.YIELD:
		t := p.advance()
		value, err := p.optionalExpr()
		if err != nil {
			return nil, err
		}
		loc := t.Loc
		if value != nil {
			loc = loc.Cover(value.Location())
		}
		return ast.NewYield(loc, ast.Unit{}, value), nil
	default:
		return p.orTest()
	}
}

// optionalExpr parses an expression unless the next token terminates the
// enclosing construct, in which case it returns (nil, nil) — used for
// bare `return` / `yield`.
func (p *Parser) optionalExpr() (node, error) {
	switch p.curKind() {
	case token.LINE_END, token.CPAREN, token.EOF, token.COMMA, token.SEMI, token.ELSE, token.ELIF:
		return nil, nil
	default:
		return p.expression()
	}
}

func isComparisonOp(k token.Kind) bool {
	switch k {
	case token.LE, token.GE, token.LT, token.GT, token.EQEQ, token.NOTEQ, token.IN, token.IS:
		return true
	default:
		return false
	}
}

func (p *Parser) orTest() (node, error) {
	left, err := p.andTest()
	if err != nil {
		return nil, err
	}
	for p.curKind() == token.OR {
		p.advance()
		right, err := p.andTest()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinOp(left.Location().Cover(right.Location()), ast.Unit{}, token.OR, left, right)
	}
	return left, nil
}

func (p *Parser) andTest() (node, error) {
	left, err := p.notTest()
	if err != nil {
		return nil, err
	}
	for p.curKind() == token.AND {
		p.advance()
		right, err := p.notTest()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinOp(left.Location().Cover(right.Location()), ast.Unit{}, token.AND, left, right)
	}
	return left, nil
}

func (p *Parser) notTest() (node, error) {
	if p.curKind() == token.NOT {
		t := p.advance()
		operand, err := p.notTest()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(t.Loc.Cover(operand.Location()), ast.Unit{}, token.NOT, operand), nil
	}
	return p.comparison()
}

// comparison handles the two-word operators `not in` and `is not` as
// well as the ordinary single-token comparisons. The right-hand operand
// binds at atom_expr tightness, not the full chain.
func (p *Parser) comparison() (node, error) {
	left, err := p.bitOr()
	if err != nil {
		return nil, err
	}
	switch {
	case p.curKind() == token.NOT:
		t := p.advance()
		if _, err := p.expect(token.IN); err != nil {
			return nil, err
		}
		right, err := p.atomExpr()
		if err != nil {
			return nil, err
		}
		in := ast.NewBinOp(left.Location().Cover(right.Location()), ast.Unit{}, token.IN, left, right)
		return ast.NewUnaryOp(t.Loc.Cover(in.Location()), ast.Unit{}, token.NOT, in), nil
	case p.curKind() == token.IS:
		t := p.advance()
		if p.curKind() == token.NOT {
			p.advance()
			right, err := p.atomExpr()
			if err != nil {
				return nil, err
			}
			is := ast.NewBinOp(left.Location().Cover(right.Location()), ast.Unit{}, token.IS, left, right)
			return ast.NewUnaryOp(t.Loc.Cover(is.Location()), ast.Unit{}, token.NOT, is), nil
		}
		right, err := p.atomExpr()
		if err != nil {
			return nil, err
		}
		return ast.NewBinOp(left.Location().Cover(right.Location()), ast.Unit{}, token.IS, left, right), nil
	case isComparisonOp(p.curKind()):
		op := p.advance()
		right, err := p.atomExpr()
		if err != nil {
			return nil, err
		}
		return ast.NewBinOp(left.Location().Cover(right.Location()), ast.Unit{}, op.Token.Kind, left, right), nil
	default:
		return left, nil
	}
}

func (p *Parser) bitOr() (node, error) {
	left, err := p.bitXor()
	if err != nil {
		return nil, err
	}
	for p.curKind() == token.PIPE {
		p.advance()
		right, err := p.bitXor()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinOp(left.Location().Cover(right.Location()), ast.Unit{}, token.PIPE, left, right)
	}
	return left, nil
}

func (p *Parser) bitXor() (node, error) {
	left, err := p.bitAnd()
	if err != nil {
		return nil, err
	}
	for p.curKind() == token.CARET {
		p.advance()
		right, err := p.bitAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinOp(left.Location().Cover(right.Location()), ast.Unit{}, token.CARET, left, right)
	}
	return left, nil
}

func (p *Parser) bitAnd() (node, error) {
	left, err := p.bitShift()
	if err != nil {
		return nil, err
	}
	for p.curKind() == token.AMP {
		p.advance()
		right, err := p.bitShift()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinOp(left.Location().Cover(right.Location()), ast.Unit{}, token.AMP, left, right)
	}
	return left, nil
}

func (p *Parser) bitShift() (node, error) {
	left, err := p.arith()
	if err != nil {
		return nil, err
	}
	for p.curKind() == token.SHL || p.curKind() == token.SHR {
		op := p.advance()
		right, err := p.arith()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinOp(left.Location().Cover(right.Location()), ast.Unit{}, op.Token.Kind, left, right)
	}
	return left, nil
}

func (p *Parser) arith() (node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.curKind() == token.PLUS || p.curKind() == token.MINUS {
		op := p.advance()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinOp(left.Location().Cover(right.Location()), ast.Unit{}, op.Token.Kind, left, right)
	}
	return left, nil
}

func isTermOp(k token.Kind) bool {
	switch k {
	case token.STAR, token.SLASH, token.PERCENT, token.COLONSTAR, token.COLONSLASH, token.COLONPERCENT:
		return true
	default:
		return false
	}
}

func (p *Parser) term() (node, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for isTermOp(p.curKind()) {
		op := p.advance()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinOp(left.Location().Cover(right.Location()), ast.Unit{}, op.Token.Kind, left, right)
	}
	return left, nil
}

func (p *Parser) factor() (node, error) {
	switch p.curKind() {
	case token.PLUS, token.MINUS, token.TILDE:
		t := p.advance()
		operand, err := p.factor()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOp(t.Loc.Cover(operand.Location()), ast.Unit{}, t.Token.Kind, operand), nil
	default:
		return p.power()
	}
}

// power is the `**` layer: right-associative and binds tighter than the
// unary-prefix layer.
func (p *Parser) power() (node, error) {
	base, err := p.atomExpr()
	if err != nil {
		return nil, err
	}
	if p.curKind() == token.POW {
		p.advance()
		exp, err := p.factor()
		if err != nil {
			return nil, err
		}
		return ast.NewBinOp(base.Location().Cover(exp.Location()), ast.Unit{}, token.POW, base, exp), nil
	}
	return base, nil
}

// atomExpr implements the `.` uniform-function-call desugaring:
// `a.b(c)` becomes `Invoc(b, [a, c])`; `a.b` (no call) becomes
// `Invoc(b, [a])`.
func (p *Parser) atomExpr() (node, error) {
	left, err := p.simpleAtom()
	if err != nil {
		return nil, err
	}
	for p.curKind() == token.DOT {
		p.advance()
		right, err := p.simpleAtom()
		if err != nil {
			return nil, err
		}
		left = dotDesugar(left, right)
	}
	return left, nil
}

func dotDesugar(lhs, rhs node) node {
	if invoc, ok := rhs.(*ast.Invoc[ast.Unit]); ok {
		elems := append([]node{lhs}, invoc.Args.Elems...)
		args := ast.NewData(invoc.Args.Location(), ast.Unit{}, elems)
		return ast.NewInvoc(lhs.Location().Cover(rhs.Location()), ast.Unit{}, invoc.Target, args)
	}
	args := ast.NewData(lhs.Location(), ast.Unit{}, []node{lhs})
	return ast.NewInvoc(lhs.Location().Cover(rhs.Location()), ast.Unit{}, rhs, args)
}

// simpleAtom implements invocation chaining: `atom ( "(" data ")" )*`.
// Invocation argument lists are always parsed in data mode regardless
// of the ambient code flag.
func (p *Parser) simpleAtom() (node, error) {
	a, err := p.atom()
	if err != nil {
		return nil, err
	}
	for p.curKind() == token.OPAREN {
		open := p.advance()
		saved := p.code
		p.code = false
		elems, err := p.dataElems()
		if err != nil {
			return nil, err
		}
		p.code = saved
		closeTok, err := p.expect(token.CPAREN)
		if err != nil {
			return nil, err
		}
		args := ast.NewData(open.Loc.Cover(closeTok.Loc), ast.Unit{}, elems)
		a = ast.NewInvoc(a.Location().Cover(closeTok.Loc), ast.Unit{}, a, args)
	}
	return a, nil
}

var primitiveTypeKinds = map[token.Kind]bool{
	token.BYTE: true, token.SHORT: true, token.INT: true, token.LONG: true,
	token.UBYTE: true, token.USHORT: true, token.UINT: true, token.ULONG: true,
	token.I8: true, token.I16: true, token.I32: true, token.I64: true,
	token.U8: true, token.U16: true, token.U32: true, token.U64: true,
	token.F32: true, token.F64: true,
	token.CHAR: true, token.BOOL: true, token.PTR: true, token.ARRAY: true,
	token.DYNARR: true, token.SLICE: true, token.VARIANT_KW: true,
	token.TUPLE_KW: true, token.STRING_KW: true, token.FN: true,
}

// atom implements `atom = "(" … ")" | "data" "(" data ")" | "do" "(" block ")"
// | identifier | literal | primitive-type keyword`.
func (p *Parser) atom() (node, error) {
	switch p.curKind() {
	case token.OPAREN:
		return p.parenGroup()
	case token.DATA:
		p.advance()
		open, err := p.expect(token.OPAREN)
		if err != nil {
			return nil, err
		}
		saved := p.code
		p.code = false
		elems, err := p.dataElems()
		if err != nil {
			return nil, err
		}
		p.code = saved
		closeTok, err := p.expect(token.CPAREN)
		if err != nil {
			return nil, err
		}
		return ast.NewData(open.Loc.Cover(closeTok.Loc), ast.Unit{}, elems), nil
	case token.DO:
		p.advance()
		if _, err := p.expect(token.OPAREN); err != nil {
			return nil, err
		}
		saved := p.code
		p.code = true
		body, err := p.block()
		if err != nil {
			return nil, err
		}
		p.code = saved
		if _, err := p.expect(token.CPAREN); err != nil {
			return nil, err
		}
		return body, nil
	case token.IDENT:
		t := p.advance()
		return ast.NewIdent[ast.Unit](t.Loc, ast.Unit{}, t.Token.Ident), nil
	case token.INTEGER:
		t := p.advance()
		return ast.NewIntLit[ast.Unit](t.Loc, ast.Unit{}, t.Token.Int), nil
	case token.FLOAT:
		t := p.advance()
		return ast.NewFloatLit[ast.Unit](t.Loc, ast.Unit{}, t.Token.Flt), nil
	case token.STRINGLIT:
		t := p.advance()
		return ast.NewStringLit[ast.Unit](t.Loc, ast.Unit{}, t.Token.Str), nil
	case token.TRUE:
		t := p.advance()
		return ast.NewTrue[ast.Unit](t.Loc, ast.Unit{}), nil
	case token.FALSE:
		t := p.advance()
		return ast.NewFalse[ast.Unit](t.Loc, ast.Unit{}), nil
	default:
		if primitiveTypeKinds[p.curKind()] {
			t := p.advance()
			return ast.NewPrimitiveType[ast.Unit](t.Loc, ast.Unit{}, t.Token.Kind), nil
		}
		// Reserved words with no dedicated statement/expression production
		// of their own (verbatim, doc, meta, note, help, ...) are still
		// valid bare atoms — e.g. `foo:\n    verbatim` is Invoc(foo,
		// [verbatim]) — so they parse as an
		// identifier spelled after the keyword.
		if d := token.Describe(p.curKind()); d.IsReservedWord() {
			t := p.advance()
			return ast.NewIdent[ast.Unit](t.Loc, ast.Unit{}, d.Symbol), nil
		}
		return nil, p.errf(p.cur().Loc, "unexpected token %s", p.cur().Token)
	}
}

// parenGroup parses a bare `( … )`: a statement block when the ambient
// code flag is set, otherwise a data list collapsing to its single
// child when it holds exactly one element (ordinary grouping parens).
func (p *Parser) parenGroup() (node, error) {
	open := p.advance()
	if p.code {
		body, err := p.block()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.CPAREN); err != nil {
			return nil, err
		}
		return body, nil
	}
	elems, err := p.dataElems()
	if err != nil {
		return nil, err
	}
	closeTok, err := p.expect(token.CPAREN)
	if err != nil {
		return nil, err
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	return ast.NewData(open.Loc.Cover(closeTok.Loc), ast.Unit{}, elems), nil
}

// dataElems parses a comma/semicolon separated expression list up to
// (but not consuming) the closing CPAREN, allowing a trailing separator.
func (p *Parser) dataElems() ([]node, error) {
	var elems []node
	if p.curKind() == token.CPAREN {
		return elems, nil
	}
	for {
		prevPos := p.pos
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		invariant.Invariant(p.pos > prevPos, "dataElems must make progress")
		if p.curKind() == token.COMMA || p.curKind() == token.SEMI {
			p.advance()
			if p.curKind() == token.CPAREN {
				break
			}
			continue
		}
		break
	}
	return elems, nil
}

// typeExpr parses a type-context atom chain (no fn/break/continue/
// return/yield dispatch — those belong only to value expressions) and
// wraps it to mark the child as being evaluated in type context.
func (p *Parser) typeExpr() (node, error) {
	child, err := p.atomExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewTypeExpr(child.Location(), ast.Unit{}, child), nil
}

// typeDecl parses the two forms of a `type` statement: `type Name =
// <type-expression>` introduces a nominal over an existing type, and
// `type Name(x, y: int, ...)` introduces a nominal struct from a field
// list. The field-list parens may come from layout, so `type Name:`
// followed by indented `field: type` lines is the same production. A
// bare `type (fields)` with no name is an anonymous struct expression.
func (p *Parser) typeDecl() (node, error) {
	start := p.advance() // TYPE
	var name string
	haveName := false
	if p.curKind() == token.IDENT {
		t := p.advance()
		name = t.Token.Ident
		haveName = true
		if p.curKind() == token.ASSIGN {
			p.advance()
			texpr, err := p.typeExpr()
			if err != nil {
				return nil, err
			}
			return ast.NewDefType(start.Loc.Cover(texpr.Location()), ast.Unit{}, name, texpr), nil
		}
	}
	open, err := p.expect(token.OPAREN)
	if err != nil {
		return nil, err
	}
	var names []string
	var types []node
	if p.curKind() != token.CPAREN {
		names, types, err = p.structFields()
		if err != nil {
			return nil, err
		}
	}
	closeTok, err := p.expect(token.CPAREN)
	if err != nil {
		return nil, err
	}
	st := ast.NewStruct(open.Loc.Cover(closeTok.Loc), ast.Unit{}, names, types)
	if !haveName {
		return st, nil
	}
	texpr := ast.NewTypeExpr(st.Location(), ast.Unit{}, st)
	return ast.NewDefType(start.Loc.Cover(closeTok.Loc), ast.Unit{}, name, texpr), nil
}

// structFields parses a struct declaration's field list: comma-separated
// `name` runs, each run optionally closed by `: T` that propagates
// backward over its unannotated names, with LINE_END also accepted as a
// group separator for the layout form.
func (p *Parser) structFields() ([]string, []node, error) {
	var names []string
	var types []node
	for {
		for {
			for {
				name, _, err := p.expectIdent()
				if err != nil {
					return nil, nil, err
				}
				names = append(names, name)
				types = append(types, nil)
				if p.curKind() == token.COMMA {
					p.advance()
					continue
				}
				break
			}
			if p.curKind() == token.COLON {
				p.advance()
				t, err := p.typeExpr()
				if err != nil {
					return nil, nil, err
				}
				for i := len(types) - 1; i >= 0 && types[i] == nil; i-- {
					types[i] = t
				}
			}
			if p.curKind() == token.COMMA {
				p.advance()
				continue
			}
			break
		}
		if p.curKind() == token.LINE_END {
			p.advance()
			if p.curKind() == token.CPAREN {
				break
			}
			continue
		}
		break
	}
	for i := range types {
		if types[i] == nil {
			types[i] = unitType(p.cur().Loc)
		}
	}
	return names, types, nil
}

func (p *Parser) aliasDecl() (node, error) {
	start := p.advance() // ALIAS
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	texpr, err := p.typeExpr()
	if err != nil {
		return nil, err
	}
	return ast.NewLetType(start.Loc.Cover(texpr.Location()), ast.Unit{}, name, texpr), nil
}

func (p *Parser) varDecl() (node, error) {
	start := p.advance() // VAR
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var declType node
	if p.curKind() == token.COLON {
		p.advance()
		declType, err = p.typeExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	rhs, err := p.assignment()
	if err != nil {
		return nil, err
	}
	return ast.NewVarDef(start.Loc.Cover(rhs.Location()), ast.Unit{}, name, declType, rhs), nil
}

// unitType is the placeholder node for an unannotated parameter: an
// empty Data, which the checker resolves to void.
func unitType(loc token.Location) node {
	return ast.NewData[ast.Unit](loc, ast.Unit{}, nil)
}

// paramList parses a `(p1, p2: T, p3, p4: U)`-style parameter list,
// propagating an explicit `: T` backward over the run of preceding
// unannotated names.
func (p *Parser) paramList() ([]string, []node, error) {
	var names []string
	var types []node
	for p.curKind() == token.IDENT {
		name, _, err := p.expectIdent()
		if err != nil {
			return nil, nil, err
		}
		names = append(names, name)
		types = append(types, nil)
		if p.curKind() == token.COLON {
			p.advance()
			t, err := p.typeExpr()
			if err != nil {
				return nil, nil, err
			}
			for i := len(types) - 1; i >= 0 && types[i] == nil; i-- {
				types[i] = t
			}
		}
		if p.curKind() == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	for i := range types {
		if types[i] == nil {
			types[i] = unitType(p.cur().Loc)
		}
	}
	return names, types, nil
}

func (p *Parser) fnDecl() (node, error) {
	start := p.advance() // DEF
	name, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.OPAREN); err != nil {
		return nil, err
	}
	names, types, err := p.paramList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.CPAREN); err != nil {
		return nil, err
	}
	var result node
	if p.curKind() == token.COLON {
		p.advance()
		result, err = p.typeExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	body, err := p.assignment()
	if err != nil {
		return nil, err
	}
	fn := ast.NewFnExpr(start.Loc.Cover(body.Location()), ast.Unit{}, names, types, result, body, nil)
	return ast.NewVarDef(fn.Location(), ast.Unit{}, name, nil, fn), nil
}

func (p *Parser) fnExprLit() (node, error) {
	start := p.advance() // FN
	if _, err := p.expect(token.OPAREN); err != nil {
		return nil, err
	}
	names, types, err := p.paramList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.CPAREN); err != nil {
		return nil, err
	}
	var result node
	if p.curKind() == token.COLON {
		p.advance()
		result, err = p.typeExpr()
		if err != nil {
			return nil, err
		}
	}
	var captures []ast.Capture
	if p.curKind() == token.WITH {
		p.advance()
		captures, err = p.captureList()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	body, err := p.assignment()
	if err != nil {
		return nil, err
	}
	return ast.NewFnExpr(start.Loc.Cover(body.Location()), ast.Unit{}, names, types, result, body, captures), nil
}

func (p *Parser) captureList() ([]ast.Capture, error) {
	if _, err := p.expect(token.OPAREN); err != nil {
		return nil, err
	}
	var captures []ast.Capture
	for p.curKind() != token.CPAREN {
		byVar := false
		if p.curKind() == token.VAR {
			p.advance()
			byVar = true
		}
		name, _, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		captures = append(captures, ast.Capture{Name: name, ByVar: byVar})
		if p.curKind() == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.CPAREN); err != nil {
		return nil, err
	}
	return captures, nil
}

// ifExpr parses the `if` clause together with any directly-following
// `elif`/`else` clauses. elif_tests and
// elif_bodies are parallel vectors whose first entry is the `if`
// clause itself.
func (p *Parser) ifExpr() (node, error) {
	start := p.advance() // IF
	test, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	tests := []node{test}
	bodies := []node{body}
	var elseBranch node
	end := body.Location()
	for {
		prevPos := p.pos
		skipped := p.pos
		if p.curKind() == token.LINE_END {
			p.advance()
		}
		if p.curKind() == token.ELIF {
			p.advance()
			t, err := p.expression()
			if err != nil {
				return nil, err
			}
			b, err := p.statement()
			if err != nil {
				return nil, err
			}
			tests = append(tests, t)
			bodies = append(bodies, b)
			end = b.Location()
			invariant.Invariant(p.pos > prevPos, "ifExpr must make progress")
			continue
		}
		if p.curKind() == token.ELSE {
			p.advance()
			b, err := p.statement()
			if err != nil {
				return nil, err
			}
			elseBranch = b
			end = b.Location()
			break
		}
		p.pos = skipped // no elif/else: put back the speculatively-skipped LINE_END
		break
	}
	return ast.NewIf(start.Loc.Cover(end), ast.Unit{}, tests, bodies, elseBranch), nil
}

func (p *Parser) whileStatement() (node, error) {
	start := p.advance() // WHILE
	test, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return ast.NewWhile(start.Loc.Cover(body.Location()), ast.Unit{}, test, body), nil
}

func (p *Parser) forStatement() (node, error) {
	start := p.advance() // FOR
	varName, _, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IN); err != nil {
		return nil, err
	}
	iter, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return ast.NewFor(start.Loc.Cover(body.Location()), ast.Unit{}, varName, iter, body), nil
}
