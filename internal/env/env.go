// Package env implements the type checker's lexically-scoped
// Environment: a context tag plus three symbol tables
// (vars, fns, types), each an immutable string-to-type mapping.
//
// The three tables are plain Go maps shallow-copied on every scope
// extension rather than backed by a persistent (structural-sharing)
// trie. A scope's map only ever grows by a handful of bindings at a
// time, so the copy is cheap relative to the cost of vendoring or
// hand-rolling a HAMT for a single call site; what matters is the
// immutability contract, which cloning preserves.
package env

import "github.com/glintlang/glint/internal/types"

// Context selects which of the three tables an Identifier is resolved
// against.
type Context int

const (
	Var Context = iota
	Fn
	Type
)

func (c Context) String() string {
	switch c {
	case Var:
		return "var"
	case Fn:
		return "fn"
	case Type:
		return "type"
	default:
		return "unknown"
	}
}

// Environment is immutable: every With* method returns a new value, the
// original is untouched, so sibling scopes built from the same parent
// never observe each other's bindings.
type Environment struct {
	ctx  Context
	vars map[string]*types.Type
	fns  map[string]*types.Type
	typs map[string]*types.Type
}

// New returns an empty environment with the given default context.
func New(ctx Context) Environment {
	return Environment{
		ctx:  ctx,
		vars: map[string]*types.Type{},
		fns:  map[string]*types.Type{},
		typs: map[string]*types.Type{},
	}
}

// Context returns the environment's current lookup context.
func (e Environment) Context() Context { return e.ctx }

// WithContext returns a copy of e with its context switched, sharing the
// same underlying tables (a context switch never modifies bindings).
func (e Environment) WithContext(ctx Context) Environment {
	e.ctx = ctx
	return e
}

// Lookup resolves name in the table selected by e's current context.
func (e Environment) Lookup(name string) (*types.Type, bool) {
	return e.LookupIn(e.ctx, name)
}

// LookupIn resolves name in the table for an explicit context,
// regardless of e's own current context — the checker's identifier
// lookup and its type-context Invoc handling (which probes the type
// table for the strlit marker) use this.
func (e Environment) LookupIn(ctx Context, name string) (*types.Type, bool) {
	t, ok := e.tableFor(ctx)[name]
	return t, ok
}

// WithVar returns a child environment with name bound to t in the
// variable table, leaving e untouched.
func (e Environment) WithVar(name string, t *types.Type) Environment {
	return e.extend(Var, name, t)
}

// WithFn returns a child environment with name bound to t in the
// function table.
func (e Environment) WithFn(name string, t *types.Type) Environment {
	return e.extend(Fn, name, t)
}

// WithType returns a child environment with name bound to t in the
// type table.
func (e Environment) WithType(name string, t *types.Type) Environment {
	return e.extend(Type, name, t)
}

func (e Environment) extend(ctx Context, name string, t *types.Type) Environment {
	next := e.clone()
	table := next.tableFor(ctx)
	table[name] = t
	return next
}

func (e Environment) clone() Environment {
	return Environment{
		ctx:  e.ctx,
		vars: cloneTable(e.vars),
		fns:  cloneTable(e.fns),
		typs: cloneTable(e.typs),
	}
}

func cloneTable(m map[string]*types.Type) map[string]*types.Type {
	out := make(map[string]*types.Type, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (e Environment) tableFor(ctx Context) map[string]*types.Type {
	switch ctx {
	case Var:
		return e.vars
	case Fn:
		return e.fns
	case Type:
		return e.typs
	default:
		return e.vars
	}
}

// Names returns every identifier bound in the table for ctx — used by
// the checker's did-you-mean suggestion to build the candidate list for
// fuzzy matching.
func (e Environment) Names(ctx Context) []string {
	table := e.tableFor(ctx)
	names := make([]string, 0, len(table))
	for k := range table {
		names = append(names, k)
	}
	return names
}
