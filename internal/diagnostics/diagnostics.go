// Package diagnostics holds the type checker's recoverable error list.
//
// A Sink is passed by pointer through the checker rather than living in
// a package var, so running the checker twice in the same process (as
// the test suite does, repeatedly) never leaks diagnostics between runs.
package diagnostics

import (
	"fmt"

	"github.com/glintlang/glint/internal/token"
)

// Diagnostic is a single human-readable message tied to a source
// location.
type Diagnostic struct {
	Message string
	Loc     token.Location
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Loc, d.Message)
}

// Sink accumulates diagnostics in the order they are reported, which —
// since the checker walks the AST in source order — is source-code
// order.
type Sink struct {
	items []Diagnostic
}

// NewSink returns an empty Sink ready to pass into a checker run.
func NewSink() *Sink {
	return &Sink{}
}

// Report appends a formatted diagnostic at loc.
func (s *Sink) Report(loc token.Location, format string, args ...interface{}) {
	s.items = append(s.items, Diagnostic{Message: fmt.Sprintf(format, args...), Loc: loc})
}

// Items returns the accumulated diagnostics in report order.
func (s *Sink) Items() []Diagnostic {
	return s.items
}

// HasErrors reports whether any diagnostic was recorded — the CLI uses
// this to decide its exit code.
func (s *Sink) HasErrors() bool {
	return len(s.items) > 0
}
