// Package diag implements the error taxonomy of §7: syntax errors and
// compile errors abort compilation and are collected for reporting;
// internal invariant violations panic rather than being reported, since
// they indicate a bug in this engine rather than in the user's program.
package diag

import (
	"fmt"
	goscanner "go/scanner"
	gotoken "go/token"

	"github.com/lucorth/esbc/token"
)

type (
	// Error is a single positioned diagnostic. Aliased from the standard
	// library the same way the teacher's scanner package aliases
	// go/scanner.Error, so that the same sorting, deduplication, and
	// "file:line:col: msg" formatting comes for free.
	Error = goscanner.Error
	// ErrorList collects Errors, sorts them by position, and can report
	// itself as a single error.
	ErrorList = goscanner.ErrorList
)

// Kind distinguishes the two surfaced diagnostic kinds of §7. A Kind is
// informational only; both kinds abort compilation identically.
type Kind int

const (
	// Syntax is a static rule the parser could not enforce (e.g. super()
	// outside a derived constructor, rest parameter after a default).
	Syntax Kind = iota
	// Compile is an unsupported construct or a parser/AST mismatch (e.g. an
	// unknown binary operator variant, a computed for-in LHS).
	Compile
)

func (k Kind) String() string {
	if k == Syntax {
		return "syntax error"
	}
	return "compile error"
}

// Errors accumulates diagnostics for one compilation and converts them to
// go/scanner positions on demand.
type Errors struct {
	Filename string
	list     ErrorList
}

// Add records a diagnostic at pos with the given kind and message.
func (e *Errors) Add(pos token.Pos, kind Kind, format string, args ...any) {
	gpos := toGoPosition(e.Filename, pos)
	e.list.Add(gpos, kind.String()+": "+sprintf(format, args...))
}

// Err returns the accumulated diagnostics as a single error (nil if none
// were recorded), sorted by position.
func (e *Errors) Err() error {
	if len(e.list) == 0 {
		return nil
	}
	e.list.Sort()
	return e.list
}

// Len reports how many diagnostics have been recorded.
func (e *Errors) Len() int { return len(e.list) }

func toGoPosition(filename string, pos token.Pos) gotoken.Position {
	p := token.At(filename, pos)
	return gotoken.Position{Filename: p.Filename, Line: p.Line, Column: p.Column}
}

// Internal panics to signal an internal invariant violation (§4.1 "no
// scope available", an unreachable type-switch arm, etc). These are
// compiler bugs, not user errors, and are never added to an Errors list.
func Internal(format string, args ...any) {
	panic("esbc: internal error: " + sprintf(format, args...))
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
