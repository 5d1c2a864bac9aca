package compiler

import "github.com/lucorth/esbc/diag"

// diagInternal signals a compiler-invariant violation: a shape the parser
// must never hand the compiler (a malformed for-in target, an exhaustive
// switch falling through to an unhandled node type). These always
// indicate a bug in this engine, never in the user's program, so they
// panic rather than joining the diagnostic list (§7 "Internal errors").
func diagInternal(format string, args ...any) {
	diag.Internal(format, args...)
}
