// Package ast declares the AST node types consumed by the compiler. This
// package is the external contract of §1: the lexer and parser that
// produce these nodes are out of scope for this module. Nodes are a sum
// type per syntactic category (Expr, Stmt, Pattern, ClassElement),
// dispatched by lowering via exhaustive type switches rather than runtime
// type assertions beyond that dispatch.
package ast

import "github.com/lucorth/esbc/token"

// Node is implemented by every AST node.
type Node interface {
	Span() (start, end token.Pos)
}

// Expr is implemented by every expression node. Lowering an Expr leaves
// exactly one value on the VM stack, except where §4.4 documents a
// multi-value exception (e.g. spread contexts).
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Pattern is implemented by every destructuring-target node: Identifier,
// ArrayPattern, ObjectPattern, AssignmentPattern, RestElement, and (in
// expression-destructuring context) MemberExpr reinterpreted as an
// assignment target.
type Pattern interface {
	Node
	patternNode()
}

// ClassElement is implemented by every member of a class body.
type ClassElement interface {
	Node
	classElementNode()
}

// Program is the root of a compilation unit (§6.3 compile(source)).
type Program struct {
	Start, End     token.Pos
	Body           []Stmt
	IsModule       bool // forces strict mode; see §6.3
	HasUseStrict   bool // source had a top-level "use strict" directive
	SourceText     string
}

func (n *Program) Span() (token.Pos, token.Pos) { return n.Start, n.End }

// Identifier names a binding or property.
type Identifier struct {
	Start, End token.Pos
	Name       string
}

func (n *Identifier) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*Identifier) exprNode()                      {}
func (*Identifier) patternNode()                   {}

// PrivateIdentifier is a `#name` reference, legal only as a member key, the
// left operand of `in`, or inside a class body.
type PrivateIdentifier struct {
	Start, End token.Pos
	Name       string // without the leading '#'
}

func (n *PrivateIdentifier) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*PrivateIdentifier) exprNode()                      {}

// BlockStmt mirrors §4.5 "Block".
type BlockStmt struct {
	Start, End token.Pos
	Body       []Stmt
}

func (n *BlockStmt) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*BlockStmt) stmtNode()                      {}

// IsLoop reports whether s is one of the five loop forms (§2 overview),
// used by the scope/capture core's loop-stack bookkeeping.
func IsLoop(s Stmt) bool {
	switch s.(type) {
	case *WhileStmt, *DoWhileStmt, *ForStmt, *ForInStmt, *ForOfStmt:
		return true
	default:
		return false
	}
}
