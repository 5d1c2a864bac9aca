package ast

import "github.com/lucorth/esbc/token"

// FuncKind distinguishes how a function-shaped node must be lowered.
type FuncKind int

const (
	FuncNormal FuncKind = iota
	FuncArrow
	FuncMethod
	FuncGetter
	FuncSetter
	FuncConstructor
)

// FuncCommon holds the fields shared by FuncDecl, FuncExpr, and class
// methods/accessors (§4.6).
type FuncCommon struct {
	Start, End token.Pos
	Kind       FuncKind
	Async      bool
	Generator  bool
	Params     []Pattern // AssignmentPattern for defaults, RestElement for the final rest param
	Body       []Stmt    // nil Body + Expr != nil means a concise-body arrow
	Expr       Expr      // concise arrow body, e.g. `x => x + 1`
	Strict     bool      // body had/inherited a "use strict" directive
	SourceText string    // for Function.prototype.toString
}

// FuncDecl is `function name(...) { ... }` at statement position.
type FuncDecl struct {
	FuncCommon
	Name *Identifier
}

func (n *FuncDecl) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*FuncDecl) stmtNode()                      {}

// FuncExpr is a function expression, optionally named (the name is then
// visible only inside the function's own body).
type FuncExpr struct {
	FuncCommon
	Name *Identifier // nil if anonymous
}

func (n *FuncExpr) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*FuncExpr) exprNode()                      {}

// ArrowFuncExpr is `(...) => expr` or `(...) => { ... }`. Kind is always
// FuncArrow.
type ArrowFuncExpr struct {
	FuncCommon
}

func (n *ArrowFuncExpr) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*ArrowFuncExpr) exprNode()                      {}
