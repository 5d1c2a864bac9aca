package ast

import "github.com/lucorth/esbc/token"

// ClassCommon holds the fields shared by ClassDecl and ClassExpr (§4.6
// "Class declaration and expression").
type ClassCommon struct {
	Start, End token.Pos
	SuperClass Expr // nil if no `extends` clause
	Body       []ClassElement
}

// ClassDecl is `class Name extends Super { ... }` at statement position.
type ClassDecl struct {
	ClassCommon
	Name *Identifier
}

func (n *ClassDecl) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*ClassDecl) stmtNode()                      {}

// ClassExpr is a class expression, optionally named.
type ClassExpr struct {
	ClassCommon
	Name *Identifier // nil if anonymous
}

func (n *ClassExpr) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*ClassExpr) exprNode()                      {}

// MethodKey is either a public name/computed expression or a private name.
type MethodKey struct {
	Computed bool
	Name     Expr               // Identifier or Literal key when !Computed && !Private; arbitrary Expr when Computed
	Private  *PrivateIdentifier // non-nil for #name members
}

// MethodDef is a method, getter, setter, or constructor inside a class
// body (§4.6 "class elements").
type MethodDef struct {
	Start, End token.Pos
	Key        MethodKey
	Fn         *FuncCommon
	Static     bool
	Kind       FuncKind // FuncMethod, FuncGetter, FuncSetter, or FuncConstructor
}

func (n *MethodDef) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*MethodDef) classElementNode()              {}

// FieldDef is an instance or static field with an optional initializer
// (§4.6 "Field initialization").
type FieldDef struct {
	Start, End token.Pos
	Key        MethodKey
	Value      Expr // nil if no initializer
	Static     bool
}

func (n *FieldDef) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*FieldDef) classElementNode()               {}

// StaticBlock is a `static { ... }` initializer block.
type StaticBlock struct {
	Start, End token.Pos
	Body       []Stmt
}

func (n *StaticBlock) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*StaticBlock) classElementNode()              {}
