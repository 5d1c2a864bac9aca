package ast

import "github.com/lucorth/esbc/token"

// ArrayPattern is a destructuring array pattern, `[a, b = 1, ...rest]`
// (§4.7 "ArrayPattern"). Elements may contain nil holes; the last element
// may be a *RestElement.
type ArrayPattern struct {
	Start, End token.Pos
	Elements   []Pattern
}

func (n *ArrayPattern) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*ArrayPattern) patternNode()                   {}

// ObjectPatternProp is one property of an ObjectPattern.
type ObjectPatternProp struct {
	Start, End token.Pos
	Computed   bool
	Key        Expr // Identifier or Literal when !Computed
	Value      Pattern
	Shorthand  bool
}

// ObjectPattern is a destructuring object pattern, `{a, b: c = 1, ...rest}`
// (§4.7 "ObjectPattern"). A trailing rest, if present, is always an
// Identifier target (object rest does not support nested patterns).
type ObjectPattern struct {
	Start, End token.Pos
	Props      []ObjectPatternProp
	Rest       *Identifier // nil if no rest
}

func (n *ObjectPattern) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*ObjectPattern) patternNode()                   {}

// AssignmentPattern is a pattern with a default value, `x = expr`
// (§4.7 "AssignmentPattern").
type AssignmentPattern struct {
	Start, End token.Pos
	Target     Pattern
	Default    Expr
}

func (n *AssignmentPattern) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*AssignmentPattern) patternNode()                   {}

// RestElement wraps `...target`, legal only as the final element of an
// ArrayPattern, an ObjectPattern's Rest, or a function's last parameter.
type RestElement struct {
	Start, End token.Pos
	Target     Pattern
}

func (n *RestElement) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*RestElement) patternNode()                   {}
