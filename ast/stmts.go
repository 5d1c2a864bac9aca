package ast

import "github.com/lucorth/esbc/token"

// ExprStmt is an expression evaluated for its side effect (and, at
// program top level, a candidate completion value — §4.5 "Program body").
type ExprStmt struct {
	Start, End token.Pos
	Expr       Expr
}

func (n *ExprStmt) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*ExprStmt) stmtNode()                      {}

// EmptyStmt is a bare `;`.
type EmptyStmt struct{ Start, End token.Pos }

func (n *EmptyStmt) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*EmptyStmt) stmtNode()                      {}

// DeclKind distinguishes variable-declaration forms (§4.5 "Variable
// declaration").
type DeclKind int

const (
	DeclVar DeclKind = iota
	DeclLet
	DeclConst
	DeclUsing
	DeclAwaitUsing
)

// Declarator is one `name = init` (or pattern) entry of a VarDeclStmt.
type Declarator struct {
	Start, End token.Pos
	Target     Pattern
	Init       Expr // nil if no initializer (only legal for var/let)
}

// VarDeclStmt is `var/let/const/using/await using ...` (§4.5 "Variable
// declaration").
type VarDeclStmt struct {
	Start, End token.Pos
	Kind       DeclKind
	Decls      []Declarator
}

func (n *VarDeclStmt) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*VarDeclStmt) stmtNode()                      {}

// IfStmt is `if (test) cons else alt` (§4.5 "If").
type IfStmt struct {
	Start, End token.Pos
	Test       Expr
	Cons       Stmt
	Alt        Stmt // nil if no else
}

func (n *IfStmt) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*IfStmt) stmtNode()                      {}

// WhileStmt is `while (test) body` (§4.5 "While / For").
type WhileStmt struct {
	Start, End   token.Pos
	Test         Expr
	Body         Stmt
	Label        string // "" if unlabeled
}

func (n *WhileStmt) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*WhileStmt) stmtNode()                      {}

// DoWhileStmt is `do body while (test)`.
type DoWhileStmt struct {
	Start, End token.Pos
	Body       Stmt
	Test       Expr
	Label      string
}

func (n *DoWhileStmt) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*DoWhileStmt) stmtNode()                      {}

// ForStmt is the three-part `for (init; cond; post) body` (§4.5
// "While / For").
type ForStmt struct {
	Start, End token.Pos
	Init       Node // *VarDeclStmt or Expr or nil
	Cond       Expr // nil means "always true"
	Post       Expr // nil if absent
	Body       Stmt
	Label      string
}

func (n *ForStmt) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*ForStmt) stmtNode()                      {}

// ForInStmt is `for (lhs in rhs) body` (§4.5 "For-in").
type ForInStmt struct {
	Start, End token.Pos
	Decl       DeclKind // declared kind of Target, if Target came from a VarDeclStmt; DeclVar means "no declaration, plain assignment target"
	HasDecl    bool
	Target     Pattern // or a MemberExpr assignment target when !HasDecl
	Right      Expr
	Body       Stmt
	Label      string
}

func (n *ForInStmt) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*ForInStmt) stmtNode()                      {}

// ForOfStmt is `for (lhs of rhs) body` / `for await (lhs of rhs) body`
// (§4.5 "For-of and for-await-of").
type ForOfStmt struct {
	Start, End token.Pos
	Await      bool
	Decl       DeclKind
	HasDecl    bool
	Target     Pattern
	Right      Expr
	Body       Stmt
	Label      string
}

func (n *ForOfStmt) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*ForOfStmt) stmtNode()                      {}

// CatchClause is the `catch (param) { body }` part of a TryStmt.
type CatchClause struct {
	Start, End token.Pos
	Param      Pattern // nil if no binding ("catch {}")
	Body       *BlockStmt
}

// TryStmt is `try { } catch (e) { } finally { }` (§4.5 "Try / catch /
// finally").
type TryStmt struct {
	Start, End token.Pos
	Block      *BlockStmt
	Handler    *CatchClause // nil if no catch
	Finalizer  *BlockStmt   // nil if no finally
}

func (n *TryStmt) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*TryStmt) stmtNode()                      {}

// SwitchCase is one `case test:`/`default:` arm.
type SwitchCase struct {
	Start, End token.Pos
	Test       Expr // nil for default
	Body       []Stmt
}

// SwitchStmt is `switch (disc) { case ...: ... }` (§4.5 "Switch").
type SwitchStmt struct {
	Start, End  token.Pos
	Discriminant Expr
	Cases       []SwitchCase
	Label       string
}

func (n *SwitchStmt) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*SwitchStmt) stmtNode()                      {}

// ThrowStmt is `throw expr` (or a re-throw `throw` inside a catch body
// when Expr == nil).
type ThrowStmt struct {
	Start, End token.Pos
	Expr       Expr
}

func (n *ThrowStmt) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*ThrowStmt) stmtNode()                      {}

// ReturnStmt is `return` / `return expr`.
type ReturnStmt struct {
	Start, End token.Pos
	Expr       Expr // nil if bare return
}

func (n *ReturnStmt) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*ReturnStmt) stmtNode()                      {}

// BreakStmt is `break` / `break label`.
type BreakStmt struct {
	Start, End token.Pos
	Label      string // "" if unlabeled
}

func (n *BreakStmt) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*BreakStmt) stmtNode()                      {}

// ContinueStmt is `continue` / `continue label`.
type ContinueStmt struct {
	Start, End token.Pos
	Label      string
}

func (n *ContinueStmt) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*ContinueStmt) stmtNode()                      {}

// LabeledStmt attaches Label to the statement it precedes, consumed by the
// scope/capture core's pending-label slot (§3 "Compiler state").
type LabeledStmt struct {
	Start, End token.Pos
	Label      string
	Body       Stmt
}

func (n *LabeledStmt) Span() (token.Pos, token.Pos) { return n.Start, n.End }
func (*LabeledStmt) stmtNode()                      {}
