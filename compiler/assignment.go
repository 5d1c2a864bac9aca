package compiler

import (
	"github.com/lucorth/esbc/ast"
	"github.com/lucorth/esbc/bytecode"
)

// compoundOpcode maps a compound-assignment operator to the binary opcode
// used to combine the current value with the right-hand side (§4.4
// "Assignment").
var compoundOpcode = map[ast.AssignOp]bytecode.Opcode{
	ast.AssignAdd: bytecode.OpAdd, ast.AssignSub: bytecode.OpSub, ast.AssignMul: bytecode.OpMul,
	ast.AssignDiv: bytecode.OpDiv, ast.AssignMod: bytecode.OpMod, ast.AssignExp: bytecode.OpExp,
	ast.AssignBitAnd: bytecode.OpAnd, ast.AssignBitOr: bytecode.OpOr, ast.AssignBitXor: bytecode.OpXor,
	ast.AssignShl: bytecode.OpShl, ast.AssignSar: bytecode.OpSar, ast.AssignShr: bytecode.OpShr,
}

// lowerAssign lowers every assignment-operator form: plain (including
// destructuring), compound, and logical-assignment (short-circuiting)
// (§4.4 "Assignment").
func (c *Compiler) lowerAssign(e *ast.AssignExpr) {
	switch e.Op {
	case ast.AssignPlain:
		c.lowerPlainAssign(e.Left, e.Right)
		return
	case ast.AssignLogicalAnd, ast.AssignLogicalOr, ast.AssignNullish:
		c.lowerLogicalAssign(e)
		return
	}
	c.lowerCompoundAssign(e)
}

// lowerPlainAssign handles `target = value`, where target may be a
// destructuring pattern reinterpreted from an ArrayExpr/ObjectExpr
// (§4.7's patternNode() methods on those two expression types exist
// exactly for this reinterpretation).
func (c *Compiler) lowerPlainAssign(target ast.Expr, rhs ast.Expr) {
	c.lowerExpr(rhs)
	c.fn.em.Emit0(bytecode.OpDup)
	c.assignToPattern(target.(ast.Pattern))
}

func (c *Compiler) lowerCompoundAssign(e *ast.AssignExpr) {
	em := c.fn.em
	op, ok := compoundOpcode[e.Op]
	if !ok {
		diagInternal("lowerCompoundAssign: unhandled operator %v", e.Op)
		return
	}
	switch t := e.Left.(type) {
	case *ast.Identifier:
		c.loadIdent(t.Name)
		c.lowerExpr(e.Right)
		em.Emit0(op)
		em.Emit0(bytecode.OpDup)
		c.storeIdent(t.Name)
	case *ast.MemberExpr:
		c.lowerExpr(t.Object)
		em.Emit0(bytecode.OpDup)
		if t.Computed {
			c.lowerExpr(t.Property)
			em.Emit0(bytecode.OpToPropKey)
			em.Emit0(bytecode.OpDup1)
			em.Emit0(bytecode.OpGetArrayEl)
			c.lowerExpr(e.Right)
			em.Emit0(op)
			em.Emit0(bytecode.OpPutArrayEl)
		} else {
			name := staticPropName(t.Property)
			em.EmitAtom(bytecode.OpGetField, name)
			c.lowerExpr(e.Right)
			em.Emit0(op)
			em.Emit0(bytecode.OpDup)
			em.Emit0(bytecode.OpRot3L)
			em.EmitAtom(bytecode.OpPutField, name)
		}
	default:
		diagInternal("lowerCompoundAssign: unhandled target %T", e.Left)
	}
}

// lowerLogicalAssign handles `&&=`, `||=`, `??=`: the right-hand side is
// only evaluated, and the assignment only performed, when the current
// value fails the corresponding short-circuit test (§4.4 "Assignment").
func (c *Compiler) lowerLogicalAssign(e *ast.AssignExpr) {
	em := c.fn.em
	id, ok := e.Left.(*ast.Identifier)
	if !ok {
		diagInternal("lowerLogicalAssign: member-expression target not yet supported")
		return
	}
	c.loadIdent(id.Name)
	em.Emit0(bytecode.OpDup)
	switch e.Op {
	case ast.AssignLogicalAnd:
		skip := em.EmitJump(bytecode.OpIfFalse)
		em.Emit0(bytecode.OpDrop)
		c.lowerExpr(e.Right)
		c.dupStoreIdent(id.Name)
		em.PatchJumpHere(skip)
	case ast.AssignLogicalOr:
		em.Emit0(bytecode.OpLogicalNot)
		skip := em.EmitJump(bytecode.OpIfFalse)
		em.Emit0(bytecode.OpDrop)
		c.lowerExpr(e.Right)
		c.dupStoreIdent(id.Name)
		em.PatchJumpHere(skip)
	case ast.AssignNullish:
		em.Emit0(bytecode.OpIsUndefinedOrNull)
		em.Emit0(bytecode.OpLogicalNot)
		skip := em.EmitJump(bytecode.OpIfFalse)
		em.Emit0(bytecode.OpDrop)
		c.lowerExpr(e.Right)
		c.dupStoreIdent(id.Name)
		em.PatchJumpHere(skip)
	}
}

// storeMember assigns a bare destructuring MemberExpr target (no compound
// operator): the value to store is already on top of the stack when this
// is called, so object/key are evaluated afterward and rotated underneath
// it — PUT_FIELD/PUT_ARRAY_EL always consume (obj, [key,] value) with
// value on top (§6.1).
func (c *Compiler) storeMember(t *ast.MemberExpr) {
	em := c.fn.em
	c.lowerExpr(t.Object)
	if t.Computed {
		c.lowerExpr(t.Property)
		em.Emit0(bytecode.OpToPropKey)
		em.Emit0(bytecode.OpRot3L) // value, obj, key -> obj, key, value
		em.Emit0(bytecode.OpPutArrayEl)
	} else {
		em.Emit0(bytecode.OpSwap) // value, obj -> obj, value
		em.EmitAtom(bytecode.OpPutField, staticPropName(t.Property))
	}
}
