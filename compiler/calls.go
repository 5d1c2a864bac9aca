package compiler

import (
	"github.com/lucorth/esbc/ast"
	"github.com/lucorth/esbc/bytecode"
)

// lowerCall lowers a call expression. A plain call pushes the callee and
// its arguments and uses CALL; a method call (`obj.m(...)`) must preserve
// `this` by keeping the receiver on the stack; `super(...)` uses
// INIT_CTOR; a spread argument anywhere in the list forces the APPLY form
// (§4.4 "Call").
func (c *Compiler) lowerCall(e *ast.CallExpr) {
	em := c.fn.em

	if _, ok := e.Callee.(*ast.SuperExpr); ok {
		c.pushArgs(e.Args)
		em.Emit0(bytecode.OpInitCtor)
		return
	}

	hasSpread := false
	for _, a := range e.Args {
		if a.Spread {
			hasSpread = true
			break
		}
	}

	isMember := false
	if member, ok := e.Callee.(*ast.MemberExpr); ok {
		isMember = true
		c.lowerExpr(member.Object)
		em.Emit0(bytecode.OpDup) // keep the receiver for `this`
		if priv, ok := member.Property.(*ast.PrivateIdentifier); ok {
			em.EmitAtom(bytecode.OpGetPrivateField, priv.Name)
		} else if member.Computed {
			c.lowerExpr(member.Property)
			em.Emit0(bytecode.OpToPropKey)
			em.Emit0(bytecode.OpGetArrayEl)
		} else {
			em.EmitAtom(bytecode.OpGetField, staticPropName(member.Property))
		}
		// stack: this, fn
	} else {
		c.lowerExpr(e.Callee) // stack: fn
	}

	// An optional call (`f?.()`, `obj.m?.()`) short-circuits to undefined
	// when the callee is nullish, without evaluating the arguments at all
	// (§4.4 "Call", optional chaining). The test runs while the callee is
	// still on top of the stack.
	var skip int
	if e.Optional {
		em.Emit0(bytecode.OpDup)
		em.Emit0(bytecode.OpIsUndefinedOrNull)
		skip = em.EmitJump(bytecode.OpIfTrue)
	}

	if isMember {
		em.Emit0(bytecode.OpSwap) // stack: fn, this
	} else {
		em.Emit0(bytecode.OpUndefined) // stack: fn, undefined-this
	}

	if hasSpread {
		c.pushSpreadArgsArray(e.Args)
		em.Emit0(bytecode.OpApply)
	} else {
		n := c.pushArgs(e.Args)
		em.Emit16(bytecode.OpCall, uint16(n))
	}

	if e.Optional {
		done := em.EmitJump(bytecode.OpGoto)
		em.PatchJumpHere(skip)
		em.Emit0(bytecode.OpDrop) // fn
		if isMember {
			em.Emit0(bytecode.OpDrop) // receiver
		}
		em.Emit0(bytecode.OpUndefined)
		em.PatchJumpHere(done)
	}
}

// pushArgs pushes every (non-spread) argument expression and returns the
// count pushed.
func (c *Compiler) pushArgs(args []ast.Argument) int {
	for _, a := range args {
		c.lowerExpr(a.Expr)
	}
	return len(args)
}

// pushSpreadArgsArray builds a single array holding every argument
// (spreading spread arguments into it), for the APPLY calling convention.
func (c *Compiler) pushSpreadArgsArray(args []ast.Argument) {
	em := c.fn.em
	em.Emit0(bytecode.OpArrayNew)
	for _, a := range args {
		c.lowerExpr(a.Expr)
		if a.Spread {
			em.Emit0(bytecode.OpArrayFrom)
		} else {
			em.Emit0(bytecode.OpAppend)
		}
	}
}

func (c *Compiler) lowerNew(e *ast.NewExpr) {
	em := c.fn.em
	c.lowerExpr(e.Callee)

	hasSpread := false
	for _, a := range e.Args {
		if a.Spread {
			hasSpread = true
			break
		}
	}
	if hasSpread {
		c.pushSpreadArgsArray(e.Args)
		em.Emit0(bytecode.OpApply)
		return
	}
	n := c.pushArgs(e.Args)
	em.Emit16(bytecode.OpCallConstructor, uint16(n))
}
