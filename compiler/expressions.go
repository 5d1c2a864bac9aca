package compiler

import (
	"strconv"

	"github.com/lucorth/esbc/ast"
	"github.com/lucorth/esbc/bytecode"
)

func (c *Compiler) lowerExpr(e ast.Expr) {
	em := c.fn.em
	switch e := e.(type) {
	case *ast.Literal:
		c.lowerLiteral(e)
	case *ast.Identifier:
		c.loadIdent(e.Name)
	case *ast.ThisExpr:
		em.Emit0(bytecode.OpPushThis)
	case *ast.NewTargetExpr:
		em.Emit8(bytecode.OpSpecialObject, bytecode.SpecialNewTarget)
	case *ast.SuperExpr:
		em.Emit0(bytecode.OpGetSuper)
	case *ast.BinaryExpr:
		c.lowerBinary(e)
	case *ast.UnaryExpr:
		c.lowerUnary(e)
	case *ast.UpdateExpr:
		c.lowerUpdate(e)
	case *ast.MemberExpr:
		c.lowerMemberGet(e)
	case *ast.AssignExpr:
		c.lowerAssign(e)
	case *ast.ConditionalExpr:
		c.lowerConditional(e)
	case *ast.SequenceExpr:
		for i, sub := range e.Exprs {
			if i > 0 {
				em.Emit0(bytecode.OpDrop)
			}
			c.lowerExpr(sub)
		}
	case *ast.CallExpr:
		c.lowerCall(e)
	case *ast.NewExpr:
		c.lowerNew(e)
	case *ast.TemplateLiteral:
		c.lowerTemplateLiteral(e)
	case *ast.TaggedTemplateExpr:
		c.lowerTaggedTemplate(e)
	case *ast.ArrayExpr:
		c.lowerArrayLiteral(e)
	case *ast.ObjectExpr:
		c.lowerObjectLiteral(e)
	case *ast.YieldExpr:
		c.lowerYield(e)
	case *ast.AwaitExpr:
		c.lowerExpr(e.Arg)
		em.Emit0(bytecode.OpAwait)
	case *ast.FuncExpr:
		c.lowerFuncExpr(e)
	case *ast.ArrowFuncExpr:
		c.lowerArrowFuncExpr(e)
	case *ast.ClassExpr:
		c.lowerClassExpr(e)
	default:
		diagInternal("lowerExpr: unhandled expression type %T", e)
	}
}

func (c *Compiler) lowerLiteral(e *ast.Literal) {
	em := c.fn.em
	switch e.Kind {
	case ast.NullLiteral:
		em.Emit0(bytecode.OpNull)
	case ast.BoolLiteral:
		if e.Bool {
			em.Emit0(bytecode.OpPushTrue)
		} else {
			em.Emit0(bytecode.OpPushFalse)
		}
	case ast.NumberLiteral:
		if i := int32(e.Number); float64(i) == e.Number {
			em.EmitI32(bytecode.OpPushI32, i)
		} else {
			em.EmitConst(bytecode.OpPushConst, bytecode.Const{Kind: bytecode.ConstString, Str: strconv.FormatFloat(e.Number, 'g', -1, 64)})
		}
	case ast.BigIntLiteral:
		if i, err := strconv.ParseInt(e.BigInt, 10, 32); err == nil {
			em.EmitI32(bytecode.OpPushBigIntI32, int32(i))
		} else {
			em.EmitConst(bytecode.OpPushConst, bytecode.Const{Kind: bytecode.ConstBigInt, Str: e.BigInt})
		}
	case ast.StringLiteral:
		em.EmitConst(bytecode.OpPushConst, bytecode.Const{Kind: bytecode.ConstString, Str: e.Str})
	case ast.RegexLiteral:
		em.EmitConst(bytecode.OpPushConst, bytecode.Const{Kind: bytecode.ConstRegexp, Str: e.RegexBody, RegexpFl: e.RegexFlags})
	default:
		diagInternal("lowerLiteral: unhandled literal kind %v", e.Kind)
	}
}

func formatNumericKey(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}

// binOpcode maps a non-short-circuit BinOp directly to its opcode.
var binOpcode = map[ast.BinOp]bytecode.Opcode{
	ast.OpAdd: bytecode.OpAdd, ast.OpSub: bytecode.OpSub, ast.OpMul: bytecode.OpMul,
	ast.OpDiv: bytecode.OpDiv, ast.OpMod: bytecode.OpMod, ast.OpExp: bytecode.OpExp,
	ast.OpBitAnd: bytecode.OpAnd, ast.OpBitOr: bytecode.OpOr, ast.OpBitXor: bytecode.OpXor,
	ast.OpShl: bytecode.OpShl, ast.OpSar: bytecode.OpSar, ast.OpShr: bytecode.OpShr,
	ast.OpEq: bytecode.OpEq, ast.OpNeq: bytecode.OpNeq,
	ast.OpStrictEq: bytecode.OpStrictEq, ast.OpStrictNeq: bytecode.OpStrictNeq,
	ast.OpLt: bytecode.OpLt, ast.OpLte: bytecode.OpLte, ast.OpGt: bytecode.OpGt, ast.OpGte: bytecode.OpGte,
	ast.OpIn: bytecode.OpIn, ast.OpInstanceof: bytecode.OpInstanceof,
}

func (c *Compiler) lowerBinary(e *ast.BinaryExpr) {
	em := c.fn.em
	switch e.Op {
	case ast.OpLogicalAnd:
		c.lowerExpr(e.Left)
		em.Emit0(bytecode.OpDup)
		shortCircuit := em.EmitJump(bytecode.OpIfFalse)
		em.Emit0(bytecode.OpDrop)
		c.lowerExpr(e.Right)
		em.PatchJumpHere(shortCircuit)
		return
	case ast.OpLogicalOr:
		c.lowerExpr(e.Left)
		em.Emit0(bytecode.OpDup)
		em.Emit0(bytecode.OpLogicalNot)
		shortCircuit := em.EmitJump(bytecode.OpIfFalse)
		em.Emit0(bytecode.OpDrop)
		c.lowerExpr(e.Right)
		em.PatchJumpHere(shortCircuit)
		return
	case ast.OpNullish:
		c.lowerExpr(e.Left)
		em.Emit0(bytecode.OpDup)
		em.Emit0(bytecode.OpIsUndefinedOrNull)
		em.Emit0(bytecode.OpLogicalNot)
		shortCircuit := em.EmitJump(bytecode.OpIfFalse)
		em.Emit0(bytecode.OpDrop)
		c.lowerExpr(e.Right)
		em.PatchJumpHere(shortCircuit)
		return
	}

	if e.Op == ast.OpIn {
		if priv, ok := e.Left.(*ast.PrivateIdentifier); ok {
			c.lowerExpr(e.Right)
			em.EmitAtom(bytecode.OpPrivateIn, priv.Name)
			return
		}
	}

	c.lowerExpr(e.Left)
	c.lowerExpr(e.Right)
	op, ok := binOpcode[e.Op]
	if !ok {
		diagInternal("lowerBinary: unhandled operator %v", e.Op)
		return
	}
	em.Emit0(op)
}

var unaryOpcode = map[ast.UnaryOp]bytecode.Opcode{
	ast.OpTypeof: bytecode.OpTypeof, ast.OpVoid: bytecode.OpUndefined,
	ast.OpUnaryPlus: bytecode.OpPlus, ast.OpUnaryMinus: bytecode.OpNeg,
	ast.OpBitNot: bytecode.OpNot, ast.OpLogicalNot: bytecode.OpLogicalNot,
}

func (c *Compiler) lowerUnary(e *ast.UnaryExpr) {
	em := c.fn.em
	switch e.Op {
	case ast.OpDelete:
		c.lowerDelete(e.Operand)
		return
	case ast.OpVoid:
		c.lowerExpr(e.Operand)
		em.Emit0(bytecode.OpDrop)
		em.Emit0(bytecode.OpUndefined)
		return
	case ast.OpTypeof:
		if id, ok := e.Operand.(*ast.Identifier); ok {
			// typeof on an unresolved global must not throw a ReferenceError;
			// the ordinary GET_VAR path for a Global binding already reads
			// through the (possibly absent) global object, so no special
			// opcode is needed beyond TYPEOF itself.
			c.loadIdent(id.Name)
			em.Emit0(bytecode.OpTypeof)
			return
		}
	}
	c.lowerExpr(e.Operand)
	op, ok := unaryOpcode[e.Op]
	if !ok {
		diagInternal("lowerUnary: unhandled operator %v", e.Op)
		return
	}
	em.Emit0(op)
}

func (c *Compiler) lowerDelete(target ast.Expr) {
	em := c.fn.em
	switch t := target.(type) {
	case *ast.MemberExpr:
		c.lowerExpr(t.Object)
		if t.Computed {
			c.lowerExpr(t.Property)
			em.Emit0(bytecode.OpToPropKey)
		} else {
			em.EmitConst(bytecode.OpPushConst, bytecode.Const{Kind: bytecode.ConstString, Str: staticPropName(t.Property)})
		}
		em.Emit0(bytecode.OpDelete)
	case *ast.Identifier:
		em.EmitAtom(bytecode.OpDeleteVar, t.Name)
	default:
		em.Emit0(bytecode.OpPushTrue) // delete on a non-reference always evaluates its operand and yields true
	}
}

// lowerUpdate handles `++x`, `x++`, `--x`, `x--` for both identifier and
// member-expression targets (§4.4 "Unary").
func (c *Compiler) lowerUpdate(e *ast.UpdateExpr) {
	em := c.fn.em
	inc := e.Op == ast.OpAdd

	switch t := e.Target.(type) {
	case *ast.Identifier:
		c.loadIdent(t.Name)
		if e.Prefix {
			if inc {
				em.Emit0(bytecode.OpInc)
			} else {
				em.Emit0(bytecode.OpDec)
			}
			c.dupStoreIdent(t.Name)
		} else {
			if inc {
				em.Emit0(bytecode.OpPostInc)
			} else {
				em.Emit0(bytecode.OpPostDec)
			}
			// POST_INC/POST_DEC per §6.1 leave (newValue, oldValue); store the
			// new value and leave the old value as the expression result.
			c.storeIdentKeepBelow(t.Name)
		}
	case *ast.MemberExpr:
		c.lowerExpr(t.Object)
		em.Emit0(bytecode.OpDup)
		if t.Computed {
			c.lowerExpr(t.Property)
			em.Emit0(bytecode.OpToPropKey)
			em.Emit0(bytecode.OpDup1)
			em.Emit0(bytecode.OpGetArrayEl)
		} else {
			name := staticPropName(t.Property)
			em.Emit0(bytecode.OpDup)
			em.EmitAtom(bytecode.OpGetField, name)
			_ = name
		}
		if e.Prefix {
			if inc {
				em.Emit0(bytecode.OpInc)
			} else {
				em.Emit0(bytecode.OpDec)
			}
		} else {
			if inc {
				em.Emit0(bytecode.OpPostInc)
			} else {
				em.Emit0(bytecode.OpPostDec)
			}
		}
		c.storeMemberUpdateResult(t, e.Prefix)
	default:
		diagInternal("lowerUpdate: unhandled target %T", e.Target)
	}
}

// dupStoreIdent stores the top-of-stack value into name while leaving it
// on the stack as the expression result (prefix ++/-- result).
func (c *Compiler) dupStoreIdent(name string) {
	em := c.fn.em
	em.Emit0(bytecode.OpDup)
	c.storeIdent(name)
}

// storeIdentKeepBelow handles the POST_INC/POST_DEC stack shape
// (newValue, oldValue): store newValue, leave oldValue as the result.
func (c *Compiler) storeIdentKeepBelow(name string) {
	em := c.fn.em
	em.Emit0(bytecode.OpSwap)
	c.storeIdent(name)
}

// storeMemberUpdateResult stores an updated value back into the member
// target t with PUT_FIELD/PUT_ARRAY_EL while keeping the update
// expression's result on the stack. The stack shuffle differs between
// prefix and postfix forms and is done with straight-line NIP, ROT3L and
// INSERT4 ops.
func (c *Compiler) storeMemberUpdateResult(t *ast.MemberExpr, prefix bool) {
	em := c.fn.em
	if t.Computed {
		// stack: obj key newVal [oldVal]
		if prefix {
			em.Emit0(bytecode.OpPutArrayEl)
		} else {
			em.Emit0(bytecode.OpInsert4)
			em.Emit0(bytecode.OpPutArrayEl)
		}
		return
	}
	name := staticPropName(t.Property)
	if prefix {
		em.Emit0(bytecode.OpNip)
		em.EmitAtom(bytecode.OpPutField, name)
	} else {
		em.Emit0(bytecode.OpRot3L)
		em.EmitAtom(bytecode.OpPutField, name)
	}
}

func (c *Compiler) lowerMemberGet(e *ast.MemberExpr) {
	em := c.fn.em
	if sup, ok := e.Object.(*ast.SuperExpr); ok {
		_ = sup
		if e.Computed {
			c.lowerExpr(e.Property)
			em.Emit0(bytecode.OpToPropKey)
		} else {
			em.EmitConst(bytecode.OpPushConst, bytecode.Const{Kind: bytecode.ConstString, Str: staticPropName(e.Property)})
		}
		em.Emit0(bytecode.OpGetSuperValue)
		return
	}
	if priv, ok := e.Property.(*ast.PrivateIdentifier); ok {
		c.lowerExpr(e.Object)
		em.EmitAtom(bytecode.OpGetPrivateField, priv.Name)
		return
	}
	c.lowerExpr(e.Object)
	if e.Optional {
		em.Emit0(bytecode.OpDup)
		em.Emit0(bytecode.OpIsUndefinedOrNull)
		skip := em.EmitJump(bytecode.OpIfTrue)
		c.emitMemberRead(e)
		done := em.EmitJump(bytecode.OpGoto)
		em.PatchJumpHere(skip)
		em.Emit0(bytecode.OpDrop)
		em.Emit0(bytecode.OpUndefined)
		em.PatchJumpHere(done)
		return
	}
	c.emitMemberRead(e)
}

func (c *Compiler) emitMemberRead(e *ast.MemberExpr) {
	em := c.fn.em
	if e.Computed {
		c.lowerExpr(e.Property)
		em.Emit0(bytecode.OpToPropKey)
		em.Emit0(bytecode.OpGetArrayEl)
	} else {
		em.EmitAtom(bytecode.OpGetField, staticPropName(e.Property))
	}
}

func (c *Compiler) lowerConditional(e *ast.ConditionalExpr) {
	em := c.fn.em
	c.lowerExpr(e.Test)
	elseJump := em.EmitJump(bytecode.OpIfFalse)
	c.lowerExpr(e.Cons)
	endJump := em.EmitJump(bytecode.OpGoto)
	em.PatchJumpHere(elseJump)
	c.lowerExpr(e.Alt)
	em.PatchJumpHere(endJump)
}

// lowerYield emits INITIAL_YIELD-family generator suspension opcodes. A
// bare `yield` is YIELD with an undefined operand; `yield* iter` delegates
// via YIELD_STAR (or ASYNC_YIELD_STAR inside an async generator).
func (c *Compiler) lowerYield(e *ast.YieldExpr) {
	em := c.fn.em
	if e.Arg != nil {
		c.lowerExpr(e.Arg)
	} else {
		em.Emit0(bytecode.OpUndefined)
	}
	switch {
	case e.Delegate && c.fn.async:
		em.Emit0(bytecode.OpAsyncYieldStar)
	case e.Delegate:
		em.Emit0(bytecode.OpYieldStar)
	default:
		em.Emit0(bytecode.OpYield)
	}
}

func (c *Compiler) lowerArrayLiteral(e *ast.ArrayExpr) {
	em := c.fn.em
	em.Emit0(bytecode.OpArrayNew)
	for _, el := range e.Elements {
		switch el := el.(type) {
		case nil:
			em.Emit0(bytecode.OpUndefined)
			em.Emit0(bytecode.OpAppend)
		case *ast.SpreadElement:
			c.lowerExpr(el.Arg)
			em.Emit0(bytecode.OpArrayFrom)
		default:
			c.lowerExpr(el)
			em.Emit0(bytecode.OpAppend)
		}
	}
}

func (c *Compiler) lowerObjectLiteral(e *ast.ObjectExpr) {
	em := c.fn.em
	em.Emit0(bytecode.OpObjectNew)
	for _, p := range e.Props {
		switch p.Kind {
		case ast.PropSpread:
			c.lowerExpr(p.Value)
			em.Emit0(bytecode.OpArrayFrom) // spread-into-object shares the iterable-flattening helper; plain objects are spread via their own enumeration at the VM level
		case ast.PropGet, ast.PropSet:
			// §4.4 "Object literal": accessors always push the key value
			// (string constant for an identifier key, evaluated expression
			// for a computed one) and go through DEFINE_METHOD_COMPUTED so
			// the get/set kind flag travels with the definition; the plain
			// DEFINE_METHOD(atom) form has no room for that flag.
			c.lowerMethodValue(p.Value)
			if p.Computed {
				c.lowerExpr(p.Key)
				em.Emit0(bytecode.OpToPropKey)
			} else {
				em.EmitConst(bytecode.OpPushConst, bytecode.Const{Kind: bytecode.ConstString, Str: staticPropName(p.Key)})
			}
			flag := bytecode.MethodGet
			if p.Kind == ast.PropSet {
				flag = bytecode.MethodSet
			}
			flag |= bytecode.MethodEnumerable
			em.Emit8(bytecode.OpDefineMethodComputed, flag)
		case ast.PropMethod:
			c.lowerMethodValue(p.Value)
			if p.Computed {
				c.lowerExpr(p.Key)
				em.Emit0(bytecode.OpToPropKey)
				em.Emit8(bytecode.OpDefineMethodComputed, bytecode.MethodEnumerable)
			} else {
				em.EmitAtom(bytecode.OpDefineMethod, staticPropName(p.Key))
			}
		default: // PropData
			if p.Computed {
				c.lowerExpr(p.Key)
				em.Emit0(bytecode.OpToPropKey)
			} else {
				em.EmitConst(bytecode.OpPushConst, bytecode.Const{Kind: bytecode.ConstString, Str: staticPropName(p.Key)})
			}
			c.lowerExpr(p.Value)
			em.Emit0(bytecode.OpDefineProp)
		}
	}
}

func (c *Compiler) lowerTemplateLiteral(e *ast.TemplateLiteral) {
	em := c.fn.em
	for i, cooked := range e.Cooked {
		str := ""
		if cooked != nil {
			str = *cooked
		}
		em.EmitConst(bytecode.OpPushConst, bytecode.Const{Kind: bytecode.ConstString, Str: str})
		if i > 0 {
			em.Emit0(bytecode.OpAdd)
		}
		if i < len(e.Exprs) {
			c.lowerExpr(e.Exprs[i])
			em.Emit0(bytecode.OpAdd)
		}
	}
}

func (c *Compiler) lowerTaggedTemplate(e *ast.TaggedTemplateExpr) {
	em := c.fn.em
	em.EmitConst(bytecode.OpPushConst, bytecode.Const{Kind: bytecode.ConstTemplateObject, Cooked: e.Quasi.Cooked, Raw: e.Quasi.Raw})
	c.lowerExpr(e.Tag)
	for _, sub := range e.Quasi.Exprs {
		c.lowerExpr(sub)
	}
	em.Emit16(bytecode.OpCall, uint16(len(e.Quasi.Exprs)+1))
}
