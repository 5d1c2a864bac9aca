package emit

import "github.com/lucorth/esbc/bytecode"

// stackEffect gives the net stack-depth delta of op, used only to compute
// BytecodeUnit.MaxStack for the VM's frame pre-allocation (§3 "Bytecode
// unit": "max_stack ... computed once the unit's code is final"). Variadic
// or data-dependent opcodes (CALL, APPLY, array/object literal builders)
// are conservatively approximated: the true depth at their call site is
// known to the compiler, so these entries only need to bound the common
// zero/one-operand case correctly; the compiler itself never relies on
// this function for correctness, only for sizing the VM frame generously.
var stackEffects = map[bytecode.Opcode]int{
	bytecode.OpDup: 1, bytecode.OpDup1: 1, bytecode.OpDup2: 1, bytecode.OpDup3: 1,
	bytecode.OpDrop: -1, bytecode.OpSwap: 0, bytecode.OpSwap2: 0,
	bytecode.OpNip: -1, bytecode.OpNipCatch: -1,
	bytecode.OpInsert4: 0, bytecode.OpRot3L: 0, bytecode.OpRot3R: 0, bytecode.OpPerm4: 0,

	bytecode.OpNull: 1, bytecode.OpUndefined: 1, bytecode.OpPushTrue: 1, bytecode.OpPushFalse: 1,
	bytecode.OpPushI32: 1, bytecode.OpPushBigIntI32: 1, bytecode.OpPushConst: 1,
	bytecode.OpPushAtomValue: 1, bytecode.OpPushThis: 1,

	bytecode.OpGetLocal: 1, bytecode.OpPutLocal: -1, bytecode.OpSetLocal: 0,
	bytecode.OpGetLocCheck: 1, bytecode.OpSetLocUninitialized: 0,
	bytecode.OpGetArg: 1, bytecode.OpPutArg: -1,
	bytecode.OpGetVarRef: 1, bytecode.OpPutVarRef: -1, bytecode.OpSetVarRef: 0,
	bytecode.OpGetVar: 1, bytecode.OpPutVar: -1, bytecode.OpSetVar: 0, bytecode.OpDeleteVar: 1,
	bytecode.OpCloseLoc: 0, bytecode.OpRest: 1,

	bytecode.OpObjectNew: 1, bytecode.OpGetField: 0, bytecode.OpPutField: -2,
	bytecode.OpDefineProp: -2, bytecode.OpDefineMethod: -2, bytecode.OpDefineMethodComputed: -3,
	bytecode.OpArrayNew: 1, bytecode.OpPushArray: 1, bytecode.OpAppend: -2,
	bytecode.OpDefineArrayEl: -1, bytecode.OpGetArrayEl: -1, bytecode.OpPutArrayEl: -3,
	bytecode.OpArrayFrom: 0,

	bytecode.OpDefineClass: 0, bytecode.OpDefinePrivateField: -2,
	bytecode.OpGetPrivateField: -1, bytecode.OpPutPrivateField: -2, bytecode.OpPrivateIn: -1,
	bytecode.OpGetSuper: 0, bytecode.OpGetSuperValue: -1, bytecode.OpPutSuperValue: -3,
	bytecode.OpSpecialObject: 1, bytecode.OpInitCtor: 0, bytecode.OpFClosure: 1,

	bytecode.OpGoto: 0, bytecode.OpIfTrue: -1, bytecode.OpIfFalse: -1, bytecode.OpCatch: 1,

	bytecode.OpAdd: -1, bytecode.OpSub: -1, bytecode.OpMul: -1, bytecode.OpDiv: -1,
	bytecode.OpMod: -1, bytecode.OpExp: -1, bytecode.OpNeg: 0, bytecode.OpPlus: 0,
	bytecode.OpInc: 0, bytecode.OpDec: 0, bytecode.OpPostInc: 1, bytecode.OpPostDec: 1,
	bytecode.OpAnd: -1, bytecode.OpOr: -1, bytecode.OpXor: -1, bytecode.OpNot: 0,
	bytecode.OpShl: -1, bytecode.OpSar: -1, bytecode.OpShr: -1,
	bytecode.OpEq: -1, bytecode.OpNeq: -1, bytecode.OpStrictEq: -1, bytecode.OpStrictNeq: -1,
	bytecode.OpLt: -1, bytecode.OpLte: -1, bytecode.OpGt: -1, bytecode.OpGte: -1,
	bytecode.OpLogicalNot: 0, bytecode.OpIsUndefined: 0, bytecode.OpIsUndefinedOrNull: 0,
	bytecode.OpIn: -1, bytecode.OpInstanceof: -1, bytecode.OpTypeof: 0,
	bytecode.OpToPropKey: 0, bytecode.OpDelete: -1,

	bytecode.OpForInStart: 2, bytecode.OpForInNext: 2, bytecode.OpForInEnd: -1,
	bytecode.OpForOfStart: 3, bytecode.OpForOfNext: 2,
	bytecode.OpForAwaitOfStart: 3, bytecode.OpForAwaitOfNext: 2,
	bytecode.OpIteratorClose: 0,
	bytecode.OpInitialYield: 0, bytecode.OpYield: 0, bytecode.OpYieldStar: 0,
	bytecode.OpAsyncYieldStar: 0, bytecode.OpAwait: 0,
	bytecode.OpCall: -1, bytecode.OpCallConstructor: -2, bytecode.OpApply: -2,
	bytecode.OpReturn: -1, bytecode.OpReturnAsync: -1, bytecode.OpThrow: -1, bytecode.OpThrowError: 0,
}

func stackEffect(op bytecode.Opcode) int {
	return stackEffects[op]
}
