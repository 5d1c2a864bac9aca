// Package bytecode declares the external VM opcode contract (§6.1) and the
// BytecodeUnit shape the emitter produces (§3 "Bytecode unit"). It does not
// execute anything: the virtual machine that interprets this bytecode is,
// per §1, an external collaborator specified only by this contract.
package bytecode

import "fmt"

// OperandWidth identifies the fixed-size operand footprint an Opcode
// carries, per §3 "Opcode": "no operand, u8, u16, u32, i32, atom-id,
// constant-pool index".
type OperandWidth int

const (
	OperandNone OperandWidth = iota
	OperandU8
	OperandU16
	OperandU32
	OperandI32 // relative jump displacement, 32-bit signed
	OperandAtom
	OperandConst
)

// Opcode is a tagged VM instruction. The compiler knows only opcode
// identity and operand width; semantics belong to the VM (§6.1).
type Opcode uint16

const (
	// stack manipulation
	OpDup Opcode = iota
	OpDup1
	OpDup2
	OpDup3
	OpDrop
	OpSwap
	OpSwap2
	OpNip
	OpNipCatch
	OpInsert4
	OpRot3L
	OpRot3R
	OpPerm4

	// literals
	OpNull
	OpUndefined
	OpPushTrue
	OpPushFalse
	OpPushI32
	OpPushBigIntI32
	OpPushConst
	OpPushAtomValue
	OpPushThis

	// variables
	OpGetLocal
	OpPutLocal
	OpSetLocal
	OpGetLocCheck
	OpSetLocUninitialized
	OpGetArg
	OpPutArg
	OpGetVarRef
	OpPutVarRef
	OpSetVarRef
	OpGetVar
	OpPutVar
	OpSetVar
	OpDeleteVar
	OpCloseLoc
	OpRest

	// objects
	OpObjectNew
	OpGetField
	OpPutField
	OpDefineProp
	OpDefineMethod
	OpDefineMethodComputed
	OpArrayNew
	OpPushArray
	OpAppend
	OpDefineArrayEl
	OpGetArrayEl
	OpPutArrayEl
	OpArrayFrom

	// classes
	OpDefineClass
	OpDefinePrivateField
	OpGetPrivateField
	OpPutPrivateField
	OpPrivateIn
	OpGetSuper
	OpGetSuperValue
	OpPutSuperValue
	OpSpecialObject
	OpInitCtor
	OpFClosure

	// control flow
	OpGoto
	OpIfTrue
	OpIfFalse
	OpCatch

	// arithmetic / comparison / logical / bitwise
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpExp
	OpNeg
	OpPlus
	OpInc
	OpDec
	OpPostInc
	OpPostDec
	OpAnd
	OpOr
	OpXor
	OpNot
	OpShl
	OpSar
	OpShr
	OpEq
	OpNeq
	OpStrictEq
	OpStrictNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpLogicalNot
	OpIsUndefined
	OpIsUndefinedOrNull
	OpIn
	OpInstanceof
	OpTypeof
	OpToPropKey
	OpDelete

	// iteration / generators / async
	OpForInStart
	OpForInNext
	OpForInEnd
	OpForOfStart
	OpForOfNext
	OpForAwaitOfStart
	OpForAwaitOfNext
	OpIteratorClose
	OpInitialYield
	OpYield
	OpYieldStar
	OpAsyncYieldStar
	OpAwait
	OpCall
	OpCallConstructor
	OpApply
	OpReturn
	OpReturnAsync
	OpThrow
	OpThrowError

	opcodeCount
)

// SpecialObjectKind is the u8 operand of SPECIAL_OBJECT (§6.1).
type SpecialObjectKind uint8

const (
	SpecialArguments  SpecialObjectKind = 0
	SpecialThisFunc   SpecialObjectKind = 2
	SpecialNewTarget  SpecialObjectKind = 3
	SpecialHomeObject SpecialObjectKind = 4
)

// MethodDefKind is the bitwise-or'd kind/enumerable flags of
// DEFINE_METHOD_COMPUTED (§4.4 "Object literal", §4.6 "Emit class method
// definition").
const (
	MethodGet        uint8 = 1
	MethodSet        uint8 = 2
	MethodEnumerable uint8 = 4
)

var opcodeNames = [opcodeCount]string{
	OpDup: "dup", OpDup1: "dup1", OpDup2: "dup2", OpDup3: "dup3", OpDrop: "drop",
	OpSwap: "swap", OpSwap2: "swap2", OpNip: "nip", OpNipCatch: "nip_catch",
	OpInsert4: "insert4", OpRot3L: "rot3l", OpRot3R: "rot3r", OpPerm4: "perm4",
	OpNull: "null", OpUndefined: "undefined", OpPushTrue: "push_true",
	OpPushFalse: "push_false", OpPushI32: "push_i32", OpPushBigIntI32: "push_bigint_i32",
	OpPushConst: "push_const", OpPushAtomValue: "push_atom_value", OpPushThis: "push_this",
	OpGetLocal: "get_loc", OpPutLocal: "put_loc", OpSetLocal: "set_loc",
	OpGetLocCheck: "get_loc_check", OpSetLocUninitialized: "set_loc_uninitialized",
	OpGetArg: "get_arg", OpPutArg: "put_arg", OpGetVarRef: "get_var_ref",
	OpPutVarRef: "put_var_ref", OpSetVarRef: "set_var_ref", OpGetVar: "get_var",
	OpPutVar: "put_var", OpSetVar: "set_var", OpDeleteVar: "delete_var",
	OpCloseLoc: "close_loc", OpRest: "rest",
	OpObjectNew: "object_new", OpGetField: "get_field", OpPutField: "put_field",
	OpDefineProp: "define_prop", OpDefineMethod: "define_method",
	OpDefineMethodComputed: "define_method_computed", OpArrayNew: "array_new",
	OpPushArray: "push_array", OpAppend: "append", OpDefineArrayEl: "define_array_el",
	OpGetArrayEl: "get_array_el", OpPutArrayEl: "put_array_el", OpArrayFrom: "array_from",
	OpDefineClass: "define_class", OpDefinePrivateField: "define_private_field",
	OpGetPrivateField: "get_private_field", OpPutPrivateField: "put_private_field",
	OpPrivateIn: "private_in", OpGetSuper: "get_super", OpGetSuperValue: "get_super_value",
	OpPutSuperValue: "put_super_value", OpSpecialObject: "special_object",
	OpInitCtor: "init_ctor", OpFClosure: "fclosure",
	OpGoto: "goto", OpIfTrue: "if_true", OpIfFalse: "if_false", OpCatch: "catch",
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpMod: "mod", OpExp: "exp",
	OpNeg: "neg", OpPlus: "plus", OpInc: "inc", OpDec: "dec", OpPostInc: "post_inc",
	OpPostDec: "post_dec", OpAnd: "and", OpOr: "or", OpXor: "xor", OpNot: "not",
	OpShl: "shl", OpSar: "sar", OpShr: "shr", OpEq: "eq", OpNeq: "neq",
	OpStrictEq: "strict_eq", OpStrictNeq: "strict_neq", OpLt: "lt", OpLte: "lte",
	OpGt: "gt", OpGte: "gte", OpLogicalNot: "logical_not", OpIsUndefined: "is_undefined",
	OpIsUndefinedOrNull: "is_undefined_or_null", OpIn: "in", OpInstanceof: "instanceof",
	OpTypeof: "typeof", OpToPropKey: "to_propkey", OpDelete: "delete",
	OpForInStart: "for_in_start", OpForInNext: "for_in_next", OpForInEnd: "for_in_end",
	OpForOfStart: "for_of_start", OpForOfNext: "for_of_next",
	OpForAwaitOfStart: "for_await_of_start", OpForAwaitOfNext: "for_await_of_next",
	OpIteratorClose: "iterator_close", OpInitialYield: "initial_yield", OpYield: "yield",
	OpYieldStar: "yield_star", OpAsyncYieldStar: "async_yield_star", OpAwait: "await",
	OpCall: "call", OpCallConstructor: "call_constructor", OpApply: "apply",
	OpReturn: "return", OpReturnAsync: "return_async", OpThrow: "throw",
	OpThrowError: "throw_error",
}

func (op Opcode) String() string {
	if op < opcodeCount {
		if n := opcodeNames[op]; n != "" {
			return n
		}
	}
	return fmt.Sprintf("illegal_op(%d)", op)
}

// operandWidths records the fixed operand footprint of each opcode, per §3
// "Opcode ... carries a fixed-size operand footprint".
var operandWidths = [opcodeCount]OperandWidth{
	OpPushI32:       OperandI32,
	OpPushBigIntI32: OperandI32,
	OpPushConst:     OperandConst,
	OpPushAtomValue: OperandAtom,

	OpGetLocal: OperandU16, OpPutLocal: OperandU16, OpSetLocal: OperandU16,
	OpGetLocCheck: OperandU16, OpSetLocUninitialized: OperandU16,
	OpGetArg: OperandU16, OpPutArg: OperandU16,
	OpGetVarRef: OperandU16, OpPutVarRef: OperandU16, OpSetVarRef: OperandU16,
	OpGetVar: OperandAtom, OpPutVar: OperandAtom, OpSetVar: OperandAtom, OpDeleteVar: OperandAtom,
	OpCloseLoc: OperandU16, OpRest: OperandU16,

	OpGetField: OperandAtom, OpPutField: OperandAtom,
	OpDefineMethod: OperandAtom, OpDefineMethodComputed: OperandU8,
	OpArrayFrom: OperandU16,

	OpDefineClass:        OperandAtom,
	OpSpecialObject:      OperandU8,
	OpFClosure:           OperandConst,

	OpGoto: OperandI32, OpIfTrue: OperandI32, OpIfFalse: OperandI32, OpCatch: OperandI32,

	OpForOfNext: OperandU8,

	OpCall: OperandU16, OpCallConstructor: OperandU16, OpApply: OperandU16,
	OpThrowError: OperandU8, // atom id is written as a raw follow-up u32, see emit.ThrowError
}

// Width returns the fixed operand footprint of op.
func (op Opcode) Width() OperandWidth {
	if op < opcodeCount {
		return operandWidths[op]
	}
	return OperandNone
}

// IsJump reports whether op's operand is a relative bytecode displacement
// that must be patched by emit.Emitter.PatchJump.
func IsJump(op Opcode) bool {
	switch op {
	case OpGoto, OpIfTrue, OpIfFalse, OpCatch:
		return true
	default:
		return false
	}
}
