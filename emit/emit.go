// Package emit is the low-level instruction writer used by the compiler:
// it owns the growing byte vector, the constant pool, and the atom
// interner, and exposes jump back-patching (§4.2 "Emitter"). It knows
// nothing about AST shapes or scoping; compiler calls it once the right
// opcode and operands have been decided.
package emit

import (
	"github.com/dolthub/swiss"

	"github.com/lucorth/esbc/bytecode"
)

// Atom is an interned identifier/property-name id, the operand of every
// atom-id opcode (GET_VAR, GET_FIELD, DEFINE_CLASS, ...).
type Atom uint16

// Emitter accumulates one function's instruction stream. A new Emitter is
// created per function by the compiler (§3 "Compiler state": "a new
// Emitter ... is pushed for every function entered").
type Emitter struct {
	code []byte

	constants   []bytecode.Const
	constDedup  *swiss.Map[string, uint32] // dedup key -> constant index, for value-equal literals only
	nextConstID uint32

	atomNames []string
	atomIDs   *swiss.Map[string, Atom]
}

// New returns an empty Emitter.
func New() *Emitter {
	return &Emitter{
		constDedup: swiss.NewMap[string, uint32](16),
		atomIDs:    swiss.NewMap[string, Atom](16),
	}
}

// Offset returns the current end-of-stream offset, i.e. the address the
// next emitted instruction will occupy.
func (e *Emitter) Offset() int { return len(e.code) }

// Atom interns name, returning a stable id reused for repeated occurrences
// of the same name within this function (§4.1 "identifiers are interned
// once per function unit").
func (e *Emitter) Atom(name string) Atom {
	if id, ok := e.atomIDs.Get(name); ok {
		return id
	}
	id := Atom(len(e.atomNames))
	e.atomNames = append(e.atomNames, name)
	e.atomIDs.Put(name, id)
	return id
}

// Emit0 writes a no-operand instruction.
func (e *Emitter) Emit0(op bytecode.Opcode) {
	e.code = bytecode.WriteNone(e.code, op)
}

// Emit8 writes a u8-operand instruction.
func (e *Emitter) Emit8(op bytecode.Opcode, v uint8) {
	e.code = bytecode.WriteU8(e.code, op, v)
}

// Emit16 writes a u16-operand instruction (local/arg/var-ref slot index).
func (e *Emitter) Emit16(op bytecode.Opcode, v uint16) {
	e.code = bytecode.WriteU16(e.code, op, v)
}

// EmitAtom writes an atom-id-operand instruction.
func (e *Emitter) EmitAtom(op bytecode.Opcode, name string) {
	e.code = bytecode.WriteU16(e.code, op, uint16(e.Atom(name)))
}

// Emit32 writes a raw u32-operand instruction.
func (e *Emitter) Emit32(op bytecode.Opcode, v uint32) {
	e.code = bytecode.WriteU32(e.code, op, v)
}

// EmitI32 writes a signed-i32-operand instruction (PUSH_I32/PUSH_BIGINT_I32
// small-literal fast paths).
func (e *Emitter) EmitI32(op bytecode.Opcode, v int32) {
	e.code = bytecode.WriteI32(e.code, op, v)
}

// EmitConst writes a constant-pool-index instruction, interning val first.
func (e *Emitter) EmitConst(op bytecode.Opcode, val bytecode.Const) {
	e.code = bytecode.WriteU32(e.code, op, e.intern(val))
}

// intern adds val to the constant pool, reusing an existing entry for
// value-equal string/bigint/regexp literals (§4.1 "identical string and
// numeric literals share one constant-pool slot"). Template objects and
// nested function units are never deduplicated: each occurrence is a
// distinct object by spec (template-object identity) or is simply unique
// by construction (one BytecodeUnit per function).
func (e *Emitter) intern(val bytecode.Const) uint32 {
	switch val.Kind {
	case bytecode.ConstString:
		key := "s:" + val.Str
		if idx, ok := e.constDedup.Get(key); ok {
			return idx
		}
		idx := e.push(val)
		e.constDedup.Put(key, idx)
		return idx
	case bytecode.ConstBigInt:
		key := "b:" + val.Str
		if idx, ok := e.constDedup.Get(key); ok {
			return idx
		}
		idx := e.push(val)
		e.constDedup.Put(key, idx)
		return idx
	case bytecode.ConstRegexp:
		key := "r:" + val.Str + "\x00" + val.RegexpFl
		if idx, ok := e.constDedup.Get(key); ok {
			return idx
		}
		idx := e.push(val)
		e.constDedup.Put(key, idx)
		return idx
	default:
		return e.push(val)
	}
}

func (e *Emitter) push(val bytecode.Const) uint32 {
	idx := e.nextConstID
	e.constants = append(e.constants, val)
	e.nextConstID++
	return idx
}

// EmitJump writes a jump-family instruction with a placeholder operand and
// returns its offset, for later resolution by PatchJump.
func (e *Emitter) EmitJump(op bytecode.Opcode) int {
	pc := e.Offset()
	e.code = bytecode.WriteI32(e.code, op, 0)
	return pc
}

// PatchJump back-patches the jump instruction at pc so it targets target,
// encoding the signed 32-bit relative displacement the VM contract
// requires (§6.1).
func (e *Emitter) PatchJump(pc, target int) {
	op := bytecode.Opcode(e.code[pc])
	disp := int32(target - (pc + bytecode.InsnSize(op)))
	bytecode.PatchI32(e.code, pc, disp)
}

// PatchJumpHere patches the jump instruction at pc to target the current
// offset, the common "jump to just past here" case.
func (e *Emitter) PatchJumpHere(pc int) { e.PatchJump(pc, e.Offset()) }

// Build finalizes the Emitter into a BytecodeUnit. locals and captures are
// supplied by the scope core, which alone knows the final slot assignment
// and capture list once the function body has been fully walked.
func (e *Emitter) Build(name string, numArgs, maxLocals int, locals []bytecode.Binding, captures []bytecode.CaptureSource, flags bytecode.Flags, selfCaptureSlot int) *bytecode.BytecodeUnit {
	unit := &bytecode.BytecodeUnit{
		Name:            name,
		Code:            e.code,
		Constants:       e.constants,
		Locals:          locals,
		Captures:        captures,
		NumArgs:         numArgs,
		MaxLocals:       maxLocals,
		SelfCaptureSlot: selfCaptureSlot,
		Flags:           flags,
	}
	unit.MaxStack = bytecode.StackDepth(unit.Code, stackEffect)
	return unit
}

// AtomNames returns the interned atom table built for this function unit,
// in id order.
func (e *Emitter) AtomNames() []string { return e.atomNames }
