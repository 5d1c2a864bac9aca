package bytecode

import "encoding/binary"

// InsnSize returns the total encoded size (opcode byte + operand bytes) of
// op's instruction, mirroring the fixed-width encoding scheme used by
// emit.Emitter.
func InsnSize(op Opcode) int {
	switch op.Width() {
	case OperandNone:
		return 1
	case OperandU8:
		return 2
	case OperandU16, OperandAtom:
		return 3
	case OperandU32, OperandI32, OperandConst:
		return 5
	default:
		return 1
	}
}

// ReadU8 reads the u8 operand following the opcode byte at pc.
func ReadU8(code []byte, pc int) uint8 { return code[pc+1] }

// ReadU16 reads the u16/atom-id operand following the opcode byte at pc.
func ReadU16(code []byte, pc int) uint16 {
	return binary.LittleEndian.Uint16(code[pc+1:])
}

// ReadU32 reads the u32/i32/const-index operand following the opcode byte
// at pc.
func ReadU32(code []byte, pc int) uint32 {
	return binary.LittleEndian.Uint32(code[pc+1:])
}

// ReadI32 reads a signed relative jump displacement.
func ReadI32(code []byte, pc int) int32 { return int32(ReadU32(code, pc)) }

// WriteU8 appends op and its u8 operand to code.
func WriteU8(code []byte, op Opcode, v uint8) []byte {
	return append(code, byte(op), v)
}

// WriteU16 appends op and its u16/atom-id operand to code.
func WriteU16(code []byte, op Opcode, v uint16) []byte {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	return append(append(code, byte(op)), buf...)
}

// WriteU32 appends op and its u32/const-index operand to code.
func WriteU32(code []byte, op Opcode, v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return append(append(code, byte(op)), buf...)
}

// WriteI32 appends op and a signed relative jump displacement to code.
func WriteI32(code []byte, op Opcode, v int32) []byte {
	return WriteU32(code, op, uint32(v))
}

// WriteNone appends op with no operand to code.
func WriteNone(code []byte, op Opcode) []byte { return append(code, byte(op)) }

// PatchI32 overwrites the i32 operand at pc in place, used to back-patch a
// forward jump once its target offset is known (§4.2 "Emitter" patch-jump).
func PatchI32(code []byte, pc int, v int32) {
	binary.LittleEndian.PutUint32(code[pc+1:], uint32(v))
}

// StackDepth walks code computing the maximum stack depth reached,
// starting from depth 0 and applying each opcode's net stack effect. This
// mirrors the teacher's post-hoc stack-depth computation rather than
// tracking depth incrementally during emission, since jump targets can be
// reached from multiple predecessors with the compiler never needing to
// reconcile them itself — the VM's own contract guarantees a consistent
// depth at every jump target.
func StackDepth(code []byte, effect func(op Opcode) int) int {
	depth, maxDepth := 0, 0
	for pc := 0; pc < len(code); {
		op := Opcode(code[pc])
		depth += effect(op)
		if depth > maxDepth {
			maxDepth = depth
		}
		pc += InsnSize(op)
	}
	return maxDepth
}
