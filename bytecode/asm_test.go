package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lucorth/esbc/bytecode"
)

func TestInsnSizeByWidth(t *testing.T) {
	assert.Equal(t, 1, bytecode.InsnSize(bytecode.OpDup))
	assert.Equal(t, 2, bytecode.InsnSize(bytecode.OpDefineMethodComputed))
	assert.Equal(t, 3, bytecode.InsnSize(bytecode.OpGetLocal))
	assert.Equal(t, 3, bytecode.InsnSize(bytecode.OpGetVar))
	assert.Equal(t, 5, bytecode.InsnSize(bytecode.OpGoto))
	assert.Equal(t, 5, bytecode.InsnSize(bytecode.OpPushConst))
}

func TestWriteReadRoundTrip(t *testing.T) {
	var code []byte
	code = bytecode.WriteU16(code, bytecode.OpGetLocal, 42)
	got := bytecode.ReadU16(code, 0)
	assert.Equal(t, uint16(42), got)

	code = bytecode.WriteI32(code, bytecode.OpGoto, -17)
	off := bytecode.InsnSize(bytecode.OpGetLocal)
	assert.Equal(t, int32(-17), bytecode.ReadI32(code, off))
}

func TestPatchI32Overwrites(t *testing.T) {
	var code []byte
	code = bytecode.WriteI32(code, bytecode.OpGoto, 0)
	bytecode.PatchI32(code, 0, 99)
	assert.Equal(t, int32(99), bytecode.ReadI32(code, 0))
}

func TestStackDepthTracksPeak(t *testing.T) {
	var code []byte
	code = bytecode.WriteNone(code, bytecode.OpNull)
	code = bytecode.WriteNone(code, bytecode.OpNull)
	code = bytecode.WriteNone(code, bytecode.OpAdd)

	effect := func(op bytecode.Opcode) int {
		switch op {
		case bytecode.OpNull:
			return 1
		case bytecode.OpAdd:
			return -1
		default:
			return 0
		}
	}
	assert.Equal(t, 2, bytecode.StackDepth(code, effect))
}

func TestIsJump(t *testing.T) {
	assert.True(t, bytecode.IsJump(bytecode.OpGoto))
	assert.True(t, bytecode.IsJump(bytecode.OpIfTrue))
	assert.True(t, bytecode.IsJump(bytecode.OpIfFalse))
	assert.False(t, bytecode.IsJump(bytecode.OpAdd))
}
