package bytecode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucorth/esbc/bytecode"
)

func TestDisassembleRendersOperandsAndNestedFunctions(t *testing.T) {
	var code []byte
	code = bytecode.WriteU32(code, bytecode.OpPushConst, 0)
	code = bytecode.WriteNone(code, bytecode.OpReturn)

	nested := &bytecode.BytecodeUnit{
		Name: "inner",
		Code: bytecode.WriteNone(nil, bytecode.OpUndefined),
	}
	unit := &bytecode.BytecodeUnit{
		Name:      "outer",
		Code:      code,
		Constants: []bytecode.Const{{Kind: bytecode.ConstFunction, Func: nested}},
		NumArgs:   1,
		MaxLocals: 2,
		MaxStack:  1,
	}

	var buf strings.Builder
	require.NoError(t, bytecode.Disassemble(&buf, unit))

	out := buf.String()
	assert.Contains(t, out, "function outer (1 args, 2 locals, max_stack=1)")
	assert.Contains(t, out, "push_const")
	assert.Contains(t, out, "const#0")
	assert.Contains(t, out, "function inner")
}
