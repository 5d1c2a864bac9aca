package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lucorth/esbc/bytecode"
)

func TestOpcodeStringAndWidth(t *testing.T) {
	assert.Equal(t, "get_loc", bytecode.OpGetLocal.String())
	assert.Equal(t, bytecode.OperandU16, bytecode.OpGetLocal.Width())

	assert.Equal(t, "dup", bytecode.OpDup.String())
	assert.Equal(t, bytecode.OperandNone, bytecode.OpDup.Width())
}

func TestFlagsHasBit(t *testing.T) {
	f := bytecode.FlagStrict | bytecode.FlagAsync
	assert.True(t, f.Has(bytecode.FlagStrict))
	assert.True(t, f.Has(bytecode.FlagAsync))
	assert.False(t, f.Has(bytecode.FlagGenerator))
}

func TestConstStringRendering(t *testing.T) {
	assert.Equal(t, `"hi"`, bytecode.Const{Kind: bytecode.ConstString, Str: "hi"}.String())
	assert.Equal(t, "7n", bytecode.Const{Kind: bytecode.ConstBigInt, Str: "7"}.String())
	assert.Equal(t, "/ab/g", bytecode.Const{Kind: bytecode.ConstRegexp, Str: "ab", RegexpFl: "g"}.String())
}
