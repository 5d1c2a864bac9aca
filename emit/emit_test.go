package emit_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucorth/esbc/bytecode"
	"github.com/lucorth/esbc/emit"
)

func TestAtomInterningIsStable(t *testing.T) {
	e := emit.New()
	a1 := e.Atom("foo")
	a2 := e.Atom("bar")
	a3 := e.Atom("foo")
	assert.Equal(t, a1, a3)
	assert.NotEqual(t, a1, a2)
	assert.Equal(t, []string{"foo", "bar"}, e.AtomNames())
}

func TestJumpPatching(t *testing.T) {
	e := emit.New()
	e.Emit0(bytecode.OpPushTrue)
	pc := e.EmitJump(bytecode.OpIfFalse)
	e.Emit0(bytecode.OpNull)
	target := e.Offset()
	e.PatchJump(pc, target)

	unit := e.Build("", 0, 0, nil, nil, 0, -1)
	disp := bytecode.ReadI32(unit.Code, pc)
	assert.Equal(t, int32(target-(pc+bytecode.InsnSize(bytecode.OpIfFalse))), disp)
}

func TestPatchJumpHereTargetsCurrentOffset(t *testing.T) {
	e := emit.New()
	pc := e.EmitJump(bytecode.OpGoto)
	e.Emit0(bytecode.OpNull)
	e.PatchJumpHere(pc)

	unit := e.Build("", 0, 0, nil, nil, 0, -1)
	disp := bytecode.ReadI32(unit.Code, pc)
	assert.Equal(t, int32(len(unit.Code)-(pc+bytecode.InsnSize(bytecode.OpGoto))), disp)
}

func TestStringConstantDeduplication(t *testing.T) {
	e := emit.New()
	e.EmitConst(bytecode.OpPushConst, bytecode.Const{Kind: bytecode.ConstString, Str: "hello"})
	e.EmitConst(bytecode.OpPushConst, bytecode.Const{Kind: bytecode.ConstString, Str: "hello"})
	e.EmitConst(bytecode.OpPushConst, bytecode.Const{Kind: bytecode.ConstString, Str: "world"})

	unit := e.Build("", 0, 0, nil, nil, 0, -1)
	require.Len(t, unit.Constants, 2)

	idx0 := bytecode.ReadU32(unit.Code, 0)
	idx1 := bytecode.ReadU32(unit.Code, bytecode.InsnSize(bytecode.OpPushConst))
	assert.Equal(t, idx0, idx1, "repeated string literal must reuse the same constant-pool slot")
}

func TestTemplateObjectsAreNeverDeduplicated(t *testing.T) {
	e := emit.New()
	tmpl := bytecode.Const{Kind: bytecode.ConstTemplateObject, Raw: []string{"a"}}
	e.EmitConst(bytecode.OpPushConst, tmpl)
	e.EmitConst(bytecode.OpPushConst, tmpl)

	unit := e.Build("", 0, 0, nil, nil, 0, -1)
	assert.Len(t, unit.Constants, 2)
}

func TestBuildComputesMaxStack(t *testing.T) {
	e := emit.New()
	e.Emit0(bytecode.OpPushTrue)
	e.Emit0(bytecode.OpPushFalse)
	e.Emit0(bytecode.OpAdd)

	unit := e.Build("", 0, 0, nil, nil, 0, -1)
	assert.Equal(t, 2, unit.MaxStack)
}
