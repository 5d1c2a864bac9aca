package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucorth/esbc/scope"
)

func TestDeclareAndLookupLocal(t *testing.T) {
	c := scope.NewCore()
	c.EnterFunction()

	b, ok := c.Declare("x", scope.DeclLet, 0)
	require.True(t, ok)
	assert.Equal(t, scope.Local, b.Class)

	got, class := c.Lookup("x")
	assert.Equal(t, scope.Local, class)
	assert.Same(t, b, got)

	maxLocals, captures, declared := c.ExitFunction()
	assert.Equal(t, 1, maxLocals)
	assert.Empty(t, captures)
	require.Len(t, declared, 1)
	assert.Equal(t, "x", declared[0].Name)
}

func TestRedeclareInSameBlockFails(t *testing.T) {
	c := scope.NewCore()
	c.EnterFunction()
	_, ok := c.Declare("x", scope.DeclLet, 0)
	require.True(t, ok)
	_, ok = c.Declare("x", scope.DeclLet, 0)
	assert.False(t, ok)
	c.ExitFunction()
}

func TestUnresolvedNameIsGlobal(t *testing.T) {
	c := scope.NewCore()
	c.EnterFunction()
	b, class := c.Lookup("undeclaredGlobal")
	assert.Nil(t, b)
	assert.Equal(t, scope.Global, class)
	c.ExitFunction()
}

// TestSingleHopCapture verifies that a directly nested function capturing
// its parent's local promotes that local to Cell and gets a Free binding
// of its own.
func TestSingleHopCapture(t *testing.T) {
	c := scope.NewCore()
	c.EnterFunction() // outer
	outerX, _ := c.Declare("x", scope.DeclLet, 0)
	assert.Equal(t, scope.Local, outerX.Class)

	c.EnterFunction() // inner
	_, class := c.Lookup("x")
	assert.Equal(t, scope.Free, class)
	assert.Equal(t, scope.Cell, outerX.Class, "capturing a local must promote it to Cell")

	_, captures, _ := c.ExitFunction()
	require.Len(t, captures, 1)
	assert.True(t, captures[0].FromCell)
	assert.Same(t, outerX, captures[0].FromParent)

	c.ExitFunction()
}

// TestMultiLevelCapture verifies that a binding captured through two
// levels of intermediate functions gets a relay Free binding installed in
// each intermediate function, not just the top and bottom.
func TestMultiLevelCapture(t *testing.T) {
	c := scope.NewCore()
	c.EnterFunction() // A: owns x
	ownerX, _ := c.Declare("x", scope.DeclLet, 0)

	c.EnterFunction() // B: relay
	c.EnterFunction() // C: relay
	c.EnterFunction() // D: references x

	_, class := c.Lookup("x")
	assert.Equal(t, scope.Free, class)
	assert.Equal(t, scope.Cell, ownerX.Class)

	_, dCaptures, _ := c.ExitFunction() // D
	require.Len(t, dCaptures, 1)
	assert.False(t, dCaptures[0].FromCell, "D's capture relays through C's Free binding, not a Cell directly")

	_, cCaptures, _ := c.ExitFunction() // C
	require.Len(t, cCaptures, 1)
	assert.False(t, cCaptures[0].FromCell)

	_, bCaptures, _ := c.ExitFunction() // B
	require.Len(t, bCaptures, 1)
	assert.True(t, bCaptures[0].FromCell, "B is the first hop out from the true owner A")
	assert.Same(t, ownerX, bCaptures[0].FromParent)

	c.ExitFunction() // A
}

func TestBlockScopingShadowsOuterDeclaration(t *testing.T) {
	c := scope.NewCore()
	c.EnterFunction()
	outer, _ := c.Declare("x", scope.DeclLet, 0)

	c.EnterBlock()
	inner, _ := c.Declare("x", scope.DeclLet, 0)
	assert.NotSame(t, outer, inner)
	got, _ := c.Lookup("x")
	assert.Same(t, inner, got)
	c.ExitBlock()

	got, _ = c.Lookup("x")
	assert.Same(t, outer, got)

	c.ExitFunction()
}

func TestDeclareHoistedReusesExistingRootBinding(t *testing.T) {
	c := scope.NewCore()
	c.EnterFunction()
	first := c.DeclareHoisted("v", scope.DeclVar, 0)
	second := c.DeclareHoisted("v", scope.DeclVar, 0)
	assert.Same(t, first, second)
	c.ExitFunction()
}

func TestDisposalStackLazilyCreatedOncePerBlock(t *testing.T) {
	c := scope.NewCore()
	c.EnterFunction()
	c.Declare("a", scope.DeclUsing, 0)

	stack1, created1, mismatch1 := c.EnsureDisposalStack(false)
	require.True(t, created1)
	assert.False(t, mismatch1)

	c.Declare("b", scope.DeclUsing, 0)
	stack2, created2, mismatch2 := c.EnsureDisposalStack(false)
	assert.False(t, created2, "second using in the same block reuses the block's one disposal stack")
	assert.False(t, mismatch2)
	assert.Same(t, stack1, stack2)

	got, isAsync := c.DisposalStack()
	assert.Same(t, stack1, got)
	assert.False(t, isAsync)

	c.ExitFunction()
}

func TestEnsureDisposalStackFlagsSyncAsyncMismatch(t *testing.T) {
	c := scope.NewCore()
	c.EnterFunction()
	c.Declare("a", scope.DeclUsing, 0)
	_, _, mismatch := c.EnsureDisposalStack(false)
	require.False(t, mismatch)

	c.Declare("b", scope.DeclAwaitUsing, 0)
	_, created, mismatch := c.EnsureDisposalStack(true)
	assert.False(t, created)
	assert.True(t, mismatch, "mixing using and await using in the same block must be flagged")

	c.ExitFunction()
}

func TestDisposalDepthSpansNestedBlocks(t *testing.T) {
	c := scope.NewCore()
	c.EnterFunction()
	c.Declare("a", scope.DeclUsing, 0)
	outerStack, _, _ := c.EnsureDisposalStack(false)
	assert.Equal(t, 1, c.DisposalDepth())

	watermark := c.DisposalDepth()
	c.EnterBlock()
	c.Declare("b", scope.DeclAwaitUsing, 0)
	innerStack, _, _ := c.EnsureDisposalStack(true)
	assert.Equal(t, 2, c.DisposalDepth())

	since := c.DisposalsSince(watermark)
	require.Len(t, since, 1)
	assert.Same(t, innerStack, since[0].Binding)
	assert.True(t, since[0].Async)

	// the outer disposal stack is untouched by a watermark taken after it.
	outer := c.DisposalsSince(0)
	require.Len(t, outer, 2)
	assert.Same(t, outerStack, outer[0].Binding)

	c.ExitBlock()
	c.ExitFunction()
}

func TestGlobalFunctionHoistsVarAsGlobalClass(t *testing.T) {
	c := scope.NewCore()
	c.EnterGlobalFunction()
	b := c.DeclareHoisted("a", scope.DeclVar, 0)
	assert.Equal(t, scope.Global, b.Class)
	assert.True(t, c.IsNonDeletableGlobal("a"))

	got, class := c.Lookup("a")
	assert.Equal(t, scope.Global, class)
	assert.Same(t, b, got)

	maxLocals, _, declared := c.ExitFunction()
	assert.Equal(t, 0, maxLocals)
	assert.Empty(t, declared)
}

func TestGlobalFunctionTopLevelLetStaysLocalButNonDeletable(t *testing.T) {
	c := scope.NewCore()
	c.EnterGlobalFunction()
	b, ok := c.Declare("x", scope.DeclLet, 0)
	require.True(t, ok)
	assert.Equal(t, scope.Local, b.Class)
	assert.True(t, c.IsNonDeletableGlobal("x"))
	c.ExitFunction()
}

func TestHasTDZ(t *testing.T) {
	assert.True(t, scope.DeclLet.HasTDZ())
	assert.True(t, scope.DeclConst.HasTDZ())
	assert.True(t, scope.DeclUsing.HasTDZ())
	assert.True(t, scope.DeclAwaitUsing.HasTDZ())
	assert.False(t, scope.DeclVar.HasTDZ())
	assert.False(t, scope.DeclParam.HasTDZ())
}
