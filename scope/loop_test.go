package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucorth/esbc/scope"
)

func TestLoopFrameLIFOOrder(t *testing.T) {
	c := scope.NewCore()
	c.EnterFunction()

	outer := c.PushLoop("", 0)
	inner := c.PushLoop("", 0)

	assert.Panics(t, func() { c.PopLoop(outer) }, "popping out of LIFO order must panic")

	c.PopLoop(inner)
	c.PopLoop(outer)

	c.ExitFunction()
}

func TestLabeledLoopLookup(t *testing.T) {
	c := scope.NewCore()
	c.EnterFunction()

	f := c.PushLoop("outer", 0)
	assert.Same(t, f, c.FindLabel("outer"))
	assert.Same(t, f, c.InnermostLoop())

	c.PopLoop(f)
	assert.Nil(t, c.FindLabel("outer"))

	c.ExitFunction()
}

func TestSwitchFrameIsBreakOnly(t *testing.T) {
	c := scope.NewCore()
	c.EnterFunction()

	f := c.PushSwitch("", 0)
	assert.True(t, f.IsSwitch)
	f.AddBreak(4)
	require.Equal(t, []int{4}, f.Breaks())
	assert.Empty(t, f.Continues())

	c.PopLoop(f)
	c.ExitFunction()
}
