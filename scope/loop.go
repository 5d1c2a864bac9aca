package scope

// LoopFrame tracks one enclosing iteration/switch statement's break and
// continue targets, so a labeled or bare break/continue deep inside
// nested statements can find the right jump list to patch once the loop's
// head/tail offsets are known (§4.5 "While / For", "Switch").
type LoopFrame struct {
	Label string // "" for an unlabeled loop frame entry

	IsSwitch bool // switch has a break target but no continue target

	// HasIterator marks a for-of/for-await-of frame: every abrupt exit
	// (break) from inside it must close the iterator before jumping past
	// the loop (§3 invariant 5, §4.5 "For-of and for-await-of").
	HasIterator bool

	breaks    []int // EmitJump offsets pending patch to the loop's exit
	continues []int // EmitJump offsets pending patch to the loop's continue target

	// DisposalDepth is the number of disposal-stack entries live when this
	// frame was entered, so break/continue/return crossing it know how
	// many `using` resources to unwind (§4.5 "using declarations").
	DisposalDepth int
}

// PushLoop enters a new breakable/continuable frame, optionally labeled.
func (c *Core) PushLoop(label string, disposalDepth int) *LoopFrame {
	f := &LoopFrame{Label: label, DisposalDepth: disposalDepth}
	c.fn.loops = append(c.fn.loops, f)
	if label != "" {
		c.fn.labels[label] = f
	}
	return f
}

// PushSwitch enters a break-only frame for a switch statement.
func (c *Core) PushSwitch(label string, disposalDepth int) *LoopFrame {
	f := c.PushLoop(label, disposalDepth)
	f.IsSwitch = true
	return f
}

// PopLoop exits the innermost frame, which must be f.
func (c *Core) PopLoop(f *LoopFrame) {
	n := len(c.fn.loops)
	if n == 0 || c.fn.loops[n-1] != f {
		panic("scope: PopLoop called out of order")
	}
	c.fn.loops = c.fn.loops[:n-1]
	if f.Label != "" {
		delete(c.fn.labels, f.Label)
	}
}

// AddBreak records a break-site jump offset against f (the innermost loop
// frame when label == "", or the labeled frame otherwise).
func (f *LoopFrame) AddBreak(pc int)    { f.breaks = append(f.breaks, pc) }
func (f *LoopFrame) AddContinue(pc int) { f.continues = append(f.continues, pc) }

// Breaks and Continues return the pending jump offsets for patching once
// the frame's exit/continue target addresses are known.
func (f *LoopFrame) Breaks() []int    { return f.breaks }
func (f *LoopFrame) Continues() []int { return f.continues }

// InnermostLoop returns the nearest enclosing frame, used for a bare
// break/continue.
func (c *Core) InnermostLoop() *LoopFrame {
	n := len(c.fn.loops)
	if n == 0 {
		return nil
	}
	return c.fn.loops[n-1]
}

// ActiveLoops returns every loop/switch frame currently open in this
// function, outermost first. A return/throw site walks this list to find
// every HasIterator frame it abruptly exits through (§3 invariant 5).
func (c *Core) ActiveLoops() []*LoopFrame {
	return c.fn.loops
}

// FindLabel returns the frame registered for label within the current
// function (labels do not cross function boundaries, §4.5 "Labeled
// statement").
func (c *Core) FindLabel(label string) *LoopFrame {
	return c.fn.labels[label]
}
