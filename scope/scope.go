// Package scope implements the Scope & Capture Core (§4.1): the
// function/block scope stack, binding declaration and resolution, and the
// promotion of a referenced outer local into a heap-allocated cell when a
// nested function captures it. It knows nothing about bytecode; it hands
// the compiler a Binding classification and the compiler decides which
// opcode family to emit.
package scope

import (
	"github.com/dolthub/swiss"

	"github.com/lucorth/esbc/token"
)

// Class is the resolved storage class of a binding, mirroring the
// four-way (plus global) taxonomy used by closure-capturing compilers:
// a name is Local to the function that declares it until some nested
// function references it, at which point it is promoted to Cell; the
// referencing function then holds a Free binding that aliases the cell.
// Names that resolve to neither are Global.
type Class int

const (
	Local Class = iota
	Cell
	Free
	Global
)

func (c Class) String() string {
	switch c {
	case Local:
		return "local"
	case Cell:
		return "cell"
	case Free:
		return "free"
	case Global:
		return "global"
	default:
		return "invalid"
	}
}

// DeclKind records why a binding exists, which governs TDZ and
// redeclaration rules (§4.1 "Declaration").
type DeclKind int

const (
	DeclVar DeclKind = iota // var or function-scoped hoisted name: no TDZ, initialized to undefined
	DeclLet                 // let: TDZ until the declaration executes
	DeclConst
	DeclParam
	DeclCatchParam
	DeclFuncSelf // the function's own name, visible only inside its body
	DeclUsing
	DeclAwaitUsing
)

// HasTDZ reports whether a binding of this kind starts in the temporal
// dead zone (§4.1 "Temporal dead zone").
func (k DeclKind) HasTDZ() bool {
	switch k {
	case DeclLet, DeclConst, DeclUsing, DeclAwaitUsing:
		return true
	default:
		return false
	}
}

// Binding is one declared name, local to the function that owns it until
// Promote upgrades it to Cell.
type Binding struct {
	Name  string
	Kind  DeclKind
	Class Class
	Pos   token.Pos

	// Slot is the local variable slot index while Class == Local, or the
	// var-ref index once Class == Cell (the slot the parent's FCLOSURE
	// will read from, per bytecode.CaptureSource).
	Slot uint16
}

// block is one lexical block within a function: the function body itself,
// or a nested {}  / for-head / catch-param scope. names uses the same
// swiss-table implementation the teacher's own machine.Map wraps
// (lang/machine/map.go) — a scope's name lookup is exactly the "many
// short-lived string-keyed lookups in a hot compiler loop" profile that
// table is built for.
//
// disposalStack/disposalAsync hold this block's single lazily-created
// DisposableStack/AsyncDisposableStack local, per §3 Scope's data model
// ("an optional using/await using disposal-stack slot index and its
// sync/async flag"): every using/await-using declaration in this block
// calls .use() on the same stack object rather than each getting its own
// disposal entry.
type block struct {
	parent        *block
	names         *swiss.Map[string, *Binding]
	disposalStack *Binding
	disposalAsync bool
}

func newBlock(parent *block) *block {
	return &block{parent: parent, names: swiss.NewMap[string, *Binding](8)}
}

// function is one function's scope-resolution state: its chain of blocks,
// its local slot allocator, and the free bindings it has accumulated by
// capturing from an enclosing function.
type function struct {
	parent     *function
	top        *block // current innermost block
	nextSlot   uint16
	maxSlot    uint16
	isGlobal   bool                        // true only for the program's own root function frame (§4.5 "Program body" step 1)
	freeByName *swiss.Map[string, *Binding] // name -> Free binding already created in this function
	captures   []Capture                    // parallel to freeByName creation order
	declared   []*Binding                   // every Local binding declared in this function, for debug metadata
	loops      []*LoopFrame
	labels     map[string]*LoopFrame

	// disposalStacks accumulates every block-level disposal stack opened
	// anywhere in this function, across all open blocks, in the order each
	// block first saw a using/await-using declaration — a
	// break/continue/return/throw site unwinds a suffix of this slice
	// (every disposal stack opened since it entered the frame it is now
	// abruptly exiting), independent of which nested block each stack
	// actually lives in (§3 invariant 4, §4.5 "using declarations").
	disposalStacks []DisposalStack
}

// DisposalStack is one block's lazily-created DisposableStack /
// AsyncDisposableStack local (§3 Scope data model), returned by
// Core.EnsureDisposalStack/DisposalStack/DisposalsSince so the compiler
// knows which local holds the runtime stack object and whether disposing
// it is the async form (needs AWAIT after .disposeAsync()).
type DisposalStack struct {
	Binding *Binding
	Async   bool
}

// Capture records where a Free binding's value comes from in the parent
// function, in the order captures were first referenced — this order
// becomes the child BytecodeUnit's Captures array (§3 "closure variable
// table").
type Capture struct {
	Name       string
	FromParent *Binding // the parent's Cell (or already-Free) binding
	FromCell   bool     // true: parent binding is itself a Cell (CaptureParentLocal); false: parent binding is Free (CaptureParentVarRef, transitive)
}

// Core is the scope/capture resolver for one compilation: a stack of
// function scopes, the innermost of which owns the current block chain.
type Core struct {
	fn *function

	// globals is the non-deletable global set (§4.3 (i), §4.5 step (1)):
	// every name a global program's top-level var, function, class, let, or
	// const declaration introduces, across the whole compile.
	globals map[string]bool
}

// NewCore returns a Core with no function entered; EnterFunction must be
// called before Declare/Resolve.
func NewCore() *Core { return &Core{globals: map[string]bool{}} }

// EnterFunction pushes a new function scope nested inside the current one
// (nil parent for the top-level program, treated as a function per §4.5).
func (c *Core) EnterFunction() {
	parent := c.fn
	fn := &function{
		parent:     parent,
		freeByName: swiss.NewMap[string, *Binding](8),
		labels:     make(map[string]*LoopFrame),
	}
	fn.top = newBlock(nil)
	c.fn = fn
}

// EnterGlobalFunction pushes the program's own root function scope and
// marks it as the global program scope (§4.5 "Program body" step (1)):
// top-level `var`/`function` bindings declared directly in this frame
// resolve as Global (atom-based GET_VAR/PUT_VAR) instead of taking a local
// slot, matching §8 scenario 1 (`var a = 1;` → `PUT_VAR a`).
func (c *Core) EnterGlobalFunction() {
	c.EnterFunction()
	c.fn.isGlobal = true
}

// RegisterGlobal records name in the non-deletable global set.
func (c *Core) RegisterGlobal(name string) {
	c.globals[name] = true
}

// IsNonDeletableGlobal reports whether name was registered by
// RegisterGlobal (§4.2 "Unary", `delete` on a known non-deletable global).
func (c *Core) IsNonDeletableGlobal(name string) bool {
	return c.globals[name]
}

// ExitFunction pops the current function scope, returning the high-water
// mark of local slots it used (BytecodeUnit.MaxLocals), the ordered
// capture list (BytecodeUnit.Captures), and every Local binding declared
// in the function (BytecodeUnit.Locals debug table) — bindings later
// promoted to Cell are included too, since a VM that wants to show a cell
// variable's name still needs this table.
func (c *Core) ExitFunction() (maxLocals int, captures []Capture, declared []*Binding) {
	fn := c.fn
	c.fn = fn.parent
	return int(fn.maxSlot), fn.captures, fn.declared
}

// DeclareParameter declares name as a parameter binding at the function's
// root block, in left-to-right parameter order (§4.6 "Parameter
// binding").
func (c *Core) DeclareParameter(name string, pos token.Pos) *Binding {
	b := c.DeclareHoisted(name, DeclParam, pos)
	return b
}

// EnterBlock pushes a new lexical block nested in the current function's
// block chain (§4.1 "Block scope"): `{ }`, a for-head, a catch clause.
func (c *Core) EnterBlock() {
	c.fn.top = newBlock(c.fn.top)
}

// ExitBlock pops the current block, running disposal-stack bookkeeping is
// left to the caller (compiler emits CLOSE_LOC / disposal calls before
// calling ExitBlock, per §4.5 "using declarations").
func (c *Core) ExitBlock() {
	c.fn.top = c.fn.top.parent
}

// Declare introduces name as a new binding of kind in the current block.
// ok is false if name is already declared in this exact block in a way
// that conflicts (caller decides whether that is a compile error, since
// var/function redeclaration rules differ from let/const).
func (c *Core) Declare(name string, kind DeclKind, pos token.Pos) (*Binding, bool) {
	blk := c.fn.top
	if existing, found := blk.names.Get(name); found {
		return existing, false
	}
	b := &Binding{Name: name, Kind: kind, Class: Local, Pos: pos, Slot: c.allocSlot()}
	blk.names.Put(name, b)
	c.fn.declared = append(c.fn.declared, b)
	// A top-level (root-block) declaration in the global program scope is
	// always registered as non-deletable, even though let/const/class
	// bindings stay Local/TDZ rather than becoming a Global atom access
	// (§4.3 (i), §4.5 step (1)).
	if c.fn.isGlobal && blk.parent == nil {
		c.globals[name] = true
	}
	return b, true
}

// DeclareHoisted declares name in the function's outermost block (the
// function body), used for var and Annex-B.3.3 function-declaration
// hoisting (§4.3 "Analysis Pass") where the binding must be visible for
// the whole function regardless of which nested block textually contains
// the declaration.
func (c *Core) DeclareHoisted(name string, kind DeclKind, pos token.Pos) *Binding {
	root := c.fn.top
	for root.parent != nil {
		root = root.parent
	}
	if existing, ok := root.names.Get(name); ok {
		return existing
	}
	var b *Binding
	if c.fn.isGlobal {
		// Top-level var/function in the global program: a non-deletable
		// global, accessed by atom through GET_VAR/PUT_VAR, not a local slot
		// (§4.5 "Program body" steps (1)-(5), §8 scenarios 1 and 3).
		b = &Binding{Name: name, Kind: kind, Class: Global, Pos: pos}
		c.globals[name] = true
	} else {
		b = &Binding{Name: name, Kind: kind, Class: Local, Pos: pos, Slot: c.allocSlot()}
		c.fn.declared = append(c.fn.declared, b)
	}
	root.names.Put(name, b)
	return b
}

// DeclareTemp introduces an always-Local, non-global compiler-internal
// temporary binding in the current block, bypassing the root-block
// non-deletable-global registration Declare applies in the global program
// scope — used for synthetic slots like the program-body completion-value
// temporary (§4.5 "Program body" step (10)), which must never appear in
// the non-deletable global set even though it is declared directly in the
// global program's root block.
func (c *Core) DeclareTemp(name string) *Binding {
	b := &Binding{Name: name, Kind: DeclConst, Class: Local, Slot: c.allocSlot()}
	c.fn.declared = append(c.fn.declared, b)
	return b
}

func (c *Core) allocSlot() uint16 {
	s := c.fn.nextSlot
	c.fn.nextSlot++
	if c.fn.nextSlot > c.fn.maxSlot {
		c.fn.maxSlot = c.fn.nextSlot
	}
	return s
}

// EnsureDisposalStack lazily declares the current block's disposal-stack
// local the first time a using/await-using declaration in this block needs
// one, per §3 Scope's data model (one disposal-stack slot per block, not
// one per binding). created is true the first time this is called for the
// block. mismatch is true if the block already opened a disposal stack of
// the other sync/async flavor — §4.5 "using declarations" makes mixing
// sync and async using in one scope a compile error, which the caller
// (compiler) turns into a diagnostic.
func (c *Core) EnsureDisposalStack(isAsync bool) (b *Binding, created bool, mismatch bool) {
	blk := c.fn.top
	if blk.disposalStack != nil {
		if blk.disposalAsync != isAsync {
			return blk.disposalStack, false, true
		}
		return blk.disposalStack, false, false
	}
	name := "%using"
	if isAsync {
		name = "%usingAsync"
	}
	blk.disposalStack = &Binding{Name: name, Kind: DeclConst, Class: Local, Slot: c.allocSlot()}
	blk.disposalAsync = isAsync
	c.fn.declared = append(c.fn.declared, blk.disposalStack)
	c.fn.disposalStacks = append(c.fn.disposalStacks, DisposalStack{Binding: blk.disposalStack, Async: isAsync})
	return blk.disposalStack, true, false
}

// DisposalStack returns the current block's disposal-stack binding, if one
// has been opened by EnsureDisposalStack, and whether it is the async form.
func (c *Core) DisposalStack() (*Binding, bool) {
	blk := c.fn.top
	if blk.disposalStack == nil {
		return nil, false
	}
	return blk.disposalStack, blk.disposalAsync
}

// DisposalDepth returns the number of block-level disposal stacks opened
// so far anywhere in the current function, across every open block. A
// loop/switch/labeled frame records this as its watermark at entry, so a
// later break/continue aimed at that frame knows exactly which disposal
// stacks were opened inside it (§3 invariant 4, §4.5 "using declarations").
func (c *Core) DisposalDepth() int {
	return len(c.fn.disposalStacks)
}

// DisposalsSince returns the disposal stacks opened after depth, in the
// order their blocks were entered (reverse this slice to get LIFO disposal
// order). Used by an abrupt-completion site (break, continue, return,
// throw) to unwind every disposal stack it passes on its way out,
// regardless of how many nested blocks it crosses in one jump (§3
// invariant 4).
func (c *Core) DisposalsSince(depth int) []DisposalStack {
	return c.fn.disposalStacks[depth:]
}

// Lookup searches the current function's block chain, then (via Promote)
// enclosing functions, returning the Binding to use at this reference site
// and its resolved Class. A nil Binding means the name is unresolved in
// any enclosing function scope and must be compiled as a Global access.
func (c *Core) Lookup(name string) (*Binding, Class) {
	for b := c.fn.top; b != nil; b = b.parent {
		if bd, ok := b.names.Get(name); ok {
			return bd, bd.Class
		}
	}
	if bd, ok := c.fn.freeByName.Get(name); ok {
		return bd, Free
	}
	if c.fn.parent == nil {
		return nil, Global
	}
	return c.promote(c.fn, name)
}
