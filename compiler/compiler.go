// Package compiler lowers a parsed AST (package ast) into QuickJS-style
// bytecode (package bytecode), per the single-pass architecture: Scope &
// Capture Core, Emitter, Analysis Pass, Expression/Statement/Function/
// Class/Pattern Lowering. The compiler owns none of those concerns
// itself — it orchestrates scope, emit, and analysis to walk the AST
// exactly once and drive each of them at the right moment.
package compiler

import (
	"github.com/lucorth/esbc/ast"
	"github.com/lucorth/esbc/bytecode"
	"github.com/lucorth/esbc/diag"
	"github.com/lucorth/esbc/emit"
	"github.com/lucorth/esbc/scope"
	"github.com/lucorth/esbc/token"
)

// Result is the output of a successful Compile: the top-level program
// unit.
type Result struct {
	Unit *bytecode.BytecodeUnit
}

// Compile lowers a parsed program body to a top-level BytecodeUnit,
// treating the program itself as an implicit function per §4.5 "Program
// body". filename is used only to annotate diagnostics.
func Compile(filename string, prog *ast.Program) (*Result, error) {
	c := &Compiler{
		errs: &diag.Errors{Filename: filename},
		core: scope.NewCore(),
	}
	unit := c.compileProgram(prog)
	if err := c.errs.Err(); err != nil {
		return nil, err
	}
	return &Result{Unit: unit}, nil
}

// fcomp is the per-function compiler state, pushed by enterFunction and
// popped by leaveFunction. It bundles the Emitter (instruction stream)
// together with the bits of function identity (async/generator/arrow/
// self-capture) that several lowering components need to consult.
type fcomp struct {
	parent *fcomp
	em     *emit.Emitter

	kind      ast.FuncKind
	async     bool
	generator bool
	strict    bool
	hasThis   bool // false for arrow functions, which inherit `this` lexically

	numArgs int

	// selfCaptureSlot is the var-ref slot a named function expression (or a
	// function declaration, for Annex-B style self-reference) uses to refer
	// to its own closure from within its body (§4.6 "Self-capture"). -1 when
	// the function has no usable self-binding.
	selfCaptureSlot int
}

// Compiler is the single driver shared by every lowering component. It is
// not safe for concurrent use; one Compiler lowers one program.
type Compiler struct {
	errs *diag.Errors
	core *scope.Core
	fn   *fcomp
}

// errorf records a compile-time diagnostic. Lowering continues afterward
// (best-effort) so a single pass can surface more than one error, matching
// the teacher's accumulate-then-report diagnostic style.
func (c *Compiler) errorf(pos token.Pos, kind diag.Kind, format string, args ...any) {
	c.errs.Add(pos, kind, format, args...)
}

func (c *Compiler) compileProgram(prog *ast.Program) *bytecode.BytecodeUnit {
	c.enterGlobalFunction(prog.HasUseStrict)
	defer c.leaveFunction()

	c.predeclare(prog.Body)
	produced := c.lowerStmtListValue(prog.Body)
	if !produced {
		c.fn.em.Emit0(bytecode.OpUndefined)
	}
	// §4.5 "Program body" step (10): store the completion value into a
	// fresh temporary, run the program scope's own using disposal, then
	// reload the temporary before returning — so a disposal call's own
	// push/call/drop sequence (run for its side effect only) can never
	// clobber the value the program is about to return (§8 scenario 1).
	result := c.core.DeclareTemp("$program_result")
	c.fn.em.Emit16(bytecode.OpPutLocal, result.Slot)
	c.closeDisposals()
	c.fn.em.Emit16(bytecode.OpGetLocal, result.Slot)
	c.fn.em.Emit0(bytecode.OpReturn)

	return c.buildUnit("")
}

// enterFunction pushes a new fcomp/Emitter/scope.Core function frame.
func (c *Compiler) enterFunction(kind ast.FuncKind, async, generator, strict, hasThis bool) {
	c.core.EnterFunction()
	c.fn = &fcomp{
		parent:          c.fn,
		em:              emit.New(),
		kind:            kind,
		async:           async,
		generator:       generator,
		strict:          strict,
		hasThis:         hasThis,
		selfCaptureSlot: -1,
	}
}

// enterGlobalFunction pushes the root fcomp/Emitter/scope.Core frame for
// the program itself, marking its scope as the global program scope
// (§4.5 "Program body" step (1)) so top-level var/function declarations
// resolve as non-deletable globals instead of local slots.
func (c *Compiler) enterGlobalFunction(strict bool) {
	c.core.EnterGlobalFunction()
	c.fn = &fcomp{
		parent:          c.fn,
		em:              emit.New(),
		kind:            ast.FuncNormal,
		strict:          strict,
		hasThis:         true,
		selfCaptureSlot: -1,
	}
}

func (c *Compiler) leaveFunction() {
	c.fn = c.fn.parent
}

// buildUnit finalizes the current function's Emitter into a
// BytecodeUnit, pulling slot/capture metadata from the scope Core. It
// must be called while the function is still the active one (before
// leaveFunction, after core state has been updated by lowering).
func (c *Compiler) buildUnit(name string) *bytecode.BytecodeUnit {
	maxLocals, captures, declared := c.core.ExitFunction()
	// ExitFunction pops the Core's function frame; re-push an equivalent
	// frame marker isn't needed since leaveFunction (called by the caller's
	// defer) only pops the fcomp/Emitter stack from here on.
	locals := make([]bytecode.Binding, len(declared))
	for i, b := range declared {
		locals[i] = bytecode.Binding{Name: b.Name, Slot: b.Slot, IsArg: b.Kind == scope.DeclParam}
	}
	bcCaptures := make([]bytecode.CaptureSource, len(captures))
	for i, capt := range captures {
		kind := bytecode.CaptureParentVarRef
		if capt.FromCell {
			kind = bytecode.CaptureParentLocal
		}
		bcCaptures[i] = bytecode.CaptureSource{Kind: kind, Index: capt.FromParent.Slot, Name: capt.Name}
	}

	var flags bytecode.Flags
	if c.fn.strict {
		flags |= bytecode.FlagStrict
	}
	if c.fn.async {
		flags |= bytecode.FlagAsync
	}
	if c.fn.generator {
		flags |= bytecode.FlagGenerator
	}
	if c.fn.kind == ast.FuncArrow {
		flags |= bytecode.FlagArrow
	}
	if c.fn.hasThis {
		flags |= bytecode.FlagHasThis
	}

	return c.fn.em.Build(name, c.fn.numArgs, maxLocals, locals, bcCaptures, flags, c.fn.selfCaptureSlot)
}

// emitImplicitReturn emits the fallthrough `return undefined` that every
// function body needs at its lexical end.
func (c *Compiler) emitImplicitReturn() {
	em := c.fn.em
	em.Emit0(bytecode.OpUndefined)
	if c.fn.async {
		em.Emit0(bytecode.OpReturnAsync)
	} else {
		em.Emit0(bytecode.OpReturn)
	}
}
