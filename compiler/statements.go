package compiler

import (
	"github.com/lucorth/esbc/analysis"
	"github.com/lucorth/esbc/ast"
	"github.com/lucorth/esbc/bytecode"
	"github.com/lucorth/esbc/diag"
	"github.com/lucorth/esbc/scope"
)

// predeclare runs the Analysis Pass over a function/program body and
// installs every hoisted name as a function-root `var` binding before any
// statement is lowered (§4.3 "Analysis Pass runs before lowering begins").
func (c *Compiler) predeclare(body []ast.Stmt) {
	result := analysis.Run(body)
	for _, name := range result.Vars {
		c.core.DeclareHoisted(name, scope.DeclVar, 0)
	}
	for _, name := range result.AnnexBNames {
		c.core.DeclareHoisted(name, scope.DeclVar, 0)
	}
	// Pre-declare every top-level let/const/class name as a TDZ local,
	// marking its slot uninitialized immediately, before phase-1 function
	// hoisting runs (§4.3 step (9), §4.5 step (2)): a top-level class in
	// particular must already be in the TDZ set here so a forward reference
	// throws instead of silently resolving as a global.
	for _, name := range result.LexicalNames {
		b, created := c.core.Declare(name, scope.DeclLet, 0)
		if created {
			c.fn.em.Emit16(bytecode.OpSetLocUninitialized, b.Slot)
		}
	}
}

// lowerBody lowers a statement list that is itself a function/program
// body: it runs the Analysis Pass first, then lowers each statement in
// source order.
func (c *Compiler) lowerBody(body []ast.Stmt) {
	c.predeclare(body)
	c.lowerStmts(body)
}

// lowerStmts lowers a statement list, first materializing every function
// declaration directly in this list (block-level hoisting: a nested
// function declaration's closure value becomes visible as soon as this
// block/body begins executing, §4.6 "Function declarations are fully
// hoisted, including their value"), then lowering each statement in
// source order.
func (c *Compiler) lowerStmts(stmts []ast.Stmt) {
	c.emitHoistedFunctions(stmts)
	for _, s := range stmts {
		c.lowerStmt(s)
	}
}

func (c *Compiler) lowerStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		c.lowerExpr(s.Expr)
		c.fn.em.Emit0(bytecode.OpDrop)
	case *ast.EmptyStmt:
		// no code
	case *ast.VarDeclStmt:
		c.lowerVarDecl(s)
	case *ast.FuncDecl:
		// the function value itself was already materialized by the
		// Annex-B/var hoisting prologue (functions.go emitHoistedFunctions);
		// a FuncDecl reached during ordinary lowering is a no-op statement.
	case *ast.ClassDecl:
		c.lowerClassDecl(s)
	case *ast.BlockStmt:
		c.core.EnterBlock()
		c.lowerStmts(s.Body)
		c.closeDisposals()
		c.core.ExitBlock()
	case *ast.IfStmt:
		c.lowerIf(s)
	case *ast.WhileStmt:
		c.lowerWhile(s)
	case *ast.DoWhileStmt:
		c.lowerDoWhile(s)
	case *ast.ForStmt:
		c.lowerFor(s)
	case *ast.ForInStmt:
		c.lowerForIn(s)
	case *ast.ForOfStmt:
		c.lowerForOf(s)
	case *ast.TryStmt:
		c.lowerTry(s)
	case *ast.SwitchStmt:
		c.lowerSwitch(s)
	case *ast.ThrowStmt:
		c.lowerExpr(s.Expr)
		c.closeDisposalsSince(0)
		c.closeActiveIterators()
		c.fn.em.Emit0(bytecode.OpThrow)
	case *ast.ReturnStmt:
		c.lowerReturn(s)
	case *ast.BreakStmt:
		c.lowerBreak(s)
	case *ast.ContinueStmt:
		c.lowerContinue(s)
	case *ast.LabeledStmt:
		c.lowerLabeled(s)
	default:
		diagInternal("unhandled statement type %T", s)
	}
}

// closeDisposals emits the dispose call for the current block's
// using/await-using disposal stack, if one was ever created (§4.5 "using
// declarations are disposed in reverse order of declaration" — reverse
// order falls out for free here since DisposableStack.prototype.dispose
// itself unwinds its registered resources LIFO).
func (c *Compiler) closeDisposals() {
	stack, isAsync := c.core.DisposalStack()
	c.emitDisposalStackDispose(stack, isAsync)
}

// closeDisposalsSince emits the dispose call, most-recently-opened first,
// for every block-level disposal stack opened anywhere in the current
// function since depth — used by an abrupt exit (break, continue, return,
// throw) that jumps past one or more nested blocks' normal fallthrough, so
// §3 invariant 4 ("every using stack is disposed on every exit path") holds
// for non-local exits too, not just ordinary block/scope exit.
func (c *Compiler) closeDisposalsSince(depth int) {
	stacks := c.core.DisposalsSince(depth)
	for i := len(stacks) - 1; i >= 0; i-- {
		c.emitDisposalStackDispose(stacks[i].Binding, stacks[i].Async)
	}
}

// emitDisposalStackDispose calls .dispose() (or, for the await-using
// form, .disposeAsync() followed by AWAIT) on stack and drops its return
// value. A nil stack means the block never saw a using/await-using
// declaration, so there is nothing to dispose (§4.5 "using declarations").
func (c *Compiler) emitDisposalStackDispose(stack *scope.Binding, isAsync bool) {
	if stack == nil {
		return
	}
	em := c.fn.em
	method := "dispose"
	if isAsync {
		method = "disposeAsync"
	}
	em.Emit16(bytecode.OpGetLocal, stack.Slot)
	em.Emit0(bytecode.OpDup)
	em.EmitAtom(bytecode.OpGetField, method)
	em.Emit0(bytecode.OpSwap)
	em.Emit16(bytecode.OpCall, 0)
	if isAsync {
		em.Emit0(bytecode.OpAwait)
	}
	em.Emit0(bytecode.OpDrop)
}

// emitDisposalStackConstructor constructs the block's lazily-created
// DisposableStack/AsyncDisposableStack and stores it into stack's slot,
// the first time the block needs one (§4.5 "using declarations" — "require
// ... constructing a DisposableStack/AsyncDisposableStack").
func (c *Compiler) emitDisposalStackConstructor(stack *scope.Binding, isAsync bool) {
	name := "DisposableStack"
	if isAsync {
		name = "AsyncDisposableStack"
	}
	c.loadIdent(name)
	c.fn.em.Emit16(bytecode.OpCallConstructor, 0)
	c.fn.em.Emit16(bytecode.OpPutLocal, stack.Slot)
}

// emitDisposalUseCall evaluates init (or UNDEFINED, for a missing
// initializer that already raised a diagnostic) and registers it on stack
// by calling its .use() method, following the method-call stack
// convention lowerCall establishes: push the receiver, DUP, GET_FIELD the
// method (consuming the dup), SWAP to get (method, receiver), then the
// argument, then CALL. .use() returns its argument unchanged, which is
// what ends up bound to the declared name.
func (c *Compiler) emitDisposalUseCall(stack *scope.Binding, init ast.Expr) {
	em := c.fn.em
	em.Emit16(bytecode.OpGetLocal, stack.Slot)
	em.Emit0(bytecode.OpDup)
	em.EmitAtom(bytecode.OpGetField, "use")
	em.Emit0(bytecode.OpSwap)
	if init != nil {
		c.lowerExpr(init)
	} else {
		em.Emit0(bytecode.OpUndefined)
	}
	em.Emit16(bytecode.OpCall, 1)
}

func (c *Compiler) lowerVarDecl(s *ast.VarDeclStmt) {
	for _, d := range s.Decls {
		switch s.Kind {
		case ast.DeclVar:
			if d.Init == nil {
				continue // hoisted binding already exists, initialized to undefined by the VM
			}
			c.lowerExpr(d.Init)
			c.assignToPattern(d.Target)
		default:
			c.declareLexicalTarget(d.Target, s.Kind, d.Init)
		}
	}
}

// declareLexicalTarget declares every name in target as a new Local
// binding of kind (let/const/using/await-using), then — if an initializer
// is present, or the declaration form requires one (const, using) —
// evaluates it and assigns into the freshly declared slots, transitioning
// them out of the temporal dead zone (§4.1 "Temporal dead zone"). const,
// using and await-using all require an initializer (§4.5 "Variable
// declaration"); using/await-using additionally registers the value on
// the block's disposal stack instead of a plain assignment.
func (c *Compiler) declareLexicalTarget(target ast.Pattern, kind ast.DeclKind, init ast.Expr) {
	scopeKind := lexicalDeclKind(kind)
	if scopeKind == scope.DeclUsing || scopeKind == scope.DeclAwaitUsing {
		c.declareUsingTarget(target, scopeKind, init)
		return
	}
	if init == nil && kind == ast.DeclConst {
		pos, _ := target.Span()
		c.errorf(pos, diag.Compile, "missing initializer in const declaration")
	}
	for _, name := range patternBindingNames(target) {
		c.core.Declare(name, scopeKind, 0)
	}
	if init != nil {
		c.lowerExpr(init)
	} else {
		c.fn.em.Emit0(bytecode.OpUndefined)
	}
	c.assignToPattern(target)
}

// declareUsingTarget lowers a `using`/`await using` declaration (§4.5
// "Variable declaration"): the block's DisposableStack/AsyncDisposableStack
// local is constructed the first time this block needs one, then the
// initializer's value is registered by calling the stack's .use() method,
// whose return value is what the declared name is bound to. Mixing sync
// and async using in the same block is a compile error (§4.5, §9 resolved
// Open Question).
func (c *Compiler) declareUsingTarget(target ast.Pattern, kind scope.DeclKind, init ast.Expr) {
	pos, _ := target.Span()
	if init == nil {
		c.errorf(pos, diag.Compile, "missing initializer in using declaration")
	}
	isAsync := kind == scope.DeclAwaitUsing
	stack, created, mismatch := c.core.EnsureDisposalStack(isAsync)
	if mismatch {
		c.errorf(pos, diag.Compile, "cannot mix using and await using declarations in the same scope")
	}
	if created {
		c.emitDisposalStackConstructor(stack, isAsync)
	}
	for _, name := range patternBindingNames(target) {
		c.core.Declare(name, kind, 0)
	}
	c.emitDisposalUseCall(stack, init)
	c.assignToPattern(target)
}

func lexicalDeclKind(k ast.DeclKind) scope.DeclKind {
	switch k {
	case ast.DeclLet:
		return scope.DeclLet
	case ast.DeclConst:
		return scope.DeclConst
	case ast.DeclUsing:
		return scope.DeclUsing
	case ast.DeclAwaitUsing:
		return scope.DeclAwaitUsing
	default:
		return scope.DeclLet
	}
}

func (c *Compiler) lowerIf(s *ast.IfStmt) {
	em := c.fn.em
	c.lowerExpr(s.Test)
	elseJump := em.EmitJump(bytecode.OpIfFalse)
	c.lowerStmt(s.Cons)
	if s.Alt != nil {
		endJump := em.EmitJump(bytecode.OpGoto)
		em.PatchJumpHere(elseJump)
		c.lowerStmt(s.Alt)
		em.PatchJumpHere(endJump)
	} else {
		em.PatchJumpHere(elseJump)
	}
}

func (c *Compiler) lowerWhile(s *ast.WhileStmt) {
	em := c.fn.em
	frame := c.core.PushLoop(s.Label, c.core.DisposalDepth())
	head := em.Offset()
	c.lowerExpr(s.Test)
	exitJump := em.EmitJump(bytecode.OpIfFalse)
	c.lowerStmt(s.Body)
	continueTarget := em.Offset()
	backJump := em.EmitJump(bytecode.OpGoto)
	em.PatchJump(backJump, head)
	em.PatchJumpHere(exitJump)
	c.patchLoopFrame(frame, continueTarget)
	c.core.PopLoop(frame)
}

func (c *Compiler) lowerDoWhile(s *ast.DoWhileStmt) {
	em := c.fn.em
	frame := c.core.PushLoop(s.Label, c.core.DisposalDepth())
	head := em.Offset()
	c.lowerStmt(s.Body)
	continueTarget := em.Offset()
	c.lowerExpr(s.Test)
	loopJump := em.EmitJump(bytecode.OpIfTrue)
	em.PatchJump(loopJump, head)
	c.patchLoopFrame(frame, continueTarget)
	c.core.PopLoop(frame)
}

func (c *Compiler) lowerFor(s *ast.ForStmt) {
	em := c.fn.em
	c.core.EnterBlock()
	switch init := s.Init.(type) {
	case *ast.VarDeclStmt:
		c.lowerVarDecl(init)
	case ast.Expr:
		c.lowerExpr(init)
		em.Emit0(bytecode.OpDrop)
	}
	loopSlots := c.loopBindingSlots(s.Init)

	frame := c.core.PushLoop(s.Label, c.core.DisposalDepth())
	head := em.Offset()
	var exitJump int
	hasExit := s.Cond != nil
	if hasExit {
		c.lowerExpr(s.Cond)
		exitJump = em.EmitJump(bytecode.OpIfFalse)
	}
	c.lowerStmt(s.Body)
	// Freshen each let/const loop-binding's cell right after the body and
	// before Post/the continue target, so a closure created in one
	// iteration's body never aliases the next iteration's value (§4.5
	// "While/For", §8 Boundary property #2). Placed before continueTarget so
	// `continue` still runs it (and Post) on its way to the next iteration.
	c.closeLoopBindingSlots(loopSlots)
	continueTarget := em.Offset()
	if s.Post != nil {
		c.lowerExpr(s.Post)
		em.Emit0(bytecode.OpDrop)
	}
	backJump := em.EmitJump(bytecode.OpGoto)
	em.PatchJump(backJump, head)
	if hasExit {
		em.PatchJumpHere(exitJump)
	}
	c.patchLoopFrame(frame, continueTarget)
	c.core.PopLoop(frame)
	c.closeDisposals()
	c.core.ExitBlock()
}

// loopBindingSlots returns the local slots of every let/const name bound
// by a for-head declaration — the ones that need CLOSE_LOC each iteration
// when captured by a closure created in the loop body. var-bound names
// are excluded: they are function-scoped and shared across iterations by
// design, not per-iteration bindings (§4.5 "While/For").
func (c *Compiler) loopBindingSlots(init ast.Node) []uint16 {
	decl, ok := init.(*ast.VarDeclStmt)
	if !ok || decl.Kind == ast.DeclVar {
		return nil
	}
	var slots []uint16
	for _, d := range decl.Decls {
		for _, name := range patternBindingNames(d.Target) {
			if b, class := c.core.Lookup(name); class == scope.Local {
				slots = append(slots, b.Slot)
			}
		}
	}
	return slots
}

func (c *Compiler) closeLoopBindingSlots(slots []uint16) {
	for _, slot := range slots {
		c.fn.em.Emit16(bytecode.OpCloseLoc, slot)
	}
}

// lowerForIn lowers `for (lhs in rhs) body` using the FOR_IN_* opcode
// family (§6.1). A destructuring pattern or computed member LHS is a
// compile error here per the resolved Open Question (§9): for-in only
// ever targets a single identifier or a simple, non-computed assignment
// target.
func (c *Compiler) lowerForIn(s *ast.ForInStmt) {
	switch s.Target.(type) {
	case *ast.ArrayPattern, *ast.ObjectPattern, *ast.ArrayExpr, *ast.ObjectExpr:
		c.errorf(s.Start, diag.Compile, "destructuring pattern is not a valid for-in left-hand side")
		return
	}
	if !s.HasDecl {
		if m, ok := s.Target.(*ast.MemberExpr); ok && m.Computed {
			c.errorf(m.Start, diag.Compile, "computed member expression is not a valid for-in left-hand side")
			return
		}
	}
	c.lowerForEach(s.Right, s.Target, s.HasDecl, s.Decl, s.Body, s.Label, false, bytecode.OpForInStart, bytecode.OpForInNext, bytecode.OpForInEnd)
}

func (c *Compiler) lowerForOf(s *ast.ForOfStmt) {
	startOp, nextOp := bytecode.OpForOfStart, bytecode.OpForOfNext
	if s.Await {
		startOp, nextOp = bytecode.OpForAwaitOfStart, bytecode.OpForAwaitOfNext
	}
	c.lowerForEach(s.Right, s.Target, s.HasDecl, s.Decl, s.Body, s.Label, s.Await, startOp, nextOp, bytecode.OpForInEnd)
}

func (c *Compiler) lowerForEach(right ast.Expr, target ast.Pattern, hasDecl bool, declKind ast.DeclKind, body ast.Stmt, label string, isAwait bool, startOp, nextOp, endOp bytecode.Opcode) {
	em := c.fn.em
	c.lowerExpr(right)
	em.Emit0(startOp)

	frame := c.core.PushLoop(label, c.core.DisposalDepth())
	frame.HasIterator = startOp == bytecode.OpForOfStart || startOp == bytecode.OpForAwaitOfStart
	head := em.Offset()
	em.Emit0(nextOp)
	exitJump := em.EmitJump(bytecode.OpIfTrue) // NEXT pushes (value, done); IF_TRUE consumes done

	c.core.EnterBlock()
	if hasDecl {
		for _, name := range patternBindingNames(target) {
			c.core.Declare(name, lexicalDeclKind(declKind), 0)
		}
	}
	c.assignToPattern(target)
	c.lowerStmt(body)
	c.closeDisposals()
	c.core.ExitBlock()

	continueTarget := em.Offset()
	backJump := em.EmitJump(bytecode.OpGoto)
	em.PatchJump(backJump, head)
	em.PatchJumpHere(exitJump)
	em.Emit0(endOp)
	// Abrupt exits (break, or a return/throw/outer-break/outer-continue
	// reached from inside the body) already emitted their own
	// ITERATOR_CLOSE at the point of departure (lowerBreak/lowerContinue/
	// closeActiveIterators, §3 invariant 5); this fall-through path is the
	// only one that reaches here via normal loop exhaustion, which the VM's
	// NEXT opcode has already fully drained, so no further close is needed.
	c.patchLoopFrame(frame, continueTarget)
	c.core.PopLoop(frame)
}

func (c *Compiler) patchLoopFrame(frame *scope.LoopFrame, continueTarget int) {
	em := c.fn.em
	exit := em.Offset()
	for _, pc := range frame.Breaks() {
		em.PatchJump(pc, exit)
	}
	for _, pc := range frame.Continues() {
		em.PatchJump(pc, continueTarget)
	}
}

func (c *Compiler) lowerTry(s *ast.TryStmt) {
	c.lowerTryImpl(s, false)
}

// lowerTryValue lowers s exactly like lowerTry, except it arranges for
// whichever branch actually completes (the try block, or the handler if an
// exception was thrown and caught) to leave its completion value on the
// stack instead of dropping it — used when s is the effective-last
// statement of a program/function body (§4.5 "Program body" step (8)).
func (c *Compiler) lowerTryValue(s *ast.TryStmt) {
	c.lowerTryImpl(s, true)
}

func (c *Compiler) lowerTryImpl(s *ast.TryStmt, isLast bool) {
	em := c.fn.em
	catchJump := em.EmitJump(bytecode.OpCatch)

	c.core.EnterBlock()
	var produced bool
	if isLast {
		produced = c.lowerStmtListValue(s.Block.Body)
	} else {
		c.lowerStmts(s.Block.Body)
	}
	c.closeDisposals()
	c.core.ExitBlock()
	if isLast && !produced {
		em.Emit0(bytecode.OpUndefined)
	}
	noExceptionJump := em.EmitJump(bytecode.OpGoto)

	em.PatchJumpHere(catchJump)
	if s.Handler != nil {
		c.core.EnterBlock()
		if s.Handler.Param != nil {
			for _, name := range patternBindingNames(s.Handler.Param) {
				c.core.Declare(name, scope.DeclLet, 0)
			}
			c.assignToPattern(s.Handler.Param)
		} else {
			em.Emit0(bytecode.OpDrop) // discard the thrown value, catch {} binds nothing
		}
		var handlerProduced bool
		if isLast {
			handlerProduced = c.lowerStmtListValue(s.Handler.Body.Body)
		} else {
			c.lowerStmts(s.Handler.Body.Body)
		}
		c.closeDisposals()
		c.core.ExitBlock()
		if isLast && !handlerProduced {
			em.Emit0(bytecode.OpUndefined)
		}
	} else {
		// no handler: run the finalizer on this exception path too, then
		// rethrow the exception still on the stack
		if s.Finalizer != nil {
			c.lowerStmt(s.Finalizer)
		}
		em.Emit0(bytecode.OpThrow)
	}

	em.PatchJumpHere(noExceptionJump)
	if s.Finalizer != nil {
		// §9 resolved Open Question: a finally block's own completion
		// (return/break/continue/throw) always overrides whatever the try or
		// catch block was about to complete with; ordinary fallthrough lowering
		// of the finalizer body achieves this for free since any such
		// statement simply emits its own RETURN/THROW/jump, superseding
		// whatever control flow was already in progress. A normally-completing
		// finalizer's own statements push and pop in balance, so a value left
		// by the try/catch branch above survives underneath it untouched.
		c.lowerStmt(s.Finalizer)
	}
}

// lowerStmtListValue lowers stmts exactly like lowerStmts, except the
// effective-last statement — the last one that isn't a FunctionDeclaration,
// which contributes no completion value — has its value preserved instead
// of discarded when it is itself an ExpressionStatement or TryStatement
// (§4.5 "Program body" steps (7)-(8)). Returns whether a value was left on
// the stack.
func (c *Compiler) lowerStmtListValue(stmts []ast.Stmt) bool {
	c.emitHoistedFunctions(stmts)

	effectiveLast := -1
	for i, s := range stmts {
		if _, ok := s.(*ast.FuncDecl); ok {
			continue
		}
		effectiveLast = i
	}

	produced := false
	for i, s := range stmts {
		if i == effectiveLast {
			switch s := s.(type) {
			case *ast.ExprStmt:
				c.lowerExpr(s.Expr)
				produced = true
				continue
			case *ast.TryStmt:
				c.lowerTryValue(s)
				produced = true
				continue
			}
		}
		c.lowerStmt(s)
	}
	return produced
}

func (c *Compiler) lowerSwitch(s *ast.SwitchStmt) {
	em := c.fn.em
	c.lowerExpr(s.Discriminant)
	c.core.EnterBlock()
	frame := c.core.PushSwitch(s.Label, c.core.DisposalDepth())

	var caseJumps []int
	defaultIdx := -1
	for i, cs := range s.Cases {
		if cs.Test == nil {
			defaultIdx = i
			continue
		}
		em.Emit0(bytecode.OpDup)
		c.lowerExpr(cs.Test)
		em.Emit0(bytecode.OpStrictEq)
		caseJumps = append(caseJumps, em.EmitJump(bytecode.OpIfTrue))
	}
	var defaultJump int
	if defaultIdx >= 0 {
		defaultJump = em.EmitJump(bytecode.OpGoto)
	} else {
		defaultJump = em.EmitJump(bytecode.OpGoto) // falls straight through to end when no default
	}
	em.Emit0(bytecode.OpDrop) // unreachable after the unconditional jump above, kept only for stack-depth symmetry tooling

	ji := 0
	for i, cs := range s.Cases {
		if cs.Test == nil {
			em.PatchJumpHere(defaultJump)
		} else {
			em.PatchJumpHere(caseJumps[ji])
			ji++
		}
		em.Emit0(bytecode.OpDrop)
		c.lowerStmts(cs.Body)
		_ = i
	}
	if defaultIdx < 0 {
		em.PatchJumpHere(defaultJump)
	}

	c.patchLoopFrame(frame, em.Offset())
	c.core.PopLoop(frame)
	c.closeDisposals()
	c.core.ExitBlock()
}

// closeActiveIterators emits ITERATOR_CLOSE for every currently open
// for-of/for-await-of frame in source-to-outermost order, so a return or
// throw reached from inside nested loops closes every iterator it abruptly
// passes through before leaving the function (§3 invariant 5, §4.5
// "Throw / Return").
func (c *Compiler) closeActiveIterators() {
	c.closeIteratorsAbove(nil, true)
}

// closeIteratorsAbove emits ITERATOR_CLOSE, innermost first, for every
// HasIterator frame strictly nested inside target (all of them if target is
// nil). includeTarget additionally closes target itself when it is a
// HasIterator frame: a break abandons the target loop's own iterator, but a
// continue of a for-of/for-await-of resumes the same iterator and must not
// close it (§3 invariant 5, §4.5 "Break / Continue").
func (c *Compiler) closeIteratorsAbove(target *scope.LoopFrame, includeTarget bool) {
	loops := c.core.ActiveLoops()
	for i := len(loops) - 1; i >= 0; i-- {
		f := loops[i]
		if f == target {
			if includeTarget && f.HasIterator {
				c.fn.em.Emit0(bytecode.OpIteratorClose)
			}
			return
		}
		if f.HasIterator {
			c.fn.em.Emit0(bytecode.OpIteratorClose)
		}
	}
}

func (c *Compiler) lowerReturn(s *ast.ReturnStmt) {
	em := c.fn.em
	if s.Expr != nil {
		c.lowerExpr(s.Expr)
	} else {
		em.Emit0(bytecode.OpUndefined)
	}
	c.closeDisposalsSince(0)
	c.closeActiveIterators()
	if c.fn.generator {
		em.Emit0(bytecode.OpReturn)
	} else if c.fn.async {
		em.Emit0(bytecode.OpReturnAsync)
	} else {
		em.Emit0(bytecode.OpReturn)
	}
}

func (c *Compiler) lowerBreak(s *ast.BreakStmt) {
	em := c.fn.em
	var frame *scope.LoopFrame
	if s.Label != "" {
		frame = c.core.FindLabel(s.Label)
	} else {
		frame = c.core.InnermostLoop()
	}
	if frame == nil {
		diagInternal("break with no enclosing loop/switch/label")
		return
	}
	c.closeDisposalsSince(frame.DisposalDepth)
	c.closeIteratorsAbove(frame, true)
	pc := em.EmitJump(bytecode.OpGoto)
	frame.AddBreak(pc)
}

func (c *Compiler) lowerContinue(s *ast.ContinueStmt) {
	em := c.fn.em
	var frame *scope.LoopFrame
	if s.Label != "" {
		frame = c.core.FindLabel(s.Label)
	} else {
		frame = c.core.InnermostLoop()
	}
	if frame == nil || frame.IsSwitch {
		diagInternal("continue with no enclosing loop")
		return
	}
	c.closeDisposalsSince(frame.DisposalDepth)
	c.closeIteratorsAbove(frame, false)
	pc := em.EmitJump(bytecode.OpGoto)
	frame.AddContinue(pc)
}

func (c *Compiler) lowerLabeled(s *ast.LabeledStmt) {
	if ast.IsLoop(s.Body) {
		// The parser sets a loop statement's own Label field to the
		// enclosing LabeledStmt's label; the loop's own lowering function
		// calls PushLoop(label, ...), so labeled continue already resolves
		// correctly. Lowering the body directly here avoids registering the
		// label twice.
		c.lowerStmt(s.Body)
		return
	}
	frame := c.core.PushLoop(s.Label, c.core.DisposalDepth())
	frame.IsSwitch = true // a labeled non-loop statement accepts only a labeled break, never continue
	c.lowerStmt(s.Body)
	c.patchLoopFrame(frame, c.fn.em.Offset())
	c.core.PopLoop(frame)
}
