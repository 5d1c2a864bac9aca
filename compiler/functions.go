package compiler

import (
	"github.com/lucorth/esbc/ast"
	"github.com/lucorth/esbc/bytecode"
	"github.com/lucorth/esbc/scope"
)

// lowerFuncExpr compiles a function expression into a nested BytecodeUnit
// and emits the FCLOSURE that instantiates it at this point in the
// enclosing function's code (§4.6 "Function expression").
func (c *Compiler) lowerFuncExpr(e *ast.FuncExpr) {
	unit := c.compileFunctionUnit(&e.FuncCommon, e.Name, e.Kind)
	c.fn.em.EmitConst(bytecode.OpFClosure, bytecode.Const{Kind: bytecode.ConstFunction, Func: unit})
}

// lowerArrowFuncExpr compiles an arrow function. Arrows never bind their
// own `this`/`arguments`/`new.target`/`super` — those resolve lexically
// through the enclosing function's captures, which falls out for free
// here since an arrow's fcomp.hasThis is false and its body simply never
// emits PUSH_THIS/GET_SUPER itself; if its body *references* an outer
// `this` it does so via a normal free-variable-style lookup the VM
// resolves against the enclosing frame (§4.6 "Arrow function").
func (c *Compiler) lowerArrowFuncExpr(e *ast.ArrowFuncExpr) {
	unit := c.compileFunctionUnit(&e.FuncCommon, nil, ast.FuncArrow)
	c.fn.em.EmitConst(bytecode.OpFClosure, bytecode.Const{Kind: bytecode.ConstFunction, Func: unit})
}

// lowerMethodValue compiles the function-shaped value of an object literal
// or class method/getter/setter into a BytecodeUnit and pushes it, ready
// for DEFINE_METHOD/DEFINE_METHOD_COMPUTED/INIT_CTOR to consume (§4.6
// "Method definitions").
func (c *Compiler) lowerMethodValue(value ast.Expr) {
	switch v := value.(type) {
	case *ast.FuncExpr:
		c.lowerFuncExpr(v)
	case *ast.ArrowFuncExpr:
		c.lowerArrowFuncExpr(v)
	default:
		diagInternal("lowerMethodValue: unhandled method value %T", value)
	}
}

// compileFunctionUnit is the common work sequence for every function-
// shaped node: FuncDecl, FuncExpr, ArrowFuncExpr, and class
// methods/getters/setters/constructors (§4.6 "Function lowering work
// sequence"). name is used both for the resulting unit's debug name and,
// for a non-arrow named FuncExpr, as a self-reference binding visible only
// inside the body (Annex-B-free — this is the ordinary named-function-
// expression self-binding, §4.6 "Self-capture").
func (c *Compiler) compileFunctionUnit(fc *ast.FuncCommon, name *ast.Identifier, kind ast.FuncKind) *bytecode.BytecodeUnit {
	hasThis := kind != ast.FuncArrow
	c.enterFunction(kind, fc.Async, fc.Generator, fc.Strict, hasThis)
	defer c.leaveFunction()

	if kind != ast.FuncArrow && name != nil {
		self, _ := c.core.Declare(name.Name, scope.DeclFuncSelf, name.Start)
		c.fn.selfCaptureSlot = int(self.Slot)
	}

	c.bindParameters(fc.Params)

	if fc.Body != nil {
		c.lowerBody(fc.Body)
		c.emitImplicitReturn()
	} else {
		// concise arrow body: `x => expr`
		c.lowerExpr(fc.Expr)
		c.fn.em.Emit0(bytecode.OpReturn)
	}

	unitName := ""
	if name != nil {
		unitName = name.Name
	}
	return c.buildUnit(unitName)
}

// bindParameters declares every parameter binding in left-to-right order
// and emits the prologue that copies GET_ARG values into their declared
// slots, lowering default-value and destructuring parameters the same way
// a `let` declaration with an initializer would be (§4.6 "Parameter
// binding", §4.7 "Pattern Lowering").
func (c *Compiler) bindParameters(params []ast.Pattern) {
	em := c.fn.em
	argIndex := 0
	for _, p := range params {
		if rest, ok := p.(*ast.RestElement); ok {
			for _, n := range patternBindingNames(rest.Target) {
				c.core.DeclareParameter(n, 0)
			}
			em.Emit16(bytecode.OpRest, uint16(argIndex))
			c.assignToPattern(rest.Target)
			continue
		}

		for _, n := range patternBindingNames(p) {
			c.core.DeclareParameter(n, 0)
		}
		em.Emit16(bytecode.OpGetArg, uint16(argIndex))
		c.assignToPattern(p)
		argIndex++
	}
	c.fn.numArgs = argIndex
}

// emitHoistedFunctions materializes every Annex-B.3.3/top-level function
// declaration's closure value into its hoisted slot before the rest of the
// body runs, so that a call textually preceding its own `function` keyword
// still works (§4.3 "Analysis Pass runs before lowering begins", §4.6
// "Function declarations are fully hoisted, including their value").
func (c *Compiler) emitHoistedFunctions(body []ast.Stmt) {
	for _, s := range body {
		decl, ok := s.(*ast.FuncDecl)
		if !ok {
			continue
		}
		unit := c.compileFunctionUnit(&decl.FuncCommon, decl.Name, decl.Kind)
		c.fn.em.EmitConst(bytecode.OpFClosure, bytecode.Const{Kind: bytecode.ConstFunction, Func: unit})
		c.storeIdent(decl.Name.Name)
	}
}
