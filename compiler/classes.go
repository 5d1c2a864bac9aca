package compiler

import (
	"github.com/lucorth/esbc/ast"
	"github.com/lucorth/esbc/bytecode"
	"github.com/lucorth/esbc/scope"
)

// lowerClassDecl compiles `class Name extends Super { ... }` at statement
// position: the class's own name is a let-like binding, in TDZ until
// DEFINE_CLASS executes (§4.6 "Class declaration and expression").
func (c *Compiler) lowerClassDecl(s *ast.ClassDecl) {
	c.core.Declare(s.Name.Name, scope.DeclLet, s.Name.Start)
	c.lowerClassCommon(&s.ClassCommon, s.Name)
	c.storeIdent(s.Name.Name)
}

func (c *Compiler) lowerClassExpr(e *ast.ClassExpr) {
	c.lowerClassCommon(&e.ClassCommon, e.Name)
}

// lowerClassCommon emits the shared class-construction sequence: evaluate
// the superclass expression (or push UNDEFINED), push the constructor
// closure with FCLOSURE and turn it into the class with DEFINE_CLASS, then
// define every method, accessor, field and static block on the result in
// source order, and finally leave only the constructor on the stack
// (§4.6 "Class lowering work sequence").
func (c *Compiler) lowerClassCommon(cc *ast.ClassCommon, name *ast.Identifier) {
	em := c.fn.em

	if cc.SuperClass != nil {
		c.lowerExpr(cc.SuperClass)
	} else {
		em.Emit0(bytecode.OpUndefined)
	}

	ctor := findConstructor(cc.Body)
	ctorUnit := c.compileConstructorUnit(cc, ctor, cc.SuperClass != nil)
	em.EmitConst(bytecode.OpFClosure, bytecode.Const{Kind: bytecode.ConstFunction, Func: ctorUnit})

	className := ""
	if name != nil {
		className = name.Name
	}
	em.EmitAtom(bytecode.OpDefineClass, className)

	for _, el := range cc.Body {
		switch m := el.(type) {
		case *ast.MethodDef:
			if m == ctor {
				continue
			}
			c.lowerClassMethod(m)
		case *ast.FieldDef:
			c.lowerClassField(m)
		case *ast.StaticBlock:
			c.lowerStaticBlock(m)
		}
	}

	em.Emit0(bytecode.OpNip) // drop the prototype DEFINE_CLASS left just below the constructor, keeping the constructor
}

func findConstructor(body []ast.ClassElement) *ast.MethodDef {
	for _, el := range body {
		if m, ok := el.(*ast.MethodDef); ok && m.Kind == ast.FuncConstructor {
			return m
		}
	}
	return nil
}

// compileConstructorUnit compiles the class's constructor, synthesizing an
// empty one (default constructor) when the class body has none. A derived
// class's default constructor forwards all arguments to `super(...)`
// (§4.6 "Default constructors"). Instance field initializers run right
// after parameter binding, before the constructor's own statements — a
// documented simplification of the spec's "after super() returns" rule
// for derived classes, since splicing them in after an arbitrary explicit
// super() call site would require a second AST pass over the constructor
// body.
func (c *Compiler) compileConstructorUnit(cc *ast.ClassCommon, ctor *ast.MethodDef, derived bool) *bytecode.BytecodeUnit {
	instanceFields := instanceFieldsOf(cc.Body)

	if ctor != nil {
		hasThis := true
		c.enterFunction(ast.FuncConstructor, ctor.Fn.Async, ctor.Fn.Generator, ctor.Fn.Strict, hasThis)
		defer c.leaveFunction()
		c.bindParameters(ctor.Fn.Params)
		c.lowerInstanceFields(instanceFields)
		c.lowerBody(ctor.Fn.Body)
		c.emitImplicitReturn()
		unit := c.buildUnit("")
		unit.Flags |= derivedFlag(derived)
		return unit
	}

	c.enterFunction(ast.FuncConstructor, false, false, false, true)
	defer c.leaveFunction()
	if derived {
		em := c.fn.em
		em.Emit16(bytecode.OpRest, 0)
		em.Emit0(bytecode.OpArrayFrom)
		em.Emit0(bytecode.OpInitCtor)
		em.Emit0(bytecode.OpDrop)
	}
	c.lowerInstanceFields(instanceFields)
	c.emitImplicitReturn()
	unit := c.buildUnit("")
	unit.Flags |= derivedFlag(derived)
	return unit
}

func instanceFieldsOf(body []ast.ClassElement) []*ast.FieldDef {
	var out []*ast.FieldDef
	for _, el := range body {
		if f, ok := el.(*ast.FieldDef); ok && !f.Static {
			out = append(out, f)
		}
	}
	return out
}

// lowerInstanceFields emits PUSH_THIS + field-define for every instance
// field, run once per construction (§4.6 "Field initialization").
func (c *Compiler) lowerInstanceFields(fields []*ast.FieldDef) {
	em := c.fn.em
	for _, f := range fields {
		em.Emit0(bytecode.OpPushThis)
		if f.Value != nil {
			c.lowerExpr(f.Value)
		} else {
			em.Emit0(bytecode.OpUndefined)
		}
		if f.Key.Private != nil {
			em.EmitAtom(bytecode.OpDefinePrivateField, f.Key.Private.Name)
		} else if f.Key.Computed {
			c.lowerExpr(f.Key.Name)
			em.Emit0(bytecode.OpToPropKey)
			em.Emit0(bytecode.OpDefineProp)
		} else {
			em.EmitAtom(bytecode.OpDefineMethod, staticPropName(f.Key.Name))
		}
		em.Emit0(bytecode.OpDrop)
	}
}

func derivedFlag(derived bool) bytecode.Flags {
	if derived {
		return bytecode.FlagDerivedConstructor
	}
	return 0
}

// lowerClassMethod compiles a non-constructor method/getter/setter and
// attaches it to the class (instance prototype or the constructor itself
// for static members) via DEFINE_METHOD/DEFINE_METHOD_COMPUTED, or
// DEFINE_PRIVATE_FIELD for a private method (§4.6 "class elements").
func (c *Compiler) lowerClassMethod(m *ast.MethodDef) {
	em := c.fn.em
	target := bytecode.OpDup1 // prototype sits one below the constructor on the stack
	if m.Static {
		target = bytecode.OpDup // the constructor itself is on top
	}
	em.Emit0(target)

	unit := c.compileFunctionUnit(m.Fn, nil, m.Kind)
	em.EmitConst(bytecode.OpFClosure, bytecode.Const{Kind: bytecode.ConstFunction, Func: unit})

	var flag uint8
	switch m.Kind {
	case ast.FuncGetter:
		flag = bytecode.MethodGet
	case ast.FuncSetter:
		flag = bytecode.MethodSet
	default:
		flag = 0
	}

	if m.Key.Private != nil {
		em.EmitAtom(bytecode.OpDefinePrivateField, m.Key.Private.Name)
		em.Emit0(bytecode.OpDrop)
		return
	}
	// A getter/setter must go through DEFINE_METHOD_COMPUTED even with a
	// non-computed key: plain DEFINE_METHOD(atom) has no flags operand, so
	// routing an accessor through it would silently lose which of
	// get/set/plain-method it is (§4.6 "Emit class method definition").
	if m.Key.Computed || flag != 0 {
		if m.Key.Computed {
			c.lowerExpr(m.Key.Name)
			em.Emit0(bytecode.OpToPropKey)
		} else {
			em.EmitConst(bytecode.OpPushConst, bytecode.Const{Kind: bytecode.ConstString, Str: staticPropName(m.Key.Name)})
		}
		em.Emit8(bytecode.OpDefineMethodComputed, flag)
	} else {
		em.EmitAtom(bytecode.OpDefineMethod, staticPropName(m.Key.Name))
	}
	em.Emit0(bytecode.OpDrop) // DEFINE_METHOD targets the duplicated receiver, discard it
}

// lowerClassField compiles an instance or static field initializer.
// Static fields are emitted immediately at class-definition time.
// Instance fields run per-instance inside the constructor, right after
// parameter binding and before the constructor's own statements (see
// compileConstructorUnit), following the teacher's straight-line
// evaluation order (§4.6 "Field initialization").
func (c *Compiler) lowerClassField(f *ast.FieldDef) {
	em := c.fn.em
	if !f.Static {
		// instance fields are compiled as part of the constructor; this
		// top-level pass only handles statics, so skip.
		return
	}
	em.Emit0(bytecode.OpDup) // the constructor itself
	if f.Value != nil {
		c.lowerExpr(f.Value)
	} else {
		em.Emit0(bytecode.OpUndefined)
	}
	if f.Key.Private != nil {
		em.EmitAtom(bytecode.OpDefinePrivateField, f.Key.Private.Name)
	} else if f.Key.Computed {
		c.lowerExpr(f.Key.Name)
		em.Emit0(bytecode.OpToPropKey)
		em.Emit0(bytecode.OpDefineProp)
	} else {
		em.EmitAtom(bytecode.OpDefineMethod, staticPropName(f.Key.Name))
	}
	em.Emit0(bytecode.OpDrop)
}

func (c *Compiler) lowerStaticBlock(b *ast.StaticBlock) {
	c.core.EnterBlock()
	c.lowerStmts(b.Body)
	c.core.ExitBlock()
}
