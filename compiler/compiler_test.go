package compiler_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucorth/esbc/ast"
	"github.com/lucorth/esbc/bytecode"
	"github.com/lucorth/esbc/compiler"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func num(n float64) *ast.Literal { return &ast.Literal{Kind: ast.NumberLiteral, Number: n} }

func disasm(t *testing.T, unit *bytecode.BytecodeUnit) string {
	t.Helper()
	var buf strings.Builder
	require.NoError(t, bytecode.Disassemble(&buf, unit))
	return buf.String()
}

func TestCompileVarDeclAndBinaryAdd(t *testing.T) {
	prog := &ast.Program{Body: []ast.Stmt{
		&ast.VarDeclStmt{Kind: ast.DeclVar, Decls: []ast.Declarator{
			{Target: ident("x"), Init: &ast.BinaryExpr{Op: ast.OpAdd, Left: num(1), Right: num(2)}},
		}},
	}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "add")
	assert.Contains(t, out, "put_var")
}

func TestCompileFunctionDeclProducesNestedUnit(t *testing.T) {
	a, b := ident("a"), ident("b")
	fn := &ast.FuncDecl{
		Name: ident("add"),
		FuncCommon: ast.FuncCommon{
			Kind:   ast.FuncNormal,
			Params: []ast.Pattern{a, b},
			Body: []ast.Stmt{
				&ast.ReturnStmt{Expr: &ast.BinaryExpr{Op: ast.OpAdd, Left: a, Right: b}},
			},
		},
	}
	prog := &ast.Program{Body: []ast.Stmt{fn}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "function add (2 args")
	assert.Contains(t, out, "get_arg")
	assert.Contains(t, out, "return")
}

func TestCompileClosureCapturesOuterLocal(t *testing.T) {
	outerX := ident("x")
	innerRef := ident("x")

	inner := &ast.FuncExpr{
		FuncCommon: ast.FuncCommon{
			Kind: ast.FuncNormal,
			Body: []ast.Stmt{
				&ast.ReturnStmt{Expr: innerRef},
			},
		},
	}
	outer := &ast.FuncDecl{
		Name: ident("outer"),
		FuncCommon: ast.FuncCommon{
			Kind: ast.FuncNormal,
			Body: []ast.Stmt{
				&ast.VarDeclStmt{Kind: ast.DeclLet, Decls: []ast.Declarator{
					{Target: outerX, Init: num(1)},
				}},
				&ast.ReturnStmt{Expr: inner},
			},
		},
	}
	prog := &ast.Program{Body: []ast.Stmt{outer}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "function outer")
	assert.Contains(t, out, "fclosure")
}

func TestCompileIfElseEmitsBothBranches(t *testing.T) {
	prog := &ast.Program{Body: []ast.Stmt{
		&ast.IfStmt{
			Test: ident("cond"),
			Cons: &ast.ExprStmt{Expr: num(1)},
			Alt:  &ast.ExprStmt{Expr: num(2)},
		},
	}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "if_false")
	assert.Contains(t, out, "goto")
}

func TestCompileWhileLoopPatchesBreakToExit(t *testing.T) {
	prog := &ast.Program{Body: []ast.Stmt{
		&ast.WhileStmt{
			Test: ident("cond"),
			Body: &ast.BlockStmt{Body: []ast.Stmt{
				&ast.BreakStmt{},
			}},
		},
	}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "if_false")
	assert.Contains(t, out, "goto")
}

func TestCompileForInWithComputedLHSIsCompileError(t *testing.T) {
	prog := &ast.Program{Body: []ast.Stmt{
		&ast.ForInStmt{
			HasDecl: false,
			Target: &ast.MemberExpr{
				Object:   ident("obj"),
				Property: ident("key"),
				Computed: true,
			},
			Right: ident("src"),
			Body:  &ast.BlockStmt{},
		},
	}}

	_, err := compiler.Compile("t.js", prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "for-in")
}

func TestCompileClassWithMethodAndField(t *testing.T) {
	method := &ast.MethodDef{
		Kind: ast.FuncMethod,
		Key:  ast.MethodKey{Name: ident("greet")},
		Fn: &ast.FuncCommon{
			Kind: ast.FuncMethod,
			Body: []ast.Stmt{&ast.ReturnStmt{Expr: num(1)}},
		},
	}
	field := &ast.FieldDef{
		Key:   ast.MethodKey{Name: ident("count")},
		Value: num(0),
	}
	decl := &ast.ClassDecl{
		Name: ident("Greeter"),
		ClassCommon: ast.ClassCommon{
			Body: []ast.ClassElement{method, field},
		},
	}
	prog := &ast.Program{Body: []ast.Stmt{decl}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "define_class")
	assert.Contains(t, out, "define_method")
}

func TestCompileNewExprEmitsCallConstructor(t *testing.T) {
	prog := &ast.Program{Body: []ast.Stmt{
		&ast.ExprStmt{Expr: &ast.NewExpr{Callee: ident("Foo")}},
	}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "call_constructor")
}

func TestCompileOptionalCallShortCircuits(t *testing.T) {
	call := &ast.CallExpr{
		Callee:   ident("maybeFn"),
		Optional: true,
	}
	prog := &ast.Program{Body: []ast.Stmt{&ast.ExprStmt{Expr: call}}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "is_undefined_or_null")
	assert.Contains(t, out, "if_true")
}

func TestCompileForOfBreakEmitsIteratorClose(t *testing.T) {
	prog := &ast.Program{Body: []ast.Stmt{
		&ast.ForOfStmt{
			HasDecl: true,
			Decl:    ast.DeclLet,
			Target:  ident("v"),
			Right:   ident("items"),
			Body: &ast.BlockStmt{Body: []ast.Stmt{
				&ast.BreakStmt{},
			}},
		},
	}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "for_of_start")
	assert.Contains(t, out, "iterator_close")
}

func TestCompileUsingDeclarationConstructsDisposableStackAndCallsUse(t *testing.T) {
	prog := &ast.Program{Body: []ast.Stmt{
		&ast.VarDeclStmt{Kind: ast.DeclUsing, Decls: []ast.Declarator{
			{Target: ident("r"), Init: ident("resource")},
		}},
	}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "get_var")
	assert.Contains(t, out, "call_constructor")
	assert.Contains(t, out, "get_field")
	assert.NotContains(t, out, "close_loc", "using disposal must not repurpose CLOSE_LOC")
}

func TestCompileBreakDisposesUsingStackInsideLoop(t *testing.T) {
	prog := &ast.Program{Body: []ast.Stmt{
		&ast.WhileStmt{
			Test: &ast.Literal{Kind: ast.BoolLiteral, Bool: true},
			Body: &ast.BlockStmt{Body: []ast.Stmt{
				&ast.VarDeclStmt{Kind: ast.DeclUsing, Decls: []ast.Declarator{
					{Target: ident("r"), Init: ident("resource")},
				}},
				&ast.BreakStmt{},
			}},
		},
	}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "get_field")
	assert.Contains(t, out, "call")
}

func TestCompileReturnDisposesUsingStackAcrossBlocks(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: ident("f"),
		FuncCommon: ast.FuncCommon{
			Kind: ast.FuncNormal,
			Body: []ast.Stmt{
				&ast.VarDeclStmt{Kind: ast.DeclUsing, Decls: []ast.Declarator{
					{Target: ident("r"), Init: ident("resource")},
				}},
				&ast.BlockStmt{Body: []ast.Stmt{
					&ast.ReturnStmt{Expr: num(1)},
				}},
			},
		},
	}
	prog := &ast.Program{Body: []ast.Stmt{fn}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "get_field")
	assert.Contains(t, out, "call")
	assert.Contains(t, out, "return")
}

func TestCompileMixedSyncAsyncUsingIsCompileError(t *testing.T) {
	prog := &ast.Program{Body: []ast.Stmt{
		&ast.VarDeclStmt{Kind: ast.DeclUsing, Decls: []ast.Declarator{
			{Target: ident("a"), Init: ident("resourceA")},
		}},
		&ast.VarDeclStmt{Kind: ast.DeclAwaitUsing, Decls: []ast.Declarator{
			{Target: ident("b"), Init: ident("resourceB")},
		}},
	}}

	_, err := compiler.Compile("t.js", prog)
	require.Error(t, err)
}

func TestCompileUsingWithNoInitializerIsCompileError(t *testing.T) {
	prog := &ast.Program{Body: []ast.Stmt{
		&ast.VarDeclStmt{Kind: ast.DeclUsing, Decls: []ast.Declarator{
			{Target: ident("r")},
		}},
	}}

	_, err := compiler.Compile("t.js", prog)
	require.Error(t, err)
}

func TestCompileConstWithNoInitializerIsCompileError(t *testing.T) {
	prog := &ast.Program{Body: []ast.Stmt{
		&ast.VarDeclStmt{Kind: ast.DeclConst, Decls: []ast.Declarator{
			{Target: ident("c")},
		}},
	}}

	_, err := compiler.Compile("t.js", prog)
	require.Error(t, err)
}

func TestCompileForLoopClosesLocPerIterationForLetBinding(t *testing.T) {
	prog := &ast.Program{Body: []ast.Stmt{
		&ast.ForStmt{
			Init: &ast.VarDeclStmt{Kind: ast.DeclLet, Decls: []ast.Declarator{
				{Target: ident("i"), Init: num(0)},
			}},
			Cond: &ast.BinaryExpr{Op: ast.OpLt, Left: ident("i"), Right: num(3)},
			Post: &ast.UpdateExpr{Op: ast.OpAdd, Prefix: false, Target: ident("i")},
			Body: &ast.ExprStmt{Expr: &ast.CallExpr{Callee: ident("use"), Args: []ast.Argument{{Expr: ident("i")}}}},
		},
	}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "close_loc")
}

func TestCompileProgramStoresResultTemporaryBeforeReturn(t *testing.T) {
	prog := &ast.Program{Body: []ast.Stmt{
		&ast.VarDeclStmt{Kind: ast.DeclVar, Decls: []ast.Declarator{
			{Target: ident("a"), Init: num(1)},
		}},
	}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "put_var")
	assert.Contains(t, out, "put_loc")
	assert.Contains(t, out, "return")
}

func TestCompileObjectLiteralGetterUsesDefineMethodComputed(t *testing.T) {
	obj := &ast.ObjectExpr{Props: []ast.Property{
		{
			Kind: ast.PropGet,
			Key:  ident("value"),
			Value: &ast.FuncExpr{FuncCommon: ast.FuncCommon{
				Kind: ast.FuncMethod,
				Body: []ast.Stmt{&ast.ReturnStmt{Expr: num(1)}},
			}},
		},
	}}
	prog := &ast.Program{Body: []ast.Stmt{&ast.ExprStmt{Expr: obj}}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "define_method_computed")
}

func TestCompileTopLevelFunctionUsesPutVar(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: ident("f"),
		FuncCommon: ast.FuncCommon{
			Kind: ast.FuncNormal,
			Body: []ast.Stmt{&ast.ReturnStmt{Expr: num(1)}},
		},
	}
	prog := &ast.Program{Body: []ast.Stmt{
		fn,
		&ast.ExprStmt{Expr: &ast.CallExpr{Callee: ident("f")}},
	}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "put_var")
	assert.Contains(t, out, "get_var")
}

func TestCompileTopLevelClassPredeclaresTDZSlot(t *testing.T) {
	decl := &ast.ClassDecl{
		Name: ident("Box"),
		ClassCommon: ast.ClassCommon{
			Body: []ast.ClassElement{},
		},
	}
	prog := &ast.Program{Body: []ast.Stmt{decl}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "set_loc_uninitialized")
}

func TestCompileHoistedFunctionCapturesLaterTopLevelLet(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: ident("reader"),
		FuncCommon: ast.FuncCommon{
			Kind: ast.FuncNormal,
			Body: []ast.Stmt{&ast.ReturnStmt{Expr: ident("x")}},
		},
	}
	prog := &ast.Program{Body: []ast.Stmt{
		fn,
		&ast.VarDeclStmt{Kind: ast.DeclLet, Decls: []ast.Declarator{
			{Target: ident("x"), Init: num(1)},
		}},
	}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "function reader")
	assert.Contains(t, out, "get_var_ref", "a hoisted function closing over a later top-level let must capture it, not resolve it as a global")
}

func TestCompileClassGetterUsesDefineMethodComputed(t *testing.T) {
	getter := &ast.MethodDef{
		Kind: ast.FuncGetter,
		Key:  ast.MethodKey{Name: ident("value")},
		Fn: &ast.FuncCommon{
			Kind: ast.FuncGetter,
			Body: []ast.Stmt{&ast.ReturnStmt{Expr: num(1)}},
		},
	}
	decl := &ast.ClassDecl{
		Name: ident("Box"),
		ClassCommon: ast.ClassCommon{
			Body: []ast.ClassElement{getter},
		},
	}
	prog := &ast.Program{Body: []ast.Stmt{decl}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "define_method_computed")
}

func TestCompileMethodCallKeepsReceiverForThis(t *testing.T) {
	call := &ast.CallExpr{
		Callee: &ast.MemberExpr{Object: ident("obj"), Property: ident("method")},
	}
	prog := &ast.Program{Body: []ast.Stmt{&ast.ExprStmt{Expr: call}}}

	res, err := compiler.Compile("t.js", prog)
	require.NoError(t, err)
	out := disasm(t, res.Unit)
	assert.Contains(t, out, "get_field")
	assert.Contains(t, out, "call")
}
