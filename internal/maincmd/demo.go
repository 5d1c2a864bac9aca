package maincmd

import (
	"context"

	"github.com/mna/mainer"

	"github.com/lucorth/esbc/ast"
	"github.com/lucorth/esbc/bytecode"
	"github.com/lucorth/esbc/compiler"
)

// Demo builds a small built-in program directly as an *ast.Program (no
// parser is in scope for this engine, §1 Non-goals) and runs it through
// the full lowering pipeline, printing the resulting disassembly. It
// exists so the binary has a zero-input way to prove the pipeline works
// end to end.
func (c *Cmd) Demo(ctx context.Context, stdio mainer.Stdio, args []string) error {
	prog := demoProgram()
	res, err := compiler.Compile("demo", prog)
	if err != nil {
		return err
	}
	return bytecode.Disassemble(stdio.Stdout, res.Unit)
}

// demoProgram is equivalent to:
//
//	var x = 1 + 2;
//	function add(a, b) {
//	  return a + b + x;
//	}
func demoProgram() *ast.Program {
	x := &ast.Identifier{Name: "x"}
	one := &ast.Literal{Kind: ast.NumberLiteral, Number: 1}
	two := &ast.Literal{Kind: ast.NumberLiteral, Number: 2}
	sum := &ast.BinaryExpr{Op: ast.OpAdd, Left: one, Right: two}

	varDecl := &ast.VarDeclStmt{
		Kind: ast.DeclVar,
		Decls: []ast.Declarator{
			{Target: x, Init: sum},
		},
	}

	a := &ast.Identifier{Name: "a"}
	b := &ast.Identifier{Name: "b"}
	body := []ast.Stmt{
		&ast.ReturnStmt{
			Expr: &ast.BinaryExpr{
				Op:   ast.OpAdd,
				Left: &ast.BinaryExpr{Op: ast.OpAdd, Left: a, Right: b},
				Right: &ast.Identifier{Name: "x"},
			},
		},
	}
	fn := &ast.FuncDecl{
		Name: &ast.Identifier{Name: "add"},
		FuncCommon: ast.FuncCommon{
			Kind:   ast.FuncNormal,
			Params: []ast.Pattern{a, b},
			Body:   body,
		},
	}

	return &ast.Program{Body: []ast.Stmt{varDecl, fn}}
}
