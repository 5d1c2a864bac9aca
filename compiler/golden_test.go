package compiler_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lucorth/esbc/ast"
	"github.com/lucorth/esbc/compiler"
	"github.com/lucorth/esbc/internal/filetest"
)

// goldenFixture is the shape of each compiler/testdata/*.yaml file: a
// named program builder plus the set of disassembly substrings that
// program's lowering must produce (§AMBIENT STACK "Test tooling").
type goldenFixture struct {
	Case     string   `yaml:"case"`
	Contains []string `yaml:"contains"`
}

var goldenPrograms = map[string]func() *ast.Program{
	"add":     goldenAddProgram,
	"closure": goldenClosureProgram,
	"class":   goldenClassProgram,
}

func goldenAddProgram() *ast.Program {
	return &ast.Program{Body: []ast.Stmt{
		&ast.VarDeclStmt{Kind: ast.DeclVar, Decls: []ast.Declarator{
			{Target: ident("x"), Init: &ast.BinaryExpr{Op: ast.OpAdd, Left: num(1), Right: num(2)}},
		}},
	}}
}

func goldenClosureProgram() *ast.Program {
	outerX := ident("x")
	inner := &ast.FuncExpr{
		FuncCommon: ast.FuncCommon{
			Kind: ast.FuncNormal,
			Body: []ast.Stmt{&ast.ReturnStmt{Expr: ident("x")}},
		},
	}
	outer := &ast.FuncDecl{
		Name: ident("outer"),
		FuncCommon: ast.FuncCommon{
			Kind: ast.FuncNormal,
			Body: []ast.Stmt{
				&ast.VarDeclStmt{Kind: ast.DeclLet, Decls: []ast.Declarator{{Target: outerX, Init: num(1)}}},
				&ast.ReturnStmt{Expr: inner},
			},
		},
	}
	return &ast.Program{Body: []ast.Stmt{outer}}
}

func goldenClassProgram() *ast.Program {
	method := &ast.MethodDef{
		Kind: ast.FuncMethod,
		Key:  ast.MethodKey{Name: ident("greet")},
		Fn: &ast.FuncCommon{
			Kind: ast.FuncMethod,
			Body: []ast.Stmt{&ast.ReturnStmt{Expr: num(1)}},
		},
	}
	field := &ast.FieldDef{Key: ast.MethodKey{Name: ident("count")}, Value: num(0)}
	decl := &ast.ClassDecl{
		Name:        ident("Greeter"),
		ClassCommon: ast.ClassCommon{Body: []ast.ClassElement{field, method}},
	}
	return &ast.Program{Body: []ast.Stmt{decl}}
}

func TestCompilerGoldenFixtures(t *testing.T) {
	const dir = "testdata"
	for _, fi := range filetest.SourceFiles(t, dir, ".yaml") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			raw, err := os.ReadFile(filepath.Join(dir, fi.Name()))
			require.NoError(t, err)

			var fx goldenFixture
			require.NoError(t, yaml.Unmarshal(raw, &fx))

			build, ok := goldenPrograms[fx.Case]
			require.True(t, ok, "no program builder registered for case %q", fx.Case)

			res, err := compiler.Compile(fi.Name(), build())
			require.NoError(t, err)

			out := disasm(t, res.Unit)
			for _, want := range fx.Contains {
				assert.Contains(t, out, want)
			}
		})
	}
}
