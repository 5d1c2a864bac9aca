package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lucorth/esbc/analysis"
	"github.com/lucorth/esbc/ast"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func TestVarsHoistThroughNestedBlocksButNotNestedFunctions(t *testing.T) {
	body := []ast.Stmt{
		&ast.VarDeclStmt{Kind: ast.DeclVar, Decls: []ast.Declarator{{Target: ident("a")}}},
		&ast.BlockStmt{Body: []ast.Stmt{
			&ast.VarDeclStmt{Kind: ast.DeclVar, Decls: []ast.Declarator{{Target: ident("b")}}},
		}},
		&ast.FuncDecl{
			Name: ident("inner"),
			FuncCommon: ast.FuncCommon{
				Body: []ast.Stmt{
					&ast.VarDeclStmt{Kind: ast.DeclVar, Decls: []ast.Declarator{{Target: ident("c")}}},
				},
			},
		},
	}

	r := analysis.Run(body)
	assert.Equal(t, []string{"a", "b", "inner"}, r.Vars)
}

func TestLetDoesNotHoistAsVar(t *testing.T) {
	body := []ast.Stmt{
		&ast.VarDeclStmt{Kind: ast.DeclLet, Decls: []ast.Declarator{{Target: ident("x")}}},
	}
	r := analysis.Run(body)
	assert.Empty(t, r.Vars)
}

func TestDestructuringVarCollectsAllBindingNames(t *testing.T) {
	body := []ast.Stmt{
		&ast.VarDeclStmt{Kind: ast.DeclVar, Decls: []ast.Declarator{
			{Target: &ast.ArrayPattern{Elements: []ast.Pattern{ident("a"), ident("b")}}},
		}},
	}
	r := analysis.Run(body)
	assert.Equal(t, []string{"a", "b"}, r.Vars)
}

func TestAnnexBHoistsBlockNestedFunctionDeclaration(t *testing.T) {
	body := []ast.Stmt{
		&ast.IfStmt{
			Cons: &ast.BlockStmt{Body: []ast.Stmt{
				&ast.FuncDecl{Name: ident("f"), FuncCommon: ast.FuncCommon{}},
			}},
		},
	}
	r := analysis.Run(body)
	assert.Equal(t, []string{"f"}, r.AnnexBNames)
}

func TestAnnexBSuppressedByOuterLexicalDeclaration(t *testing.T) {
	body := []ast.Stmt{
		&ast.VarDeclStmt{Kind: ast.DeclLet, Decls: []ast.Declarator{{Target: ident("f")}}},
		&ast.IfStmt{
			Cons: &ast.BlockStmt{Body: []ast.Stmt{
				&ast.FuncDecl{Name: ident("f"), FuncCommon: ast.FuncCommon{}},
			}},
		},
	}
	r := analysis.Run(body)
	assert.Empty(t, r.AnnexBNames)
}

func TestAnnexBSuppressedBySiblingClassDeclaration(t *testing.T) {
	body := []ast.Stmt{
		&ast.BlockStmt{Body: []ast.Stmt{
			&ast.FuncDecl{Name: ident("f"), FuncCommon: ast.FuncCommon{}},
			&ast.ClassDecl{Name: ident("f")},
		}},
	}
	r := analysis.Run(body)
	assert.Empty(t, r.AnnexBNames)
}

func TestAnnexBDestructuringCatchParamBlocksHoisting(t *testing.T) {
	body := []ast.Stmt{
		&ast.TryStmt{
			Block: &ast.BlockStmt{},
			Handler: &ast.CatchClause{
				Param: &ast.ArrayPattern{Elements: []ast.Pattern{ident("f")}},
				Body: &ast.BlockStmt{Body: []ast.Stmt{
					&ast.FuncDecl{Name: ident("f"), FuncCommon: ast.FuncCommon{}},
				}},
			},
		},
	}
	r := analysis.Run(body)
	assert.Empty(t, r.AnnexBNames)
}

func TestAnnexBSimpleCatchParamDoesNotBlockHoisting(t *testing.T) {
	body := []ast.Stmt{
		&ast.TryStmt{
			Block: &ast.BlockStmt{},
			Handler: &ast.CatchClause{
				Param: ident("e"),
				Body: &ast.BlockStmt{Body: []ast.Stmt{
					&ast.FuncDecl{Name: ident("f"), FuncCommon: ast.FuncCommon{}},
				}},
			},
		},
	}
	r := analysis.Run(body)
	assert.Equal(t, []string{"f"}, r.AnnexBNames)
}

func TestAnnexBNamesDedupedAcrossMultipleBlocks(t *testing.T) {
	body := []ast.Stmt{
		&ast.BlockStmt{Body: []ast.Stmt{
			&ast.FuncDecl{Name: ident("f"), FuncCommon: ast.FuncCommon{}},
		}},
		&ast.BlockStmt{Body: []ast.Stmt{
			&ast.FuncDecl{Name: ident("f"), FuncCommon: ast.FuncCommon{}},
		}},
	}
	r := analysis.Run(body)
	assert.Equal(t, []string{"f"}, r.AnnexBNames)
}
