// Package analysis implements the Analysis Pass (§4.3): a pre-pass over a
// function (or program) body that collects every name the Scope & Capture
// Core must pre-declare before the body is lowered statement-by-statement
// — hoisted vars, Annex-B.3.3-eligible block-scoped function declarations,
// and the set of lexical (let/const/class/function) names at each block
// that can block that Annex B hoisting.
package analysis

import "github.com/lucorth/esbc/ast"

// Result is everything the compiler needs to pre-declare before lowering a
// function body.
type Result struct {
	// Vars is every name introduced by a `var` declarator or a function
	// declaration, anywhere in the body (including nested blocks, but not
	// nested functions), in first-occurrence order.
	Vars []string

	// AnnexBNames is the subset of block-nested FuncDecl names eligible
	// for Annex-B.3.3 hoisting to function scope as an additional var
	// binding (only when no lexical declaration of the same name exists
	// anywhere between the function scope and the declaration's block).
	AnnexBNames []string

	// LexicalNames is every let/const/class name declared directly in the
	// body (not inside a nested block or function), in source order. These
	// must be pre-declared as TDZ locals, with SET_LOC_UNINITIALIZED emitted
	// immediately, before phase-1 function hoisting runs: otherwise a
	// hoisted function's body that closes over one of them would resolve it
	// as a global instead of a capture, since the binding would not exist
	// yet at the point phase 1 compiles that function (§4.3 step (9), §4.5
	// step (2)).
	LexicalNames []string
}

// Run performs the Analysis Pass over a function/program body.
func Run(body []ast.Stmt) Result {
	r := Result{}
	seenVar := map[string]bool{}
	collectVars(body, &r, seenVar)

	r.LexicalNames = topLevelLexicalNames(body)

	topLex := lexicalNamesOf(body)
	seenAnnexB := map[string]bool{}
	collectAnnexB(body, topLex, &r, seenAnnexB)
	return r
}

func addVar(r *Result, seen map[string]bool, name string) {
	if !seen[name] {
		seen[name] = true
		r.Vars = append(r.Vars, name)
	}
}

// collectVars recurses into every statement form that shares the
// function's var scope, stopping at nested function/class bodies. It
// mirrors the teacher pack's collectVarDecls pass, generalized to also
// collect top-level function-declaration names (which are vars too, per
// §4.3: "a function declaration's name is always a var binding of its
// enclosing function scope").
func collectVars(stmts []ast.Stmt, r *Result, seen map[string]bool) {
	for _, s := range stmts {
		collectVarsFromStmt(s, r, seen)
	}
}

func collectVarsFromStmt(s ast.Stmt, r *Result, seen map[string]bool) {
	switch s := s.(type) {
	case *ast.VarDeclStmt:
		if s.Kind == ast.DeclVar {
			for _, d := range s.Decls {
				for _, name := range patternNames(d.Target) {
					addVar(r, seen, name)
				}
			}
		}
	case *ast.FuncDecl:
		if s.Name != nil {
			addVar(r, seen, s.Name.Name)
		}
	case *ast.BlockStmt:
		collectVars(s.Body, r, seen)
	case *ast.IfStmt:
		collectVarsFromStmt(s.Cons, r, seen)
		if s.Alt != nil {
			collectVarsFromStmt(s.Alt, r, seen)
		}
	case *ast.WhileStmt:
		collectVarsFromStmt(s.Body, r, seen)
	case *ast.DoWhileStmt:
		collectVarsFromStmt(s.Body, r, seen)
	case *ast.ForStmt:
		if init, ok := s.Init.(*ast.VarDeclStmt); ok && init.Kind == ast.DeclVar {
			for _, d := range init.Decls {
				for _, name := range patternNames(d.Target) {
					addVar(r, seen, name)
				}
			}
		}
		collectVarsFromStmt(s.Body, r, seen)
	case *ast.ForInStmt:
		if s.HasDecl && s.Decl == ast.DeclVar {
			for _, name := range patternNames(s.Target) {
				addVar(r, seen, name)
			}
		}
		collectVarsFromStmt(s.Body, r, seen)
	case *ast.ForOfStmt:
		if s.HasDecl && s.Decl == ast.DeclVar {
			for _, name := range patternNames(s.Target) {
				addVar(r, seen, name)
			}
		}
		collectVarsFromStmt(s.Body, r, seen)
	case *ast.SwitchStmt:
		for _, c := range s.Cases {
			collectVars(c.Body, r, seen)
		}
	case *ast.TryStmt:
		collectVars(s.Block.Body, r, seen)
		if s.Handler != nil {
			collectVars(s.Handler.Body.Body, r, seen)
		}
		if s.Finalizer != nil {
			collectVars(s.Finalizer.Body, r, seen)
		}
	case *ast.LabeledStmt:
		collectVarsFromStmt(s.Body, r, seen)
	}
}

// lexicalNamesOf collects the let/const/class/function names declared
// directly in stmts (not recursively), the set that can shadow and so
// block Annex-B hoisting from a deeper block (§4.3, Open Question
// resolution: Annex B hoisting is suppressed by a same-named lexical
// declaration anywhere between the function scope and the FuncDecl).
func lexicalNamesOf(stmts []ast.Stmt) map[string]bool {
	names := map[string]bool{}
	for _, s := range stmts {
		switch s := s.(type) {
		case *ast.FuncDecl:
			names[s.Name.Name] = true
		}
	}
	for _, n := range topLevelLexicalNames(stmts) {
		names[n] = true
	}
	return names
}

// topLevelLexicalNames collects every let/const/class name declared
// directly in stmts (not recursively), in source order.
func topLevelLexicalNames(stmts []ast.Stmt) []string {
	var out []string
	for _, s := range stmts {
		switch s := s.(type) {
		case *ast.VarDeclStmt:
			if s.Kind != ast.DeclVar {
				for _, d := range s.Decls {
					out = append(out, patternNames(d.Target)...)
				}
			}
		case *ast.ClassDecl:
			if s.Name != nil {
				out = append(out, s.Name.Name)
			}
		}
	}
	return out
}

func mergeNames(a, b map[string]bool) map[string]bool {
	if len(b) == 0 {
		return a
	}
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

// collectAnnexB walks nested blocks looking for FuncDecl statements that
// are not shadowed by a lexical declaration between the function scope
// and their block, per the legacy Annex B.3.3 web-compatibility hoisting
// rule.
func collectAnnexB(stmts []ast.Stmt, lexical map[string]bool, r *Result, seen map[string]bool) {
	sibling := map[string]bool{}
	for _, n := range topLevelLexicalNames(stmts) {
		sibling[n] = true
	}
	for _, inner := range stmts {
		if fd, ok := inner.(*ast.FuncDecl); ok {
			if !lexical[fd.Name.Name] && !sibling[fd.Name.Name] && !seen[fd.Name.Name] {
				seen[fd.Name.Name] = true
				r.AnnexBNames = append(r.AnnexBNames, fd.Name.Name)
			}
		}
	}
	blockLex := mergeNames(lexical, lexicalNamesOf(stmts))
	for _, inner := range stmts {
		collectAnnexBFromStmt(inner, blockLex, r, seen)
	}
}

func collectAnnexBFromStmt(s ast.Stmt, lexical map[string]bool, r *Result, seen map[string]bool) {
	switch s := s.(type) {
	case *ast.BlockStmt:
		collectAnnexB(s.Body, lexical, r, seen)
	case *ast.IfStmt:
		collectAnnexBFromStmt(s.Cons, lexical, r, seen)
		if s.Alt != nil {
			collectAnnexBFromStmt(s.Alt, lexical, r, seen)
		}
	case *ast.WhileStmt:
		collectAnnexBFromStmt(s.Body, lexical, r, seen)
	case *ast.DoWhileStmt:
		collectAnnexBFromStmt(s.Body, lexical, r, seen)
	case *ast.ForStmt:
		merged := lexical
		if init, ok := s.Init.(*ast.VarDeclStmt); ok && init.Kind != ast.DeclVar {
			extra := map[string]bool{}
			for _, d := range init.Decls {
				for _, name := range patternNames(d.Target) {
					extra[name] = true
				}
			}
			merged = mergeNames(lexical, extra)
		}
		collectAnnexBFromStmt(s.Body, merged, r, seen)
	case *ast.ForInStmt:
		merged := lexical
		if s.HasDecl && s.Decl != ast.DeclVar {
			extra := map[string]bool{}
			for _, name := range patternNames(s.Target) {
				extra[name] = true
			}
			merged = mergeNames(lexical, extra)
		}
		collectAnnexBFromStmt(s.Body, merged, r, seen)
	case *ast.ForOfStmt:
		merged := lexical
		if s.HasDecl && s.Decl != ast.DeclVar {
			extra := map[string]bool{}
			for _, name := range patternNames(s.Target) {
				extra[name] = true
			}
			merged = mergeNames(lexical, extra)
		}
		collectAnnexBFromStmt(s.Body, merged, r, seen)
	case *ast.SwitchStmt:
		var all []ast.Stmt
		for _, c := range s.Cases {
			all = append(all, c.Body...)
		}
		collectAnnexB(all, lexical, r, seen)
	case *ast.TryStmt:
		collectAnnexB(s.Block.Body, lexical, r, seen)
		if s.Handler != nil {
			merged := lexical
			// A destructuring catch parameter blocks Annex B hoisting in its
			// body; a simple identifier catch parameter does not (B.3.4/B.3.5).
			if s.Handler.Param != nil {
				if _, simple := s.Handler.Param.(*ast.Identifier); !simple {
					extra := map[string]bool{}
					for _, name := range patternNames(s.Handler.Param) {
						extra[name] = true
					}
					merged = mergeNames(lexical, extra)
				}
			}
			collectAnnexB(s.Handler.Body.Body, merged, r, seen)
		}
		if s.Finalizer != nil {
			collectAnnexB(s.Finalizer.Body, lexical, r, seen)
		}
	case *ast.LabeledStmt:
		collectAnnexBFromStmt(s.Body, lexical, r, seen)
	}
}

// patternNames returns every binding name introduced by a destructuring
// pattern, in left-to-right order (§4.7 "Pattern Lowering").
func patternNames(p ast.Pattern) []string {
	switch p := p.(type) {
	case *ast.Identifier:
		return []string{p.Name}
	case *ast.ArrayPattern:
		var out []string
		for _, el := range p.Elements {
			if el == nil {
				continue
			}
			out = append(out, patternNames(el)...)
		}
		return out
	case *ast.ObjectPattern:
		var out []string
		for _, prop := range p.Props {
			out = append(out, patternNames(prop.Value)...)
		}
		if p.Rest != nil {
			out = append(out, p.Rest.Name)
		}
		return out
	case *ast.AssignmentPattern:
		return patternNames(p.Target)
	case *ast.RestElement:
		return patternNames(p.Target)
	default:
		return nil
	}
}
