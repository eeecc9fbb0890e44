package goext

import (
	"go/ast"
	"go/types"

	"github.com/debtmap-go/debtmap/pkg/debt"
)

// collectCallSites walks a function body, recursing into nested
// function literals and goroutine bodies so every enclosed call is
// attributed to the lexically enclosing named function, and
// resolves each call expression's best-effort TargetHint.
func collectCallSites(pkg *analyzedPackage, body *ast.BlockStmt) []debt.CallSite {
	var sites []debt.CallSite
	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		line := pkg.fset.Position(call.Pos()).Line
		sites = append(sites, debt.CallSite{Target: resolveTarget(pkg, call), Line: line})
		return true
	})
	return sites
}

func resolveTarget(pkg *analyzedPackage, call *ast.CallExpr) debt.TargetHint {
	switch fn := call.Fun.(type) {
	case *ast.FuncLit:
		return debt.TargetHint{Kind: debt.TargetClosure, LocalId: "<anonymous>"}

	case *ast.Ident:
		return resolveIdentTarget(pkg, fn)

	case *ast.SelectorExpr:
		return resolveSelectorTarget(pkg, fn)

	default:
		return debt.TargetHint{Kind: debt.TargetFnPtr, ExprShape: exprShape(call.Fun)}
	}
}

func resolveIdentTarget(pkg *analyzedPackage, ident *ast.Ident) debt.TargetHint {
	if pkg.info != nil {
		if obj := pkg.info.Uses[ident]; obj != nil {
			if fnObj, ok := obj.(*types.Func); ok {
				return debt.TargetHint{Kind: debt.TargetName, QualifiedName: qualifiedFuncName(fnObj)}
			}
			if _, ok := obj.(*types.Var); ok {
				return debt.TargetHint{Kind: debt.TargetClosure, LocalId: ident.Name}
			}
		}
	}
	return debt.TargetHint{Kind: debt.TargetName, QualifiedName: pkg.path + "." + ident.Name}
}

func resolveSelectorTarget(pkg *analyzedPackage, sel *ast.SelectorExpr) debt.TargetHint {
	// Package-qualified function call, e.g. fmt.Println(...).
	if pkgIdent, ok := sel.X.(*ast.Ident); ok {
		if pkg.info != nil {
			if obj, ok := pkg.info.Uses[pkgIdent].(*types.PkgName); ok {
				return debt.TargetHint{Kind: debt.TargetName, QualifiedName: obj.Imported().Path() + "." + sel.Sel.Name}
			}
		}
	}

	if pkg.info == nil {
		return debt.TargetHint{Kind: debt.TargetMethod, MethodName: sel.Sel.Name}
	}

	recvType := pkg.info.TypeOf(sel.X)
	if recvType == nil {
		return debt.TargetHint{Kind: debt.TargetMethod, MethodName: sel.Sel.Name}
	}

	underlying := recvType
	if ptr, ok := underlying.(*types.Pointer); ok {
		underlying = ptr.Elem()
	}

	if _, isIface := underlying.Underlying().(*types.Interface); isIface {
		return debt.TargetHint{Kind: debt.TargetTrait, TraitName: typeName(underlying), MethodName: sel.Sel.Name}
	}

	// Field of function type: a stored callback invoked via selector.
	if obj := pkg.info.Uses[sel.Sel]; obj != nil {
		if _, ok := obj.(*types.Var); ok {
			return debt.TargetHint{Kind: debt.TargetFnPtr, ExprShape: exprShape(sel)}
		}
	}

	return debt.TargetHint{Kind: debt.TargetMethod, ReceiverTypeHint: typeName(underlying), MethodName: sel.Sel.Name}
}

func qualifiedFuncName(fn *types.Func) string {
	if fn.Pkg() == nil {
		return fn.Name()
	}
	if recv := fn.Type().(*types.Signature).Recv(); recv != nil {
		return fn.Pkg().Path() + "." + typeName(recv.Type()) + "." + fn.Name()
	}
	return fn.Pkg().Path() + "." + fn.Name()
}

func typeName(t types.Type) string {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	if named, ok := t.(*types.Named); ok {
		return named.Obj().Name()
	}
	return t.String()
}

func exprShape(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return exprShape(e.X) + "." + e.Sel.Name
	case *ast.IndexExpr:
		return exprShape(e.X) + "[...]"
	default:
		return "expr"
	}
}
