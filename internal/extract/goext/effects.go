package goext

import (
	"go/ast"
	"go/types"

	"github.com/debtmap-go/debtmap/pkg/debt"
)

var ioPackages = map[string]bool{
	"os": true, "io": true, "io/ioutil": true, "net": true, "net/http": true,
	"bufio": true, "database/sql": true,
}

var sysCallPackages = map[string]bool{
	"syscall": true, "os/exec": true,
}

// detectIntrinsicEffects scans a function body (including nested
// closures) for side effects it performs directly, without consulting
// the call graph (that propagation is the purity analyzer's job).
func detectIntrinsicEffects(pkg *analyzedPackage, body *ast.BlockStmt) map[debt.EffectKind]bool {
	effects := make(map[debt.EffectKind]bool)

	ast.Inspect(body, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.CallExpr:
			classifyCallEffect(pkg, node, effects)
		case *ast.AssignStmt:
			classifyAssignEffect(pkg, node, effects)
		}
		return true
	})

	return effects
}

func classifyCallEffect(pkg *analyzedPackage, call *ast.CallExpr, effects map[debt.EffectKind]bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return
	}
	pkgIdent, ok := sel.X.(*ast.Ident)
	if !ok {
		return
	}
	importPath := pkg.importPathFor(pkgIdent.Name)
	if importPath == "" {
		return
	}

	switch {
	case importPath == "unsafe":
		effects[debt.EffectUnsafeOp] = true
	case importPath == "C":
		effects[debt.EffectFfi] = true
	case sysCallPackages[importPath]:
		effects[debt.EffectSysCall] = true
	case ioPackages[importPath]:
		effects[debt.EffectIo] = true
	case importPath == "fmt" && (sel.Sel.Name == "Print" || sel.Sel.Name == "Println" || sel.Sel.Name == "Printf"):
		effects[debt.EffectIo] = true
	}
}

// classifyAssignEffect flags assignment to a package-level (global)
// variable as EffectGlobalAccess.
func classifyAssignEffect(pkg *analyzedPackage, assign *ast.AssignStmt, effects map[debt.EffectKind]bool) {
	if pkg.info == nil {
		return
	}
	for _, lhs := range assign.Lhs {
		ident := rootIdent(lhs)
		if ident == nil {
			continue
		}
		obj := pkg.info.Uses[ident]
		if obj == nil {
			obj = pkg.info.Defs[ident]
		}
		v, ok := obj.(*types.Var)
		if !ok || v.Parent() == nil {
			continue
		}
		if v.Parent() == pkg.types.Scope() {
			effects[debt.EffectGlobalAccess] = true
		}
	}
}

func rootIdent(expr ast.Expr) *ast.Ident {
	switch e := expr.(type) {
	case *ast.Ident:
		return e
	case *ast.SelectorExpr:
		return rootIdent(e.X)
	case *ast.StarExpr:
		return rootIdent(e.X)
	case *ast.IndexExpr:
		return rootIdent(e.X)
	default:
		return nil
	}
}
