package pattern

import (
	"go/ast"
	"go/types"
	"strconv"

	"github.com/debtmap-go/debtmap/internal/parser"
	"github.com/debtmap-go/debtmap/pkg/debt"
)

// BuildGoFileUnits bridges the extractor's per-function FunctionMetrics and the call-graph builder's
// go/types-resolved packages into the FileUnit/DispatcherCandidate
// shapes the pattern detector needs: struct field/method aggregation and trait
// (interface) implementation detection, both of which live in go/types
// rather than in the flat FunctionMetrics model. Struct/trait detection
// is Go-specific; pyext/tsext's approximate extraction carries no type
// information to resolve it from, so the pattern detector's god-object and boilerplate
// detectors run Go-only (documented in the grounding ledger).
func BuildGoFileUnits(pkgs []*parser.ParsedPackage, metrics []debt.FunctionMetrics) ([]FileUnit, []DispatcherCandidate) {
	methodsByReceiver := indexMethodsByReceiver(metrics)

	unitsByFile := make(map[string]*FileUnit)
	var candidates []DispatcherCandidate

	for _, pkg := range pkgs {
		if pkg.Types == nil {
			continue
		}
		ifaces := collectInterfaces(pkg)
		funcDeclsByReceiver := collectFuncDeclsByReceiver(pkg.Syntax)

		for _, f := range pkg.Syntax {
			filePath := pkg.Fset.Position(f.Pos()).Filename
			unit := unitsByFile[filePath]
			if unit == nil {
				end := pkg.Fset.Position(f.End())
				unit = &FileUnit{Path: filePath, Lines: end.Line}
				unitsByFile[filePath] = unit
			}

			for _, decl := range f.Decls {
				gd, ok := decl.(*ast.GenDecl)
				if !ok {
					continue
				}
				for _, spec := range gd.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}
					st, ok := ts.Type.(*ast.StructType)
					if !ok {
						continue
					}
					structInfo := buildStructInfo(ts.Name.Name, st, methodsByReceiver[ts.Name.Name])
					unit.Structs = append(unit.Structs, structInfo)

					named := lookupNamed(pkg.Types, ts.Name.Name)
					if named != nil {
						unit.TraitImpls = append(unit.TraitImpls, traitImplsFor(named, structInfo, ifaces)...)
					}

					candidates = append(candidates, dispatcherCandidatesFor(pkg, ts.Name.Name, st, funcDeclsByReceiver[ts.Name.Name])...)
				}
			}
		}
	}

	out := make([]FileUnit, 0, len(unitsByFile))
	for _, u := range unitsByFile {
		out = append(out, *u)
	}
	return out, candidates
}

// collectFuncDeclsByReceiver indexes every method declaration in a
// package's syntax trees by its receiver type name, so
// dispatcherCandidatesFor can inspect method bodies for registry-loop
// dispatch.
func collectFuncDeclsByReceiver(files []*ast.File) map[string][]*ast.FuncDecl {
	out := make(map[string][]*ast.FuncDecl)
	for _, f := range files {
		for _, decl := range f.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
				continue
			}
			recv := embeddedFieldName(fn.Recv.List[0].Type)
			out[recv] = append(out[recv], fn)
		}
	}
	return out
}

func indexMethodsByReceiver(metrics []debt.FunctionMetrics) map[string][]MethodInfo {
	out := make(map[string][]MethodInfo)
	for _, m := range metrics {
		if m.ReceiverType == "" {
			continue
		}
		name := m.Id.QualifiedName
		if idx := lastDot(name); idx >= 0 {
			name = name[idx+1:]
		}
		out[m.ReceiverType] = append(out[m.ReceiverType], MethodInfo{
			Id:         m.Id,
			Name:       name,
			Signature:  strconv.Itoa(m.ParamCount),
			Cyclomatic: m.Cyclomatic,
			Exported:   m.Visibility == debt.Public,
		})
	}
	return out
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

func buildStructInfo(name string, st *ast.StructType, methods []MethodInfo) StructInfo {
	var fields []string
	if st.Fields != nil {
		for _, f := range st.Fields.List {
			if len(f.Names) == 0 {
				fields = append(fields, embeddedFieldName(f.Type))
				continue
			}
			for _, n := range f.Names {
				fields = append(fields, n.Name)
			}
		}
	}
	return StructInfo{Name: name, Fields: fields, Methods: methods}
}

func embeddedFieldName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.StarExpr:
		return embeddedFieldName(t.X)
	default:
		return "embedded"
	}
}

func lookupNamed(pkg *types.Package, name string) *types.Named {
	obj := pkg.Scope().Lookup(name)
	if obj == nil {
		return nil
	}
	named, _ := obj.Type().(*types.Named)
	return named
}

func collectInterfaces(pkg *parser.ParsedPackage) map[string]*types.Interface {
	out := make(map[string]*types.Interface)
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		obj := scope.Lookup(name)
		named, ok := obj.Type().(*types.Named)
		if !ok {
			continue
		}
		if iface, ok := named.Underlying().(*types.Interface); ok && iface.NumMethods() > 0 {
			out[name] = iface
		}
	}
	return out
}

// traitImplsFor reports every interface in ifaces that named (or its
// pointer) satisfies, contributing the struct's methods that overlap
// the interface's method set.
func traitImplsFor(named *types.Named, structInfo StructInfo, ifaces map[string]*types.Interface) []TraitImplInfo {
	var out []TraitImplInfo
	ptr := types.NewPointer(named)
	for traitName, iface := range ifaces {
		if !types.Implements(named, iface) && !types.Implements(ptr, iface) {
			continue
		}
		ifaceMethodNames := make(map[string]bool, iface.NumMethods())
		for i := 0; i < iface.NumMethods(); i++ {
			ifaceMethodNames[iface.Method(i).Name()] = true
		}
		var matched []MethodInfo
		for _, m := range structInfo.Methods {
			if ifaceMethodNames[m.Name] {
				matched = append(matched, m)
			}
		}
		if len(matched) == 0 {
			continue
		}
		out = append(out, TraitImplInfo{TraitName: traitName, StructName: structInfo.Name, Methods: matched})
	}
	return out
}

// dispatcherCandidatesFor finds slice/map fields on s whose element type
// is an interface or func type, then walks
// each of s's methods for a range loop over that field that calls a
// method on the loop variable (the dispatcher-loop shape).
func dispatcherCandidatesFor(pkg *parser.ParsedPackage, structName string, st *ast.StructType, methods []*ast.FuncDecl) []DispatcherCandidate {
	if st.Fields == nil {
		return nil
	}
	var registryFields []RegistryField
	for _, f := range st.Fields.List {
		kind := registryElementKind(f.Type)
		if kind == "" {
			continue
		}
		if kind != "func" {
			obj := pkg.Types.Scope().Lookup(kind)
			if obj == nil || !types.IsInterface(obj.Type()) {
				continue
			}
		}
		for _, n := range f.Names {
			registryFields = append(registryFields, RegistryField{StructName: structName, FieldName: n.Name, ElementKind: kind})
		}
	}
	if len(registryFields) == 0 {
		return nil
	}

	var out []DispatcherCandidate
	for _, fn := range methods {
		fnId := funcDeclId(pkg, fn, structName)
		for _, rf := range registryFields {
			if invoked := findDispatchLoop(fn, rf.FieldName); invoked != "" {
				out = append(out, DispatcherCandidate{Function: fnId, Field: rf, InvokedMethod: invoked})
			}
		}
	}
	return out
}

func funcDeclId(pkg *parser.ParsedPackage, fn *ast.FuncDecl, receiver string) debt.FunctionId {
	pos := pkg.Fset.Position(fn.Pos())
	return debt.FunctionId{FilePath: pos.Filename, QualifiedName: pkg.PkgPath + "." + receiver + "." + fn.Name.Name, StartLine: pos.Line}
}

// findDispatchLoop looks for `for _, x := range recv.fieldName { ...
// x.Method(...) ... }` within fn's body and returns the invoked method
// name, or "" if no such loop is found.
func findDispatchLoop(fn *ast.FuncDecl, fieldName string) string {
	if fn.Body == nil {
		return ""
	}
	invoked := ""
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		rs, ok := n.(*ast.RangeStmt)
		if !ok {
			return true
		}
		sel, ok := rs.X.(*ast.SelectorExpr)
		if !ok || sel.Sel.Name != fieldName {
			return true
		}
		loopVar, ok := rs.Value.(*ast.Ident)
		if !ok {
			loopVar, ok = rs.Key.(*ast.Ident)
			if !ok {
				return true
			}
		}
		ast.Inspect(rs.Body, func(m ast.Node) bool {
			call, ok := m.(*ast.CallExpr)
			if !ok {
				return true
			}
			callSel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			if ident, ok := callSel.X.(*ast.Ident); ok && ident.Name == loopVar.Name {
				invoked = callSel.Sel.Name
			}
			return true
		})
		return true
	})
	return invoked
}

// registryElementKind reports the element type name of a slice or map
// field ("func" for a function type), or "" if the field is neither or
// its element is not a locally named or function type. Whether a name
// is an interface is checked by the caller.
func registryElementKind(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.ArrayType:
		return elementTypeName(t.Elt)
	case *ast.MapType:
		return elementTypeName(t.Value)
	default:
		return ""
	}
}

func elementTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return elementTypeName(t.X)
	case *ast.FuncType:
		return "func"
	default:
		return ""
	}
}
