// Package goext implements the Go LanguageExtractor (spec §4.2.2): a typed
// primary path built on golang.org/x/tools/go/packages and go/types, with
// an AST-only fallback when typed loading is unavailable.
package goext

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fathomlabs/codegraph/internal/config"
	"github.com/fathomlabs/codegraph/internal/diagnostics"
	"github.com/fathomlabs/codegraph/internal/extract"
	"github.com/fathomlabs/codegraph/internal/model"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"
)

// Extractor implements extract.Extractor for Go source trees.
type Extractor struct{}

// New returns a Go LanguageExtractor.
func New() *Extractor { return &Extractor{} }

// Extract runs the typed primary path; on failure it degrades to the
// AST-only fallback and records a HelperUnavailable-class diagnostic,
// per §4.2.2 and the §7 "degrade to fallback path if one exists" rule.
func (e *Extractor) Extract(cfg *config.ResolvedConfig, files []string, sink *diagnostics.Sink) (extract.Result, error) {
	res, err := extractTyped(cfg, files)
	if err == nil {
		return res, nil
	}
	sink.Warnf(diagnostics.KindHelperFallback, "", 0, "typed Go analysis unavailable, using AST-only fallback: %v", err)
	return extractASTOnly(cfg, files, sink), nil
}

// ---------------------------------------------------------------------
// Typed primary path
// ---------------------------------------------------------------------

func extractTyped(cfg *config.ResolvedConfig, files []string) (extract.Result, error) {
	pcfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedSyntax |
			packages.NeedTypes |
			packages.NeedTypesInfo,
		Dir:        cfg.ProjectRoot,
		BuildFlags: buildFlags(cfg.Go.BuildTags),
	}

	pkgs, err := packages.Load(pcfg, "./...")
	if err != nil {
		return extract.Result{}, fmt.Errorf("goext: load packages: %w", err)
	}

	absRoot, err := filepath.Abs(cfg.ProjectRoot)
	if err != nil {
		return extract.Result{}, fmt.Errorf("goext: resolve project root: %w", err)
	}

	projectPkgs := filterProjectPackages(pkgs, absRoot)
	if len(projectPkgs) == 0 {
		return extract.Result{}, fmt.Errorf("goext: no project packages found under %s", absRoot)
	}

	allowed := make(map[string]bool, len(files))
	for _, f := range files {
		allowed[f] = true
	}

	tn := &typedNodes{objToNodeID: make(map[types.Object]string)}
	if err := tn.extractAll(projectPkgs, absRoot, allowed); err != nil {
		return extract.Result{}, err
	}

	var allEdges []model.Edge
	allEdges = append(allEdges, tn.buildVarInitEdges(projectPkgs, absRoot, &tn.nodes)...)

	concreteTypes := collectConcreteTypes(projectPkgs)
	allEdges = append(allEdges, tn.buildConstructorFanout(concreteTypes)...)
	allEdges = append(allEdges, tn.resolveCalls(projectPkgs, absRoot, concreteTypes)...)

	return extract.Result{Nodes: tn.nodes, Edges: allEdges, FilesAnalyzed: len(files)}, nil
}

func buildFlags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	return []string{"-tags=" + strings.Join(tags, ",")}
}

func filterProjectPackages(pkgs []*packages.Package, absRoot string) []*packages.Package {
	var result []*packages.Package
	for _, pkg := range pkgs {
		files := pkg.CompiledGoFiles
		if len(files) == 0 {
			files = pkg.GoFiles
		}
		for _, f := range files {
			if strings.HasPrefix(f, absRoot) {
				result = append(result, pkg)
				break
			}
		}
	}
	return result
}

// typedNodes accumulates the shared state threaded through the typed
// path's phases: the object→node-id map (read-only once phase 1
// completes) and the node slice itself.
type typedNodes struct {
	objToNodeID map[types.Object]string
	nodes       []model.Node
}

// goFile is one syntax tree flattened out of packages.Package.Syntax,
// tagged with its project-relative path so file-parallel phases can be
// merged back in a deterministic order regardless of goroutine completion
// order (§8 invariant 8: identical inputs produce identical artifacts).
type goFile struct {
	pkg     *packages.Package
	syntax  *ast.File
	relPath string
}

// flattenFiles lists every syntax file across pkgs, filtered by allowed
// when non-empty, sorted by relPath for deterministic iteration.
func flattenFiles(pkgs []*packages.Package, absRoot string, allowed map[string]bool) []goFile {
	var files []goFile
	for _, pkg := range pkgs {
		for i, file := range pkg.Syntax {
			absPath := pkg.CompiledGoFiles[i]
			relPath, err := filepath.Rel(absRoot, absPath)
			if err != nil {
				continue
			}
			relPath = filepath.ToSlash(relPath)
			if len(allowed) > 0 && !allowed[relPath] {
				continue
			}
			files = append(files, goFile{pkg: pkg, syntax: file, relPath: relPath})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].relPath < files[j].relPath })
	return files
}

// extractAll runs phase 1 (node extraction) with one goroutine per file
// under an errgroup barrier, then merges each file's nodes back in the
// fixed relPath order computed by flattenFiles — not goroutine completion
// order — so the resulting node slice is reproducible across runs.
func (tn *typedNodes) extractAll(pkgs []*packages.Package, absRoot string, allowed map[string]bool) error {
	files := flattenFiles(pkgs, absRoot, allowed)
	nodesByFile := make([][]model.Node, len(files))
	objsByFile := make([]map[types.Object]string, len(files))

	var g errgroup.Group
	for i, gf := range files {
		i, gf := i, gf
		g.Go(func() error {
			var fileNodes []model.Node
			fileObjs := make(map[types.Object]string)
			for _, decl := range gf.syntax.Decls {
				funcDecl, ok := decl.(*ast.FuncDecl)
				if !ok {
					continue
				}
				obj := gf.pkg.TypesInfo.Defs[funcDecl.Name]
				if obj == nil {
					continue
				}
				funcObj, ok := obj.(*types.Func)
				if !ok {
					continue
				}
				node := buildNodeTyped(funcDecl, gf.pkg.Fset, gf.relPath, gf.pkg.Name, funcObj)
				fileNodes = append(fileNodes, node)
				fileObjs[funcObj] = node.ID
			}
			nodesByFile[i] = fileNodes
			objsByFile[i] = fileObjs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range files {
		tn.nodes = append(tn.nodes, nodesByFile[i]...)
		for obj, id := range objsByFile[i] {
			tn.objToNodeID[obj] = id
		}
	}
	return nil
}

func buildNodeTyped(funcDecl *ast.FuncDecl, fset *token.FileSet, relPath, pkgName string, funcObj *types.Func) model.Node {
	name := funcDecl.Name.Name
	kind := model.KindFunction
	var receiver string

	sig := funcObj.Type().(*types.Signature)
	if sig.Recv() != nil {
		kind = model.KindMethod
		receiver = getReceiverTypeName(funcDecl.Recv.List[0].Type)
	}
	qualified := name
	if receiver != "" {
		qualified = receiver + "." + name
	}
	nodeID := relPath + ":" + qualified

	visibility := model.VisibilityModule
	if ast.IsExported(name) {
		visibility = model.VisibilityExported
	}

	startPos := fset.Position(funcDecl.Pos())
	endPos := fset.Position(funcDecl.End())
	params, unused := checkParametersTyped(funcDecl, sig)

	pkg := filepath.Dir(relPath)
	if pkg == "." {
		pkg = pkgName
	}

	return model.Node{
		ID:               nodeID,
		Name:             name,
		QualifiedName:    relPath + ":" + qualified,
		FilePath:         relPath,
		StartLine:        startPos.Line,
		EndLine:          endPos.Line,
		Language:         model.LangGo,
		Kind:             kind,
		Visibility:       visibility,
		IsEntryPoint:     isAutoEntry(name, pkgName),
		Parameters:       params,
		UnusedParameters: unused,
		PackageOrModule:  pkg,
		LinesOfCode:      endPos.Line - startPos.Line + 1,
	}
}

func checkParametersTyped(funcDecl *ast.FuncDecl, sig *types.Signature) ([]model.Parameter, []string) {
	sigParams := sig.Params()
	if sigParams.Len() == 0 {
		return []model.Parameter{}, []string{}
	}

	usedNames := usedIdentifiers(funcDecl.Body)

	var params []model.Parameter
	var unused []string

	for i := 0; i < sigParams.Len(); i++ {
		v := sigParams.At(i)
		pName := v.Name()
		typeStr := simplifyType(v.Type().String())

		isUsed := true
		switch {
		case pName == "" || pName == "_":
			pName = "_"
		case funcDecl.Body == nil:
			// Interface method: no body to walk, assume used.
		default:
			isUsed = usedNames[pName]
		}

		params = append(params, model.Parameter{
			Name:     pName,
			Type:     &typeStr,
			IsUsed:   isUsed,
			Position: i,
		})
		if !isUsed && pName != "_" {
			unused = append(unused, pName)
		}
	}

	if unused == nil {
		unused = []string{}
	}
	return params, unused
}

func usedIdentifiers(body ast.Node) map[string]bool {
	used := make(map[string]bool)
	if body == nil {
		return used
	}
	ast.Inspect(body, func(n ast.Node) bool {
		if ident, ok := n.(*ast.Ident); ok {
			used[ident.Name] = true
		}
		return true
	})
	return used
}

// buildVarInitEdges implements the synthetic var-init node rule (§4.2.2):
// module-level var/const initializers that reference in-project functions
// synthesize a "<relpath>:__var_init__" entry node plus one varinit edge
// per referenced function.
func (tn *typedNodes) buildVarInitEdges(pkgs []*packages.Package, absRoot string, nodes *[]model.Node) []model.Edge {
	var edges []model.Edge

	for _, pkg := range pkgs {
		for i, file := range pkg.Syntax {
			absPath := pkg.CompiledGoFiles[i]
			relPath, err := filepath.Rel(absRoot, absPath)
			if err != nil {
				continue
			}
			relPath = filepath.ToSlash(relPath)

			var targets []string
			seen := make(map[string]bool)
			for _, decl := range file.Decls {
				genDecl, ok := decl.(*ast.GenDecl)
				if !ok || (genDecl.Tok != token.VAR && genDecl.Tok != token.CONST) {
					continue
				}
				for _, spec := range genDecl.Specs {
					valSpec, ok := spec.(*ast.ValueSpec)
					if !ok {
						continue
					}
					for _, valExpr := range valSpec.Values {
						tn.collectVarInitTargets(valExpr, pkg, seen, &targets)
					}
				}
			}

			if len(targets) == 0 {
				continue
			}

			syntheticID := relPath + ":__var_init__"
			pkgOf := filepath.Dir(relPath)
			if pkgOf == "." {
				pkgOf = pkg.Name
			}
			*nodes = append(*nodes, model.Node{
				ID:               syntheticID,
				Name:             "__var_init__",
				QualifiedName:    syntheticID,
				FilePath:         relPath,
				StartLine:        1,
				EndLine:          1,
				Language:         model.LangGo,
				Kind:             model.KindInit,
				Visibility:       model.VisibilityModule,
				IsEntryPoint:     true,
				Parameters:       []model.Parameter{},
				UnusedParameters: []string{},
				PackageOrModule:  pkgOf,
				LinesOfCode:      1,
				Status:           model.StatusEntry,
				Color:            model.ColorBlue,
			})

			for _, targetID := range targets {
				edges = append(edges, model.Edge{
					Source:     syntheticID,
					Target:     targetID,
					CallSite:   model.CallSite{FilePath: relPath, Line: 1, Column: 1},
					Kind:       model.EdgeVarInit,
					IsResolved: true,
				})
			}
		}
	}
	return edges
}

func (tn *typedNodes) collectVarInitTargets(valExpr ast.Expr, pkg *packages.Package, seen map[string]bool, targets *[]string) {
	ast.Inspect(valExpr, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.Ident:
			if builtins[node.Name] {
				return true
			}
			obj := pkg.TypesInfo.Uses[node]
			funcObj, ok := obj.(*types.Func)
			if !ok {
				return true
			}
			if targetID, ok := tn.objToNodeID[funcObj]; ok && !seen[targetID] {
				seen[targetID] = true
				*targets = append(*targets, targetID)
			}
		case *ast.SelectorExpr:
			selObj := pkg.TypesInfo.Uses[node.Sel]
			funcObj, ok := selObj.(*types.Func)
			if !ok {
				return true
			}
			if targetID, ok := tn.objToNodeID[funcObj]; ok && !seen[targetID] {
				seen[targetID] = true
				*targets = append(*targets, targetID)
			}
			return false
		}
		return true
	})
}

func collectConcreteTypes(pkgs []*packages.Package) []*types.Named {
	var concrete []*types.Named
	for _, pkg := range pkgs {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok {
				continue
			}
			named, ok := tn.Type().(*types.Named)
			if !ok || types.IsInterface(named) {
				continue
			}
			concrete = append(concrete, named)
		}
	}
	return concrete
}

// buildConstructorFanout implements §4.2.2's constructor fan-out rule: a
// standalone function returning a named type T gets "provided" edges to
// every method on T (or, for an interface return type, to every concrete
// in-project implementation's methods).
func (tn *typedNodes) buildConstructorFanout(concreteTypes []*types.Named) []model.Edge {
	var edges []model.Edge
	// tn.objToNodeID is a Go map; iterate in nodeID order rather than
	// map order so the emitted edge sequence is reproducible (§8).
	objs := make([]types.Object, 0, len(tn.objToNodeID))
	for obj := range tn.objToNodeID {
		objs = append(objs, obj)
	}
	sort.Slice(objs, func(i, j int) bool { return tn.objToNodeID[objs[i]] < tn.objToNodeID[objs[j]] })

	for _, obj := range objs {
		nodeID := tn.objToNodeID[obj]
		funcObj, ok := obj.(*types.Func)
		if !ok {
			continue
		}
		sig, ok := funcObj.Type().(*types.Signature)
		if !ok || sig.Recv() != nil {
			continue
		}
		results := sig.Results()
		for ri := 0; ri < results.Len(); ri++ {
			returnType := results.At(ri).Type()
			if ptr, ok := returnType.(*types.Pointer); ok {
				returnType = ptr.Elem()
			}
			named, ok := returnType.(*types.Named)
			if !ok {
				continue
			}
			if iface, isIface := named.Underlying().(*types.Interface); isIface {
				edges = append(edges, tn.methodEdgesForInterface(nodeID, iface, concreteTypes)...)
			} else {
				edges = append(edges, tn.methodEdgesForType(nodeID, named)...)
			}
		}
	}
	return edges
}

func (tn *typedNodes) methodEdgesForType(sourceID string, named *types.Named) []model.Edge {
	var edges []model.Edge
	mset := types.NewMethodSet(types.NewPointer(named))
	for mi := 0; mi < mset.Len(); mi++ {
		methodFunc, ok := mset.At(mi).Obj().(*types.Func)
		if !ok {
			continue
		}
		methodID, ok := tn.objToNodeID[methodFunc]
		if !ok || methodID == sourceID {
			continue
		}
		edges = append(edges, model.Edge{Source: sourceID, Target: methodID, Kind: model.EdgeProvided, IsResolved: true})
	}
	return edges
}

func (tn *typedNodes) methodEdgesForInterface(sourceID string, iface *types.Interface, concreteTypes []*types.Named) []model.Edge {
	var edges []model.Edge
	for _, ct := range concreteTypes {
		if !types.Implements(ct, iface) && !types.Implements(types.NewPointer(ct), iface) {
			continue
		}
		edges = append(edges, tn.methodEdgesForType(sourceID, ct)...)
	}
	return edges
}

// resolveCalls implements phase 3 (§4.2.2's call-resolution rules),
// dispatching one goroutine per file under an errgroup and merging each
// file's edges in file order once all have finished; the interface-implementation
// cache is itself mutex-guarded so concurrent interface dispatch lookups
// can share cached results.
func (tn *typedNodes) resolveCalls(pkgs []*packages.Package, absRoot string, concreteTypes []*types.Named) []model.Edge {
	cache := &ifaceImplCache{cache: make(map[*types.Func][]*types.Func)}

	files := flattenFiles(pkgs, absRoot, nil)
	edgesByFile := make([][]model.Edge, len(files))
	var g errgroup.Group

	for i, gf := range files {
		i, gf := i, gf
		g.Go(func() error {
			var fileEdges []model.Edge
			for _, decl := range gf.syntax.Decls {
				funcDecl, ok := decl.(*ast.FuncDecl)
				if !ok || funcDecl.Body == nil {
					continue
				}
				sourceObj := gf.pkg.TypesInfo.Defs[funcDecl.Name]
				if sourceObj == nil {
					continue
				}
				sourceID, ok := tn.objToNodeID[sourceObj]
				if !ok {
					continue
				}
				fileEdges = append(fileEdges, resolveCallsInFunc(funcDecl, gf.pkg, gf.relPath, sourceID, tn.objToNodeID, concreteTypes, cache)...)
			}
			edgesByFile[i] = fileEdges
			return nil
		})
	}
	_ = g.Wait()

	var allEdges []model.Edge
	for _, edges := range edgesByFile {
		allEdges = append(allEdges, edges...)
	}
	return allEdges
}

type ifaceImplCache struct {
	mu    sync.Mutex
	cache map[*types.Func][]*types.Func
}

func (c *ifaceImplCache) lookup(ifaceMethod *types.Func, iface *types.Interface, concreteTypes []*types.Named, objToNodeID map[types.Object]string) []*types.Func {
	c.mu.Lock()
	if impls, ok := c.cache[ifaceMethod]; ok {
		c.mu.Unlock()
		return impls
	}
	c.mu.Unlock()

	var impls []*types.Func
	for _, ct := range concreteTypes {
		if !types.Implements(ct, iface) && !types.Implements(types.NewPointer(ct), iface) {
			continue
		}
		method, _, _ := types.LookupFieldOrMethod(ct, true, ifaceMethod.Pkg(), ifaceMethod.Name())
		if fn, ok := method.(*types.Func); ok {
			if _, inProject := objToNodeID[fn]; inProject {
				impls = append(impls, fn)
			}
		}
	}

	c.mu.Lock()
	c.cache[ifaceMethod] = impls
	c.mu.Unlock()
	return impls
}

func resolveCallsInFunc(
	funcDecl *ast.FuncDecl,
	pkg *packages.Package,
	relPath, sourceID string,
	objToNodeID map[types.Object]string,
	concreteTypes []*types.Named,
	cache *ifaceImplCache,
) []model.Edge {
	var edges []model.Edge
	seen := make(map[string]bool)

	addEdge := func(target string, pos token.Position, kind model.EdgeKind) {
		key := sourceID + "->" + target
		if seen[key] {
			return
		}
		seen[key] = true
		edges = append(edges, model.Edge{
			Source:     sourceID,
			Target:     target,
			CallSite:   model.CallSite{FilePath: relPath, Line: pos.Line, Column: pos.Column},
			Kind:       kind,
			IsResolved: true,
		})
	}

	callFuncs := make(map[ast.Node]bool)
	ast.Inspect(funcDecl.Body, func(n ast.Node) bool {
		if ce, ok := n.(*ast.CallExpr); ok {
			callFuncs[ce.Fun] = true
		}
		return true
	})

	ast.Inspect(funcDecl.Body, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.CallExpr:
			switch fn := node.Fun.(type) {
			case *ast.Ident:
				if builtins[fn.Name] {
					return true
				}
				funcObj, ok := pkg.TypesInfo.Uses[fn].(*types.Func)
				if !ok {
					return true
				}
				if targetID, ok := objToNodeID[funcObj]; ok {
					addEdge(targetID, pkg.Fset.Position(node.Pos()), model.EdgeDirect)
				}

			case *ast.SelectorExpr:
				if builtins[fn.Sel.Name] {
					return true
				}
				if ident, ok := fn.X.(*ast.Ident); ok {
					if _, isPkg := pkg.TypesInfo.Uses[ident].(*types.PkgName); isPkg {
						funcObj, ok := pkg.TypesInfo.Uses[fn.Sel].(*types.Func)
						if !ok {
							return true
						}
						if targetID, ok := objToNodeID[funcObj]; ok {
							addEdge(targetID, pkg.Fset.Position(node.Pos()), model.EdgeDirect)
						}
						return true
					}
				}

				selection, ok := pkg.TypesInfo.Selections[fn]
				if !ok {
					return true
				}
				methodObj, ok := selection.Obj().(*types.Func)
				if !ok {
					return true
				}

				recvType := selection.Recv()
				if ptr, ok := recvType.(*types.Pointer); ok {
					recvType = ptr.Elem()
				}
				if iface, isIface := recvType.Underlying().(*types.Interface); isIface {
					for _, impl := range cache.lookup(methodObj, iface, concreteTypes, objToNodeID) {
						if targetID, ok := objToNodeID[impl]; ok {
							addEdge(targetID, pkg.Fset.Position(node.Pos()), model.EdgeInterface)
						}
					}
				} else if targetID, ok := objToNodeID[methodObj]; ok {
					addEdge(targetID, pkg.Fset.Position(node.Pos()), model.EdgeMethod)
				}
			}

		case *ast.SelectorExpr:
			if callFuncs[node] {
				return true
			}
			selection, ok := pkg.TypesInfo.Selections[node]
			if !ok || selection.Kind() != types.MethodVal {
				return true
			}
			methodObj, ok := selection.Obj().(*types.Func)
			if !ok {
				return true
			}
			if targetID, ok := objToNodeID[methodObj]; ok {
				addEdge(targetID, pkg.Fset.Position(node.Pos()), model.EdgeFuncref)
			}

		case *ast.Ident:
			if callFuncs[node] || builtins[node.Name] {
				return true
			}
			funcObj, ok := pkg.TypesInfo.Uses[node].(*types.Func)
			if !ok {
				return true
			}
			if targetID, ok := objToNodeID[funcObj]; ok {
				addEdge(targetID, pkg.Fset.Position(node.Pos()), model.EdgeFuncref)
			}
		}
		return true
	})

	return edges
}
