package goext

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/fathomlabs/codegraph/internal/config"
	"github.com/fathomlabs/codegraph/internal/diagnostics"
	"github.com/fathomlabs/codegraph/internal/extract"
	"github.com/fathomlabs/codegraph/internal/model"
)

// extractASTOnly is the degraded path used when typed package loading
// fails: no interface dispatch, no typed var-init scanning, method edges
// are a heuristic ("." in the call-target name) rather than true receiver
// resolution (§4.2.2, SUPPLEMENTED FEATURES #1).
func extractASTOnly(cfg *config.ResolvedConfig, files []string, sink *diagnostics.Sink) extract.Result {
	fset := token.NewFileSet()
	var allNodes []model.Node
	funcMap := make(map[string]*model.Node)

	for _, relPath := range files {
		if !strings.HasSuffix(relPath, ".go") {
			continue
		}
		absPath := filepath.Join(cfg.ProjectRoot, relPath)
		f, err := parser.ParseFile(fset, absPath, nil, parser.ParseComments)
		if err != nil {
			sink.Warnf(diagnostics.KindParseError, relPath, 0, "parse: %v", err)
			continue
		}

		nodes := extractNodesAST(f, fset, relPath, f.Name.Name)
		for i := range nodes {
			allNodes = append(allNodes, nodes[i])
			funcMap[nodes[i].ID] = &allNodes[len(allNodes)-1]
			funcMap[nodes[i].Name] = &allNodes[len(allNodes)-1]
		}
	}

	var allEdges []model.Edge
	for _, relPath := range files {
		if !strings.HasSuffix(relPath, ".go") {
			continue
		}
		absPath := filepath.Join(cfg.ProjectRoot, relPath)
		f, err := parser.ParseFile(fset, absPath, nil, 0)
		if err != nil {
			continue
		}
		allEdges = append(allEdges, extractEdgesAST(f, fset, relPath, funcMap)...)
	}

	return extract.Result{Nodes: allNodes, Edges: allEdges, FilesAnalyzed: len(files)}
}

func extractNodesAST(f *ast.File, fset *token.FileSet, relPath, pkgName string) []model.Node {
	var nodes []model.Node

	for _, decl := range f.Decls {
		funcDecl, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}

		name := funcDecl.Name.Name
		kind := model.KindFunction
		var receiver string
		if funcDecl.Recv != nil && len(funcDecl.Recv.List) > 0 {
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
		params, unused := checkParametersAST(funcDecl)

		pkg := filepath.Dir(relPath)
		if pkg == "." {
			pkg = pkgName
		}

		nodes = append(nodes, model.Node{
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
		})
	}

	return nodes
}

func checkParametersAST(funcDecl *ast.FuncDecl) ([]model.Parameter, []string) {
	if funcDecl.Type.Params == nil {
		return []model.Parameter{}, []string{}
	}

	usedNames := usedIdentifiers(funcDecl.Body)

	var params []model.Parameter
	var unused []string
	pos := 0

	for _, field := range funcDecl.Type.Params.List {
		typeStr := formatFieldType(field)

		if len(field.Names) == 0 {
			params = append(params, model.Parameter{Name: "_", Type: &typeStr, IsUsed: true, Position: pos})
			pos++
			continue
		}

		for _, name := range field.Names {
			pName := name.Name
			isUsed := true
			switch {
			case pName == "_":
			case funcDecl.Body == nil:
			default:
				isUsed = usedNames[pName]
			}

			params = append(params, model.Parameter{Name: pName, Type: &typeStr, IsUsed: isUsed, Position: pos})
			if !isUsed && pName != "_" {
				unused = append(unused, pName)
			}
			pos++
		}
	}

	if unused == nil {
		unused = []string{}
	}
	return params, unused
}

func extractEdgesAST(f *ast.File, fset *token.FileSet, relPath string, funcMap map[string]*model.Node) []model.Edge {
	var edges []model.Edge

	for _, decl := range f.Decls {
		funcDecl, ok := decl.(*ast.FuncDecl)
		if !ok || funcDecl.Body == nil {
			continue
		}

		name := funcDecl.Name.Name
		var receiver string
		if funcDecl.Recv != nil && len(funcDecl.Recv.List) > 0 {
			receiver = getReceiverTypeName(funcDecl.Recv.List[0].Type)
		}
		qualified := name
		if receiver != "" {
			qualified = receiver + "." + name
		}
		sourceID := relPath + ":" + qualified

		ast.Inspect(funcDecl.Body, func(n ast.Node) bool {
			callExpr, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			targetName := getCallTargetName(callExpr)
			if targetName == "" || builtins[targetName] {
				return true
			}

			kind := model.EdgeDirect
			var targetID string
			if node, exists := funcMap[relPath+":"+targetName]; exists {
				targetID = node.ID
			} else if node, exists := funcMap[targetName]; exists {
				targetID = node.ID
			}
			if strings.Contains(targetName, ".") {
				kind = model.EdgeMethod
			}

			if targetID != "" {
				pos := fset.Position(callExpr.Pos())
				edges = append(edges, model.Edge{
					Source:     sourceID,
					Target:     targetID,
					CallSite:   model.CallSite{FilePath: relPath, Line: pos.Line, Column: pos.Column},
					Kind:       kind,
					IsResolved: true,
				})
			}
			return true
		})
	}

	return edges
}
