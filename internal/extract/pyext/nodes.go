package pyext

import (
	"strings"

	"github.com/fathomlabs/codegraph/internal/model"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractNodes collects every def/async def, class method, and
// module-scope lambda binding in one walk, then tags __main__-block entry
// points against the set it just built (§4.2.3's "functions referenced in
// an if __name__ == '__main__': block" rule needs the full node set before
// it can resolve names).
func extractNodes(root *tree_sitter.Node, source []byte, relPath string) []model.Node {
	var nodes []model.Node

	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "function_definition":
			if node := buildFunctionNode(n, source, relPath); node != nil {
				nodes = append(nodes, *node)
			}
		case "expression_statement":
			nodes = append(nodes, extractLambdaBindings(n, source, relPath)...)
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)

	tagMainBlockEntries(root, source, nodes)
	return nodes
}

func buildFunctionNode(node *tree_sitter.Node, source []byte, relPath string) *model.Node {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)
	className := enclosingClassName(node, source)

	kind := model.KindFunction
	if className != "" {
		kind = model.KindMethod
	}
	if name == "__init__" {
		kind = model.KindConstructor
	}

	qualified := name
	if className != "" {
		qualified = className + "." + name
	}
	id := relPath + ":" + qualified

	startLine := int(node.StartPosition().Row) + 1
	endLine := int(node.EndPosition().Row) + 1

	decorators := decoratorsOf(node, source)
	params, unused := checkParameters(node, source, className != "")

	n := model.Node{
		ID:               id,
		Name:             name,
		QualifiedName:    id,
		FilePath:         relPath,
		StartLine:        startLine,
		EndLine:          endLine,
		Language:         model.LangPython,
		Kind:             kind,
		Visibility:       pythonVisibility(name),
		IsEntryPoint:     decoratorImpliesEntry(decorators),
		Parameters:       params,
		UnusedParameters: unused,
		PackageOrModule:  packageOf(relPath),
		LinesOfCode:      endLine - startLine + 1,
		Decorators:       decorators,
	}
	return &n
}

// extractLambdaBindings handles "handler = lambda req: ..." at module scope,
// per §4.2.1's "lambda expressions bound to module-scope names" node kind.
func extractLambdaBindings(stmt *tree_sitter.Node, source []byte, relPath string) []model.Node {
	if !isModuleScope(stmt) {
		return nil
	}
	var out []model.Node
	for i := uint(0); i < stmt.ChildCount(); i++ {
		child := stmt.Child(i)
		if child == nil || child.Kind() != "assignment" {
			continue
		}
		left := child.ChildByFieldName("left")
		right := child.ChildByFieldName("right")
		if left == nil || right == nil || left.Kind() != "identifier" || right.Kind() != "lambda" {
			continue
		}
		name := left.Utf8Text(source)
		id := relPath + ":" + name
		startLine := int(right.StartPosition().Row) + 1
		endLine := int(right.EndPosition().Row) + 1
		params, unused := checkParametersLambda(right, source)
		out = append(out, model.Node{
			ID:               id,
			Name:             name,
			QualifiedName:    id,
			FilePath:         relPath,
			StartLine:        startLine,
			EndLine:          endLine,
			Language:         model.LangPython,
			Kind:             model.KindLambda,
			Visibility:       pythonVisibility(name),
			Parameters:       params,
			UnusedParameters: unused,
			PackageOrModule:  packageOf(relPath),
			LinesOfCode:      endLine - startLine + 1,
		})
	}
	return out
}

func isModuleScope(n *tree_sitter.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.Kind() == "module"
}

func enclosingClassName(node *tree_sitter.Node, source []byte) string {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == "class_definition" {
			if nameNode := p.ChildByFieldName("name"); nameNode != nil {
				return nameNode.Utf8Text(source)
			}
		}
	}
	return ""
}

// pythonVisibility implements the original helper's three-way split:
// exported (no leading underscore), private (dunder-prefixed without a
// trailing dunder), module (everything else, i.e. single-underscore or
// dunder names like __init__).
func pythonVisibility(name string) model.Visibility {
	if !strings.HasPrefix(name, "_") {
		return model.VisibilityExported
	}
	if isDunderPrefixedNotSuffixed(name) {
		return model.VisibilityPrivate
	}
	return model.VisibilityModule
}

func packageOf(relPath string) string {
	if idx := strings.LastIndex(relPath, "/"); idx != -1 {
		return relPath[:idx]
	}
	return "."
}

// decoratorsOf renders each decorator attached to a (possibly
// decorated_definition-wrapped) function_definition as source text.
func decoratorsOf(node *tree_sitter.Node, source []byte) []string {
	parent := node.Parent()
	if parent == nil || parent.Kind() != "decorated_definition" {
		return nil
	}
	var out []string
	for i := uint(0); i < parent.ChildCount(); i++ {
		child := parent.Child(i)
		if child != nil && child.Kind() == "decorator" {
			out = append(out, decoratorName(child, source))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// decoratorName strips the leading "@" and any call arguments, e.g.
// "@app.route('/x')" -> "app.route".
func decoratorName(decorator *tree_sitter.Node, source []byte) string {
	text := strings.TrimSpace(decorator.Utf8Text(source))
	text = strings.TrimPrefix(text, "@")
	if idx := strings.IndexAny(text, "(\n"); idx != -1 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func decoratorImpliesEntry(decorators []string) bool {
	for _, d := range decorators {
		for _, hint := range autoEntryDecoratorHints {
			if strings.Contains(d, hint) {
				return true
			}
		}
	}
	return false
}
