package tsext

import (
	"strings"

	"github.com/fathomlabs/codegraph/internal/model"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractFile walks a parsed file once, collecting function-like nodes,
// import specs, and export bindings (spec §4.2.1's node-kind and
// decorator-extraction rules).
func extractFile(root *tree_sitter.Node, source []byte, relPath string) ([]model.Node, []importSpec, map[string]exportTarget) {
	var nodes []model.Node
	var imports []importSpec
	exports := make(map[string]exportTarget)

	cursor := root.Walk()
	defer cursor.Close()
	walk(cursor, source, relPath, &nodes, &imports, exports)
	return nodes, imports, exports
}

func walk(cursor *tree_sitter.TreeCursor, source []byte, relPath string, nodes *[]model.Node, imports *[]importSpec, exports map[string]exportTarget) {
	node := cursor.Node()
	switch node.Kind() {
	case "function_declaration":
		if n := extractFunctionDecl(node, source, relPath); n != nil {
			*nodes = append(*nodes, *n)
		}
	case "method_definition":
		if n := extractMethod(node, source, relPath); n != nil {
			*nodes = append(*nodes, *n)
		}
	case "lexical_declaration", "variable_declaration":
		*nodes = append(*nodes, extractBoundFunctions(node, source, relPath)...)
	case "public_field_definition":
		if n := extractClassPropertyFn(node, source, relPath); n != nil {
			*nodes = append(*nodes, *n)
		}
	case "import_statement":
		*imports = append(*imports, extractImports(node, source)...)
	case "export_statement":
		extractExports(node, source, exports)
	}

	if cursor.GotoFirstChild() {
		walk(cursor, source, relPath, nodes, imports, exports)
		for cursor.GotoNextSibling() {
			walk(cursor, source, relPath, nodes, imports, exports)
		}
		cursor.GotoParent()
	}
}

func extractFunctionDecl(node *tree_sitter.Node, source []byte, relPath string) *model.Node {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Utf8Text(source)
	n := buildNode(node, source, relPath, name, name, model.KindFunction)
	n.Visibility = visibilityOf(node, model.VisibilityModule, model.VisibilityExported)
	n.Decorators = decoratorsOf(node, source)
	return &n
}

func extractMethod(node *tree_sitter.Node, source []byte, relPath string) *model.Node {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	methodName := accessorPrefix(node) + nameNode.Utf8Text(source)
	className := enclosingClassName(node, source)

	kind := model.KindMethod
	if methodName == "constructor" {
		kind = model.KindConstructor
	}
	qualified := methodName
	if className != "" {
		qualified = className + "." + methodName
	}

	n := buildNode(node, source, relPath, methodName, qualified, kind)
	n.Visibility = memberVisibility(node)
	n.Decorators = decoratorsOf(node, source)
	return &n
}

// accessorPrefix returns "get " or "set " if node is a get/set accessor
// method_definition, per the "get "/"set " name-prefix convention for
// accessors, or "" for an ordinary method.
func accessorPrefix(node *tree_sitter.Node) string {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "get":
			return "get "
		case "set":
			return "set "
		}
	}
	return ""
}

// extractBoundFunctions handles "const foo = () => {...}" / "const foo =
// function() {...}" bindings at module scope, one node per declarator.
func extractBoundFunctions(node *tree_sitter.Node, source []byte, relPath string) []model.Node {
	var out []model.Node
	exported := visibilityOf(node, model.VisibilityModule, model.VisibilityExported)
	decorators := decoratorsOf(node, source)

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "variable_declarator" {
			continue
		}
		valueNode := child.ChildByFieldName("value")
		if valueNode == nil {
			continue
		}
		kind := model.KindArrow
		switch valueNode.Kind() {
		case "arrow_function":
			kind = model.KindArrow
		case "function_expression":
			kind = model.KindClosure
		default:
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nameNode.Utf8Text(source)
		n := buildNodeWithParamSource(child, valueNode, source, relPath, name, name, kind)
		n.Visibility = exported
		n.Decorators = decorators
		out = append(out, n)
	}
	return out
}

func extractClassPropertyFn(node *tree_sitter.Node, source []byte, relPath string) *model.Node {
	valueNode := node.ChildByFieldName("value")
	if valueNode == nil || (valueNode.Kind() != "arrow_function" && valueNode.Kind() != "function_expression") {
		return nil
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	propName := nameNode.Utf8Text(source)
	className := enclosingClassName(node, source)
	qualified := propName
	if className != "" {
		qualified = className + "." + propName
	}

	kind := model.KindArrow
	if valueNode.Kind() == "function_expression" {
		kind = model.KindClosure
	}
	n := buildNodeWithParamSource(node, valueNode, source, relPath, propName, qualified, kind)
	n.Visibility = memberVisibility(node)
	n.Decorators = decoratorsOf(node, source)
	return &n
}

func buildNode(node *tree_sitter.Node, source []byte, relPath, name, qualified string, kind model.NodeKind) model.Node {
	return buildNodeWithParamSource(node, node, source, relPath, name, qualified, kind)
}

// buildNodeWithParamSource is like buildNode but reads the parameter list
// and body from paramSrc rather than node, needed when node is a
// variable_declarator/public_field_definition wrapping the actual
// arrow_function or function_expression.
func buildNodeWithParamSource(node, paramSrc *tree_sitter.Node, source []byte, relPath, name, qualified string, kind model.NodeKind) model.Node {
	id := relPath + ":" + qualified
	startLine := int(node.StartPosition().Row) + 1
	endLine := int(node.EndPosition().Row) + 1
	return model.Node{
		ID:               id,
		Name:             name,
		QualifiedName:    id,
		FilePath:         relPath,
		StartLine:        startLine,
		EndLine:          endLine,
		Language:         model.LangTypeScript,
		Kind:             kind,
		Parameters:       extractParameters(paramSrc, source),
		UnusedParameters: unusedParameters(paramSrc, source),
		PackageOrModule:  packageOf(relPath),
		LinesOfCode:      endLine - startLine + 1,
	}
}

func packageOf(relPath string) string {
	dir := relPath
	if idx := strings.LastIndex(relPath, "/"); idx != -1 {
		dir = relPath[:idx]
	} else {
		dir = "."
	}
	return dir
}

// visibilityOf reports exported when node (or its enclosing variable
// statement) sits directly under an export_statement.
func visibilityOf(node *tree_sitter.Node, otherwise, exported model.Visibility) model.Visibility {
	parent := node.Parent()
	if parent != nil && parent.Kind() == "export_statement" {
		return exported
	}
	return otherwise
}

// memberVisibility reads a class member's accessibility modifier keyword
// ("private"/"public"/"protected", which the grammar wraps in an
// accessibility_modifier node) by scanning the member's children,
// defaulting to public per §4.2.1.
func memberVisibility(node *tree_sitter.Node) model.Visibility {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "accessibility_modifier" && child.ChildCount() > 0 {
			child = child.Child(0)
		}
		switch child.Kind() {
		case "private":
			return model.VisibilityPrivate
		case "protected":
			return model.VisibilityInternal
		case "public":
			return model.VisibilityPublic
		}
	}
	return model.VisibilityPublic
}

func enclosingClassName(node *tree_sitter.Node, source []byte) string {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == "class_declaration" || p.Kind() == "class" {
			if nameNode := p.ChildByFieldName("name"); nameNode != nil {
				return nameNode.Utf8Text(source)
			}
		}
	}
	return ""
}

// decoratorsOf collects the normalized name of every decorator attached to
// node: the unbroken run of decorator siblings directly before it (where
// the grammar places a class member's decorators, inside the class body),
// followed by any decorator children of node itself.
func decoratorsOf(node *tree_sitter.Node, source []byte) []string {
	var out []string
	for sib := node.PrevSibling(); sib != nil && sib.Kind() == "decorator"; sib = sib.PrevSibling() {
		out = append([]string{decoratorName(sib, source)}, out...)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "decorator" {
			out = append(out, decoratorName(child, source))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// decoratorName strips the leading "@" and any call arguments, normalizing
// @Name, @Name(...), @obj.path, and @obj.path(...) to the same recorded
// name ("Name" or "obj.path").
func decoratorName(decorator *tree_sitter.Node, source []byte) string {
	text := strings.TrimSpace(decorator.Utf8Text(source))
	text = strings.TrimPrefix(text, "@")
	if idx := strings.IndexAny(text, "(\n"); idx != -1 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
