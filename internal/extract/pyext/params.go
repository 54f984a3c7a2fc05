package pyext

import (
	"strings"

	"github.com/fathomlabs/codegraph/internal/model"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// checkParameters implements §4.2.3's parameter model: the first parameter
// of a method named self/cls is always used, any underscore-prefixed name
// is always used, and everything else is used iff its name appears as an
// identifier in the function body outside an attribute-name position.
// Binding positions such as assignment targets count as uses too.
func checkParameters(fnNode *tree_sitter.Node, source []byte, isMethod bool) ([]model.Parameter, []string) {
	list := fnNode.ChildByFieldName("parameters")
	body := fnNode.ChildByFieldName("body")
	return buildParams(list, body, source, isMethod)
}

func checkParametersLambda(lambdaNode *tree_sitter.Node, source []byte) ([]model.Parameter, []string) {
	list := lambdaNode.ChildByFieldName("parameters")
	body := lambdaNode.ChildByFieldName("body")
	return buildParams(list, body, source, false)
}

func buildParams(list, body *tree_sitter.Node, source []byte, isMethod bool) ([]model.Parameter, []string) {
	if list == nil {
		return []model.Parameter{}, []string{}
	}
	used := usedNames(body, source)

	var params []model.Parameter
	var unused []string
	pos := 0
	for i := uint(0); i < list.ChildCount(); i++ {
		child := list.Child(i)
		if child == nil {
			continue
		}
		name, typeStr := paramNameAndType(child, source)
		if name == "" {
			continue
		}

		if pos == 0 && isMethod && (name == "self" || name == "cls") {
			params = append(params, model.Parameter{Name: name, Type: typeStr, IsUsed: true, Position: pos})
			pos++
			continue
		}
		if strings.HasPrefix(name, "_") {
			params = append(params, model.Parameter{Name: name, Type: typeStr, IsUsed: true, Position: pos})
			pos++
			continue
		}

		isUsed := used[name]
		params = append(params, model.Parameter{Name: name, Type: typeStr, IsUsed: isUsed, Position: pos})
		if !isUsed {
			unused = append(unused, name)
		}
		pos++
	}
	if params == nil {
		params = []model.Parameter{}
	}
	if unused == nil {
		unused = []string{}
	}
	return params, unused
}

// paramNameAndType handles "identifier", "typed_parameter",
// "default_parameter", "typed_default_parameter", "list_splat_pattern"
// (*args), and "dictionary_splat_pattern" (**kwargs).
func paramNameAndType(node *tree_sitter.Node, source []byte) (string, *string) {
	switch node.Kind() {
	case "identifier":
		return node.Utf8Text(source), nil
	case "typed_parameter", "typed_default_parameter":
		name := firstIdentifier(node, source)
		if t := node.ChildByFieldName("type"); t != nil {
			text := t.Utf8Text(source)
			return name, &text
		}
		return name, nil
	case "default_parameter":
		return firstIdentifier(node, source), nil
	case "list_splat_pattern", "dictionary_splat_pattern":
		return firstIdentifier(node, source), nil
	default:
		return "", nil
	}
}

func firstIdentifier(node *tree_sitter.Node, source []byte) string {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "identifier" {
			return child.Utf8Text(source)
		}
	}
	return ""
}

// usedNames walks body and records every identifier appearing outside a
// member-access (attribute) property position.
func usedNames(body *tree_sitter.Node, source []byte) map[string]bool {
	used := make(map[string]bool)
	if body == nil {
		return used
	}
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "identifier" {
			parent := n.Parent()
			isAttributeName := parent != nil && parent.Kind() == "attribute" && parent.ChildByFieldName("attribute") == n
			if !isAttributeName {
				used[n.Utf8Text(source)] = true
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(body)
	return used
}
