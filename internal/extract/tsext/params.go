package tsext

import (
	"strings"

	"github.com/fathomlabs/codegraph/internal/model"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractParameters implements §4.2.1's parameter model: declared
// parameters in order, with a destructuring pattern represented as one
// parameter whose name is the pattern's source text.
func extractParameters(fnNode *tree_sitter.Node, source []byte) []model.Parameter {
	list := findParameterList(fnNode)
	if list == nil {
		return []model.Parameter{}
	}

	used := usedIdentifiers(bodyOf(fnNode), source)

	var params []model.Parameter
	pos := 0
	for i := uint(0); i < list.ChildCount(); i++ {
		child := list.Child(i)
		if child == nil || !isParamNode(child.Kind()) {
			continue
		}
		params = append(params, buildParameter(child, source, used, pos))
		pos++
	}
	if params == nil {
		return []model.Parameter{}
	}
	return params
}

func isParamNode(kind string) bool {
	switch kind {
	case "required_parameter", "optional_parameter", "identifier", "rest_pattern":
		return true
	}
	return false
}

func buildParameter(paramNode *tree_sitter.Node, source []byte, used map[string]bool, pos int) model.Parameter {
	patternNode := paramNode.ChildByFieldName("pattern")
	if patternNode == nil {
		patternNode = paramNode
	}

	switch patternNode.Kind() {
	case "object_pattern", "array_pattern":
		text := patternNode.Utf8Text(source)
		isUsed := anyBindingUsed(patternNode, source, used)
		return model.Parameter{Name: text, IsUsed: isUsed, Position: pos}
	case "rest_pattern":
		name := restBindingName(patternNode, source)
		return model.Parameter{Name: name, IsUsed: bindingUsed(name, used), Position: pos}
	default:
		name := identifierText(patternNode, source)
		return model.Parameter{Name: name, IsUsed: bindingUsed(name, used), Position: pos}
	}
}

func identifierText(node *tree_sitter.Node, source []byte) string {
	if node.Kind() == "identifier" {
		return node.Utf8Text(source)
	}
	// assignment_pattern (default value) or typed identifier: the bound
	// name is the leftmost identifier child.
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "identifier" {
			return child.Utf8Text(source)
		}
	}
	return node.Utf8Text(source)
}

func restBindingName(node *tree_sitter.Node, source []byte) string {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "identifier" {
			return child.Utf8Text(source)
		}
	}
	return node.Utf8Text(source)
}

func bindingUsed(name string, used map[string]bool) bool {
	if name == "" || strings.HasPrefix(name, "_") {
		return true
	}
	return used[name]
}

// anyBindingUsed reports whether every inner binding name of a destructure
// pattern is used; unusedParameters (built separately) lists the unused
// ones individually.
func anyBindingUsed(pattern *tree_sitter.Node, source []byte, used map[string]bool) bool {
	for _, name := range bindingNames(pattern, source) {
		if !bindingUsed(name, used) {
			return false
		}
	}
	return true
}

func bindingNames(pattern *tree_sitter.Node, source []byte) []string {
	var names []string
	var walkPattern func(n *tree_sitter.Node)
	walkPattern = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "identifier":
			names = append(names, n.Utf8Text(source))
			return
		case "shorthand_property_identifier_pattern":
			names = append(names, n.Utf8Text(source))
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walkPattern(n.Child(i))
		}
	}
	walkPattern(pattern)
	return names
}

// unusedParameters implements §4.3's derived ordered list: one entry per
// unused simple parameter, and one entry per unused inner binding of a
// destructuring parameter.
func unusedParameters(fnNode *tree_sitter.Node, source []byte) []string {
	list := findParameterList(fnNode)
	if list == nil {
		return []string{}
	}
	used := usedIdentifiers(bodyOf(fnNode), source)

	var unused []string
	for i := uint(0); i < list.ChildCount(); i++ {
		child := list.Child(i)
		if child == nil || !isParamNode(child.Kind()) {
			continue
		}
		patternNode := child.ChildByFieldName("pattern")
		if patternNode == nil {
			patternNode = child
		}
		switch patternNode.Kind() {
		case "object_pattern", "array_pattern":
			for _, name := range bindingNames(patternNode, source) {
				if !bindingUsed(name, used) {
					unused = append(unused, name)
				}
			}
		case "rest_pattern":
			name := restBindingName(patternNode, source)
			if !bindingUsed(name, used) {
				unused = append(unused, name)
			}
		default:
			name := identifierText(patternNode, source)
			if !bindingUsed(name, used) {
				unused = append(unused, name)
			}
		}
	}
	if unused == nil {
		return []string{}
	}
	return unused
}

func findParameterList(fnNode *tree_sitter.Node) *tree_sitter.Node {
	if p := fnNode.ChildByFieldName("parameters"); p != nil {
		return p
	}
	// Unparenthesized single-identifier arrow: "x => x + 1".
	return fnNode.ChildByFieldName("parameter")
}

func bodyOf(fnNode *tree_sitter.Node) *tree_sitter.Node {
	return fnNode.ChildByFieldName("body")
}

// usedIdentifiers walks body and records every identifier that is not the
// property of a member access (§4.3 rule 3: the right side of a "." access
// does not count). Declaring positions are not told apart: a name bound
// inside the body, such as a nested function's parameter, also counts.
func usedIdentifiers(body *tree_sitter.Node, source []byte) map[string]bool {
	used := make(map[string]bool)
	if body == nil {
		return used
	}

	var walkBody func(n *tree_sitter.Node)
	walkBody = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "identifier" {
			parent := n.Parent()
			isMemberProperty := parent != nil && parent.Kind() == "member_expression" && parent.ChildByFieldName("property") == n
			if !isMemberProperty {
				used[n.Utf8Text(source)] = true
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walkBody(n.Child(i))
		}
	}
	walkBody(body)
	return used
}
