package pyext

import (
	"strings"

	"github.com/fathomlabs/codegraph/internal/model"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractEdges implements §4.2.3's best-effort call resolution, degrading
// through three strategies in order (SUPPLEMENTED FEATURES item 5): exact
// id match, bare name match, then — for a dotted call target — a scan for
// any method across the project sharing the target's short name.
func extractEdges(root *tree_sitter.Node, source []byte, relPath string, funcMap map[string]model.Node) []model.Edge {
	var edges []model.Edge

	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "function_definition" {
			sourceID := functionID(n, source, relPath)
			walkCalls(n, source, relPath, sourceID, funcMap, &edges)
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return edges
}

func functionID(node *tree_sitter.Node, source []byte, relPath string) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := nameNode.Utf8Text(source)
	className := enclosingClassName(node, source)
	if className != "" {
		return relPath + ":" + className + "." + name
	}
	return relPath + ":" + name
}

func walkCalls(fnNode *tree_sitter.Node, source []byte, relPath, sourceID string, funcMap map[string]model.Node, edges *[]model.Edge) {
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "call" {
			if edge := resolveCall(n, source, relPath, sourceID, funcMap); edge != nil {
				*edges = append(*edges, *edge)
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(fnNode.ChildByFieldName("body"))
}

func resolveCall(call *tree_sitter.Node, source []byte, relPath, sourceID string, funcMap map[string]model.Node) *model.Edge {
	targetName := callTargetName(call, source)
	if targetName == "" || builtins[targetName] {
		return nil
	}

	var targetID string
	kind := model.EdgeDirect

	// Strategy 1: exact id within this file.
	if n, ok := funcMap[relPath+":"+targetName]; ok {
		targetID = n.ID
	} else if n, ok := funcMap[targetName]; ok {
		// Strategy 2: bare name, project-wide.
		targetID = n.ID
	}

	if strings.Contains(targetName, ".") {
		parts := strings.SplitN(targetName, ".", 2)
		methodName := parts[len(parts)-1]
		kind = model.EdgeMethod
		// Strategy 3: dotted target — scan for any method sharing the
		// short name, since we don't track receiver types. funcMap is a Go
		// map with unspecified iteration order, so collect every candidate
		// and pick the one with the lexicographically smallest id, rather
		// than whichever the range happens to visit first.
		var candidateID string
		for _, n := range funcMap {
			if n.Name != methodName || n.Kind != model.KindMethod {
				continue
			}
			if candidateID == "" || n.ID < candidateID {
				candidateID = n.ID
			}
		}
		if candidateID != "" {
			targetID = candidateID
		}
	}

	initKey := relPath + ":" + targetName + ".__init__"
	if targetID == "" {
		if n, ok := funcMap[initKey]; ok {
			targetID = n.ID
			kind = model.EdgeConstructor
		}
	}

	if targetID == "" {
		return nil
	}

	pos := call.StartPosition()
	return &model.Edge{
		Source:     sourceID,
		Target:     targetID,
		CallSite:   model.CallSite{FilePath: relPath, Line: int(pos.Row) + 1, Column: int(pos.Column) + 1},
		Kind:       kind,
		IsResolved: true,
	}
}

// callTargetName mirrors get_call_target_name: a bare identifier, or
// "<object>.<attr>" for an attribute call (just "<attr>" for a chained
// call whose receiver is itself a call).
func callTargetName(call *tree_sitter.Node, source []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		return fn.Utf8Text(source)
	case "attribute":
		obj := fn.ChildByFieldName("object")
		attr := fn.ChildByFieldName("attribute")
		if attr == nil {
			return ""
		}
		if obj != nil && obj.Kind() == "call" {
			return attr.Utf8Text(source)
		}
		if obj != nil && obj.Kind() == "identifier" {
			return obj.Utf8Text(source) + "." + attr.Utf8Text(source)
		}
		return attr.Utf8Text(source)
	default:
		return ""
	}
}
