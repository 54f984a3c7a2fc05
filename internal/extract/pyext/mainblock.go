package pyext

import (
	"github.com/fathomlabs/codegraph/internal/model"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// tagMainBlockEntries implements §4.2.3's "functions referenced in an if
// __name__ == '__main__': block" auto-entry rule: find the module-level
// `if __name__ == "__main__":` guard, collect every bare-identifier call
// target inside it, and mark the matching node(s) in this file as entry
// points.
func tagMainBlockEntries(root *tree_sitter.Node, source []byte, nodes []model.Node) {
	block := findMainBlock(root, source)
	if block == nil {
		return
	}
	referenced := collectCallTargets(block, source)
	if len(referenced) == 0 {
		return
	}
	for i := range nodes {
		if referenced[nodes[i].Name] {
			nodes[i].IsEntryPoint = true
		}
	}
}

func findMainBlock(root *tree_sitter.Node, source []byte) *tree_sitter.Node {
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil || child.Kind() != "if_statement" {
			continue
		}
		cond := child.ChildByFieldName("condition")
		if cond != nil && isMainGuard(cond, source) {
			return child.ChildByFieldName("consequence")
		}
	}
	return nil
}

// isMainGuard matches "__name__ == '__main__'" in either operand order.
func isMainGuard(cond *tree_sitter.Node, source []byte) bool {
	if cond.Kind() != "comparison_operator" {
		return false
	}
	var hasName, hasMain bool
	for i := uint(0); i < cond.ChildCount(); i++ {
		child := cond.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			if child.Utf8Text(source) == "__name__" {
				hasName = true
			}
		case "string":
			text := child.Utf8Text(source)
			if text == `"__main__"` || text == `'__main__'` {
				hasMain = true
			}
		}
	}
	return hasName && hasMain
}

func collectCallTargets(block *tree_sitter.Node, source []byte) map[string]bool {
	targets := make(map[string]bool)
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "call" {
			if fn := n.ChildByFieldName("function"); fn != nil && fn.Kind() == "identifier" {
				targets[fn.Utf8Text(source)] = true
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(block)
	return targets
}
