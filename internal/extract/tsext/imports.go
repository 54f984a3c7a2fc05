package tsext

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// extractImports handles "import { a, b as c } from './x'" and
// "import Default from './x'" forms.
func extractImports(node *tree_sitter.Node, source []byte) []importSpec {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		return nil
	}
	modulePath := trimQuotes(sourceNode.Utf8Text(source))

	clause := firstChildOfKind(node, "import_clause")
	if clause == nil {
		return nil
	}

	var specs []importSpec
	for i := uint(0); i < clause.ChildCount(); i++ {
		child := clause.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			name := child.Utf8Text(source)
			specs = append(specs, importSpec{localName: name, importName: "default", modulePath: modulePath})
		case "named_imports":
			for j := uint(0); j < child.ChildCount(); j++ {
				spec := child.Child(j)
				if spec == nil || spec.Kind() != "import_specifier" {
					continue
				}
				specs = append(specs, namedImportSpec(spec, source, modulePath))
			}
		case "namespace_import":
			// "import * as ns" — calls through a namespace alias are
			// resolved best-effort via the bare-name fallback instead.
		}
	}
	return specs
}

func namedImportSpec(spec *tree_sitter.Node, source []byte, modulePath string) importSpec {
	nameNode := spec.ChildByFieldName("name")
	aliasNode := spec.ChildByFieldName("alias")
	importName := nameNode.Utf8Text(source)
	localName := importName
	if aliasNode != nil {
		localName = aliasNode.Utf8Text(source)
	}
	return importSpec{localName: localName, importName: importName, modulePath: modulePath}
}

// extractExports handles "export function foo() {}" (handled elsewhere via
// visibilityOf), "export { a, b as c }", and "export { a } from './other'"
// re-exports.
func extractExports(node *tree_sitter.Node, source []byte, exports map[string]exportTarget) {
	clause := firstChildOfKind(node, "export_clause")
	if clause == nil {
		return
	}
	sourceNode := node.ChildByFieldName("source")
	var fromModule string
	if sourceNode != nil {
		fromModule = trimQuotes(sourceNode.Utf8Text(source))
	}

	for i := uint(0); i < clause.ChildCount(); i++ {
		spec := clause.Child(i)
		if spec == nil || spec.Kind() != "export_specifier" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		aliasNode := spec.ChildByFieldName("alias")
		if nameNode == nil {
			continue
		}
		exportedName := nameNode.Utf8Text(source)
		localName := exportedName
		if aliasNode != nil {
			exportedName = aliasNode.Utf8Text(source)
		}

		// reExportFrom empty means "resolve reExportName within this same
		// file" rather than following to another module.
		exports[exportedName] = exportTarget{reExportFrom: fromModule, reExportName: localName}
	}
}

func firstChildOfKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

func trimQuotes(s string) string {
	return strings.Trim(s, "\"'`")
}
