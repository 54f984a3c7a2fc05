package tsext

import (
	"github.com/fathomlabs/codegraph/internal/model"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// callCtx carries the syntactic context resolveCalls needs while walking a
// file a second time: which node the current call site is nested inside
// (for Edge.Source) and which class, if any, encloses it (for "this.m()"
// and "new T()" resolution).
type callCtx struct {
	relPath    string
	source     []byte
	table      *symbolTable
	funcStack  []string
	classStack []string
}

func (c *callCtx) currentFunc() string {
	if len(c.funcStack) == 0 {
		return ""
	}
	return c.funcStack[len(c.funcStack)-1]
}

func (c *callCtx) currentClass() string {
	if len(c.classStack) == 0 {
		return ""
	}
	return c.classStack[len(c.classStack)-1]
}

// resolveCalls walks u's tree a second time, now that the project-wide
// symbol table is built, and emits one Edge per call expression it can
// place a source function for, implementing §4.2.1's five call-resolution
// rules: direct, method, constructor, callback, and dynamic.
func resolveCalls(u *fileUnit, table *symbolTable) []model.Edge {
	ctx := &callCtx{relPath: u.relPath, source: u.source, table: table}
	var edges []model.Edge
	cursor := u.tree.RootNode().Walk()
	defer cursor.Close()
	walkCalls(cursor, ctx, &edges)
	return edges
}

func walkCalls(cursor *tree_sitter.TreeCursor, ctx *callCtx, edges *[]model.Edge) {
	node := cursor.Node()

	pushedFunc := false
	pushedClass := false
	switch node.Kind() {
	case "class_declaration", "class":
		if name := classNameOf(node, ctx.source); name != "" {
			ctx.classStack = append(ctx.classStack, name)
			pushedClass = true
		}
	case "function_declaration":
		if id := funcDeclID(node, ctx.source, ctx.relPath); id != "" {
			ctx.funcStack = append(ctx.funcStack, id)
			pushedFunc = true
		}
	case "method_definition":
		if id := methodID(node, ctx.source, ctx.relPath, ctx.currentClass()); id != "" {
			ctx.funcStack = append(ctx.funcStack, id)
			pushedFunc = true
		}
	case "public_field_definition":
		if id := boundFieldID(node, ctx.source, ctx.relPath, ctx.currentClass()); id != "" {
			ctx.funcStack = append(ctx.funcStack, id)
			pushedFunc = true
		}
	case "variable_declarator":
		if id := boundDeclaratorID(node, ctx.source, ctx.relPath); id != "" {
			ctx.funcStack = append(ctx.funcStack, id)
			pushedFunc = true
		}
	case "call_expression":
		if edge := resolveCallExpression(node, ctx); edge != nil {
			*edges = append(*edges, *edge)
		}
	case "new_expression":
		if edge := resolveNewExpression(node, ctx); edge != nil {
			*edges = append(*edges, *edge)
		}
	}

	if cursor.GotoFirstChild() {
		walkCalls(cursor, ctx, edges)
		for cursor.GotoNextSibling() {
			walkCalls(cursor, ctx, edges)
		}
		cursor.GotoParent()
	}

	if pushedFunc {
		ctx.funcStack = ctx.funcStack[:len(ctx.funcStack)-1]
	}
	if pushedClass {
		ctx.classStack = ctx.classStack[:len(ctx.classStack)-1]
	}
}

func classNameOf(node *tree_sitter.Node, source []byte) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return n.Utf8Text(source)
	}
	return ""
}

func funcDeclID(node *tree_sitter.Node, source []byte, relPath string) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return relPath + ":" + n.Utf8Text(source)
	}
	return ""
}

func methodID(node *tree_sitter.Node, source []byte, relPath, className string) string {
	n := node.ChildByFieldName("name")
	if n == nil {
		return ""
	}
	name := accessorPrefix(node) + n.Utf8Text(source)
	if className != "" {
		return relPath + ":" + className + "." + name
	}
	return relPath + ":" + name
}

func boundFieldID(node *tree_sitter.Node, source []byte, relPath, className string) string {
	valueNode := node.ChildByFieldName("value")
	if valueNode == nil || (valueNode.Kind() != "arrow_function" && valueNode.Kind() != "function_expression") {
		return ""
	}
	n := node.ChildByFieldName("name")
	if n == nil {
		return ""
	}
	name := n.Utf8Text(source)
	if className != "" {
		return relPath + ":" + className + "." + name
	}
	return relPath + ":" + name
}

// boundDeclaratorID only fires for module-scope "const foo = () => {...}"
// bindings — a variable_declarator nested inside a class body never
// reaches here because public_field_definition already claimed the id.
func boundDeclaratorID(node *tree_sitter.Node, source []byte, relPath string) string {
	valueNode := node.ChildByFieldName("value")
	if valueNode == nil || (valueNode.Kind() != "arrow_function" && valueNode.Kind() != "function_expression") {
		return ""
	}
	n := node.ChildByFieldName("name")
	if n == nil {
		return ""
	}
	return relPath + ":" + n.Utf8Text(source)
}

func callSiteOf(node *tree_sitter.Node, relPath string) model.CallSite {
	pos := node.StartPosition()
	return model.CallSite{FilePath: relPath, Line: int(pos.Row) + 1, Column: int(pos.Column) + 1}
}

// resolveCallExpression handles "foo()", "obj.m()"/"this.m()", and
// "obj[key]()" — the direct, method, and dynamic rules. Bare-name calls
// passed as a callback argument (the "arr.map(fn)" rule) are resolved the
// same way as a direct call once fn is itself visited as an identifier
// argument, which the generic identifier-argument pass below covers.
func resolveCallExpression(node *tree_sitter.Node, ctx *callCtx) *model.Edge {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return nil
	}
	src := ctx.currentFunc()
	if src == "" {
		return nil
	}
	site := callSiteOf(node, ctx.relPath)

	switch fn.Kind() {
	case "identifier":
		name := fn.Utf8Text(ctx.source)
		if id, ok := resolveName(ctx, name); ok {
			return &model.Edge{Source: src, Target: id, CallSite: site, Kind: model.EdgeDirect, IsResolved: true}
		}
		return callbackEdgeFromArguments(node, ctx, src, site)
	case "member_expression":
		objNode := fn.ChildByFieldName("object")
		propNode := fn.ChildByFieldName("property")
		if propNode == nil {
			return nil
		}
		propName := propNode.Utf8Text(ctx.source)
		if objNode != nil && objNode.Kind() == "this" && ctx.currentClass() != "" {
			if id, ok := ctx.table.resolveQualified(ctx.relPath, ctx.currentClass()+"."+propName); ok {
				return &model.Edge{Source: src, Target: id, CallSite: site, Kind: model.EdgeMethod, IsResolved: true}
			}
		}
		if id, ok := ctx.table.resolveBareName(propName); ok {
			return &model.Edge{Source: src, Target: id, CallSite: site, Kind: model.EdgeMethod, IsResolved: true}
		}
		return callbackEdgeFromArguments(node, ctx, src, site)
	case "subscript_expression":
		objNode := fn.ChildByFieldName("object")
		indexNode := fn.ChildByFieldName("index")
		if objNode == nil || indexNode == nil {
			return nil
		}
		expr := objNode.Utf8Text(ctx.source) + "[" + indexNode.Utf8Text(ctx.source) + "]"
		return &model.Edge{Source: src, Target: model.DynamicTarget(expr), CallSite: site, Kind: model.EdgeDynamic, IsResolved: false}
	default:
		return nil
	}
}

// callbackEdgeFromArguments implements the "arr.map(fn)" rule: when a call
// itself doesn't resolve, fall back to its first identifier argument that
// resolves to an in-project function, attributing the edge as a callback
// reference rather than a direct call.
func callbackEdgeFromArguments(node *tree_sitter.Node, ctx *callCtx, src string, site model.CallSite) *model.Edge {
	args := node.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	for i := uint(0); i < args.ChildCount(); i++ {
		arg := args.Child(i)
		if arg == nil || arg.Kind() != "identifier" {
			continue
		}
		name := arg.Utf8Text(ctx.source)
		if id, ok := resolveName(ctx, name); ok {
			return &model.Edge{Source: src, Target: id, CallSite: site, Kind: model.EdgeCallback, IsResolved: true}
		}
	}
	return nil
}

func resolveNewExpression(node *tree_sitter.Node, ctx *callCtx) *model.Edge {
	src := ctx.currentFunc()
	if src == "" {
		return nil
	}
	ctorNode := node.ChildByFieldName("constructor")
	if ctorNode == nil || ctorNode.Kind() != "identifier" {
		return nil
	}
	className := ctorNode.Utf8Text(ctx.source)
	site := callSiteOf(node, ctx.relPath)

	if id, ok := ctx.table.resolveQualified(ctx.relPath, className+".constructor"); ok {
		return &model.Edge{Source: src, Target: id, CallSite: site, Kind: model.EdgeConstructor, IsResolved: true}
	}
	if targetFile, targetName, ok := ctx.table.resolveClassLocation(ctx.relPath, className); ok {
		if id, ok := ctx.table.resolveQualified(targetFile, targetName+".constructor"); ok {
			return &model.Edge{Source: src, Target: id, CallSite: site, Kind: model.EdgeConstructor, IsResolved: true}
		}
	}
	return nil
}

// resolveName implements the direct-call rule's lookup order: a local
// definition in the same file, then an import alias (following re-export
// chains), then the project-wide bare-name fallback.
func resolveName(ctx *callCtx, name string) (string, bool) {
	if id, ok := ctx.table.localDefinition(ctx.relPath, name); ok {
		return id, true
	}
	if id, ok := ctx.table.resolveImport(ctx.relPath, name); ok {
		return id, true
	}
	return ctx.table.resolveBareName(name)
}
