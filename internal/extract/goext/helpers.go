package goext

import (
	"go/ast"
	"strings"
)

// simplifyType strips full package-path prefixes from a go/types.Type
// string rendering so parameter types in the artifact stay short and
// readable: "github.com/foo/bar.Handler" becomes "bar.Handler".
func simplifyType(s string) string {
	var result strings.Builder
	i := 0
	for i < len(s) {
		j := i
		for j < len(s) {
			c := s[j]
			if c == '/' {
				i = j + 1
				break
			}
			if c == ' ' || c == '[' || c == ']' || c == '(' || c == ')' || c == ',' || c == '*' {
				result.WriteString(s[i : j+1])
				i = j + 1
				break
			}
			j++
		}
		if j >= len(s) {
			result.WriteString(s[i:])
			break
		}
	}
	return result.String()
}

func getReceiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name
		}
	}
	return ""
}

func formatFieldType(field *ast.Field) string {
	if field.Type == nil {
		return ""
	}
	switch t := field.Type.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return "*" + ident.Name
		}
	case *ast.ArrayType:
		if ident, ok := t.Elt.(*ast.Ident); ok {
			return "[]" + ident.Name
		}
	case *ast.MapType:
		return "map"
	case *ast.InterfaceType:
		return "interface{}"
	case *ast.SelectorExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name + "." + t.Sel.Name
		}
	}
	return "unknown"
}

func getCallTargetName(call *ast.CallExpr) string {
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		return fn.Name
	case *ast.SelectorExpr:
		if ident, ok := fn.X.(*ast.Ident); ok {
			return ident.Name + "." + fn.Sel.Name
		}
		return fn.Sel.Name
	}
	return ""
}

func isAutoEntry(name, pkgName string) bool {
	if name == "main" && pkgName == "main" {
		return true
	}
	if name == "init" {
		return true
	}
	if strings.HasPrefix(name, "Test") || strings.HasPrefix(name, "Benchmark") || strings.HasPrefix(name, "Example") {
		return true
	}
	return false
}
