package entrypoint

import (
	"testing"

	"github.com/fathomlabs/codegraph/internal/config"
	"github.com/fathomlabs/codegraph/internal/diagnostics"
	"github.com/fathomlabs/codegraph/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestMatch_GoAutoDetection_PreservesExtractorTagging(t *testing.T) {
	// goext applies the main-must-be-package-main / init / Test*|Benchmark*|
	// Example* rule itself at extraction time and sets IsEntryPoint there;
	// Match must not re-derive or loosen that decision from bare name alone.
	nodes := []model.Node{
		{ID: "cmd/app:main", Name: "main", FilePath: "cmd/app/main.go", Visibility: model.VisibilityExported, IsEntryPoint: true},
		{ID: "pkg/foo_test.go:TestFoo", Name: "TestFoo", FilePath: "pkg/foo_test.go", Visibility: model.VisibilityExported, IsEntryPoint: true},
		{ID: "pkg.helper", Name: "helper", FilePath: "pkg/foo.go", Visibility: model.VisibilityPrivate},
		{ID: "lib.main", Name: "main", FilePath: "lib/main.go", Visibility: model.VisibilityExported},
	}

	sink := diagnostics.New()
	matched := Match(nodes, nil, model.LangGo, sink)

	assert.True(t, matched["cmd/app:main"])
	assert.True(t, matched["pkg/foo_test.go:TestFoo"])
	assert.False(t, matched["pkg.helper"])
	assert.False(t, matched["lib.main"], "a function literally named main in a non-main package must not auto-match")
	assert.Equal(t, 0, sink.Len())
}

func TestMatch_FunctionRule(t *testing.T) {
	nodes := []model.Node{
		{ID: "pkg.Run", Name: "Run", QualifiedName: "pkg.Run", Visibility: model.VisibilityExported},
	}
	rules := []config.EntryPointRule{{Function: "pkg.Run"}}

	matched := Match(nodes, rules, model.LangGo, diagnostics.New())
	assert.True(t, matched["pkg.Run"])
}

func TestMatch_DecoratorRule(t *testing.T) {
	nodes := []model.Node{
		{ID: "app.handler", Name: "handler", Decorators: []string{"@app.route('/x')"}},
	}
	rules := []config.EntryPointRule{{Decorator: "route"}}

	matched := Match(nodes, rules, model.LangPython, diagnostics.New())
	assert.True(t, matched["app.handler"])
}

func TestMatch_InvalidGlobDropsRuleWithDiagnostic(t *testing.T) {
	nodes := []model.Node{
		{ID: "pkg.Foo", Name: "Foo", FilePath: "pkg/foo.go", Visibility: model.VisibilityExported},
	}
	rules := []config.EntryPointRule{{File: "[unterminated"}}

	sink := diagnostics.New()
	matched := Match(nodes, rules, model.LangGo, sink)

	assert.False(t, matched["pkg.Foo"])
	assert.Equal(t, 1, sink.Len())
	assert.Equal(t, diagnostics.KindMatcherGlob, sink.Entries()[0].Kind)
}

func TestMatch_FileRuleRequiresExportedVisibility(t *testing.T) {
	nodes := []model.Node{
		{ID: "pkg.Foo", Name: "Foo", FilePath: "pkg/foo.go", Visibility: model.VisibilityPrivate},
	}
	rules := []config.EntryPointRule{{File: "pkg/*.go"}}

	matched := Match(nodes, rules, model.LangGo, diagnostics.New())
	assert.False(t, matched["pkg.Foo"])
}

func TestMatch_PythonExtractorTaggedEntryPreserved(t *testing.T) {
	nodes := []model.Node{
		{ID: "app.main_block", Name: "__main__", IsEntryPoint: true},
	}
	matched := Match(nodes, nil, model.LangPython, diagnostics.New())
	assert.True(t, matched["app.main_block"])
}
