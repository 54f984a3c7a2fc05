package pyext

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/fathomlabs/codegraph/internal/config"
	"github.com/fathomlabs/codegraph/internal/diagnostics"
	"github.com/fathomlabs/codegraph/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureRoot(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "fixtures", "python_basic")
}

func findNode(t *testing.T, nodes []model.Node, name string) model.Node {
	t.Helper()
	for _, n := range nodes {
		if n.Name == name {
			return n
		}
	}
	t.Fatalf("node %q not found among %d nodes", name, len(nodes))
	return model.Node{}
}

func extractFixture(t *testing.T) ([]model.Node, []model.Edge) {
	t.Helper()
	cfg := &config.ResolvedConfig{ProjectRoot: fixtureRoot(t), Language: "python"}
	files := []string{"src/main.py", "src/handler.py", "src/utils.py", "src/service.py"}
	res, err := New().Extract(cfg, files, diagnostics.New())
	require.NoError(t, err)
	return res.Nodes, res.Edges
}

func TestExtract_VisibilityThreeTier(t *testing.T) {
	nodes, _ := extractFixture(t)

	assert.Equal(t, model.VisibilityExported, findNode(t, nodes, "validate").Visibility)
	assert.Equal(t, model.VisibilityModule, findNode(t, nodes, "_internal_helper").Visibility)
	assert.Equal(t, model.VisibilityPrivate, findNode(t, nodes, "__private_helper").Visibility)
}

func TestExtract_UnusedParameterDetected(t *testing.T) {
	nodes, _ := extractFixture(t)

	format := findNode(t, nodes, "format_output")
	assert.Equal(t, []string{"unused_param"}, format.UnusedParameters)

	sanitize := findNode(t, nodes, "sanitize")
	assert.Equal(t, []string{"encoding"}, sanitize.UnusedParameters)
}

func TestExtract_SelfParameterAlwaysUsed(t *testing.T) {
	nodes, _ := extractFixture(t)
	greet := findNode(t, nodes, "greet")
	require.Len(t, greet.Parameters, 1)
	assert.True(t, greet.Parameters[0].IsUsed)
	assert.Empty(t, greet.UnusedParameters)
}

func TestExtract_ConstructorKindForInit(t *testing.T) {
	nodes, _ := extractFixture(t)
	ctor := findNode(t, nodes, "__init__")
	assert.Equal(t, model.KindConstructor, ctor.Kind)
	assert.Equal(t, "src/service.py:Greeter.__init__", ctor.ID)
}

func TestExtract_LambdaBoundAtModuleScope(t *testing.T) {
	nodes, _ := extractFixture(t)
	shout := findNode(t, nodes, "shout")
	assert.Equal(t, model.KindLambda, shout.Kind)
	assert.Empty(t, shout.UnusedParameters)
}

func TestExtract_MainBlockTagsReferencedFunction(t *testing.T) {
	nodes, _ := extractFixture(t)
	main := findNode(t, nodes, "main")
	assert.True(t, main.IsEntryPoint)

	handleRequest := findNode(t, nodes, "handle_request")
	assert.False(t, handleRequest.IsEntryPoint)
}

func TestExtract_DecoratorHeuristicTagsEntry(t *testing.T) {
	nodes, _ := extractFixture(t)
	handleGreet := findNode(t, nodes, "handle_greet")
	assert.True(t, handleGreet.IsEntryPoint)
	assert.Contains(t, handleGreet.Decorators, "app.route")
}

func hasEdge(edges []model.Edge, source, target string, kind model.EdgeKind) bool {
	for _, e := range edges {
		if e.Source == source && e.Target == target && e.Kind == kind {
			return true
		}
	}
	return false
}

func TestExtract_DirectCallAcrossFiles(t *testing.T) {
	_, edges := extractFixture(t)
	assert.True(t, hasEdge(edges, "src/main.py:main", "src/handler.py:handle_request", model.EdgeDirect))
}

func TestExtract_ConstructorCallResolvesViaInitKey(t *testing.T) {
	_, edges := extractFixture(t)
	assert.True(t, hasEdge(edges, "src/service.py:handle_greet", "src/service.py:Greeter.__init__", model.EdgeConstructor))
}

func TestExtract_DottedMethodCallResolvesByShortName(t *testing.T) {
	_, edges := extractFixture(t)
	assert.True(t, hasEdge(edges, "src/service.py:Greeter.greet", "src/service.py:Greeter._format", model.EdgeMethod))
}

func TestExtract_DottedMethodCallResolvesDeterministicallyOnCollision(t *testing.T) {
	// Greeter._format and Formatter._format (utils.py) share the short
	// name "_format", so the dotted-call scan in self.greet() has two
	// candidates. The resolved target must always be the one with the
	// lexicographically smallest node id, regardless of map iteration
	// order, and "src/service.py:..." sorts before "src/utils.py:...".
	_, edges := extractFixture(t)
	assert.True(t, hasEdge(edges, "src/service.py:Greeter.greet", "src/service.py:Greeter._format", model.EdgeMethod))
	assert.False(t, hasEdge(edges, "src/service.py:Greeter.greet", "src/utils.py:Formatter._format", model.EdgeMethod))
}

func TestExtract_ChainedCallResolvesByBareAttrName(t *testing.T) {
	_, edges := extractFixture(t)
	assert.True(t, hasEdge(edges, "src/service.py:handle_greet", "src/service.py:Greeter.greet", model.EdgeDirect))
}
