package goext

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/fathomlabs/codegraph/internal/config"
	"github.com/fathomlabs/codegraph/internal/diagnostics"
	"github.com/fathomlabs/codegraph/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureRoot(t *testing.T, name string) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "fixtures", name)
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

// standaloneCopy copies the named files of a fixture into a fresh temp dir.
// The go_basic fixture itself lies inside this repository's module, where
// packages.Load succeeds; the copy has no go.mod above it.
func standaloneCopy(t *testing.T, name string, files []string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(fixtureRoot(t, name), f))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), data, 0o644))
	}
	return dir
}

// Run against a standalone copy (no go.mod of its own or above it),
// packages.Load fails to resolve a module and Extract degrades to the
// AST-only fallback path — exercising that path deterministically without
// a real typed build.
func TestExtract_FallsBackToASTOnly(t *testing.T) {
	root := standaloneCopy(t, "go_basic", []string{"handler.go", "utils.go"})
	cfg := &config.ResolvedConfig{ProjectRoot: root, Language: "go"}
	files := []string{"handler.go", "utils.go"}

	sink := diagnostics.New()
	res, err := New().Extract(cfg, files, sink)
	require.NoError(t, err)
	assert.Equal(t, 1, sink.Len())
	assert.Equal(t, diagnostics.KindHelperFallback, sink.Entries()[0].Kind)

	main := findNode(t, res.Nodes, "main")
	assert.True(t, main.IsEntryPoint)

	handle := findNode(t, res.Nodes, "HandleRequest")
	assert.Equal(t, model.VisibilityExported, handle.Visibility)

	dead := findNode(t, res.Nodes, "deadFunction")
	assert.Equal(t, []string{"unused"}, dead.UnusedParameters)
}

func TestExtract_ASTOnlyEdgesByName(t *testing.T) {
	root := standaloneCopy(t, "go_basic", []string{"handler.go", "utils.go"})
	cfg := &config.ResolvedConfig{ProjectRoot: root, Language: "go"}
	files := []string{"handler.go", "utils.go"}

	res, err := New().Extract(cfg, files, diagnostics.New())
	require.NoError(t, err)

	var found bool
	for _, e := range res.Edges {
		if e.Kind == model.EdgeDirect {
			found = true
		}
	}
	assert.True(t, found, "expected at least one direct-call edge between fixture functions")
}
