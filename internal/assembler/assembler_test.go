package assembler

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/fathomlabs/codegraph/internal/config"
	"github.com/fathomlabs/codegraph/internal/coreerr"
	"github.com/fathomlabs/codegraph/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureRoot(t *testing.T, name string) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "testdata", "fixtures", name)
}

func resolvedConfig(t *testing.T, root, language string) *config.ResolvedConfig {
	t.Helper()
	cfg, err := config.Resolve(&config.ProjectConfig{Language: language}, root, "", "")
	require.NoError(t, err)
	return cfg
}

func fixedNow() time.Time {
	return time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
}

func TestRun_PythonFixture_ProducesClassifiedGraph(t *testing.T) {
	a := &Assembler{now: fixedNow}
	cfg := resolvedConfig(t, fixtureRoot(t, "python_basic"), "python")

	graph, sink, err := a.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, sink.Len())

	require.NotEmpty(t, graph.Nodes)
	assert.Equal(t, model.LangPython, graph.Metadata.Language)
	assert.Equal(t, fixedNow(), graph.Metadata.GeneratedAt)
	assert.Equal(t, len(graph.Nodes), graph.Metadata.TotalFunctions)
	assert.Equal(t, len(graph.Edges), graph.Metadata.TotalEdges)

	var main, formatOutput model.Node
	for _, n := range graph.Nodes {
		switch n.Name {
		case "main":
			main = n
		case "format_output":
			formatOutput = n
		}
	}
	require.NotEmpty(t, main.ID)
	assert.Equal(t, model.StatusEntry, main.Status)
	assert.Equal(t, model.ColorBlue, main.Color)

	require.NotEmpty(t, formatOutput.ID)
	assert.Equal(t, model.StatusDead, formatOutput.Status)
	assert.Contains(t, formatOutput.UnusedParameters, "unused_param")
	assert.Equal(t, model.ColorOrange, formatOutput.Color)

	assert.Contains(t, graph.EntryNode.Targets, main.ID)
	assert.NotEmpty(t, graph.Clusters)
	assert.Equal(t, len(graph.Nodes), totalClusteredNodes(graph.Clusters))
}

func totalClusteredNodes(clusters []model.Cluster) int {
	total := 0
	for _, c := range clusters {
		total += len(c.NodeIDs)
	}
	return total
}

func TestRun_UnsupportedLanguage_ReturnsConfigInvalid(t *testing.T) {
	a := New()
	cfg := resolvedConfig(t, fixtureRoot(t, "python_basic"), "python")
	cfg.Language = "ruby"

	_, _, err := a.Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, coreerr.Is(err, coreerr.KindConfigInvalid))
}

func TestRun_EmptyProject_ProducesEmptyArtifactNotError(t *testing.T) {
	a := &Assembler{now: fixedNow}
	dir := t.TempDir()
	cfg := resolvedConfig(t, dir, "go")

	graph, sink, err := a.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, graph.Nodes)
	assert.Empty(t, graph.Edges)
	assert.Equal(t, 1, sink.Len())
}

func TestRun_CancelledContext_ReturnsCancelledError(t *testing.T) {
	a := New()
	cfg := resolvedConfig(t, fixtureRoot(t, "python_basic"), "python")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := a.Run(ctx, cfg)
	require.Error(t, err)
}

func TestCheckInvariants_DetectsColorMismatch(t *testing.T) {
	graph := &model.CodeGraph{
		Nodes: []model.Node{
			{ID: "a", Status: model.StatusLive, Color: model.ColorRed, StartLine: 1, EndLine: 1, LinesOfCode: 1},
		},
		Clusters: []model.Cluster{{ID: "pkg", NodeIDs: []string{"a"}}},
	}
	err := checkInvariants(graph)
	require.Error(t, err)
}
