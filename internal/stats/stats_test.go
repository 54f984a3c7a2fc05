package stats

import (
	"testing"

	"github.com/fathomlabs/codegraph/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_PercentagesAndHistograms(t *testing.T) {
	nodes := []model.Node{
		{ID: "a", PackageOrModule: "pkg", Status: model.StatusDead},
		{ID: "b", PackageOrModule: "pkg", Status: model.StatusLive},
		{ID: "c", PackageOrModule: "pkg2", Status: model.StatusDead, UnusedParameters: []string{"x"}},
	}

	s := Aggregate(nodes, []string{"b"})

	assert.Equal(t, 2, s.DeadFunctions.Count)
	assert.InDelta(t, 66.67, s.DeadFunctions.Percentage, 0.01)
	assert.Equal(t, 1, s.DeadFunctions.ByPackage["pkg"])
	assert.Equal(t, 1, s.DeadFunctions.ByPackage["pkg2"])

	assert.Equal(t, 1, s.UnusedParameters.Count)
	assert.InDelta(t, 33.33, s.UnusedParameters.Percentage, 0.01)

	assert.Equal(t, 1, s.EntryPoints.Count)
	assert.Equal(t, []string{"b"}, s.EntryPoints.IDs)
}

func TestAggregate_ZeroTotalYieldsZeroPercentage(t *testing.T) {
	s := Aggregate(nil, nil)
	assert.Equal(t, float64(0), s.DeadFunctions.Percentage)
	assert.Equal(t, float64(0), s.UnusedParameters.Percentage)
}

func TestAggregate_LargestFunctionsTopTenTieBrokenByID(t *testing.T) {
	nodes := make([]model.Node, 0, 12)
	for i := 0; i < 12; i++ {
		nodes = append(nodes, model.Node{ID: "fn" + string(rune('a'+i)), LinesOfCode: 10})
	}
	// Two nodes share the max LOC; id ordering must break the tie.
	nodes = append(nodes, model.Node{ID: "fn_big1", LinesOfCode: 100})
	nodes = append(nodes, model.Node{ID: "fn_big2", LinesOfCode: 100})

	s := Aggregate(nodes, nil)
	require.Len(t, s.LargestFunctions, 10)
	assert.Equal(t, "fn_big1", s.LargestFunctions[0].ID)
	assert.Equal(t, "fn_big2", s.LargestFunctions[1].ID)
}
