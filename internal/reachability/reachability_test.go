package reachability

import (
	"testing"

	"github.com/fathomlabs/codegraph/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestClassify_LiveChainFromEntry(t *testing.T) {
	nodes := []model.Node{
		{ID: "main", IsEntryPoint: true},
		{ID: "a"},
		{ID: "b"},
	}
	edges := []model.Edge{
		{Source: "main", Target: "a"},
		{Source: "a", Target: "b"},
	}

	Classify(nodes, edges, map[string]bool{"main": true})

	assert.Equal(t, model.StatusEntry, nodes[0].Status)
	assert.Equal(t, model.ColorBlue, nodes[0].Color)
	assert.Equal(t, model.StatusLive, nodes[1].Status)
	assert.Equal(t, model.ColorGreen, nodes[1].Color)
	assert.Equal(t, model.StatusLive, nodes[2].Status)
}

func TestClassify_MutuallyRecursiveDeadClusterStaysDead(t *testing.T) {
	nodes := []model.Node{
		{ID: "main", IsEntryPoint: true},
		{ID: "a"},
		{ID: "b"},
	}
	edges := []model.Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "a"},
	}

	Classify(nodes, edges, map[string]bool{"main": true})

	// a and b only call each other; neither is reachable from the entry
	// set, so an incoming edge must not promote either to live.
	assert.Equal(t, model.StatusDead, nodes[1].Status)
	assert.Equal(t, model.StatusDead, nodes[2].Status)
	assert.Equal(t, model.ColorRed, nodes[1].Color)
}

func TestClassify_DeadWithUnusedParametersIsOrange(t *testing.T) {
	nodes := []model.Node{
		{ID: "main", IsEntryPoint: true},
		{ID: "dead", UnusedParameters: []string{"x"}},
	}

	Classify(nodes, nil, map[string]bool{"main": true})

	assert.Equal(t, model.StatusDead, nodes[1].Status)
	assert.Equal(t, model.ColorOrange, nodes[1].Color)
}

func TestClassify_LiveWithUnusedParametersIsYellow(t *testing.T) {
	nodes := []model.Node{
		{ID: "main", IsEntryPoint: true},
		{ID: "live", UnusedParameters: []string{"y"}},
	}
	edges := []model.Edge{{Source: "main", Target: "live"}}

	Classify(nodes, edges, map[string]bool{"main": true})

	assert.Equal(t, model.StatusLive, nodes[1].Status)
	assert.Equal(t, model.ColorYellow, nodes[1].Color)
}
