// Package reachability implements the ReachabilityEngine (spec §4.5): a
// breadth-first traversal from the entry-id set over the outgoing-edge
// adjacency, followed by status and color classification.
package reachability

import (
	"sort"

	"github.com/fathomlabs/codegraph/internal/model"
)

// Classify runs BFS from entryIDs over edges, then sets Status and Color on
// every node in place according to the §4.5 lookup table. It never promotes
// a node to live solely because it has an incoming edge — only entry-set
// BFS reachability does that, so mutually recursive dead clusters stay dead.
func Classify(nodes []model.Node, edges []model.Edge, entryIDs map[string]bool) {
	adjacency := buildAdjacency(edges)
	visited := bfs(entryIDs, adjacency)

	for i := range nodes {
		n := &nodes[i]
		switch {
		case n.IsEntryPoint:
			n.Status = model.StatusEntry
		case visited[n.ID]:
			n.Status = model.StatusLive
		default:
			n.Status = model.StatusDead
		}
		n.Color = colorize(n.Status, len(n.UnusedParameters) > 0)
	}
}

// buildAdjacency preserves edge emission order per source, the ordering BFS
// must respect for deterministic visitation (§4.5 "Determinism").
func buildAdjacency(edges []model.Edge) map[string][]string {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	return adj
}

func bfs(entryIDs map[string]bool, adjacency map[string][]string) map[string]bool {
	visited := make(map[string]bool)

	var queue []string
	for id := range entryIDs {
		queue = append(queue, id)
	}
	// Entry-set ordering doesn't affect the resulting visited set, but a
	// stable start order keeps traversal reproducible across runs.
	sort.Strings(queue)
	for _, id := range queue {
		visited[id] = true
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, target := range adjacency[id] {
			if visited[target] {
				continue
			}
			visited[target] = true
			queue = append(queue, target)
		}
	}
	return visited
}

func colorize(status model.Status, hasUnusedParams bool) model.Color {
	switch status {
	case model.StatusEntry:
		return model.ColorBlue
	case model.StatusLive:
		if hasUnusedParams {
			return model.ColorYellow
		}
		return model.ColorGreen
	default: // dead
		if hasUnusedParams {
			return model.ColorOrange
		}
		return model.ColorRed
	}
}
