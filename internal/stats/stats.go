// Package stats implements the StatsAggregator (spec §4.7): counts,
// percentage breakdowns, and the top-10 largest-function report derived
// from a fully classified node list.
package stats

import (
	"math"
	"sort"

	"github.com/fathomlabs/codegraph/internal/model"
)

// Aggregate computes GraphStats from a node list already classified by
// reachability.Classify and matched by entrypoint.Match. entryIDs supplies
// the matched entry-point id list for the entryPoints stat.
func Aggregate(nodes []model.Node, entryIDs []string) model.GraphStats {
	total := len(nodes)

	deadCount := 0
	deadByPkg := make(map[string]int)
	unusedCount := 0
	unusedByPkg := make(map[string]int)

	for _, n := range nodes {
		if n.Status == model.StatusDead {
			deadCount++
			deadByPkg[n.PackageOrModule]++
		}
		if len(n.UnusedParameters) > 0 {
			unusedCount++
			unusedByPkg[n.PackageOrModule]++
		}
	}

	return model.GraphStats{
		DeadFunctions: model.CountStat{
			Count:      deadCount,
			Percentage: percentage(deadCount, total),
			ByPackage:  deadByPkg,
		},
		UnusedParameters: model.CountStat{
			Count:      unusedCount,
			Percentage: percentage(unusedCount, total),
			ByPackage:  unusedByPkg,
		},
		EntryPoints: model.EntryPointStat{
			Count: len(entryIDs),
			IDs:   entryIDs,
		},
		LargestFunctions: largestFunctions(nodes, 10),
	}
}

// percentage implements §4.7's rounding rule: round(count*10000/total)/100,
// with 0 when total is 0.
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)*10000/float64(total)) / 100
}

func largestFunctions(nodes []model.Node, limit int) []model.LargestFunctionEntry {
	sorted := make([]model.Node, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].LinesOfCode != sorted[j].LinesOfCode {
			return sorted[i].LinesOfCode > sorted[j].LinesOfCode
		}
		return sorted[i].ID < sorted[j].ID
	})

	if limit > len(sorted) {
		limit = len(sorted)
	}
	out := make([]model.LargestFunctionEntry, 0, limit)
	for _, n := range sorted[:limit] {
		out = append(out, model.LargestFunctionEntry{ID: n.ID, LinesOfCode: n.LinesOfCode})
	}
	return out
}
