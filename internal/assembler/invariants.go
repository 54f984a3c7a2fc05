package assembler

import (
	"fmt"
	"strings"

	"github.com/fathomlabs/codegraph/internal/coreerr"
	"github.com/fathomlabs/codegraph/internal/model"
)

// checkInvariants re-asserts the §8 universal invariants against an
// assembled graph before it leaves the assembler. A failure here means the
// pipeline upstream produced an inconsistent graph, which §7 classifies as
// an internal bug (InvariantViolated), not a recoverable condition.
func checkInvariants(graph *model.CodeGraph) error {
	nodeIDs := make(map[string]bool, len(graph.Nodes))
	for _, n := range graph.Nodes {
		if nodeIDs[n.ID] {
			return violatedf("duplicate node id %q", n.ID)
		}
		nodeIDs[n.ID] = true
	}

	for _, e := range graph.Edges {
		if !nodeIDs[e.Source] {
			return violatedf("edge source %q is not a known node id", e.Source)
		}
		isDynamicSentinel := strings.HasPrefix(e.Target, "[dynamic:")
		if e.Kind == model.EdgeDynamic && (e.IsResolved || !isDynamicSentinel) {
			return violatedf("edge %s->%s: kind=dynamic requires isResolved=false and a [dynamic:*] target", e.Source, e.Target)
		}
		if e.Kind != model.EdgeDynamic && isDynamicSentinel {
			return violatedf("edge %s->%s: [dynamic:*] target requires kind=dynamic", e.Source, e.Target)
		}
		if !e.IsResolved && e.Kind != model.EdgeDynamic {
			return violatedf("edge %s->%s: isResolved=false requires kind=dynamic", e.Source, e.Target)
		}
	}

	for _, n := range graph.Nodes {
		if (n.Status == model.StatusEntry) != n.IsEntryPoint {
			return violatedf("node %q: status=entry iff isEntryPoint, got status=%s isEntryPoint=%v", n.ID, n.Status, n.IsEntryPoint)
		}
		wantColor := expectedColor(n.Status, len(n.UnusedParameters) > 0)
		if n.Color != wantColor {
			return violatedf("node %q: color %q does not match (status=%s, hasUnused=%v) lookup %q", n.ID, n.Color, n.Status, len(n.UnusedParameters) > 0, wantColor)
		}
		if n.LinesOfCode != n.EndLine-n.StartLine+1 {
			return violatedf("node %q: linesOfCode %d != endLine-startLine+1 (%d)", n.ID, n.LinesOfCode, n.EndLine-n.StartLine+1)
		}
	}

	seenInCluster := make(map[string]int, len(graph.Nodes))
	for _, c := range graph.Clusters {
		for _, id := range c.NodeIDs {
			seenInCluster[id]++
		}
	}
	for _, n := range graph.Nodes {
		if seenInCluster[n.ID] != 1 {
			return violatedf("node %q appears in %d clusters, want exactly 1", n.ID, seenInCluster[n.ID])
		}
	}

	return nil
}

func expectedColor(status model.Status, hasUnused bool) model.Color {
	switch status {
	case model.StatusEntry:
		return model.ColorBlue
	case model.StatusLive:
		if hasUnused {
			return model.ColorYellow
		}
		return model.ColorGreen
	default:
		if hasUnused {
			return model.ColorOrange
		}
		return model.ColorRed
	}
}

func violatedf(format string, args ...any) error {
	return coreerr.New(coreerr.KindInvariantViolated, fmt.Sprintf(format, args...))
}
