// Package assembler implements the GraphAssembler (spec §5): the pipeline
// that wires FileDiscovery, a LanguageExtractor, the EntryPointMatcher, the
// ReachabilityEngine, the ClusterBuilder, and the StatsAggregator into a
// single CodeGraph artifact, re-asserting the §3/§8 invariants before
// returning it.
package assembler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fathomlabs/codegraph/internal/cluster"
	"github.com/fathomlabs/codegraph/internal/config"
	"github.com/fathomlabs/codegraph/internal/coreerr"
	"github.com/fathomlabs/codegraph/internal/diagnostics"
	"github.com/fathomlabs/codegraph/internal/discovery"
	"github.com/fathomlabs/codegraph/internal/entrypoint"
	"github.com/fathomlabs/codegraph/internal/extract"
	"github.com/fathomlabs/codegraph/internal/extract/goext"
	"github.com/fathomlabs/codegraph/internal/extract/pyext"
	"github.com/fathomlabs/codegraph/internal/extract/tsext"
	"github.com/fathomlabs/codegraph/internal/model"
	"github.com/fathomlabs/codegraph/internal/reachability"
	"github.com/fathomlabs/codegraph/internal/stats"
)

// Assembler runs the full analysis pipeline for one ResolvedConfig.
type Assembler struct {
	now func() time.Time
}

// New returns an Assembler that stamps Metadata.GeneratedAt with the wall
// clock. Tests construct one directly with a fixed now func instead.
func New() *Assembler {
	return &Assembler{now: time.Now}
}

// extractorFor selects the LanguageExtractor variant for cfg.Language, the
// "boxed variant" §9 describes: the assembler holds the trait, not the
// concrete type.
func extractorFor(lang string) (extract.Extractor, model.Language, error) {
	switch lang {
	case "typescript":
		return tsext.New(), model.LangTypeScript, nil
	case "go":
		return goext.New(), model.LangGo, nil
	case "python":
		return pyext.New(), model.LangPython, nil
	default:
		return nil, "", coreerr.New(coreerr.KindConfigInvalid, fmt.Sprintf("unsupported language %q", lang))
	}
}

// Run executes discovery, extraction, entry-point matching, reachability,
// clustering, and stats aggregation in order, and assembles the result into
// a CodeGraph. It returns the diagnostics sink alongside the graph so the
// driver can drain it to stderr even on a non-fatal path.
func (a *Assembler) Run(ctx context.Context, cfg *config.ResolvedConfig) (*model.CodeGraph, *diagnostics.Sink, error) {
	start := time.Now()
	sink := diagnostics.New()

	if err := ctx.Err(); err != nil {
		return nil, sink, coreerr.Wrap(coreerr.KindCancelled, "assembler: run cancelled before start", err)
	}

	extractor, lang, err := extractorFor(cfg.Language)
	if err != nil {
		return nil, sink, err
	}

	files, err := discovery.Discover(cfg.ProjectRoot, cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, sink, fmt.Errorf("assembler: discover files: %w", err)
	}
	if len(files) == 0 {
		sink.Add(diagnostics.Entry{
			Kind:     diagnostics.KindParseError,
			Severity: diagnostics.SeverityWarning,
			Message:  "no files matched include/exclude patterns",
		})
		graph := a.assembleEmpty(cfg, lang, start, sink)
		return graph, sink, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, sink, coreerr.Wrap(coreerr.KindCancelled, "assembler: cancelled after discovery", err)
	}

	result, err := extractor.Extract(cfg, files, sink)
	if err != nil {
		return nil, sink, fmt.Errorf("assembler: extract %s: %w", lang, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, sink, coreerr.Wrap(coreerr.KindCancelled, "assembler: cancelled after extraction", err)
	}

	nodes := result.Nodes
	edges := result.Edges

	matched := entrypoint.Match(nodes, cfg.EntryPoints, lang, sink)
	entryIDs := sortedKeys(matched)

	// §4.8 determinism ordering: sort nodes/edges before the rest of the
	// pipeline runs, so reachability BFS, clustering, and stats all see
	// the same canonical order the artifact will ship with.
	sortNodes(nodes)
	sortEdges(edges)

	reachability.Classify(nodes, edges, matched)
	clusters := cluster.Build(nodes)
	graphStats := stats.Aggregate(nodes, entryIDs)

	graph := &model.CodeGraph{
		Metadata: model.Metadata{
			GeneratedAt:           a.now(),
			Language:              lang,
			ProjectRoot:           cfg.ProjectRoot,
			AnalysisTimeMs:        time.Since(start).Milliseconds(),
			TotalFiles:            result.FilesAnalyzed,
			TotalFunctions:        len(nodes),
			TotalEdges:            len(edges),
			TotalDeadFunctions:    graphStats.DeadFunctions.Count,
			TotalUnusedParameters: graphStats.UnusedParameters.Count,
			Config:                cfg,
		},
		Nodes:     nodes,
		Edges:     edges,
		EntryNode: model.NewEntryNode(entryIDs),
		Clusters:  clusters,
		Stats:     graphStats,
	}

	if err := checkInvariants(graph); err != nil {
		return nil, sink, err
	}

	return graph, sink, nil
}

// assembleEmpty builds the degenerate artifact for FileDiscoveryEmpty
// (§7: "Non-fatal; produce empty artifact").
func (a *Assembler) assembleEmpty(cfg *config.ResolvedConfig, lang model.Language, start time.Time, sink *diagnostics.Sink) *model.CodeGraph {
	emptyStats := stats.Aggregate(nil, nil)
	return &model.CodeGraph{
		Metadata: model.Metadata{
			GeneratedAt:    a.now(),
			Language:       lang,
			ProjectRoot:    cfg.ProjectRoot,
			AnalysisTimeMs: time.Since(start).Milliseconds(),
			Config:         cfg,
		},
		Nodes:     []model.Node{},
		Edges:     []model.Edge{},
		EntryNode: model.NewEntryNode(nil),
		Clusters:  []model.Cluster{},
		Stats:     emptyStats,
	}
}

// sortNodes and sortEdges implement §4.8's required pre-serialization
// ordering: nodes by id ascending, edges by
// (source, target, callSite.filePath, callSite.line, callSite.column, kind).
func sortNodes(nodes []model.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
}

func sortEdges(edges []model.Edge) {
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		if a.CallSite.FilePath != b.CallSite.FilePath {
			return a.CallSite.FilePath < b.CallSite.FilePath
		}
		if a.CallSite.Line != b.CallSite.Line {
			return a.CallSite.Line < b.CallSite.Line
		}
		if a.CallSite.Column != b.CallSite.Column {
			return a.CallSite.Column < b.CallSite.Column
		}
		return a.Kind < b.Kind
	})
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
