// Package tsext implements the TypeScript LanguageExtractor (spec §4.2.1)
// with github.com/tree-sitter/go-tree-sitter over the TypeScript grammar.
// In place of the host TypeScript compiler's type checker (not available
// from Go), call resolution walks a project-wide symbol table built from a
// first pass over every file, following import/re-export alias chains
// before falling back to a bare-name lookup — the language-specific symbol
// facility that stands in for a type checker here.
package tsext

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fathomlabs/codegraph/internal/config"
	"github.com/fathomlabs/codegraph/internal/diagnostics"
	"github.com/fathomlabs/codegraph/internal/extract"
	"github.com/fathomlabs/codegraph/internal/model"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	"golang.org/x/sync/errgroup"
)

// Extractor implements extract.Extractor for TypeScript source trees.
type Extractor struct{}

// New returns a TypeScript LanguageExtractor.
func New() *Extractor { return &Extractor{} }

// fileUnit is the intermediate per-file parse result produced by pass 1,
// carried into pass 2 so the tree is walked only once per file.
type fileUnit struct {
	relPath string
	source  []byte
	tree    *tree_sitter.Tree
	nodes   []model.Node
	imports []importSpec
	exports map[string]exportTarget // local export name -> target
}

// importSpec is one named import binding: "import { foo as bar } from './a'".
type importSpec struct {
	localName  string
	importName string
	modulePath string
}

// exportTarget is what a local export name resolves to: reExportName is
// the name to look up (locally, or in reExportFrom when that's set for
// "export { x } from './other'").
type exportTarget struct {
	reExportFrom string
	reExportName string
}

func (e *Extractor) Extract(cfg *config.ResolvedConfig, files []string, sink *diagnostics.Sink) (extract.Result, error) {
	lang := tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())

	tsFiles := filterTSFiles(files)
	units := make([]*fileUnit, len(tsFiles))

	var g errgroup.Group
	for i, rel := range tsFiles {
		i, rel := i, rel
		g.Go(func() error {
			unit, err := parseFile(lang, cfg.ProjectRoot, rel)
			if err != nil {
				sink.Warnf(diagnostics.KindParseError, rel, 0, "parse: %v", err)
				return nil
			}
			units[i] = unit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return extract.Result{}, fmt.Errorf("tsext: %w", err)
	}

	table := newSymbolTable()
	var wg errgroup.Group
	for _, u := range units {
		if u == nil {
			continue
		}
		u := u
		wg.Go(func() error {
			u.nodes, u.imports, u.exports = extractFile(u.tree.RootNode(), u.source, u.relPath)
			return nil
		})
	}
	_ = wg.Wait()

	// Merge nodes in file order once every goroutine above has finished, so
	// the resulting slice is deterministic regardless of goroutine
	// completion order (§8 invariant 8).
	var allNodes []model.Node
	for _, u := range units {
		if u == nil {
			continue
		}
		allNodes = append(allNodes, u.nodes...)
	}

	table.index(units)

	edgesByUnit := make([][]model.Edge, len(units))
	var eg errgroup.Group
	for i, u := range units {
		if u == nil {
			continue
		}
		i, u := i, u
		eg.Go(func() error {
			edgesByUnit[i] = resolveCalls(u, table)
			u.tree.Close()
			return nil
		})
	}
	_ = eg.Wait()

	var allEdges []model.Edge
	for _, edges := range edgesByUnit {
		allEdges = append(allEdges, edges...)
	}

	return extract.Result{Nodes: allNodes, Edges: allEdges, FilesAnalyzed: len(tsFiles)}, nil
}

func filterTSFiles(files []string) []string {
	var out []string
	for _, f := range files {
		switch filepath.Ext(f) {
		case ".ts", ".tsx":
			if strings.HasSuffix(f, ".d.ts") {
				continue
			}
			out = append(out, f)
		}
	}
	return out
}

func parseFile(lang *tree_sitter.Language, projectRoot, relPath string) (*fileUnit, error) {
	source, err := os.ReadFile(filepath.Join(projectRoot, relPath))
	if err != nil {
		return nil, err
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang); err != nil {
		return nil, err
	}
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree for %s", relPath)
	}

	return &fileUnit{relPath: relPath, source: source, tree: tree}, nil
}
