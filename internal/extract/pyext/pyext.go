// Package pyext implements the Python LanguageExtractor (spec §4.2.3) by
// walking the tree-sitter Python grammar directly, rather than shelling out
// to a Python interpreter: full type resolution is never attempted, and
// call resolution is best-effort by exact id, then bare name, then a
// dotted-method short-name scan.
package pyext

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fathomlabs/codegraph/internal/config"
	"github.com/fathomlabs/codegraph/internal/diagnostics"
	"github.com/fathomlabs/codegraph/internal/extract"
	"github.com/fathomlabs/codegraph/internal/model"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	"golang.org/x/sync/errgroup"
)

// Extractor implements extract.Extractor for Python source trees.
type Extractor struct{}

// New returns a Python LanguageExtractor.
func New() *Extractor { return &Extractor{} }

type pyUnit struct {
	relPath string
	source  []byte
	tree    *tree_sitter.Tree
	nodes   []model.Node
}

func (e *Extractor) Extract(cfg *config.ResolvedConfig, files []string, sink *diagnostics.Sink) (extract.Result, error) {
	lang := tree_sitter.NewLanguage(tree_sitter_python.Language())

	pyFiles := filterPyFiles(files)
	units := make([]*pyUnit, len(pyFiles))

	var pg errgroup.Group
	for i, rel := range pyFiles {
		i, rel := i, rel
		pg.Go(func() error {
			u, err := parsePyFile(lang, cfg.ProjectRoot, rel)
			if err != nil {
				sink.Warnf(diagnostics.KindParseError, rel, 0, "parse: %v", err)
				return nil
			}
			units[i] = u
			return nil
		})
	}
	if err := pg.Wait(); err != nil {
		return extract.Result{}, fmt.Errorf("pyext: %w", err)
	}

	// Pass 1: extract every node from every file in parallel, but merge into
	// the func map in file order afterward so a bare-name collision between
	// files resolves deterministically (mirroring analyze.py's sequential
	// "for file_path in files" merge order).
	var ng errgroup.Group
	for _, u := range units {
		if u == nil {
			continue
		}
		u := u
		ng.Go(func() error {
			u.nodes = extractNodes(u.tree.RootNode(), u.source, u.relPath)
			return nil
		})
	}
	_ = ng.Wait()

	funcMap := map[string]model.Node{}
	var allNodes []model.Node
	for _, u := range units {
		if u == nil {
			continue
		}
		for _, n := range u.nodes {
			funcMap[n.ID] = n
			funcMap[n.Name] = n
		}
		allNodes = append(allNodes, u.nodes...)
	}

	// Pass 2: resolve calls against the now-complete func map.
	var allEdges []model.Edge
	var edgeMu sync.Mutex
	var eg errgroup.Group
	for _, u := range units {
		if u == nil {
			continue
		}
		u := u
		eg.Go(func() error {
			edges := extractEdges(u.tree.RootNode(), u.source, u.relPath, funcMap)
			edgeMu.Lock()
			allEdges = append(allEdges, edges...)
			edgeMu.Unlock()
			u.tree.Close()
			return nil
		})
	}
	_ = eg.Wait()

	return extract.Result{Nodes: allNodes, Edges: allEdges, FilesAnalyzed: len(pyFiles)}, nil
}

func filterPyFiles(files []string) []string {
	var out []string
	for _, f := range files {
		if filepath.Ext(f) == ".py" {
			out = append(out, f)
		}
	}
	return out
}

func parsePyFile(lang *tree_sitter.Language, projectRoot, relPath string) (*pyUnit, error) {
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
	return &pyUnit{relPath: relPath, source: source, tree: tree}, nil
}

func isDunderPrefixedNotSuffixed(name string) bool {
	return strings.HasPrefix(name, "__") && !strings.HasSuffix(name, "__")
}
