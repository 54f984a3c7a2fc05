// Package extract defines the LanguageExtractor contract (spec §4.2) shared
// by the per-language implementations in goext, tsext, and pyext.
package extract

import (
	"github.com/fathomlabs/codegraph/internal/config"
	"github.com/fathomlabs/codegraph/internal/diagnostics"
	"github.com/fathomlabs/codegraph/internal/model"
)

// Result is what every LanguageExtractor implementation returns.
type Result struct {
	Nodes         []model.Node
	Edges         []model.Edge
	FilesAnalyzed int
}

// Extractor is the single trait with per-language implementations (§4.2).
// files are project-relative, forward-slash paths as returned by
// internal/discovery.
type Extractor interface {
	Extract(cfg *config.ResolvedConfig, files []string, sink *diagnostics.Sink) (Result, error)
}
