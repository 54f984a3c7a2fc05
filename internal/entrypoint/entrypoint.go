// Package entrypoint implements the EntryPointMatcher (spec §4.4): applying
// configured rules plus per-language auto-detection to produce the set of
// node ids that the ReachabilityEngine treats as live roots.
package entrypoint

import (
	"strings"

	"github.com/fathomlabs/codegraph/internal/config"
	"github.com/fathomlabs/codegraph/internal/diagnostics"
	"github.com/fathomlabs/codegraph/internal/discovery"
	"github.com/fathomlabs/codegraph/internal/model"

	"github.com/bmatcuk/doublestar"
)

// Match returns the union of every node id matched by a configured rule or
// by the language's auto-detection rule, and sets IsEntryPoint on the
// matched nodes in place. Malformed glob patterns are dropped with a
// MatcherGlobInvalid diagnostic; matching continues with the remaining
// rules.
func Match(nodes []model.Node, rules []config.EntryPointRule, lang model.Language, sink *diagnostics.Sink) map[string]bool {
	matched := make(map[string]bool)

	for _, rule := range rules {
		applyRule(nodes, rule, matched, sink)
	}

	for i := range nodes {
		if autoDetect(nodes[i], lang) {
			matched[nodes[i].ID] = true
		}
	}

	for i := range nodes {
		if matched[nodes[i].ID] {
			nodes[i].IsEntryPoint = true
		}
	}

	return matched
}

func applyRule(nodes []model.Node, rule config.EntryPointRule, matched map[string]bool, sink *diagnostics.Sink) {
	switch {
	case rule.File != "":
		matchGlobRule(nodes, rule.File, matched, sink)
	case rule.Export != "":
		matchGlobRule(nodes, rule.Export, matched, sink)
	case rule.Function != "":
		for _, n := range nodes {
			if n.Name == rule.Function || n.QualifiedName == rule.Function || n.ID == rule.Function {
				matched[n.ID] = true
			}
		}
	case rule.Decorator != "":
		for _, n := range nodes {
			for _, d := range n.Decorators {
				if d == rule.Decorator || strings.Contains(d, rule.Decorator) {
					matched[n.ID] = true
					break
				}
			}
		}
	}
}

func matchGlobRule(nodes []model.Node, pattern string, matched map[string]bool, sink *diagnostics.Sink) {
	if err := discovery.ValidatePattern(pattern); err != nil {
		sink.Warnf(diagnostics.KindMatcherGlob, "", 0, "entry point glob %q is malformed: %v", pattern, err)
		return
	}
	for _, n := range nodes {
		if n.Visibility != model.VisibilityExported {
			continue
		}
		ok, err := doublestar.Match(pattern, n.FilePath)
		if err == nil && ok {
			matched[n.ID] = true
		}
	}
}

func autoDetect(n model.Node, lang model.Language) bool {
	if n.IsEntryPoint {
		// Already tagged by the extractor itself: goext applies its own
		// main-must-be-package-main, init, Test/Benchmark/Example rule at
		// extraction time, and the Python decorator heuristic / var-init
		// entry marker do the same for their languages.
		return true
	}
	switch lang {
	case model.LangPython:
		return n.Name == "__main__"
	default:
		return false
	}
}
