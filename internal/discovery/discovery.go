// Package discovery implements FileDiscovery (spec §4.1): expanding
// include/exclude globs relative to a project root into a deduplicated,
// ordered list of project-relative file paths.
package discovery

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"

	"github.com/fathomlabs/codegraph/internal/coreerr"

	"github.com/bmatcuk/doublestar"
)

// Discover walks projectRoot, keeps files whose project-relative,
// forward-slash path matches at least one include pattern and no exclude
// pattern, deduplicates symlink targets by canonical path, and returns the
// survivors in first-seen order.
//
// Patterns are doublestar globs (so "**/*.go" matches at any depth), matched
// against the forward-slash relative path from projectRoot.
func Discover(projectRoot string, include, exclude []string) ([]string, error) {
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.KindConfigInvalid, "resolve projectRoot", err)
	}

	var rel []string
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		r, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		rel = append(rel, filepath.ToSlash(r))
		return nil
	})
	if walkErr != nil {
		return nil, coreerr.Wrap(coreerr.KindConfigInvalid, "walk projectRoot", walkErr)
	}
	sort.Strings(rel)

	var matched []string
	for _, r := range rel {
		if !matchesAny(include, r) {
			continue
		}
		if matchesAny(exclude, r) {
			continue
		}
		matched = append(matched, r)
	}

	return dedupeCanonical(absRoot, matched), nil
}

func matchesAny(patterns []string, relPath string) bool {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, relPath)
		if err != nil {
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// dedupeCanonical resolves each relative path's absolute form through
// filepath.EvalSymlinks (falling back to the unresolved path when that
// fails), and drops any path whose canonical
// target has already been seen, preserving first-seen order.
func dedupeCanonical(absRoot string, paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		canon := canonicalize(filepath.Join(absRoot, p))
		if seen[canon] {
			continue
		}
		seen[canon] = true
		out = append(out, p)
	}
	return out
}

func canonicalize(absPath string) string {
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return absPath
	}
	return resolved
}

// ValidatePattern reports whether pattern is a well-formed doublestar glob,
// used by the EntryPointMatcher to drop malformed configured patterns with a
// MatcherGlobInvalid diagnostic instead of failing the whole run.
func ValidatePattern(pattern string) error {
	// Matching against an empty name stops before any character class is
	// parsed, so path.Match, which checks the whole pattern's bracket and
	// escape syntax regardless of the name, catches those first.
	if _, err := path.Match(pattern, ""); err != nil {
		return coreerr.Wrap(coreerr.KindMatcherGlobInvalid, "pattern "+pattern, err)
	}
	_, err := doublestar.Match(pattern, "")
	if err != nil {
		return coreerr.Wrap(coreerr.KindMatcherGlobInvalid, "pattern "+pattern, err)
	}
	return nil
}
