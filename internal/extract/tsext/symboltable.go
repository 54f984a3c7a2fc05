package tsext

import (
	"path/filepath"
	"strings"
)

// symbolTable indexes every extracted node by (file, localName) and by
// bare name project-wide, and keeps each file's import/export tables so
// resolveCalls can follow re-export alias chains before falling back to a
// bare-name lookup — this extractor's stand-in for a type checker's
// symbol resolution (§4.2.1, §9).
type symbolTable struct {
	units     map[string]*fileUnit
	byLocal   map[string]map[string]string // file -> localName -> nodeID
	byBare    map[string][]string          // bare name -> nodeIDs
	knownFile map[string]bool
	knownID   map[string]bool // every node id, for qualified-name probes
}

func newSymbolTable() *symbolTable {
	return &symbolTable{
		units:     make(map[string]*fileUnit),
		byLocal:   make(map[string]map[string]string),
		byBare:    make(map[string][]string),
		knownFile: make(map[string]bool),
		knownID:   make(map[string]bool),
	}
}

func (t *symbolTable) index(units []*fileUnit) {
	for _, u := range units {
		if u == nil {
			continue
		}
		t.units[u.relPath] = u
		t.knownFile[u.relPath] = true
		local := make(map[string]string, len(u.nodes))
		for _, n := range u.nodes {
			local[n.Name] = n.ID
			t.byBare[n.Name] = append(t.byBare[n.Name], n.ID)
			t.knownID[n.ID] = true
		}
		t.byLocal[u.relPath] = local
	}
}

// resolveImport follows import aliases (and, transitively, re-export
// chains) from fromFile's local import binding localName to the id of the
// node it ultimately names, per §4.2.1's re-export rule.
func (t *symbolTable) resolveImport(fromFile, localName string) (string, bool) {
	u := t.units[fromFile]
	if u == nil {
		return "", false
	}
	for _, imp := range u.imports {
		if imp.localName != localName {
			continue
		}
		targetFile, ok := t.resolveModulePath(fromFile, imp.modulePath)
		if !ok {
			return "", false
		}
		return t.resolveExport(targetFile, imp.importName, 0)
	}
	return "", false
}

func (t *symbolTable) resolveExport(file, name string, depth int) (string, bool) {
	if depth > 10 {
		return "", false
	}
	u := t.units[file]
	if u == nil {
		return "", false
	}
	if target, ok := u.exports[name]; ok {
		if target.reExportFrom != "" {
			nextFile, ok := t.resolveModulePath(file, target.reExportFrom)
			if !ok {
				return "", false
			}
			return t.resolveExport(nextFile, target.reExportName, depth+1)
		}
		if target.reExportName != "" {
			name = target.reExportName
		}
	}
	if id, ok := t.byLocal[file][name]; ok {
		return id, true
	}
	return "", false
}

// resolveModulePath resolves a relative TypeScript import specifier to a
// known project file, probing .ts/.tsx and index-file variants. Bare
// package specifiers (third-party, not starting with "." or "/") are
// out-of-project and never resolve.
func (t *symbolTable) resolveModulePath(fromFile, spec string) (string, bool) {
	if !strings.HasPrefix(spec, ".") {
		return "", false
	}
	base := filepath.ToSlash(filepath.Join(filepath.Dir(fromFile), spec))

	candidates := []string{
		base + ".ts", base + ".tsx",
		base + "/index.ts", base + "/index.tsx",
	}
	for _, c := range candidates {
		if t.knownFile[c] {
			return c, true
		}
	}
	return "", false
}

// resolveBareName is the last-resort fallback: a project-wide scan for any
// node with the given bare name, used when import-alias resolution fails
// (e.g. a namespace-import call, or a name the type checker would resolve
// through re-exports we didn't model).
func (t *symbolTable) resolveBareName(name string) (string, bool) {
	ids := t.byBare[name]
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// localDefinition looks up a name defined directly in file, without
// following imports.
func (t *symbolTable) localDefinition(file, name string) (string, bool) {
	id, ok := t.byLocal[file][name]
	return id, ok
}

// resolveQualified probes for a node id built from file and a dotted
// "ClassName.member" qualifier, used for "this.m()" and "new T()"
// resolution where byLocal is keyed on the member's bare name only.
func (t *symbolTable) resolveQualified(file, qualified string) (string, bool) {
	id := file + ":" + qualified
	if t.knownID[id] {
		return id, true
	}
	return "", false
}

// resolveClassLocation follows localName's import binding in fromFile,
// then any re-export alias chain, to the file and name that ultimately
// define it — used for "new T()" resolution where the class itself isn't
// a modeled node (only its members are), so resolveExport's node-id lookup
// doesn't apply.
func (t *symbolTable) resolveClassLocation(fromFile, localName string) (string, string, bool) {
	u := t.units[fromFile]
	if u == nil {
		return "", "", false
	}
	for _, imp := range u.imports {
		if imp.localName != localName {
			continue
		}
		targetFile, ok := t.resolveModulePath(fromFile, imp.modulePath)
		if !ok {
			return "", "", false
		}
		return t.chaseReexport(targetFile, imp.importName, 0)
	}
	return "", "", false
}

func (t *symbolTable) chaseReexport(file, name string, depth int) (string, string, bool) {
	if depth > 10 {
		return "", "", false
	}
	u := t.units[file]
	if u == nil {
		return "", "", false
	}
	target, ok := u.exports[name]
	if !ok {
		return file, name, true
	}
	if target.reExportFrom != "" {
		nextFile, ok := t.resolveModulePath(file, target.reExportFrom)
		if !ok {
			return "", "", false
		}
		nextName := target.reExportName
		if nextName == "" {
			nextName = name
		}
		return t.chaseReexport(nextFile, nextName, depth+1)
	}
	if target.reExportName != "" {
		return file, target.reExportName, true
	}
	return file, name, true
}
