// Package model defines the data types of the code graph artifact: nodes,
// edges, clusters, and the statistics derived from them. Everything here is
// a plain value type; the packages under internal/ that produce and consume
// a CodeGraph never mutate a Node or Edge after extraction except for the
// status/color/isEntryPoint fields that propagation assigns.
package model

import "time"

// Language identifies the source language a LanguageExtractor understands.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangGo         Language = "go"
	LangPython     Language = "python"
)

// NodeKind classifies the syntactic form of a function-like declaration.
type NodeKind string

const (
	KindFunction    NodeKind = "function"
	KindMethod      NodeKind = "method"
	KindConstructor NodeKind = "constructor"
	KindArrow       NodeKind = "arrow"
	KindClosure     NodeKind = "closure"
	KindLambda      NodeKind = "lambda"
	KindInit        NodeKind = "init"
)

// Visibility classifies how broadly a declaration is reachable from outside
// its declaring file.
type Visibility string

const (
	VisibilityExported Visibility = "exported"
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityInternal Visibility = "internal"
	VisibilityModule   Visibility = "module"
)

// Status is the liveness classification assigned by the reachability
// engine.
type Status string

const (
	StatusLive  Status = "live"
	StatusDead  Status = "dead"
	StatusEntry Status = "entry"
)

// Color is a pure function of (Status, len(UnusedParameters) > 0); see the
// lookup table in reachability's colorize.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
)

// EdgeKind classifies the syntactic origin of a call or function-value
// reference.
type EdgeKind string

const (
	EdgeDirect      EdgeKind = "direct"
	EdgeMethod      EdgeKind = "method"
	EdgeInterface   EdgeKind = "interface"
	EdgeConstructor EdgeKind = "constructor"
	EdgeCallback    EdgeKind = "callback"
	EdgeFuncref     EdgeKind = "funcref"
	EdgeVarInit     EdgeKind = "varinit"
	EdgeProvided    EdgeKind = "provided"
	EdgeDynamic     EdgeKind = "dynamic"
)

// DynamicTarget wraps an unresolved call-target expression in the sentinel
// form "[dynamic:<expr>]".
func DynamicTarget(expr string) string {
	return "[dynamic:" + expr + "]"
}

// Parameter describes one declared parameter (or one binding extracted from
// a destructuring pattern, for languages that report those separately).
type Parameter struct {
	Name     string  `json:"name"`
	Type     *string `json:"type,omitempty"`
	IsUsed   bool    `json:"isUsed"`
	Position int     `json:"position"`
}

// Node is a uniquely addressable callable declaration.
type Node struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	QualifiedName    string      `json:"qualifiedName"`
	FilePath         string      `json:"filePath"`
	StartLine        int         `json:"startLine"`
	EndLine          int         `json:"endLine"`
	Language         Language    `json:"language"`
	Kind             NodeKind    `json:"kind"`
	Visibility       Visibility  `json:"visibility"`
	IsEntryPoint     bool        `json:"isEntryPoint"`
	Parameters       []Parameter `json:"parameters"`
	UnusedParameters []string    `json:"unusedParameters"`
	PackageOrModule  string      `json:"packageOrModule"`
	LinesOfCode      int         `json:"linesOfCode"`
	Status           Status      `json:"status"`
	Color            Color       `json:"color"`
	Decorators       []string    `json:"decorators,omitempty"`
}

// CallSite locates the source position of a call or reference.
type CallSite struct {
	FilePath string `json:"filePath"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Edge is a directed call or function-value reference between two nodes.
type Edge struct {
	Source     string   `json:"source"`
	Target     string   `json:"target"`
	CallSite   CallSite `json:"callSite"`
	Kind       EdgeKind `json:"kind"`
	IsResolved bool     `json:"isResolved"`
}

// EntryNodeID is the fixed virtual node id representing external callers.
const EntryNodeID = "__entry__"

// EntryNode is the virtual root every configured or auto-detected entry
// point hangs off of.
type EntryNode struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Targets []string `json:"targets"`
}

// NewEntryNode builds the virtual entry node for a resolved entry-id set.
func NewEntryNode(targets []string) EntryNode {
	return EntryNode{ID: EntryNodeID, Name: "External Callers", Targets: targets}
}

// Cluster groups nodes sharing a directory-derived package/module path.
type Cluster struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	NodeIDs []string `json:"nodeIds"`
	Parent  *string  `json:"parent,omitempty"`
}

// CountStat is a {count, percentage} pair with an optional breakdown.
type CountStat struct {
	Count      int            `json:"count"`
	Percentage float64        `json:"percentage"`
	ByPackage  map[string]int `json:"byPackage,omitempty"`
}

// EntryPointStat summarizes the resolved entry-id set.
type EntryPointStat struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// LargestFunctionEntry is one row of the top-N largest-function report.
type LargestFunctionEntry struct {
	ID          string `json:"id"`
	LinesOfCode int    `json:"linesOfCode"`
}

// GraphStats is the statistics block of the artifact.
type GraphStats struct {
	DeadFunctions    CountStat              `json:"deadFunctions"`
	UnusedParameters CountStat              `json:"unusedParameters"`
	EntryPoints      EntryPointStat         `json:"entryPoints"`
	LargestFunctions []LargestFunctionEntry `json:"largestFunctions"`
}

// Metadata describes the analysis run that produced a CodeGraph.
type Metadata struct {
	Version               string      `json:"version"`
	GeneratedAt           time.Time   `json:"generatedAt"`
	Language              Language    `json:"language"`
	ProjectRoot           string      `json:"projectRoot"`
	AnalysisTimeMs        int64       `json:"analysisTimeMs"`
	TotalFiles            int         `json:"totalFiles"`
	TotalFunctions        int         `json:"totalFunctions"`
	TotalEdges            int         `json:"totalEdges"`
	TotalDeadFunctions    int         `json:"totalDeadFunctions"`
	TotalUnusedParameters int         `json:"totalUnusedParameters"`
	Config                interface{} `json:"config"`
}

// CodeGraph is the complete, self-describing analysis artifact.
type CodeGraph struct {
	Metadata  Metadata  `json:"metadata"`
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
	EntryNode EntryNode `json:"entryNode"`
	Clusters  []Cluster `json:"clusters"`
	Stats     GraphStats `json:"stats"`
}
