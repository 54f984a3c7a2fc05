// Package config loads project configuration from codegraph.yml/.yaml and
// resolves it, together with CLI flag overrides, into a ResolvedConfig: the
// single opaque input the core packages consume (spec §6.2).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fathomlabs/codegraph/internal/coreerr"

	"gopkg.in/yaml.v3"
)

// EntryPointRule is one tagged-union rule recognized by the EntryPointMatcher
// (spec §4.4): exactly one of the four fields is non-empty.
type EntryPointRule struct {
	File      string `yaml:"file,omitempty"`
	Function  string `yaml:"function,omitempty"`
	Decorator string `yaml:"decorator,omitempty"`
	Export    string `yaml:"export,omitempty"`
}

// TypeScriptOptions carries the TypeScript-specific knobs from §6.2.
type TypeScriptOptions struct {
	Tsconfig string `yaml:"tsconfig,omitempty"`
}

// GoOptions carries the Go-specific knobs from §6.2.
type GoOptions struct {
	Module    string   `yaml:"module,omitempty"`
	BuildTags []string `yaml:"buildTags,omitempty"`
}

// PythonOptions carries the Python-specific knobs from §6.2.
type PythonOptions struct {
	PythonVersion string   `yaml:"pythonVersion,omitempty"`
	VenvPath      string   `yaml:"venvPath,omitempty"`
	SourceRoots   []string `yaml:"sourceRoots,omitempty"`
}

// ProjectConfig is the on-disk shape of codegraph.yml/codegraph.yaml.
type ProjectConfig struct {
	Language    string            `yaml:"language,omitempty"`
	Include     []string          `yaml:"include,omitempty"`
	Exclude     []string          `yaml:"exclude,omitempty"`
	EntryPoints []EntryPointRule  `yaml:"entryPoints,omitempty"`
	Output      string            `yaml:"output,omitempty"`
	ProjectRoot string            `yaml:"projectRoot,omitempty"`
	TypeScript  TypeScriptOptions `yaml:"typescript,omitempty"`
	Go          GoOptions         `yaml:"go,omitempty"`
	Python      PythonOptions     `yaml:"python,omitempty"`
}

// ResolvedConfig is the fully-resolved configuration the core packages
// consume: an absolute projectRoot, defaulted include/exclude globs, and the
// merge of codegraph.yml with any CLI flag overrides (spec §6.2, §1).
type ResolvedConfig struct {
	Language    string
	Include     []string
	Exclude     []string
	EntryPoints []EntryPointRule
	Output      string
	ProjectRoot string
	TypeScript  TypeScriptOptions
	Go          GoOptions
	Python      PythonOptions
}

// Load reads codegraph.yml or codegraph.yaml from dir. Returns a zero-value
// config (not an error) if neither file exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"codegraph.yml", "codegraph.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, coreerr.Wrap(coreerr.KindConfigInvalid, fmt.Sprintf("parse %s", path), err)
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}

// Resolve merges a ProjectConfig with CLI overrides into a ResolvedConfig.
// projectRoot is made absolute; language, output, and projectRoot CLI flags
// win over the file when non-empty. Defaults include to "**/*" and exclude
// to common vendor/build directories when the file leaves them empty.
func Resolve(cfg *ProjectConfig, projectRootFlag, languageFlag, outputFlag string) (*ResolvedConfig, error) {
	if cfg == nil {
		cfg = &ProjectConfig{}
	}

	root := cfg.ProjectRoot
	if projectRootFlag != "" {
		root = projectRootFlag
	}
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.KindConfigInvalid, "resolve projectRoot", err)
	}

	language := cfg.Language
	if languageFlag != "" {
		language = languageFlag
	}
	if language == "" {
		return nil, coreerr.New(coreerr.KindConfigInvalid, "language is required (typescript, go, or python)")
	}

	output := cfg.Output
	if outputFlag != "" {
		output = outputFlag
	}
	if output == "" {
		output = "codegraph.json"
	}

	include := cfg.Include
	if len(include) == 0 {
		include = []string{"**/*"}
	}
	exclude := cfg.Exclude
	if len(exclude) == 0 {
		exclude = []string{"**/node_modules/**", "**/.git/**", "**/vendor/**", "**/__pycache__/**", "**/dist/**", "**/build/**"}
	}

	return &ResolvedConfig{
		Language:    language,
		Include:     include,
		Exclude:     exclude,
		EntryPoints: cfg.EntryPoints,
		Output:      output,
		ProjectRoot: absRoot,
		TypeScript:  cfg.TypeScript,
		Go:          cfg.Go,
		Python:      cfg.Python,
	}, nil
}
