// Package artifact implements the ArtifactCodec (spec §6.1): encoding a
// CodeGraph to its versioned JSON wire form and decoding it back, gating
// reads on the document's major schema version.
package artifact

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fathomlabs/codegraph/internal/coreerr"
	"github.com/fathomlabs/codegraph/internal/model"
)

// CurrentVersion is the schema version this codec writes.
const CurrentVersion = "1.0.0"

// SupportedMajor is the only major schema version this codec can read.
const SupportedMajor = "1"

// Encode serializes graph as indented JSON, matching the artifact's exact
// §6.1 top-level shape. graph.Metadata.Version is overwritten with
// CurrentVersion.
func Encode(graph *model.CodeGraph) ([]byte, error) {
	graph.Metadata.Version = CurrentVersion
	data, err := json.MarshalIndent(graph, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("artifact: encode: %w", err)
	}
	return data, nil
}

// Decode parses a CodeGraph document. Unknown fields are silently ignored
// (the default behavior of encoding/json.Unmarshal into a struct); an
// unsupported major schema version fails with SchemaVersionUnsupported.
func Decode(data []byte) (*model.CodeGraph, error) {
	var probe struct {
		Metadata struct {
			Version string `json:"version"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("artifact: decode: probe version: %w", err)
	}
	if err := checkMajorVersion(probe.Metadata.Version); err != nil {
		return nil, err
	}

	var graph model.CodeGraph
	if err := json.Unmarshal(data, &graph); err != nil {
		return nil, fmt.Errorf("artifact: decode: %w", err)
	}
	return &graph, nil
}

func checkMajorVersion(version string) error {
	major := strings.SplitN(version, ".", 2)[0]
	if major == "" {
		return coreerr.New(coreerr.KindSchemaVersionUnsupported, "artifact carries no schema version")
	}
	if _, err := strconv.Atoi(major); err != nil {
		return coreerr.Wrap(coreerr.KindSchemaVersionUnsupported, "malformed schema version "+version, err)
	}
	if major != SupportedMajor {
		return coreerr.New(coreerr.KindSchemaVersionUnsupported, fmt.Sprintf("unsupported schema major version %q (reader supports %q)", major, SupportedMajor))
	}
	return nil
}
