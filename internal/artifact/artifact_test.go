package artifact

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fathomlabs/codegraph/internal/coreerr"
	"github.com/fathomlabs/codegraph/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() *model.CodeGraph {
	return &model.CodeGraph{
		Metadata: model.Metadata{
			Language:    model.LangGo,
			ProjectRoot: "/repo",
			GeneratedAt: time.Unix(0, 0).UTC(),
		},
		Nodes:     []model.Node{{ID: "pkg.Foo", Name: "Foo"}},
		Edges:     []model.Edge{{Source: "pkg.Foo", Target: "pkg.Bar", Kind: model.EdgeDirect, IsResolved: true}},
		EntryNode: model.NewEntryNode([]string{"pkg.Foo"}),
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	data, err := Encode(sampleGraph())
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, got.Metadata.Version)
	assert.Equal(t, "pkg.Foo", got.Nodes[0].ID)
	assert.Equal(t, model.EntryNodeID, got.EntryNode.ID)
}

func TestEncode_SetsCurrentVersion(t *testing.T) {
	data, err := Encode(sampleGraph())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	meta := doc["metadata"].(map[string]any)
	assert.Equal(t, CurrentVersion, meta["version"])
}

func TestDecode_UnsupportedMajorVersionFails(t *testing.T) {
	data := []byte(`{"metadata":{"version":"2.0.0"}}`)

	_, err := Decode(data)
	require.Error(t, err)
	assert.True(t, coreerr.Is(err, coreerr.KindSchemaVersionUnsupported))
}

func TestDecode_UnknownFieldsIgnored(t *testing.T) {
	data := []byte(`{"metadata":{"version":"1.0.0"},"nodes":[],"futureField":"ignored"}`)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, got.Nodes)
}
