package cluster

import (
	"testing"

	"github.com/fathomlabs/codegraph/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_GroupsByPackageOrModule(t *testing.T) {
	nodes := []model.Node{
		{ID: "pkg/a.Foo", PackageOrModule: "pkg/a"},
		{ID: "pkg/a.Bar", PackageOrModule: "pkg/a"},
		{ID: "pkg/b.Baz", PackageOrModule: "pkg/b"},
	}

	clusters := Build(nodes)
	require.Len(t, clusters, 2)

	assert.Equal(t, "pkg/a", clusters[0].ID)
	assert.Equal(t, "a", clusters[0].Label)
	assert.Equal(t, []string{"pkg/a.Bar", "pkg/a.Foo"}, clusters[0].NodeIDs)
	require.NotNil(t, clusters[0].Parent)
	assert.Equal(t, "pkg", *clusters[0].Parent)

	assert.Equal(t, "pkg/b", clusters[1].ID)
}

func TestBuild_RootPackageHasNilParent(t *testing.T) {
	nodes := []model.Node{{ID: "main.main", PackageOrModule: "main"}}

	clusters := Build(nodes)
	require.Len(t, clusters, 1)
	assert.Nil(t, clusters[0].Parent)
}

func TestBuild_OrderedLexicallyByID(t *testing.T) {
	nodes := []model.Node{
		{ID: "z.Fn", PackageOrModule: "z"},
		{ID: "a.Fn", PackageOrModule: "a"},
		{ID: "m.Fn", PackageOrModule: "m"},
	}

	clusters := Build(nodes)
	require.Len(t, clusters, 3)
	assert.Equal(t, []string{"a", "m", "z"}, []string{clusters[0].ID, clusters[1].ID, clusters[2].ID})
}
