// Package cluster implements the ClusterBuilder: grouping nodes by their
// distinct packageOrModule string into a directory-hierarchy tree.
package cluster

import (
	"sort"
	"strings"

	"github.com/fathomlabs/codegraph/internal/model"
)

// Build computes one cluster per distinct packageOrModule value among
// nodes, ordered lexically by id, with label set to the last path segment
// and parent set to the prefix up to the last "/" (or nil at the root).
func Build(nodes []model.Node) []model.Cluster {
	members := make(map[string][]string)
	for _, n := range nodes {
		members[n.PackageOrModule] = append(members[n.PackageOrModule], n.ID)
	}

	ids := make([]string, 0, len(members))
	for pkg := range members {
		ids = append(ids, pkg)
	}
	sort.Strings(ids)

	clusters := make([]model.Cluster, 0, len(ids))
	for _, pkg := range ids {
		nodeIDs := members[pkg]
		sort.Strings(nodeIDs)
		clusters = append(clusters, model.Cluster{
			ID:      pkg,
			Label:   lastSegment(pkg),
			NodeIDs: nodeIDs,
			Parent:  parentOf(pkg),
		})
	}
	return clusters
}

func lastSegment(pkg string) string {
	idx := strings.LastIndex(pkg, "/")
	if idx == -1 {
		return pkg
	}
	return pkg[idx+1:]
}

func parentOf(pkg string) *string {
	idx := strings.LastIndex(pkg, "/")
	if idx == -1 {
		return nil
	}
	prefix := pkg[:idx]
	return &prefix
}
