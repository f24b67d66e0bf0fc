// Package pathfinder implements path search over the flow graph: amount-
// weighted shortest path, widest ("max-flow") path, bounded all-paths
// enumeration, and pairwise flow matrices.
package pathfinder

import (
	"github.com/flownet-io/flownet/pkg/flowgraph"
)

// Path is one path through the graph. Flows holds the id of the flow taken
// at each hop, so len(Flows) == len(Nodes)-1.
type Path struct {
	Nodes     []string `json:"nodes"`
	Flows     []string `json:"flows"`
	Cost      float64  `json:"cost"`
	MinAmount float64  `json:"min_amount"`
}

// EdgeCost converts a flow amount into a traversal cost: a base hop cost
// plus an inverse-amount term, so shorter paths win and larger flows are
// "closer" among paths of equal length. The +1 keeps the cost finite for
// zero-amount flows. The exact function is policy, not contract (callers
// should only rely on it being positive and monotonically decreasing in
// amount).
func EdgeCost(amount float64) float64 {
	return 1.0 + 1.0/(amount+1.0)
}

// checkEndpoints validates that both endpoints exist.
func checkEndpoints(g *flowgraph.Graph, src, dst string) error {
	if !g.HasNode(src) {
		return flowgraph.NodeNotFoundError("Path", src)
	}
	if !g.HasNode(dst) {
		return flowgraph.NodeNotFoundError("Path", dst)
	}
	return nil
}
