package pathfinder

import (
	"math"

	"github.com/flownet-io/flownet/pkg/flowgraph"
)

// AllPathsOptions bounds the all-paths enumeration. The bounds are a
// correctness requirement, not tuning: unbounded enumeration is
// combinatorially explosive on dense graphs.
type AllPathsOptions struct {
	MaxResults int // maximum number of paths to return
	MaxDepth   int // maximum path length in hops; 0 means |V|
}

// DefaultAllPathsOptions returns the default enumeration bounds.
func DefaultAllPathsOptions() AllPathsOptions {
	return AllPathsOptions{MaxResults: 10}
}

// frame is one level of the explicit DFS stack: the flows leaving the node
// at this depth and a cursor into them.
type frame struct {
	flows []*flowgraph.Flow
	next  int
}

// AllPaths enumerates simple paths from src to dst depth-first, up to
// MaxResults paths and MaxDepth hops. The visited set is per-path, so a
// node may appear on several disjoint branches but never twice within one
// path. Uses an explicit stack rather than recursion so adversarial graphs
// cannot exhaust the goroutine stack.
func AllPaths(g *flowgraph.Graph, src, dst string, opts AllPathsOptions) ([]*Path, error) {
	if err := checkEndpoints(g, src, dst); err != nil {
		return nil, err
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultAllPathsOptions().MaxResults
	}
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = g.NodeCount()
	}

	if src == dst {
		return []*Path{{Nodes: []string{src}}}, nil
	}

	paths := make([]*Path, 0, maxResults)

	nodePath := []string{src}
	flowPath := make([]*flowgraph.Flow, 0, maxDepth)
	onPath := map[string]bool{src: true}
	stack := []*frame{{flows: g.Outflows(src)}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.next >= len(top.flows) || len(paths) >= maxResults {
			// Exhausted this branch (or done): backtrack
			stack = stack[:len(stack)-1]
			last := nodePath[len(nodePath)-1]
			delete(onPath, last)
			nodePath = nodePath[:len(nodePath)-1]
			if len(flowPath) > 0 {
				flowPath = flowPath[:len(flowPath)-1]
			}
			if len(paths) >= maxResults {
				break
			}
			continue
		}

		f := top.flows[top.next]
		top.next++

		if onPath[f.TargetID] {
			continue // would repeat a node within this path
		}

		if f.TargetID == dst {
			paths = append(paths, assemblePath(append(nodePath, dst), append(flowPath, f)))
			continue
		}

		if len(stack) >= maxDepth {
			continue // depth bound reached on this branch
		}

		onPath[f.TargetID] = true
		nodePath = append(nodePath, f.TargetID)
		flowPath = append(flowPath, f)
		stack = append(stack, &frame{flows: g.Outflows(f.TargetID)})
	}

	return paths, nil
}

// assemblePath copies the working path slices into an immutable Path.
func assemblePath(nodes []string, flows []*flowgraph.Flow) *Path {
	p := &Path{
		Nodes:     append([]string(nil), nodes...),
		Flows:     make([]string, 0, len(flows)),
		MinAmount: math.Inf(1),
	}
	for _, f := range flows {
		p.Flows = append(p.Flows, f.ID)
		p.Cost += EdgeCost(f.Amount)
		if f.Amount < p.MinAmount {
			p.MinAmount = f.Amount
		}
	}
	if math.IsInf(p.MinAmount, 1) {
		p.MinAmount = 0
	}
	return p
}
