package engine

import (
	"time"

	"github.com/flownet-io/flownet/pkg/flowgraph"
	"github.com/flownet-io/flownet/pkg/pathfinder"
	"github.com/flownet-io/flownet/pkg/resilience"
	"github.com/flownet-io/flownet/pkg/validation"
)

// PathResult is the answer to a path query: one path for the shortest and
// maxflow methods, up to the configured bound for the all method. Found is
// false when the nodes exist but no path connects them.
type PathResult struct {
	Method validation.PathMethod `json:"method"`
	Found  bool                  `json:"found"`
	Paths  []*pathfinder.Path    `json:"paths"`
}

// FindPaths runs a path query with a method selector. Analytic reads run
// against a snapshot, so a long enumeration never blocks or is corrupted by
// a concurrent write.
func (e *Engine) FindPaths(req *validation.PathRequest) (*PathResult, error) {
	start := time.Now()
	method, err := validation.ValidatePathRequest(req)
	if err != nil {
		e.recordQuery("path", "invalid", start)
		return nil, err
	}

	snap := e.graph.Snapshot()
	result := &PathResult{Method: method}

	switch method {
	case validation.MethodShortest:
		path, err := pathfinder.ShortestPath(snap, req.Source, req.Target)
		if err != nil {
			e.recordQuery("path", "error", start)
			return nil, err
		}
		if path != nil {
			result.Found = true
			result.Paths = []*pathfinder.Path{path}
		}
	case validation.MethodMaxFlow:
		path, err := pathfinder.WidestPath(snap, req.Source, req.Target)
		if err != nil {
			e.recordQuery("path", "error", start)
			return nil, err
		}
		if path != nil {
			result.Found = true
			result.Paths = []*pathfinder.Path{path}
		}
	case validation.MethodAll:
		paths, err := pathfinder.AllPaths(snap, req.Source, req.Target, pathfinder.AllPathsOptions{
			MaxResults: e.cfg.Paths.MaxResults,
			MaxDepth:   e.cfg.Paths.MaxDepth,
		})
		if err != nil {
			e.recordQuery("path", "error", start)
			return nil, err
		}
		result.Found = len(paths) > 0
		result.Paths = paths
	}

	e.recordQuery("path", "ok", start)
	return result, nil
}

// Bottlenecks scans every node and returns those qualifying under the
// threshold. A non-positive threshold falls back to the configured default.
func (e *Engine) Bottlenecks(threshold float64) []resilience.BottleneckInfo {
	start := time.Now()
	if threshold <= 0 {
		threshold = e.cfg.Bottleneck.DefaultThreshold
	}
	infos := resilience.FindBottlenecks(e.graph.Snapshot(), threshold, resilience.BottleneckOptions{
		SampleSources: e.cfg.Bottleneck.SampleSources,
	})
	e.recordQuery("bottlenecks", "ok", start)
	return infos
}

// SimulateRemoval reports the structural impact of removing one node. The
// live graph is never mutated.
func (e *Engine) SimulateRemoval(nodeID string) (*resilience.RemovalImpact, error) {
	start := time.Now()
	impact, err := resilience.SimulateRemoval(e.graph.Snapshot(), nodeID)
	if err != nil {
		e.recordQuery("simulate_removal", "not_found", start)
		return nil, err
	}
	e.recordQuery("simulate_removal", "ok", start)
	return impact, nil
}

// FlowMatrix sums direct flow amounts between every ordered pair of the
// given ids.
func (e *Engine) FlowMatrix(ids []string) (*pathfinder.Matrix, error) {
	start := time.Now()
	m, err := pathfinder.FlowMatrix(e.graph.Snapshot(), ids)
	if err != nil {
		e.recordQuery("flow_matrix", "not_found", start)
		return nil, err
	}
	e.recordQuery("flow_matrix", "ok", start)
	return m, nil
}

// GraphStats returns the graph-wide summary.
func (e *Engine) GraphStats() flowgraph.Stats {
	return e.graph.GetStats()
}

// NodeStats returns the derived per-node flow summary.
func (e *Engine) NodeStats(nodeID string) (*flowgraph.FlowStats, error) {
	return e.graph.NodeStats(nodeID)
}

// Nodes lists all known nodes.
func (e *Engine) Nodes() []*flowgraph.Node {
	return e.graph.Nodes()
}

// Inflows lists the flows entering a node; empty for unknown or isolated
// nodes.
func (e *Engine) Inflows(nodeID string) []*flowgraph.Flow {
	return e.graph.Inflows(nodeID)
}

// Outflows lists the flows leaving a node.
func (e *Engine) Outflows(nodeID string) []*flowgraph.Flow {
	return e.graph.Outflows(nodeID)
}

// TopFlows returns the n largest flows by amount.
func (e *Engine) TopFlows(n int) []*flowgraph.Flow {
	return e.graph.TopFlows(n)
}
