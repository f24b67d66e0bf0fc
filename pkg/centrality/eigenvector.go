// Package centrality computes eigenvector centrality over the weighted
// adjacency relation of the flow graph via power iteration.
package centrality

import (
	"math"
	"sort"

	"github.com/flownet-io/flownet/pkg/flowgraph"
)

// Options configures the power iteration. The iteration cap is a
// correctness requirement, not an optimization: the process is not
// guaranteed to converge on all graphs (e.g. bipartite structure).
type Options struct {
	MaxIterations int
	Tolerance     float64
}

// DefaultOptions returns the default iteration configuration.
func DefaultOptions() Options {
	return Options{
		MaxIterations: 100,
		Tolerance:     1e-6,
	}
}

// Result contains eigenvector centrality scores for all nodes.
type Result struct {
	Scores     map[string]float64 // node id -> centrality, normalized to sum 1
	Iterations int                // number of iterations performed
	Converged  bool               // whether max delta dropped below tolerance
}

// RankedNode pairs a node id with its centrality score.
type RankedNode struct {
	NodeID string  `json:"node_id"`
	Score  float64 `json:"score"`
}

// Eigenvector computes eigenvector centrality by power iteration:
// score'[v] = sum over u->v of weight(u,v)*score[u], renormalized to unit
// L1 norm every round, stopping when the max absolute per-node change drops
// below the tolerance or the iteration cap is reached. The pair weight is
// the connection strength (number of distinct flows between the ordered
// pair), independent of flow amount. Isolated nodes get and keep score 0.
func Eigenvector(g *flowgraph.Graph, opts Options) *Result {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultOptions().MaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultOptions().Tolerance
	}

	ids := g.NodeIDs()
	if len(ids) == 0 {
		return &Result{Scores: make(map[string]float64), Converged: true}
	}

	// Pair weights and the set of connected (non-isolated) nodes.
	weight := make(map[string]map[string]float64, len(ids))
	connected := make(map[string]bool, len(ids))
	for _, f := range g.Flows() {
		if f.SourceID == f.TargetID {
			continue
		}
		if weight[f.TargetID] == nil {
			weight[f.TargetID] = make(map[string]float64)
		}
		weight[f.TargetID][f.SourceID]++
		connected[f.SourceID] = true
		connected[f.TargetID] = true
	}

	scores := make(map[string]float64, len(ids))
	initial := 1.0 / float64(len(ids))
	for _, id := range ids {
		if connected[id] {
			scores[id] = initial
		} else {
			scores[id] = 0
		}
	}

	next := make(map[string]float64, len(ids))
	converged := false
	iterations := 0

	for iterations < opts.MaxIterations {
		iterations++

		var sum float64
		for _, id := range ids {
			var s float64
			for source, w := range weight[id] {
				s += w * scores[source]
			}
			next[id] = s
			sum += s
		}

		// All mass drained (e.g. a pure DAG source layer): nothing left to
		// iterate, report the zero vector.
		if sum == 0 {
			for _, id := range ids {
				scores[id] = 0
			}
			break
		}

		maxDiff := 0.0
		for _, id := range ids {
			next[id] /= sum
			if diff := math.Abs(next[id] - scores[id]); diff > maxDiff {
				maxDiff = diff
			}
		}

		scores, next = next, scores

		if maxDiff < opts.Tolerance {
			converged = true
			break
		}
	}

	return &Result{Scores: scores, Iterations: iterations, Converged: converged}
}

// Top returns the n highest-scoring nodes, descending, ties broken by id.
func (r *Result) Top(n int) []RankedNode {
	ranked := make([]RankedNode, 0, len(r.Scores))
	for id, score := range r.Scores {
		ranked = append(ranked, RankedNode{NodeID: id, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].NodeID < ranked[j].NodeID
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
