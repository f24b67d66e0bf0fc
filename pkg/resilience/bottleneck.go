package resilience

import (
	"math"
	"sort"

	"github.com/flownet-io/flownet/pkg/flowgraph"
	"github.com/flownet-io/flownet/pkg/pathfinder"
)

// BottleneckInfo is the per-node structural-importance summary.
type BottleneckInfo struct {
	NodeID      string  `json:"node_id"`
	ImpactScore float64 `json:"impact_score"`
	BridgeScore float64 `json:"bridge_score"`
	InNodes     int     `json:"in_nodes"`
	OutNodes    int     `json:"out_nodes"`
	ThroughFlow float64 `json:"through_flow"`
}

// BottleneckOptions configures the bottleneck scan. SampleSources bounds the
// bridge-score approximation: instead of all-pairs shortest paths, paths are
// sampled from that many source nodes.
type BottleneckOptions struct {
	SampleSources int
}

// DefaultBottleneckOptions returns the default scan configuration.
func DefaultBottleneckOptions() BottleneckOptions {
	return BottleneckOptions{SampleSources: 16}
}

// FindBottlenecks scores every node and returns those qualifying as
// bottlenecks: impact_score above the threshold, or fan-in and fan-out both
// greater than 2. Results are sorted by impact score descending, ties by
// node id.
func FindBottlenecks(g *flowgraph.Graph, threshold float64, opts BottleneckOptions) []BottleneckInfo {
	infos := ScoreAll(g, opts)

	bottlenecks := make([]BottleneckInfo, 0)
	for _, info := range infos {
		if info.ImpactScore > threshold || (info.InNodes > 2 && info.OutNodes > 2) {
			bottlenecks = append(bottlenecks, info)
		}
	}
	return bottlenecks
}

// ScoreAll computes BottleneckInfo for every node. impact_score combines
// in-degree, out-degree, and through-flow (min of inflow and outflow totals,
// a proxy for pass-through volume), each normalized against the population
// maximum.
func ScoreAll(g *flowgraph.Graph, opts BottleneckOptions) []BottleneckInfo {
	ids := g.NodeIDs()
	infos := make([]BottleneckInfo, 0, len(ids))

	var maxIn, maxOut, maxThrough float64
	for _, id := range ids {
		inflows := g.Inflows(id)
		outflows := g.Outflows(id)

		inNodes := make(map[string]bool)
		var totalIn float64
		for _, f := range inflows {
			totalIn += f.Amount
			if f.SourceID != id {
				inNodes[f.SourceID] = true
			}
		}
		outNodes := make(map[string]bool)
		var totalOut float64
		for _, f := range outflows {
			totalOut += f.Amount
			if f.TargetID != id {
				outNodes[f.TargetID] = true
			}
		}

		info := BottleneckInfo{
			NodeID:      id,
			InNodes:     len(inNodes),
			OutNodes:    len(outNodes),
			ThroughFlow: math.Min(totalIn, totalOut),
		}
		maxIn = math.Max(maxIn, float64(info.InNodes))
		maxOut = math.Max(maxOut, float64(info.OutNodes))
		maxThrough = math.Max(maxThrough, info.ThroughFlow)
		infos = append(infos, info)
	}

	bridge := bridgeScores(g, ids, opts.SampleSources)

	for i := range infos {
		var score float64
		if maxIn > 0 {
			score += float64(infos[i].InNodes) / maxIn
		}
		if maxOut > 0 {
			score += float64(infos[i].OutNodes) / maxOut
		}
		if maxThrough > 0 {
			score += infos[i].ThroughFlow / maxThrough
		}
		infos[i].ImpactScore = score / 3.0
		infos[i].BridgeScore = bridge[infos[i].NodeID]
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].ImpactScore != infos[j].ImpactScore {
			return infos[i].ImpactScore > infos[j].ImpactScore
		}
		return infos[i].NodeID < infos[j].NodeID
	})
	return infos
}

// bridgeScores approximates betweenness as the fraction of sampled shortest
// paths traversing each node as an interior vertex. One shortest-path tree
// is built per sampled source; sources are the first sampleSources ids in
// sorted order, which keeps the scan deterministic and its cost bounded
// regardless of graph size.
func bridgeScores(g *flowgraph.Graph, ids []string, sampleSources int) map[string]float64 {
	scores := make(map[string]float64, len(ids))
	if sampleSources <= 0 {
		sampleSources = DefaultBottleneckOptions().SampleSources
	}
	sources := ids
	if len(sources) > sampleSources {
		sources = sources[:sampleSources]
	}

	sampledPaths := 0
	for _, src := range sources {
		prev := shortestPathTree(g, src)
		for _, dst := range ids {
			if dst == src {
				continue
			}
			if _, reached := prev[dst]; !reached {
				continue
			}
			sampledPaths++
			// Walk the tree back to src, counting interior nodes only.
			for node := prev[dst]; node != src; node = prev[node] {
				scores[node]++
			}
		}
	}

	if sampledPaths > 0 {
		for node := range scores {
			scores[node] /= float64(sampledPaths)
		}
	}
	return scores
}

// shortestPathTree runs Dijkstra from src under the pathfinder cost function
// and returns the predecessor map (src itself is absent from the map).
func shortestPathTree(g *flowgraph.Graph, src string) map[string]string {
	dist := map[string]float64{src: 0}
	prev := make(map[string]string)
	done := make(map[string]bool)

	type item struct {
		nodeID string
		cost   float64
	}
	queue := []item{{nodeID: src}}

	for len(queue) > 0 {
		// Extract min (simple linear scan; the sample cap keeps this cheap)
		minIdx := 0
		for i := 1; i < len(queue); i++ {
			if queue[i].cost < queue[minIdx].cost {
				minIdx = i
			}
		}
		current := queue[minIdx]
		queue = append(queue[:minIdx], queue[minIdx+1:]...)

		if done[current.nodeID] {
			continue
		}
		done[current.nodeID] = true

		for _, f := range g.Outflows(current.nodeID) {
			if f.TargetID == f.SourceID {
				continue
			}
			newCost := dist[current.nodeID] + pathfinder.EdgeCost(f.Amount)
			old, seen := dist[f.TargetID]
			if !seen || newCost < old {
				dist[f.TargetID] = newCost
				prev[f.TargetID] = current.nodeID
				queue = append(queue, item{nodeID: f.TargetID, cost: newCost})
			}
		}
	}
	return prev
}
