package flowgraph

import (
	"container/heap"
	"sort"
)

// GetStats returns the graph-wide summary.
func (g *Graph) GetStats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	stats := Stats{
		NodeCount: len(g.nodes),
		FlowCount: len(g.flows),
		ByType:    make(map[FlowType]float64),
	}
	for _, f := range g.flows {
		stats.TotalAmount += f.Amount
		stats.ByType[f.Type] += f.Amount
	}
	return stats
}

// NodeStats computes the derived flow summary for one node. The dominant
// source/target is the counterparty contributing the largest total amount,
// ties broken by id for determinism.
func (g *Graph) NodeStats(id string) (*FlowStats, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.nodes[id]; !ok {
		return nil, NodeNotFoundError("NodeStats", id)
	}

	stats := &FlowStats{
		NodeID: id,
		ByType: make(map[FlowType]float64),
	}

	bySource := make(map[string]float64)
	for _, f := range g.in[id] {
		stats.TotalIn += f.Amount
		stats.InCount++
		stats.ByType[f.Type] += f.Amount
		bySource[f.SourceID] += f.Amount
	}

	byTarget := make(map[string]float64)
	for _, f := range g.out[id] {
		stats.TotalOut += f.Amount
		stats.OutCount++
		stats.ByType[f.Type] += f.Amount
		byTarget[f.TargetID] += f.Amount
	}

	stats.Net = stats.TotalIn - stats.TotalOut
	stats.DominantSource = dominantCounterparty(bySource)
	stats.DominantTarget = dominantCounterparty(byTarget)
	return stats, nil
}

func dominantCounterparty(amounts map[string]float64) string {
	ids := make([]string, 0, len(amounts))
	for id := range amounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	best := ""
	bestAmount := -1.0
	for _, id := range ids {
		if amounts[id] > bestAmount {
			best = id
			bestAmount = amounts[id]
		}
	}
	return best
}

// flowHeap implements a min-heap over flows by amount, used to track the
// top N flows without sorting the whole multiset.
type flowHeap []*Flow

func (h flowHeap) Len() int           { return len(h) }
func (h flowHeap) Less(i, j int) bool { return h[i].Amount < h[j].Amount }
func (h flowHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *flowHeap) Push(x any) {
	*h = append(*h, x.(*Flow))
}

func (h *flowHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// TopFlows returns the n largest flows by amount, descending. Ties are
// broken by insertion order.
func (g *Graph) TopFlows(n int) []*Flow {
	if n <= 0 {
		return nil
	}

	g.mu.RLock()
	h := make(flowHeap, 0, n)
	heap.Init(&h)
	for _, f := range g.flows {
		if h.Len() < n {
			heap.Push(&h, f)
		} else if f.Amount > h[0].Amount {
			heap.Pop(&h)
			heap.Push(&h, f)
		}
	}
	g.mu.RUnlock()

	result := make([]*Flow, h.Len())
	for i := h.Len() - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(*Flow)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Amount != result[j].Amount {
			return result[i].Amount > result[j].Amount
		}
		return result[i].Seq < result[j].Seq
	})
	return result
}
