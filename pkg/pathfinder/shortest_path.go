package pathfinder

import (
	"container/heap"
	"math"

	"github.com/flownet-io/flownet/pkg/flowgraph"
)

// pqItem is one entry in the Dijkstra priority queue. seq is the insertion
// order of the flow used to reach the node and breaks cost ties
// deterministically.
type pqItem struct {
	nodeID string
	cost   float64
	seq    uint64
}

type costQueue []pqItem

func (q costQueue) Len() int { return len(q) }
func (q costQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].seq < q[j].seq
}
func (q costQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *costQueue) Push(x any) {
	*q = append(*q, x.(pqItem))
}

func (q *costQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[0 : n-1]
	return x
}

// ShortestPath finds the cheapest path from src to dst using Dijkstra's
// algorithm under EdgeCost, so fewer hops win and larger flows break
// near-ties. Parallel flows are each considered
// independently; self-loops are ignored. Returns (nil, nil) when dst is
// unreachable, so callers can distinguish "no path" from an error.
func ShortestPath(g *flowgraph.Graph, src, dst string) (*Path, error) {
	if err := checkEndpoints(g, src, dst); err != nil {
		return nil, err
	}
	if src == dst {
		return &Path{Nodes: []string{src}}, nil
	}

	dist := map[string]float64{src: 0}
	prevNode := make(map[string]string)
	prevFlow := make(map[string]string)
	done := make(map[string]bool)

	pq := &costQueue{{nodeID: src}}
	heap.Init(pq)

	for pq.Len() > 0 {
		current := heap.Pop(pq).(pqItem)
		if done[current.nodeID] {
			continue
		}
		done[current.nodeID] = true

		if current.nodeID == dst {
			break
		}

		for _, f := range g.Outflows(current.nodeID) {
			if f.TargetID == f.SourceID {
				continue
			}
			newCost := dist[current.nodeID] + EdgeCost(f.Amount)
			old, seen := dist[f.TargetID]
			if !seen || newCost < old {
				dist[f.TargetID] = newCost
				prevNode[f.TargetID] = current.nodeID
				prevFlow[f.TargetID] = f.ID
				heap.Push(pq, pqItem{nodeID: f.TargetID, cost: newCost, seq: f.Seq})
			}
		}
	}

	if !done[dst] {
		return nil, nil // No path found
	}
	return buildPath(g, src, dst, prevNode, prevFlow, dist[dst]), nil
}

// buildPath walks the predecessor maps back from dst and assembles the path.
func buildPath(g *flowgraph.Graph, src, dst string, prevNode, prevFlow map[string]string, cost float64) *Path {
	nodes := []string{dst}
	flows := make([]string, 0)
	minAmount := math.Inf(1)

	for node := dst; node != src; node = prevNode[node] {
		flowID := prevFlow[node]
		flows = append(flows, flowID)
		if f, err := g.GetFlow(flowID); err == nil && f.Amount < minAmount {
			minAmount = f.Amount
		}
		nodes = append(nodes, prevNode[node])
	}

	// Reverse into src->dst order
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	for i, j := 0, len(flows)-1; i < j; i, j = i+1, j-1 {
		flows[i], flows[j] = flows[j], flows[i]
	}

	if math.IsInf(minAmount, 1) {
		minAmount = 0
	}
	return &Path{Nodes: nodes, Flows: flows, Cost: cost, MinAmount: minAmount}
}
