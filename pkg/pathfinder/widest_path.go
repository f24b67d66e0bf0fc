package pathfinder

import (
	"container/heap"
	"math"

	"github.com/flownet-io/flownet/pkg/flowgraph"
)

// widthQueue is a max-heap over path widths: the comparator is the reverse
// of the shortest-path queue because we maximize the bottleneck capacity.
type widthQueue []pqItem

func (q widthQueue) Len() int { return len(q) }
func (q widthQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost > q[j].cost
	}
	return q[i].seq < q[j].seq
}
func (q widthQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *widthQueue) Push(x any) {
	*q = append(*q, x.(pqItem))
}

func (q *widthQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[0 : n-1]
	return x
}

// WidestPath finds the path from src to dst that maximizes the minimum flow
// amount along it (the bottleneck capacity). This is the single
// representative "max flow path", not a full multi-path flow value. Returns
// (nil, nil) when dst is unreachable.
func WidestPath(g *flowgraph.Graph, src, dst string) (*Path, error) {
	if err := checkEndpoints(g, src, dst); err != nil {
		return nil, err
	}
	if src == dst {
		return &Path{Nodes: []string{src}}, nil
	}

	width := map[string]float64{src: math.Inf(1)}
	prevNode := make(map[string]string)
	prevFlow := make(map[string]string)
	done := make(map[string]bool)

	pq := &widthQueue{{nodeID: src, cost: math.Inf(1)}}
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
			newWidth := math.Min(width[current.nodeID], f.Amount)
			old, seen := width[f.TargetID]
			if !seen || newWidth > old {
				width[f.TargetID] = newWidth
				prevNode[f.TargetID] = current.nodeID
				prevFlow[f.TargetID] = f.ID
				heap.Push(pq, pqItem{nodeID: f.TargetID, cost: newWidth, seq: f.Seq})
			}
		}
	}

	if !done[dst] {
		return nil, nil // No path found
	}

	path := buildPath(g, src, dst, prevNode, prevFlow, 0)
	path.MinAmount = width[dst]
	for _, flowID := range path.Flows {
		if f, err := g.GetFlow(flowID); err == nil {
			path.Cost += EdgeCost(f.Amount)
		}
	}
	return path, nil
}
