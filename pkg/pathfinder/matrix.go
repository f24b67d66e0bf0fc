package pathfinder

import (
	"github.com/flownet-io/flownet/pkg/flowgraph"
)

// Matrix holds direct flow totals between an explicit set of nodes.
// Amounts[i][j] is the sum of all flow amounts from IDs[i] to IDs[j].
type Matrix struct {
	IDs     []string    `json:"ids"`
	Amounts [][]float64 `json:"amounts"`
}

// FlowMatrix sums direct flow amounts between every ordered pair of the
// given ids. Only the requested subset is scanned, never the whole graph;
// pairs with no flows stay zero. Unknown ids fail with NodeNotFound.
func FlowMatrix(g *flowgraph.Graph, ids []string) (*Matrix, error) {
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		if !g.HasNode(id) {
			return nil, flowgraph.NodeNotFoundError("FlowMatrix", id)
		}
		index[id] = i
	}

	m := &Matrix{
		IDs:     append([]string(nil), ids...),
		Amounts: make([][]float64, len(ids)),
	}
	for i := range m.Amounts {
		m.Amounts[i] = make([]float64, len(ids))
	}

	for _, id := range ids {
		i := index[id]
		for _, f := range g.Outflows(id) {
			if j, ok := index[f.TargetID]; ok {
				m.Amounts[i][j] += f.Amount
			}
		}
	}
	return m, nil
}

// Amount returns the summed direct flow from one id to another, or zero if
// either id was not part of the requested set.
func (m *Matrix) Amount(from, to string) float64 {
	var fi, ti = -1, -1
	for i, id := range m.IDs {
		if id == from {
			fi = i
		}
		if id == to {
			ti = i
		}
	}
	if fi < 0 || ti < 0 {
		return 0
	}
	return m.Amounts[fi][ti]
}
