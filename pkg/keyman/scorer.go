package keyman

import (
	"math"
	"sort"
	"time"

	"github.com/flownet-io/flownet/pkg/centrality"
	"github.com/flownet-io/flownet/pkg/flowgraph"
	"github.com/flownet-io/flownet/pkg/resilience"
)

// Scorer computes the Keyman Index for a whole node population.
type Scorer struct {
	weights     Weights
	topPartners int
}

// NewScorer creates a scorer with the given weights. Zero-value weights
// fall back to the defaults.
func NewScorer(weights Weights) *Scorer {
	if weights.Sum() == 0 {
		weights = DefaultWeights()
	}
	return &Scorer{weights: weights, topPartners: 5}
}

// Weights returns the configured component weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Compute derives the ranked, classified Keyman Index from the graph and a
// centrality result. Raw signals per node: connectivity = eigenvector
// centrality (degree when the centrality population is all zero), flow =
// total inflow+outflow, value = log-scaled declared real value. Each signal
// is min-max normalized across the population; a zero-variance population
// normalizes to 0 for every node rather than dividing by zero.
func (s *Scorer) Compute(g *flowgraph.Graph, cent *centrality.Result) *Index {
	nodes := g.Nodes()
	scores := make([]Score, 0, len(nodes))

	// Raw signals
	rawConn := make([]float64, len(nodes))
	rawFlow := make([]float64, len(nodes))
	rawValue := make([]float64, len(nodes))
	inflow := make([]float64, len(nodes))
	outflow := make([]float64, len(nodes))

	centAllZero := true
	for _, score := range cent.Scores {
		if score != 0 {
			centAllZero = false
			break
		}
	}

	for i, node := range nodes {
		if centAllZero {
			rawConn[i] = float64(len(g.Inflows(node.ID)) + len(g.Outflows(node.ID)))
		} else {
			rawConn[i] = cent.Scores[node.ID]
		}
		for _, f := range g.Inflows(node.ID) {
			inflow[i] += f.Amount
		}
		for _, f := range g.Outflows(node.ID) {
			outflow[i] += f.Amount
		}
		rawFlow[i] = inflow[i] + outflow[i]
		// Real values span orders of magnitude (individuals to sovereign
		// funds); log-scale before normalization.
		rawValue[i] = math.Log10(1 + node.RealValue)
	}

	normConn := minMaxNormalize(rawConn)
	normFlow := minMaxNormalize(rawFlow)
	normValue := minMaxNormalize(rawValue)

	connThreshold := percentile(rawConn, 0.9)
	inThreshold := percentile(inflow, 0.9)
	outThreshold := percentile(outflow, 0.9)

	totalAmount := g.GetStats().TotalAmount

	for i, node := range nodes {
		score := Score{
			NodeID:          node.ID,
			Name:            node.Name,
			Sector:          node.Sector,
			Connectivity:    normConn[i],
			FlowVolume:      normFlow[i],
			RealValue:       normValue[i],
			RawConnectivity: rawConn[i],
			RawFlow:         rawFlow[i],
			RawValue:        node.RealValue,
			TopPartners:     topPartners(g, node.ID, s.topPartners),
		}
		score.KI = s.weights.Connectivity*score.Connectivity +
			s.weights.Flow*score.FlowVolume +
			s.weights.Value*score.RealValue
		score.NetworkImpact = networkImpact(g, node.ID, totalAmount)

		if rawFlow[i] > 0 || rawConn[i] > 0 {
			if rawConn[i] >= connThreshold && connThreshold > 0 {
				score.Types = append(score.Types, TypeHub)
			}
			if inflow[i] >= inThreshold && inThreshold > 0 {
				score.Types = append(score.Types, TypeSink)
			}
			if outflow[i] >= outThreshold && outThreshold > 0 {
				score.Types = append(score.Types, TypeSource)
			}
			if score.HasType(TypeHub) && (score.HasType(TypeSink) || score.HasType(TypeSource)) {
				score.Types = append(score.Types, TypeBroker)
			}
			if score.NetworkImpact > 0.3 {
				score.Types = append(score.Types, TypeBottleneck)
			}
		}
		scores = append(scores, score)
	}

	// Rank descending by KI, ties by node id for determinism
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].KI != scores[j].KI {
			return scores[i].KI > scores[j].KI
		}
		return scores[i].NodeID < scores[j].NodeID
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}

	return newIndex(scores, s.weights)
}

// networkImpact normalizes a removal simulation against total graph flow:
// 70% weight on the lost-amount fraction, 30% on whether the removal
// disconnects the graph.
func networkImpact(g *flowgraph.Graph, nodeID string, totalAmount float64) float64 {
	impact, err := resilience.SimulateRemoval(g, nodeID)
	if err != nil {
		return 0
	}
	var lostFrac float64
	if totalAmount > 0 {
		lostFrac = impact.LostAmount / totalAmount
	}
	disc := 0.0
	if impact.IsDisconnecting {
		disc = 1.0
	}
	return 0.7*lostFrac + 0.3*disc
}

// topPartners returns the n counterparties exchanging the largest total
// amounts with the node, descending, ties by id.
func topPartners(g *flowgraph.Graph, nodeID string, n int) []Partner {
	amounts := make(map[string]float64)
	for _, f := range g.Inflows(nodeID) {
		if f.SourceID != nodeID {
			amounts[f.SourceID] += f.Amount
		}
	}
	for _, f := range g.Outflows(nodeID) {
		if f.TargetID != nodeID {
			amounts[f.TargetID] += f.Amount
		}
	}

	partners := make([]Partner, 0, len(amounts))
	for id, amount := range amounts {
		partners = append(partners, Partner{NodeID: id, Amount: amount})
	}
	sort.Slice(partners, func(i, j int) bool {
		if partners[i].Amount != partners[j].Amount {
			return partners[i].Amount > partners[j].Amount
		}
		return partners[i].NodeID < partners[j].NodeID
	})
	if n > 0 && n < len(partners) {
		partners = partners[:n]
	}
	return partners
}

// minMaxNormalize scales values to [0,1]. A zero-variance population maps
// to all zeros to avoid division by zero.
func minMaxNormalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// percentile returns the value at the given quantile (0..1) of the sorted
// population, or 0 for an empty population.
func percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(math.Ceil(q*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// newIndex wraps computed scores into a queryable index.
func newIndex(scores []Score, weights Weights) *Index {
	ix := &Index{
		Scores:     scores,
		weights:    weights,
		byNode:     make(map[string]int, len(scores)),
		ComputedAt: time.Now(),
	}
	for i := range scores {
		ix.byNode[scores[i].NodeID] = i
	}
	return ix
}
