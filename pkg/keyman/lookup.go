package keyman

import (
	"fmt"
	"time"

	"github.com/flownet-io/flownet/pkg/flowgraph"
	"github.com/flownet-io/flownet/pkg/pathfinder"
)

// Index is the computed Keyman Index for one node population. Scores are
// ordered by rank. Lookups are pure filters over the computed set and
// return empty results, not errors, when nothing matches.
type Index struct {
	Scores     []Score
	ComputedAt time.Time

	weights Weights
	byNode  map[string]int
}

// Get returns the score for one node, or false if the node was not part of
// the scored population.
func (ix *Index) Get(nodeID string) (*Score, bool) {
	i, ok := ix.byNode[nodeID]
	if !ok {
		return nil, false
	}
	return &ix.Scores[i], true
}

// Top returns the n highest-ranked scores.
func (ix *Index) Top(n int) []Score {
	if n <= 0 || n > len(ix.Scores) {
		n = len(ix.Scores)
	}
	return append([]Score(nil), ix.Scores[:n]...)
}

// ByType returns all scores carrying the given keyman type, in rank order.
func (ix *Index) ByType(t KeymanType) []Score {
	matches := make([]Score, 0)
	for _, s := range ix.Scores {
		if s.HasType(t) {
			matches = append(matches, s)
		}
	}
	return matches
}

// BySector returns all scores for nodes in the given sector, in rank order.
func (ix *Index) BySector(sector flowgraph.Sector) []Score {
	matches := make([]Score, 0)
	for _, s := range ix.Scores {
		if s.Sector == sector {
			matches = append(matches, s)
		}
	}
	return matches
}

// Stats summarizes the index: score range, average, and the type and
// sector distributions.
type Stats struct {
	Count        int                      `json:"count"`
	MinKI        float64                  `json:"min_ki"`
	MaxKI        float64                  `json:"max_ki"`
	AvgKI        float64                  `json:"avg_ki"`
	TypeCounts   map[string]int           `json:"type_counts"`
	SectorCounts map[string]int           `json:"sector_counts"`
}

// ComputeStats aggregates over the whole index.
func (ix *Index) ComputeStats() Stats {
	stats := Stats{
		Count:        len(ix.Scores),
		TypeCounts:   make(map[string]int),
		SectorCounts: make(map[string]int),
	}
	if stats.Count == 0 {
		return stats
	}

	stats.MinKI = ix.Scores[0].KI
	var sum float64
	for _, s := range ix.Scores {
		if s.KI < stats.MinKI {
			stats.MinKI = s.KI
		}
		if s.KI > stats.MaxKI {
			stats.MaxKI = s.KI
		}
		sum += s.KI
		for _, t := range s.Types {
			stats.TypeCounts[t.String()]++
		}
		stats.SectorCounts[s.Sector.String()]++
	}
	stats.AvgKI = sum / float64(stats.Count)
	return stats
}

// Explanation documents how the KI score is assembled, for the formula
// lookup endpoint.
type Explanation struct {
	Formula    string  `json:"formula"`
	Weights    Weights `json:"weights"`
	Components []string `json:"components"`
}

// Explain returns the scoring formula with the weights in effect.
func (ix *Index) Explain() Explanation {
	w := ix.weights
	return Explanation{
		Formula: fmt.Sprintf("ki_score = %.2f*connectivity + %.2f*flow + %.2f*value", w.Connectivity, w.Flow, w.Value),
		Weights: w,
		Components: []string{
			"connectivity: eigenvector centrality, min-max normalized",
			"flow: total inflow+outflow, min-max normalized",
			"value: declared real value, log10-scaled then min-max normalized",
		},
	}
}

// PathBottleneck finds the bottleneck node along the widest path between
// two nodes: the downstream endpoint of the minimum-capacity flow on that
// path. Returns (nil, nil) when the two nodes are not connected.
func (ix *Index) PathBottleneck(g *flowgraph.Graph, src, dst string) (*Score, error) {
	path, err := pathfinder.WidestPath(g, src, dst)
	if err != nil {
		return nil, err
	}
	if path == nil || len(path.Flows) == 0 {
		return nil, nil
	}

	bottleneckNode := ""
	for i, flowID := range path.Flows {
		f, err := g.GetFlow(flowID)
		if err != nil {
			continue
		}
		if f.Amount == path.MinAmount {
			bottleneckNode = path.Nodes[i+1]
			break
		}
	}
	if bottleneckNode == "" {
		return nil, nil
	}
	if score, ok := ix.Get(bottleneckNode); ok {
		return score, nil
	}
	// Node entered the graph after the index was computed
	return nil, nil
}
