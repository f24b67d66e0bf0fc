package engine

import (
	"time"

	"github.com/flownet-io/flownet/pkg/flowgraph"
	"github.com/flownet-io/flownet/pkg/keyman"
)

// KeymanIndex returns the current keyman index, recomputing it first if any
// mutation invalidated the cache.
func (e *Engine) KeymanIndex() *keyman.Index {
	return e.ensureIndex()
}

// TopKeymen returns the n highest-ranked keyman scores.
func (e *Engine) TopKeymen(n int) []keyman.Score {
	start := time.Now()
	top := e.ensureIndex().Top(n)
	e.recordQuery("keyman_top", "ok", start)
	return top
}

// KeymanDetail returns the full score breakdown for one node, including the
// raw signals for the calculation trace. Unknown nodes report structured
// absence.
func (e *Engine) KeymanDetail(nodeID string) (*keyman.Score, error) {
	start := time.Now()
	score, ok := e.ensureIndex().Get(nodeID)
	if !ok {
		e.recordQuery("keyman_detail", "not_found", start)
		return nil, flowgraph.NodeNotFoundError("KeymanDetail", nodeID)
	}
	e.recordQuery("keyman_detail", "ok", start)
	return score, nil
}

// RemovalRating is the per-node removal impact with its qualitative band.
type RemovalRating struct {
	NodeID string        `json:"node_id"`
	Impact float64       `json:"impact"`
	Rating keyman.Rating `json:"rating"`
}

// KeymanImpact returns the node's removal impact with a qualitative rating
// (critical/high/medium/low at the 0.5/0.3/0.1 thresholds).
func (e *Engine) KeymanImpact(nodeID string) (*RemovalRating, error) {
	score, err := e.KeymanDetail(nodeID)
	if err != nil {
		return nil, err
	}
	return &RemovalRating{
		NodeID: nodeID,
		Impact: score.NetworkImpact,
		Rating: keyman.RateImpact(score.NetworkImpact),
	}, nil
}

// KeymenByType returns all scores carrying the given type; empty when no
// node matches.
func (e *Engine) KeymenByType(t keyman.KeymanType) []keyman.Score {
	return e.ensureIndex().ByType(t)
}

// KeymenBySector returns all scores in the given sector.
func (e *Engine) KeymenBySector(sector flowgraph.Sector) []keyman.Score {
	return e.ensureIndex().BySector(sector)
}

// KeymanStats aggregates the index: type/sector distribution and KI range.
func (e *Engine) KeymanStats() keyman.Stats {
	return e.ensureIndex().ComputeStats()
}

// KeymanFormula documents the scoring formula and the weights in effect.
func (e *Engine) KeymanFormula() keyman.Explanation {
	return e.ensureIndex().Explain()
}

// PathBottleneck finds the bottleneck keyman along the widest path between
// two nodes. Returns (nil, nil) when the nodes are not connected.
func (e *Engine) PathBottleneck(src, dst string) (*keyman.Score, error) {
	start := time.Now()
	ix := e.ensureIndex()
	score, err := ix.PathBottleneck(e.graph.Snapshot(), src, dst)
	if err != nil {
		e.recordQuery("keyman_path_bottleneck", "error", start)
		return nil, err
	}
	e.recordQuery("keyman_path_bottleneck", "ok", start)
	return score, nil
}
