package engine

import (
	"time"

	"github.com/flownet-io/flownet/pkg/scale"
	"github.com/flownet-io/flownet/pkg/validation"
)

// LevelTable returns metadata and the zoom-range mapping for all five
// levels.
func (e *Engine) LevelTable() []scale.LevelInfo {
	return scale.LevelTable()
}

// AddScaleNode inserts one node into the hierarchy. Seeding the hierarchy
// is external policy; the engine only enforces the forest structure.
func (e *Engine) AddScaleNode(node *scale.ScaleNode) error {
	return e.hierarchy.Add(node)
}

// AggregateHierarchy seeds the leaves from the current keyman index and
// folds mass, flow, counts, and KI bottom-up.
func (e *Engine) AggregateHierarchy() {
	start := time.Now()
	ix := e.ensureIndex()
	e.hierarchy.SeedFromIndex(e.graph.Snapshot(), ix)
	e.hierarchy.Aggregate()
	e.recordQuery("scale_aggregate", "ok", start)
}

// ScaleNodesAt returns the nodes at a level, optionally bounded.
func (e *Engine) ScaleNodesAt(level scale.Level, bounds *scale.Bounds) ([]*scale.ScaleNode, error) {
	return e.hierarchy.AtLevel(level, bounds)
}

// ScaleNodesInView resolves the zoom value to a level and returns the nodes
// inside the validated bounding box.
func (e *Engine) ScaleNodesInView(zoom int, req *validation.BoundsRequest) ([]*scale.ScaleNode, error) {
	if err := validation.ValidateBoundsRequest(req); err != nil {
		return nil, err
	}
	return e.hierarchy.InView(zoom, scale.Bounds{
		MinLat: req.MinLat,
		MinLng: req.MinLng,
		MaxLat: req.MaxLat,
		MaxLng: req.MaxLng,
	})
}

// ScaleNode returns one hierarchy node.
func (e *Engine) ScaleNode(id string) (*scale.ScaleNode, error) {
	return e.hierarchy.Get(id)
}

// ScaleChildren returns the children of a hierarchy node.
func (e *Engine) ScaleChildren(id string) ([]*scale.ScaleNode, error) {
	return e.hierarchy.ZoomIn(id)
}

// ScaleParent returns the parent, or (nil, nil) at a root.
func (e *Engine) ScaleParent(id string) (*scale.ScaleNode, error) {
	return e.hierarchy.ZoomOut(id)
}

// ScalePathToRoot walks from a node up to its root.
func (e *Engine) ScalePathToRoot(id string) ([]*scale.ScaleNode, error) {
	return e.hierarchy.PathToRoot(id)
}

// TopKeymanAt returns the scale node with the highest aggregated KI at a
// level.
func (e *Engine) TopKeymanAt(level scale.Level) (*scale.ScaleNode, error) {
	return e.hierarchy.TopKeymanAt(level)
}

// ScaleStats summarizes one level of the hierarchy.
func (e *Engine) ScaleStats(level scale.Level) (*scale.LevelStats, error) {
	return e.hierarchy.StatsAt(level)
}

// ScaleFlowBetween sums graph flow from one scale node's subtree into
// another's.
func (e *Engine) ScaleFlowBetween(fromID, toID string) (float64, error) {
	return e.hierarchy.FlowBetween(e.graph.Snapshot(), fromID, toID)
}

// ScaleDump returns the subtree under a node, bounded by maxDepth.
func (e *Engine) ScaleDump(id string, maxDepth int) (*scale.DumpNode, error) {
	return e.hierarchy.Dump(id, maxDepth)
}
