package scale

import (
	"fmt"
	"sort"
	"sync"

	"github.com/flownet-io/flownet/pkg/flowgraph"
)

// ScaleNode is one node of the hierarchy. Leaf nodes (level Block, or any
// node without children) carry raw per-entity values; composite nodes carry
// sums over their descendants after Aggregate.
type ScaleNode struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Level    Level   `json:"level"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Bounds   *Bounds `json:"bounds,omitempty"`
	ParentID string  `json:"parent_id,omitempty"`
	ChildIDs []string `json:"children_ids"`

	// EntityID binds a leaf to a graph node; empty for composites.
	EntityID string `json:"entity_id,omitempty"`

	TotalMass   float64 `json:"total_mass"`
	TotalFlow   float64 `json:"total_flow"`
	NodeCount   int     `json:"node_count"`
	KIScore     float64 `json:"ki_score"`
	TopKeymanID string  `json:"top_keyman_id,omitempty"`

	// aggregated marks a composite already reset during the current
	// Aggregate pass.
	aggregated bool
}

// resetAggregates clears the aggregate fields of a composite before its
// children are folded in.
func (n *ScaleNode) resetAggregates() {
	n.TotalMass = 0
	n.TotalFlow = 0
	n.NodeCount = 0
	n.KIScore = 0
	n.TopKeymanID = ""
	n.aggregated = true
}

// Clone creates a copy of the scale node.
func (n *ScaleNode) Clone() *ScaleNode {
	c := *n
	c.ChildIDs = append([]string(nil), n.ChildIDs...)
	if n.Bounds != nil {
		b := *n.Bounds
		c.Bounds = &b
	}
	return &c
}

// Hierarchy is the fixed five-level forest. The parent/child relation is
// enforced structurally: a node's parent must live exactly one level
// coarser, so cycles cannot form.
type Hierarchy struct {
	mu      sync.RWMutex
	nodes   map[string]*ScaleNode
	byLevel [NumLevels][]string
}

// NewHierarchy creates an empty hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{nodes: make(map[string]*ScaleNode)}
}

// Add inserts a scale node. World-level nodes must be parentless; every
// other node needs an existing parent exactly one level coarser.
func (h *Hierarchy) Add(node *ScaleNode) error {
	if !node.Level.Valid() {
		return &flowgraph.GraphError{Op: "Add", Entity: "scale node", ID: node.ID, Cause: flowgraph.ErrInvalidLevel}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.nodes[node.ID]; ok {
		return &flowgraph.GraphError{Op: "Add", Entity: "scale node", ID: node.ID, Cause: flowgraph.ErrDuplicateID}
	}

	if node.Level == LevelWorld {
		if node.ParentID != "" {
			return fmt.Errorf("add scale node %q: world node cannot have a parent", node.ID)
		}
	} else {
		parent, ok := h.nodes[node.ParentID]
		if !ok {
			return &flowgraph.GraphError{Op: "Add", Entity: "scale node", ID: node.ParentID, Cause: flowgraph.ErrScaleNodeNotFound}
		}
		if parent.Level != node.Level-1 {
			return fmt.Errorf("add scale node %q: parent %q is at level %s, want %s",
				node.ID, node.ParentID, parent.Level, node.Level-1)
		}
		parent.ChildIDs = append(parent.ChildIDs, node.ID)
	}

	n := node.Clone()
	n.ChildIDs = nil
	h.nodes[n.ID] = n
	h.byLevel[n.Level] = append(h.byLevel[n.Level], n.ID)
	return nil
}

// Get returns the scale node with the given id.
func (h *Hierarchy) Get(id string) (*ScaleNode, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	node, ok := h.nodes[id]
	if !ok {
		return nil, &flowgraph.GraphError{Op: "Get", Entity: "scale node", ID: id, Cause: flowgraph.ErrScaleNodeNotFound}
	}
	return node.Clone(), nil
}

// AtLevel returns all scale nodes at a level, sorted by id, optionally
// filtered by an inclusive bounding box.
func (h *Hierarchy) AtLevel(level Level, bounds *Bounds) ([]*ScaleNode, error) {
	if !level.Valid() {
		return nil, &flowgraph.GraphError{Op: "AtLevel", Entity: "scale level", ID: level.String(), Cause: flowgraph.ErrInvalidLevel}
	}
	if bounds != nil {
		if err := bounds.Validate(); err != nil {
			return nil, err
		}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := append([]string(nil), h.byLevel[level]...)
	sort.Strings(ids)

	nodes := make([]*ScaleNode, 0, len(ids))
	for _, id := range ids {
		node := h.nodes[id]
		if bounds != nil && !bounds.Contains(node.Lat, node.Lng) {
			continue
		}
		nodes = append(nodes, node.Clone())
	}
	return nodes, nil
}

// InView resolves a zoom value to its level and returns the nodes at that
// level within the bounding box.
func (h *Hierarchy) InView(zoom int, bounds Bounds) ([]*ScaleNode, error) {
	return h.AtLevel(LevelForZoom(zoom), &bounds)
}

// ZoomIn returns the children of a scale node, sorted by id. A leaf yields
// an empty slice, not an error.
func (h *Hierarchy) ZoomIn(id string) ([]*ScaleNode, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	node, ok := h.nodes[id]
	if !ok {
		return nil, &flowgraph.GraphError{Op: "ZoomIn", Entity: "scale node", ID: id, Cause: flowgraph.ErrScaleNodeNotFound}
	}

	ids := append([]string(nil), node.ChildIDs...)
	sort.Strings(ids)
	children := make([]*ScaleNode, 0, len(ids))
	for _, childID := range ids {
		children = append(children, h.nodes[childID].Clone())
	}
	return children, nil
}

// ZoomOut returns the parent of a scale node. A root returns (nil, nil):
// "no parent" is a legitimate answer, not an error.
func (h *Hierarchy) ZoomOut(id string) (*ScaleNode, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	node, ok := h.nodes[id]
	if !ok {
		return nil, &flowgraph.GraphError{Op: "ZoomOut", Entity: "scale node", ID: id, Cause: flowgraph.ErrScaleNodeNotFound}
	}
	if node.ParentID == "" {
		return nil, nil
	}
	parent, ok := h.nodes[node.ParentID]
	if !ok {
		return nil, nil
	}
	return parent.Clone(), nil
}

// PathToRoot walks from a scale node up to its root, starting node first.
func (h *Hierarchy) PathToRoot(id string) ([]*ScaleNode, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	node, ok := h.nodes[id]
	if !ok {
		return nil, &flowgraph.GraphError{Op: "PathToRoot", Entity: "scale node", ID: id, Cause: flowgraph.ErrScaleNodeNotFound}
	}

	path := []*ScaleNode{node.Clone()}
	for node.ParentID != "" {
		parent, ok := h.nodes[node.ParentID]
		if !ok {
			break
		}
		path = append(path, parent.Clone())
		node = parent
	}
	return path, nil
}

// TopKeymanAt returns the scale node with the highest aggregated KI score
// at a level, or nil when the level is empty.
func (h *Hierarchy) TopKeymanAt(level Level) (*ScaleNode, error) {
	nodes, err := h.AtLevel(level, nil)
	if err != nil {
		return nil, err
	}

	var best *ScaleNode
	for _, node := range nodes {
		if best == nil || node.KIScore > best.KIScore {
			best = node
		}
	}
	return best, nil
}

// LevelStats aggregates over all nodes at one level.
type LevelStats struct {
	Level     Level   `json:"level"`
	NodeCount int     `json:"node_count"`
	TotalMass float64 `json:"total_mass"`
	TotalFlow float64 `json:"total_flow"`
	AvgKI     float64 `json:"avg_ki"`
}

// StatsAt summarizes one level of the hierarchy.
func (h *Hierarchy) StatsAt(level Level) (*LevelStats, error) {
	nodes, err := h.AtLevel(level, nil)
	if err != nil {
		return nil, err
	}

	stats := &LevelStats{Level: level, NodeCount: len(nodes)}
	var kiSum float64
	for _, node := range nodes {
		stats.TotalMass += node.TotalMass
		stats.TotalFlow += node.TotalFlow
		kiSum += node.KIScore
	}
	if len(nodes) > 0 {
		stats.AvgKI = kiSum / float64(len(nodes))
	}
	return stats, nil
}
