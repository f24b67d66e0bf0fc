package scale

import (
	"github.com/flownet-io/flownet/pkg/flowgraph"
	"github.com/flownet-io/flownet/pkg/keyman"
)

// SeedFromIndex writes raw per-entity values onto the leaf scale nodes
// bound to graph entities: mass from the entity's declared real value, flow
// from its total inflow+outflow, KI from the keyman index. Leaves without
// an entity binding are left untouched.
func (h *Hierarchy) SeedFromIndex(g *flowgraph.Graph, ix *keyman.Index) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, node := range h.nodes {
		if node.EntityID == "" || len(node.ChildIDs) > 0 {
			continue
		}
		entity, err := g.GetNode(node.EntityID)
		if err != nil {
			continue
		}
		node.TotalMass = entity.RealValue
		node.TotalFlow = 0
		for _, f := range g.Inflows(node.EntityID) {
			node.TotalFlow += f.Amount
		}
		for _, f := range g.Outflows(node.EntityID) {
			node.TotalFlow += f.Amount
		}
		node.NodeCount = 1
		node.TopKeymanID = node.EntityID
		if score, ok := ix.Get(node.EntityID); ok {
			node.KIScore = score.KI
		}
	}
}

// Aggregate folds mass, flow, and node counts bottom-up: each composite's
// totals are the sums over its children, and its KI score is the KI of its
// top-keyman child (not an average). Leaves keep their seeded raw values.
func (h *Hierarchy) Aggregate() {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Finest level first; parents always live one level coarser, so every
	// child is final before its parent is folded.
	for level := LevelBlock; level > LevelWorld; level-- {
		for _, id := range h.byLevel[level] {
			node := h.nodes[id]
			parent, ok := h.nodes[node.ParentID]
			if !ok {
				continue
			}
			if !parent.aggregated {
				parent.resetAggregates()
			}
			parent.TotalMass += node.TotalMass
			parent.TotalFlow += node.TotalFlow
			parent.NodeCount += node.NodeCount
			if node.TopKeymanID != "" && (parent.TopKeymanID == "" || node.KIScore > parent.KIScore) {
				parent.KIScore = node.KIScore
				parent.TopKeymanID = node.TopKeymanID
			}
		}
	}

	for _, node := range h.nodes {
		node.aggregated = false
	}
}

// FlowBetween sums the amounts of all graph flows whose source entity lies
// in the subtree of one scale node and whose target entity lies in the
// subtree of another.
func (h *Hierarchy) FlowBetween(g *flowgraph.Graph, fromID, toID string) (float64, error) {
	fromEntities, err := h.subtreeEntities(fromID)
	if err != nil {
		return 0, err
	}
	toEntities, err := h.subtreeEntities(toID)
	if err != nil {
		return 0, err
	}

	var total float64
	for entity := range fromEntities {
		for _, f := range g.Outflows(entity) {
			if toEntities[f.TargetID] {
				total += f.Amount
			}
		}
	}
	return total, nil
}

// subtreeEntities collects the entity ids bound to leaves under a scale
// node, the node itself included.
func (h *Hierarchy) subtreeEntities(id string) (map[string]bool, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	root, ok := h.nodes[id]
	if !ok {
		return nil, &flowgraph.GraphError{Op: "FlowBetween", Entity: "scale node", ID: id, Cause: flowgraph.ErrScaleNodeNotFound}
	}

	entities := make(map[string]bool)
	stack := []*ScaleNode{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node.EntityID != "" {
			entities[node.EntityID] = true
		}
		for _, childID := range node.ChildIDs {
			if child, ok := h.nodes[childID]; ok {
				stack = append(stack, child)
			}
		}
	}
	return entities, nil
}

// DumpNode is one entry of a bounded recursive hierarchy dump.
type DumpNode struct {
	Node     *ScaleNode  `json:"node"`
	Children []*DumpNode `json:"children,omitempty"`
	Truncated bool       `json:"truncated,omitempty"`
}

// Dump returns the subtree under a scale node down to maxDepth levels
// (maxDepth 1 returns the node alone). The bound is mandatory; a
// non-positive maxDepth defaults to the full five levels. Traversal uses an
// explicit stack, not recursion.
func (h *Hierarchy) Dump(id string, maxDepth int) (*DumpNode, error) {
	if maxDepth <= 0 {
		maxDepth = NumLevels
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	root, ok := h.nodes[id]
	if !ok {
		return nil, &flowgraph.GraphError{Op: "Dump", Entity: "scale node", ID: id, Cause: flowgraph.ErrScaleNodeNotFound}
	}

	result := &DumpNode{Node: root.Clone()}

	type entry struct {
		dump  *DumpNode
		src   *ScaleNode
		depth int
	}
	stack := []entry{{dump: result, src: root, depth: 1}}

	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(e.src.ChildIDs) == 0 {
			continue
		}
		if e.depth >= maxDepth {
			e.dump.Truncated = true
			continue
		}
		for _, childID := range e.src.ChildIDs {
			child, ok := h.nodes[childID]
			if !ok {
				continue
			}
			childDump := &DumpNode{Node: child.Clone()}
			e.dump.Children = append(e.dump.Children, childDump)
			stack = append(stack, entry{dump: childDump, src: child, depth: e.depth + 1})
		}
	}
	return result, nil
}
