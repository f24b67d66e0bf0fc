package flowgraph

import (
	"sort"
	"sync"
	"time"
)

// Graph owns the node set and the multiset of directed flows. Mutations take
// the write lock; reads take the read lock. Long-running analytics should
// operate on a Snapshot so they never block behind a writer.
type Graph struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	flows map[string]*Flow
	out   map[string][]*Flow // ordered by insertion
	in    map[string][]*Flow
	seq   uint64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		flows: make(map[string]*Flow),
		out:   make(map[string][]*Flow),
		in:    make(map[string][]*Flow),
	}
}

// AddNode pre-registers a node with explicit attributes. Adding an existing
// id updates its attributes in place (centrality is preserved).
func (g *Graph) AddNode(node *Node) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.nodes[node.ID]; ok {
		existing.Name = node.Name
		existing.Sector = node.Sector
		existing.RealValue = node.RealValue
		return
	}
	n := node.Clone()
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().Unix()
	}
	g.nodes[n.ID] = n
}

// AddFlow inserts a flow, auto-creating missing endpoint nodes with default
// attributes. Fails with ErrInvalidFlowType for types outside the closed set
// and ErrNegativeAmount for negative amounts.
func (g *Graph) AddFlow(flow *Flow) error {
	if !flow.Type.Valid() {
		return &GraphError{Op: "AddFlow", Entity: "flow", ID: flow.ID, Cause: ErrInvalidFlowType}
	}
	if flow.Amount < 0 {
		return &GraphError{Op: "AddFlow", Entity: "flow", ID: flow.ID, Cause: ErrNegativeAmount}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.flows[flow.ID]; ok {
		return &GraphError{Op: "AddFlow", Entity: "flow", ID: flow.ID, Cause: ErrDuplicateID}
	}

	g.ensureNode(flow.SourceID)
	g.ensureNode(flow.TargetID)

	f := *flow
	g.seq++
	f.Seq = g.seq
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now()
	}

	g.flows[f.ID] = &f
	g.out[f.SourceID] = append(g.out[f.SourceID], &f)
	g.in[f.TargetID] = append(g.in[f.TargetID], &f)
	return nil
}

// ensureNode auto-registers an endpoint with default attributes.
// Caller must hold the write lock.
func (g *Graph) ensureNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &Node{
		ID:        id,
		Name:      id,
		Sector:    SectorUnknown,
		CreatedAt: time.Now().Unix(),
	}
}

// RemoveFlow removes a flow by id. Returns (false, ErrFlowNotFound) if the
// flow is absent, so removal is idempotent from the caller's point of view.
func (g *Graph) RemoveFlow(id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	flow, ok := g.flows[id]
	if !ok {
		return false, FlowNotFoundError("RemoveFlow", id)
	}

	delete(g.flows, id)
	g.out[flow.SourceID] = removeFlowRef(g.out[flow.SourceID], id)
	g.in[flow.TargetID] = removeFlowRef(g.in[flow.TargetID], id)
	return true, nil
}

// RemoveNode removes a node and all incident flows.
func (g *Graph) RemoveNode(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; !ok {
		return NodeNotFoundError("RemoveNode", id)
	}

	for _, f := range g.out[id] {
		delete(g.flows, f.ID)
		g.in[f.TargetID] = removeFlowRef(g.in[f.TargetID], f.ID)
	}
	for _, f := range g.in[id] {
		// Self-loops were already dropped from g.flows above.
		delete(g.flows, f.ID)
		g.out[f.SourceID] = removeFlowRef(g.out[f.SourceID], f.ID)
	}
	delete(g.out, id)
	delete(g.in, id)
	delete(g.nodes, id)
	return nil
}

func removeFlowRef(flows []*Flow, id string) []*Flow {
	for i, f := range flows {
		if f.ID == id {
			return append(flows[:i], flows[i+1:]...)
		}
	}
	return flows
}

// GetNode returns the node with the given id.
func (g *Graph) GetNode(id string) (*Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, ok := g.nodes[id]
	if !ok {
		return nil, NodeNotFoundError("GetNode", id)
	}
	return node.Clone(), nil
}

// HasNode reports whether a node exists.
func (g *Graph) HasNode(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// GetFlow returns the flow with the given id.
func (g *Graph) GetFlow(id string) (*Flow, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	flow, ok := g.flows[id]
	if !ok {
		return nil, FlowNotFoundError("GetFlow", id)
	}
	return flow, nil
}

// Nodes returns all nodes sorted by id for deterministic iteration.
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n.Clone())
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// NodeIDs returns all node ids sorted ascending.
func (g *Graph) NodeIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Flows returns all flows in insertion order.
func (g *Graph) Flows() []*Flow {
	g.mu.RLock()
	defer g.mu.RUnlock()

	flows := make([]*Flow, 0, len(g.flows))
	for _, f := range g.flows {
		flows = append(flows, f)
	}
	sort.Slice(flows, func(i, j int) bool { return flows[i].Seq < flows[j].Seq })
	return flows
}

// Outflows returns the flows leaving a node in insertion order. Returns an
// empty slice (not an error) for nodes with no outgoing flows.
func (g *Graph) Outflows(id string) []*Flow {
	g.mu.RLock()
	defer g.mu.RUnlock()

	flows := make([]*Flow, len(g.out[id]))
	copy(flows, g.out[id])
	return flows
}

// Inflows returns the flows entering a node in insertion order. Returns an
// empty slice (not an error) for nodes with no incoming flows.
func (g *Graph) Inflows(id string) []*Flow {
	g.mu.RLock()
	defer g.mu.RUnlock()

	flows := make([]*Flow, len(g.in[id]))
	copy(flows, g.in[id])
	return flows
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// FlowCount returns the number of flows.
func (g *Graph) FlowCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.flows)
}

// SetCentrality writes computed centrality scores back onto the nodes.
// Nodes missing from the map keep their previous value.
func (g *Graph) SetCentrality(scores map[string]float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for id, score := range scores {
		if node, ok := g.nodes[id]; ok {
			node.Centrality = score
		}
	}
}

// Snapshot returns a deep copy of the graph. Flow structs are shared since
// they are immutable after insertion; nodes and adjacency are copied, so the
// snapshot can be mutated (e.g. by removal simulation) without affecting the
// live graph.
func (g *Graph) Snapshot() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snap := &Graph{
		nodes: make(map[string]*Node, len(g.nodes)),
		flows: make(map[string]*Flow, len(g.flows)),
		out:   make(map[string][]*Flow, len(g.out)),
		in:    make(map[string][]*Flow, len(g.in)),
		seq:   g.seq,
	}
	for id, n := range g.nodes {
		snap.nodes[id] = n.Clone()
	}
	for id, f := range g.flows {
		snap.flows[id] = f
	}
	for id, flows := range g.out {
		snap.out[id] = append([]*Flow(nil), flows...)
	}
	for id, flows := range g.in {
		snap.in[id] = append([]*Flow(nil), flows...)
	}
	return snap
}
