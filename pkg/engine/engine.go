// Package engine is the query/mutation surface of the flow-graph analytics
// engine. It owns the graph, the scale hierarchy, and the cached
// centrality/keyman results, and recomputes those caches on demand behind a
// dirty flag set by every mutation.
package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flownet-io/flownet/pkg/centrality"
	"github.com/flownet-io/flownet/pkg/config"
	"github.com/flownet-io/flownet/pkg/flowgraph"
	"github.com/flownet-io/flownet/pkg/keyman"
	"github.com/flownet-io/flownet/pkg/logging"
	"github.com/flownet-io/flownet/pkg/metrics"
	"github.com/flownet-io/flownet/pkg/scale"
	"github.com/flownet-io/flownet/pkg/validation"
)

// Engine wires the analytic components behind one explicit object; there is
// no package-level state, so each process or test constructs its own.
type Engine struct {
	graph     *flowgraph.Graph
	hierarchy *scale.Hierarchy
	cfg       *config.Config
	log       logging.Logger
	metrics   *metrics.Registry

	// mu guards the cached analytic results and the dirty flag.
	mu         sync.Mutex
	dirty      bool
	centrality *centrality.Result
	index      *keyman.Index
}

// Option customizes engine construction.
type Option func(*Engine)

// WithLogger sets the logger (default: JSON to stdout).
func WithLogger(log logging.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMetrics sets the metrics registry (default: none).
func WithMetrics(reg *metrics.Registry) Option {
	return func(e *Engine) { e.metrics = reg }
}

// WithConfig sets the engine policy (default: config.Default()).
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// New creates an engine with an empty graph and hierarchy.
func New(opts ...Option) *Engine {
	e := &Engine{
		graph:     flowgraph.New(),
		hierarchy: scale.NewHierarchy(),
		cfg:       config.Default(),
		log:       logging.NewDefaultLogger(),
		dirty:     true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(logging.Component("engine"))
	return e
}

// Graph exposes the underlying graph store for read access.
func (e *Engine) Graph() *flowgraph.Graph {
	return e.graph
}

// Hierarchy exposes the scale hierarchy.
func (e *Engine) Hierarchy() *scale.Hierarchy {
	return e.hierarchy
}

// AddFlow validates and inserts a flow, auto-registering endpoint nodes and
// assigning an id when the request carries none. Any successful mutation
// invalidates the cached centrality/keyman results.
func (e *Engine) AddFlow(req *validation.FlowRequest) (*flowgraph.Flow, error) {
	flowType, err := validation.ValidateFlowRequest(req)
	if err != nil {
		e.recordMutation("add_flow", "invalid")
		return nil, err
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}
	flow := &flowgraph.Flow{
		ID:          id,
		SourceID:    req.SourceID,
		TargetID:    req.TargetID,
		Amount:      req.Amount,
		Type:        flowType,
		Timestamp:   req.Timestamp,
		Description: req.Description,
	}
	if err := e.graph.AddFlow(flow); err != nil {
		e.recordMutation("add_flow", "error")
		return nil, err
	}

	e.invalidate()
	e.recordMutation("add_flow", "ok")
	e.log.Debug("flow added",
		logging.FlowID(id),
		logging.String("source", req.SourceID),
		logging.String("target", req.TargetID),
		logging.Float64("amount", req.Amount))
	return flow, nil
}

// RemoveFlow deletes a flow by id. Removal of an absent flow reports
// structured absence (flowgraph.IsNotFound), never a generic failure.
func (e *Engine) RemoveFlow(id string) error {
	removed, err := e.graph.RemoveFlow(id)
	if err != nil {
		e.recordMutation("remove_flow", "not_found")
		return err
	}
	if removed {
		e.invalidate()
		e.recordMutation("remove_flow", "ok")
		e.log.Debug("flow removed", logging.FlowID(id))
	}
	return nil
}

// AddNode pre-registers a node with explicit attributes.
func (e *Engine) AddNode(node *flowgraph.Node) {
	e.graph.AddNode(node)
	e.invalidate()
	e.recordMutation("add_node", "ok")
}

// invalidate marks cached analytic results stale.
func (e *Engine) invalidate() {
	e.mu.Lock()
	e.dirty = true
	e.mu.Unlock()
	if e.metrics != nil {
		e.metrics.SetGraphSize(e.graph.NodeCount(), e.graph.FlowCount())
	}
}

// Recalculate forces a synchronous recomputation of centrality and the
// keyman index, regardless of the dirty flag.
func (e *Engine) Recalculate() *keyman.Index {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recalculateLocked()
}

// ensureIndex recomputes the caches if a mutation has invalidated them.
func (e *Engine) ensureIndex() *keyman.Index {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dirty || e.index == nil {
		return e.recalculateLocked()
	}
	return e.index
}

// recalculateLocked rebuilds centrality and the keyman index from a
// snapshot of the graph, so concurrent writers are never blocked for the
// duration of the convergence loop. Caller must hold e.mu.
func (e *Engine) recalculateLocked() *keyman.Index {
	timer := logging.StartTimer(e.log, "recalculated analytics")
	start := time.Now()

	snap := e.graph.Snapshot()
	e.centrality = centrality.Eigenvector(snap, centrality.Options{
		MaxIterations: e.cfg.Centrality.MaxIterations,
		Tolerance:     e.cfg.Centrality.Tolerance,
	})
	e.graph.SetCentrality(e.centrality.Scores)

	scorer := keyman.NewScorer(e.cfg.Keyman.Weights)
	e.index = scorer.Compute(snap, e.centrality)
	e.dirty = false

	if e.metrics != nil {
		e.metrics.RecordRecalculation(time.Since(start))
	}
	timer.End()
	return e.index
}

// Centrality returns the current eigenvector centrality result,
// recomputing first if the graph changed.
func (e *Engine) Centrality() *centrality.Result {
	e.ensureIndex()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.centrality
}

// recordQuery tracks a query in the metrics registry, if one is attached.
func (e *Engine) recordQuery(queryType, status string, start time.Time) {
	if e.metrics != nil {
		e.metrics.RecordQuery(queryType, status, time.Since(start))
	}
}

func (e *Engine) recordMutation(op, status string) {
	if e.metrics != nil {
		e.metrics.RecordMutation(op, status)
	}
}
