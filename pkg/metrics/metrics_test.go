package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry_Counters(t *testing.T) {
	r := NewRegistry()

	r.RecordQuery("path", "ok", 5*time.Millisecond)
	r.RecordQuery("path", "ok", 2*time.Millisecond)
	r.RecordQuery("keyman_top", "error", time.Millisecond)

	if got := testutil.ToFloat64(r.QueriesTotal.WithLabelValues("path", "ok")); got != 2 {
		t.Errorf("Expected 2 path queries, got %v", got)
	}
	if got := testutil.ToFloat64(r.QueriesTotal.WithLabelValues("keyman_top", "error")); got != 1 {
		t.Errorf("Expected 1 failed keyman query, got %v", got)
	}

	r.RecordMutation("add_flow", "ok")
	if got := testutil.ToFloat64(r.MutationsTotal.WithLabelValues("add_flow", "ok")); got != 1 {
		t.Errorf("Expected 1 mutation, got %v", got)
	}

	r.RecordRecalculation(10 * time.Millisecond)
	if got := testutil.ToFloat64(r.RecalculationsTotal); got != 1 {
		t.Errorf("Expected 1 recalculation, got %v", got)
	}
}

func TestRegistry_Gauges(t *testing.T) {
	r := NewRegistry()

	r.SetGraphSize(42, 117)
	if got := testutil.ToFloat64(r.GraphNodes); got != 42 {
		t.Errorf("Expected 42 nodes, got %v", got)
	}
	if got := testutil.ToFloat64(r.GraphFlows); got != 117 {
		t.Errorf("Expected 117 flows, got %v", got)
	}
}

func TestRegistry_Isolated(t *testing.T) {
	// Two registries never collide; a second NewRegistry must not panic on
	// duplicate registration.
	a := NewRegistry()
	b := NewRegistry()

	a.RecordMutation("add_flow", "ok")
	if got := testutil.ToFloat64(b.MutationsTotal.WithLabelValues("add_flow", "ok")); got != 0 {
		t.Errorf("Registries must be isolated, got %v", got)
	}

	families, err := a.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Error("Expected registered metric families")
	}
}
