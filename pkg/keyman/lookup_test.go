package keyman

import (
	"strings"
	"testing"

	"github.com/flownet-io/flownet/pkg/flowgraph"
)

func TestIndex_Lookups(t *testing.T) {
	g := setupHubGraph(t)
	ix := computeIndex(t, g)

	score, ok := ix.Get("hub")
	if !ok || score.NodeID != "hub" {
		t.Fatal("Get(hub) should find the hub score")
	}
	if _, ok := ix.Get("nobody"); ok {
		t.Error("Get on an unscored node should report false")
	}

	top := ix.Top(3)
	if len(top) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(top))
	}
	if top[0].Rank != 1 {
		t.Errorf("Top should start at rank 1, got %d", top[0].Rank)
	}
	if got := ix.Top(0); len(got) != len(ix.Scores) {
		t.Errorf("Top(0) should return everything, got %d", len(got))
	}
	if got := ix.Top(100); len(got) != len(ix.Scores) {
		t.Errorf("Oversized n should clamp, got %d", len(got))
	}
}

func TestIndex_ByTypeAndSector(t *testing.T) {
	g := setupHubGraph(t)
	ix := computeIndex(t, g)

	hubs := ix.ByType(TypeHub)
	if len(hubs) == 0 {
		t.Fatal("Expected at least one hub")
	}
	for _, s := range hubs {
		if !s.HasType(TypeHub) {
			t.Errorf("ByType returned non-hub %s", s.NodeID)
		}
	}

	finance := ix.BySector(flowgraph.SectorFinance)
	if len(finance) != 1 || finance[0].NodeID != "hub" {
		t.Errorf("Expected only hub in finance sector, got %d entries", len(finance))
	}

	// Empty result, not an error
	if got := ix.BySector(flowgraph.SectorIndustry); len(got) != 0 {
		t.Errorf("Expected no industry-sector scores, got %d", len(got))
	}
}

func TestIndex_ComputeStats(t *testing.T) {
	g := setupHubGraph(t)
	ix := computeIndex(t, g)

	stats := ix.ComputeStats()
	if stats.Count != 6 {
		t.Errorf("Expected count 6, got %d", stats.Count)
	}
	if stats.MaxKI < stats.MinKI {
		t.Error("MaxKI below MinKI")
	}
	if stats.AvgKI < stats.MinKI || stats.AvgKI > stats.MaxKI {
		t.Errorf("AvgKI %v outside [%v, %v]", stats.AvgKI, stats.MinKI, stats.MaxKI)
	}
	if stats.TypeCounts["hub"] == 0 {
		t.Error("Expected a hub in the type distribution")
	}
	if stats.SectorCounts["finance"] != 1 {
		t.Errorf("Expected 1 finance node, got %d", stats.SectorCounts["finance"])
	}
}

func TestIndex_Explain(t *testing.T) {
	g := setupHubGraph(t)
	ix := computeIndex(t, g)

	exp := ix.Explain()
	if exp.Weights != DefaultWeights() {
		t.Errorf("Explanation should carry the active weights, got %+v", exp.Weights)
	}
	if !strings.Contains(exp.Formula, "0.30") || !strings.Contains(exp.Formula, "0.50") {
		t.Errorf("Formula should show the weights: %s", exp.Formula)
	}
	if len(exp.Components) != 3 {
		t.Errorf("Expected 3 component descriptions, got %d", len(exp.Components))
	}
}

func TestIndex_PathBottleneck(t *testing.T) {
	g := flowgraph.New()
	flows := []struct {
		id, src, dst string
		amount       float64
	}{
		{"ab", "a", "b", 500},
		{"bc", "b", "c", 20}, // the weak hop
		{"cd", "c", "d", 300},
	}
	for _, f := range flows {
		err := g.AddFlow(&flowgraph.Flow{
			ID: f.id, SourceID: f.src, TargetID: f.dst,
			Amount: f.amount, Type: flowgraph.FlowTransfer,
		})
		if err != nil {
			t.Fatalf("AddFlow failed: %v", err)
		}
	}
	ix := computeIndex(t, g)

	score, err := ix.PathBottleneck(g, "a", "d")
	if err != nil {
		t.Fatalf("PathBottleneck failed: %v", err)
	}
	if score == nil {
		t.Fatal("Expected a bottleneck on the a->d path")
	}
	// The weak hop is b->c, its downstream endpoint is c
	if score.NodeID != "c" {
		t.Errorf("Expected bottleneck c, got %s", score.NodeID)
	}

	// Unconnected pair: (nil, nil)
	score, err = ix.PathBottleneck(g, "d", "a")
	if err != nil || score != nil {
		t.Errorf("Expected (nil, nil) for unconnected pair, got (%v, %v)", score, err)
	}
}
