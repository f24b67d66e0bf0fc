package keyman

import (
	"fmt"
	"testing"

	"github.com/flownet-io/flownet/pkg/centrality"
	"github.com/flownet-io/flownet/pkg/flowgraph"
)

// setupHubGraph builds a graph with an obvious keyman: hub exchanges with
// every spoke, the spokes only touch the hub.
func setupHubGraph(t *testing.T) *flowgraph.Graph {
	t.Helper()

	g := flowgraph.New()
	for i := 0; i < 5; i++ {
		spoke := fmt.Sprintf("spoke%d", i)
		for j, pair := range [][2]string{{spoke, "hub"}, {"hub", spoke}} {
			err := g.AddFlow(&flowgraph.Flow{
				ID:       fmt.Sprintf("f%d-%d", i, j),
				SourceID: pair[0], TargetID: pair[1],
				Amount: float64(100 * (i + 1)),
				Type:   flowgraph.FlowTrade,
			})
			if err != nil {
				t.Fatalf("AddFlow failed: %v", err)
			}
		}
	}
	g.AddNode(&flowgraph.Node{ID: "hub", Name: "The Hub", Sector: flowgraph.SectorFinance, RealValue: 1e9})
	return g
}

func computeIndex(t *testing.T, g *flowgraph.Graph) *Index {
	t.Helper()
	cent := centrality.Eigenvector(g, centrality.DefaultOptions())
	return NewScorer(DefaultWeights()).Compute(g, cent)
}

func TestScorer_HubRanksFirst(t *testing.T) {
	g := setupHubGraph(t)
	ix := computeIndex(t, g)

	if len(ix.Scores) != 6 {
		t.Fatalf("Expected 6 scored nodes, got %d", len(ix.Scores))
	}
	if ix.Scores[0].NodeID != "hub" {
		t.Errorf("Expected hub at rank 1, got %s", ix.Scores[0].NodeID)
	}
	if ix.Scores[0].Rank != 1 {
		t.Errorf("Expected rank 1, got %d", ix.Scores[0].Rank)
	}
}

func TestScorer_KIBounds(t *testing.T) {
	g := setupHubGraph(t)
	ix := computeIndex(t, g)

	for _, s := range ix.Scores {
		if s.KI < 0 || s.KI > 1 {
			t.Errorf("ki_score must be in [0,1], got %v for %s", s.KI, s.NodeID)
		}
		for name, v := range map[string]float64{
			"connectivity": s.Connectivity,
			"flow_volume":  s.FlowVolume,
			"real_value":   s.RealValue,
		} {
			if v < 0 || v > 1 {
				t.Errorf("%s must be normalized to [0,1], got %v for %s", name, v, s.NodeID)
			}
		}
	}
}

func TestScorer_RankIsDense(t *testing.T) {
	g := setupHubGraph(t)
	ix := computeIndex(t, g)

	for i, s := range ix.Scores {
		if s.Rank != i+1 {
			t.Errorf("Expected rank %d at position %d, got %d", i+1, i, s.Rank)
		}
		if i > 0 && ix.Scores[i-1].KI < s.KI {
			t.Error("Scores must be ordered by KI descending")
		}
	}
}

func TestScorer_Deterministic(t *testing.T) {
	g := setupHubGraph(t)

	first := computeIndex(t, g)
	second := computeIndex(t, g)

	for i := range first.Scores {
		if first.Scores[i].NodeID != second.Scores[i].NodeID {
			t.Fatalf("Ranking order changed between runs at position %d", i)
		}
		if first.Scores[i].KI != second.Scores[i].KI {
			t.Fatalf("KI changed between runs for %s", first.Scores[i].NodeID)
		}
	}
}

func TestScorer_HubClassification(t *testing.T) {
	g := setupHubGraph(t)
	ix := computeIndex(t, g)

	hub, ok := ix.Get("hub")
	if !ok {
		t.Fatal("hub missing from index")
	}
	if !hub.HasType(TypeHub) {
		t.Errorf("hub should classify as hub, got %v", hub.Types)
	}
	if !hub.HasType(TypeSink) || !hub.HasType(TypeSource) {
		t.Errorf("hub both receives and sends top volume, got %v", hub.Types)
	}
	if !hub.HasType(TypeBroker) {
		t.Errorf("hub + sink/source should imply broker, got %v", hub.Types)
	}
	if !hub.HasType(TypeBottleneck) {
		t.Errorf("removing hub disconnects everything, expected bottleneck, got %v", hub.Types)
	}
}

func TestScorer_InactiveNodeHasNoTypes(t *testing.T) {
	g := setupHubGraph(t)
	g.AddNode(&flowgraph.Node{ID: "dormant"})
	ix := computeIndex(t, g)

	score, ok := ix.Get("dormant")
	if !ok {
		t.Fatal("dormant node missing from index")
	}
	if len(score.Types) != 0 {
		t.Errorf("Node with no flows must carry no types, got %v", score.Types)
	}
	if score.KI != 0 {
		t.Errorf("Node with no flows and no value should score 0, got %v", score.KI)
	}
}

func TestScorer_ZeroVariancePopulation(t *testing.T) {
	g := flowgraph.New()
	// Symmetric triangle: every node has identical signals
	for i, e := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}} {
		err := g.AddFlow(&flowgraph.Flow{
			ID: fmt.Sprintf("f%d", i), SourceID: e[0], TargetID: e[1],
			Amount: 100, Type: flowgraph.FlowTransfer,
		})
		if err != nil {
			t.Fatalf("AddFlow failed: %v", err)
		}
	}

	ix := computeIndex(t, g)
	for _, s := range ix.Scores {
		if s.KI != 0 {
			t.Errorf("Zero-variance population should normalize to 0, got %v for %s", s.KI, s.NodeID)
		}
	}
	// Ranking still total and deterministic: ties break by node id
	if ix.Scores[0].NodeID != "a" || ix.Scores[2].NodeID != "c" {
		t.Errorf("Tied scores should order by id, got %s..%s",
			ix.Scores[0].NodeID, ix.Scores[2].NodeID)
	}
}

func TestScorer_TopPartners(t *testing.T) {
	g := setupHubGraph(t)
	ix := computeIndex(t, g)

	hub, _ := ix.Get("hub")
	if len(hub.TopPartners) != 5 {
		t.Fatalf("Expected 5 partners, got %d", len(hub.TopPartners))
	}
	// spoke4 exchanges 1000 total, the most
	if hub.TopPartners[0].NodeID != "spoke4" || hub.TopPartners[0].Amount != 1000 {
		t.Errorf("Expected spoke4 (1000) first, got %s (%v)",
			hub.TopPartners[0].NodeID, hub.TopPartners[0].Amount)
	}
	for i := 1; i < len(hub.TopPartners); i++ {
		if hub.TopPartners[i].Amount > hub.TopPartners[i-1].Amount {
			t.Error("Partners must be ordered by amount descending")
		}
	}
}

func TestScorer_NetworkImpact(t *testing.T) {
	g := setupHubGraph(t)
	ix := computeIndex(t, g)

	hub, _ := ix.Get("hub")
	// Removing hub loses all flow (fraction 1) and disconnects: 0.7 + 0.3
	if hub.NetworkImpact < 0.99 {
		t.Errorf("Expected network impact ~1.0 for hub, got %v", hub.NetworkImpact)
	}

	spoke, _ := ix.Get("spoke0")
	if spoke.NetworkImpact >= hub.NetworkImpact {
		t.Errorf("Spoke impact %v should be below hub impact %v",
			spoke.NetworkImpact, hub.NetworkImpact)
	}
}

func TestScorer_DegreeFallback(t *testing.T) {
	// Pure chain: eigenvector mass drains to the zero vector, so the scorer
	// must fall back to degree for connectivity
	g := flowgraph.New()
	for i, e := range [][2]string{{"a", "b"}, {"b", "c"}} {
		err := g.AddFlow(&flowgraph.Flow{
			ID: fmt.Sprintf("f%d", i), SourceID: e[0], TargetID: e[1],
			Amount: 10, Type: flowgraph.FlowTransfer,
		})
		if err != nil {
			t.Fatalf("AddFlow failed: %v", err)
		}
	}

	ix := computeIndex(t, g)
	b, _ := ix.Get("b")
	if b.RawConnectivity != 2 {
		t.Errorf("Expected degree fallback 2 for b, got %v", b.RawConnectivity)
	}
	if ix.Scores[0].NodeID != "b" {
		t.Errorf("Middle node should rank first under degree fallback, got %s", ix.Scores[0].NodeID)
	}
}

func TestWeights_Defaults(t *testing.T) {
	w := DefaultWeights()
	if w.Connectivity != 0.30 || w.Flow != 0.50 || w.Value != 0.20 {
		t.Errorf("Unexpected default weights: %+v", w)
	}
	if w.Sum() != 1.0 {
		t.Errorf("Default weights must sum to 1, got %v", w.Sum())
	}

	s := NewScorer(Weights{})
	if s.Weights() != DefaultWeights() {
		t.Error("Zero-value weights should fall back to defaults")
	}
}

func TestRateImpact(t *testing.T) {
	cases := []struct {
		impact float64
		want   Rating
	}{
		{0.9, RatingCritical},
		{0.51, RatingCritical},
		{0.5, RatingHigh},
		{0.31, RatingHigh},
		{0.3, RatingMedium},
		{0.11, RatingMedium},
		{0.1, RatingLow},
		{0, RatingLow},
	}
	for _, c := range cases {
		if got := RateImpact(c.impact); got != c.want {
			t.Errorf("RateImpact(%v) = %v, want %v", c.impact, got, c.want)
		}
	}
}
