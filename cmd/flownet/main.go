package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/flownet-io/flownet/pkg/config"
	"github.com/flownet-io/flownet/pkg/engine"
	"github.com/flownet-io/flownet/pkg/logging"
	"github.com/flownet-io/flownet/pkg/metrics"
	"github.com/flownet-io/flownet/pkg/validation"
)

func main() {
	configPath := flag.String("config", "", "Engine policy YAML file (optional)")
	flowsPath := flag.String("flows", "", "JSON file with flows to ingest")
	topN := flag.Int("top", 10, "Number of top keymen to print")
	threshold := flag.Float64("threshold", 0, "Bottleneck threshold (0 = configured default)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	eng := engine.New(
		engine.WithConfig(cfg),
		engine.WithLogger(logging.NewDefaultLogger()),
		engine.WithMetrics(metrics.NewRegistry()),
	)

	fmt.Println("🚀 flownet - Flow-Graph Analytics Engine")

	if *flowsPath != "" {
		n, err := ingestFlows(eng, *flowsPath)
		if err != nil {
			log.Fatalf("Failed to ingest flows: %v", err)
		}
		fmt.Printf("✅ Ingested %d flows from %s\n", n, *flowsPath)
	}

	stats := eng.GraphStats()
	fmt.Printf("\n📊 Graph: %d nodes, %d flows, total amount %.2f\n",
		stats.NodeCount, stats.FlowCount, stats.TotalAmount)

	fmt.Printf("\n🏆 Top %d keymen:\n", *topN)
	for _, score := range eng.TopKeymen(*topN) {
		fmt.Printf("  #%-3d %-20s ki=%.4f types=%v\n", score.Rank, score.NodeID, score.KI, score.Types)
	}

	fmt.Println("\n🔍 Bottlenecks:")
	for _, info := range eng.Bottlenecks(*threshold) {
		fmt.Printf("  %-20s impact=%.4f bridge=%.4f in=%d out=%d\n",
			info.NodeID, info.ImpactScore, info.BridgeScore, info.InNodes, info.OutNodes)
	}
}

// ingestFlows loads a JSON array of flow requests and adds each to the
// engine.
func ingestFlows(eng *engine.Engine, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var requests []validation.FlowRequest
	if err := json.Unmarshal(data, &requests); err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	added := 0
	for i := range requests {
		if _, err := eng.AddFlow(&requests[i]); err != nil {
			return added, fmt.Errorf("flow %d: %w", i, err)
		}
		added++
	}
	return added, nil
}
