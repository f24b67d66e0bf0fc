package flowgraph

import (
	"fmt"
	"time"
)

// FlowType classifies a flow. The set is closed: AddFlow rejects values
// outside it.
type FlowType uint8

const (
	FlowTrade FlowType = iota
	FlowTransfer
	FlowInvestment
	FlowLoan
	FlowDonation
)

// flowTypeNames maps each FlowType to its wire name.
var flowTypeNames = map[FlowType]string{
	FlowTrade:      "trade",
	FlowTransfer:   "transfer",
	FlowInvestment: "investment",
	FlowLoan:       "loan",
	FlowDonation:   "donation",
}

// String returns the wire name of the flow type.
func (t FlowType) String() string {
	if name, ok := flowTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether the flow type is a member of the closed set.
func (t FlowType) Valid() bool {
	_, ok := flowTypeNames[t]
	return ok
}

// ParseFlowType converts a wire name to a FlowType.
func ParseFlowType(s string) (FlowType, error) {
	for t, name := range flowTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("parse flow type %q: %w", s, ErrInvalidFlowType)
}

// FlowTypes returns all members of the closed set in declaration order.
func FlowTypes() []FlowType {
	return []FlowType{FlowTrade, FlowTransfer, FlowInvestment, FlowLoan, FlowDonation}
}

// Sector categorizes an entity.
type Sector uint8

const (
	SectorUnknown Sector = iota
	SectorIndividual
	SectorInstitution
	SectorGovernment
	SectorFinance
	SectorIndustry
)

var sectorNames = map[Sector]string{
	SectorUnknown:     "unknown",
	SectorIndividual:  "individual",
	SectorInstitution: "institution",
	SectorGovernment:  "government",
	SectorFinance:     "finance",
	SectorIndustry:    "industry",
}

func (s Sector) String() string {
	if name, ok := sectorNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSector converts a wire name to a Sector. Unknown names map to
// SectorUnknown rather than failing: sectors are descriptive, not a closed
// contract like FlowType.
func ParseSector(name string) Sector {
	for s, n := range sectorNames {
		if n == name {
			return s
		}
	}
	return SectorUnknown
}

// Node is an entity in the flow network. Centrality is computed by the
// centrality engine, never user-set.
type Node struct {
	ID         string
	Name       string
	Sector     Sector
	RealValue  float64
	Centrality float64
	CreatedAt  int64
}

// Clone creates a copy of the node.
func (n *Node) Clone() *Node {
	c := *n
	return &c
}

// Flow is a directed, weighted edge between two nodes. Flows are immutable
// after insertion; Amount is never edited in place. Seq records insertion
// order and is used for deterministic tie-breaking in path search.
type Flow struct {
	ID          string
	SourceID    string
	TargetID    string
	Amount      float64
	Type        FlowType
	Timestamp   time.Time
	Description string
	Seq         uint64
}

// FlowStats is the derived per-node flow summary. Recomputed on demand,
// never cached.
type FlowStats struct {
	NodeID         string
	TotalIn        float64
	TotalOut       float64
	Net            float64
	InCount        int
	OutCount       int
	DominantSource string
	DominantTarget string
	ByType         map[FlowType]float64
}

// Stats is the graph-wide summary.
type Stats struct {
	NodeCount   int
	FlowCount   int
	TotalAmount float64
	ByType      map[FlowType]float64
}
