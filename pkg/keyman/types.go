package keyman

import (
	"fmt"

	"github.com/flownet-io/flownet/pkg/flowgraph"
)

// KeymanType classifies a node's structural role. A node may hold several
// types at once.
type KeymanType uint8

const (
	TypeHub KeymanType = iota
	TypeSink
	TypeSource
	TypeBroker
	TypeBottleneck
)

var keymanTypeNames = map[KeymanType]string{
	TypeHub:        "hub",
	TypeSink:       "sink",
	TypeSource:     "source",
	TypeBroker:     "broker",
	TypeBottleneck: "bottleneck",
}

func (t KeymanType) String() string {
	if name, ok := keymanTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseKeymanType converts a wire name to a KeymanType.
func ParseKeymanType(s string) (KeymanType, error) {
	for t, name := range keymanTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("parse keyman type %q: unknown", s)
}

// Rating is the qualitative removal-impact band.
type Rating string

const (
	RatingCritical Rating = "critical"
	RatingHigh     Rating = "high"
	RatingMedium   Rating = "medium"
	RatingLow      Rating = "low"
)

// RateImpact maps a normalized removal impact onto a qualitative rating
// using the 0.5/0.3/0.1 thresholds.
func RateImpact(impact float64) Rating {
	switch {
	case impact > 0.5:
		return RatingCritical
	case impact > 0.3:
		return RatingHigh
	case impact > 0.1:
		return RatingMedium
	default:
		return RatingLow
	}
}

// Partner is one counterparty with the total amount exchanged.
type Partner struct {
	NodeID string  `json:"node_id"`
	Amount float64 `json:"amount"`
}

// Score is the Keyman Index entry for one node. The normalized components
// are each in [0,1]; KI is their weighted combination, also in [0,1]. The
// Raw* fields carry the pre-normalization signals so callers can expose a
// calculation trace.
type Score struct {
	NodeID  string           `json:"node_id"`
	Name    string           `json:"name"`
	Sector  flowgraph.Sector `json:"sector"`

	Connectivity float64 `json:"connectivity"` // normalized C
	FlowVolume   float64 `json:"flow_volume"`  // normalized F
	RealValue    float64 `json:"real_value"`   // normalized, log-scaled RV

	RawConnectivity float64 `json:"raw_connectivity"`
	RawFlow         float64 `json:"raw_flow"`
	RawValue        float64 `json:"raw_value"`

	KI   float64 `json:"ki_score"`
	Rank int     `json:"ki_rank"`

	Types         []KeymanType `json:"keyman_types"`
	NetworkImpact float64      `json:"network_impact"`
	TopPartners   []Partner    `json:"top_partners"`
}

// HasType reports whether the score carries the given keyman type.
func (s *Score) HasType(t KeymanType) bool {
	for _, st := range s.Types {
		if st == t {
			return true
		}
	}
	return false
}

// Weights are the KI component weights. They must sum to 1.
type Weights struct {
	Connectivity float64 `yaml:"connectivity"`
	Flow         float64 `yaml:"flow"`
	Value        float64 `yaml:"value"`
}

// DefaultWeights returns the standard 0.30/0.50/0.20 weighting.
func DefaultWeights() Weights {
	return Weights{Connectivity: 0.30, Flow: 0.50, Value: 0.20}
}

// Sum returns the total of the three weights.
func (w Weights) Sum() float64 {
	return w.Connectivity + w.Flow + w.Value
}
