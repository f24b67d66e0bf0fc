// Package scale maintains the fixed five-level spatial hierarchy
// (World, Country, City, District, Block) and its bottom-up aggregation.
package scale

import (
	"fmt"

	"github.com/flownet-io/flownet/pkg/flowgraph"
)

// Level is one of the five fixed resolutions, totally ordered from coarsest
// (World) to finest (Block).
type Level int

const (
	LevelWorld Level = iota
	LevelCountry
	LevelCity
	LevelDistrict
	LevelBlock
)

// NumLevels is the size of the closed level set.
const NumLevels = 5

var levelNames = [NumLevels]string{"world", "country", "city", "district", "block"}

// String returns the wire name of the level.
func (l Level) String() string {
	if l.Valid() {
		return levelNames[l]
	}
	return "unknown"
}

// Valid reports whether the level is a member of the closed set.
func (l Level) Valid() bool {
	return l >= LevelWorld && l <= LevelBlock
}

// ParseLevel converts a wire name to a Level.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("parse scale level %q: %w", s, flowgraph.ErrInvalidLevel)
}

// Levels returns all levels from coarsest to finest.
func Levels() []Level {
	return []Level{LevelWorld, LevelCountry, LevelCity, LevelDistrict, LevelBlock}
}

// zoomRanges maps each level to its inclusive zoom range. Block is open
// ended: every zoom from 15 up resolves to it.
var zoomRanges = [NumLevels][2]int{
	{0, 3},
	{4, 6},
	{7, 10},
	{11, 14},
	{15, -1},
}

// LevelForZoom deterministically maps a zoom value onto a level:
// 0-3 World, 4-6 Country, 7-10 City, 11-14 District, 15+ Block.
// Negative zooms clamp to World.
func LevelForZoom(zoom int) Level {
	switch {
	case zoom <= 3:
		return LevelWorld
	case zoom <= 6:
		return LevelCountry
	case zoom <= 10:
		return LevelCity
	case zoom <= 14:
		return LevelDistrict
	default:
		return LevelBlock
	}
}

// ZoomRange returns the inclusive zoom range of a level. MaxZoom is -1 for
// the open-ended Block level.
func (l Level) ZoomRange() (minZoom, maxZoom int) {
	if !l.Valid() {
		return 0, 0
	}
	return zoomRanges[l][0], zoomRanges[l][1]
}

// LevelInfo is the metadata row exposed by the level table lookup.
type LevelInfo struct {
	Level   Level  `json:"level"`
	Name    string `json:"name"`
	MinZoom int    `json:"min_zoom"`
	MaxZoom int    `json:"max_zoom"` // -1 means open-ended
}

// LevelTable returns metadata for all five levels.
func LevelTable() []LevelInfo {
	table := make([]LevelInfo, 0, NumLevels)
	for _, l := range Levels() {
		minZoom, maxZoom := l.ZoomRange()
		table = append(table, LevelInfo{Level: l, Name: l.String(), MinZoom: minZoom, MaxZoom: maxZoom})
	}
	return table
}

// Bounds is an inclusive rectangular lat/lng bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Validate rejects empty or contradictory boxes and out-of-range
// coordinates.
func (b Bounds) Validate() error {
	if b.MinLat > b.MaxLat || b.MinLng > b.MaxLng {
		return fmt.Errorf("inverted bounding box: %w", flowgraph.ErrInvalidBounds)
	}
	if b.MinLat < -90 || b.MaxLat > 90 || b.MinLng < -180 || b.MaxLng > 180 {
		return fmt.Errorf("coordinates out of range: %w", flowgraph.ErrInvalidBounds)
	}
	return nil
}

// Contains reports whether the point lies within the box (inclusive).
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}
