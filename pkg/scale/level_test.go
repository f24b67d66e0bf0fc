package scale

import (
	"errors"
	"testing"

	"github.com/flownet-io/flownet/pkg/flowgraph"
)

func TestLevelForZoom(t *testing.T) {
	cases := []struct {
		zoom int
		want Level
	}{
		{-2, LevelWorld},
		{0, LevelWorld},
		{3, LevelWorld},
		{4, LevelCountry},
		{6, LevelCountry},
		{7, LevelCity},
		{10, LevelCity},
		{11, LevelDistrict},
		{14, LevelDistrict},
		{15, LevelBlock},
		{22, LevelBlock},
	}
	for _, c := range cases {
		if got := LevelForZoom(c.zoom); got != c.want {
			t.Errorf("LevelForZoom(%d) = %v, want %v", c.zoom, got, c.want)
		}
	}
}

func TestLevelOrdering(t *testing.T) {
	levels := Levels()
	if len(levels) != NumLevels {
		t.Fatalf("Expected %d levels, got %d", NumLevels, len(levels))
	}
	for i := 1; i < len(levels); i++ {
		if levels[i] <= levels[i-1] {
			t.Error("Levels must be totally ordered coarse to fine")
		}
	}
}

func TestParseLevel(t *testing.T) {
	for _, l := range Levels() {
		parsed, err := ParseLevel(l.String())
		if err != nil {
			t.Errorf("ParseLevel(%q) failed: %v", l.String(), err)
		}
		if parsed != l {
			t.Errorf("Round trip mismatch for %v", l)
		}
	}

	if _, err := ParseLevel("galaxy"); !errors.Is(err, flowgraph.ErrInvalidLevel) {
		t.Errorf("Expected ErrInvalidLevel, got %v", err)
	}
	if Level(99).Valid() {
		t.Error("Out-of-range level must not validate")
	}
}

func TestZoomRangesCoverAllZooms(t *testing.T) {
	// Every zoom value must resolve to the level whose range holds it
	for zoom := 0; zoom <= 20; zoom++ {
		level := LevelForZoom(zoom)
		minZoom, maxZoom := level.ZoomRange()
		if zoom < minZoom {
			t.Errorf("Zoom %d below range of %v", zoom, level)
		}
		if maxZoom != -1 && zoom > maxZoom {
			t.Errorf("Zoom %d above range of %v", zoom, level)
		}
	}
}

func TestLevelTable(t *testing.T) {
	table := LevelTable()
	if len(table) != NumLevels {
		t.Fatalf("Expected %d rows, got %d", NumLevels, len(table))
	}
	if table[0].Name != "world" || table[4].Name != "block" {
		t.Errorf("Unexpected table order: %s .. %s", table[0].Name, table[4].Name)
	}
	if table[4].MaxZoom != -1 {
		t.Errorf("Block must be open-ended, got max zoom %d", table[4].MaxZoom)
	}
}

func TestBounds_Validate(t *testing.T) {
	valid := Bounds{MinLat: -10, MinLng: -20, MaxLat: 10, MaxLng: 20}
	if err := valid.Validate(); err != nil {
		t.Errorf("Valid bounds rejected: %v", err)
	}

	inverted := Bounds{MinLat: 10, MinLng: 0, MaxLat: -10, MaxLng: 20}
	if err := inverted.Validate(); !errors.Is(err, flowgraph.ErrInvalidBounds) {
		t.Errorf("Expected ErrInvalidBounds for inverted box, got %v", err)
	}

	outOfRange := Bounds{MinLat: -95, MinLng: 0, MaxLat: 0, MaxLng: 20}
	if err := outOfRange.Validate(); !errors.Is(err, flowgraph.ErrInvalidBounds) {
		t.Errorf("Expected ErrInvalidBounds for out-of-range box, got %v", err)
	}
}

func TestBounds_ContainsInclusive(t *testing.T) {
	b := Bounds{MinLat: 0, MinLng: 0, MaxLat: 10, MaxLng: 10}
	if !b.Contains(0, 0) || !b.Contains(10, 10) {
		t.Error("Bounds must include their edges")
	}
	if b.Contains(10.001, 5) || b.Contains(5, -0.001) {
		t.Error("Points outside the box must not match")
	}
}
