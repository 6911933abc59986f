package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// MaxLatitude is the latitude at which the square Web Mercator world ends.
const MaxLatitude = 85.05112877980659

// BoundingBox represents a geographic bounding box in WGS84 (EPSG:4326).
// There is no anti-meridian handling: East must be east of West numerically.
type BoundingBox struct {
	South float64 `json:"south" mapstructure:"south"` // Southern edge (degrees)
	North float64 `json:"north" mapstructure:"north"` // Northern edge (degrees)
	West  float64 `json:"west" mapstructure:"west"`   // Western edge (degrees)
	East  float64 `json:"east" mapstructure:"east"`   // Eastern edge (degrees)
}

// NewBoundingBox creates a bounding box from its four edges.
func NewBoundingBox(south, north, west, east float64) BoundingBox {
	return BoundingBox{South: south, North: north, West: west, East: east}
}

// FromBound converts an orb.Bound (lon/lat points) to a BoundingBox.
func FromBound(b orb.Bound) BoundingBox {
	return BoundingBox{
		South: b.Min.Lat(),
		North: b.Max.Lat(),
		West:  b.Min.Lon(),
		East:  b.Max.Lon(),
	}
}

// Bound returns the bounding box as an orb.Bound.
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// String returns a human-readable representation of the bounding box
func (b BoundingBox) String() string {
	return fmt.Sprintf("bbox(%.6f,%.6f,%.6f,%.6f)", b.South, b.North, b.West, b.East)
}

// Center returns the arithmetic center of the box in degrees.
// This is not the Mercator center used for static images.
func (b BoundingBox) Center() (lat, lon float64) {
	return (b.South + b.North) / 2, (b.West + b.East) / 2
}

// Width returns the width of the bounding box in degrees
func (b BoundingBox) Width() float64 {
	return b.East - b.West
}

// Height returns the height of the bounding box in degrees
func (b BoundingBox) Height() float64 {
	return b.North - b.South
}

// Validate checks that the box is finite, ordered and does not touch a pole.
func (b BoundingBox) Validate() error {
	for _, v := range []float64{b.South, b.North, b.West, b.East} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s: edges must be finite", b)
		}
	}
	if b.South >= b.North {
		return fmt.Errorf("south (%.4f) must be < north (%.4f)", b.South, b.North)
	}
	if b.West >= b.East {
		return fmt.Errorf("west (%.4f) must be < east (%.4f)", b.West, b.East)
	}
	if b.South <= -90 || b.North >= 90 {
		return fmt.Errorf("%s: latitudes must lie strictly between -90 and 90", b)
	}
	return nil
}

// ExpandByFraction grows the box by fraction of its width/height on every side.
// Latitudes stop at the Web Mercator range; an edge already beyond it stays
// where it is, so the result always contains b.
func (b BoundingBox) ExpandByFraction(fraction float64) BoundingBox {
	if fraction <= 0 {
		return b
	}
	dLon := b.Width() * fraction
	dLat := b.Height() * fraction

	return BoundingBox{
		South: math.Max(b.South-dLat, math.Min(-MaxLatitude, b.South)),
		North: math.Min(b.North+dLat, math.Max(MaxLatitude, b.North)),
		West:  b.West - dLon,
		East:  b.East + dLon,
	}
}

// ParseBoundingBox parses "south,north,west,east" into a validated BoundingBox.
func ParseBoundingBox(s string) (BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, fmt.Errorf("expected 4 comma-separated values, got %d", len(parts))
	}

	var vals [4]float64
	for i, part := range parts {
		val, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("invalid number at position %d: %w", i, err)
		}
		vals[i] = val
	}

	b := NewBoundingBox(vals[0], vals[1], vals[2], vals[3])
	if err := b.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return b, nil
}
