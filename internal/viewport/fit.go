package viewport

import (
	"math"

	"github.com/MeKo-Tech/mapboxutil/internal/types"
	"github.com/paulmach/orb"
)

// Result describes a static image that shows a bounding box.
// Width and Height are the size of the box itself at the rounded zoom,
// which can differ slightly from the requested canvas.
type Result struct {
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
}

// FitBoundingBox computes the center, zoom and pixel size of a static image
// showing the box south/north/west/east on a width x height canvas.
func FitBoundingBox(south, north, west, east float64, width, height int) (Result, error) {
	return Fit(types.NewBoundingBox(south, north, west, east), width, height)
}

// Fit is FitBoundingBox for a types.BoundingBox.
func Fit(box types.BoundingBox, width, height int) (Result, error) {
	if err := checkInput(box, width, height); err != nil {
		return Result{}, err
	}

	southY := LatitudeToMercator(box.South)
	northY := LatitudeToMercator(box.North)
	westX := LongitudeToMercator(box.West)
	eastX := LongitudeToMercator(box.East)

	spanX := eastX - westX
	spanY := southY - northY

	// The more constraining axis wins so that the whole box stays visible.
	zoom := math.Min(
		ZoomForSpan(spanY, float64(height)),
		ZoomForSpan(spanX, float64(width)),
	)
	zoom = round2(math.Max(0, zoom))
	factor := PixelsPerUnit(zoom)

	return Result{
		Width:     int(math.Round(spanX * factor)),
		Height:    int(math.Round(spanY * factor)),
		Latitude:  MercatorToLatitude((northY + southY) / 2),
		Longitude: MercatorToLongitude((westX + eastX) / 2),
		Zoom:      zoom,
	}, nil
}

// FitPadded grows the box by fraction of its span on every side before fitting.
func FitPadded(box types.BoundingBox, width, height int, fraction float64) (Result, error) {
	if fraction < 0 || math.IsNaN(fraction) {
		return Result{}, &DomainError{Field: "padding", Value: fraction, Reason: "must be >= 0"}
	}
	if err := checkInput(box, width, height); err != nil {
		return Result{}, err
	}
	return Fit(box.ExpandByFraction(fraction), width, height)
}

// Bound returns the geographic extent of the image described by r.
func (r Result) Bound() orb.Bound {
	factor := PixelsPerUnit(r.Zoom)
	halfX := float64(r.Width) / 2 / factor
	halfY := float64(r.Height) / 2 / factor
	cx := LongitudeToMercator(r.Longitude)
	cy := LatitudeToMercator(r.Latitude)

	return orb.Bound{
		Min: orb.Point{MercatorToLongitude(cx - halfX), MercatorToLatitude(cy + halfY)},
		Max: orb.Point{MercatorToLongitude(cx + halfX), MercatorToLatitude(cy - halfY)},
	}
}

func checkInput(box types.BoundingBox, width, height int) error {
	edges := []struct {
		name string
		v    float64
	}{
		{"south", box.South},
		{"north", box.North},
		{"west", box.West},
		{"east", box.East},
	}
	for _, e := range edges {
		if math.IsNaN(e.v) || math.IsInf(e.v, 0) {
			return &DomainError{Field: e.name, Value: e.v, Reason: "must be finite"}
		}
	}
	if box.South <= -90 {
		return &DomainError{Field: "south", Value: box.South, Reason: "latitude must be > -90"}
	}
	if box.North >= 90 {
		return &DomainError{Field: "north", Value: box.North, Reason: "latitude must be < 90"}
	}
	if box.North <= box.South {
		return &DomainError{Field: "north", Value: box.North, Reason: "must be north of south"}
	}
	if box.East <= box.West {
		return &DomainError{Field: "east", Value: box.East, Reason: "must be east of west"}
	}
	if width <= 0 {
		return &DomainError{Field: "width", Value: float64(width), Reason: "must be positive"}
	}
	if height <= 0 {
		return &DomainError{Field: "height", Value: float64(height), Reason: "must be positive"}
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
