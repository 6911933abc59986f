package viewport

import (
	"math"
	"testing"
)

func TestMercatorConversion(t *testing.T) {
	// Test round-trip conversion
	testPoints := [][2]float64{
		{0, 0},           // Null Island
		{4.35, 50.85},    // Brussels
		{-122.42, 37.78}, // San Francisco
		{139.69, 35.69},  // Tokyo
		{-70.65, -33.45}, // Santiago
		{25.0, 85.0},
	}

	for _, point := range testPoints {
		lon, lat := point[0], point[1]

		x := LongitudeToMercator(lon)
		y := LatitudeToMercator(lat)
		lon2 := MercatorToLongitude(x)
		lat2 := MercatorToLatitude(y)

		t.Logf("Point (%.2f, %.2f) -> Mercator (%.6f, %.6f) -> (%.9f, %.9f)",
			lon, lat, x, y, lon2, lat2)

		if math.Abs(lon-lon2) > 1e-9 || math.Abs(lat-lat2) > 1e-9 {
			t.Errorf("Round-trip conversion failed: (%.9f, %.9f) != (%.9f, %.9f)",
				lon, lat, lon2, lat2)
		}
	}
}

func TestMercatorOrigin(t *testing.T) {
	if got := LatitudeToMercator(0); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("LatitudeToMercator(0) = %f, want π", got)
	}
	if got := LongitudeToMercator(-180); math.Abs(got) > 1e-12 {
		t.Errorf("LongitudeToMercator(-180) = %f, want 0", got)
	}
	if got := LongitudeToMercator(180); math.Abs(got-2*math.Pi) > 1e-12 {
		t.Errorf("LongitudeToMercator(180) = %f, want 2π", got)
	}
	// y grows southward
	if LatitudeToMercator(-10) <= LatitudeToMercator(10) {
		t.Errorf("expected southern latitudes to have larger y")
	}
}

func TestZoomForSpan(t *testing.T) {
	tests := []struct {
		span   float64
		pixels float64
		want   float64
	}{
		{2 * math.Pi, 512, 0},
		{2 * math.Pi, 256, -1},
		{math.Pi, 512, 1},
		{2 * math.Pi / 1024, 256, 8},
	}

	for _, tt := range tests {
		got := ZoomForSpan(tt.span, tt.pixels)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ZoomForSpan(%f, %f) = %f, want %f", tt.span, tt.pixels, got, tt.want)
		}
	}
}

func TestPixelsPerUnitInvertsZoomForSpan(t *testing.T) {
	span := 0.0123
	zoom := ZoomForSpan(span, 640)
	if got := span * PixelsPerUnit(zoom); math.Abs(got-640) > 1e-6 {
		t.Errorf("span * PixelsPerUnit(zoom) = %f, want 640", got)
	}
}
