package viewport

import (
	"errors"
	"math"
	"testing"

	"github.com/MeKo-Tech/mapboxutil/internal/types"
)

func TestFitBoundingBox(t *testing.T) {
	tests := []struct {
		name          string
		south, north  float64
		west, east    float64
		width, height int
		want          Result
	}{
		{
			name:  "belgium",
			south: 49.49, north: 51.51, west: 2.54, east: 6.41,
			width: 800, height: 600,
			want: Result{Width: 729, Height: 599, Latitude: 50.51080168604623, Longitude: 4.475, Zoom: 7.05},
		},
		{
			name:  "hanover",
			south: 52.3, north: 52.45, west: 9.6, east: 9.9,
			width: 1024, height: 768,
			want: Result{Width: 937, Height: 767, Latitude: 52.375063683859274, Longitude: 9.75, Zoom: 11.1},
		},
		{
			name:  "almost world",
			south: -60, north: 75, west: -170, east: 170,
			width: 512, height: 512,
			want: Result{Width: 511, Height: 288, Latitude: 19.94277111702787, Longitude: 0, Zoom: 0.08},
		},
		{
			name:  "zoom floored at zero",
			south: -80, north: 80, west: -180, east: 180,
			width: 256, height: 256,
			want: Result{Width: 512, Height: 397, Latitude: 0, Longitude: 0, Zoom: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FitBoundingBox(tt.south, tt.north, tt.west, tt.east, tt.width, tt.height)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Width != tt.want.Width || got.Height != tt.want.Height {
				t.Errorf("size = %dx%d, want %dx%d", got.Width, got.Height, tt.want.Width, tt.want.Height)
			}
			if got.Zoom != tt.want.Zoom {
				t.Errorf("zoom = %v, want %v", got.Zoom, tt.want.Zoom)
			}
			if math.Abs(got.Latitude-tt.want.Latitude) > 1e-9 || math.Abs(got.Longitude-tt.want.Longitude) > 1e-9 {
				t.Errorf("center = (%.9f, %.9f), want (%.9f, %.9f)",
					got.Latitude, got.Longitude, tt.want.Latitude, tt.want.Longitude)
			}
		})
	}
}

func TestFitMatchingAspectRatio(t *testing.T) {
	// A box that is exactly 0.5 x 0.5 Mercator units around (0, 0).
	box := types.BoundingBox{
		South: MercatorToLatitude(math.Pi + 0.25),
		North: MercatorToLatitude(math.Pi - 0.25),
		West:  MercatorToLongitude(math.Pi - 0.25),
		East:  MercatorToLongitude(math.Pi + 0.25),
	}

	for _, size := range []int{256, 512, 1000} {
		got, err := Fit(box, size, size)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Rounding the zoom to 2 decimals changes the scale by at most 2^0.005.
		tolerance := math.Ceil(float64(size) * (math.Exp2(0.005) - 1))
		if math.Abs(float64(got.Width-size)) > tolerance || math.Abs(float64(got.Height-size)) > tolerance {
			t.Errorf("Fit(%d x %d) = %dx%d, tolerance %.0f", size, size, got.Width, got.Height, tolerance)
		}
		if got.Width != got.Height {
			t.Errorf("square box gave non-square image %dx%d", got.Width, got.Height)
		}
	}
}

func TestFitDoublingSpanDecreasesZoomByOne(t *testing.T) {
	// Width-constrained boxes: doubling the longitude span doubles the Mercator width.
	spans := []float64{2.5, 5, 10, 20, 40, 80}
	var previous Result
	for i, span := range spans {
		got, err := FitBoundingBox(-1, 1, -span/2, span/2, 600, 600)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if i > 0 {
			diff := previous.Zoom - got.Zoom
			if math.Abs(diff-1) > 0.010001 {
				t.Errorf("span %.1f -> %.1f: zoom %.2f -> %.2f, want a decrease of 1",
					spans[i-1], span, previous.Zoom, got.Zoom)
			}
		}
		previous = got
	}
}

func TestFitDomainErrors(t *testing.T) {
	tests := []struct {
		name          string
		box           types.BoundingBox
		width, height int
		field         string
	}{
		{"zero height", types.BoundingBox{South: 50, North: 50, West: 2, East: 6}, 512, 512, "north"},
		{"zero width", types.BoundingBox{South: 49, North: 51, West: 4, East: 4}, 512, 512, "east"},
		{"negative width", types.BoundingBox{South: 49, North: 51, West: 6, East: 2}, 512, 512, "east"},
		{"north pole", types.BoundingBox{South: 80, North: 90, West: 2, East: 6}, 512, 512, "north"},
		{"south pole", types.BoundingBox{South: -90, North: -80, West: 2, East: 6}, 512, 512, "south"},
		{"infinite", types.BoundingBox{South: 49, North: 51, West: math.Inf(-1), East: 6}, 512, 512, "west"},
		{"nan", types.BoundingBox{South: math.NaN(), North: 51, West: 2, East: 6}, 512, 512, "south"},
		{"empty canvas", types.BoundingBox{South: 49, North: 51, West: 2, East: 6}, 0, 512, "width"},
		{"negative height", types.BoundingBox{South: 49, North: 51, West: 2, East: 6}, 512, -1, "height"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(tt.box, tt.width, tt.height)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, ErrDomain) {
				t.Errorf("expected ErrDomain, got %v", err)
			}
			var de *DomainError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DomainError, got %T", err)
			}
			if de.Field != tt.field {
				t.Errorf("Field = %q, want %q", de.Field, tt.field)
			}
		})
	}
}

func TestFitPadded(t *testing.T) {
	box := types.BoundingBox{South: 49.49, North: 51.51, West: 2.54, East: 6.41}

	plain, err := Fit(box, 800, 600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	padded, err := FitPadded(box, 800, 600, 0.1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if padded.Zoom >= plain.Zoom {
		t.Errorf("padding should zoom out: %.2f >= %.2f", padded.Zoom, plain.Zoom)
	}

	same, err := FitPadded(box, 800, 600, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if same != plain {
		t.Errorf("FitPadded(0) = %+v, want %+v", same, plain)
	}

	if _, err := FitPadded(box, 800, 600, -0.1); !errors.Is(err, ErrDomain) {
		t.Errorf("expected ErrDomain for negative padding, got %v", err)
	}
}

func TestFitPaddedNearPole(t *testing.T) {
	box := types.BoundingBox{South: 86, North: 88, West: 0, East: 10}

	plain, err := Fit(box, 512, 512)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	padded, err := FitPadded(box, 512, 512, 0.1)
	if err != nil {
		t.Fatalf("FitPadded near the pole: %v", err)
	}
	if padded.Zoom > plain.Zoom {
		t.Errorf("padding should not zoom in: %.2f > %.2f", padded.Zoom, plain.Zoom)
	}
}

func TestResultBoundContainsBox(t *testing.T) {
	box := types.BoundingBox{South: 49.49, North: 51.51, West: 2.54, East: 6.41}

	r, err := Fit(box, 800, 600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := r.Bound()

	const eps = 0.01 // pixel rounding
	if b.Min.Lon() > box.West+eps || b.Max.Lon() < box.East-eps {
		t.Errorf("longitude extent [%.4f, %.4f] does not cover [%.4f, %.4f]",
			b.Min.Lon(), b.Max.Lon(), box.West, box.East)
	}
	if b.Min.Lat() > box.South+eps || b.Max.Lat() < box.North-eps {
		t.Errorf("latitude extent [%.4f, %.4f] does not cover [%.4f, %.4f]",
			b.Min.Lat(), b.Max.Lat(), box.South, box.North)
	}
}
