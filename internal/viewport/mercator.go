// Package viewport fits geographic bounding boxes into static map images
// using spherical Web Mercator in radians, shifted by π so that both axes
// start at 0 in the north-west corner and y grows southward.
package viewport

import "math"

// tileSize is the pixel size of a zoom level 0 tile.
const tileSize = 256

// LatitudeToMercator converts a latitude in degrees to a Mercator y coordinate.
// The poles map to ±Inf; callers must guard against them.
func LatitudeToMercator(lat float64) float64 {
	return math.Pi - math.Log(math.Tan(math.Pi/4+radians(lat)/2))
}

// LongitudeToMercator converts a longitude in degrees to a Mercator x coordinate.
// Longitudes outside [-180, 180] are not wrapped.
func LongitudeToMercator(lon float64) float64 {
	return radians(lon) + math.Pi
}

// MercatorToLatitude converts a Mercator y coordinate back to degrees.
func MercatorToLatitude(y float64) float64 {
	return degrees(2*math.Atan(math.Exp(math.Pi-y)) - math.Pi/2)
}

// MercatorToLongitude converts a Mercator x coordinate back to degrees.
func MercatorToLongitude(x float64) float64 {
	return degrees(x - math.Pi)
}

// ZoomForSpan returns the zoom level at which span Mercator units cover pixels pixels.
func ZoomForSpan(span, pixels float64) float64 {
	return math.Log2(pixels * math.Pi / span / tileSize)
}

// PixelsPerUnit returns the number of pixels per Mercator unit at zoom.
func PixelsPerUnit(zoom float64) float64 {
	return tileSize / math.Pi * math.Exp2(zoom)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
