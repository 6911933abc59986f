// Package geojson reads the areas of a choropleth map from GeoJSON files.
package geojson

import (
	"errors"
	"fmt"
	"os"

	"github.com/MeKo-Tech/mapboxutil/internal/types"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrNoGeometry is returned when a collection has nothing to take bounds of.
var ErrNoGeometry = errors.New("geojson: no features with geometry")

// Load reads a FeatureCollection from path.
func Load(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return fc, nil
}

// Select returns the features whose property key equals one of values.
// Values are compared in their fmt %v form so numeric ids match strings.
// With no values every feature is kept.
func Select(fc *geojson.FeatureCollection, key string, values ...string) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	if len(values) == 0 {
		out.Features = append(out.Features, fc.Features...)
		return out
	}

	wanted := make(map[string]struct{}, len(values))
	for _, v := range values {
		wanted[v] = struct{}{}
	}

	for _, f := range fc.Features {
		var v any
		if key == "id" {
			v = f.ID
		} else {
			v = f.Properties[key]
		}
		if v == nil {
			continue
		}
		if _, ok := wanted[fmt.Sprint(v)]; ok {
			out.Append(f)
		}
	}
	return out
}

// Bounds returns the bounding box of all geometries in fc.
func Bounds(fc *geojson.FeatureCollection) (types.BoundingBox, error) {
	var (
		bound orb.Bound
		found bool
	)
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bound()
		if !found {
			bound = b
			found = true
			continue
		}
		bound = bound.Union(b)
	}

	if !found {
		return types.BoundingBox{}, ErrNoGeometry
	}
	return types.FromBound(bound), nil
}

// BoundsFromFile loads path and returns the bounds of the features whose
// property key matches one of values (all features when values is empty).
func BoundsFromFile(path, key string, values ...string) (types.BoundingBox, error) {
	fc, err := Load(path)
	if err != nil {
		return types.BoundingBox{}, err
	}

	b, err := Bounds(Select(fc, key, values...))
	if err != nil {
		return types.BoundingBox{}, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}
