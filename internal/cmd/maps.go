package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/MeKo-Tech/mapboxutil/internal/geojson"
	"github.com/MeKo-Tech/mapboxutil/internal/staticmap"
	"github.com/MeKo-Tech/mapboxutil/internal/types"
	"github.com/MeKo-Tech/mapboxutil/internal/viewport"
)

// MapConfig is one entry of the "maps" config list. The area comes from
// BBox ("south,north,west,east") or from the features of GeoJSON selected by
// Key and Values.
type MapConfig struct {
	Name     string             `mapstructure:"name"`
	BBox     string             `mapstructure:"bbox"`
	GeoJSON  string             `mapstructure:"geojson"`
	Key      string             `mapstructure:"key"`
	Values   []string           `mapstructure:"values"`
	Width    int                `mapstructure:"width"`
	Height   int                `mapstructure:"height"`
	Padding  float64            `mapstructure:"padding"`
	Style    string             `mapstructure:"style"`
	Username string             `mapstructure:"username"`
	Markers  []staticmap.Marker `mapstructure:"markers"`
}

// loadMaps reads the "maps" list from the config.
func loadMaps() ([]MapConfig, error) {
	var maps []MapConfig
	if err := viper.UnmarshalKey("maps", &maps); err != nil {
		return nil, fmt.Errorf("failed to decode maps config: %w", err)
	}
	seen := make(map[string]bool, len(maps))
	for i, m := range maps {
		if m.Name == "" {
			return nil, fmt.Errorf("maps[%d]: name is required", i)
		}
		if seen[m.Name] {
			return nil, fmt.Errorf("maps[%d]: duplicate name %q", i, m.Name)
		}
		seen[m.Name] = true
	}
	return maps, nil
}

// area returns the bounding box to show.
func (m MapConfig) area() (types.BoundingBox, error) {
	switch {
	case m.BBox != "" && m.GeoJSON != "":
		return types.BoundingBox{}, fmt.Errorf("map %q: set either bbox or geojson, not both", m.Name)
	case m.BBox != "":
		return types.ParseBoundingBox(m.BBox)
	case m.GeoJSON != "":
		return geojson.BoundsFromFile(m.GeoJSON, m.Key, m.Values...)
	default:
		return types.BoundingBox{}, fmt.Errorf("map %q: bbox or geojson is required", m.Name)
	}
}

// size returns the requested canvas, defaulting to staticmap.DefaultSize.
func (m MapConfig) size() (width, height int) {
	width, height = m.Width, m.Height
	if width == 0 {
		width = staticmap.DefaultSize
	}
	if height == 0 {
		height = staticmap.DefaultSize
	}
	return width, height
}

// plan fits the area into the canvas and returns the url options for it.
func (m MapConfig) plan() (viewport.Result, staticmap.URLOptions, error) {
	box, err := m.area()
	if err != nil {
		return viewport.Result{}, staticmap.URLOptions{}, err
	}
	width, height := m.size()

	result, err := viewport.FitPadded(box, width, height, m.Padding)
	if err != nil {
		return viewport.Result{}, staticmap.URLOptions{}, fmt.Errorf("map %q: %w", m.Name, err)
	}

	opts := staticmap.FromViewport(result)
	opts.Style = m.Style
	opts.Username = m.Username
	opts.Overlays = m.Markers
	return result, opts, nil
}
