package style

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeStyleDefaults(t *testing.T) {
	s := MakeStyle("choropleth", nil, nil, StyleOptions{})

	assert.Equal(t, "choropleth", s.Name)
	assert.Equal(t, 8, s.Version)
	assert.False(t, s.Draft)
	assert.NotNil(t, s.Sources)
	assert.NotNil(t, s.Layers)
	assert.Empty(t, s.Metadata)

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"choropleth","version":8,"sources":{},"layers":[],"metadata":{},"draft":false}`, string(raw))
}

func TestMakeStyleOptions(t *testing.T) {
	layer, err := MakeLayer("areas", Properties{"color": "#088"}, nil, LayerFill)
	require.NoError(t, err)

	s := MakeStyle("choropleth", AddSources([]string{"mapbox.countries"}, nil), []Layer{layer}, StyleOptions{Version: 9, Draft: true})

	assert.Equal(t, 9, s.Version)
	assert.True(t, s.Draft)
	assert.Equal(t, "mapbox://mapbox.countries", s.Sources[CompositeSource].URL)
	assert.True(t, s.HasLayer(layer.ID))
	assert.False(t, s.HasLayer("layer-unknown"))
}

func TestAddSources(t *testing.T) {
	sources := AddSources([]string{"a"}, Sources{})
	sources = AddSources([]string{"b"}, sources)

	assert.Equal(t, Source{Type: "vector", URL: "mapbox://a,b"}, sources[CompositeSource])
}

func TestAddSourcesMultipleIDs(t *testing.T) {
	sources := AddSources([]string{"user.abc", "user.def"}, nil)

	assert.Equal(t, "mapbox://user.abc,user.def", sources[CompositeSource].URL)
}

func TestAddSourcesAppendsDuplicates(t *testing.T) {
	sources := AddSources([]string{"a"}, nil)
	sources = AddSources([]string{"a"}, sources)

	assert.Equal(t, "mapbox://a,a", sources[CompositeSource].URL)
}

func TestAddSourcesKeepsOtherSources(t *testing.T) {
	sources := Sources{"terrain": {Type: "raster-dem", URL: "mapbox://mapbox.terrain-rgb"}}

	sources = AddSources([]string{"a"}, sources)

	assert.Len(t, sources, 2)
	assert.Equal(t, "mapbox://mapbox.terrain-rgb", sources["terrain"].URL)
}

func TestMakePaint(t *testing.T) {
	assert.Equal(t, Properties{}, MakePaint(PaintOptions{}))

	paint := MakePaint(PaintOptions{
		Color:   "#088",
		Opacity: 0,
		Extra:   Properties{"line_dasharray": []int{2, 1}, "color": "#fff"},
	})
	assert.Equal(t, Properties{
		"color":          "#088",
		"opacity":        0,
		"line_dasharray": []int{2, 1},
	}, paint)
}
