package style

import "fmt"

// FilterDefinition is the declarative form of MakeFilter. A nil Relation
// shows matching features.
type FilterDefinition struct {
	Value    any    `json:"value" mapstructure:"value"`
	Key      string `json:"key,omitempty" mapstructure:"key"`
	Relation *bool  `json:"relation,omitempty" mapstructure:"relation"`
}

// Filter builds the match expression.
func (d FilterDefinition) Filter() Filter {
	relation := true
	if d.Relation != nil {
		relation = *d.Relation
	}
	return MakeFilter(d.Value, d.Key, relation)
}

// LayerDefinition describes a layer in config files and request bodies.
// Color, Secondary and Opacity are merged into Paint as in MakePaint.
type LayerDefinition struct {
	SourceLayer string            `json:"source_layer" mapstructure:"source_layer"`
	Type        LayerType         `json:"type" mapstructure:"type"`
	Color       any               `json:"color,omitempty" mapstructure:"color"`
	Secondary   any               `json:"secondary,omitempty" mapstructure:"secondary"`
	Opacity     any               `json:"opacity,omitempty" mapstructure:"opacity"`
	Paint       Properties        `json:"paint,omitempty" mapstructure:"paint"`
	Filter      *FilterDefinition `json:"filter,omitempty" mapstructure:"filter"`
}

// Build validates the definition and creates the layer.
func (d LayerDefinition) Build() (Layer, error) {
	switch d.Type {
	case "", LayerFill, LayerLine, LayerBackground:
	default:
		return Layer{}, fmt.Errorf("unsupported layer type %q", d.Type)
	}
	if d.SourceLayer == "" && d.Type != LayerBackground {
		return Layer{}, fmt.Errorf("%s layer needs a source layer", d.typeName())
	}

	paint := MakePaint(PaintOptions{
		Color:     d.Color,
		Secondary: d.Secondary,
		Opacity:   d.Opacity,
		Extra:     d.Paint,
	})

	var filter Filter
	if d.Filter != nil {
		filter = d.Filter.Filter()
	}
	return MakeLayer(d.SourceLayer, paint, filter, d.Type)
}

func (d LayerDefinition) typeName() LayerType {
	if d.Type == "" {
		return LayerFill
	}
	return d.Type
}

// Definition is a complete style as written in the config file.
type Definition struct {
	Name     string            `json:"name" mapstructure:"name"`
	Tilesets []string          `json:"tilesets" mapstructure:"tilesets"`
	Layers   []LayerDefinition `json:"layers" mapstructure:"layers"`
	Draft    bool              `json:"draft" mapstructure:"draft"`
}

// Build assembles the style document. Layers with an id already present are
// skipped, so repeating a layer definition is harmless.
func (d Definition) Build() (Style, error) {
	if d.Name == "" {
		return Style{}, fmt.Errorf("style name is required")
	}

	var sources Sources
	if len(d.Tilesets) > 0 {
		sources = AddSources(d.Tilesets, nil)
	}

	s := MakeStyle(d.Name, sources, nil, StyleOptions{Draft: d.Draft})
	for i, ld := range d.Layers {
		layer, err := ld.Build()
		if err != nil {
			return Style{}, fmt.Errorf("layer %d: %w", i, err)
		}
		if s.HasLayer(layer.ID) {
			continue
		}
		s.Layers = append(s.Layers, layer)
	}
	return s, nil
}
