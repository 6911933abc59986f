package style

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Layer is a style layer. Background layers carry no source.
type Layer struct {
	ID          string     `json:"id"`
	Type        LayerType  `json:"type"`
	Source      string     `json:"source,omitempty"`
	SourceLayer string     `json:"source-layer,omitempty"`
	Paint       Properties `json:"paint"`
	Layout      Properties `json:"layout,omitempty"`
	Filter      Filter     `json:"filter,omitempty"`
}

// layerKey is the canonical form hashed into a layer id. Field order is part
// of the id format; map keys are sorted by encoding/json.
type layerKey struct {
	SourceLayer string     `json:"source_layer"`
	Paint       Properties `json:"paint"`
	Filter      Filter     `json:"filter"`
	Type        LayerType  `json:"type"`
}

// LayerID returns "layer" followed by the hex SHA-224 of the compact JSON
// encoding of the arguments. Equal arguments always give the same id.
func LayerID(sourceLayer string, paint Properties, filter Filter, layerType LayerType) (string, error) {
	if paint == nil {
		paint = Properties{}
	}
	if len(filter) == 0 {
		filter = nil
	}

	payload, err := json.Marshal(layerKey{
		SourceLayer: sourceLayer,
		Paint:       paint,
		Filter:      filter,
		Type:        layerType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode layer %q: %w", sourceLayer, err)
	}

	sum := sha256.Sum224(payload)
	return "layer" + hex.EncodeToString(sum[:]), nil
}

// MakeLayer builds a layer of layerType (fill when empty) reading sourceLayer
// from the composite source. paint is validated twice, once for paint and once
// for layout properties.
func MakeLayer(sourceLayer string, paint Properties, filter Filter, layerType LayerType) (Layer, error) {
	if layerType == "" {
		layerType = LayerFill
	}

	id, err := LayerID(sourceLayer, paint, filter, layerType)
	if err != nil {
		return Layer{}, err
	}

	layer := Layer{
		ID:          id,
		Type:        layerType,
		Source:      CompositeSource,
		SourceLayer: sourceLayer,
		Paint:       Validate(paint, layerType, PropertyPaint),
		Layout:      Validate(paint, layerType, PropertyLayout),
	}
	if len(layer.Layout) == 0 {
		layer.Layout = nil
	}
	if layerType == LayerBackground {
		layer.Source = ""
		layer.SourceLayer = ""
	}
	if len(filter) > 0 {
		layer.Filter = filter
	}
	return layer, nil
}
