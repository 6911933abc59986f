package style

import "strings"

// LayerType is the type of a style layer.
type LayerType string

const (
	LayerFill       LayerType = "fill"
	LayerLine       LayerType = "line"
	LayerBackground LayerType = "background"
)

// Property selects the paint or layout half of a layer.
type Property string

const (
	PropertyPaint  Property = "paint"
	PropertyLayout Property = "layout"
)

// allowed lists the keys kept by Validate for each layer type and property.
var allowed = map[LayerType]map[Property][]string{
	LayerBackground: {
		PropertyPaint: {"background-color", "background-opacity"},
	},
	LayerFill: {
		PropertyPaint: {"fill-color", "fill-opacity", "fill-outline-color"},
	},
	LayerLine: {
		PropertyLayout: {"line-cap", "line-join"},
		PropertyPaint:  {"line-color", "line-dasharray", "line-opacity", "line-width"},
	},
}

// secondaryProperty is the concrete key that the generic "secondary" maps to.
var secondaryProperty = map[LayerType]string{
	LayerFill: "fill-outline-color",
	LayerLine: "line-width",
}

var defaults = map[string]any{
	"line-cap":  "round",
	"line-join": "round",
}

// Allowed returns the keys Validate keeps for layerType and property.
func Allowed(layerType LayerType, property Property) []string {
	keys := allowed[layerType][property]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Validate normalizes data for a layer of layerType and keeps only the keys
// allowed for property. Underscores become hyphens, bare keys such as color
// are also tried as {type}-color, secondary resolves to the type's secondary
// property and line-cap/line-join default to round. Explicit keys win over
// derived ones. Unknown keys are dropped without error.
func Validate(data Properties, layerType LayerType, property Property) Properties {
	normalized := make(Properties, len(data))
	for k, v := range data {
		key := strings.ReplaceAll(k, "_", "-")
		if key != k {
			// fill-color beats fill_color when both are given
			if _, ok := data[key]; ok {
				continue
			}
		}
		normalized[key] = v
	}

	merged := make(Properties, 2*len(normalized)+len(defaults))
	prefix := string(layerType) + "-"
	for k, v := range normalized {
		merged[prefix+k] = v
	}
	for k, v := range normalized {
		merged[k] = v
	}

	if v, ok := merged["secondary"]; ok && v != nil {
		if target, ok := secondaryProperty[layerType]; ok {
			if _, set := merged[target]; !set {
				merged[target] = v
			}
		}
	}

	for k, v := range defaults {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}

	out := Properties{}
	for _, k := range allowed[layerType][property] {
		if v, ok := merged[k]; ok {
			out[k] = v
		}
	}
	return out
}
