// Package style builds Mapbox GL style documents: sources, layers,
// paint/layout properties and match filters.
package style

// DefaultVersion is the style specification version written by MakeStyle.
const DefaultVersion = 8

// Style is a style document as accepted by the Styles API.
type Style struct {
	Name     string         `json:"name"`
	Version  int            `json:"version"`
	Sources  Sources        `json:"sources"`
	Layers   []Layer        `json:"layers"`
	Metadata map[string]any `json:"metadata"`
	Draft    bool           `json:"draft"`
}

// StyleOptions holds the optional fields of MakeStyle.
type StyleOptions struct {
	Version int // 0 means DefaultVersion
	Draft   bool
}

// MakeStyle assembles a style document. Nil sources and layers become empty.
func MakeStyle(name string, sources Sources, layers []Layer, opts StyleOptions) Style {
	if sources == nil {
		sources = Sources{}
	}
	if layers == nil {
		layers = []Layer{}
	}
	version := opts.Version
	if version == 0 {
		version = DefaultVersion
	}

	return Style{
		Name:     name,
		Version:  version,
		Sources:  sources,
		Layers:   layers,
		Metadata: map[string]any{},
		Draft:    opts.Draft,
	}
}

// HasLayer reports whether a layer with id is already part of the style.
func (s Style) HasLayer(id string) bool {
	for _, l := range s.Layers {
		if l.ID == id {
			return true
		}
	}
	return false
}
