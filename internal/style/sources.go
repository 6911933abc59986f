package style

import "strings"

// CompositeSource is the id of the vector source that AddSources maintains.
const CompositeSource = "composite"

// Source is a vector source definition.
type Source struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Sources maps source ids to their definitions.
type Sources map[string]Source

// AddSources appends tileset ids to the composite source url and returns sources.
// A nil map is allocated. Ids already present are appended again.
func AddSources(ids []string, sources Sources) Sources {
	if sources == nil {
		sources = Sources{}
	}

	url := sources[CompositeSource].URL
	if url != "" {
		url += ","
	} else {
		url = "mapbox://"
	}

	sources[CompositeSource] = Source{
		Type: "vector",
		URL:  url + strings.Join(ids, ","),
	}
	return sources
}
