package style

// Filter is a match expression:
// ["match", selector, value, matched, otherwise].
type Filter []any

// MakeFilter builds a match filter on the feature id (key "id" or "") or on
// the property key. With relation true matching features are shown, with
// relation false they are hidden.
func MakeFilter(value any, key string, relation bool) Filter {
	var selector []any
	if key == "" || key == "id" {
		selector = []any{"id"}
	} else {
		selector = []any{"get", key}
	}
	return Filter{"match", selector, value, relation, !relation}
}

// MakeLegacyFilter builds the filter of older styles, which always show
// matching features.
func MakeLegacyFilter(value any, key string) Filter {
	return MakeFilter(value, key, true)
}
