package style

// Properties is a paint or layout mapping. Keys may use underscores
// and the generic names color, secondary and opacity until validated.
type Properties map[string]any

// PaintOptions collects the generic paint arguments.
// Nil fields are left out of the result.
type PaintOptions struct {
	Color     any
	Secondary any
	Opacity   any
	Extra     Properties
}

// MakePaint returns the unvalidated properties described by opts.
// The result feeds both the paint and the layout of MakeLayer.
func MakePaint(opts PaintOptions) Properties {
	paint := make(Properties, len(opts.Extra)+3)
	for k, v := range opts.Extra {
		paint[k] = v
	}
	if opts.Color != nil {
		paint["color"] = opts.Color
	}
	if opts.Secondary != nil {
		paint["secondary"] = opts.Secondary
	}
	if opts.Opacity != nil {
		paint["opacity"] = opts.Opacity
	}
	return paint
}
