package staticmap

import (
	"fmt"
	"strconv"
	"strings"
)

// MarkerSize is the pin size of an overlay marker.
type MarkerSize string

const (
	MarkerSmall MarkerSize = "s"
	MarkerLarge MarkerSize = "l"
)

// Marker is a pin overlay on a static image.
type Marker struct {
	Latitude  float64    `json:"latitude" mapstructure:"latitude"`
	Longitude float64    `json:"longitude" mapstructure:"longitude"`
	Color     string     `json:"color,omitempty" mapstructure:"color"` // 3 or 6 hex digits, no '#'
	Label     string     `json:"label,omitempty" mapstructure:"label"`
	Size      MarkerSize `json:"size,omitempty" mapstructure:"size"` // defaults to small
}

// String returns the overlay path segment, e.g. "pin-l-a+f00(4.35,50.85)".
func (m Marker) String() string {
	var b strings.Builder
	if m.Size == MarkerLarge {
		b.WriteString("pin-l")
	} else {
		b.WriteString("pin-s")
	}
	if m.Label != "" {
		b.WriteString("-" + m.Label)
	}
	if m.Color != "" {
		b.WriteString("+" + m.Color)
	}
	fmt.Fprintf(&b, "(%s,%s)", formatFloat(m.Longitude), formatFloat(m.Latitude))
	return b.String()
}

// ParseMarker parses "lat,lon[,color[,label[,size]]]".
func ParseMarker(s string) (Marker, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 5 {
		return Marker{}, fmt.Errorf("invalid marker %q: expected lat,lon[,color[,label[,size]]]", s)
	}

	var m Marker
	var err error
	if m.Latitude, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return Marker{}, fmt.Errorf("invalid marker latitude: %w", err)
	}
	if m.Longitude, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return Marker{}, fmt.Errorf("invalid marker longitude: %w", err)
	}
	if len(parts) > 2 {
		m.Color = strings.TrimPrefix(strings.TrimSpace(parts[2]), "#")
	}
	if len(parts) > 3 {
		m.Label = strings.TrimSpace(parts[3])
	}
	if len(parts) > 4 {
		switch size := MarkerSize(strings.TrimSpace(parts[4])); size {
		case MarkerSmall, MarkerLarge:
			m.Size = size
		default:
			return Marker{}, fmt.Errorf("invalid marker size %q: must be s or l", size)
		}
	}
	return m, nil
}
