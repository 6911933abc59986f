// Package staticmap formats Mapbox Static Images API requests.
package staticmap

import (
	"fmt"
	"math/rand/v2"
	"net/url"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/mapboxutil/internal/viewport"
)

const (
	DefaultBaseURL  = "https://api.mapbox.com"
	DefaultUsername = "mapbox"
	DefaultStyle    = "streets-v11"
	DefaultSize     = 512

	// cacheBustJitter is the largest offset added to the center by CacheBust.
	cacheBustJitter = 1e-9
)

// URLOptions describes a static image request.
type URLOptions struct {
	BaseURL     string // defaults to DefaultBaseURL
	Username    string // owner of the style, defaults to DefaultUsername
	Style       string // defaults to DefaultStyle
	Latitude    float64
	Longitude   float64
	Zoom        float64
	Width       int // defaults to DefaultSize
	Height      int // defaults to DefaultSize
	Overlays    []Marker
	AccessToken string
	// CacheBust moves the center by a negligible random amount so the API
	// does not serve a cached image.
	CacheBust bool
}

// FromViewport returns options for the center, zoom and size of r.
func FromViewport(r viewport.Result) URLOptions {
	return URLOptions{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Zoom:      r.Zoom,
		Width:     r.Width,
		Height:    r.Height,
	}
}

// URL returns the static image url:
// {base}/styles/v1/{username}/{style}/static/[{overlays}/]{lon},{lat},{zoom}/{w}x{h}?access_token={token}
func URL(opts URLOptions) string {
	opts = opts.withDefaults()

	lat, lon := opts.Latitude, opts.Longitude
	if opts.CacheBust {
		lat += (rand.Float64()*2 - 1) * cacheBustJitter
		lon += (rand.Float64()*2 - 1) * cacheBustJitter
	}

	overlay := Overlay(opts.Overlays)
	if overlay != "" {
		overlay += "/"
	}

	return fmt.Sprintf("%s/styles/v1/%s/%s/static/%s%s,%s,%s/%dx%d?access_token=%s",
		strings.TrimSuffix(opts.BaseURL, "/"),
		opts.Username,
		opts.Style,
		overlay,
		formatFloat(lon),
		formatFloat(lat),
		formatFloat(opts.Zoom),
		opts.Width,
		opts.Height,
		url.QueryEscape(opts.AccessToken),
	)
}

// Overlay joins markers into the overlay path segment.
func Overlay(markers []Marker) string {
	parts := make([]string, 0, len(markers))
	for _, m := range markers {
		parts = append(parts, m.String())
	}
	return strings.Join(parts, ",")
}

func (o URLOptions) withDefaults() URLOptions {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Username == "" {
		o.Username = DefaultUsername
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Width <= 0 {
		o.Width = DefaultSize
	}
	if o.Height <= 0 {
		o.Height = DefaultSize
	}
	return o
}

// formatFloat uses the shortest representation that round-trips.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
