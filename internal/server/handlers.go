package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MeKo-Tech/mapboxutil/internal/archive"
	"github.com/MeKo-Tech/mapboxutil/internal/imagery"
	"github.com/MeKo-Tech/mapboxutil/internal/staticmap"
	"github.com/MeKo-Tech/mapboxutil/internal/style"
	"github.com/MeKo-Tech/mapboxutil/internal/types"
	"github.com/MeKo-Tech/mapboxutil/internal/viewport"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 1 << 20

type staticURLResponse struct {
	URL      string           `json:"url"`
	Viewport *viewport.Result `json:"viewport,omitempty"`
}

// handleViewport serves GET /viewport?bbox=south,north,west,east&width=&height=[&padding=].
func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := fitQuery(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleStaticURL serves GET /static-url. The center comes from bbox or from
// lat, lon and zoom.
func (s *Server) handleStaticURL(w http.ResponseWriter, r *http.Request) {
	opts, result, err := s.staticOptions(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, staticURLResponse{
		URL:      s.cfg.Client.StaticURL(opts),
		Viewport: result,
	})
}

// handleStaticImage serves GET /static-image: the image behind /static-url,
// fetched from the Static Images API.
func (s *Server) handleStaticImage(w http.ResponseWriter, r *http.Request) {
	opts, _, err := s.staticOptions(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	data, err := s.cfg.Client.FetchImage(r.Context(), s.cfg.Client.StaticURL(opts))
	if err != nil {
		s.logger.WarnContext(r.Context(), "static image fetch failed", "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	info, err := imagery.DetectFormat(data)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	w.Header().Set("Cache-Control", s.cfg.CacheControl)
	w.Header().Set("Content-Type", "image/"+info.Format)
	if _, err := w.Write(data); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}

// staticOptions reads the static image parameters shared by /static-url and
// /static-image. result is set when the center was fitted from bbox.
func (s *Server) staticOptions(q url.Values) (staticmap.URLOptions, *viewport.Result, error) {
	var (
		opts   staticmap.URLOptions
		result *viewport.Result
	)
	if q.Has("bbox") {
		fitted, err := fitQuery(q)
		if err != nil {
			return opts, nil, err
		}
		opts = staticmap.FromViewport(fitted)
		result = &fitted
	} else {
		var err error
		if opts, err = centerQuery(q); err != nil {
			return opts, nil, err
		}
	}

	for _, raw := range q["marker"] {
		m, err := staticmap.ParseMarker(raw)
		if err != nil {
			return opts, nil, err
		}
		opts.Overlays = append(opts.Overlays, m)
	}

	opts.Username = firstNonEmpty(q.Get("username"), s.cfg.Username)
	opts.Style = firstNonEmpty(q.Get("style"), s.cfg.Style)
	opts.CacheBust = q.Get("cachebust") == "true"
	return opts, result, nil
}

// handleLayer serves POST /layers with a style.LayerDefinition body.
// Numbers decode as float64, the same values a config file yields, so 2 and
// 2.0 give the same layer id.
func (s *Server) handleLayer(w http.ResponseWriter, r *http.Request) {
	var def style.LayerDefinition
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&def); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid layer definition: %w", err))
		return
	}

	layer, err := def.Build()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, layer)
}

// handleImage serves a stored image from the archive.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	entry, err := s.cfg.Archive.ReadImage(name)
	if errors.Is(err, archive.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to read image", "name", name, "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Cache-Control", s.cfg.CacheControl)
	w.Header().Set("Content-Type", "image/"+entry.Format)
	if _, err := w.Write(entry.Data); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}

func fitQuery(q url.Values) (viewport.Result, error) {
	box, err := types.ParseBoundingBox(q.Get("bbox"))
	if err != nil {
		return viewport.Result{}, err
	}
	width, height, err := sizeQuery(q)
	if err != nil {
		return viewport.Result{}, err
	}

	padding := 0.0
	if raw := q.Get("padding"); raw != "" {
		if padding, err = strconv.ParseFloat(raw, 64); err != nil {
			return viewport.Result{}, fmt.Errorf("invalid padding: %w", err)
		}
	}
	return viewport.FitPadded(box, width, height, padding)
}

func centerQuery(q url.Values) (staticmap.URLOptions, error) {
	var opts staticmap.URLOptions
	var err error
	for key, dst := range map[string]*float64{"lat": &opts.Latitude, "lon": &opts.Longitude, "zoom": &opts.Zoom} {
		raw := q.Get(key)
		if raw == "" {
			return opts, fmt.Errorf("missing %s (or bbox)", key)
		}
		if *dst, err = strconv.ParseFloat(raw, 64); err != nil {
			return opts, fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	opts.Width, opts.Height, err = sizeQuery(q)
	return opts, err
}

// sizeQuery reads width and height, each defaulting to staticmap.DefaultSize.
func sizeQuery(q url.Values) (width, height int, err error) {
	width, height = staticmap.DefaultSize, staticmap.DefaultSize
	if raw := q.Get("width"); raw != "" {
		if width, err = strconv.Atoi(raw); err != nil {
			return 0, 0, fmt.Errorf("invalid width: %w", err)
		}
	}
	if raw := q.Get("height"); raw != "" {
		if height, err = strconv.Atoi(raw); err != nil {
			return 0, 0, fmt.Errorf("invalid height: %w", err)
		}
	}
	return width, height, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
