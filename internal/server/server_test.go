package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/mapboxutil/internal/archive"
	"github.com/MeKo-Tech/mapboxutil/internal/mapbox"
	"github.com/MeKo-Tech/mapboxutil/internal/metrics"
	"github.com/MeKo-Tech/mapboxutil/internal/style"
	"github.com/MeKo-Tech/mapboxutil/internal/viewport"
)

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	if cfg.Client == nil {
		cfg.Client = mapbox.NewClient(mapbox.Config{
			Credentials: mapbox.DefaultCredentials().With("pk.test", ""),
		})
	}
	ts := httptest.NewServer(New(cfg, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestViewport(t *testing.T) {
	ts := newTestServer(t, Config{})

	var got viewport.Result
	resp := getJSON(t, ts.URL+"/viewport?bbox=49.49,51.51,2.54,6.41&width=800&height=600", &got)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 729, got.Width)
	assert.Equal(t, 599, got.Height)
	assert.InDelta(t, 50.51080168604623, got.Latitude, 1e-9)
	assert.InDelta(t, 4.475, got.Longitude, 1e-9)
	assert.Equal(t, 7.05, got.Zoom)
}

func TestViewport_BadRequests(t *testing.T) {
	ts := newTestServer(t, Config{})

	for name, query := range map[string]string{
		"missing bbox": "",
		"zero span":    "?bbox=50,50,2,6",
		"pole":         "?bbox=0,90,2,6",
		"bad width":    "?bbox=49,51,2,6&width=abc",
		"zero height":  "?bbox=49,51,2,6&height=0",
		"neg padding":  "?bbox=49,51,2,6&padding=-1",
		"bad padding":  "?bbox=49,51,2,6&padding=x",
	} {
		t.Run(name, func(t *testing.T) {
			var body map[string]string
			resp := getJSON(t, ts.URL+"/viewport"+query, &body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestStaticURL_FromCenter(t *testing.T) {
	ts := newTestServer(t, Config{Username: "technetium", Style: "choropleth"})

	var got staticURLResponse
	resp := getJSON(t, ts.URL+"/static-url?lat=50.85&lon=4.35&zoom=9&width=300&height=200&marker=50.85,4.35,f00,a,l", &got)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, got.Viewport)
	assert.Equal(t,
		"https://api.mapbox.com/styles/v1/technetium/choropleth/static/pin-l-a+f00(4.35,50.85)/4.35,50.85,9/300x200?access_token=pk.test",
		got.URL)
}

func TestStaticURL_FromBoundingBox(t *testing.T) {
	ts := newTestServer(t, Config{})

	var got staticURLResponse
	resp := getJSON(t, ts.URL+"/static-url?bbox=52.3,52.45,9.6,9.9&width=1024&height=768&style=light-v10", &got)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, got.Viewport)
	assert.Equal(t, 937, got.Viewport.Width)
	assert.Contains(t, got.URL, "/styles/v1/mapbox/light-v10/static/9.75,")
	assert.Contains(t, got.URL, ",11.1/937x767?access_token=pk.test")
}

func TestStaticURL_BadRequests(t *testing.T) {
	ts := newTestServer(t, Config{})

	for _, query := range []string{
		"?lat=1&lon=2",
		"?lat=1&lon=x&zoom=2",
		"?lat=1&lon=2&zoom=3&marker=nope",
	} {
		resp := getJSON(t, ts.URL+"/static-url"+query, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
	}
}

func TestLayers(t *testing.T) {
	ts := newTestServer(t, Config{})

	body := `{"source_layer":"provinces","type":"line","color":"#333","secondary":2,"filter":{"value":"BE","key":"iso"}}`
	resp, err := http.Post(ts.URL+"/layers", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got style.Layer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))

	want, err := style.MakeLayer("provinces",
		style.MakePaint(style.PaintOptions{Color: "#333", Secondary: 2}),
		style.MakeFilter("BE", "iso", true),
		style.LayerLine)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, "composite", got.Source)
	assert.Equal(t, "round", got.Layout["line-cap"])
}

func TestLayers_NumberSpellingDoesNotChangeID(t *testing.T) {
	ts := newTestServer(t, Config{})

	post := func(body string) style.Layer {
		t.Helper()
		resp, err := http.Post(ts.URL+"/layers", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
		var got style.Layer
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		return got
	}

	a := post(`{"source_layer":"roads","type":"line","secondary":2.0,"opacity":0.50}`)
	b := post(`{"source_layer":"roads","type":"line","secondary":2,"opacity":0.5}`)
	assert.Equal(t, a.ID, b.ID)

	// the same layer as decoded from a config file
	fromConfig, err := style.LayerDefinition{SourceLayer: "roads", Type: style.LayerLine, Secondary: 2, Opacity: 0.5}.Build()
	require.NoError(t, err)
	assert.Equal(t, fromConfig.ID, a.ID)
}

func TestLayers_BadRequests(t *testing.T) {
	ts := newTestServer(t, Config{})

	for _, body := range []string{`{`, `{"type":"symbol","source_layer":"x"}`, `{"type":"fill"}`} {
		resp, err := http.Post(ts.URL+"/layers", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestImages(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "maps.db")
	w, err := archive.New(dbPath, archive.Metadata{Name: "test"})
	require.NoError(t, err)
	require.NoError(t, w.WriteImage(archive.Entry{Name: "belgium", Format: "png", URL: "u", Data: []byte("png-bytes")}))
	require.NoError(t, w.Close())

	r, err := archive.OpenReader(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	ts := newTestServer(t, Config{Archive: r, CacheControl: "max-age=60"})

	resp, err := http.Get(ts.URL + "/images/belgium")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "max-age=60", resp.Header.Get("Cache-Control"))

	missing, err := http.Get(ts.URL + "/images/atlantis")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestImages_NotRoutedWithoutArchive(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/images/belgium")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t, Config{Metrics: metrics.New("test")})

	getJSON(t, ts.URL+"/viewport?bbox=49.49,51.51,2.54,6.41&width=800&height=600", nil)
	getJSON(t, ts.URL+"/viewport?bbox=50,50,2,6", nil)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, `http_requests_total{method="GET",route="/viewport",status="200"} 1`)
	assert.Contains(t, body, `http_requests_total{method="GET",route="/viewport",status="400"} 1`)
}

// newUpstream fakes the Static Images API. Requests without the public token
// are rejected like the real API does.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 3))))

	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") != "pk.test" {
			http.Error(w, `{"message":"Not Authorized - Invalid Token"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(up.Close)
	return up
}

func TestStaticImage_RecordsUpstreamLatency(t *testing.T) {
	up := newUpstream(t)
	m := metrics.New("test")
	ts := newTestServer(t, Config{
		Client: mapbox.NewClient(mapbox.Config{
			BaseURL:     up.URL,
			Credentials: mapbox.DefaultCredentials().With("pk.test", ""),
			HTTPClient:  up.Client(),
			Observer:    m.ObserveUpstream,
		}),
		Metrics: m,
	})

	resp, err := http.Get(ts.URL + "/static-image?bbox=49.49,51.51,2.54,6.41&width=800&height=600")
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Width)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	scraped, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(scraped)
	assert.Contains(t, body, `mapbox_request_duration_seconds_count{method="GET",status="200"} 1`)
	assert.Contains(t, body, `http_requests_total{method="GET",route="/static-image",status="200"} 1`)
}

func TestStaticImage_UpstreamFailure(t *testing.T) {
	up := newUpstream(t)
	ts := newTestServer(t, Config{
		Client: mapbox.NewClient(mapbox.Config{
			BaseURL:     up.URL,
			Credentials: mapbox.DefaultCredentials().With("pk.wrong", ""),
			HTTPClient:  up.Client(),
		}),
	})

	var body map[string]string
	resp := getJSON(t, ts.URL+"/static-image?lat=50&lon=4&zoom=7", &body)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body["error"], "401")
	assert.NotContains(t, body["error"], "pk.wrong")

	resp = getJSON(t, ts.URL+"/static-image?lat=50&lon=4", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
