package mapbox

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/mapboxutil/internal/staticmap"
)

// StaticURL formats a static image url against the client's base url,
// signing it with the public token unless opts carries one.
func (c *Client) StaticURL(opts staticmap.URLOptions) string {
	if opts.AccessToken == "" {
		opts.AccessToken = c.creds.PublicToken
	}
	if opts.BaseURL == "" {
		opts.BaseURL = c.baseURL
	}
	return staticmap.URL(opts)
}

// FetchImage downloads the image at rawURL.
func (c *Client) FetchImage(ctx context.Context, rawURL string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, rawURL, nil, http.StatusOK)
}

// WriteImage downloads the image at rawURL into filename.
func (c *Client) WriteImage(ctx context.Context, rawURL, filename string) error {
	data, err := c.FetchImage(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write image %s: %w", filename, err)
	}
	return nil
}
