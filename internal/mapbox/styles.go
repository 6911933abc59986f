package mapbox

import (
	"context"
	"net/http"
	"net/url"

	"github.com/MeKo-Tech/mapboxutil/internal/style"
)

// ListStyles returns the styles of username.
func (c *Client) ListStyles(ctx context.Context, username string, draft bool) ([]map[string]any, error) {
	data, err := c.do(ctx, http.MethodGet, c.stylesURL(username, "", draft), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decode[[]map[string]any](data)
}

// GetStyle returns a single style document.
func (c *Client) GetStyle(ctx context.Context, username, styleID string, draft bool) (map[string]any, error) {
	data, err := c.do(ctx, http.MethodGet, c.stylesURL(username, styleID, draft), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decode[map[string]any](data)
}

// CreateStyle creates a style and returns the API's representation of it.
func (c *Client) CreateStyle(ctx context.Context, username string, s style.Style) (map[string]any, error) {
	data, err := c.do(ctx, http.MethodPost, c.stylesURL(username, "", false), s, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return decode[map[string]any](data)
}

// UpdateStyle replaces an existing style.
func (c *Client) UpdateStyle(ctx context.Context, username, styleID string, s style.Style) (map[string]any, error) {
	data, err := c.do(ctx, http.MethodPatch, c.stylesURL(username, styleID, false), s, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return decode[map[string]any](data)
}

// DeleteStyle deletes a style.
func (c *Client) DeleteStyle(ctx context.Context, username, styleID string) error {
	_, err := c.do(ctx, http.MethodDelete, c.stylesURL(username, styleID, false), nil, http.StatusNoContent)
	return err
}

// StyleIDByName returns the id of the first style called name. When styles is
// nil the styles of username are fetched first. ErrStyleNotFound is returned
// when no style matches.
func (c *Client) StyleIDByName(ctx context.Context, name string, styles []map[string]any, username string, draft bool) (string, error) {
	if styles == nil {
		var err error
		styles, err = c.ListStyles(ctx, username, draft)
		if err != nil {
			return "", err
		}
	}

	for _, s := range styles {
		if n, _ := s["name"].(string); n == name {
			id, _ := s["id"].(string)
			return id, nil
		}
	}
	return "", ErrStyleNotFound
}

func (c *Client) stylesURL(username, styleID string, draft bool) string {
	if username == "" {
		username = DefaultUsername
	}

	u := c.baseURL + "/styles/v1/" + url.PathEscape(username)
	if styleID != "" {
		u += "/" + url.PathEscape(styleID)
	}
	u += "?access_token=" + url.QueryEscape(c.creds.SecretToken)
	if draft {
		u += "&draft"
	}
	return u
}
