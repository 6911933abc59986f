// Package archive stores fetched static map images in a SQLite database.
package archive

import (
	"fmt"

	"github.com/MeKo-Tech/mapboxutil/internal/viewport"
)

// Metadata contains archive-wide fields.
type Metadata struct {
	Name        string // Human-readable archive name
	Description string
	Username    string // Default style owner
	Style       string // Default style
	Version     string
}

// ToMap converts Metadata to a map for database insertion.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string)

	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Username != "" {
		result["username"] = m.Username
	}
	if m.Style != "" {
		result["style"] = m.Style
	}
	if m.Version != "" {
		result["version"] = m.Version
	}

	return result
}

// Entry is a single stored image.
type Entry struct {
	Name     string
	Format   string // png, jpeg or webp
	URL      string // request url, access token redacted
	Viewport viewport.Result
	Data     []byte
}

func (e Entry) String() string {
	return fmt.Sprintf("%s (%s %dx%d z%.2f)", e.Name, e.Format, e.Viewport.Width, e.Viewport.Height, e.Viewport.Zoom)
}
