package archive

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned by ReadImage for unknown names.
var ErrNotFound = errors.New("archive: image not found")

// Reader reads images from an archive database.
type Reader struct {
	db   *sql.DB
	path string
}

// OpenReader opens an archive database for reading.
func OpenReader(path string) (*Reader, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='images'").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count == 0 {
		db.Close()
		return nil, fmt.Errorf("database does not contain images table")
	}

	return &Reader{
		db:   db,
		path: path,
	}, nil
}

// ReadImage returns the stored image called name.
func (r *Reader) ReadImage(name string) (Entry, error) {
	e := Entry{Name: name}
	v := &e.Viewport
	err := r.db.QueryRow(
		"SELECT format, url, width, height, latitude, longitude, zoom, image_data FROM images WHERE name=?",
		name,
	).Scan(&e.Format, &e.URL, &v.Width, &v.Height, &v.Latitude, &v.Longitude, &v.Zoom, &e.Data)

	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to query image: %w", err)
	}
	return e, nil
}

// Names lists the stored image names in order.
func (r *Reader) Names() ([]string, error) {
	rows, err := r.db.Query("SELECT name FROM images ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan image row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}
	return names, nil
}

// Metadata reads metadata from the database.
func (r *Reader) Metadata() (Metadata, error) {
	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	metaMap := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return Metadata{}, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		metaMap[name] = value
	}
	if err := rows.Err(); err != nil {
		return Metadata{}, fmt.Errorf("error iterating metadata: %w", err)
	}

	return Metadata{
		Name:        metaMap["name"],
		Description: metaMap["description"],
		Username:    metaMap["username"],
		Style:       metaMap["style"],
		Version:     metaMap["version"],
	}, nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
