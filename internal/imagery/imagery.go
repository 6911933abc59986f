// Package imagery inspects and resamples images returned by the Static Images API.
package imagery

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/gift"

	_ "golang.org/x/image/webp" // Register WebP decoder
	_ "image/jpeg"              // Register JPEG decoder
)

// ErrUnknownFormat is returned for payloads that are not png, jpeg or webp.
var ErrUnknownFormat = errors.New("imagery: unknown image format")

// Info describes an encoded image without decoding its pixels.
type Info struct {
	Format string
	Width  int
	Height int
}

// Extension returns the file extension matching the format.
func (i Info) Extension() string {
	if i.Format == "jpeg" {
		return ".jpg"
	}
	return "." + i.Format
}

// DetectFormat reads the image header of data.
func DetectFormat(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return Info{}, ErrUnknownFormat
	}
	if err != nil {
		return Info{}, fmt.Errorf("failed to read image header: %w", err)
	}
	return Info{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// FitCanvas scales data to fit inside width x height keeping its aspect ratio,
// centers it on a transparent canvas of exactly that size and encodes the
// result as PNG. Data that already has the requested size is returned unchanged.
func FitCanvas(data []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := src.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return data, nil
	}

	g := gift.New(gift.ResizeToFit(width, height, gift.LanczosResampling))
	scaled := g.Bounds(b)
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	offset := image.Pt((width-scaled.Dx())/2, (height-scaled.Dy())/2)
	g.DrawAt(dst, src, offset, gift.CopyOperator)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
