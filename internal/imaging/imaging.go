// Package imaging validates picked background images and derives a card tint from them.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"countdown-cli/internal/model"

	imgops "github.com/disintegration/imaging"
)

// MaxImageBytes bounds what is stored in the event blob; the whole list is rewritten
// on every change.
const MaxImageBytes = 8 << 20

var ErrTooLarge = errors.New("image too large")

// LoadFile reads path and checks that it decodes as a supported image (png, jpeg, gif).
// The original bytes are returned unchanged.
func LoadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > MaxImageBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, path, MaxImageBytes)
	}
	if _, ok := Extension(b); !ok {
		return nil, fmt.Errorf("%s: not a png, jpeg or gif image", path)
	}
	return b, nil
}

// AverageColor box-filters the decoded image down to one pixel and returns that color.
// ok is false when data does not decode.
func AverageColor(data []byte) (model.Color, bool) {
	if len(data) == 0 {
		return model.Color{}, false
	}
	img, err := imgops.Decode(bytes.NewReader(data))
	if err != nil || img.Bounds().Empty() {
		return model.Color{}, false
	}
	px := imgops.Resize(img, 1, 1, imgops.Box).NRGBAAt(0, 0)
	return model.Color{
		R: float64(px.R) / 255,
		G: float64(px.G) / 255,
		B: float64(px.B) / 255,
	}, true
}

// Extension returns the file extension (with dot) matching the encoded image format.
func Extension(data []byte) (string, bool) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	switch format {
	case "jpeg":
		return ".jpg", true
	case "png", "gif":
		return "." + format, true
	}
	return "", false
}
