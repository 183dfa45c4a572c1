// Package texture decodes image files used as billboard textures.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/midgard-billboard/internal/assets"
)

// Decoding errors.
var (
	ErrUnsupported = errors.New("unsupported image format")
	ErrMalformed   = errors.New("malformed image")
)

// Decode decodes data as an image. TGA has no magic number, so it is chosen
// by the .tga extension of name; everything else is sniffed.
func Decode(name string, data []byte) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		return DecodeTGA(data)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}
	return img, nil
}

// Decoder returns an asset decoder for the file at name.
func Decoder(name string) assets.Decoder[image.Image] {
	return func(data []byte) (image.Image, error) {
		return Decode(name, data)
	}
}
