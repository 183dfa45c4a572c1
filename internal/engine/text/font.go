// Package text lays out styled text runs into positioned glyphs backed by
// paged glyph atlases.
package text

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/Faultbox/midgard-billboard/internal/assets"
)

// Font is a parsed OpenType/TrueType font.
type Font struct {
	Name string
	sfnt *opentype.Font
}

// FontHandle addresses a Font in an assets.Store.
type FontHandle = assets.Handle[*Font]

// ParseFont parses TTF/OTF data.
func ParseFont(name string, data []byte) (*Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", name, err)
	}
	return &Font{Name: name, sfnt: f}, nil
}

// DefaultFont returns the embedded Go Regular font.
func DefaultFont() *Font {
	f, err := ParseFont("Go Regular", goregular.TTF)
	if err != nil {
		// The embedded font is known good.
		panic(err)
	}
	return f
}

// FontDecoder adapts ParseFont for assets.LoadAsync.
func FontDecoder(name string) assets.Decoder[*Font] {
	return func(data []byte) (*Font, error) {
		return ParseFont(name, data)
	}
}

// newFace creates a rasterizing face at size pixels.
func (f *Font) newFace(size float32) (font.Face, error) {
	return opentype.NewFace(f.sfnt, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
