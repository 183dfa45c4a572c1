package billboard

import (
	"github.com/Faultbox/midgard-billboard/internal/assets"
	"github.com/Faultbox/midgard-billboard/internal/engine/text"
	"github.com/Faultbox/midgard-billboard/pkg/color"
)

// DefaultFontSize is used when a TextFont has no size.
const DefaultFontSize = 24

// TextFont selects a font and pixel size for a run of text.
type TextFont struct {
	Font text.FontHandle
	Size float32
}

// PixelSize returns Size, or DefaultFontSize when unset.
func (f TextFont) PixelSize() float32 {
	if f.Size <= 0 {
		return DefaultFontSize
	}
	return f.Size
}

// Text is the root of a billboard text block. Its own Value is the first span;
// TextSpan children follow in depth-first order.
type Text struct {
	Value string
	Font  TextFont
	Color color.Color
}

// NewText returns white text in the given font.
func NewText(value string, font TextFont) Text {
	return Text{Value: value, Font: font, Color: color.White}
}

// TextSpan is an additional styled run parented under a Text root or another span.
type TextSpan struct {
	Value string
	Font  TextFont
	Color color.Color
}

// NewTextSpan returns a white span in the given font.
func NewTextSpan(value string, font TextFont) TextSpan {
	return TextSpan{Value: value, Font: font, Color: color.White}
}

// TextBounds limits wrapping. The zero value is unbounded.
type TextBounds struct {
	Width, Height float32
}

// Bounds converts to layout bounds; zero or negative components are unbounded.
func (b TextBounds) Bounds() text.Bounds {
	out := text.Unbounded
	if b.Width > 0 {
		out.Width = b.Width
	}
	if b.Height > 0 {
		out.Height = b.Height
	}
	return out
}

// MeshGroup is a generated mesh sampling a single atlas texture.
type MeshGroup struct {
	Mesh    assets.MeshHandle
	Texture assets.ImageHandle
}

// TextMeshCache is the generated geometry of a text root, one group per atlas
// texture used by the current layout.
type TextMeshCache struct {
	Groups []MeshGroup
}
