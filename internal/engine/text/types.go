package text

import (
	"errors"
	"image"
	gomath "math"

	"github.com/Faultbox/midgard-billboard/internal/assets"
	"github.com/Faultbox/midgard-billboard/pkg/math"
)

// Layout errors. ErrNoSuchFont is transient (the font may still be loading);
// the others mean the atlas or rasterizer is broken.
var (
	ErrNoSuchFont            = errors.New("no such font")
	ErrFailedToAddGlyph      = errors.New("failed to add glyph to atlas")
	ErrFailedToGetGlyphImage = errors.New("failed to get glyph image")
)

// Justify is the horizontal alignment of lines within the text block.
type Justify int

const (
	JustifyLeft Justify = iota
	JustifyCenter
	JustifyRight
)

// factor returns how much of the free width goes before the line.
func (j Justify) factor() float32 {
	switch j {
	case JustifyCenter:
		return 0.5
	case JustifyRight:
		return 1
	default:
		return 0
	}
}

// LineBreak selects where lines may wrap when text exceeds its bounds.
type LineBreak int

const (
	LineBreakWordBoundary LineBreak = iota // Wrap at spaces and wide (CJK) characters
	LineBreakAnyCharacter                  // Wrap before any glyph
	LineBreakNoWrap                        // Only explicit newlines
)

// Layout configures line breaking and justification.
type Layout struct {
	Justify   Justify
	LineBreak LineBreak
}

// Bounds limits the layout box. Infinite components mean unbounded.
type Bounds struct {
	Width, Height float32
}

// Unbounded is a Bounds that never wraps.
var Unbounded = Bounds{Width: float32(gomath.Inf(1)), Height: float32(gomath.Inf(1))}

// IsUnboundedWidth reports whether wrapping is disabled by the bounds.
func (b Bounds) IsUnboundedWidth() bool {
	return gomath.IsInf(float64(b.Width), 1) || b.Width <= 0
}

// Section is one styled run of text. Its position in the slice passed to
// Pipeline.Queue is its span index.
type Section struct {
	Text string
	Font FontHandle
	Size float32
}

// AtlasInfo locates a glyph image inside an atlas page.
type AtlasInfo struct {
	Texture  assets.ImageHandle
	Rect     image.Rectangle // Pixel rectangle in the page, top-left origin
	PageSize image.Point
}

// PositionedGlyph is a glyph placed in the layout box. Positions use a
// bottom-to-top Y axis with the origin at the bottom-left of the box;
// Position is the glyph quad centre.
type PositionedGlyph struct {
	Position  math.Vec2
	Size      math.Vec2
	Atlas     AtlasInfo
	SpanIndex int
	Rune      rune
}

// LayoutInfo is the result of laying out a set of sections.
type LayoutInfo struct {
	Glyphs []PositionedGlyph
	Size   math.Vec2
}
