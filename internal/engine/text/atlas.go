package text

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/Faultbox/midgard-billboard/internal/assets"
)

// AtlasPage is one glyph atlas texture. It is stored in the image store and
// implements image.Image through the embedded alpha image. Version changes
// every time a glyph is added so GPU copies know to re-upload.
type AtlasPage struct {
	*image.Alpha
	version uint64
}

// Version returns the page's modification counter.
func (p *AtlasPage) Version() uint64 { return p.version }

// cachedGlyph is a rasterized glyph. Empty glyphs (spaces) have no page.
type cachedGlyph struct {
	empty  bool
	bounds image.Rectangle // Relative to the pen on the baseline, Y down
	info   AtlasInfo
}

type pageSlot struct {
	handle assets.ImageHandle
	page   *AtlasPage
	x, y   int
	rowH   int
}

// atlasSet holds every page for one font at one size.
type atlasSet struct {
	images  *assets.Store[image.Image]
	size    int
	padding int
	pages   []*pageSlot
	glyphs  map[rune]*cachedGlyph
}

func newAtlasSet(images *assets.Store[image.Image], size, padding int) *atlasSet {
	return &atlasSet{
		images:  images,
		size:    size,
		padding: padding,
		glyphs:  make(map[rune]*cachedGlyph),
	}
}

// glyph returns the cached glyph for r, rasterizing it into a page on first use.
func (a *atlasSet) glyph(face font.Face, r rune) (*cachedGlyph, error) {
	if g, ok := a.glyphs[r]; ok {
		return g, nil
	}

	dr, mask, maskp, _, ok := face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return nil, fmt.Errorf("%w: rune %q", ErrFailedToGetGlyphImage, r)
	}

	if dr.Empty() {
		g := &cachedGlyph{empty: true, bounds: dr}
		a.glyphs[r] = g
		return g, nil
	}

	slot, rect, err := a.allocate(dr.Dx(), dr.Dy())
	if err != nil {
		return nil, fmt.Errorf("rune %q: %w", r, err)
	}

	// The face reuses its mask buffer, so copy before the next Glyph call.
	err = a.images.Update(slot.handle, func(*image.Image) {
		draw.Draw(slot.page.Alpha, rect, mask, maskp, draw.Src)
		slot.page.version++
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToAddGlyph, err)
	}

	g := &cachedGlyph{
		bounds: dr,
		info: AtlasInfo{
			Texture:  slot.handle,
			Rect:     rect,
			PageSize: image.Pt(a.size, a.size),
		},
	}
	a.glyphs[r] = g
	return g, nil
}

// allocate finds room for a w x h glyph using a row packer, opening a new
// page when the current one is full.
func (a *atlasSet) allocate(w, h int) (*pageSlot, image.Rectangle, error) {
	pad := a.padding
	if w+2*pad > a.size || h+2*pad > a.size {
		return nil, image.Rectangle{}, fmt.Errorf("%w: %dx%d glyph exceeds %dx%d page",
			ErrFailedToAddGlyph, w, h, a.size, a.size)
	}

	var slot *pageSlot
	if n := len(a.pages); n > 0 {
		slot = a.pages[n-1]
		if slot.x+w+pad > a.size {
			slot.x = pad
			slot.y += slot.rowH + pad
			slot.rowH = 0
		}
		if slot.y+h+pad > a.size {
			slot = nil
		}
	}
	if slot == nil {
		slot = a.newPage()
	}

	rect := image.Rect(slot.x, slot.y, slot.x+w, slot.y+h)
	slot.x += w + pad
	if h > slot.rowH {
		slot.rowH = h
	}
	return slot, rect, nil
}

func (a *atlasSet) newPage() *pageSlot {
	page := &AtlasPage{Alpha: image.NewAlpha(image.Rect(0, 0, a.size, a.size))}
	slot := &pageSlot{
		handle: a.images.Add(page),
		page:   page,
		x:      a.padding,
		y:      a.padding,
	}
	a.pages = append(a.pages, slot)
	return slot
}

// pageCount returns how many pages the set has opened.
func (a *atlasSet) pageCount() int {
	return len(a.pages)
}
