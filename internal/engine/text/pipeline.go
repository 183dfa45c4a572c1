package text

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/Faultbox/midgard-billboard/internal/assets"
	"github.com/Faultbox/midgard-billboard/pkg/math"
)

// Options configures glyph atlases.
type Options struct {
	PageSize int // Square atlas page size in pixels
	Padding  int // Empty pixels around each glyph
}

// DefaultOptions returns 512px pages with one pixel of padding.
func DefaultOptions() Options {
	return Options{PageSize: 512, Padding: 1}
}

type faceKey struct {
	font FontHandle
	size float32
}

// faceEntry is a rasterizing face plus its atlas pages and line metrics.
type faceEntry struct {
	face    font.Face
	atlas   *atlasSet
	ascent  float32
	descent float32
	height  float32
}

// Pipeline turns sections into positioned glyphs, rasterizing new glyphs into
// atlas pages stored in the image store. A Pipeline serializes its callers:
// faces and atlas packers are not safe for concurrent use.
type Pipeline struct {
	fonts  *assets.Store[*Font]
	images *assets.Store[image.Image]
	opts   Options

	mu    sync.Mutex
	faces map[faceKey]*faceEntry
}

// NewPipeline creates a text pipeline reading fonts from fonts and writing
// atlas pages into images.
func NewPipeline(fonts *assets.Store[*Font], images *assets.Store[image.Image], opts Options) *Pipeline {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultOptions().PageSize
	}
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	return &Pipeline{
		fonts:  fonts,
		images: images,
		opts:   opts,
		faces:  make(map[faceKey]*faceEntry),
	}
}

// Queue lays out sections inside bounds. It returns an error wrapping
// ErrNoSuchFont when a referenced font is not loaded yet; any other error is
// an atlas or rasterizer failure.
func (p *Pipeline) Queue(sections []Section, layout Layout, bounds Bounds) (*LayoutInfo, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	items, err := p.shape(sections)
	if err != nil {
		return nil, err
	}

	lines := breakLines(items, layout.LineBreak, bounds)
	return position(lines, layout.Justify), nil
}

// AtlasPages returns how many atlas pages exist for a font at a size.
func (p *Pipeline) AtlasPages(h FontHandle, size float32) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.faces[faceKey{h, size}]; ok {
		return e.atlas.pageCount()
	}
	return 0
}

func (p *Pipeline) face(h FontHandle, size float32) (*faceEntry, error) {
	key := faceKey{font: h, size: size}
	if e, ok := p.faces[key]; ok {
		return e, nil
	}

	f, ok := p.fonts.Get(h)
	if !ok {
		return nil, fmt.Errorf("%w: font %s", ErrNoSuchFont, h)
	}

	face, err := f.newFace(size)
	if err != nil {
		return nil, fmt.Errorf("%w: face %s at %v: %v", ErrFailedToGetGlyphImage, f.Name, size, err)
	}

	m := face.Metrics()
	e := &faceEntry{
		face:    face,
		atlas:   newAtlasSet(p.images, p.opts.PageSize, p.opts.Padding),
		ascent:  fixedToFloat(m.Ascent),
		descent: fixedToFloat(m.Descent),
		height:  fixedToFloat(m.Height),
	}
	p.faces[key] = e
	return e, nil
}

// item is one rune of input after shaping.
type item struct {
	r       rune
	span    int
	face    *faceEntry
	advance float32
	kern    float32 // Applied only when not first on a line
	glyph   *cachedGlyph
}

func (p *Pipeline) shape(sections []Section) ([]item, error) {
	var items []item

	for i, s := range sections {
		if s.Text == "" || s.Size <= 0 {
			continue
		}

		fe, err := p.face(s.Font, s.Size)
		if err != nil {
			return nil, err
		}

		prev := rune(-1)
		for _, r := range s.Text {
			switch r {
			case '\r':
				continue
			case '\n':
				items = append(items, item{r: r, span: i, face: fe})
				prev = -1
				continue
			}

			adv, ok := fe.face.GlyphAdvance(r)
			if !ok {
				return nil, fmt.Errorf("%w: no advance for %q", ErrFailedToGetGlyphImage, r)
			}
			g, err := fe.atlas.glyph(fe.face, r)
			if err != nil {
				return nil, err
			}

			it := item{r: r, span: i, face: fe, advance: fixedToFloat(adv), glyph: g}
			if prev >= 0 {
				it.kern = fixedToFloat(fe.face.Kern(prev, r))
			}
			items = append(items, it)
			prev = r
		}
	}

	return items, nil
}

// position assigns final glyph positions. Layout runs top to bottom in Y-down
// pixel space and is flipped to bottom-to-top at the end.
func position(lines []line, justify Justify) *LayoutInfo {
	info := &LayoutInfo{}
	if len(lines) == 0 {
		return info
	}

	ascents := make([]float32, len(lines))
	heights := make([]float32, len(lines))
	widths := make([]float32, len(lines))

	var last *faceEntry
	for i, ln := range lines {
		for _, it := range ln.items {
			ascents[i] = max(ascents[i], it.face.ascent)
			heights[i] = max(heights[i], it.face.height)
			last = it.face
		}
		if len(ln.items) == 0 {
			fe := ln.newline
			if fe == nil {
				fe = last
			}
			if fe != nil {
				ascents[i], heights[i] = fe.ascent, fe.height
			}
		}
		if ln.newline != nil {
			last = ln.newline
		}
		widths[i] = visibleWidth(ln.items)

		info.Size.X = max(info.Size.X, widths[i])
		info.Size.Y += heights[i]
	}

	top := float32(0)
	for i, ln := range lines {
		baseline := top + ascents[i]
		pen := (info.Size.X - widths[i]) * justify.factor()

		for j, it := range ln.items {
			if j > 0 {
				pen += it.kern
			}
			if g := it.glyph; g != nil && !g.empty {
				w, h := float32(g.bounds.Dx()), float32(g.bounds.Dy())
				x0 := pen + float32(g.bounds.Min.X)
				y0 := baseline + float32(g.bounds.Min.Y)
				info.Glyphs = append(info.Glyphs, PositionedGlyph{
					Position:  math.Vec2{X: x0 + w/2, Y: info.Size.Y - (y0 + h/2)},
					Size:      math.Vec2{X: w, Y: h},
					Atlas:     g.info,
					SpanIndex: it.span,
					Rune:      it.r,
				})
			}
			pen += it.advance
		}

		top += heights[i]
	}

	return info
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
