package textmesh

import (
	"github.com/Faultbox/midgard-billboard/internal/assets"
	"github.com/Faultbox/midgard-billboard/internal/engine/billboard"
	"github.com/Faultbox/midgard-billboard/internal/engine/mesh"
	"github.com/Faultbox/midgard-billboard/internal/engine/text"
	"github.com/Faultbox/midgard-billboard/pkg/color"
)

// group is a mesh under construction for one atlas texture.
type group struct {
	texture assets.ImageHandle
	glyphs  []text.PositionedGlyph
	mesh    *mesh.Mesh
}

// buildGroups turns a layout into one mesh per atlas texture, in the order
// textures are first referenced. spans supplies the colour of each span index.
func buildGroups(info *text.LayoutInfo, spans []billboard.TextSpan, anchor billboard.Anchor) []group {
	offset := anchor.Offset(info.Size)

	var groups []group
	index := make(map[assets.ImageHandle]int)
	for _, g := range info.Glyphs {
		i, ok := index[g.Atlas.Texture]
		if !ok {
			i = len(groups)
			index[g.Atlas.Texture] = i
			groups = append(groups, group{texture: g.Atlas.Texture})
		}
		groups[i].glyphs = append(groups[i].glyphs, g)
	}

	for i := range groups {
		g := &groups[i]
		g.mesh = mesh.New(len(g.glyphs))

		col := color.White.Linear()
		span := -1

		for _, glyph := range g.glyphs {
			base := uint32(len(g.mesh.Positions))

			pos := glyph.Position.Add(offset)
			half := glyph.Size.Scale(0.5)
			tl := pos.Sub(half)
			br := pos.Add(half)

			g.mesh.Positions = append(g.mesh.Positions,
				[3]float32{tl.X, tl.Y, 0},
				[3]float32{tl.X, br.Y, 0},
				[3]float32{br.X, br.Y, 0},
				[3]float32{br.X, tl.Y, 0},
			)

			page := glyph.Atlas.PageSize
			minU := float32(glyph.Atlas.Rect.Min.X) / float32(page.X)
			minV := float32(glyph.Atlas.Rect.Min.Y) / float32(page.Y)
			maxU := float32(glyph.Atlas.Rect.Max.X) / float32(page.X)
			maxV := float32(glyph.Atlas.Rect.Max.Y) / float32(page.Y)

			g.mesh.UVs = append(g.mesh.UVs,
				[2]float32{minU, maxV},
				[2]float32{minU, minV},
				[2]float32{maxU, minV},
				[2]float32{maxU, maxV},
			)

			if glyph.SpanIndex != span {
				span = glyph.SpanIndex
				col = spanColor(spans, span)
			}
			g.mesh.Colors = append(g.mesh.Colors, col, col, col, col)

			g.mesh.Indices = append(g.mesh.Indices,
				base, base+2, base+1,
				base, base+3, base+2,
			)
		}
		g.glyphs = nil
	}

	return groups
}

func spanColor(spans []billboard.TextSpan, i int) [4]float32 {
	if i < 0 || i >= len(spans) {
		return color.White.Linear()
	}
	return spans[i].Color.Linear()
}
