package textmesh

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-billboard/internal/assets"
	"github.com/Faultbox/midgard-billboard/internal/engine/billboard"
	"github.com/Faultbox/midgard-billboard/internal/engine/text"
	"github.com/Faultbox/midgard-billboard/pkg/color"
	"github.com/Faultbox/midgard-billboard/pkg/math"
)

func syntheticLayout(tex assets.ImageHandle) *text.LayoutInfo {
	return &text.LayoutInfo{
		Size: math.Vec2{X: 100, Y: 50},
		Glyphs: []text.PositionedGlyph{{
			Position: math.Vec2{X: 10, Y: 20},
			Size:     math.Vec2{X: 4, Y: 6},
			Atlas: text.AtlasInfo{
				Texture:  tex,
				Rect:     image.Rect(4, 8, 8, 14),
				PageSize: image.Pt(16, 16),
			},
		}},
	}
}

func TestBuildGroupsAlignment(t *testing.T) {
	images := assets.NewStore[image.Image]()
	info := syntheticLayout(images.Reserve())
	spans := []billboard.TextSpan{{Color: color.White}}

	centered := buildGroups(info, spans, billboard.AnchorCenter)
	require.Len(t, centered, 1)
	// Offset (-50, -25), half size (2, 3).
	assert.Equal(t, [][3]float32{
		{-42, -8, 0},
		{-42, -2, 0},
		{-38, -2, 0},
		{-38, -8, 0},
	}, centered[0].mesh.Positions)

	corner := buildGroups(info, spans, billboard.AnchorBottomLeft)
	assert.Equal(t, [][3]float32{
		{8, 17, 0},
		{8, 23, 0},
		{12, 23, 0},
		{12, 17, 0},
	}, corner[0].mesh.Positions)
}

func TestBuildGroupsUVs(t *testing.T) {
	images := assets.NewStore[image.Image]()
	info := syntheticLayout(images.Reserve())

	groups := buildGroups(info, []billboard.TextSpan{{Color: color.White}}, billboard.AnchorCenter)
	assert.Equal(t, [][2]float32{
		{0.25, 0.875},
		{0.25, 0.5},
		{0.5, 0.5},
		{0.5, 0.875},
	}, groups[0].mesh.UVs)
	assert.Equal(t, []uint32{0, 2, 1, 0, 3, 2}, groups[0].mesh.Indices)
}

func TestBuildGroupsOrderAndColors(t *testing.T) {
	images := assets.NewStore[image.Image]()
	first, second := images.Reserve(), images.Reserve()

	glyph := func(tex assets.ImageHandle, span int) text.PositionedGlyph {
		return text.PositionedGlyph{
			Size:      math.Vec2{X: 1, Y: 1},
			SpanIndex: span,
			Atlas:     text.AtlasInfo{Texture: tex, Rect: image.Rect(0, 0, 1, 1), PageSize: image.Pt(8, 8)},
		}
	}
	info := &text.LayoutInfo{Glyphs: []text.PositionedGlyph{
		glyph(second, 0), glyph(first, 0), glyph(second, 1), glyph(second, 7),
	}}
	spans := []billboard.TextSpan{{Color: color.Orange}, {Color: color.Gray}}

	groups := buildGroups(info, spans, billboard.AnchorCenter)
	require.Len(t, groups, 2)
	assert.Equal(t, second, groups[0].texture, "first referenced texture comes first")
	assert.Equal(t, first, groups[1].texture)

	cols := groups[0].mesh.Colors
	require.Len(t, cols, 12)
	assert.Equal(t, color.Orange.Linear(), cols[0])
	assert.Equal(t, color.Gray.Linear(), cols[4])
	assert.Equal(t, color.White.Linear(), cols[8], "unknown span falls back to white")
}

func TestBuildGroupsEmptyLayout(t *testing.T) {
	assert.Empty(t, buildGroups(&text.LayoutInfo{}, nil, billboard.AnchorCenter))
}
