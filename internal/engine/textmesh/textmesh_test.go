package textmesh

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/midgard-billboard/internal/assets"
	"github.com/Faultbox/midgard-billboard/internal/engine/billboard"
	"github.com/Faultbox/midgard-billboard/internal/engine/mesh"
	"github.com/Faultbox/midgard-billboard/internal/engine/scene"
	"github.com/Faultbox/midgard-billboard/internal/engine/text"
	"github.com/Faultbox/midgard-billboard/pkg/color"
)

type harness struct {
	world   *scene.World
	fonts   *assets.Store[*text.Font]
	images  *assets.Store[image.Image]
	meshes  *assets.Store[*mesh.Mesh]
	tracker *Tracker
	builder *Builder
	logs    *observer.ObservedLogs
	font    billboard.TextFont
}

func newHarness(t *testing.T, opts text.Options) *harness {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	h := &harness{
		world:   scene.NewWorld(),
		fonts:   assets.NewStore[*text.Font](),
		images:  assets.NewStore[image.Image](),
		meshes:  assets.NewStore[*mesh.Mesh](),
		tracker: NewTracker(),
		logs:    logs,
	}
	h.font = billboard.TextFont{Font: h.fonts.Add(text.DefaultFont()), Size: 32}
	pipeline := text.NewPipeline(h.fonts, h.images, opts)
	h.builder = NewBuilder(pipeline, h.meshes, zap.New(core), Options{Workers: 4})
	return h
}

func (h *harness) spawnText(value string, c color.Color) scene.Entity {
	e := h.world.Spawn()
	txt := billboard.NewText(value, h.font)
	txt.Color = c
	h.world.SetText(e, txt)
	return e
}

func (h *harness) frame(t *testing.T) Stats {
	t.Helper()
	h.tracker.Run(h.world)
	stats, err := h.builder.Run(context.Background(), h.world)
	require.NoError(t, err)
	return stats
}

func (h *harness) node(t *testing.T, e scene.Entity) *scene.Node {
	t.Helper()
	n, ok := h.world.Get(e)
	require.True(t, ok)
	return n
}

func (h *harness) meshesOf(t *testing.T, e scene.Entity) []*mesh.Mesh {
	t.Helper()
	var out []*mesh.Mesh
	for _, g := range h.node(t, e).Cache.Groups {
		m, ok := h.meshes.Get(g.Mesh)
		require.True(t, ok)
		out = append(out, m)
	}
	return out
}

func TestSingleSpanScenario(t *testing.T) {
	h := newHarness(t, text.DefaultOptions())
	e := h.spawnText("AB", color.Orange)

	stats := h.frame(t)
	assert.Equal(t, 1, stats.Rebuilt)

	n := h.node(t, e)
	require.Len(t, n.Cache.Groups, 1)
	assert.False(t, n.Dirty)

	m := h.meshesOf(t, e)[0]
	require.NoError(t, m.Validate())
	assert.Equal(t, 8, m.VertexCount())
	assert.Len(t, m.Indices, 12)
	for _, c := range m.Colors {
		assert.Equal(t, color.Orange.Linear(), c)
	}

	// Centred anchor puts the layout box around the origin.
	var minX, maxX float32
	for _, p := range m.Positions {
		minX, maxX = min(minX, p[0]), max(maxX, p[0])
	}
	assert.Less(t, minX, float32(0))
	assert.Greater(t, maxX, float32(0))
}

func TestQuadWinding(t *testing.T) {
	h := newHarness(t, text.DefaultOptions())
	e := h.spawnText("Hello", color.White)
	h.frame(t)

	for _, m := range h.meshesOf(t, e) {
		require.Zero(t, len(m.Indices)%6)
		for q := 0; q < len(m.Indices)/6; q++ {
			i := uint32(q * 4)
			assert.Equal(t, []uint32{i, i + 2, i + 1, i, i + 3, i + 2}, m.Indices[q*6:q*6+6])
		}
	}
}

func TestRebuildIsDeterministic(t *testing.T) {
	h := newHarness(t, text.DefaultOptions())
	e := h.spawnText("Deterministic", color.Silver)
	h.frame(t)

	first := h.meshesOf(t, e)
	firstGroups := append([]billboard.MeshGroup(nil), h.node(t, e).Cache.Groups...)
	meshCount := h.meshes.Len()

	h.world.RequestRerender(e)
	assert.Equal(t, 1, h.frame(t).Rebuilt)

	second := h.meshesOf(t, e)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Positions, second[i].Positions)
		assert.Equal(t, first[i].UVs, second[i].UVs)
		assert.Equal(t, first[i].Colors, second[i].Colors)
		assert.Equal(t, first[i].Indices, second[i].Indices)
	}

	assert.Equal(t, meshCount, h.meshes.Len(), "old meshes are released")
	_, ok := h.meshes.Get(firstGroups[0].Mesh)
	assert.False(t, ok)
}

func TestUnchangedTextIsNotRebuilt(t *testing.T) {
	h := newHarness(t, text.DefaultOptions())
	h.spawnText("static", color.White)
	h.frame(t)

	assert.Equal(t, Stats{}, h.frame(t))
}

func TestSpanColorChangeOnlyTouchesItsRun(t *testing.T) {
	h := newHarness(t, text.DefaultOptions())
	root := h.spawnText("AB", color.White)

	spanA, err := h.world.SpawnChild(root)
	require.NoError(t, err)
	h.world.SetSpan(spanA, billboard.TextSpan{Value: "CD", Font: h.font, Color: color.Gray})
	spanB, err := h.world.SpawnChild(root)
	require.NoError(t, err)
	h.world.SetSpan(spanB, billboard.TextSpan{Value: "EF", Font: h.font, Color: color.Silver})

	h.frame(t)
	before := h.meshesOf(t, root)
	require.Len(t, before, 1)
	colors := append([][4]float32(nil), before[0].Colors...)
	require.Len(t, colors, 24)

	h.world.MutateSpan(spanA, func(s *billboard.TextSpan) { s.Color = color.Orange })
	assert.Equal(t, 1, h.frame(t).Rebuilt)
	after := h.meshesOf(t, root)[0].Colors

	for v := range colors {
		switch glyph := v / 4; {
		case glyph == 2 || glyph == 3:
			assert.Equal(t, color.Orange.Linear(), after[v], "vertex %d", v)
		default:
			assert.Equal(t, colors[v], after[v], "vertex %d", v)
		}
	}
}

func TestMissingFontRetries(t *testing.T) {
	h := newHarness(t, text.DefaultOptions())
	pending := h.fonts.Reserve()

	e := h.world.Spawn()
	h.world.SetText(e, billboard.NewText("late", billboard.TextFont{Font: pending, Size: 20}))

	for range 3 {
		stats := h.frame(t)
		assert.Equal(t, Stats{Retrying: 1}, stats)
	}
	assert.Empty(t, h.node(t, e).Cache.Groups)
	assert.Equal(t, 1, h.builder.Pending())
	assert.Equal(t, 1, h.logs.FilterMessage("missing font, could still be loading").Len(), "logged once")

	require.NoError(t, h.fonts.Insert(pending, text.DefaultFont()))
	stats := h.frame(t)
	assert.Equal(t, 1, stats.Rebuilt)
	assert.Equal(t, 0, h.builder.Pending())
	assert.NotEmpty(t, h.node(t, e).Cache.Groups)
}

func TestRetryQueueDropsDespawned(t *testing.T) {
	h := newHarness(t, text.DefaultOptions())
	e := h.world.Spawn()
	h.world.SetText(e, billboard.NewText("gone", billboard.TextFont{Font: h.fonts.Reserve()}))
	h.frame(t)
	require.Equal(t, 1, h.builder.Pending())

	h.world.Despawn(e)
	h.frame(t)
	assert.Equal(t, 0, h.builder.Pending())
}

func TestDespawnReleasesMeshes(t *testing.T) {
	h := newHarness(t, text.DefaultOptions())
	keep := h.spawnText("keep", color.White)
	h.frame(t)
	require.Equal(t, 1, h.meshes.Len())

	for range 20 {
		e := h.spawnText("hello", color.White)
		h.frame(t)
		require.Equal(t, 2, h.meshes.Len())

		h.world.Despawn(e)
		h.frame(t)
	}

	assert.Equal(t, 1, h.meshes.Len(), "only the surviving root holds a mesh")
	for _, g := range h.node(t, keep).Cache.Groups {
		assert.Equal(t, 1, h.meshes.Refs(g.Mesh))
	}
}

func TestRebuildReleasesPreviousMeshes(t *testing.T) {
	h := newHarness(t, text.DefaultOptions())
	e := h.spawnText("first", color.White)
	h.frame(t)
	old := h.node(t, e).Cache.Groups
	require.Len(t, old, 1)

	h.world.MutateText(e, func(t *billboard.Text) { t.Value = "second" })
	h.frame(t)

	_, ok := h.meshes.Get(old[0].Mesh)
	assert.False(t, ok)
	assert.Equal(t, 1, h.meshes.Len())
}

func TestFatalGlyphError(t *testing.T) {
	h := newHarness(t, text.Options{PageSize: 16, Padding: 1})
	e := h.spawnText("W", color.White)

	h.tracker.Run(h.world)
	_, err := h.builder.Run(context.Background(), h.world)
	require.Error(t, err)

	var fatal *FatalError
	require.True(t, errors.As(err, &fatal))
	assert.Equal(t, e, fatal.Entity)
	assert.ErrorIs(t, err, text.ErrFailedToAddGlyph)

	n := h.node(t, e)
	assert.Empty(t, n.Cache.Groups, "no partial geometry")
	assert.True(t, n.Dirty)
	assert.Equal(t, 0, h.meshes.Len())
}

func TestGroupsPerAtlasTexture(t *testing.T) {
	h := newHarness(t, text.Options{PageSize: 40, Padding: 1})
	e := h.spawnText("WMW", color.White)
	h.frame(t)

	groups := h.node(t, e).Cache.Groups
	require.Len(t, groups, 2)
	assert.NotEqual(t, groups[0].Texture, groups[1].Texture)

	ms := h.meshesOf(t, e)
	assert.Equal(t, 8, ms[0].VertexCount(), "both W glyphs share the first page")
	assert.Equal(t, 4, ms[1].VertexCount())
}

func TestManyRootsInParallel(t *testing.T) {
	h := newHarness(t, text.DefaultOptions())
	var roots []scene.Entity
	for i := range 50 {
		roots = append(roots, h.spawnText(string(rune('a'+i%26)), color.White))
	}

	assert.Equal(t, 50, h.frame(t).Rebuilt)
	for _, e := range roots {
		assert.Len(t, h.node(t, e).Cache.Groups, 1)
	}
}
