package demo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-billboard/internal/config"
	"github.com/Faultbox/midgard-billboard/internal/engine/billboard"
	"github.com/Faultbox/midgard-billboard/internal/engine/extract"
	"github.com/Faultbox/midgard-billboard/internal/engine/pipeline"
	"github.com/Faultbox/midgard-billboard/internal/engine/scene"
)

func newPipeline(t *testing.T) (*pipeline.Pipeline, Env) {
	t.Helper()
	p := pipeline.New(config.Default(), nil)
	font, done := p.LoadFont("")
	<-done
	return p, Env{Font: font, Images: p.Images, Meshes: p.Meshes}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{
		"depth",
		"lock_rotation",
		"lock_y",
		"text",
		"texture",
		"transform_propagation",
	}, Names())
}

func TestBuildUnknown(t *testing.T) {
	_, err := Build("sprites", scene.NewWorld(), Env{})
	assert.ErrorIs(t, err, ErrUnknownExample)
}

func TestExamplesRender(t *testing.T) {
	tests := []struct {
		name     string
		textured int
		text     int
	}{
		{"text", 0, 1},
		{"lock_y", 2, 0},
		{"lock_rotation", 0, 1},
		{"depth", 1, 2},
		{"texture", 1, 0},
		{"transform_propagation", 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, env := newPipeline(t)

			var s *Scene
			batch, stats, err := p.Frame(context.Background(), func(w *scene.World) {
				var err error
				s, err = Build(tt.name, w, env)
				require.NoError(t, err)
			})
			require.NoError(t, err)
			assert.Equal(t, tt.name, s.Name)
			assert.Equal(t, tt.text, stats.Rebuilt)
			assert.Zero(t, stats.Retrying)

			var textured, text int
			for _, r := range batch.Records() {
				switch r.Kind() {
				case extract.KindTextured:
					textured++
				case extract.KindText:
					text++
				}
			}
			assert.Equal(t, tt.textured, textured)
			assert.Equal(t, tt.text, text)
		})
	}
}

func TestLockExamplesUseTheirModes(t *testing.T) {
	p, env := newPipeline(t)

	var lockY, lockRot *Scene
	batch, _, err := p.Frame(context.Background(), func(w *scene.World) {
		var err error
		lockY, err = Build("lock_y", w, env)
		require.NoError(t, err)
		lockRot, err = Build("lock_rotation", w, env)
		require.NoError(t, err)
	})
	require.NoError(t, err)

	free, ok := batch.Lookup(extract.RenderID{Entity: lockY.Entities[0], Kind: extract.KindTextured})
	require.True(t, ok)
	assert.Equal(t, billboard.ModeNone, free.Mode)

	locked, ok := batch.Lookup(extract.RenderID{Entity: lockY.Entities[1], Kind: extract.KindTextured})
	require.True(t, ok)
	assert.Equal(t, billboard.ModeLockY, locked.Mode)

	label, ok := batch.Lookup(extract.RenderID{Entity: lockRot.Entities[0], Kind: extract.KindText})
	require.True(t, ok)
	assert.Equal(t, billboard.ModeLockRotation, label.Mode)
}

func TestDepthExample(t *testing.T) {
	p, env := newPipeline(t)

	var s *Scene
	batch, _, err := p.Frame(context.Background(), func(w *scene.World) {
		var err error
		s, err = Build("depth", w, env)
		require.NoError(t, err)
	})
	require.NoError(t, err)

	tested, ok := batch.Lookup(extract.RenderID{Entity: s.Entities[0], Kind: extract.KindText})
	require.True(t, ok)
	assert.True(t, tested.Depth)

	untested, ok := batch.Lookup(extract.RenderID{Entity: s.Entities[1], Kind: extract.KindText})
	require.True(t, ok)
	assert.False(t, untested.Depth)
}

func TestTransformPropagationMovesChild(t *testing.T) {
	p, env := newPipeline(t)

	var s *Scene
	_, _, err := p.Frame(context.Background(), func(w *scene.World) {
		var err error
		s, err = Build("transform_propagation", w, env)
		require.NoError(t, err)
	})
	require.NoError(t, err)
	child := s.Entities[1]

	var startZ float32
	p.View(func(w *scene.World) {
		n, ok := w.Get(child)
		require.True(t, ok)
		startZ = n.Global.Translation.Z
	})
	assert.InDelta(t, 1, startZ, 1e-5)

	batch, stats, err := p.Frame(context.Background(), func(w *scene.World) {
		s.Animate(w, 0.5)
	})
	require.NoError(t, err)
	assert.Zero(t, stats.Rebuilt, "moving the parent must not rebuild text")

	r, ok := batch.Lookup(extract.RenderID{Entity: child, Kind: extract.KindText})
	require.True(t, ok)
	assert.InDelta(t, 0.5, r.Orientation.Translation.Z, 1e-5)
	assert.InDelta(t, -1, r.Orientation.Translation.Y, 1e-5)
}

func TestTransformPropagationReverses(t *testing.T) {
	w := scene.NewWorld()
	s, err := Build("transform_propagation", w, Env{})
	require.NoError(t, err)
	parent := s.Entities[0]

	for range 4 {
		s.Animate(w, 0.5)
	}
	n, _ := w.Get(parent)
	assert.InDelta(t, -1, n.Local.Translation.Z, 1e-5)

	for range 4 {
		s.Animate(w, 0.5)
	}
	n, _ = w.Get(parent)
	assert.InDelta(t, 1, n.Local.Translation.Z, 1e-5)
}

func TestChecker(t *testing.T) {
	img := Checker(64, 8)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())

	_, _, _, a := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	assert.NotEqual(t, img.At(0, 0), img.At(8, 0), "adjacent cells differ")
	assert.Equal(t, img.At(8, 0), img.At(0, 8))
}

func TestEnvTextureOverridesChecker(t *testing.T) {
	_, env := newPipeline(t)
	env.Texture = env.Images.Add(Checker(4, 2))

	w := scene.NewWorld()
	s, err := Build("lock_y", w, env)
	require.NoError(t, err)

	for _, e := range s.Entities {
		n, ok := w.Get(e)
		require.True(t, ok)
		assert.Equal(t, env.Texture, n.Textured.Texture)
	}
	assert.Equal(t, 1, env.Images.Len())
}
