package demo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-billboard/internal/config"
	"github.com/Faultbox/midgard-billboard/internal/engine/scene"
)

func stressConfig(kind string, recompute bool) config.StressConfig {
	return config.StressConfig{
		Kind:             kind,
		Radius:           1,
		RecomputeText:    recompute,
		RecomputeTexture: recompute,
		TextScale:        TextScale,
	}
}

func TestBuildStressKinds(t *testing.T) {
	tests := []struct {
		kind     string
		text     int
		textured int
	}{
		{"text", 27, 0},
		{"texture", 0, 27},
		{"both", 27, 27},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			p, env := newPipeline(t)

			var s *Stress
			batch, stats, err := p.Frame(context.Background(), func(w *scene.World) {
				s = BuildStress(w, env, stressConfig(tt.kind, false))
			})
			require.NoError(t, err)

			assert.Len(t, s.Text, tt.text)
			assert.Len(t, s.Textured, tt.textured)
			assert.Equal(t, tt.text+tt.textured, s.Len())
			assert.Equal(t, tt.text, stats.Rebuilt)
			assert.Equal(t, tt.text+tt.textured, batch.Len())
		})
	}
}

func TestStressSharesTexturedAssets(t *testing.T) {
	w := scene.NewWorld()
	_, env := newPipeline(t)
	s := BuildStress(w, env, stressConfig("texture", false))

	first, _ := w.Get(s.Textured[0])
	for _, e := range s.Textured[1:] {
		n, _ := w.Get(e)
		assert.Equal(t, *first.Textured, *n.Textured)
	}
	assert.Equal(t, 1, env.Images.Len())
	assert.Equal(t, 1, env.Meshes.Len())
}

func TestStressRecompute(t *testing.T) {
	for _, recompute := range []bool{false, true} {
		p, env := newPipeline(t)

		var s *Stress
		_, _, err := p.Frame(context.Background(), func(w *scene.World) {
			s = BuildStress(w, env, stressConfig("both", recompute))
		})
		require.NoError(t, err)

		_, stats, err := p.Frame(context.Background(), s.Recompute)
		require.NoError(t, err)

		if recompute {
			assert.Equal(t, 27, stats.Marked)
			assert.Equal(t, 27, stats.Rebuilt)
		} else {
			assert.Zero(t, stats.Marked)
			assert.Zero(t, stats.Rebuilt)
		}
		assert.Equal(t, 54, stats.Records)
	}
}

func TestStressGridPositions(t *testing.T) {
	w := scene.NewWorld()
	s := BuildStress(w, Env{}, stressConfig("text", false))

	n, ok := w.Get(s.Text[0])
	require.True(t, ok)
	assert.Equal(t, float32(-1), n.Local.Translation.X)
	assert.Equal(t, float32(-1), n.Local.Translation.Y)
	assert.Equal(t, float32(-1), n.Local.Translation.Z)
	assert.Equal(t, float32(TextScale), n.Local.Scale.X)

	last, ok := w.Get(s.Text[len(s.Text)-1])
	require.True(t, ok)
	assert.Equal(t, float32(1), last.Local.Translation.X)
	assert.Equal(t, float32(1), last.Local.Translation.Z)
}

func TestStressCamera(t *testing.T) {
	assert.Greater(t, StressCamera(10).Distance, StressCamera(1).Distance)
}
