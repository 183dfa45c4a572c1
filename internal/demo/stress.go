package demo

import (
	"github.com/Faultbox/midgard-billboard/internal/config"
	"github.com/Faultbox/midgard-billboard/internal/engine/billboard"
	"github.com/Faultbox/midgard-billboard/internal/engine/mesh"
	"github.com/Faultbox/midgard-billboard/internal/engine/scene"
	"github.com/Faultbox/midgard-billboard/pkg/color"
	"github.com/Faultbox/midgard-billboard/pkg/math"
)

// Stress is a cube grid of billboards that can be marked changed every frame.
type Stress struct {
	Text     []scene.Entity
	Textured []scene.Entity

	recomputeText    bool
	recomputeTexture bool
}

// BuildStress fills w with one billboard per integer point of the
// -radius..radius cube. Kind "both" places a text and a textured billboard
// at each point. All textured billboards share one image and one mesh.
func BuildStress(w *scene.World, env Env, cfg config.StressConfig) *Stress {
	s := &Stress{
		recomputeText:    cfg.RecomputeText,
		recomputeTexture: cfg.RecomputeTexture,
	}

	withText := cfg.Kind == "text" || cfg.Kind == "both"
	withTexture := cfg.Kind == "texture" || cfg.Kind == "both"
	scale := cfg.TextScale
	if scale <= 0 {
		scale = TextScale
	}

	var shared billboard.Textured
	if withTexture {
		shared = billboard.Textured{
			Texture: env.texture(),
			Mesh:    env.Meshes.Add(mesh.Rectangle(1, 1)),
		}
	}

	label := billboard.NewText("STRESS", env.font())
	label.Color = color.Orange

	r := cfg.Radius
	for x := -r; x <= r; x++ {
		for y := -r; y <= r; y++ {
			for z := -r; z <= r; z++ {
				at := math.TransformFromXYZ(float32(x), float32(y), float32(z))
				if withText {
					e := w.Spawn()
					w.SetLocal(e, at.WithScale(scale))
					w.SetText(e, label)
					s.Text = append(s.Text, e)
				}
				if withTexture {
					e := w.Spawn()
					w.SetLocal(e, at)
					w.SetTextured(e, shared)
					s.Textured = append(s.Textured, e)
				}
			}
		}
	}
	return s
}

// Len returns the number of billboards in the grid.
func (s *Stress) Len() int {
	return len(s.Text) + len(s.Textured)
}

// Recompute marks the configured components changed without editing them.
func (s *Stress) Recompute(w *scene.World) {
	if s.recomputeText {
		for _, e := range s.Text {
			w.MarkChanged(e, scene.ChangeText)
		}
	}
	if s.recomputeTexture {
		for _, e := range s.Textured {
			w.MarkChanged(e, scene.ChangeTextured)
		}
	}
}

// StressCamera returns a view that fits a grid of the given radius.
func StressCamera(radius int) Camera {
	return Camera{Distance: float32(radius)*4 + 10}
}
