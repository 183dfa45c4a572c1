// Package demo builds the example scenes shown by the viewer and the stress
// grid driven by the stress program.
package demo

import (
	"errors"
	"fmt"
	"image"
	gomath "math"
	"slices"

	"github.com/Faultbox/midgard-billboard/internal/assets"
	"github.com/Faultbox/midgard-billboard/internal/engine/billboard"
	"github.com/Faultbox/midgard-billboard/internal/engine/mesh"
	"github.com/Faultbox/midgard-billboard/internal/engine/scene"
	"github.com/Faultbox/midgard-billboard/internal/engine/text"
	"github.com/Faultbox/midgard-billboard/pkg/color"
	"github.com/Faultbox/midgard-billboard/pkg/math"
)

// ErrUnknownExample is returned by Build for a name Names does not list.
var ErrUnknownExample = errors.New("unknown example")

// TextScale maps font pixels to world units for example text.
const TextScale = 0.0085

// FontSize is the pixel size example text is laid out at unless Env says otherwise.
const FontSize = 60

// Env holds the assets example scenes draw from.
type Env struct {
	Font     text.FontHandle
	FontSize float32
	// Texture is shown by textured billboards. An invalid handle means a
	// generated checker image.
	Texture assets.ImageHandle
	Images  *assets.Store[image.Image]
	Meshes  *assets.Store[*mesh.Mesh]
}

func (e Env) texture() assets.ImageHandle {
	if e.Texture.IsValid() {
		return e.Texture
	}
	return e.Images.Add(Checker(256, 8))
}

func (e Env) font() billboard.TextFont {
	size := e.FontSize
	if size <= 0 {
		size = FontSize
	}
	return billboard.TextFont{Font: e.Font, Size: size}
}

// sideView puts the camera on the +X axis, looking at the origin.
const sideView = gomath.Pi / 2

// Camera is where a viewer should start looking from. Spin orbits the
// camera about the Y axis in radians per second.
type Camera struct {
	Center   math.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32
	Spin     float32
}

// Scene is a populated example. Animate advances it by dt seconds.
type Scene struct {
	Name     string
	Camera   Camera
	Entities []scene.Entity

	animate func(w *scene.World, dt float32)
}

// Animate advances the scene. It is a no-op for static scenes.
func (s *Scene) Animate(w *scene.World, dt float32) {
	if s.animate != nil {
		s.animate(w, dt)
	}
}

type builder func(w *scene.World, env Env) (*Scene, error)

var examples = map[string]builder{
	"text":                  buildText,
	"lock_y":                buildLockY,
	"lock_rotation":         buildLockRotation,
	"depth":                 buildDepth,
	"texture":               buildTexture,
	"transform_propagation": buildTransformPropagation,
}

// Names returns the example names in sorted order.
func Names() []string {
	names := make([]string, 0, len(examples))
	for name := range examples {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Build populates w with the named example.
func Build(name string, w *scene.World, env Env) (*Scene, error) {
	b, ok := examples[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExample, name)
	}
	s, err := b(w, env)
	if err != nil {
		return nil, fmt.Errorf("example %s: %w", name, err)
	}
	s.Name = name
	return s, nil
}

// spawnText creates a text root with one span per run.
func spawnText(w *scene.World, env Env, local math.Transform, runs ...billboard.TextSpan) (scene.Entity, error) {
	root := w.Spawn()
	w.SetLocal(root, local)
	w.SetText(root, billboard.Text{Font: env.font(), Color: color.White})

	for _, run := range runs {
		child, err := w.SpawnChild(root)
		if err != nil {
			return scene.Entity{}, err
		}
		w.SetSpan(child, run)
	}
	return root, nil
}

func span(value string, env Env, c color.Color) billboard.TextSpan {
	s := billboard.NewTextSpan(value, env.font())
	s.Color = c
	return s
}

func scaled(x, y, z float32) math.Transform {
	return math.TransformFromXYZ(x, y, z).WithScale(TextScale)
}

// texturedQuad adds a width x height quad showing the environment texture.
func texturedQuad(w *scene.World, env Env, local math.Transform, width, height float32) scene.Entity {
	e := w.Spawn()
	w.SetLocal(e, local)
	w.SetTextured(e, billboard.Textured{
		Texture: env.texture(),
		Mesh:    env.Meshes.Add(mesh.Rectangle(width, height)),
	})
	return e
}

func buildText(w *scene.World, env Env) (*Scene, error) {
	root, err := spawnText(w, env, scaled(0, 0, 0),
		span("IMPORTANT", env, color.Orange),
		span(" text", env, color.White),
	)
	if err != nil {
		return nil, err
	}
	return &Scene{
		Camera:   Camera{Distance: 5},
		Entities: []scene.Entity{root},
	}, nil
}

func buildLockY(w *scene.World, env Env) (*Scene, error) {
	free := texturedQuad(w, env, math.TransformFromXYZ(-2, 2, 0), 2, 4)
	locked := texturedQuad(w, env, math.TransformFromXYZ(2, 2, 0), 2, 4)
	lock := billboard.LockY()
	w.SetLockAxis(locked, &lock)

	return &Scene{
		Camera:   Camera{Center: math.Vec3{Y: 2}, Distance: 10, Pitch: 0.6},
		Entities: []scene.Entity{free, locked},
	}, nil
}

func buildLockRotation(w *scene.World, env Env) (*Scene, error) {
	local := scaled(0, 0, 0).WithRotation(math.QuatLookRotation(math.Vec3{X: 5, Y: 5, Z: 5}))
	root, err := spawnText(w, env, local,
		span("LOCKED", env, color.Orange),
		span(" text", env, color.White),
	)
	if err != nil {
		return nil, err
	}
	w.SetLayout(root, text.Layout{Justify: text.JustifyCenter})
	lock := billboard.LockRotation()
	w.SetLockAxis(root, &lock)

	return &Scene{
		Camera:   Camera{Distance: 5, Yaw: sideView, Spin: 1},
		Entities: []scene.Entity{root},
	}, nil
}

func buildDepth(w *scene.World, env Env) (*Scene, error) {
	tested, err := spawnText(w, env, scaled(0, 0.5, 0), span("depth enabled", env, color.White))
	if err != nil {
		return nil, err
	}
	untested, err := spawnText(w, env, scaled(0, -0.5, 0), span("depth disabled", env, color.White))
	if err != nil {
		return nil, err
	}
	centered := text.Layout{Justify: text.JustifyCenter}
	w.SetLayout(tested, centered)
	w.SetLayout(untested, centered)
	w.SetDepth(untested, billboard.Depth{Test: false})

	// Occluder between the starting camera and the labels.
	wall := texturedQuad(w, env, math.TransformFromXYZ(1, 0, 0), 1, 1)

	return &Scene{
		Camera:   Camera{Distance: 5, Yaw: sideView, Spin: 1},
		Entities: []scene.Entity{tested, untested, wall},
	}, nil
}

func buildTexture(w *scene.World, env Env) (*Scene, error) {
	e := texturedQuad(w, env, math.TransformIdentity(), 2, 2)
	return &Scene{
		Camera:   Camera{Distance: 5},
		Entities: []scene.Entity{e},
	}, nil
}

func buildTransformPropagation(w *scene.World, env Env) (*Scene, error) {
	parent := w.Spawn()
	w.SetLocal(parent, math.TransformFromXYZ(0, -2, 1))

	child, err := w.SpawnChild(parent)
	if err != nil {
		return nil, err
	}
	w.SetLocal(child, scaled(0, 1, 0))
	label := billboard.NewText("parented text", env.font())
	w.SetText(child, label)
	w.SetLayout(child, text.Layout{Justify: text.JustifyCenter})

	var elapsed float32
	forward := false
	return &Scene{
		Camera:   Camera{Distance: 5, Yaw: sideView},
		Entities: []scene.Entity{parent, child},
		animate: func(w *scene.World, dt float32) {
			n, ok := w.Get(parent)
			if !ok {
				return
			}
			local := n.Local
			if forward {
				local.Translation.Z += dt
			} else {
				local.Translation.Z -= dt
			}
			w.SetLocal(parent, local)

			elapsed += dt
			if elapsed >= 2 {
				forward = !forward
				elapsed -= 2
			}
		},
	}, nil
}
