// Package orientation computes how a billboard is rotated for rendering.
//
// Solve runs per entity during extraction and never looks at a camera.
// ViewBasis runs once per view, and ModelMatrix combines the two the same way
// the billboard vertex shader does.
package orientation

import (
	"github.com/Faultbox/midgard-billboard/internal/engine/billboard"
	"github.com/Faultbox/midgard-billboard/pkg/math"
)

// Descriptor is the per-entity orientation input to the renderer.
type Descriptor struct {
	Mode        billboard.Mode
	Lock        billboard.LockAxis
	Depth       bool
	Translation math.Vec3
	Scale       math.Vec3
	// Rotation is identity for ModeNone (the view supplies it), the entity
	// yaw for ModeLockY and the full world rotation for ModeLockRotation.
	Rotation math.Quat
}

// Solve derives the descriptor from the entity's world and local transforms.
func Solve(world, local math.Transform, lock *billboard.LockAxis, depth bool) Descriptor {
	d := Descriptor{
		Mode:        billboard.ModeOf(lock),
		Depth:       depth,
		Translation: world.Translation,
		Scale:       world.Scale,
		Rotation:    math.QuatIdentity(),
	}
	if lock != nil {
		d.Lock = *lock
	}

	switch d.Mode {
	case billboard.ModeLockY:
		d.Rotation = local.Rotation.TwistY()
	case billboard.ModeLockRotation:
		d.Rotation = world.Rotation
	}
	return d
}

// View is the camera-facing rotation shared by every billboard in one view.
type View struct {
	Full math.Quat // Camera rotation
	Yaw  math.Quat // Camera rotation about the vertical axis only
}

// ViewBasis builds the shared rotations from the camera's world rotation.
func ViewBasis(camera math.Quat) View {
	return View{Full: camera.Normalize(), Yaw: camera.TwistY()}
}

// RotationIn returns the final rotation of a billboard in view v.
func (d Descriptor) RotationIn(v View) math.Quat {
	switch d.Mode {
	case billboard.ModeLockY:
		return v.Yaw.Mul(d.Rotation)
	case billboard.ModeLockRotation:
		return d.Rotation
	default:
		return v.Full
	}
}

// ModelMatrix returns the model matrix of a billboard in view v.
func ModelMatrix(d Descriptor, v View) math.Mat4 {
	return math.FromScaleRotationTranslation(d.Scale, d.RotationIn(v), d.Translation)
}
