package math

// Transform is a translation, rotation and scale.
type Transform struct {
	Translation Vec3
	Rotation    Quat
	Scale       Vec3
}

// TransformIdentity returns a transform that changes nothing.
func TransformIdentity() Transform {
	return Transform{Rotation: QuatIdentity(), Scale: Vec3One}
}

// TransformFromXYZ returns an identity transform moved to (x, y, z).
func TransformFromXYZ(x, y, z float32) Transform {
	t := TransformIdentity()
	t.Translation = Vec3{x, y, z}
	return t
}

// WithScale returns a copy with a uniform scale.
func (t Transform) WithScale(s float32) Transform {
	t.Scale = Vec3{s, s, s}
	return t
}

// WithRotation returns a copy with the given rotation.
func (t Transform) WithRotation(q Quat) Transform {
	t.Rotation = q
	return t
}

// Mul composes a parent transform with a child expressed in the parent's space.
// Shear from non-uniform parent scale combined with child rotation is dropped.
func (t Transform) Mul(child Transform) Transform {
	return Transform{
		Translation: t.Translation.Add(t.Rotation.Rotate(t.Scale.Mul(child.Translation))),
		Rotation:    t.Rotation.Mul(child.Rotation),
		Scale:       t.Scale.Mul(child.Scale),
	}
}

// Matrix returns the transform as T * R * S.
func (t Transform) Matrix() Mat4 {
	return FromScaleRotationTranslation(t.Scale, t.Rotation, t.Translation)
}
