package math

import (
	"math"
	"testing"
)

func vecNear(a, b Vec3) bool {
	return abs(a.X-b.X) < 0.001 && abs(a.Y-b.Y) < 0.001 && abs(a.Z-b.Z) < 0.001
}

func TestTransformMulTranslation(t *testing.T) {
	parent := TransformFromXYZ(1, 2, 3)
	child := TransformFromXYZ(10, 0, 0)

	got := parent.Mul(child)
	if got.Translation != (Vec3{11, 2, 3}) {
		t.Errorf("Mul translation: got %v, want (11, 2, 3)", got.Translation)
	}
}

func TestTransformMulRotatedParent(t *testing.T) {
	parent := TransformIdentity().WithRotation(QuatFromYaw(float32(math.Pi / 2)))
	child := TransformFromXYZ(1, 0, 0)

	got := parent.Mul(child)
	// Yaw +90 maps +X onto -Z
	if !vecNear(got.Translation, Vec3{0, 0, -1}) {
		t.Errorf("Mul rotated parent: got %v, want (0, 0, -1)", got.Translation)
	}
}

func TestTransformMulScale(t *testing.T) {
	parent := TransformFromXYZ(0, 0, 0).WithScale(2)
	child := TransformFromXYZ(1, 1, 1).WithScale(3)

	got := parent.Mul(child)
	if got.Translation != (Vec3{2, 2, 2}) {
		t.Errorf("Mul scaled translation: got %v, want (2, 2, 2)", got.Translation)
	}
	if got.Scale != (Vec3{6, 6, 6}) {
		t.Errorf("Mul scale: got %v, want (6, 6, 6)", got.Scale)
	}
}

func TestTransformMatrixMatchesComposition(t *testing.T) {
	tr := TransformFromXYZ(5, 6, 7).WithScale(2).WithRotation(QuatFromYaw(0.3))
	m := tr.Matrix()

	p := Vec3{1, 2, 3}
	want := tr.Translation.Add(tr.Rotation.Rotate(p.Scale(2)))
	if got := m.TransformVec3(p); !vecNear(got, want) {
		t.Errorf("Matrix: got %v, want %v", got, want)
	}
	if m.Translation() != tr.Translation {
		t.Errorf("Translation: got %v, want %v", m.Translation(), tr.Translation)
	}
}

func TestQuatYawRoundTrip(t *testing.T) {
	for _, angle := range []float32{0, 0.5, -1.2, 2.5} {
		q := QuatFromYaw(angle)
		if got := q.Yaw(); abs(got-angle) > 0.001 {
			t.Errorf("Yaw(%v): got %v", angle, got)
		}
	}
}

func TestQuatTwistYDropsPitch(t *testing.T) {
	yaw := QuatFromYaw(0.8)
	pitch := QuatFromAxisAngle(Vec3{1, 0, 0}, 0.4)
	q := yaw.Mul(pitch)

	twist := q.TwistY()
	if abs(twist.X) > 0.001 || abs(twist.Z) > 0.001 {
		t.Errorf("TwistY should have no X/Z components, got %+v", twist)
	}
	if got := q.Yaw(); abs(got-0.8) > 0.001 {
		t.Errorf("Yaw of yaw*pitch: got %v, want 0.8", got)
	}
}

func TestQuatRotateMatchesMatrix(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 0, 1}, float32(math.Pi/2))
	got := q.Rotate(Vec3{1, 0, 0})
	want := q.ToMat4().TransformVec3(Vec3{1, 0, 0})
	if !vecNear(got, want) || !vecNear(got, Vec3{0, 1, 0}) {
		t.Errorf("Rotate: got %v, matrix %v, want (0, 1, 0)", got, want)
	}
}

func TestQuatLookRotation(t *testing.T) {
	tests := []Vec3{
		{0, 0, -1},
		{1, 0, 0},
		{5, 5, 5},
		{-2, -1, 3},
	}

	for _, dir := range tests {
		got := QuatLookRotation(dir).Rotate(Vec3{0, 0, -1})
		if want := dir.Normalize(); !vecNear(got, want) {
			t.Errorf("QuatLookRotation(%v) forward: got %v, want %v", dir, got, want)
		}
	}
}
