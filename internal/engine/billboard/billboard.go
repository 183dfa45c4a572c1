// Package billboard defines the components that make an entity render as a
// camera-facing billboard: textured quads and text.
package billboard

import (
	"github.com/Faultbox/midgard-billboard/internal/assets"
	"github.com/Faultbox/midgard-billboard/pkg/math"
)

// Mode is the rotational freedom the renderer may override.
type Mode int

const (
	ModeNone         Mode = iota // Always faces the camera
	ModeLockY                    // Turns about the vertical axis only
	ModeLockRotation             // Uses the entity rotation as is
)

func (m Mode) String() string {
	switch m {
	case ModeLockY:
		return "lock-y"
	case ModeLockRotation:
		return "lock-rotation"
	default:
		return "none"
	}
}

// LockAxis restricts camera facing. Rotation takes precedence over YAxis.
type LockAxis struct {
	YAxis    bool
	Rotation bool
}

// LockY returns a LockAxis keeping billboards upright.
func LockY() LockAxis { return LockAxis{YAxis: true} }

// LockRotation returns a LockAxis disabling camera facing.
func LockRotation() LockAxis { return LockAxis{Rotation: true} }

// WithLockY returns a copy with the Y axis flag set to v.
func (l LockAxis) WithLockY(v bool) LockAxis {
	l.YAxis = v
	return l
}

// WithLockRotation returns a copy with the rotation flag set to v.
func (l LockAxis) WithLockRotation(v bool) LockAxis {
	l.Rotation = v
	return l
}

// Mode derives the orientation mode from the flags.
func (l LockAxis) Mode() Mode {
	switch {
	case l.Rotation:
		return ModeLockRotation
	case l.YAxis:
		return ModeLockY
	default:
		return ModeNone
	}
}

// ModeOf returns the mode of an optional lock, ModeNone when absent.
func ModeOf(l *LockAxis) Mode {
	if l == nil {
		return ModeNone
	}
	return l.Mode()
}

// Depth controls depth testing. Billboards are depth tested unless a Depth
// with Test false is attached.
type Depth struct {
	Test bool
}

// DepthOf returns the depth test flag of an optional Depth.
func DepthOf(d *Depth) bool {
	return d == nil || d.Test
}

// Textured is a billboard drawing Mesh with Texture.
type Textured struct {
	Texture assets.ImageHandle
	Mesh    assets.MeshHandle
}

// Anchor is the pivot of a text block as a fraction of its size, each axis in
// [-0.5, 0.5]. The zero value centres the text on the entity.
type Anchor math.Vec2

// Anchor presets.
var (
	AnchorCenter      = Anchor{}
	AnchorBottomLeft  = Anchor{X: -0.5, Y: -0.5}
	AnchorBottomRight = Anchor{X: 0.5, Y: -0.5}
	AnchorTopLeft     = Anchor{X: -0.5, Y: 0.5}
	AnchorTopRight    = Anchor{X: 0.5, Y: 0.5}
	AnchorCenterLeft  = Anchor{X: -0.5}
	AnchorCenterRight = Anchor{X: 0.5}
	AnchorTopCenter   = Anchor{Y: 0.5}
	AnchorBottom      = Anchor{Y: -0.5}
)

// Offset returns the translation applied to glyph positions laid out in a
// box of the given size: size * -(anchor + 0.5).
func (a Anchor) Offset(size math.Vec2) math.Vec2 {
	return size.Mul(math.Vec2(a).AddScalar(0.5)).Scale(-1)
}
