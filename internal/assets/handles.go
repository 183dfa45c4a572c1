package assets

import (
	"image"

	"github.com/Faultbox/midgard-billboard/internal/engine/mesh"
)

// ImageHandle addresses a texture: a user image or a glyph atlas page.
type ImageHandle = Handle[image.Image]

// MeshHandle addresses a CPU mesh.
type MeshHandle = Handle[*mesh.Mesh]
