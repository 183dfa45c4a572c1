package shader

import _ "embed"

// BillboardVertexShader transforms billboard quads by a per-draw model matrix.
//
//go:embed glsl/billboard.vert
var BillboardVertexShader string

// BillboardFragmentShader samples either an RGBA texture or a glyph coverage mask.
//
//go:embed glsl/billboard.frag
var BillboardFragmentShader string
