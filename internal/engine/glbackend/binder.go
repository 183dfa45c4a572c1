// Package glbackend draws published billboard batches with OpenGL 4.1.
package glbackend

import (
	"fmt"
	"image"
	"image/draw"
	"sort"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-billboard/internal/assets"
	"github.com/Faultbox/midgard-billboard/internal/engine/extract"
	"github.com/Faultbox/midgard-billboard/internal/engine/mesh"
	"github.com/Faultbox/midgard-billboard/internal/engine/orientation"
	"github.com/Faultbox/midgard-billboard/internal/engine/shader"
	"github.com/Faultbox/midgard-billboard/internal/engine/text"
	"github.com/Faultbox/midgard-billboard/pkg/math"
)

type gpuMesh struct {
	src   *mesh.Mesh
	vao   uint32
	vbo   uint32
	ebo   uint32
	count int32
}

type gpuTexture struct {
	id      uint32
	version uint64
	mask    bool
}

// versioned is implemented by images that change in place, such as glyph atlas pages.
type versioned interface {
	Version() uint64
}

// Binder uploads meshes and textures referenced by render records and issues
// one draw call per record. All methods must run on the GL thread.
type Binder struct {
	meshes *assets.Store[*mesh.Mesh]
	images *assets.Store[image.Image]
	log    *zap.Logger

	program     uint32
	locViewProj int32
	locModel    int32
	locTexture  int32
	locMask     int32

	gpuMeshes   map[assets.MeshHandle]*gpuMesh
	gpuTextures map[assets.ImageHandle]*gpuTexture
	fallback    uint32
}

// NewBinder compiles the billboard shader from the default registry.
func NewBinder(meshes *assets.Store[*mesh.Mesh], images *assets.Store[image.Image], log *zap.Logger) (*Binder, error) {
	if log == nil {
		log = zap.NewNop()
	}

	program, err := shader.Default().Program(shader.Billboard())
	if err != nil {
		return nil, fmt.Errorf("billboard shader: %w", err)
	}

	b := &Binder{
		meshes:      meshes,
		images:      images,
		log:         log,
		program:     program,
		locViewProj: shader.GetUniform(program, "uViewProj"),
		locModel:    shader.GetUniform(program, "uModel"),
		locTexture:  shader.GetUniform(program, "uTexture"),
		locMask:     shader.GetUniform(program, "uAlphaMask"),
		gpuMeshes:   make(map[assets.MeshHandle]*gpuMesh),
		gpuTextures: make(map[assets.ImageHandle]*gpuTexture),
	}
	b.createFallbackTexture()
	return b, nil
}

func (b *Binder) createFallbackTexture() {
	gl.GenTextures(1, &b.fallback)
	gl.BindTexture(gl.TEXTURE_2D, b.fallback)
	white := []uint8{255, 255, 255, 255}
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(white))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
}

// Draw renders every record of batch as seen through view.
func (b *Binder) Draw(batch *extract.Batch, view orientation.View, viewProj math.Mat4) {
	records := drawOrder(batch.Records())
	if len(records) == 0 {
		return
	}

	gl.UseProgram(b.program)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.CULL_FACE)
	gl.UniformMatrix4fv(b.locViewProj, 1, false, &viewProj[0])
	gl.Uniform1i(b.locTexture, 0)
	gl.ActiveTexture(gl.TEXTURE0)

	for _, r := range records {
		m := b.mesh(r.Mesh)
		if m == nil {
			continue
		}
		tex := b.texture(r.Texture)

		if r.Depth {
			gl.Enable(gl.DEPTH_TEST)
		} else {
			gl.Disable(gl.DEPTH_TEST)
		}

		model := orientation.ModelMatrix(r.Orientation, view)
		gl.UniformMatrix4fv(b.locModel, 1, false, &model[0])

		mask := int32(0)
		id := b.fallback
		if tex != nil {
			id = tex.id
			if tex.mask {
				mask = 1
			}
		}
		gl.Uniform1i(b.locMask, mask)
		gl.BindTexture(gl.TEXTURE_2D, id)

		gl.BindVertexArray(m.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, 0)
	}

	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}

// drawOrder puts depth-tested records first so overlays land on top.
func drawOrder(records []extract.Record) []extract.Record {
	out := append([]extract.Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Depth && !out[j].Depth
	})
	return out
}

func (b *Binder) mesh(h assets.MeshHandle) *gpuMesh {
	src, ok := b.meshes.Get(h)
	if !ok {
		return nil
	}
	if m, ok := b.gpuMeshes[h]; ok && m.src == src {
		return m
	}
	if err := src.Validate(); err != nil {
		b.log.Warn("skipping mesh", zap.Stringer("mesh", h), zap.Error(err))
		return nil
	}

	m := b.gpuMeshes[h]
	if m == nil {
		m = &gpuMesh{}
		gl.GenVertexArrays(1, &m.vao)
		gl.GenBuffers(1, &m.vbo)
		gl.GenBuffers(1, &m.ebo)
		b.gpuMeshes[h] = m
	}
	m.src = src
	m.count = int32(len(src.Indices))

	vertices := src.Interleave()
	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	if len(vertices) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	if len(src.Indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(src.Indices)*4, unsafe.Pointer(&src.Indices[0]), gl.STATIC_DRAW)
	}

	stride := int32(mesh.FloatsPerVertex * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 4, gl.FLOAT, false, stride, 5*4)
	gl.EnableVertexAttribArray(2)
	gl.BindVertexArray(0)

	return m
}

func (b *Binder) texture(h assets.ImageHandle) *gpuTexture {
	img, ok := b.images.Get(h)
	if !ok {
		return nil
	}

	var version uint64
	if v, ok := img.(versioned); ok {
		version = v.Version()
	}
	t, ok := b.gpuTextures[h]
	if ok && t.version == version {
		return t
	}
	if !ok {
		t = &gpuTexture{}
		gl.GenTextures(1, &t.id)
		b.gpuTextures[h] = t
	}
	t.version = version

	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	switch src := img.(type) {
	case *text.AtlasPage:
		t.mask = true
		upload(gl.RED, gl.R8, src.Rect.Dx(), src.Rect.Dy(), src.Pix)
	default:
		t.mask = false
		rgba := toRGBA(img)
		upload(gl.RGBA, gl.RGBA8, rgba.Rect.Dx(), rgba.Rect.Dy(), rgba.Pix)
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	return t
}

func upload(format uint32, internal int32, w, h int, pix []uint8) {
	if len(pix) == 0 {
		return
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(w), int32(h), 0, format, gl.UNSIGNED_BYTE, gl.Ptr(pix))
}

// toRGBA converts any image to tightly packed RGBA.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

// Collect frees GPU copies of assets that no longer exist in their stores.
func (b *Binder) Collect() {
	for h, m := range b.gpuMeshes {
		if _, ok := b.meshes.Get(h); !ok {
			deleteMesh(m)
			delete(b.gpuMeshes, h)
		}
	}
	for h, t := range b.gpuTextures {
		if state, _ := b.images.State(h); state == assets.StateUnknown {
			gl.DeleteTextures(1, &t.id)
			delete(b.gpuTextures, h)
		}
	}
}

func deleteMesh(m *gpuMesh) {
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
}

// Destroy releases all GPU resources owned by the binder. The shader program
// belongs to the registry and is left alone.
func (b *Binder) Destroy() {
	for h, m := range b.gpuMeshes {
		deleteMesh(m)
		delete(b.gpuMeshes, h)
	}
	for h, t := range b.gpuTextures {
		gl.DeleteTextures(1, &t.id)
		delete(b.gpuTextures, h)
	}
	if b.fallback != 0 {
		gl.DeleteTextures(1, &b.fallback)
		b.fallback = 0
	}
}
