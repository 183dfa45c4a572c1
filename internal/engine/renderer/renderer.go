// Package renderer owns the OpenGL frame: context setup, clearing and
// drawing the published billboard batch.
package renderer

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-billboard/internal/assets"
	"github.com/Faultbox/midgard-billboard/internal/engine/extract"
	"github.com/Faultbox/midgard-billboard/internal/engine/glbackend"
	"github.com/Faultbox/midgard-billboard/internal/engine/mesh"
	"github.com/Faultbox/midgard-billboard/internal/engine/orientation"
	"github.com/Faultbox/midgard-billboard/internal/engine/shader"
	"github.com/Faultbox/midgard-billboard/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [4]float32
}

// Renderer draws billboard batches into the current GL context.
type Renderer struct {
	config Config
	log    *zap.Logger
	binder *glbackend.Binder

	// Garbage collection of GPU copies runs every collectEvery frames.
	frames       int
	collectEvery int
}

// New initializes OpenGL and the billboard binder.
// Must be called AFTER the OpenGL context is created.
func New(cfg Config, meshes *assets.Store[*mesh.Mesh], images *assets.Store[image.Image], log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	c := cfg.ClearColor
	if c == ([4]float32{}) {
		c = [4]float32{0.1, 0.1, 0.15, 1.0}
	}
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	binder, err := glbackend.NewBinder(meshes, images, log.Named("binder"))
	if err != nil {
		return nil, fmt.Errorf("failed to create billboard binder: %w", err)
	}

	return &Renderer{
		config:       cfg,
		log:          log,
		binder:       binder,
		collectEvery: 120,
	}, nil
}

// Close releases GPU resources, compiled shader programs included.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.binder.Destroy()
	for _, program := range shader.Default().Forget() {
		gl.DeleteProgram(program)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Enable(gl.DEPTH_TEST)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// DrawBatch draws batch as seen by a camera with the given rotation and
// view-projection matrix. A nil batch draws nothing.
func (r *Renderer) DrawBatch(batch *extract.Batch, camera math.Quat, viewProj math.Mat4) {
	if batch == nil {
		return
	}
	r.binder.Draw(batch, orientation.ViewBasis(camera), viewProj)
}

// End finishes the current frame.
func (r *Renderer) End() {
	r.frames++
	if r.frames%r.collectEvery == 0 {
		r.binder.Collect()
	}
}
