// Package viewer implements the interactive billboard viewer: an SDL window,
// an orbit camera and the frame loop that feeds the billboard pipeline.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-billboard/internal/config"
	"github.com/Faultbox/midgard-billboard/internal/demo"
	"github.com/Faultbox/midgard-billboard/internal/engine/camera"
	"github.com/Faultbox/midgard-billboard/internal/engine/input"
	"github.com/Faultbox/midgard-billboard/internal/engine/pipeline"
	"github.com/Faultbox/midgard-billboard/internal/engine/renderer"
	"github.com/Faultbox/midgard-billboard/internal/engine/scene"
	"github.com/Faultbox/midgard-billboard/internal/engine/window"
	"github.com/Faultbox/midgard-billboard/internal/logger"
)

// StressExample selects the stress grid instead of a named example.
const StressExample = "stress"

// Viewer is the main viewer instance.
type Viewer struct {
	cfg      *config.Config
	log      *zap.Logger
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	pipeline *pipeline.Pipeline

	scene  *demo.Scene
	stress *demo.Stress
	spin   float32
	paused bool
	// screenshot is taken after the next frame is drawn.
	screenshot bool
}

// New creates the window, GL renderer and pipeline and populates the
// configured example.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:    cfg,
		log:    logger.Named("viewer"),
		input:  input.New(),
		camera: camera.NewOrbitCamera(),
	}

	v.log.Info("initializing viewer",
		zap.String("example", cfg.Viewer.Example),
		zap.Int("width", cfg.Viewer.Width),
		zap.Int("height", cfg.Viewer.Height),
	)

	var err error
	v.window, err = window.New(window.Config{
		Title:      "Midgard Billboard - " + cfg.Viewer.Example,
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
		Samples:    cfg.Viewer.Samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	v.pipeline = pipeline.New(cfg, logger.Named("pipeline"))

	// Renderer comes AFTER the window, since the OpenGL context must exist.
	width, height := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{Width: width, Height: height},
		v.pipeline.Meshes, v.pipeline.Images, logger.Named("renderer"))
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	if err := v.populate(); err != nil {
		v.Close()
		return nil, err
	}

	v.log.Info("viewer initialized successfully")
	return v, nil
}

// populate loads the font and builds the configured scene in the first frame.
func (v *Viewer) populate() error {
	font, _ := v.pipeline.LoadFont(v.cfg.Text.FontPath)
	env := demo.Env{
		Font:     font,
		FontSize: v.cfg.Text.FontSize,
		Images:   v.pipeline.Images,
		Meshes:   v.pipeline.Meshes,
	}
	if path := v.cfg.Texture.Path; path != "" {
		env.Texture, _ = v.pipeline.LoadImage(path)
	}

	var err error
	_, _, ferr := v.pipeline.Frame(context.Background(), func(w *scene.World) {
		if v.cfg.Viewer.Example == StressExample {
			v.stress = demo.BuildStress(w, env, v.cfg.Stress)
			v.applyCamera(demo.StressCamera(v.cfg.Stress.Radius))
			return
		}
		v.scene, err = demo.Build(v.cfg.Viewer.Example, w, env)
		if err == nil {
			v.applyCamera(v.scene.Camera)
		}
	})
	if err != nil {
		return err
	}
	return ferr
}

func (v *Viewer) applyCamera(c demo.Camera) {
	v.camera.Center = c.Center
	v.camera.Distance = c.Distance
	v.camera.RotationY = c.Yaw
	v.camera.RotationX = c.Pitch
	v.camera.MaxDistance = max(v.camera.MaxDistance, c.Distance*2)
	v.spin = c.Spin
}

// Run starts the main viewer loop.
func (v *Viewer) Run(ctx context.Context) error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting viewer loop")

	for v.running {
		if ctx.Err() != nil {
			break
		}

		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		// 1. Process input
		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		// 2. Update scene and publish the batch
		_, stats, err := v.pipeline.Frame(ctx, func(w *scene.World) { v.update(w, dt) })
		if err != nil {
			return fmt.Errorf("frame error: %w", err)
		}

		// 3. Render
		v.renderer.Begin()
		aspect := v.renderer.Aspect()
		v.renderer.DrawBatch(v.pipeline.RenderState().Load(), v.camera.Rotation(), v.camera.ViewProjection(aspect))
		v.renderer.End()
		if v.screenshot {
			v.screenshot = false
			v.takeScreenshot()
		}

		// 4. Present
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("records", stats.Records),
				zap.Int("retrying", stats.Retrying),
				zap.Duration("update", stats.Update),
				zap.Duration("extract", stats.Extract),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventResize:
			v.renderer.Resize(v.window.DrawableSize())
		case input.EventDrag:
			if event.Held {
				v.camera.HandleDrag(float32(event.DX), float32(event.DY))
			}
		case input.EventWheel:
			v.camera.HandleZoom(float32(event.DY))
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_SPACE:
				v.paused = !v.paused
			case sdl.SCANCODE_F12:
				v.screenshot = true
			}
		}
	}
}

func (v *Viewer) takeScreenshot() {
	path, err := v.renderer.Screenshot(v.cfg.Viewer.ScreenshotDir)
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

// update runs inside the pipeline's update phase.
func (v *Viewer) update(w *scene.World, dt float32) {
	if v.paused {
		return
	}
	v.camera.RotationY += v.spin * dt
	if v.scene != nil {
		v.scene.Animate(w, dt)
	}
	if v.stress != nil {
		v.stress.Recompute(w)
	}
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
