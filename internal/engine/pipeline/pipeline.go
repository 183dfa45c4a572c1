// Package pipeline drives the billboard frame: an update phase that applies
// scene edits and rebuilds text geometry, then an extraction phase that
// publishes the frame's render batch.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-billboard/internal/assets"
	"github.com/Faultbox/midgard-billboard/internal/config"
	"github.com/Faultbox/midgard-billboard/internal/engine/extract"
	"github.com/Faultbox/midgard-billboard/internal/engine/mesh"
	"github.com/Faultbox/midgard-billboard/internal/engine/scene"
	"github.com/Faultbox/midgard-billboard/internal/engine/text"
	"github.com/Faultbox/midgard-billboard/internal/engine/textmesh"
	"github.com/Faultbox/midgard-billboard/internal/engine/texture"
)

// FrameStats reports what one frame did.
type FrameStats struct {
	Frame    uint64
	Marked   int // Text roots newly flagged dirty
	Rebuilt  int
	Retrying int
	Records  int
	Update   time.Duration
	Extract  time.Duration
}

// Pipeline owns the scene, the asset stores and the per-frame stages.
type Pipeline struct {
	Fonts  *assets.Store[*text.Font]
	Images *assets.Store[image.Image]
	Meshes *assets.Store[*mesh.Mesh]
	Files  *assets.Cache

	world   *scene.World
	text    *text.Pipeline
	tracker *textmesh.Tracker
	builder *textmesh.Builder
	stage   *extract.Stage
	state   *extract.RenderState
	log     *zap.Logger

	// mu separates the update phase (write) from extraction (read).
	mu    sync.RWMutex
	frame uint64
}

// New creates a pipeline from configuration.
func New(cfg *config.Config, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}

	p := &Pipeline{
		Fonts:   assets.NewStore[*text.Font](),
		Images:  assets.NewStore[image.Image](),
		Meshes:  assets.NewStore[*mesh.Mesh](),
		Files:   assets.NewCache(),
		world:   scene.NewWorld(),
		tracker: textmesh.NewTracker(),
		state:   &extract.RenderState{},
		log:     log,
	}

	p.text = text.NewPipeline(p.Fonts, p.Images, text.Options{
		PageSize: cfg.Text.AtlasSize,
		Padding:  cfg.Text.GlyphPadding,
	})
	p.builder = textmesh.NewBuilder(p.text, p.Meshes, log.Named("textmesh"), textmesh.Options{
		Workers: cfg.Pipeline.Workers,
	})
	p.stage = extract.NewStage(p.state, log.Named("extract"), extract.Options{
		DistinctGroupIdentities: cfg.Pipeline.DistinctGroupIdentities,
		InitialCapacity:         cfg.Pipeline.BatchCapacity,
	})
	return p
}

// LoadFont starts loading a font file in the background. The handle can be
// used immediately; text using it is retried until the font arrives. An empty
// path yields the embedded default font.
func (p *Pipeline) LoadFont(path string) (text.FontHandle, <-chan struct{}) {
	if path == "" {
		done := make(chan struct{})
		close(done)
		return p.Fonts.Add(text.DefaultFont()), done
	}
	return assets.LoadAsync(p.Fonts, p.Files, path, text.FontDecoder(path))
}

// LoadImage starts decoding an image file in the background for use as a
// billboard texture. Until it arrives the renderer draws a placeholder.
func (p *Pipeline) LoadImage(path string) (assets.ImageHandle, <-chan struct{}) {
	return assets.LoadAsync(p.Images, p.Files, path, texture.Decoder(path))
}

// RenderState returns the render-side state batches are published to.
func (p *Pipeline) RenderState() *extract.RenderState {
	return p.state
}

// PendingText returns how many text roots wait for a font.
func (p *Pipeline) PendingText() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.builder.Pending()
}

// Update applies edit to the scene, then propagates transforms and
// visibility and rebuilds stale text. A *textmesh.FatalError means the
// pipeline cannot continue.
func (p *Pipeline) Update(ctx context.Context, edit func(w *scene.World)) (FrameStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	p.frame++
	stats := FrameStats{Frame: p.frame}

	if edit != nil {
		edit(p.world)
	}
	p.world.PropagateTransforms()
	p.world.PropagateVisibility()

	stats.Marked = p.tracker.Run(p.world)
	built, err := p.builder.Run(ctx, p.world)
	if err != nil {
		return stats, fmt.Errorf("frame %d: %w", p.frame, err)
	}
	stats.Rebuilt = built.Rebuilt
	stats.Retrying = built.Retrying
	stats.Update = time.Since(start)
	return stats, nil
}

// Extract publishes the current scene as a render batch. It holds the scene
// read-only, so it cannot overlap an Update.
func (p *Pipeline) Extract() *extract.Batch {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stage.Run(p.world)
}

// Frame runs Update followed by Extract.
func (p *Pipeline) Frame(ctx context.Context, edit func(w *scene.World)) (*extract.Batch, FrameStats, error) {
	stats, err := p.Update(ctx, edit)
	if err != nil {
		return nil, stats, err
	}

	start := time.Now()
	batch := p.Extract()
	stats.Extract = time.Since(start)
	stats.Records = batch.Len()
	return batch, stats, nil
}

// View runs fn with read access to the scene between frames.
func (p *Pipeline) View(fn func(w *scene.World)) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	fn(p.world)
}
