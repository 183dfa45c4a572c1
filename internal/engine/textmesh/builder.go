package textmesh

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/midgard-billboard/internal/assets"
	"github.com/Faultbox/midgard-billboard/internal/engine/billboard"
	"github.com/Faultbox/midgard-billboard/internal/engine/mesh"
	"github.com/Faultbox/midgard-billboard/internal/engine/scene"
	"github.com/Faultbox/midgard-billboard/internal/engine/text"
	"github.com/Faultbox/midgard-billboard/internal/logger"
)

// FatalError reports a layout failure that cannot resolve itself, such as a
// glyph that does not fit the atlas. The frame loop must stop.
type FatalError struct {
	Entity scene.Entity
	Err    error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal error processing text of entity %s: %v", e.Entity, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// Options configures a Builder.
type Options struct {
	// Workers bounds concurrent geometry synthesis; zero uses GOMAXPROCS.
	// Shaping itself is serialized by the text pipeline.
	Workers int
}

// Stats summarizes one Builder run.
type Stats struct {
	Rebuilt  int // Roots whose mesh groups were replaced
	Retrying int // Roots waiting for a font
}

// Builder regenerates mesh groups for dirty text roots.
type Builder struct {
	pipeline *text.Pipeline
	meshes   *assets.Store[*mesh.Mesh]
	log      *zap.Logger
	workers  int

	retry   map[scene.Entity]struct{}
	missing logger.Once
	// issued holds the mesh references taken for each root's current groups.
	issued  map[scene.Entity][]assets.MeshHandle
}

// NewBuilder creates a builder laying text out with p and storing meshes in meshes.
func NewBuilder(p *text.Pipeline, meshes *assets.Store[*mesh.Mesh], log *zap.Logger, opts Options) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Builder{
		pipeline: p,
		meshes:   meshes,
		log:      log,
		workers:  workers,
		retry:    make(map[scene.Entity]struct{}),
		issued:   make(map[scene.Entity][]assets.MeshHandle),
	}
}

// Pending returns how many roots are queued waiting for a font.
func (b *Builder) Pending() int {
	return len(b.retry)
}

type job struct {
	entity scene.Entity
	node   *scene.Node
	spans  []billboard.TextSpan

	groups  []group
	missing error
}

// Run lays out every dirty or queued text root and replaces its mesh groups.
// Roots whose font is not loaded stay queued and are retried on every run.
// Any other layout error aborts the run with a *FatalError before any root is
// modified.
func (b *Builder) Run(ctx context.Context, w *scene.World) (Stats, error) {
	for e := range b.retry {
		if !w.Alive(e) {
			delete(b.retry, e)
			b.missing.Forget(e)
		}
	}
	b.releaseDespawned(w)

	var jobs []*job
	w.Each(func(e scene.Entity, n *scene.Node) bool {
		if n.Text == nil || !n.OwnsLayout {
			return true
		}
		if _, queued := b.retry[e]; n.Dirty || queued {
			jobs = append(jobs, &job{entity: e, node: n, spans: w.Spans(e)})
		}
		return true
	})
	if len(jobs) == 0 {
		return Stats{}, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for _, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return b.layout(j)
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, j := range jobs {
		if j.missing != nil {
			b.retry[j.entity] = struct{}{}
			b.missing.Do(j.entity, func() {
				b.log.Error("missing font, could still be loading",
					zap.Stringer("entity", j.entity), zap.Error(j.missing))
			})
			stats.Retrying++
			continue
		}

		b.replace(j)
		delete(b.retry, j.entity)
		b.missing.Forget(j.entity)
		stats.Rebuilt++
	}

	if stats.Rebuilt > 0 || stats.Retrying > 0 {
		b.log.Debug("rebuilt text meshes", zap.Int("rebuilt", stats.Rebuilt), zap.Int("retrying", stats.Retrying))
	}
	return stats, nil
}

// layout runs shaping and geometry for one root. It only writes to j.
func (b *Builder) layout(j *job) error {
	n := j.node

	bounds := n.Bounds.Bounds()
	if n.Layout.LineBreak == text.LineBreakNoWrap {
		bounds = text.Unbounded
	}

	sections := make([]text.Section, len(j.spans))
	for i, s := range j.spans {
		sections[i] = text.Section{Text: s.Value, Font: s.Font.Font, Size: s.Font.PixelSize()}
	}

	info, err := b.pipeline.Queue(sections, n.Layout, bounds)
	switch {
	case errors.Is(err, text.ErrNoSuchFont):
		j.missing = err
		return nil
	case err != nil:
		return &FatalError{Entity: j.entity, Err: err}
	}

	j.groups = buildGroups(info, j.spans, n.Anchor)
	return nil
}

// releaseDespawned drops the mesh references of roots that no longer exist.
func (b *Builder) releaseDespawned(w *scene.World) {
	for e, handles := range b.issued {
		if w.Alive(e) {
			continue
		}
		for _, h := range handles {
			b.meshes.Release(h)
		}
		delete(b.issued, e)
	}
}

// replace swaps the root's cached groups for freshly built ones.
func (b *Builder) replace(j *job) {
	n := j.node
	for _, old := range b.issued[j.entity] {
		b.meshes.Release(old)
	}

	groups := make([]billboard.MeshGroup, 0, len(j.groups))
	handles := make([]assets.MeshHandle, 0, len(j.groups))
	for _, g := range j.groups {
		h := b.meshes.Add(g.mesh)
		handles = append(handles, h)
		groups = append(groups, billboard.MeshGroup{Mesh: h, Texture: g.texture})
	}
	b.issued[j.entity] = handles

	n.Cache.Groups = groups
	n.Dirty = false
	n.NeedsRerender = false
}
