package extract

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-billboard/internal/engine/billboard"
	"github.com/Faultbox/midgard-billboard/internal/engine/orientation"
	"github.com/Faultbox/midgard-billboard/internal/engine/scene"
)

// RenderState holds the most recently published batch. Readers load it
// without locking; a new batch replaces it as a whole.
type RenderState struct {
	current atomic.Pointer[Batch]
}

// Load returns the current batch, or nil before the first publish.
func (s *RenderState) Load() *Batch {
	return s.current.Load()
}

func (s *RenderState) publish(b *Batch) {
	s.current.Store(b)
}

// Options configures a Stage.
type Options struct {
	// DistinctGroupIdentities gives every mesh group of a text entity its own
	// render identity. When false, groups of one entity share an identity and
	// the last group extracted is the one drawn.
	DistinctGroupIdentities bool
	// InitialCapacity sizes the first batch.
	InitialCapacity int
}

// Stage builds and publishes one batch per frame.
type Stage struct {
	state *RenderState
	opts  Options
	log   *zap.Logger

	mu          sync.Mutex
	frame       uint64
	previousLen int
}

// NewStage creates a stage publishing into state.
func NewStage(state *RenderState, log *zap.Logger, opts Options) *Stage {
	if log == nil {
		log = zap.NewNop()
	}
	return &Stage{state: state, opts: opts, log: log}
}

// Run extracts every visible billboard from w and publishes the batch. The
// world must not be mutated while Run executes; Run itself only reads it.
func (s *Stage) Run(w *scene.World) *Batch {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frame++
	b := newBatch(s.frame, max(s.previousLen, s.opts.InitialCapacity))

	w.Each(func(e scene.Entity, n *scene.Node) bool {
		if !n.ViewVisible() {
			return true
		}
		text := n.Text != nil && n.OwnsLayout
		if n.Textured == nil && !text {
			return true
		}

		depth := billboard.DepthOf(n.Depth)
		d := orientation.Solve(n.Global, n.Local, n.LockAxis, depth)

		if n.Textured != nil {
			b.put(Record{
				ID:          RenderID{Entity: e, Kind: KindTextured},
				Orientation: d,
				Mesh:        n.Textured.Mesh,
				Texture:     n.Textured.Texture,
				Depth:       depth,
				Mode:        d.Mode,
			})
		}

		if text {
			for i, g := range n.Cache.Groups {
				id := RenderID{Entity: e, Kind: KindText}
				if s.opts.DistinctGroupIdentities {
					id.Group = i
				}
				b.put(Record{
					ID:          id,
					Orientation: d,
					Mesh:        g.Mesh,
					Texture:     g.Texture,
					Depth:       depth,
					Mode:        d.Mode,
				})
			}
		}
		return true
	})

	s.previousLen = b.Len()
	s.state.publish(b)

	if s.frame == 1 || s.frame%600 == 0 {
		s.log.Debug("published render batch", zap.Uint64("frame", s.frame), zap.Int("records", b.Len()))
	}
	return b
}
