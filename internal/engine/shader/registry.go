package shader

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownShader is returned for handles the registry did not issue.
var ErrUnknownShader = errors.New("unknown shader")

// Handle identifies a registered shader. The zero value is invalid.
type Handle struct {
	id   uint32
	name string
}

// Name returns the registered name.
func (h Handle) Name() string { return h.name }

// IsValid reports whether h was issued by a registry.
func (h Handle) IsValid() bool { return h.id != 0 }

// Source is a vertex/fragment pair.
type Source struct {
	Name     string
	Vertex   string
	Fragment string
}

// CompileFunc builds a GPU program from sources.
type CompileFunc func(vertex, fragment string) (uint32, error)

// Registry maps shader handles to sources and lazily compiled programs.
type Registry struct {
	compile CompileFunc

	mu       sync.Mutex
	next     uint32
	byName   map[string]Handle
	sources  map[uint32]Source
	programs map[uint32]uint32
}

// NewRegistry creates a registry compiling with compile.
func NewRegistry(compile CompileFunc) *Registry {
	return &Registry{
		compile:  compile,
		byName:   make(map[string]Handle),
		sources:  make(map[uint32]Source),
		programs: make(map[uint32]uint32),
	}
}

// Register adds src and returns its handle. Registering a name again
// returns the existing handle and keeps the first source.
func (r *Registry) Register(src Source) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.byName[src.Name]; ok {
		return h
	}
	r.next++
	h := Handle{id: r.next, name: src.Name}
	r.byName[src.Name] = h
	r.sources[h.id] = src
	return h
}

// Lookup returns the handle registered under name.
func (r *Registry) Lookup(name string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.byName[name]
	return h, ok
}

// Source returns the sources behind h.
func (r *Registry) Source(h Handle) (Source, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.sources[h.id]
	return src, ok
}

// Program returns the compiled program for h, compiling it on first use.
// It must be called on the thread owning the GL context.
func (r *Registry) Program(h Handle) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.programs[h.id]; ok {
		return p, nil
	}
	src, ok := r.sources[h.id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownShader, h.name)
	}
	p, err := r.compile(src.Vertex, src.Fragment)
	if err != nil {
		return 0, fmt.Errorf("compile %s: %w", src.Name, err)
	}
	r.programs[h.id] = p
	return p, nil
}

// Forget drops compiled programs, for example after the GL context is lost.
// It returns the dropped program ids so the caller can delete them.
func (r *Registry) Forget() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]uint32, 0, len(r.programs))
	for _, p := range r.programs {
		ids = append(ids, p)
	}
	clear(r.programs)
	return ids
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	billboard       Handle
)

func initDefault() {
	defaultRegistry = NewRegistry(CompileProgram)
	billboard = defaultRegistry.Register(Source{
		Name:     "billboard",
		Vertex:   BillboardVertexShader,
		Fragment: BillboardFragmentShader,
	})
}

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	defaultOnce.Do(initDefault)
	return defaultRegistry
}

// Billboard returns the handle of the billboard shader in the default registry.
func Billboard() Handle {
	defaultOnce.Do(initDefault)
	return billboard
}
