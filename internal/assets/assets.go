// Package assets provides handle-addressed, reference-counted asset storage.
//
// Handles are small comparable values; the store owns the data. A handle can
// be reserved before its asset exists so that consumers can hold on to it
// while a loader fills it in later.
package assets

import (
	"errors"
	"fmt"
	"sync"
)

// Store errors.
var (
	ErrInvalidHandle = errors.New("invalid asset handle")
	ErrNotLoaded     = errors.New("asset not loaded")
)

// LoadState describes the lifecycle of a handle's asset.
type LoadState int

const (
	StateUnknown LoadState = iota // Handle never issued or already collected
	StatePending                  // Reserved, waiting for a loader
	StateLoaded
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Handle identifies an asset of type T inside a Store[T]. The zero value is invalid.
type Handle[T any] struct {
	id uint64
}

// ID returns the numeric handle id.
func (h Handle[T]) ID() uint64 { return h.id }

// IsValid reports whether the handle was issued by a store.
func (h Handle[T]) IsValid() bool { return h.id != 0 }

func (h Handle[T]) String() string { return fmt.Sprintf("#%d", h.id) }

type entry[T any] struct {
	value T
	state LoadState
	refs  int
	err   error
}

// Store holds assets of one type. All methods are safe for concurrent use;
// mutations take the write lock for their whole duration.
type Store[T any] struct {
	mu      sync.RWMutex
	next    uint64
	entries map[uint64]*entry[T]
}

// NewStore creates an empty store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{entries: make(map[uint64]*entry[T])}
}

func (s *Store[T]) issue(e *entry[T]) Handle[T] {
	s.next++
	s.entries[s.next] = e
	return Handle[T]{id: s.next}
}

// Add stores a loaded asset and returns a handle holding one reference.
func (s *Store[T]) Add(value T) Handle[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issue(&entry[T]{value: value, state: StateLoaded, refs: 1})
}

// Reserve returns a handle whose asset will be provided later with Insert.
func (s *Store[T]) Reserve() Handle[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issue(&entry[T]{state: StatePending, refs: 1})
}

// Insert sets (or replaces) the asset behind h.
func (s *Store[T]) Insert(h Handle[T], value T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[h.id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidHandle, h)
	}
	e.value = value
	e.state = StateLoaded
	e.err = nil
	return nil
}

// Fail records that loading h failed. The handle stays pending for consumers.
func (s *Store[T]) Fail(h Handle[T], err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[h.id]; ok {
		e.state = StateFailed
		e.err = err
	}
}

// Get returns the asset behind h if it is loaded.
func (s *Store[T]) Get(h Handle[T]) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[h.id]
	if !ok || e.state != StateLoaded {
		var zero T
		return zero, false
	}
	return e.value, true
}

// State returns the load state of h and the load error, if any.
func (s *Store[T]) State(h Handle[T]) (LoadState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[h.id]
	if !ok {
		return StateUnknown, nil
	}
	return e.state, e.err
}

// Update runs fn with exclusive access to the asset behind h.
func (s *Store[T]) Update(h Handle[T], fn func(*T)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[h.id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidHandle, h)
	}
	if e.state != StateLoaded {
		return fmt.Errorf("%w: %s", ErrNotLoaded, h)
	}
	fn(&e.value)
	return nil
}

// Retain adds a reference to h and returns it for convenient chaining.
func (s *Store[T]) Retain(h Handle[T]) Handle[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[h.id]; ok {
		e.refs++
	}
	return h
}

// Release drops a reference. The asset is collected when the last one goes.
// It reports whether the asset was collected.
func (s *Store[T]) Release(h Handle[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[h.id]
	if !ok {
		return false
	}
	e.refs--
	if e.refs > 0 {
		return false
	}
	delete(s.entries, h.id)
	return true
}

// Refs returns the current reference count of h.
func (s *Store[T]) Refs(h Handle[T]) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[h.id]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of live assets, pending ones included.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
