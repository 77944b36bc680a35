// Package hashset presents a chm.Map as a set. Every method is a direct
// delegation to the backing map or to its key view; the set adds no locking,
// ordering, or error handling of its own, so the map's concurrency
// guarantees pass through unchanged.
package hashset

import (
	"iter"

	"github.com/tailored-agentic-units/chmset/chm"
)

// Set is a concurrent set backed by a chm.Map whose values are a fixed
// sentinel. The key view is derived from the map and is never persisted.
type Set[T comparable] struct {
	m    *chm.Map[T, bool]
	keys *chm.KeySet[T, bool]
}

func wrap[T comparable](m *chm.Map[T, bool]) *Set[T] {
	return &Set[T]{m: m, keys: m.Keys()}
}

// New creates an empty Set with the map's default sizing.
func New[T comparable]() *Set[T] {
	return wrap(chm.New[T, bool]())
}

// NewWithCapacity creates an empty Set sized for initialCapacity elements.
func NewWithCapacity[T comparable](initialCapacity int, opts ...chm.Option) (*Set[T], error) {
	m, err := chm.NewWithCapacity[T, bool](initialCapacity, opts...)
	if err != nil {
		return nil, err
	}
	return wrap(m), nil
}

// NewWithConfig creates an empty Set, passing capacity, load factor and
// concurrency level straight to the backing map.
func NewWithConfig[T comparable](cfg chm.Config, opts ...chm.Option) (*Set[T], error) {
	m, err := chm.NewFromConfig[T, bool](cfg, opts...)
	if err != nil {
		return nil, err
	}
	return wrap(m), nil
}

func (s *Set[T]) Len() int                           { return s.m.Len() }
func (s *Set[T]) IsEmpty() bool                      { return s.m.IsEmpty() }
func (s *Set[T]) Contains(e T) bool                  { return s.m.ContainsKey(e) }
func (s *Set[T]) All() iter.Seq[T]                   { return s.keys.All() }
func (s *Set[T]) Slice() []T                         { return s.keys.Slice() }
func (s *Set[T]) AppendTo(dst []T) []T               { return s.keys.AppendTo(dst) }
func (s *Set[T]) RemoveAll(c chm.Collection[T]) bool { return s.keys.RemoveAll(c) }
func (s *Set[T]) RetainAll(c chm.Collection[T]) bool { return s.keys.RetainAll(c) }
func (s *Set[T]) Clear()                             { s.m.Clear() }
func (s *Set[T]) Equal(c chm.Collection[T]) bool     { return s.keys.Equal(c) }
func (s *Set[T]) Hash() uint64                       { return s.keys.Hash() }
func (s *Set[T]) String() string                     { return s.keys.String() }

// Add inserts e and reports whether it was absent.
func (s *Set[T]) Add(e T) bool {
	_, loaded := s.m.Put(e, true)
	return !loaded
}

// Remove deletes e and reports whether it was present.
func (s *Set[T]) Remove(e T) bool {
	_, ok := s.m.Remove(e)
	return ok
}
