// Package chm implements a segmented concurrent hash map and its live key
// view.
//
// Keys are spread over a power-of-two number of segments, each a chained hash
// table behind its own RWMutex, so writers to different segments never
// contend. Reads take only the read lock of one segment and Len reads atomic
// per-segment counters. Iteration is weakly consistent: it reflects each
// segment as of the moment that segment was visited and never fails because
// of concurrent modification.
//
//	m := chm.New[string, int]()
//	m.Put("a", 1)
//	for k := range m.Keys().All() {
//	    fmt.Println(k)
//	}
package chm

import (
	"context"
	"hash/maphash"
	"iter"
	"math/bits"

	"github.com/tailored-agentic-units/chmset/observability"
)

var seed = maphash.MakeSeed()

func hashOf[K comparable](key K) uint64 {
	return maphash.Comparable(seed, key)
}

// Option configures a Map after config-driven initialization.
type Option func(*options)

type options struct {
	observer observability.Observer
}

// WithObserver overrides the observer named in Config.
func WithObserver(o observability.Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// Map is a concurrent hash map. All methods are safe for concurrent use.
// The zero Map is only valid as a decode target for UnmarshalJSON or
// UnmarshalBinary.
type Map[K comparable, V any] struct {
	segments     []*segment[K, V]
	segmentShift uint
	loadFactor   float32
	level        int
	observer     observability.Observer
}

// New creates a Map with DefaultConfig and no observer.
func New[K comparable, V any]() *Map[K, V] {
	cfg := DefaultConfig()
	return build[K, V](&cfg, observability.NoOpObserver{})
}

// NewWithCapacity creates a Map sized for initialCapacity entries with the
// default load factor and concurrency level.
func NewWithCapacity[K comparable, V any](initialCapacity int, opts ...Option) (*Map[K, V], error) {
	cfg := DefaultConfig()
	cfg.InitialCapacity = initialCapacity
	return NewFromConfig[K, V](cfg, opts...)
}

// NewFromConfig creates a Map from explicit sizing hints. The observer named
// by cfg.Observer is resolved from the observability registry unless an
// option supplies one.
func NewFromConfig[K comparable, V any](cfg Config, opts ...Option) (*Map[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.observer == nil {
		obs, err := observability.Resolve(cfg.Observer)
		if err != nil {
			return nil, err
		}
		o.observer = obs
	}

	return build[K, V](&cfg, o.observer), nil
}

func build[K comparable, V any](cfg *Config, observer observability.Observer) *Map[K, V] {
	n, perSegment := cfg.layout()

	m := &Map[K, V]{
		segments:     make([]*segment[K, V], n),
		segmentShift: uint(64 - bits.TrailingZeros(uint(n))),
		loadFactor:   cfg.LoadFactor,
		level:        cfg.ConcurrencyLevel,
		observer:     observer,
	}
	for i := range m.segments {
		m.segments[i] = newSegment[K, V](perSegment, cfg.LoadFactor)
	}
	return m
}

// segmentFor picks a segment from the high bits of the hash; the low bits
// index the segment's table.
func (m *Map[K, V]) segmentFor(hash uint64) (int, *segment[K, V]) {
	i := int(hash >> m.segmentShift)
	return i, m.segments[i]
}

func (m *Map[K, V]) emit(typ observability.EventType, data map[string]any) {
	if observability.Discards(m.observer) {
		return
	}
	m.observer.OnEvent(context.Background(), observability.NewEvent(typ, observability.LevelVerbose, eventSource, data))
}

// Len returns the number of mappings. Under concurrent writes the result is
// a moment-in-time estimate.
func (m *Map[K, V]) Len() int {
	var n int64
	for _, s := range m.segments {
		n += s.count.Load()
	}
	return int(n)
}

func (m *Map[K, V]) IsEmpty() bool {
	for _, s := range m.segments {
		if s.count.Load() != 0 {
			return false
		}
	}
	return true
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	h := hashOf(key)
	_, s := m.segmentFor(h)
	return s.get(key, h)
}

func (m *Map[K, V]) ContainsKey(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Put maps key to value and returns the previous value, if any.
func (m *Map[K, V]) Put(key K, value V) (prev V, loaded bool) {
	return m.put(key, value, false)
}

// PutIfAbsent maps key to value only when key is unmapped. It returns the
// existing value and true when the key was already present.
func (m *Map[K, V]) PutIfAbsent(key K, value V) (existing V, loaded bool) {
	return m.put(key, value, true)
}

func (m *Map[K, V]) put(key K, value V, onlyIfAbsent bool) (V, bool) {
	h := hashOf(key)
	i, s := m.segmentFor(h)

	prev, loaded, grewTo := s.put(key, h, value, onlyIfAbsent)
	if grewTo > 0 {
		m.emit(EventResize, map[string]any{"segment": i, "capacity": grewTo})
	}
	return prev, loaded
}

// Remove deletes the mapping for key and returns the removed value.
func (m *Map[K, V]) Remove(key K) (V, bool) {
	h := hashOf(key)
	_, s := m.segmentFor(h)
	return s.remove(key, h)
}

// Clear removes every mapping, one segment at a time. Table capacity is kept.
func (m *Map[K, V]) Clear() {
	removed := 0
	for _, s := range m.segments {
		removed += s.clear()
	}
	m.emit(EventClear, map[string]any{"removed": removed})
}

// All iterates over the mappings. Each segment is copied under its read lock
// and yielded with no lock held, so the loop body may modify the map.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		var buf []Entry[K, V]
		for _, s := range m.segments {
			buf = s.appendEntries(buf[:0])
			for _, e := range buf {
				if !yield(e.Key, e.Value) {
					return
				}
			}
		}
	}
}

// Range calls f for each mapping until f returns false.
func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	for k, v := range m.All() {
		if !f(k, v) {
			return
		}
	}
}

// Keys returns a live view of the map's keys.
func (m *Map[K, V]) Keys() *KeySet[K, V] {
	return &KeySet[K, V]{m: m}
}

// Capacity returns the summed table length of all segments.
func (m *Map[K, V]) Capacity() int {
	n := 0
	for _, s := range m.segments {
		n += s.capacity()
	}
	return n
}

// Segments returns the number of lock stripes.
func (m *Map[K, V]) Segments() int {
	return len(m.segments)
}
