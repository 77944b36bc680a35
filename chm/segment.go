package chm

import (
	"math"
	"sync"
	"sync/atomic"
)

type entry[K comparable, V any] struct {
	key   K
	hash  uint64
	value V
	next  *entry[K, V]
}

// segment is one lock stripe: a chained hash table guarded by its own
// RWMutex. count is atomic so Len never takes a lock.
type segment[K comparable, V any] struct {
	mu         sync.RWMutex
	table      []*entry[K, V]
	threshold  int
	loadFactor float32
	count      atomic.Int64
}

func newSegment[K comparable, V any](capacity int, loadFactor float32) *segment[K, V] {
	s := &segment[K, V]{loadFactor: loadFactor}
	s.setTable(make([]*entry[K, V], capacity))
	return s
}

func (s *segment[K, V]) setTable(table []*entry[K, V]) {
	s.table = table
	s.threshold = threshold(len(table), s.loadFactor)
}

// threshold is the entry count a table of length n may hold before it
// doubles. It saturates at math.MaxInt, so a huge load factor disables
// growth instead of overflowing.
func threshold(n int, loadFactor float32) int {
	t := float64(n) * float64(loadFactor)
	if t >= math.MaxInt {
		return math.MaxInt
	}
	return int(t)
}

func (s *segment[K, V]) index(hash uint64) int {
	return int(hash & uint64(len(s.table)-1))
}

func (s *segment[K, V]) get(key K, hash uint64) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for e := s.table[s.index(hash)]; e != nil; e = e.next {
		if e.hash == hash && e.key == key {
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

// put stores value under key. When onlyIfAbsent is set an existing mapping is
// left untouched. grewTo is the new table length if the insert triggered a
// rehash, zero otherwise.
func (s *segment[K, V]) put(key K, hash uint64, value V, onlyIfAbsent bool) (prev V, loaded bool, grewTo int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for e := s.table[s.index(hash)]; e != nil; e = e.next {
		if e.hash == hash && e.key == key {
			prev = e.value
			if !onlyIfAbsent {
				e.value = value
			}
			return prev, true, 0
		}
	}

	if int(s.count.Load())+1 > s.threshold && len(s.table) < maxCapacity {
		s.rehash()
		grewTo = len(s.table)
	}

	i := s.index(hash)
	s.table[i] = &entry[K, V]{key: key, hash: hash, value: value, next: s.table[i]}
	s.count.Add(1)
	return prev, false, grewTo
}

func (s *segment[K, V]) remove(key K, hash uint64) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(hash)
	var prev *entry[K, V]
	for e := s.table[i]; e != nil; prev, e = e, e.next {
		if e.hash != hash || e.key != key {
			continue
		}
		if prev == nil {
			s.table[i] = e.next
		} else {
			prev.next = e.next
		}
		s.count.Add(-1)
		return e.value, true
	}
	var zero V
	return zero, false
}

// rehash doubles the table. Caller holds the write lock.
func (s *segment[K, V]) rehash() {
	old := s.table
	s.setTable(make([]*entry[K, V], len(old)*2))

	for _, head := range old {
		for e := head; e != nil; {
			next := e.next
			i := s.index(e.hash)
			e.next = s.table[i]
			s.table[i] = e
			e = next
		}
	}
}

func (s *segment[K, V]) clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int(s.count.Load())
	if n == 0 {
		return 0
	}
	clear(s.table)
	s.count.Store(0)
	return n
}

func (s *segment[K, V]) appendEntries(dst []Entry[K, V]) []Entry[K, V] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, head := range s.table {
		for e := head; e != nil; e = e.next {
			dst = append(dst, Entry[K, V]{Key: e.key, Value: e.value})
		}
	}
	return dst
}

func (s *segment[K, V]) capacity() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.table)
}
