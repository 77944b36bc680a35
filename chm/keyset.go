package chm

import (
	"fmt"
	"iter"
	"reflect"
	"strings"
)

// KeySet is a live view of a Map's keys. It holds nothing but the map
// reference, so every change to the map is visible through the view and
// removals through the view change the map. Keys cannot be added through the
// view.
type KeySet[K comparable, V any] struct {
	m *Map[K, V]
}

func (ks *KeySet[K, V]) Len() int {
	return ks.m.Len()
}

func (ks *KeySet[K, V]) IsEmpty() bool {
	return ks.m.IsEmpty()
}

func (ks *KeySet[K, V]) Contains(key K) bool {
	return ks.m.ContainsKey(key)
}

// All iterates the keys with the map's weakly consistent semantics.
func (ks *KeySet[K, V]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range ks.m.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Slice returns the keys in iteration order.
func (ks *KeySet[K, V]) Slice() []K {
	return ks.AppendTo(make([]K, 0, ks.Len()))
}

// AppendTo appends the keys to dst and returns the extended slice.
func (ks *KeySet[K, V]) AppendTo(dst []K) []K {
	for k := range ks.All() {
		dst = append(dst, k)
	}
	return dst
}

// Remove deletes key from the underlying map.
func (ks *KeySet[K, V]) Remove(key K) bool {
	_, ok := ks.m.Remove(key)
	return ok
}

// RemoveAll removes every key contained in c and reports whether the map
// changed. It walks whichever side is smaller.
func (ks *KeySet[K, V]) RemoveAll(c Collection[K]) bool {
	modified := false
	if ks.Len() > c.Len() {
		for k := range c.All() {
			if ks.Remove(k) {
				modified = true
			}
		}
		return modified
	}

	for k := range ks.All() {
		if c.Contains(k) && ks.Remove(k) {
			modified = true
		}
	}
	return modified
}

// RetainAll removes every key not contained in c and reports whether the map
// changed.
func (ks *KeySet[K, V]) RetainAll(c Collection[K]) bool {
	modified := false
	for k := range ks.All() {
		if !c.Contains(k) && ks.Remove(k) {
			modified = true
		}
	}
	return modified
}

func (ks *KeySet[K, V]) Clear() {
	ks.m.Clear()
}

// Equal reports set equality: c has the same size and every element of c is
// a key of the map. A nil c, including a nil pointer held in the interface,
// is never equal.
func (ks *KeySet[K, V]) Equal(c Collection[K]) bool {
	if isNilPointer(c) {
		return false
	}
	if other, ok := c.(*KeySet[K, V]); ok && other.m == ks.m {
		return true
	}
	if c.Len() != ks.Len() {
		return false
	}
	for k := range c.All() {
		if !ks.Contains(k) {
			return false
		}
	}
	return true
}

// Hash returns an order-independent hash of the keys: the wrapping sum of
// each key's hash. Equal key sets hash equally within a process.
func (ks *KeySet[K, V]) Hash() uint64 {
	var h uint64
	for k := range ks.All() {
		h += hashOf(k)
	}
	return h
}

// String renders the keys as "[k1 k2 ...]" in iteration order.
func (ks *KeySet[K, V]) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	first := true
	for k := range ks.All() {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		fmt.Fprint(&sb, k)
	}
	sb.WriteByte(']')
	return sb.String()
}

func isNilPointer(c any) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
