package chm

import "iter"

// Collection is the read side of a set: what bulk operations and equality
// need from their argument. KeySet and hashset.Set both satisfy it.
type Collection[T any] interface {
	Len() int
	Contains(T) bool
	All() iter.Seq[T]
}

// Elements is a plain Collection of distinct values.
type Elements[T comparable] map[T]struct{}

// ElementsOf collects values into an Elements. Duplicates collapse.
func ElementsOf[T comparable](values ...T) Elements[T] {
	e := make(Elements[T], len(values))
	for _, v := range values {
		e[v] = struct{}{}
	}
	return e
}

func (e Elements[T]) Len() int {
	return len(e)
}

func (e Elements[T]) Contains(v T) bool {
	_, ok := e[v]
	return ok
}

func (e Elements[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range e {
			if !yield(v) {
				return
			}
		}
	}
}
