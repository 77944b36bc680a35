// Package settest is a reusable contract suite for set implementations.
// A package under test supplies a constructor and a handful of distinct
// sample elements; Run exercises the set contract against them.
//
//	settest.Run(t, settest.Fixture[int]{
//	    New:     func(t testing.TB) settest.Set[int] { return hashset.New[int]() },
//	    Samples: []int{1, 2, 3, 4},
//	})
package settest

import (
	"fmt"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MinSamples is the fewest distinct samples a Fixture must provide.
const MinSamples = 3

// Set is the contract under test.
type Set[T any] interface {
	Len() int
	Contains(T) bool
	Add(T) bool
	Remove(T) bool
	Clear()
	All() iter.Seq[T]
}

// Fixture describes the implementation under test.
type Fixture[T comparable] struct {
	// New returns an empty set.
	New func(t testing.TB) Set[T]
	// Samples are distinct elements; at least MinSamples.
	Samples []T
}

func (f Fixture[T]) filled(t testing.TB, samples []T) Set[T] {
	s := f.New(t)
	for _, e := range samples {
		require.True(t, s.Add(e), "Add(%v) on a fresh element", e)
	}
	return s
}

// Run executes every contract check as a subtest of t.
func Run[T comparable](t *testing.T, f Fixture[T]) {
	t.Helper()
	require.NotNil(t, f.New, "Fixture.New")
	require.GreaterOrEqual(t, len(f.Samples), MinSamples, "Fixture.Samples")

	seen := make(map[T]bool, len(f.Samples))
	for _, e := range f.Samples {
		require.False(t, seen[e], "Fixture.Samples has duplicate %v", e)
		seen[e] = true
	}

	t.Run("CountAccurately", func(t *testing.T) {
		s := f.filled(t, f.Samples)
		assert.Equal(t, len(f.Samples), s.Len())
	})

	t.Run("ContainsFalseOnEmpty", func(t *testing.T) {
		s := f.New(t)
		assert.Zero(t, s.Len())
		for _, e := range f.Samples {
			assert.False(t, s.Contains(e), "Contains(%v) on empty set", e)
		}
	})

	t.Run("ContainsAfterAdd", func(t *testing.T) {
		s := f.New(t)
		for _, e := range f.Samples {
			assert.True(t, s.Add(e), "Add(%v)", e)
			assert.True(t, s.Contains(e), "Contains(%v) after Add", e)
		}
	})

	t.Run("ContainsUntilRemoved", func(t *testing.T) {
		s := f.filled(t, f.Samples)
		for i, e := range f.Samples {
			assert.True(t, s.Remove(e), "Remove(%v)", e)
			assert.False(t, s.Contains(e), "Contains(%v) after Remove", e)
			for _, rest := range f.Samples[i+1:] {
				assert.True(t, s.Contains(rest), "Contains(%v) while not yet removed", rest)
			}
		}
	})

	t.Run("ClearEmpties", func(t *testing.T) {
		s := f.filled(t, f.Samples)
		s.Clear()
		assert.Zero(t, s.Len())
		for _, e := range f.Samples {
			assert.False(t, s.Contains(e), "Contains(%v) after Clear", e)
		}
		assert.True(t, s.Add(f.Samples[0]), "Add after Clear")
	})

	t.Run("AddDuplicateRejected", func(t *testing.T) {
		s := f.filled(t, f.Samples)
		for _, e := range f.Samples {
			assert.False(t, s.Add(e), "Add(%v) of present element", e)
		}
		assert.Equal(t, len(f.Samples), s.Len())
	})

	t.Run("RemoveAllSamples", func(t *testing.T) {
		s := f.filled(t, f.Samples)
		for _, e := range f.Samples {
			assert.True(t, s.Remove(e), "Remove(%v)", e)
		}
		assert.Zero(t, s.Len())
	})

	t.Run("RemoveAbsent", func(t *testing.T) {
		s := f.filled(t, f.Samples[1:])
		assert.False(t, s.Remove(f.Samples[0]), "Remove of absent element")
		assert.Equal(t, len(f.Samples)-1, s.Len())
	})

	t.Run("EnumerateAllElements", func(t *testing.T) {
		s := f.filled(t, f.Samples)
		var got []T
		for e := range s.All() {
			got = append(got, e)
		}
		assert.ElementsMatch(t, f.Samples, got)
	})

	t.Run("EnumerateStopsEarly", func(t *testing.T) {
		s := f.filled(t, f.Samples)
		n := 0
		for range s.All() {
			n++
			if n == 2 {
				break
			}
		}
		assert.Equal(t, 2, n)
	})

	t.Run("EnumerateToleratesModification", func(t *testing.T) {
		initial := f.Samples[:len(f.Samples)-1]
		extra := f.Samples[len(f.Samples)-1]
		s := f.filled(t, initial)

		counts := make(map[T]int)
		assert.NotPanics(t, func() {
			for e := range s.All() {
				counts[e]++
				s.Add(extra)
			}
		})

		for _, e := range initial {
			assert.Equal(t, 1, counts[e], "element %v visited", e)
		}
		assert.LessOrEqual(t, counts[extra], 1, "element added mid-iteration visited")
		assert.True(t, s.Contains(extra))
	})

	t.Run("StringContainsElements", func(t *testing.T) {
		s := f.filled(t, f.Samples)
		str, ok := s.(fmt.Stringer)
		if !ok {
			t.Skip("set does not implement fmt.Stringer")
		}
		out := str.String()
		for _, e := range f.Samples {
			assert.Contains(t, out, fmt.Sprint(e))
		}
	})
}
