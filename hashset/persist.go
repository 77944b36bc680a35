package hashset

import "github.com/tailored-agentic-units/chmset/chm"

// Snapshot returns the backing map's persisted form.
func (s *Set[T]) Snapshot() chm.Snapshot[T, bool] {
	return s.m.Snapshot()
}

// FromSnapshot restores the backing map and derives a fresh key view from it.
func FromSnapshot[T comparable](snap chm.Snapshot[T, bool], opts ...chm.Option) (*Set[T], error) {
	m, err := chm.FromSnapshot(snap, opts...)
	if err != nil {
		return nil, err
	}
	return wrap(m), nil
}

func (s *Set[T]) MarshalJSON() ([]byte, error) {
	return s.m.MarshalJSON()
}

// UnmarshalJSON decodes the backing map, then recomputes the key view.
// A zero Set is a valid target.
func (s *Set[T]) UnmarshalJSON(data []byte) error {
	m := new(chm.Map[T, bool])
	if err := m.UnmarshalJSON(data); err != nil {
		return err
	}
	s.m, s.keys = m, m.Keys()
	return nil
}

// MarshalBinary encodes the backing map as CBOR. encoding/gob uses it too.
func (s *Set[T]) MarshalBinary() ([]byte, error) {
	return s.m.MarshalBinary()
}

// UnmarshalBinary decodes the backing map, then recomputes the key view.
func (s *Set[T]) UnmarshalBinary(data []byte) error {
	m := new(chm.Map[T, bool])
	if err := m.UnmarshalBinary(data); err != nil {
		return err
	}
	s.m, s.keys = m, m.Keys()
	return nil
}
