package chm

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/tailored-agentic-units/chmset/observability"
)

// Entry is one key/value pair of a Snapshot.
type Entry[K comparable, V any] struct {
	Key   K `json:"key" cbor:"key"`
	Value V `json:"value" cbor:"value"`
}

// Snapshot is the persisted form of a Map: its sizing parameters and its
// entries. The table layout is not persisted; it is rebuilt on restore.
type Snapshot[K comparable, V any] struct {
	LoadFactor       float32       `json:"load_factor" cbor:"load_factor"`
	ConcurrencyLevel int           `json:"concurrency_level" cbor:"concurrency_level"`
	Entries          []Entry[K, V] `json:"entries" cbor:"entries"`
}

// Snapshot copies the current entries with the map's weakly consistent
// iteration.
func (m *Map[K, V]) Snapshot() Snapshot[K, V] {
	snap := Snapshot[K, V]{
		LoadFactor:       m.loadFactor,
		ConcurrencyLevel: m.level,
		Entries:          make([]Entry[K, V], 0, m.Len()),
	}
	for _, s := range m.segments {
		snap.Entries = s.appendEntries(snap.Entries)
	}
	return snap
}

// FromSnapshot builds a new Map holding the snapshot's entries, sized for
// the entry count.
func FromSnapshot[K comparable, V any](snap Snapshot[K, V], opts ...Option) (*Map[K, V], error) {
	cfg := Config{
		LoadFactor:       snap.LoadFactor,
		ConcurrencyLevel: snap.ConcurrencyLevel,
	}
	if cfg.LoadFactor > 0 {
		want := min(float64(len(snap.Entries))/float64(cfg.LoadFactor)+1, maxCapacity)
		cfg.InitialCapacity = max(int(want), DefaultInitialCapacity)
	}

	m, err := NewFromConfig[K, V](cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}

	for _, e := range snap.Entries {
		m.Put(e.Key, e.Value)
	}
	m.emit(EventRestore, map[string]any{"entries": len(snap.Entries)})
	return m, nil
}

// restore replaces the receiver with a map built from snap. The receiver's
// observer, if any, carries over. Not safe for concurrent use with other
// methods; it exists for decoding into a fresh value.
func (m *Map[K, V]) restore(snap Snapshot[K, V]) error {
	observer := m.observer
	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	restored, err := FromSnapshot(snap, WithObserver(observer))
	if err != nil {
		return err
	}
	*m = *restored
	return nil
}

func (m *Map[K, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Snapshot())
}

func (m *Map[K, V]) UnmarshalJSON(data []byte) error {
	var snap Snapshot[K, V]
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	return m.restore(snap)
}

// MarshalBinary encodes the snapshot as CBOR.
func (m *Map[K, V]) MarshalBinary() ([]byte, error) {
	return cbor.Marshal(m.Snapshot())
}

func (m *Map[K, V]) UnmarshalBinary(data []byte) error {
	var snap Snapshot[K, V]
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return err
	}
	return m.restore(snap)
}
