// Package persist saves and loads sets through a codec and a store. Only the
// backing map's snapshot is written; loading rebuilds the map and derives a
// new key view from it.
package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/chmset/chm"
	"github.com/tailored-agentic-units/chmset/codec"
	"github.com/tailored-agentic-units/chmset/hashset"
	"github.com/tailored-agentic-units/chmset/observability"
	"github.com/tailored-agentic-units/chmset/store"
)

// Persistence event types.
const (
	EventSave observability.EventType = "persist.save"
	EventLoad observability.EventType = "persist.load"
)

// ErrNoStore is returned when persistence is requested without a store.
var ErrNoStore = errors.New("no store configured")

// Option configures a Save or Load call.
type Option func(*options)

type options struct {
	observer observability.Observer
	mapOpts  []chm.Option
}

// WithObserver receives persist.save and persist.load events.
func WithObserver(o observability.Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// WithMapOptions is applied to the backing map of a loaded set.
func WithMapOptions(mapOpts ...chm.Option) Option {
	return func(opts *options) { opts.mapOpts = append(opts.mapOpts, mapOpts...) }
}

func collect(opts []Option) options {
	o := options{observer: observability.NoOpObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Save encodes the set's snapshot with c and writes it under key.
func Save[T comparable](ctx context.Context, st store.Store, c codec.Codec, key string, s *hashset.Set[T], opts ...Option) error {
	if st == nil {
		return ErrNoStore
	}
	o := collect(opts)

	data, err := c.Marshal(s.Snapshot())
	if err != nil {
		return fmt.Errorf("encode %s as %s: %w", key, c.Name(), err)
	}
	if err := st.Save(ctx, store.Record{Key: key, Value: data}); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	o.observer.OnEvent(ctx, observability.NewEvent(EventSave, observability.LevelInfo, "persist.Save", map[string]any{
		"key":   key,
		"codec": c.Name(),
		"bytes": len(data),
	}))
	return nil
}

// Load reads the record under key, decodes it with c, and restores a set.
func Load[T comparable](ctx context.Context, st store.Store, c codec.Codec, key string, opts ...Option) (*hashset.Set[T], error) {
	if st == nil {
		return nil, ErrNoStore
	}
	o := collect(opts)

	records, err := st.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	var snap chm.Snapshot[T, bool]
	if err := c.Unmarshal(records[0].Value, &snap); err != nil {
		return nil, fmt.Errorf("decode %s as %s: %w", key, c.Name(), err)
	}

	s, err := hashset.FromSnapshot(snap, o.mapOpts...)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", key, err)
	}

	o.observer.OnEvent(ctx, observability.NewEvent(EventLoad, observability.LevelInfo, "persist.Load", map[string]any{
		"key":      key,
		"codec":    c.Name(),
		"elements": s.Len(),
	}))
	return s, nil
}
