package observability

import "context"

// MultiObserver delivers each event to every member in order.
type MultiObserver struct {
	observers []Observer
}

// Combine returns an Observer feeding all of observers. Discarding members
// are dropped and nested MultiObservers flattened; one survivor is returned
// as is and none yields NoOpObserver.
func Combine(observers ...Observer) Observer {
	var flat []Observer
	for _, obs := range observers {
		if m, ok := obs.(*MultiObserver); ok {
			if m != nil {
				flat = append(flat, m.observers...)
			}
			continue
		}
		if !Discards(obs) {
			flat = append(flat, obs)
		}
	}

	switch len(flat) {
	case 0:
		return NoOpObserver{}
	case 1:
		return flat[0]
	}
	return &MultiObserver{observers: flat}
}

// Len returns the number of members.
func (m *MultiObserver) Len() int {
	return len(m.observers)
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}
