package observability

import "context"

// NoOpObserver discards every event.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(context.Context, Event) {}

// Discards reports whether events sent to o are dropped unseen, so emitters
// can skip building them.
func Discards(o Observer) bool {
	switch o.(type) {
	case nil, NoOpObserver, *NoOpObserver:
		return true
	}
	return false
}
