package chm

import "github.com/tailored-agentic-units/chmset/observability"

// Map event types.
const (
	EventResize  observability.EventType = "chm.resize"
	EventClear   observability.EventType = "chm.clear"
	EventRestore observability.EventType = "chm.restore"
)

const eventSource = "chm.Map"
