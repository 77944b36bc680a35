package loops

import "github.com/tailored-agentic-units/chmset/observability"

// Loop event types.
const (
	EventRunStart      observability.EventType = "loops.run.start"
	EventTrialStart    observability.EventType = "loops.trial.start"
	EventTrialComplete observability.EventType = "loops.trial.complete"
	EventRunComplete   observability.EventType = "loops.run.complete"
)
