package pipeline

// EventType discriminates run events.
type EventType int

const (
	// EventProgress carries a status change or a retry-wait label.
	EventProgress EventType = iota

	// EventReady carries the completed bundle; the run is finished.
	EventReady

	// EventFailed carries a short display cause; the run is finished.
	EventFailed
)

// Event is a single ordered update posted by the run's background worker.
// The consumer drains these on its own goroutine; the worker never touches
// render state directly.
type Event struct {
	Type   EventType
	Status RunStatus
	Label  string // user-facing progress text

	Bundle *Bundle // set for EventReady
	Cause  string  // short display cause, set for EventFailed
	Err    error   // full error for logging, set for EventFailed
}
