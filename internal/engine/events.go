package engine

// Outbound signals the core emits after state changes. Presentation
// collaborators (widget timelines, list views) subscribe instead of watching
// a global broadcast; the core never renders anything itself.

// EventKind discriminates outbound signals.
type EventKind string

const (
	// EventRefreshNeeded fires after any successful state mutation.
	EventRefreshNeeded EventKind = "refresh-needed"
	// EventStageChanged fires when the pet evolved or regressed.
	EventStageChanged EventKind = "stage-changed"
	// EventStateReset fires when corrupt state was replaced with defaults.
	EventStateReset EventKind = "state-reset"
)

// Event is one typed outbound signal.
type Event struct {
	Kind      EventKind
	DayKey    string
	StageFrom int
	StageTo   int
}

// Sink receives outbound signals. Emit must not block; it is called
// synchronously after a successful save.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// NopSink discards every event.
var NopSink = SinkFunc(func(Event) {})
