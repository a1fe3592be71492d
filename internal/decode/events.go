package decode

// Event is one labeled line of the decode trace.
type Event struct {
	Depth  int     `json:"depth"`
	Label  string  `json:"label"`
	Value  *string `json:"value,omitempty"`
	Offset int     `json:"offset"`
}

// HasValue reports whether the event carries a value.
func (e Event) HasValue() bool { return e.Value != nil }

// Sink receives events in stream order. Ownership of each event passes to
// the sink; the decoder keeps nothing.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Recorder is a Sink that keeps every event.
type Recorder struct {
	events []Event
}

func (r *Recorder) Emit(e Event) { r.events = append(r.events, e) }

// Events returns the recorded events.
func (r *Recorder) Events() []Event { return r.events }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})
