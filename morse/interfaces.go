package morse

// ToneDriver is an on/off tone actuator. Both calls are expected to return
// promptly; device latency is the driver's concern.
type ToneDriver interface {
	// Engage turns the tone on.
	Engage() error

	// Disengage turns the tone off.
	Disengage() error
}

// Event is a scheduler lifecycle notification.
type Event int

const (
	// EventStarted fires after the tone driver was engaged.
	EventStarted Event = iota
	// EventStopped fires after the tone driver was disengaged.
	EventStopped
)

// String returns the string representation of the event.
func (e Event) String() string {
	switch e {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Listener receives scheduler events. It runs on the playback goroutine and
// must not block.
type Listener func(Event)

// Subscription identifies a registered Listener.
type Subscription uint64
