package window

// EventKind identifies a window lifecycle change
type EventKind int

const (
	EventOpened EventKind = iota
	EventClosed
	EventContentChanged
	EventReused
)

func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventClosed:
		return "closed"
	case EventContentChanged:
		return "content_changed"
	case EventReused:
		return "reused"
	default:
		return "unknown"
	}
}

// Event describes one change. OldPage and NewPage are set for
// EventContentChanged only.
type Event struct {
	Kind    EventKind
	Window  *Window
	OldPage Page
	NewPage Page
}

// Listener receives window events. It is called without the registry lock
// held and may call back into the registry.
type Listener func(Event)
