package connection

// State is the lifecycle state of a connection
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// FrameType tells text frames from binary frames
type FrameType int

const (
	FrameText FrameType = iota
	FrameBinary
)

func (t FrameType) String() string {
	if t == FrameBinary {
		return "binary"
	}
	return "text"
}

// Frame is one inbound websocket message
type Frame struct {
	Type FrameType
	Data []byte
}

// EventKind distinguishes inbound frames from state changes
type EventKind int

const (
	EventFrame EventKind = iota
	EventState
)

// Event is delivered on the connection's event channel in arrival order
type Event struct {
	Kind  EventKind
	Frame Frame // set for EventFrame
	State State // set for EventState
	Err   error // cause of a transition to StateClosed, if any
}

// FrameEvent builds a frame event
func FrameEvent(t FrameType, data []byte) Event {
	return Event{Kind: EventFrame, Frame: Frame{Type: t, Data: data}}
}

// StateEvent builds a state change event
func StateEvent(s State, err error) Event {
	return Event{Kind: EventState, State: s, Err: err}
}
