package carousel

// State is the lifecycle of one slide's media element.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Playing
	Broken
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	case Broken:
		return "broken"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Event drives slide transitions. EventPlay and EventPlayFailed are the two
// outcomes of an awaited play request.
type Event int

const (
	EventLoad Event = iota
	EventCanPlay
	EventError
	EventPlay
	EventPlayFailed
	EventPause
	EventIndexChanged
)

type slideState struct {
	state State
	// wantPlay records a successful play that resolved before the element
	// reported it could play.
	wantPlay bool
}

// apply returns the state after e. Broken absorbs every event.
func (s slideState) apply(e Event) slideState {
	if s.state == Broken {
		return s
	}

	switch e {
	case EventError:
		return slideState{state: Broken}
	case EventLoad:
		if s.state == Idle {
			s.state = Loading
		}
	case EventCanPlay:
		if s.state == Idle || s.state == Loading {
			s.state = Ready
			if s.wantPlay {
				s.state = Playing
				s.wantPlay = false
			}
		}
	case EventPlay:
		switch s.state {
		case Ready:
			s.state = Playing
		case Idle, Loading:
			s.wantPlay = true
		}
	case EventPlayFailed:
		s.wantPlay = false
		if s.state == Playing {
			s.state = Ready
		}
	case EventPause, EventIndexChanged:
		s.wantPlay = false
		if s.state == Playing {
			s.state = Ready
		}
	}
	return s
}
