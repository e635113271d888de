package session

// State is the driver's position in the session lifecycle.
type State int

const (
	StateIdle State = iota
	StateCreating
	StateWaitingForPeer
	StateStreaming
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCreating:
		return "creating"
	case StateWaitingForPeer:
		return "waiting_for_peer"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
