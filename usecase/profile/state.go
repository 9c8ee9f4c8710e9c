package profile

// State is the provisioner's position in the profile lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StateCreating  State = "creating"
	StateReady     State = "ready"
	StateFailed    State = "failed"
)

// transitions lists every allowed move. A new session may interrupt any
// in-flight step, so Resolving is reachable from every non-idle state.
var transitions = map[State][]State{
	StateIdle:      {StateResolving},
	StateResolving: {StateResolving, StateCreating, StateReady, StateFailed, StateIdle},
	StateCreating:  {StateResolving, StateReady, StateFailed, StateIdle},
	StateReady:     {StateResolving, StateIdle},
	StateFailed:    {StateResolving, StateIdle},
}

// CanTransition reports whether the machine may move from one state to another.
func CanTransition(from, to State) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsSettled reports whether no directory call is in flight for the state.
func IsSettled(s State) bool {
	switch s {
	case StateIdle, StateReady, StateFailed:
		return true
	default:
		return false
	}
}
