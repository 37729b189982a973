package daemon

// State represents the lifecycle state of the daemon.
type State int

const (
	// StateIdle is the state before Run: no backend, no hotkeys.
	StateIdle State = iota

	// StateRunning means hotkeys are registered and events are dispatched.
	StateRunning

	// StateStopping means shutdown is in progress.
	StateStopping

	// StateTerminated is final.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// CanTransitionTo returns true if transitioning to the target state is valid.
func (s State) CanTransitionTo(target State) bool {
	switch s {
	case StateIdle:
		// startup failure goes straight to terminated
		return target == StateRunning || target == StateTerminated
	case StateRunning:
		return target == StateStopping
	case StateStopping:
		return target == StateTerminated
	default:
		return false
	}
}
