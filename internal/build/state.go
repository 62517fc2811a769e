package build

// State is the phase of one run.
type State int

const (
	StateIdle State = iota
	StateDiscovering
	StateCompiling
	StateFinalizing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDiscovering:
		return "discovering"
	case StateCompiling:
		return "compiling"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	}
	return "unknown"
}
