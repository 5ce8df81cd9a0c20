package roster

// Phase is the manager's coarse lifecycle state. It is owned by the
// coordinator and the manager facade; worker processes never touch it.
type Phase int

const (
	// PhaseDown is the initial state before the coordinator has started.
	PhaseDown Phase = iota
	// PhaseStarting is set while the initial flock is being replayed.
	PhaseStarting
	// PhaseUp is set once the initial flock has been applied.
	PhaseUp
	// PhaseUnknown may be forced by the embedding application.
	PhaseUnknown
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseDown:
		return "down"
	case PhaseStarting:
		return "starting"
	case PhaseUp:
		return "up"
	case PhaseUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}
