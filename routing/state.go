package routing

// State is a phase of the routing state machine.
type State int

const (
	StateIdle State = iota
	StateStraightAttempt
	StateBendAttempt
	StateDetourAttempt
	StateResolved
)

// String returns the string representation of a State.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateStraightAttempt:
		return "StraightAttempt"
	case StateBendAttempt:
		return "BendAttempt"
	case StateDetourAttempt:
		return "DetourAttempt"
	case StateResolved:
		return "Resolved"
	default:
		return "Unknown"
	}
}

// Outcome is what running a state produced.
type Outcome int

const (
	// OutcomeRejected means every candidate was absent or blocked.
	OutcomeRejected Outcome = iota
	// OutcomeAccepted means a candidate validated against the obstacles.
	OutcomeAccepted
	// OutcomeTerminal means the state settled on a last-resort answer.
	OutcomeTerminal
)

// Next returns the state that follows s given the outcome of running it.
// Only a rejection advances to the next strategy; anything else resolves.
func Next(s State, outcome Outcome) State {
	if s == StateIdle {
		return StateStraightAttempt
	}
	if outcome != OutcomeRejected {
		return StateResolved
	}
	switch s {
	case StateStraightAttempt:
		return StateBendAttempt
	case StateBendAttempt:
		return StateDetourAttempt
	default:
		// DetourAttempt always produces a terminal answer; Resolved stays put.
		return StateResolved
	}
}
