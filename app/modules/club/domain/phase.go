package clubdomain

// Phase identifies where a club sits in its lifecycle. Phases only ever move
// forward; no operation may return a club to an earlier phase.
type Phase string

const (
	PhaseOpen       Phase = "open"
	PhaseClosed     Phase = "closed"
	PhaseInProgress Phase = "in_progress"
	PhasePending    Phase = "pending"
	PhaseCompleted  Phase = "completed"
)

// phaseRank orders phases along the lifecycle. Closed sits between Open and
// InProgress: a club that never fills closes out of Open and stays there.
var phaseRank = map[Phase]int{
	PhaseOpen:       0,
	PhaseClosed:     1,
	PhaseInProgress: 2,
	PhasePending:    3,
	PhaseCompleted:  4,
}

// phaseTransitions enumerates the legal edges. Closed and Completed are
// terminal.
var phaseTransitions = map[Phase][]Phase{
	PhaseOpen:       {PhaseClosed, PhaseInProgress},
	PhaseInProgress: {PhasePending},
	PhasePending:    {PhaseCompleted},
}

// Valid reports whether p is one of the five known phases.
func (p Phase) Valid() bool {
	_, ok := phaseRank[p]
	return ok
}

// Terminal reports whether no further transition leaves p.
func (p Phase) Terminal() bool {
	return len(phaseTransitions[p]) == 0 && p.Valid()
}

// CanTransition reports whether the edge from one phase to the next is legal.
func CanTransition(from, to Phase) bool {
	for _, next := range phaseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transition moves the club to the target phase, refusing illegal edges.
func (c *Club) transition(to Phase) error {
	if !CanTransition(c.Phase, to) {
		return ErrWrongPhase
	}
	c.Phase = to
	return nil
}
