package workflow

// Phase is a state of the sync state machine. Phases run strictly
// sequentially; PhaseAborted is terminal and reachable from every
// non-Done phase.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePulling
	PhaseConflictResolution
	PhaseStaging
	PhaseMessageGeneration
	PhaseAwaitingConfirmation
	PhaseCommitting
	PhasePushing
	PhaseDone
	PhaseAborted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePulling:
		return "pulling"
	case PhaseConflictResolution:
		return "conflict-resolution"
	case PhaseStaging:
		return "staging"
	case PhaseMessageGeneration:
		return "message-generation"
	case PhaseAwaitingConfirmation:
		return "awaiting-confirmation"
	case PhaseCommitting:
		return "committing"
	case PhasePushing:
		return "pushing"
	case PhaseDone:
		return "done"
	case PhaseAborted:
		return "aborted"
	}
	return "unknown"
}

// Terminal reports whether no further transitions occur from p.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseAborted
}
