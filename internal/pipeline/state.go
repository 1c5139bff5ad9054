package pipeline

// State is a step of the run state machine.
type State string

const (
	StateStart      State = "start"
	StateProbed     State = "probed"
	StateNormalized State = "normalized"
	StateMerged     State = "merged"
	StateCleaned    State = "cleaned"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Stage names used in logs, errors and history.
const (
	StageProbe     = "probe"
	StageNormalize = "normalize"
	StageMerge     = "merge"
	StageCleanup   = "cleanup"
	StageVerify    = "verify"
	StageLock      = "lock"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
