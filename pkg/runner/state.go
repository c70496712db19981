package runner

import "fmt"

// State はオーケストレーターの実行状態です。
type State int

const (
	StateIdle State = iota
	StateGeneratingNarrative
	StateAssigningArtworks
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateGeneratingNarrative:
		return "GeneratingNarrative"
	case StateAssigningArtworks:
		return "AssigningArtworks"
	case StateComplete:
		return "Complete"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// IsRunning は実行中の状態かどうかを返します。実行中は新しい実行を受け付けないのだ。
func (s State) IsRunning() bool {
	return s == StateGeneratingNarrative || s == StateAssigningArtworks
}

// IsTerminal は終端状態かどうかを返します。
func (s State) IsTerminal() bool {
	return s == StateComplete || s == StateFailed
}

func isAllowedTransition(from, to State) bool {
	if from == StateIdle || from.IsTerminal() {
		return to == StateGeneratingNarrative
	}
	switch from {
	case StateGeneratingNarrative:
		return to == StateAssigningArtworks || to == StateFailed
	case StateAssigningArtworks:
		return to == StateComplete || to == StateFailed
	default:
		return false
	}
}
