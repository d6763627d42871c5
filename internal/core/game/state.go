package game

import (
	"fmt"
	"time"
)

type Phase uint8

const (
	PhasePlaying Phase = iota
	PhaseCleared
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseCleared:
		return "cleared"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// State is monotonic: Remaining only decreases and Phase only moves from
// Playing to Cleared.
type State struct {
	Remaining int
	Total     int
	StartTime time.Time
	Phase     Phase
	// ClearElapsed is set once, at the clear transition.
	ClearElapsed time.Duration
}

func (s State) Cleared() bool { return s.Phase == PhaseCleared }
