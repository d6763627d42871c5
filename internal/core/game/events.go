package game

import (
	"time"

	"github.com/zeusync/orbitpick/internal/core/events/bus"
	"github.com/zeusync/orbitpick/internal/core/orbit"
)

const (
	EventTargetsChanged = "game.targets_changed"
	EventBodyRemoved    = "game.body_removed"
	EventCleared        = "game.cleared"
	EventReset          = "game.reset"

	eventSource = "game"
)

var (
	_ bus.Event = TargetsChanged{}
	_ bus.Event = BodyRemoved{}
	_ bus.Event = Cleared{}
	_ bus.Event = Reset{}
)

// TargetsChanged carries the new remaining-target count.
type TargetsChanged struct {
	Remaining int
	Total     int
	At        time.Time
}

func (e TargetsChanged) Type() string         { return EventTargetsChanged }
func (e TargetsChanged) Source() string       { return eventSource }
func (e TargetsChanged) Timestamp() time.Time { return e.At }
func (e TargetsChanged) Data() any            { return e.Remaining }

type BodyRemoved struct {
	ID orbit.BodyID
	At time.Time
}

func (e BodyRemoved) Type() string         { return EventBodyRemoved }
func (e BodyRemoved) Source() string       { return eventSource }
func (e BodyRemoved) Timestamp() time.Time { return e.At }
func (e BodyRemoved) Data() any            { return e.ID }

// Cleared is published once, when the last target is removed.
type Cleared struct {
	Elapsed time.Duration
	// Seconds is Elapsed formatted with two decimals, e.g. "12.34".
	Seconds string
	At      time.Time
}

func (e Cleared) Type() string         { return EventCleared }
func (e Cleared) Source() string       { return eventSource }
func (e Cleared) Timestamp() time.Time { return e.At }
func (e Cleared) Data() any            { return e.Seconds }

// Reset announces a fresh layout.
type Reset struct {
	Layout orbit.Layout
	Round  int
	At     time.Time
}

func (e Reset) Type() string         { return EventReset }
func (e Reset) Source() string       { return eventSource }
func (e Reset) Timestamp() time.Time { return e.At }
func (e Reset) Data() any            { return e.Layout }
