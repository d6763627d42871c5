package game

import (
	"fmt"
	"time"

	"github.com/zeusync/orbitpick/internal/core/events/bus"
	"github.com/zeusync/orbitpick/internal/core/observability/log"
	"github.com/zeusync/orbitpick/internal/core/orbit"
)

// Outcome classifies a pick. None of them are errors.
type Outcome uint8

const (
	// OutcomeIgnored: the game was already cleared.
	OutcomeIgnored Outcome = iota
	OutcomeMiss
	OutcomeNonTarget
	OutcomeRemoved
	// OutcomeCleared: the pick removed the last target.
	OutcomeCleared
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeMiss:
		return "miss"
	case OutcomeNonTarget:
		return "non_target"
	case OutcomeRemoved:
		return "removed"
	case OutcomeCleared:
		return "cleared"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

type PickResult struct {
	Outcome   Outcome
	ID        orbit.BodyID
	Remaining int
	// Elapsed is only set for OutcomeCleared.
	Elapsed time.Duration
}

// Machine is the Playing -> Cleared state machine over one simulator.
type Machine struct {
	sim    *orbit.Simulator
	clock  Clock
	bus    bus.EventBus
	logger log.Log
	state  State
}

// NewMachine counts the live targets and captures the start time. A layout
// without targets is cleared immediately.
func NewMachine(sim *orbit.Simulator, clock Clock, eventBus bus.EventBus, logger log.Log) *Machine {
	targets := sim.Targets()
	m := &Machine{
		sim:    sim,
		clock:  clock,
		bus:    eventBus,
		logger: logger,
		state: State{
			Remaining: targets,
			Total:     targets,
			StartTime: clock.Now(),
			Phase:     PhasePlaying,
		},
	}
	if targets == 0 {
		m.clear(m.state.StartTime)
	}
	return m
}

func (m *Machine) State() State { return m.state }

// Pick applies one resolved pick. hit is false when the pointer missed every
// live body; id is ignored then.
func (m *Machine) Pick(id orbit.BodyID, hit bool) PickResult {
	if m.state.Cleared() {
		return PickResult{Outcome: OutcomeIgnored, ID: id, Remaining: m.state.Remaining}
	}
	if !hit {
		return PickResult{Outcome: OutcomeMiss, Remaining: m.state.Remaining}
	}

	body, ok := m.sim.Body(id)
	if !ok {
		return PickResult{Outcome: OutcomeMiss, ID: id, Remaining: m.state.Remaining}
	}
	if !body.IsTarget {
		return PickResult{Outcome: OutcomeNonTarget, ID: id, Remaining: m.state.Remaining}
	}

	m.sim.Remove(id)
	m.state.Remaining--
	now := m.clock.Now()

	m.publish(BodyRemoved{ID: id, At: now})
	m.publish(TargetsChanged{Remaining: m.state.Remaining, Total: m.state.Total, At: now})

	if m.state.Remaining > 0 {
		return PickResult{Outcome: OutcomeRemoved, ID: id, Remaining: m.state.Remaining}
	}

	m.clear(now)
	return PickResult{
		Outcome:   OutcomeCleared,
		ID:        id,
		Remaining: 0,
		Elapsed:   m.state.ClearElapsed,
	}
}

func (m *Machine) clear(now time.Time) {
	m.state.Phase = PhaseCleared
	m.state.ClearElapsed = now.Sub(m.state.StartTime)
	m.publish(Cleared{
		Elapsed: m.state.ClearElapsed,
		Seconds: FormatSeconds(m.state.ClearElapsed),
		At:      now,
	})
}

// publish never fails the pick; subscriber errors are only logged.
func (m *Machine) publish(e bus.Event) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(e); err != nil {
		m.logger.Warn("Event handler failed",
			log.String("event", e.Type()),
			log.Error(err))
	}
}
