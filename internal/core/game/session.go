package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/zeusync/orbitpick/internal/core/events/bus"
	"github.com/zeusync/orbitpick/internal/core/observability/log"
	"github.com/zeusync/orbitpick/internal/core/orbit"
	"github.com/zeusync/orbitpick/internal/core/physics"
)

// Pointer is a click position in normalized device coordinates.
type Pointer struct {
	X, Y float64
}

// Candidate is a live body offered to the intersector.
type Candidate struct {
	ID     orbit.BodyID
	Center physics.Vec3
	Radius float64
}

// Projector converts a pointer position into a pick ray using the current camera.
type Projector interface {
	Project(p Pointer) physics.Ray
}

// Intersector resolves a pick ray to at most one body: the nearest hit.
type Intersector interface {
	Intersect(ray physics.Ray, candidates []Candidate) (orbit.BodyID, bool)
}

// Presenter draws a frame. The core never calls it; frontends feed it frames.
type Presenter interface {
	Present(frame Frame) error
}

// Frame is the result of one tick.
type Frame struct {
	Elapsed    float64
	Placements []orbit.Placement
	Remaining  int
	Cleared    bool
}

type SessionConfig struct {
	Creation orbit.CreationConfig
	Seed     uint64
}

// Session is the top-level driver: one layout, one state machine, restartable.
// It is not safe for concurrent use; callers serialize Tick and Click.
type Session struct {
	cfg         SessionConfig
	clock       Clock
	projector   Projector
	intersector Intersector
	bus         bus.EventBus
	logger      log.Log

	seeds *rand.Rand
	round int

	layout  orbit.Layout
	sim     *orbit.Simulator
	machine *Machine

	// epoch is the scheduler time at which the current round started.
	epoch   float64
	elapsed float64
	last    []orbit.Placement
}

func NewSession(
	cfg SessionConfig,
	clock Clock,
	projector Projector,
	intersector Intersector,
	eventBus bus.EventBus,
	logger log.Log,
) (*Session, error) {
	if err := cfg.Creation.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if eventBus == nil {
		eventBus = bus.New()
	}
	return &Session{
		cfg:         cfg,
		clock:       clock,
		projector:   projector,
		intersector: intersector,
		bus:         eventBus,
		logger:      logger.With(log.String("component", "session")),
		seeds:       rand.New(rand.NewPCG(cfg.Seed, ^cfg.Seed)),
	}, nil
}

// Start creates the first layout from the configured seed.
func (s *Session) Start() {
	s.startRound(s.cfg.Seed)
}

// Reset discards the current round and starts over with a fresh layout.
func (s *Session) Reset() {
	s.startRound(s.seeds.Uint64())
}

func (s *Session) startRound(seed uint64) {
	s.round++
	s.layout = orbit.NewGenerator(s.cfg.Creation, seed).Generate()
	s.sim = orbit.NewSimulator(s.layout.Bodies)
	s.epoch = s.elapsed
	s.last = s.sim.Advance(0)

	s.logger.Info("Layout created",
		log.Int("round", s.round),
		log.Uint64("seed", seed),
		log.Int("bodies", len(s.layout.Bodies)),
		log.Int("targets", s.layout.Targets),
		log.Uint64("fingerprint", s.layout.Fingerprint()))

	now := s.clock.Now()
	if err := s.bus.PublishBatch(
		Reset{Layout: s.layout, Round: s.round, At: now},
		TargetsChanged{Remaining: s.layout.Targets, Total: s.layout.Targets, At: now},
	); err != nil {
		s.logger.Warn("Round start handler failed", log.Error(err))
	}

	s.machine = NewMachine(s.sim, s.clock, s.bus, s.logger)
}

func (s *Session) Started() bool { return s.machine != nil }

// Tick advances to scheduler time elapsed (seconds) and returns the positions
// of every live body. Orbits keep moving after the game is cleared.
func (s *Session) Tick(elapsed float64) Frame {
	s.elapsed = elapsed
	if !s.Started() {
		return Frame{Elapsed: elapsed}
	}

	s.last = s.sim.Advance(elapsed - s.epoch)
	st := s.machine.State()
	return Frame{
		Elapsed:    elapsed,
		Placements: s.last,
		Remaining:  st.Remaining,
		Cleared:    st.Cleared(),
	}
}

// Click resolves a pointer against the positions of the last tick and applies the pick.
func (s *Session) Click(p Pointer) PickResult {
	if !s.Started() {
		return PickResult{Outcome: OutcomeIgnored}
	}
	if s.machine.State().Cleared() {
		return s.machine.Pick(0, false)
	}

	ray := s.projector.Project(p)
	id, hit := s.intersector.Intersect(ray, s.candidates())
	result := s.machine.Pick(id, hit)

	s.logger.Debug("Pick",
		log.String("outcome", result.Outcome.String()),
		log.Uint32("body", uint32(result.ID)),
		log.Int("remaining", result.Remaining))
	if result.Outcome == OutcomeCleared {
		s.logger.Info("Game cleared",
			log.Int("round", s.round),
			log.String("seconds", FormatSeconds(result.Elapsed)))
	}
	return result
}

// PickID applies a pick resolved by the caller, for frontends that hit-test themselves.
func (s *Session) PickID(id orbit.BodyID, hit bool) PickResult {
	if !s.Started() {
		return PickResult{Outcome: OutcomeIgnored}
	}
	return s.machine.Pick(id, hit)
}

// candidates lists live bodies at their last ticked positions.
func (s *Session) candidates() []Candidate {
	out := make([]Candidate, 0, len(s.last))
	for _, pl := range s.last {
		b, ok := s.sim.Body(pl.ID)
		if !ok {
			continue
		}
		out = append(out, Candidate{ID: pl.ID, Center: pl.Position, Radius: b.Size})
	}
	return out
}

func (s *Session) Layout() orbit.Layout { return s.layout }

func (s *Session) Round() int { return s.round }

func (s *Session) State() State {
	if !s.Started() {
		return State{}
	}
	return s.machine.State()
}

// LiveBodies returns the bodies still in play.
func (s *Session) LiveBodies() []orbit.Body {
	if !s.Started() {
		return nil
	}
	return s.sim.Bodies()
}

func (s *Session) Bus() bus.EventBus { return s.bus }
