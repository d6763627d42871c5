package game

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/orbitpick/internal/core/events/bus"
	"github.com/zeusync/orbitpick/internal/core/observability/log"
	"github.com/zeusync/orbitpick/internal/core/orbit"
	"github.com/zeusync/orbitpick/internal/core/physics"
)

// scriptedPicker resolves every pick to whatever the test set last.
type scriptedPicker struct {
	id         orbit.BodyID
	hit        bool
	pointers   []Pointer
	candidates []Candidate
}

func (p *scriptedPicker) Project(ptr Pointer) physics.Ray {
	p.pointers = append(p.pointers, ptr)
	return physics.NewRay(physics.V(ptr.X, ptr.Y, 10), physics.V(0, 0, -1))
}

func (p *scriptedPicker) Intersect(_ physics.Ray, candidates []Candidate) (orbit.BodyID, bool) {
	p.candidates = candidates
	return p.id, p.hit
}

func newSession(t *testing.T, seed uint64) (*Session, *scriptedPicker, *ManualClock, *recorder) {
	t.Helper()
	picker := &scriptedPicker{}
	clock := NewManualClock(t0)
	b := bus.New()
	rec := &recorder{}
	rec.attach(t, b)
	s, err := NewSession(SessionConfig{Creation: orbit.DefaultCreationConfig(), Seed: seed}, clock, picker, picker, b, log.NewNop())
	require.NoError(t, err)
	return s, picker, clock, rec
}

func targetIDs(s *Session) []orbit.BodyID {
	var ids []orbit.BodyID
	for _, b := range s.LiveBodies() {
		if b.IsTarget {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

func nonTargetID(s *Session) orbit.BodyID {
	for _, b := range s.LiveBodies() {
		if !b.IsTarget {
			return b.ID
		}
	}
	return 0
}

func TestSessionRejectsInvalidCreation(t *testing.T) {
	cfg := orbit.DefaultCreationConfig()
	cfg.Palette = nil
	_, err := NewSession(SessionConfig{Creation: cfg}, SystemClock{}, nil, nil, nil, log.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, orbit.ErrInvalidCreation)
}

func TestSessionBeforeStart(t *testing.T) {
	s, _, _, _ := newSession(t, 1)
	assert.False(t, s.Started())
	assert.Empty(t, s.Tick(1).Placements)
	assert.Equal(t, OutcomeIgnored, s.Click(Pointer{}).Outcome)
	assert.Equal(t, OutcomeIgnored, s.PickID(1, true).Outcome)
	assert.Nil(t, s.LiveBodies())
}

func TestSessionStartPublishesLayoutAndCount(t *testing.T) {
	s, _, _, rec := newSession(t, 11)
	s.Start()

	require.GreaterOrEqual(t, len(rec.events), 2)
	reset, ok := rec.events[0].(Reset)
	require.True(t, ok)
	assert.Equal(t, uint64(11), reset.Layout.Seed)
	assert.Equal(t, 1, reset.Round)

	count, ok := rec.events[1].(TargetsChanged)
	require.True(t, ok)
	assert.Equal(t, s.Layout().Targets, count.Remaining)
	assert.Equal(t, s.Layout().Targets, s.State().Remaining)
}

func TestSessionRoundStartSurvivesFailingHandler(t *testing.T) {
	s, _, _, rec := newSession(t, 11)
	_, err := s.Bus().Subscribe(EventReset, func(bus.Event) error { return errors.New("renderer gone") })
	require.NoError(t, err)

	s.Start()
	require.GreaterOrEqual(t, len(rec.events), 2)
	_, ok := rec.events[1].(TargetsChanged)
	assert.True(t, ok)
	assert.True(t, s.Started())
}

func TestSessionSeededLayoutIsReproducible(t *testing.T) {
	a, _, _, _ := newSession(t, 99)
	b, _, _, _ := newSession(t, 99)
	a.Start()
	b.Start()
	assert.Equal(t, a.Layout().Fingerprint(), b.Layout().Fingerprint())

	a.Reset()
	b.Reset()
	assert.Equal(t, a.Layout().Fingerprint(), b.Layout().Fingerprint())
}

func TestSessionTickMatchesOrbitPositions(t *testing.T) {
	s, _, _, _ := newSession(t, 5)
	s.Start()

	f1 := s.Tick(3.25)
	f2 := s.Tick(3.25)
	assert.Equal(t, f1.Placements, f2.Placements)
	require.Len(t, f1.Placements, len(s.Layout().Bodies))
	for i, b := range s.Layout().Bodies {
		assert.Equal(t, orbit.Position(b, 3.25), f1.Placements[i].Position)
	}
}

func TestSessionClickClearsGame(t *testing.T) {
	s, picker, clock, rec := newSession(t, 21)
	s.Start()
	targets := targetIDs(s)
	require.NotEmpty(t, targets)
	total := len(s.LiveBodies())

	s.Tick(0.5)

	picker.id, picker.hit = nonTargetID(s), true
	assert.Equal(t, OutcomeNonTarget, s.Click(Pointer{X: 0.1, Y: 0.2}).Outcome)
	assert.Equal(t, Pointer{X: 0.1, Y: 0.2}, picker.pointers[0])
	assert.Len(t, picker.candidates, total)

	picker.hit = false
	assert.Equal(t, OutcomeMiss, s.Click(Pointer{}).Outcome)

	for i, id := range targets {
		clock.Advance(time.Second)
		picker.id, picker.hit = id, true
		r := s.Click(Pointer{})
		if i == len(targets)-1 {
			assert.Equal(t, OutcomeCleared, r.Outcome)
		} else {
			assert.Equal(t, OutcomeRemoved, r.Outcome)
		}
		if r.Outcome == OutcomeRemoved {
			// removed bodies are not offered again, even before the next tick
			picker.hit = false
			s.Click(Pointer{})
			for _, c := range picker.candidates {
				assert.NotEqual(t, id, c.ID)
			}
		}
	}

	frame := s.Tick(1)
	assert.True(t, frame.Cleared)
	assert.Equal(t, 0, frame.Remaining)
	assert.Len(t, frame.Placements, total-len(targets))
	assert.Equal(t, time.Duration(len(targets))*time.Second, s.State().ClearElapsed)

	cleared, ok := rec.events[len(rec.events)-1].(Cleared)
	require.True(t, ok)
	assert.Equal(t, FormatSeconds(time.Duration(len(targets))*time.Second), cleared.Seconds)

	picker.id = nonTargetID(s)
	assert.Equal(t, OutcomeIgnored, s.Click(Pointer{}).Outcome)
}

func TestSessionResetStartsFreshRound(t *testing.T) {
	s, picker, clock, _ := newSession(t, 8)
	s.Start()
	first := s.Layout().Fingerprint()

	s.Tick(10)
	picker.id, picker.hit = targetIDs(s)[0], true
	s.Click(Pointer{})

	clock.Advance(5 * time.Second)
	s.Reset()
	assert.Equal(t, 2, s.Round())
	assert.NotEqual(t, first, s.Layout().Fingerprint())
	assert.Equal(t, s.Layout().Targets, s.State().Remaining)
	assert.Equal(t, clock.Now(), s.State().StartTime)
	assert.False(t, s.State().Cleared())

	// the new round starts from its initial angles
	frame := s.Tick(10)
	for i, b := range s.Layout().Bodies {
		assert.Equal(t, orbit.Position(b, 0), frame.Placements[i].Position)
	}
}

func TestHUDRoutesToSurfaces(t *testing.T) {
	counter := &fakeCounter{available: true}
	banner := &fakeBanner{available: true}
	alerts := &bytes.Buffer{}

	b := bus.New()
	hud := NewHUD(counter, banner, &WriterAlerter{W: alerts}, log.NewNop())
	subs, err := hud.Attach(b)
	require.NoError(t, err)
	assert.Len(t, subs, 3)

	require.NoError(t, b.Publish(TargetsChanged{Remaining: 4}))
	assert.Equal(t, 4, counter.count)

	require.NoError(t, b.Publish(Cleared{Seconds: "9.87"}))
	assert.Equal(t, "Clear! Time: 9.87 s", banner.message)
	assert.True(t, banner.shown)
	assert.Empty(t, alerts.String())

	require.NoError(t, b.Publish(Reset{}))
	assert.False(t, banner.shown)
}

func TestHUDFallsBackToAlert(t *testing.T) {
	alerts := &bytes.Buffer{}
	b := bus.New()
	hud := NewHUD(&fakeCounter{}, &fakeBanner{}, &WriterAlerter{W: alerts}, log.NewNop())
	_, err := hud.Attach(b)
	require.NoError(t, err)

	require.NoError(t, b.Publish(TargetsChanged{Remaining: 2}))
	require.NoError(t, b.Publish(Cleared{Seconds: "1.00"}))
	assert.Equal(t, "Clear! Time: 1.00 s\n", alerts.String())

	// no surfaces and no alerter at all still must not panic
	b2 := bus.New()
	_, err = NewHUD(nil, nil, nil, log.NewNop()).Attach(b2)
	require.NoError(t, err)
	assert.NoError(t, b2.Publish(TargetsChanged{Remaining: 1}))
	assert.NoError(t, b2.Publish(Cleared{Seconds: "1.00"}))
	assert.NoError(t, b2.Publish(Reset{}))
}

func TestHUDWithSession(t *testing.T) {
	counter := &fakeCounter{available: true}
	banner := &fakeBanner{available: true}
	picker := &scriptedPicker{}
	b := bus.New()
	_, err := NewHUD(counter, banner, nil, log.NewNop()).Attach(b)
	require.NoError(t, err)

	s, err := NewSession(SessionConfig{Creation: orbit.DefaultCreationConfig(), Seed: 3}, NewManualClock(t0), picker, picker, b, log.NewNop())
	require.NoError(t, err)
	s.Start()
	assert.Equal(t, s.Layout().Targets, counter.count)

	for _, id := range targetIDs(s) {
		picker.id, picker.hit = id, true
		s.Click(Pointer{})
	}
	assert.Equal(t, 0, counter.count)
	assert.Equal(t, "Clear! Time: 0.00 s", banner.message)
}

type fakeCounter struct {
	available bool
	count     int
}

func (c *fakeCounter) Available() bool { return c.available }
func (c *fakeCounter) SetCount(n int)  { c.count = n }

type fakeBanner struct {
	available bool
	shown     bool
	message   string
}

func (b *fakeBanner) Available() bool     { return b.available }
func (b *fakeBanner) Show(message string) { b.shown, b.message = true, message }
func (b *fakeBanner) Hide()               { b.shown = false }
