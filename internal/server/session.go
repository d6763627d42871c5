package server

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/zeusync/orbitpick/internal/core/events/bus"
	"github.com/zeusync/orbitpick/internal/core/game"
	"github.com/zeusync/orbitpick/internal/core/observability/log"
	"github.com/zeusync/orbitpick/internal/core/physics"
	"github.com/zeusync/orbitpick/internal/scene"
)

// surfaces reports the page's HUD elements to the game HUD. Until the page
// says otherwise both elements are assumed present.
type surfaces struct {
	c       *client
	counter atomic.Bool
	banner  atomic.Bool
	// seconds is the formatted time of the last clear.
	seconds atomic.Value
	logger  log.Log
}

func newSurfaces(c *client, logger log.Log) *surfaces {
	s := &surfaces{c: c, logger: logger}
	s.counter.Store(true)
	s.banner.Store(true)
	return s
}

func (s *surfaces) send(msg any) {
	if err := s.c.send(msg); err != nil {
		s.logger.Debug("HUD update not delivered", log.Error(err))
	}
}

type counterSurface struct{ *surfaces }

func (s counterSurface) Available() bool { return s.counter.Load() }

func (s counterSurface) SetCount(remaining int) {
	s.send(CountMessage{Type: TypeCount, Remaining: remaining})
}

type bannerSurface struct{ *surfaces }

func (s bannerSurface) Available() bool { return s.banner.Load() }

func (s bannerSurface) Show(message string) {
	seconds, _ := s.seconds.Load().(string)
	s.send(ClearedMessage{Type: TypeCleared, Seconds: seconds, Message: message})
}

// Hide is implicit: the page hides its banner when a new layout arrives.
func (s bannerSurface) Hide() {}

type alertSurface struct{ *surfaces }

func (s alertSurface) Alert(message string) {
	s.send(AlertMessage{Type: TypeAlert, Message: message})
}

// runSession drives one game on a single goroutine: frame ticks and client
// input are serialized by the select loop.
func (s *Server) runSession(ctx context.Context, c *client, inputs <-chan ClientMessage, logger log.Log) error {
	eventBus := bus.New()
	projector := scene.NewCameraProjector(s.config.Camera)

	session, err := game.NewSession(
		game.SessionConfig{Creation: s.config.Creation, Seed: s.nextSeed()},
		s.clock,
		projector,
		scene.NearestIntersector{},
		eventBus,
		logger,
	)
	if err != nil {
		return errors.Wrap(err, "create session")
	}

	if _, err := eventBus.Subscribe(game.EventReset, func(e bus.Event) error {
		ev, ok := e.(game.Reset)
		if !ok {
			return nil
		}
		return c.send(newLayoutMessage(ev, projector.Camera()))
	}); err != nil {
		return err
	}

	hudSurfaces := newSurfaces(c, logger)
	if _, err := eventBus.Subscribe(game.EventCleared, func(e bus.Event) error {
		if ev, ok := e.(game.Cleared); ok {
			hudSurfaces.seconds.Store(ev.Seconds)
		}
		return nil
	}); err != nil {
		return err
	}
	hud := game.NewHUD(counterSurface{hudSurfaces}, bannerSurface{hudSurfaces}, alertSurface{hudSurfaces}, logger)
	if _, err := hud.Attach(eventBus); err != nil {
		return err
	}
	statsSub, err := s.metrics.Attach(eventBus)
	if err != nil {
		return err
	}
	defer s.metrics.Detach(eventBus, statsSub)

	interval := time.Second / 30
	if s.config.TickRate > 0 {
		interval = time.Second / time.Duration(s.config.TickRate)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	clock := s.newFrameClock()
	if !s.awaitHello(ctx, session, projector, hudSurfaces, inputs, logger) {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-inputs:
			if !ok {
				return nil
			}
			s.handleInput(session, projector, hudSurfaces, msg, logger)

		case <-ticker.C:
			frame := session.Tick(clock.Elapsed())
			s.metrics.RecordFrame()
			if err := c.send(newFrameMessage(frame)); err != nil {
				if atomic.LoadInt32(&c.closed) == 1 {
					return nil
				}
				return err
			}
		}
	}
}

// awaitHello starts the round once the page has reported its HUD elements, so
// a round that clears at once already knows whether a banner exists. Clients
// that never say hello get their round after HelloTimeout. It reports false
// when the connection ended first.
func (s *Server) awaitHello(
	ctx context.Context,
	session *game.Session,
	projector *scene.CameraProjector,
	hud *surfaces,
	inputs <-chan ClientMessage,
	logger log.Log,
) bool {
	wait := s.config.HelloTimeout
	if wait <= 0 {
		wait = defaultHelloTimeout
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case msg, ok := <-inputs:
		if !ok {
			return false
		}
		if msg.Type == TypeHello {
			s.handleInput(session, projector, hud, msg, logger)
			session.Start()
			return true
		}
		session.Start()
		s.handleInput(session, projector, hud, msg, logger)
	case <-timer.C:
		logger.Debug("No hello from client, starting round")
		session.Start()
	}
	return true
}

func (s *Server) handleInput(session *game.Session, projector *scene.CameraProjector, hud *surfaces, msg ClientMessage, logger log.Log) {
	switch msg.Type {
	case TypeClick:
		result := session.Click(game.Pointer{X: msg.X, Y: msg.Y})
		s.metrics.RecordPick(result.Outcome)

	case TypeReset:
		session.Reset()

	case TypeHello:
		if msg.Counter != nil {
			hud.counter.Store(*msg.Counter)
		}
		if msg.Banner != nil {
			hud.banner.Store(*msg.Banner)
		}
		applyView(projector, msg)

	case TypeView:
		applyView(projector, msg)

	default:
		logger.Debug("Unknown message type", log.String("type", msg.Type), log.Error(ErrInvalidMessage))
	}
}

func applyView(projector *scene.CameraProjector, msg ClientMessage) {
	projector.SetAspect(msg.Aspect)
	if msg.Position != nil && msg.Target != nil {
		p, t := *msg.Position, *msg.Target
		projector.SetView(physics.V(p[0], p[1], p[2]), physics.V(t[0], t[1], t[2]))
	}
}
