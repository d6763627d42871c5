// Package audio plays short cues for removals and clears.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/zeusync/orbitpick/internal/core/events/bus"
	"github.com/zeusync/orbitpick/internal/core/game"
	"github.com/zeusync/orbitpick/internal/core/observability/log"
)

const sampleRate = beep.SampleRate(44100)

// Cues plays through the shared speaker. Until Init succeeds every cue is a no-op,
// so the game runs unchanged on machines without an audio device.
type Cues struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	logger      log.Log
}

func NewCues(logger log.Log) *Cues {
	return &Cues{
		mixer:  &beep.Mixer{},
		logger: logger.With(log.String("component", "audio")),
	}
}

func (c *Cues) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	speaker.Play(c.mixer)
	c.initialized = true
	c.logger.Info("Audio initialized", log.Int("sample_rate", int(sampleRate)))
	return nil
}

func (c *Cues) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	c.initialized = false
}

func (c *Cues) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// Attach plays a blip on every removal and a chord on clear.
func (c *Cues) Attach(eventBus bus.EventBus) ([]bus.Subscription, error) {
	removed, err := eventBus.Subscribe(game.EventBodyRemoved, func(bus.Event) error {
		c.play(RemovalCue())
		return nil
	})
	if err != nil {
		return nil, err
	}
	cleared, err := eventBus.Subscribe(game.EventCleared, func(bus.Event) error {
		c.play(ClearCue())
		return nil
	})
	if err != nil {
		_ = removed.Cancel()
		return nil, err
	}
	return []bus.Subscription{removed, cleared}, nil
}

func (c *Cues) play(s beep.Streamer) {
	if s == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
}

// RemovalCue is a short high blip.
func RemovalCue() beep.Streamer {
	return tone(880, 60*time.Millisecond, -1)
}

// ClearCue is a rising three-note arpeggio.
func ClearCue() beep.Streamer {
	var notes []beep.Streamer
	for _, freq := range []float64{523.25, 659.25, 783.99} {
		t := tone(freq, 120*time.Millisecond, -0.5)
		if t == nil {
			return nil
		}
		notes = append(notes, t, beep.Silence(sampleRate.N(20*time.Millisecond)))
	}
	return beep.Seq(notes...)
}

func tone(freq float64, d time.Duration, volume float64) beep.Streamer {
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return nil
	}
	return &effects.Volume{
		Streamer: beep.Take(sampleRate.N(d), sine),
		Base:     2,
		Volume:   volume,
	}
}
