package game

import (
	"fmt"
	"io"
	"sync"

	"github.com/zeusync/orbitpick/internal/core/events/bus"
	"github.com/zeusync/orbitpick/internal/core/observability/log"
)

// CounterSurface shows the remaining-target count.
type CounterSurface interface {
	Available() bool
	SetCount(remaining int)
}

// BannerSurface is the completion banner, hidden until the game is cleared.
type BannerSurface interface {
	Available() bool
	Show(message string)
	Hide()
}

// Alerter is the blocking fallback used when the banner cannot be shown.
type Alerter interface {
	Alert(message string)
}

// HUD routes game events to the display surfaces. Missing surfaces degrade
// to the alerter, and then to the log; events are never dropped silently.
type HUD struct {
	Counter CounterSurface
	Banner  BannerSurface
	Alert   Alerter
	logger  log.Log
}

func NewHUD(counter CounterSurface, banner BannerSurface, alert Alerter, logger log.Log) *HUD {
	return &HUD{
		Counter: counter,
		Banner:  banner,
		Alert:   alert,
		logger:  logger.With(log.String("component", "hud")),
	}
}

// Attach subscribes the HUD to eventBus.
func (h *HUD) Attach(eventBus bus.EventBus) ([]bus.Subscription, error) {
	handlers := map[string]bus.EventHandler{
		EventTargetsChanged: h.onTargetsChanged,
		EventCleared:        h.onCleared,
		EventReset:          h.onReset,
	}
	subs := make([]bus.Subscription, 0, len(handlers))
	for _, typ := range []string{EventReset, EventTargetsChanged, EventCleared} {
		sub, err := eventBus.Subscribe(typ, handlers[typ])
		if err != nil {
			for _, s := range subs {
				_ = s.Cancel()
			}
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func (h *HUD) onTargetsChanged(e bus.Event) error {
	ev, ok := e.(TargetsChanged)
	if !ok {
		return fmt.Errorf("hud: unexpected event %T", e)
	}
	if h.Counter != nil && h.Counter.Available() {
		h.Counter.SetCount(ev.Remaining)
		return nil
	}
	// Alerts are reserved for the banner; the counter falls back to the log.
	h.logger.Info(CounterMessage(ev.Remaining), log.Int("remaining", ev.Remaining))
	return nil
}

func (h *HUD) onCleared(e bus.Event) error {
	ev, ok := e.(Cleared)
	if !ok {
		return fmt.Errorf("hud: unexpected event %T", e)
	}
	msg := ClearMessage(ev.Seconds)
	switch {
	case h.Banner != nil && h.Banner.Available():
		h.Banner.Show(msg)
	case h.Alert != nil:
		h.Alert.Alert(msg)
	default:
		h.logger.Warn("No surface for the clear banner", log.String("message", msg))
	}
	return nil
}

func (h *HUD) onReset(bus.Event) error {
	if h.Banner != nil && h.Banner.Available() {
		h.Banner.Hide()
	}
	return nil
}

// WriterAlerter prints alerts as lines on W.
type WriterAlerter struct {
	mu sync.Mutex
	W  io.Writer
}

func (a *WriterAlerter) Alert(message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = fmt.Fprintln(a.W, message)
}
