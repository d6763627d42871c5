// Package metrics exports game counters in the prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zeusync/orbitpick/internal/core/events/bus"
	"github.com/zeusync/orbitpick/internal/core/game"
)

const namespace = "orbitpick"

var _ bus.EventBusObserver = (*Collector)(nil)

// Collector owns its registry so several collectors can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	picks          *prometheus.CounterVec
	clears         prometheus.Counter
	clearSeconds   prometheus.Histogram
	frames         prometheus.Counter
	sessionsActive prometheus.Gauge
	clicksDropped  prometheus.Counter
	events         *prometheus.CounterVec
	handlerErrors  *prometheus.CounterVec
	dispatch       *prometheus.HistogramVec
}

func NewCollector() *Collector {
	m := &Collector{
		registry: prometheus.NewRegistry(),
		picks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "picks_total",
				Help:      "Resolved picks by outcome",
			},
			[]string{"outcome"},
		),
		clears: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clears_total",
			Help:      "Games cleared",
		}),
		clearSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "clear_seconds",
			Help:      "Time from layout creation to the last target removal",
			Buckets:   []float64{5, 10, 20, 30, 45, 60, 90, 120, 180, 300},
		}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames advanced across all sessions",
		}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently running",
		}),
		clicksDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clicks_dropped_total",
			Help:      "Clicks rejected by the rate limiter",
		}),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Events published on session buses",
			},
			[]string{"type"},
		),
		handlerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "event_handler_errors_total",
				Help:      "Deliveries where at least one handler failed",
			},
			[]string{"type"},
		),
		dispatch: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "event_dispatch_seconds",
				Help:      "Time spent running the handlers of one event",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
			[]string{"type"},
		),
	}

	m.registry.MustRegister(
		m.picks,
		m.clears,
		m.clearSeconds,
		m.frames,
		m.sessionsActive,
		m.clicksDropped,
		m.events,
		m.handlerErrors,
		m.dispatch,
	)
	return m
}

func (m *Collector) RecordPick(outcome game.Outcome) {
	m.picks.WithLabelValues(outcome.String()).Inc()
}

func (m *Collector) RecordFrame() { m.frames.Inc() }

func (m *Collector) ClickDropped() { m.clicksDropped.Inc() }

func (m *Collector) SessionOpened() { m.sessionsActive.Inc() }

func (m *Collector) SessionClosed() { m.sessionsActive.Dec() }

// Attach counts clears published on eventBus and observes its deliveries.
func (m *Collector) Attach(eventBus bus.EventBus) (bus.Subscription, error) {
	sub, err := eventBus.Subscribe(game.EventCleared, func(e bus.Event) error {
		if ev, ok := e.(game.Cleared); ok {
			m.clears.Inc()
			m.clearSeconds.Observe(ev.Elapsed.Seconds())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	eventBus.AddObserver(m)
	return sub, nil
}

// Detach undoes Attach.
func (m *Collector) Detach(eventBus bus.EventBus, sub bus.Subscription) {
	eventBus.RemoveObserver(m)
	_ = eventBus.Unsubscribe(sub)
}

func (m *Collector) OnPublish(eventType string, _ bus.Event) {
	m.events.WithLabelValues(eventType).Inc()
}

func (m *Collector) OnDelivered(eventType string, _ int, err error, took time.Duration) {
	if err != nil {
		m.handlerErrors.WithLabelValues(eventType).Inc()
	}
	m.dispatch.WithLabelValues(eventType).Observe(took.Seconds())
}

func (m *Collector) Registry() *prometheus.Registry { return m.registry }

func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
