package live

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/reactor/pkg/scheduler"
)

const namespace = "reactor"

// Event outcomes recorded in the events_total status label.
const (
	statusOK        = "ok"
	statusUnhandled = "unhandled"
	statusPanic     = "panic"
)

// metrics holds the Prometheus metrics for a Server.
type metrics struct {
	activeSessions prometheus.Gauge
	sessionsTotal  prometheus.Counter
	eventsTotal    *prometheus.CounterVec
	eventDuration  prometheus.Histogram
	framesSent     prometheus.Counter
	opsSent        prometheus.Counter
	flushDuration  prometheus.Histogram
	flushJobs      prometheus.Histogram
	wsErrors       *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of connected live sessions",
		}),

		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of live sessions started",
		}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Client events processed, by event name and outcome",
		}, []string{"event", "status"}),

		eventDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_duration_seconds",
			Help:      "Time from receiving an event to sending its patch",
			Buckets:   prometheus.DefBuckets,
		}),

		framesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_sent_total",
			Help:      "Patch frames sent to clients",
		}),

		opsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ops_sent_total",
			Help:      "Host operations sent to clients",
		}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_duration_seconds",
			Help:      "Duration of scheduler job flushes",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}),

		flushJobs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_jobs",
			Help:      "Component updates run per scheduler flush",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 100},
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "websocket_errors_total",
			Help:      "WebSocket errors by type",
		}, []string{"type"}),
	}
}

// observeFlush is installed as every session scheduler's observer.
func (m *metrics) observeFlush(st scheduler.FlushStats) {
	m.flushDuration.Observe(st.Duration.Seconds())
	m.flushJobs.Observe(float64(st.Jobs))
}
