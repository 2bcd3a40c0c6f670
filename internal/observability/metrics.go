package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ChatRequests         *prometheus.CounterVec
	CompletionLatency    prometheus.Histogram
	BehaviorObservations *prometheus.CounterVec
	LearnFailures        prometheus.Counter
	ActiveWSConnections  prometheus.Gauge
	ProfileUpdates       *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ChatRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat exchanges by outcome.",
		}, []string{"outcome"}),
		CompletionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_latency_ms",
			Help:      "Latency of the completion call in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000},
		}),
		BehaviorObservations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "behavior_observations_total",
			Help:      "Behavior patterns recorded by situation type.",
		}, []string{"situation"}),
		LearnFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "learn_failures_total",
			Help:      "Best-effort learn steps that failed.",
		}),
		ActiveWSConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_ws_connections",
			Help:      "Number of open live chat websocket connections.",
		}),
		ProfileUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_updates_total",
			Help:      "Profile mutations by shape.",
		}, []string{"shape"}),
	}
}

func (m *Metrics) ObserveCompletionLatency(d time.Duration) {
	m.CompletionLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
