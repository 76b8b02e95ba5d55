package handler

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments the HTTP surface and the subscription hub.
type Metrics struct {
	requests *prometheus.CounterVec
	inflight prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer, subscribers func() int) *Metrics {
	factory := promauto.With(reg)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "ops_sync_live_subscriptions",
		Help: "Number of live change-feed subscriptions.",
	}, func() float64 { return float64(subscribers()) })

	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ops_sync_http_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		}, []string{"route", "status"}),
		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ops_sync_http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Instrument wraps a handler, counting completed requests under the given
// route label. Websocket routes should not be wrapped; the hijacked
// connection never reports a terminal status.
func (m *Metrics) Instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.inflight.Inc()
		defer m.inflight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		m.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	}
}
