package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Checkouts      *prometheus.CounterVec
	Callbacks      *prometheus.CounterVec
	StockConflicts prometheus.Counter
}

func New(service string) *Metrics {
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market",
		Subsystem: service,
		Name:      "checkouts_total",
		Help:      "Checkout attempts by result.",
	}, []string{"result"})
	callbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market",
		Subsystem: service,
		Name:      "payment_callbacks_total",
		Help:      "Gateway payment callbacks by result.",
	}, []string{"result"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "market",
		Subsystem: service,
		Name:      "stock_conflicts_total",
		Help:      "Optimistic stock conflicts surfaced after retry exhaustion.",
	})

	prometheus.MustRegister(checkouts, callbacks, conflicts)
	return &Metrics{Checkouts: checkouts, Callbacks: callbacks, StockConflicts: conflicts}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
