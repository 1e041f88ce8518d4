package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pos"

type Metrics struct {
	SalesStarted   prometheus.Counter
	SalesAbandoned prometheus.Counter
	SalesEvicted   prometheus.Counter
	ActiveSales    prometheus.Gauge
	CatalogLoads   *prometheus.CounterVec
	Scans          *prometheus.CounterVec
	Prints         *prometheus.CounterVec
}

// New registers the service metrics with reg. Tests pass a fresh
// prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SalesStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_started_total",
			Help:      "Sale sessions opened.",
		}),
		SalesAbandoned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_abandoned_total",
			Help:      "Sale sessions cancelled by staff.",
		}),
		SalesEvicted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_evicted_total",
			Help:      "Sale sessions removed by the janitor.",
		}),
		ActiveSales: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sales_active",
			Help:      "Sale sessions currently held in memory.",
		}),
		CatalogLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_loads_total",
			Help:      "Catalog snapshot loads by outcome.",
		}, []string{"outcome"}),
		Scans: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Scanned codes by outcome.",
		}, []string{"outcome"}),
		Prints: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prints_total",
			Help:      "Print jobs by document kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
}

func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
