package cache

import "github.com/prometheus/client_golang/prometheus"

var (
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "docvision",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Lookups served from the inference result cache",
	})
	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "docvision",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Computations started because no entry existed",
	})
	cacheFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "docvision",
		Subsystem: "cache",
		Name:      "failures_total",
		Help:      "Computations that failed and were not cached",
	})
	cacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "docvision",
		Subsystem: "cache",
		Name:      "entries",
		Help:      "Entries held by the inference result cache",
	})
)

func init() {
	prometheus.MustRegister(cacheHits, cacheMisses, cacheFailures, cacheEntries)
}
