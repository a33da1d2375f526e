package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	activationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "docvision",
			Subsystem: "models",
			Name:      "activations_total",
			Help:      "Total number of active model changes",
		},
	)

	downloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docvision",
			Subsystem: "download",
			Name:      "jobs_total",
			Help:      "Finished download jobs by terminal status",
		},
		[]string{"status"},
	)

	downloadProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docvision",
			Subsystem: "download",
			Name:      "progress_percent",
			Help:      "Progress of the current or last download job",
		},
	)

	downloadInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docvision",
			Subsystem: "download",
			Name:      "inflight",
			Help:      "1 while a download job is running",
		},
	)
)

func init() {
	prometheus.MustRegister(activationsTotal, downloadsTotal, downloadProgress, downloadInflight)
}
