package usecase

import "github.com/prometheus/client_golang/prometheus"

var (
	processedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sutakip",
		Subsystem: "processor",
		Name:      "transactions_total",
		Help:      "Number of successfully processed transactions.",
	}, []string{"mode"})

	validationFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sutakip",
		Subsystem: "processor",
		Name:      "validation_failures_total",
		Help:      "Number of requests rejected by validation.",
	})

	persistenceFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sutakip",
		Subsystem: "processor",
		Name:      "persistence_failures_total",
		Help:      "Number of requests that failed at the storage layer after rollback.",
	})
)

func init() {
	prometheus.MustRegister(processedTotal, validationFailedTotal, persistenceFailedTotal)
}
