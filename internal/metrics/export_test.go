package metrics

import "github.com/prometheus/client_golang/prometheus"

func ContactOperationsCounter(operation, outcome string) prometheus.Counter {
	return contactOperations.WithLabelValues(operation, outcome)
}
