package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

var operations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "reservation_operations_total",
	Help: "Reservation operations by name and outcome",
}, []string{"op", "result"})

// Prometheus records operation outcomes into the default registry.
type Prometheus struct{}

func (Prometheus) Observe(op, result string) {
	operations.WithLabelValues(op, result).Inc()
}
