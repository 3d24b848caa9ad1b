package postgres

import (
	"time"

	"github.com/medisuite/hms-api/pkg/metrics"
)

var dbMetrics *metrics.Metrics

// SetMetrics installs the metrics sink used by all repositories. Call
// once at startup, before serving traffic.
func SetMetrics(m *metrics.Metrics) {
	dbMetrics = m
}

func observe(operation string, start time.Time, err error) {
	if dbMetrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	dbMetrics.DatabaseOperations.WithLabelValues(operation, status).Inc()
	dbMetrics.DatabaseLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
