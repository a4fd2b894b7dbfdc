package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/trailtap/stamprank/internal/ports"
)

// metricsSource collects fetch metrics for a snapshot source. This
// provides observability into fetch patterns, latency, and error rates
// for operational monitoring.
type metricsSource struct {
	next      ports.SnapshotSource
	collector ports.MetricsCollector
}

// MetricsMiddleware creates middleware that collects snapshot fetch
// metrics through the given collector.
func MetricsMiddleware(collector ports.MetricsCollector) SnapshotMiddleware {
	return func(next ports.SnapshotSource) ports.SnapshotSource {
		return &metricsSource{
			next:      next,
			collector: collector,
		}
	}
}

// FetchSnapshot executes the fetch while recording latency, status, and
// candidate-set size.
func (m *metricsSource) FetchSnapshot(ctx context.Context, placeIDs []string) (ports.Snapshot, error) {
	start := time.Now()
	snapshot, err := m.next.FetchSnapshot(ctx, placeIDs)

	labels := map[string]string{
		"component": "snapshot_source",
		"status":    "success",
	}
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrRateLimited):
			labels["status"] = "rate_limited"
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			labels["status"] = "timeout"
		default:
			labels["status"] = "error"
		}
	}

	if m.collector != nil {
		m.collector.RecordLatency("snapshot_fetch", time.Since(start), labels)
		m.collector.RecordCounter("snapshot_fetches_total", 1, labels)
		m.collector.RecordHistogram("snapshot_place_count", float64(len(placeIDs)), labels)
	}

	return snapshot, err
}
