package ports

import (
	"context"
	"time"

	"github.com/trailtap/stamprank/internal/domain"
)

// Snapshot is a self-consistent view of both external feeds for a
// candidate set, captured at one point in time. The engine computes
// over the snapshot it is given and imposes no ordering or locking
// requirement on how it was assembled.
type Snapshot struct {
	// AggregatesByPlace holds the Signal Aggregate Feed rows for each
	// requested place. Places with no feedback yet are simply absent.
	AggregatesByPlace map[string][]domain.SignalAggregate

	// ReputationByPlace holds the Place Reputation Feed rows. A place
	// is absent until its first qualifying tap exists.
	ReputationByPlace map[string]domain.PlaceReputation

	// TakenAt records when the snapshot was assembled, for staleness
	// decisions in caching decorators.
	TakenAt time.Time
}

// SnapshotSource supplies feed snapshots for candidate place sets.
// Implementations own the asynchronous concerns the engine excludes:
// network fetches, caching, and staleness windows. They must deliver a
// self-consistent snapshot per call.
type SnapshotSource interface {
	// FetchSnapshot returns a snapshot covering the requested places.
	// Unknown place IDs are not an error; they are simply absent from
	// the returned maps.
	FetchSnapshot(ctx context.Context, placeIDs []string) (Snapshot, error)
}

// MetricsCollector defines the interface for collecting operational
// metrics. Implementations should integrate with observability
// platforms like Prometheus or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram, useful for
	// distributions like candidate-set sizes and match scores.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
