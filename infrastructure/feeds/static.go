// Package feeds provides snapshot source implementations for the
// review signal engine.
package feeds

import (
	"context"
	"time"

	"github.com/trailtap/stamprank/internal/domain"
	"github.com/trailtap/stamprank/internal/ports"
)

var _ ports.SnapshotSource = (*StaticSource)(nil)

// StaticSource is an in-memory SnapshotSource backed by fixed feed
// data. It serves tests and embedded deployments where both feeds have
// already been materialized; production fetch layers implement the same
// port over their own transports.
//
// The source is immutable after construction and safe for concurrent
// use.
type StaticSource struct {
	aggregates map[string][]domain.SignalAggregate
	reputation map[string]domain.PlaceReputation
}

// NewStaticSource builds a StaticSource over the given feed rows. The
// maps are copied; later mutation of the arguments does not affect the
// source.
func NewStaticSource(
	aggregates map[string][]domain.SignalAggregate,
	reputation map[string]domain.PlaceReputation,
) *StaticSource {
	aggCopy := make(map[string][]domain.SignalAggregate, len(aggregates))
	for placeID, rows := range aggregates {
		rowsCopy := make([]domain.SignalAggregate, len(rows))
		copy(rowsCopy, rows)
		aggCopy[placeID] = rowsCopy
	}

	repCopy := make(map[string]domain.PlaceReputation, len(reputation))
	for placeID, row := range reputation {
		repCopy[placeID] = row
	}

	return &StaticSource{aggregates: aggCopy, reputation: repCopy}
}

// FetchSnapshot implements ports.SnapshotSource. Unknown place IDs are
// simply absent from the returned maps.
func (s *StaticSource) FetchSnapshot(ctx context.Context, placeIDs []string) (ports.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return ports.Snapshot{}, ports.NewSnapshotError("fetch", len(placeIDs), err)
	}

	snapshot := ports.Snapshot{
		AggregatesByPlace: make(map[string][]domain.SignalAggregate),
		ReputationByPlace: make(map[string]domain.PlaceReputation),
		TakenAt:           time.Now(),
	}

	for _, placeID := range placeIDs {
		if rows, ok := s.aggregates[placeID]; ok {
			rowsCopy := make([]domain.SignalAggregate, len(rows))
			copy(rowsCopy, rows)
			snapshot.AggregatesByPlace[placeID] = rowsCopy
		}
		if row, ok := s.reputation[placeID]; ok {
			snapshot.ReputationByPlace[placeID] = row
		}
	}

	return snapshot, nil
}
