// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/trailtap/stamprank/internal/domain"
)

// SignalCatalog provides read-only lookup of signal definitions.
// Implementations are reference data: immutable after construction and
// safe for concurrent use.
type SignalCatalog interface {
	// Lookup returns the definition for a signal ID and whether it
	// exists.
	Lookup(id string) (domain.SignalDefinition, bool)

	// Signals returns all definitions, ordered by category and sort
	// order, for building pickers and presentation views.
	Signals() []domain.SignalDefinition
}

// SignalGrouper transforms one place's aggregate rows into the ordered
// three-section view. Implementations must be stateless and safe for
// concurrent calls.
type SignalGrouper interface {
	// Name returns a unique identifier for this grouper instance,
	// used for logging and observability labels.
	Name() string

	// Group partitions, filters, and sorts the rows for one place.
	// It is a pure computation and never fails; malformed rows are
	// dropped rather than reported.
	Group(ctx context.Context, placeID string, rows []domain.SignalAggregate) domain.GroupedSignals
}

// PlaceRanker filters and ranks a candidate set of places against a
// traveler's filter specification. Implementations must be stateless
// and safe for concurrent calls; each call owns its own result map.
type PlaceRanker interface {
	// Name returns a unique identifier for this ranker instance.
	Name() string

	// Rank evaluates all candidates against the spec and returns the
	// surviving IDs best match first, a match explanation for every
	// candidate (excluded ones included), and the count of distinct
	// places removed. An empty spec is the identity operation.
	//
	// Missing aggregate or reputation data degrades per place rather
	// than failing the call: unknown places score zero and unknown
	// reputation is tier none with no shown score.
	Rank(
		ctx context.Context,
		placeIDs []string,
		aggregatesByPlace map[string][]domain.SignalAggregate,
		spec domain.FilterSpec,
		reputationByPlace map[string]domain.PlaceReputation,
	) domain.RankOutcome
}
