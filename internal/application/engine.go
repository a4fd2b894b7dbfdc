package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/trailtap/stamprank/internal/domain"
	"github.com/trailtap/stamprank/internal/ports"
)

// EngineParams collects the collaborators an Engine is assembled from.
// Catalog, Grouper, Ranker, and Source are required; Thresholds
// defaults to the seeded production table and Metrics is optional.
type EngineParams struct {
	// Catalog is the signal reference data.
	Catalog ports.SignalCatalog

	// Grouper produces the ordered three-section signal view.
	Grouper ports.SignalGrouper

	// Ranker filters and ranks candidate sets.
	Ranker ports.PlaceRanker

	// Source supplies self-consistent feed snapshots.
	Source ports.SnapshotSource

	// Thresholds is the category threshold table for the confidence
	// gate. The zero value selects the default table.
	Thresholds domain.CategoryThresholds

	// Metrics receives operational metrics when non-nil.
	Metrics ports.MetricsCollector
}

// Engine is the facade over the review signal engine: it fetches a
// snapshot from the configured source and runs the pure grouping and
// ranking computations over it.
//
// The engine holds no mutable state; concurrent calls are safe and
// each owns its own derived results.
type Engine struct {
	catalog    ports.SignalCatalog
	grouper    ports.SignalGrouper
	ranker     ports.PlaceRanker
	source     ports.SnapshotSource
	thresholds domain.CategoryThresholds
	metrics    ports.MetricsCollector
}

// NewEngine assembles an Engine from its collaborators.
// Returns an error when a required collaborator is missing.
func NewEngine(params EngineParams) (*Engine, error) {
	if params.Catalog == nil {
		return nil, fmt.Errorf("%w: catalog is required", domain.ErrInvalidConfiguration)
	}
	if params.Grouper == nil {
		return nil, fmt.Errorf("%w: grouper is required", domain.ErrInvalidConfiguration)
	}
	if params.Ranker == nil {
		return nil, fmt.Errorf("%w: ranker is required", domain.ErrInvalidConfiguration)
	}
	if params.Source == nil {
		return nil, fmt.Errorf("%w: snapshot source is required", domain.ErrInvalidConfiguration)
	}

	thresholds := params.Thresholds
	if thresholds.IsZero() {
		thresholds = domain.DefaultCategoryThresholds()
	}

	return &Engine{
		catalog:    params.Catalog,
		grouper:    params.Grouper,
		ranker:     params.Ranker,
		source:     params.Source,
		thresholds: thresholds,
		metrics:    params.Metrics,
	}, nil
}

// Catalog exposes the signal reference data for presentation layers.
func (e *Engine) Catalog() ports.SignalCatalog { return e.catalog }

// HasEnoughTapsForScore reports whether a place's shown score may be
// surfaced. This is the single source of truth for the confidence
// gate; callers must render a "still building confidence" state when
// it returns false, never a sub-threshold number.
func (e *Engine) HasEnoughTapsForScore(qualTaps int, category string) bool {
	return e.thresholds.HasEnoughTapsForScore(qualTaps, category)
}

// GroupPlace fetches the current snapshot for one place and returns its
// ordered signal view. A place with no feedback yet yields three empty
// buckets; the caller decides how to render "no data yet".
func (e *Engine) GroupPlace(ctx context.Context, placeID string) (domain.GroupedSignals, error) {
	snapshot, err := e.source.FetchSnapshot(ctx, []string{placeID})
	if err != nil {
		return domain.GroupedSignals{}, fmt.Errorf("grouping %s: %w", placeID, err)
	}

	return e.grouper.Group(ctx, placeID, snapshot.AggregatesByPlace[placeID]), nil
}

// RankPlaces fetches one snapshot covering the candidate set and ranks
// it against the filter specification. The outcome carries a unique
// evaluation ID for tracing and "why was this hidden" explanations for
// every candidate.
func (e *Engine) RankPlaces(ctx context.Context, placeIDs []string, spec domain.FilterSpec) (domain.RankOutcome, error) {
	snapshot, err := e.source.FetchSnapshot(ctx, placeIDs)
	if err != nil {
		return domain.RankOutcome{}, fmt.Errorf("ranking %d candidates: %w", len(placeIDs), err)
	}

	return e.rankSnapshot(ctx, placeIDs, spec, snapshot), nil
}

// EvaluateSpecs ranks one candidate set against several filter
// specifications concurrently, over a single shared snapshot so all
// outcomes describe the same moment. Outcomes are returned in spec
// order.
func (e *Engine) EvaluateSpecs(ctx context.Context, placeIDs []string, specs []domain.FilterSpec) ([]domain.RankOutcome, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	snapshot, err := e.source.FetchSnapshot(ctx, placeIDs)
	if err != nil {
		return nil, fmt.Errorf("evaluating %d specs: %w", len(specs), err)
	}

	outcomes := make([]domain.RankOutcome, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			outcomes[i] = e.rankSnapshot(gctx, placeIDs, spec, snapshot)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return outcomes, nil
}

func (e *Engine) rankSnapshot(ctx context.Context, placeIDs []string, spec domain.FilterSpec, snapshot ports.Snapshot) domain.RankOutcome {
	start := time.Now()

	outcome := e.ranker.Rank(ctx, placeIDs, snapshot.AggregatesByPlace, spec, snapshot.ReputationByPlace)
	outcome.EvaluationID = uuid.NewString()

	if e.metrics != nil {
		labels := map[string]string{"component": "rank_engine"}
		e.metrics.RecordLatency("rank", time.Since(start), labels)
		e.metrics.RecordCounter("rank_evaluations_total", 1, labels)
		e.metrics.RecordHistogram("rank_candidates", float64(len(placeIDs)), labels)
		e.metrics.RecordHistogram("rank_excluded", float64(outcome.ExcludedCount), labels)
	}

	return outcome
}
