// Package ranking implements the filter/rank engine: matching a
// candidate set of places against a traveler's filter specification,
// excluding deal-breakers, and ordering the survivors.
package ranking

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/trailtap/stamprank/internal/domain"
	"github.com/trailtap/stamprank/internal/ports"
)

var _ ports.PlaceRanker = (*RankEngine)(nil)

// ErrEmptyEngineName is returned when an engine name is empty.
var ErrEmptyEngineName = errors.New("rank engine name cannot be empty")

// Package-level validator instance for configuration validation.
var validate = validator.New()

// RankConfig defines the configuration parameters for the RankEngine.
// All fields are validated during creation and parameter unmarshaling.
type RankConfig struct {
	// NoiseFloor is the minimum vote count for a signal to count toward
	// matching or exclusion. The boundary is inclusive: exactly
	// NoiseFloor votes counts, one fewer is noise.
	NoiseFloor int `yaml:"noise_floor" json:"noise_floor" validate:"min=0"`

	// PositiveWeight multiplies vote counts of matched desired positive
	// signals.
	PositiveWeight int `yaml:"positive_weight" json:"positive_weight" validate:"min=1"`

	// NeutralWeight multiplies vote counts of matched desired neutral
	// signals.
	NeutralWeight int `yaml:"neutral_weight" json:"neutral_weight" validate:"min=0"`
}

// DefaultRankConfig returns the production weights: noise floor 2,
// positive votes at double weight, neutral votes at half of positive.
func DefaultRankConfig() RankConfig {
	return RankConfig{
		NoiseFloor:     domain.NoiseFloorVotes,
		PositiveWeight: 2,
		NeutralWeight:  1,
	}
}

// RankEngine evaluates candidate places against filter specifications.
// It is a pure, synchronous computation over the snapshot it is given:
// no I/O, no shared mutable state, no partial failure modes. The engine
// is stateless and thread-safe for concurrent execution; each call owns
// its own result map.
type RankEngine struct {
	// name is the unique identifier for this engine instance.
	name string
	// config contains the validated configuration parameters.
	config RankConfig
	// tracer is the OpenTelemetry tracer for observability.
	tracer trace.Tracer
}

// NewRankEngine creates a new RankEngine with the specified
// configuration. Returns an error if configuration validation fails.
func NewRankEngine(name string, config RankConfig) (*RankEngine, error) {
	if name == "" {
		return nil, ErrEmptyEngineName
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &RankEngine{
		name:   name,
		config: config,
		tracer: otel.Tracer("rank-engine"),
	}, nil
}

// Name returns the unique identifier for this engine instance.
func (re *RankEngine) Name() string { return re.name }

// Rank implements ports.PlaceRanker.
//
// Every candidate is scored first, so the returned Results map explains
// excluded places as well as survivors. An empty spec is the identity:
// the input list comes back untouched with nothing excluded. Otherwise
// the filtering pass drops places excluded by a negative signal, then
// by medal tier, then by minimum shown score, counting each distinct
// place once at the first rule that rejects it. Survivors are sorted by
// match score descending; the sort is stable, so equal-score places
// keep the caller's order.
func (re *RankEngine) Rank(
	ctx context.Context,
	placeIDs []string,
	aggregatesByPlace map[string][]domain.SignalAggregate,
	spec domain.FilterSpec,
	reputationByPlace map[string]domain.PlaceReputation,
) domain.RankOutcome {
	_, span := re.tracer.Start(ctx, "RankEngine.Rank",
		trace.WithAttributes(
			attribute.String("engine.id", re.name),
			attribute.Int("candidates.count", len(placeIDs)),
			attribute.Bool("spec.empty", spec.IsEmpty()),
		),
	)
	defer span.End()

	results := make(map[string]domain.MatchResult, len(placeIDs))
	for _, placeID := range placeIDs {
		if _, done := results[placeID]; done {
			// Duplicate IDs are not deduplicated from the candidate
			// list, but they share one deterministic result.
			continue
		}
		results[placeID] = re.evaluate(placeID, aggregatesByPlace[placeID], spec)
	}

	if spec.IsEmpty() {
		ranked := make([]string, len(placeIDs))
		copy(ranked, placeIDs)
		span.SetAttributes(attribute.Int("ranked.count", len(ranked)))
		return domain.RankOutcome{RankedIDs: ranked, Results: results, ExcludedCount: 0}
	}

	survivors := make([]string, 0, len(placeIDs))
	excluded := 0
	for _, placeID := range placeIDs {
		if re.passes(results[placeID], placeID, spec, reputationByPlace) {
			survivors = append(survivors, placeID)
		} else {
			excluded++
		}
	}

	// Stable: the input list's own order (typically distance) is the
	// secondary sort key for equal match scores.
	sort.SliceStable(survivors, func(i, j int) bool {
		return results[survivors[i]].MatchScore > results[survivors[j]].MatchScore
	})

	span.SetAttributes(
		attribute.Int("ranked.count", len(survivors)),
		attribute.Int("excluded.count", excluded),
	)

	return domain.RankOutcome{
		RankedIDs:     survivors,
		Results:       results,
		ExcludedCount: excluded,
	}
}

// evaluate computes the match explanation for one place. A place with
// no aggregate data scores zero and trips no exclusion.
func (re *RankEngine) evaluate(placeID string, rows []domain.SignalAggregate, spec domain.FilterSpec) domain.MatchResult {
	result := domain.MatchResult{PlaceID: placeID}

	if len(rows) == 0 || spec.IsEmpty() {
		return result
	}

	// One row per (place, signal) pair is an upstream invariant;
	// first row wins if it is ever violated.
	votesByKey := make(map[string]int, len(rows))
	for _, row := range rows {
		key := row.Key()
		if _, exists := votesByKey[key]; !exists {
			votesByKey[key] = row.TotalVotes
		}
	}

	for _, signalID := range spec.PositiveSignalIDs {
		if votes, ok := votesByKey[signalID]; ok && votes >= re.config.NoiseFloor {
			result.MatchScore += votes * re.config.PositiveWeight
			result.MatchedPositive = append(result.MatchedPositive, domain.MatchedSignal{SignalID: signalID, Votes: votes})
		}
	}

	for _, signalID := range spec.NeutralSignalIDs {
		if votes, ok := votesByKey[signalID]; ok && votes >= re.config.NoiseFloor {
			result.MatchScore += votes * re.config.NeutralWeight
			result.MatchedNeutral = append(result.MatchedNeutral, domain.MatchedSignal{SignalID: signalID, Votes: votes})
		}
	}

	for _, signalID := range spec.NegativeSignalIDs {
		if votes, ok := votesByKey[signalID]; ok && votes >= re.config.NoiseFloor {
			result.ExcludedByNegative = true
			result.MatchedNegative = append(result.MatchedNegative, domain.MatchedSignal{SignalID: signalID, Votes: votes})
		}
	}

	return result
}

// passes applies the filtering rules in order: negative exclusion,
// medal tier, minimum shown score. Unknown reputation defaults to tier
// none with no shown score; a nil shown score fails any minimum-score
// filter.
func (re *RankEngine) passes(
	result domain.MatchResult,
	placeID string,
	spec domain.FilterSpec,
	reputationByPlace map[string]domain.PlaceReputation,
) bool {
	if result.ExcludedByNegative {
		return false
	}

	reputation, hasReputation := reputationByPlace[placeID]

	if len(spec.AcceptedMedalTiers) > 0 {
		tier := domain.MedalNone
		if hasReputation {
			tier = reputation.MedalTier
		}
		if !spec.AcceptsTier(tier) {
			return false
		}
	}

	if spec.MinimumShownScore != nil {
		if !hasReputation || reputation.ShownScore == nil {
			return false
		}
		if *reputation.ShownScore < *spec.MinimumShownScore {
			return false
		}
	}

	return true
}

// Validate checks if the engine is properly configured and ready for
// execution.
func (re *RankEngine) Validate() error {
	if err := validate.Struct(re.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters deserializes YAML configuration parameters and
// returns a new RankEngine instance to maintain thread-safety. Strict
// decoding catches unknown fields so configuration typos are not
// silently ignored.
func (re *RankEngine) UnmarshalParameters(params yaml.Node) (*RankEngine, error) {
	var config RankConfig

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	if err := encoder.Encode(&params); err != nil {
		return nil, fmt.Errorf("failed to encode YAML node: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to close YAML encoder: %w", err)
	}

	decoder := yaml.NewDecoder(&buf)
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode parameters (check for typos): %w", err)
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("parameter validation failed: %w", err)
	}

	return &RankEngine{
		name:   re.name,
		config: config,
		tracer: re.tracer,
	}, nil
}

// CreateRankEngine is a factory function that creates a RankEngine from
// a configuration map.
func CreateRankEngine(id string, config map[string]any) (*RankEngine, error) {
	rankConfig := DefaultRankConfig()

	if noiseFloor, ok := config["noise_floor"].(int); ok {
		rankConfig.NoiseFloor = noiseFloor
	}
	if positiveWeight, ok := config["positive_weight"].(int); ok {
		rankConfig.PositiveWeight = positiveWeight
	}
	if neutralWeight, ok := config["neutral_weight"].(int); ok {
		rankConfig.NeutralWeight = neutralWeight
	}

	return NewRankEngine(id, rankConfig)
}
