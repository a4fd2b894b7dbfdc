package signals

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/trailtap/stamprank/internal/domain"
	"github.com/trailtap/stamprank/internal/ports"
)

var _ ports.SignalGrouper = (*Grouper)(nil)

// ErrEmptyGrouperName is returned when a grouper name is empty.
var ErrEmptyGrouperName = errors.New("grouper name cannot be empty")

// GrouperConfig defines the configuration parameters for the Grouper.
// All fields are validated during creation and parameter unmarshaling.
type GrouperConfig struct {
	// MinVotes drops aggregate rows below this vote count as noise.
	// Detail views use 0 (show everything); search and filter contexts
	// use the noise floor of 2.
	MinVotes int `yaml:"min_votes" json:"min_votes" validate:"min=0"`

	// TopPositive is the positive-bucket size of the compact view.
	TopPositive int `yaml:"top_positive" json:"top_positive" validate:"min=0"`

	// TopNeutral is the neutral-bucket size of the compact view.
	TopNeutral int `yaml:"top_neutral" json:"top_neutral" validate:"min=0"`

	// TopNegative is the negative-bucket size of the compact view.
	TopNegative int `yaml:"top_negative" json:"top_negative" validate:"min=0"`
}

// DefaultGrouperConfig returns the detail-view configuration: no noise
// suppression and the standard 5/3/2 compact slices.
func DefaultGrouperConfig() GrouperConfig {
	return GrouperConfig{
		MinVotes:    0,
		TopPositive: 5,
		TopNeutral:  3,
		TopNegative: 2,
	}
}

// SearchGrouperConfig returns the search-context configuration, which
// suppresses signals below the noise floor.
func SearchGrouperConfig() GrouperConfig {
	cfg := DefaultGrouperConfig()
	cfg.MinVotes = domain.NoiseFloorVotes
	return cfg
}

// Grouper transforms the unordered aggregate rows for one place into
// the strictly ordered positive/neutral/negative view, resolving
// display labels through the catalog resolver.
// The grouper is stateless and thread-safe for concurrent execution.
type Grouper struct {
	// name is the unique identifier for this grouper instance.
	name string
	// config contains the validated configuration parameters.
	config GrouperConfig
	// resolver supplies display labels; nil falls back to raw
	// dimension strings.
	resolver domain.LabelResolver
	// tracer is the OpenTelemetry tracer for observability.
	tracer trace.Tracer
}

// NewGrouper creates a new Grouper with the specified configuration.
// Returns an error if configuration validation fails.
func NewGrouper(name string, config GrouperConfig, resolver domain.LabelResolver) (*Grouper, error) {
	if name == "" {
		return nil, ErrEmptyGrouperName
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &Grouper{
		name:     name,
		config:   config,
		resolver: resolver,
		tracer:   otel.Tracer("signal-grouper"),
	}, nil
}

// Name returns the unique identifier for this grouper instance.
func (g *Grouper) Name() string { return g.name }

// Group implements ports.SignalGrouper. It partitions the rows by
// polarity, drops rows below the configured vote floor, and sorts each
// bucket by votes descending with input order as the only tie-break.
func (g *Grouper) Group(ctx context.Context, placeID string, rows []domain.SignalAggregate) domain.GroupedSignals {
	_, span := g.tracer.Start(ctx, "Grouper.Group",
		trace.WithAttributes(
			attribute.String("grouper.id", g.name),
			attribute.String("place.id", placeID),
			attribute.Int("config.min_votes", g.config.MinVotes),
			attribute.Int("rows.count", len(rows)),
		),
	)
	defer span.End()

	grouped := domain.GroupAggregates(rows, g.config.MinVotes, g.resolver)

	span.SetAttributes(
		attribute.Int("buckets.positive", len(grouped.Positive)),
		attribute.Int("buckets.neutral", len(grouped.Neutral)),
		attribute.Int("buckets.negative", len(grouped.Negative)),
	)

	return grouped
}

// GroupTop returns the compact top-N view for one place: the configured
// slice of each already-sorted bucket. Widening to the full buckets is
// a plain Group call; neither path re-sorts.
func (g *Grouper) GroupTop(ctx context.Context, placeID string, rows []domain.SignalAggregate) domain.GroupedSignals {
	return g.Group(ctx, placeID, rows).Top(g.config.TopPositive, g.config.TopNeutral, g.config.TopNegative)
}

// Validate checks if the grouper is properly configured and ready for
// execution.
func (g *Grouper) Validate() error {
	if err := validate.Struct(g.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters deserializes YAML configuration parameters and
// returns a new Grouper instance to maintain thread-safety. Strict
// decoding catches unknown fields so configuration typos are not
// silently ignored.
func (g *Grouper) UnmarshalParameters(params yaml.Node) (*Grouper, error) {
	var config GrouperConfig

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

	return &Grouper{
		name:     g.name,
		config:   config,
		resolver: g.resolver,
		tracer:   g.tracer,
	}, nil
}

// CreateGrouper is a factory function that creates a Grouper from a
// configuration map.
func CreateGrouper(id string, config map[string]any, resolver domain.LabelResolver) (*Grouper, error) {
	grouperConfig := DefaultGrouperConfig()

	if minVotes, ok := config["min_votes"].(int); ok {
		grouperConfig.MinVotes = minVotes
	}
	if topPositive, ok := config["top_positive"].(int); ok {
		grouperConfig.TopPositive = topPositive
	}
	if topNeutral, ok := config["top_neutral"].(int); ok {
		grouperConfig.TopNeutral = topNeutral
	}
	if topNegative, ok := config["top_negative"].(int); ok {
		grouperConfig.TopNegative = topNegative
	}

	return NewGrouper(id, grouperConfig, resolver)
}
