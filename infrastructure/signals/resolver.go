package signals

import (
	"fmt"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"github.com/trailtap/stamprank/internal/domain"
	"github.com/trailtap/stamprank/internal/ports"
)

var (
	_ domain.LabelResolver = (*CatalogResolver)(nil)

	// foldCaser is a package-level Unicode case folder for performance.
	// This avoids creating a new caser for each string comparison.
	foldCaser = cases.Fold()
)

// ResolverConfig defines the configuration parameters for the
// CatalogResolver.
type ResolverConfig struct {
	// FuzzyThreshold is the minimum similarity (0.0-1.0) for a raw
	// dimension name to be treated as a known catalog signal. A value
	// of 1.0 disables fuzzy matching and requires exact folded
	// equality.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" json:"fuzzy_threshold" validate:"min=0.0,max=1.0"`
}

// DefaultResolverConfig returns a ResolverConfig with sensible defaults.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{FuzzyThreshold: 0.9}
}

// CatalogResolver resolves display labels for aggregate rows against a
// signal catalog. Resolution happens exactly once, at grouping time:
// an exact ID lookup first, then a case-folded label match for rows
// recorded under a free-form dimension, then a fuzzy match to absorb
// minor spelling drift in dimension names. When nothing matches, the
// raw dimension string is the label.
//
// The resolver is immutable after construction and safe for concurrent
// use.
type CatalogResolver struct {
	catalog ports.SignalCatalog
	config  ResolverConfig

	// byFoldedLabel indexes catalog definitions by their case-folded
	// label and ID for dimension matching without a catalog scan.
	byFoldedLabel map[string]domain.SignalDefinition
}

// NewCatalogResolver creates a resolver over the given catalog.
// Returns an error if the configuration is invalid.
func NewCatalogResolver(catalog ports.SignalCatalog, config ResolverConfig) (*CatalogResolver, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog is required", domain.ErrInvalidConfiguration)
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	byFoldedLabel := make(map[string]domain.SignalDefinition)
	for _, def := range catalog.Signals() {
		byFoldedLabel[foldCaser.String(def.Label)] = def
		byFoldedLabel[foldCaser.String(def.ID)] = def
	}

	return &CatalogResolver{
		catalog:       catalog,
		config:        config,
		byFoldedLabel: byFoldedLabel,
	}, nil
}

// ResolveLabel implements domain.LabelResolver. It returns the display
// label for the aggregate and whether it was resolved from the catalog.
func (r *CatalogResolver) ResolveLabel(agg domain.SignalAggregate) (string, bool) {
	if def, ok := r.ResolveDefinition(agg); ok {
		return def.Label, true
	}
	return agg.Dimension, false
}

// ResolveDefinition returns the catalog definition backing an aggregate
// row, if any. Rows with a SignalID resolve by lookup; rows with only a
// dimension resolve by folded equality, then by fuzzy similarity
// against catalog labels.
func (r *CatalogResolver) ResolveDefinition(agg domain.SignalAggregate) (domain.SignalDefinition, bool) {
	if agg.SignalID != "" {
		if def, ok := r.catalog.Lookup(agg.SignalID); ok {
			return def, true
		}
		// A stale or unknown ID falls through to dimension matching.
	}

	if agg.Dimension == "" {
		return domain.SignalDefinition{}, false
	}

	folded := foldCaser.String(agg.Dimension)
	if def, ok := r.byFoldedLabel[folded]; ok {
		return def, true
	}

	if r.config.FuzzyThreshold >= 1.0 {
		return domain.SignalDefinition{}, false
	}

	return r.fuzzyMatch(folded)
}

// fuzzyMatch finds the catalog definition whose folded label is most
// similar to the folded dimension, provided the similarity clears the
// configured threshold.
func (r *CatalogResolver) fuzzyMatch(folded string) (domain.SignalDefinition, bool) {
	var best domain.SignalDefinition
	bestSimilarity := 0.0
	found := false

	for label, def := range r.byFoldedLabel {
		similarity := similarity(folded, label)
		if similarity >= r.config.FuzzyThreshold && similarity > bestSimilarity {
			best = def
			bestSimilarity = similarity
			found = true
		}
	}

	return best, found
}

// similarity computes a normalized Levenshtein similarity between two
// strings: 1.0 for identical strings, 0.0 for maximum dissimilarity.
// Rune counts are used for normalization because the edit distance
// operates on runes.
func similarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}

	distance := levenshtein.ComputeDistance(s1, s2)

	maxLen := utf8.RuneCountInString(s1)
	if n := utf8.RuneCountInString(s2); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}

	sim := 1.0 - float64(distance)/float64(maxLen)
	if sim < 0 {
		sim = 0
	}
	return sim
}
