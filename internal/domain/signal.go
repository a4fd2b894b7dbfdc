// Package domain contains pure, dependency-free domain models and types
// for the review signal engine.
package domain

// Polarity classifies a signal's product meaning. A signal's polarity is
// fixed at catalog definition time and never changes contextually.
type Polarity string

// Supported polarities.
const (
	// PolarityPositive marks signals that celebrate what stood out.
	PolarityPositive Polarity = "positive"

	// PolarityNeutral marks informational signals with no sentiment.
	PolarityNeutral Polarity = "neutral"

	// PolarityImprovement marks signals about what didn't work.
	// Improvement signals are always presented to callers as "negative".
	PolarityImprovement Polarity = "improvement"
)

// Valid reports whether the polarity is one of the supported values.
func (p Polarity) Valid() bool {
	switch p {
	case PolarityPositive, PolarityNeutral, PolarityImprovement:
		return true
	}
	return false
}

// SignalDefinition is the immutable catalog entry for one taggable signal.
// Definitions are reference data: looked up by ID, never mutated.
type SignalDefinition struct {
	// ID uniquely identifies this signal within the catalog.
	ID string `json:"id" yaml:"id" validate:"required,min=1,max=100"`

	// Category groups related signals for presentation (e.g. "site_quality").
	Category string `json:"category" yaml:"category" validate:"max=100"`

	// Label is the human-readable display name (e.g. "Level Sites").
	Label string `json:"label" yaml:"label" validate:"required,min=1,max=255"`

	// Polarity fixes the signal's product meaning.
	Polarity Polarity `json:"polarity" yaml:"polarity" validate:"required,oneof=positive neutral improvement"`

	// SortOrder positions the signal within its category in pickers.
	SortOrder int `json:"sort_order" yaml:"sort_order"`

	// IconRef names the icon asset rendered next to the label.
	IconRef string `json:"icon_ref,omitempty" yaml:"icon_ref,omitempty"`
}

// SignalAggregate is one row of the Signal Aggregate Feed: the running
// vote count for a (place, signal) pair. Rows are produced and
// incremented externally; the engine treats each row as an immutable
// snapshot and never decrements TotalVotes.
type SignalAggregate struct {
	// PlaceID identifies the place this aggregate belongs to.
	PlaceID string `json:"place_id"`

	// SignalID references a catalog definition. It may be empty when the
	// aggregate was recorded against a free-form dimension instead of a
	// cataloged signal; Dimension then carries the fallback label.
	SignalID string `json:"signal_id,omitempty"`

	// Dimension is the raw dimension name the taps were recorded under.
	// It doubles as the display label when SignalID is empty.
	Dimension string `json:"dimension"`

	// Polarity is the polarity the aggregate was recorded under.
	Polarity Polarity `json:"polarity"`

	// TotalVotes is the running tap count. Always >= 0.
	TotalVotes int `json:"total_votes"`
}

// Key returns the identifier used for filter matching: the catalog
// signal ID when present, otherwise the raw dimension name.
func (a SignalAggregate) Key() string {
	if a.SignalID != "" {
		return a.SignalID
	}
	return a.Dimension
}

// ResolvedSignal is a bucket entry with its display label already
// resolved. Resolution happens exactly once, at grouping time: either
// the catalog supplied the label (FromCatalog true) or the raw
// dimension string is used as-is.
type ResolvedSignal struct {
	// SignalID is the catalog ID when the signal was resolved from the
	// catalog; empty for raw dimension entries.
	SignalID string `json:"signal_id,omitempty"`

	// Label is the display label for this entry.
	Label string `json:"label"`

	// Votes is the aggregate vote count carried into the view.
	Votes int `json:"votes"`

	// FromCatalog reports whether Label came from a catalog definition
	// rather than the raw dimension fallback.
	FromCatalog bool `json:"from_catalog"`
}

// GroupedSignals is the strictly ordered three-section view of one
// place's aggregates. Consumers must render Positive, then Neutral,
// then Negative, and must never reorder, merge, or interleave the
// buckets: the order encodes product meaning.
type GroupedSignals struct {
	// Positive holds positive-polarity entries, highest votes first.
	Positive []ResolvedSignal `json:"positive"`

	// Neutral holds neutral-polarity entries, highest votes first.
	Neutral []ResolvedSignal `json:"neutral"`

	// Negative holds improvement-polarity entries, highest votes first.
	// The improvement polarity is always exposed under this name.
	Negative []ResolvedSignal `json:"negative"`
}

// IsEmpty reports whether all three buckets are empty.
func (g GroupedSignals) IsEmpty() bool {
	return len(g.Positive) == 0 && len(g.Neutral) == 0 && len(g.Negative) == 0
}

// Top returns a fixed-size view of the grouped signals: the first
// positive, neutral, and negative entries of each already-sorted
// bucket. "Show more" is widening a slice to the bucket's full length,
// never a re-sort. Negative sizes are treated as zero.
func (g GroupedSignals) Top(positive, neutral, negative int) GroupedSignals {
	return GroupedSignals{
		Positive: topSlice(g.Positive, positive),
		Neutral:  topSlice(g.Neutral, neutral),
		Negative: topSlice(g.Negative, negative),
	}
}

func topSlice(entries []ResolvedSignal, n int) []ResolvedSignal {
	if n < 0 {
		n = 0
	}
	if n > len(entries) {
		n = len(entries)
	}
	return entries[:n]
}
