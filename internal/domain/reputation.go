package domain

import (
	"fmt"
	"time"
)

// MedalTier is the coarse reputation classification for a place,
// derived upstream from sustained qualifying-tap volume. Tiers form a
// strict order used exclusively for filter inclusion tests; they are
// never folded into a ranking weight.
type MedalTier int

// Medal tiers in ascending order.
const (
	MedalNone MedalTier = iota
	MedalBronze
	MedalSilver
	MedalGold
	MedalPlatinum
)

var medalNames = map[MedalTier]string{
	MedalNone:     "none",
	MedalBronze:   "bronze",
	MedalSilver:   "silver",
	MedalGold:     "gold",
	MedalPlatinum: "platinum",
}

// String returns the wire name of the tier, or "none" for out-of-range
// values so that malformed feed data degrades instead of failing.
func (m MedalTier) String() string {
	if name, ok := medalNames[m]; ok {
		return name
	}
	return medalNames[MedalNone]
}

// Valid reports whether the tier is one of the defined values.
func (m MedalTier) Valid() bool {
	_, ok := medalNames[m]
	return ok
}

// ParseMedalTier converts a feed-level tier name into a MedalTier.
// It returns ErrInvalidMedalTier for unrecognized names.
func ParseMedalTier(name string) (MedalTier, error) {
	for tier, n := range medalNames {
		if n == name {
			return tier, nil
		}
	}
	return MedalNone, fmt.Errorf("%w: %q", ErrInvalidMedalTier, name)
}

// PlaceReputation is one row of the Place Reputation Feed. It is
// computed upstream and consumed read-only; the engine derives nothing
// from it beyond filter inclusion and the confidence gate.
type PlaceReputation struct {
	// PlaceID identifies the place this row describes.
	PlaceID string `json:"place_id"`

	// QualifyingTapTotal counts the taps (positive plus raw negative)
	// that feed confidence and medal thresholds.
	QualifyingTapTotal int `json:"qual_taps_total"`

	// RawScore is the unshrunk reputation score. Nil means not yet
	// computed; nil is "no score", never zero.
	RawScore *float64 `json:"score_raw,omitempty"`

	// ShownScore is the confidence-adjusted score surfaced to users.
	// Nil until upstream confidence and volume rules are satisfied, and
	// possibly nil even above the category threshold.
	ShownScore *float64 `json:"score_shown,omitempty"`

	// Confidence is the upstream shrinkage factor in [0, 1].
	Confidence float64 `json:"confidence"`

	// NegativeRatio is the decayed share of negative taps in [0, 1].
	NegativeRatio float64 `json:"negative_ratio"`

	// DecayedNegativeTaps is the time-decayed negative tap count.
	DecayedNegativeTaps float64 `json:"neg_taps_decayed"`

	// MedalTier is the current classification for this place.
	MedalTier MedalTier `json:"medal_tier"`

	// MedalAwardedAt records when the current tier was awarded.
	MedalAwardedAt *time.Time `json:"medal_awarded_at,omitempty"`

	// FirstTapAt records the first qualifying tap for this place.
	FirstTapAt *time.Time `json:"first_tap_at,omitempty"`

	// ActiveWeeks counts distinct weeks with qualifying activity.
	ActiveWeeks int `json:"active_weeks_count"`
}

// DefaultQualifyingTapThreshold applies to any category absent from the
// threshold table.
const DefaultQualifyingTapThreshold = 100

// CategoryThresholds maps a place's primary category to the minimum
// qualifying-tap count required before its shown score is considered
// meaningful. The zero value is usable and answers the default
// threshold for every category.
type CategoryThresholds struct {
	byCategory map[string]int
	fallback   int
}

// NewCategoryThresholds builds a threshold table from per-category
// overrides. Non-positive override values are ignored. A fallback of
// zero or less selects DefaultQualifyingTapThreshold.
func NewCategoryThresholds(overrides map[string]int, fallback int) CategoryThresholds {
	if fallback <= 0 {
		fallback = DefaultQualifyingTapThreshold
	}

	byCategory := make(map[string]int, len(overrides))
	for category, threshold := range overrides {
		if threshold > 0 {
			byCategory[category] = threshold
		}
	}

	return CategoryThresholds{byCategory: byCategory, fallback: fallback}
}

// DefaultCategoryThresholds returns the seeded production table.
// Thresholds range 50-150 with expected category traffic: busy
// categories need more evidence before a score means anything, niche
// categories less.
func DefaultCategoryThresholds() CategoryThresholds {
	return NewCategoryThresholds(map[string]int{
		"restaurant":    150,
		"national_park": 75,
		"hot_spring":    50,
		"rock_shop":     50,
	}, DefaultQualifyingTapThreshold)
}

// IsZero reports whether the table is the uninitialized zero value.
// A zero table still answers the default threshold for every category.
func (ct CategoryThresholds) IsZero() bool {
	return ct.byCategory == nil && ct.fallback == 0
}

// Threshold returns the minimum qualifying-tap count for a category,
// falling back to the default for unknown categories.
func (ct CategoryThresholds) Threshold(category string) int {
	if threshold, ok := ct.byCategory[category]; ok {
		return threshold
	}
	if ct.fallback > 0 {
		return ct.fallback
	}
	return DefaultQualifyingTapThreshold
}

// HasEnoughTapsForScore is the single source of truth for the
// confidence gate: whether a place has accumulated enough qualifying
// taps for its shown score to be surfaced. Below the gate, consumers
// must present a "still building confidence" state instead of a number;
// no caller may interpret a sub-threshold score directly.
func (ct CategoryThresholds) HasEnoughTapsForScore(qualTaps int, category string) bool {
	return qualTaps >= ct.Threshold(category)
}
