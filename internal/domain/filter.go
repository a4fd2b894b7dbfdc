package domain

import "slices"

// NoiseFloorVotes is the minimum vote count below which a signal is
// never considered for matching or exclusion. The boundary is
// inclusive: exactly NoiseFloorVotes counts, one fewer is noise.
const NoiseFloorVotes = 2

// FilterSpec is a traveler's stated preference set for a search. All
// fields default to empty; an all-empty spec is the identity operation
// and ranking must return its input untouched.
//
// FilterSpec values are compared and merged functionally. There is no
// shared mutable default; use EmptyFilterSpec for the sentinel.
type FilterSpec struct {
	// PositiveSignalIDs are desired positive signals. Each match adds
	// votes at full weight to the place's match score.
	PositiveSignalIDs []string `json:"positive_signal_ids,omitempty" yaml:"positive_signal_ids,omitempty"`

	// NeutralSignalIDs are desired neutral signals. Each match adds
	// votes at half the positive weight.
	NeutralSignalIDs []string `json:"neutral_signal_ids,omitempty" yaml:"neutral_signal_ids,omitempty"`

	// NegativeSignalIDs are deal-breakers. A single qualifying match
	// excludes the place outright; exclusion is never weighed against
	// or cancelled by positive score.
	NegativeSignalIDs []string `json:"negative_signal_ids,omitempty" yaml:"negative_signal_ids,omitempty"`

	// AcceptedMedalTiers restricts results to the listed tiers when
	// non-empty. A place without a reputation row is tier none.
	AcceptedMedalTiers []MedalTier `json:"accepted_medal_tiers,omitempty" yaml:"accepted_medal_tiers,omitempty"`

	// MinimumShownScore drops places whose shown score is nil or below
	// the value. Nil disables the check.
	MinimumShownScore *float64 `json:"minimum_shown_score,omitempty" yaml:"minimum_shown_score,omitempty"`
}

// EmptyFilterSpec returns the canonical "no filtering" specification.
func EmptyFilterSpec() FilterSpec { return FilterSpec{} }

// IsEmpty reports whether the spec requests no filtering at all.
func (f FilterSpec) IsEmpty() bool {
	return len(f.PositiveSignalIDs) == 0 &&
		len(f.NeutralSignalIDs) == 0 &&
		len(f.NegativeSignalIDs) == 0 &&
		len(f.AcceptedMedalTiers) == 0 &&
		f.MinimumShownScore == nil
}

// AcceptsTier reports whether the medal-tier filter admits the given
// tier. An empty tier list admits everything.
func (f FilterSpec) AcceptsTier(tier MedalTier) bool {
	if len(f.AcceptedMedalTiers) == 0 {
		return true
	}
	return slices.Contains(f.AcceptedMedalTiers, tier)
}

// MatchedSignal records one filter signal a place matched, with the
// vote count that backed the match. Kept for "why this result" and
// "why was this hidden" explanations.
type MatchedSignal struct {
	// SignalID is the filter signal that matched.
	SignalID string `json:"signal_id"`

	// Votes is the place's aggregate vote count for that signal.
	Votes int `json:"votes"`
}

// MatchResult explains how one place fared against a FilterSpec. It is
// computed fresh per ranking call and never cached beyond it.
type MatchResult struct {
	// PlaceID identifies the evaluated place.
	PlaceID string `json:"place_id"`

	// MatchScore is the weighted sum of matched desired signals.
	MatchScore int `json:"match_score"`

	// MatchedPositive lists desired positive signals the place has at
	// or above the noise floor.
	MatchedPositive []MatchedSignal `json:"matched_positive,omitempty"`

	// MatchedNeutral lists desired neutral signals the place has at or
	// above the noise floor.
	MatchedNeutral []MatchedSignal `json:"matched_neutral,omitempty"`

	// MatchedNegative lists excluded signals the place tripped.
	MatchedNegative []MatchedSignal `json:"matched_negative,omitempty"`

	// ExcludedByNegative is true once any excluded signal matched at or
	// above the noise floor.
	ExcludedByNegative bool `json:"excluded_by_negative"`
}

// RankOutcome is the result of one filter/rank evaluation.
type RankOutcome struct {
	// EvaluationID uniquely identifies this evaluation run.
	EvaluationID string `json:"evaluation_id,omitempty"`

	// RankedIDs is the surviving candidate list, best match first.
	// Equal-score places keep their input order, so whatever secondary
	// order the caller supplied (distance, typically) carries through.
	RankedIDs []string `json:"ranked_ids"`

	// Results maps every input place, excluded ones included, to its
	// match explanation.
	Results map[string]MatchResult `json:"results"`

	// ExcludedCount is the number of distinct places removed by the
	// filtering pass, for "N places hidden due to your filters"
	// messaging.
	ExcludedCount int `json:"excluded_count"`
}
