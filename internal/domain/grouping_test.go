package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticResolver resolves labels from a fixed map and falls back to the
// raw dimension, mirroring the catalog resolver's contract.
type staticResolver struct {
	labels map[string]string
}

func (r staticResolver) ResolveLabel(agg SignalAggregate) (string, bool) {
	if label, ok := r.labels[agg.SignalID]; ok {
		return label, true
	}
	return agg.Dimension, false
}

// TestGroupAggregatesPartition verifies that rows land in exactly one
// bucket according to their polarity and that no row is dropped above
// the vote floor.
func TestGroupAggregatesPartition(t *testing.T) {
	rows := []SignalAggregate{
		{PlaceID: "p1", SignalID: "level_sites", Dimension: "level_sites", Polarity: PolarityPositive, TotalVotes: 62},
		{PlaceID: "p1", SignalID: "family_friendly", Dimension: "family_friendly", Polarity: PolarityNeutral, TotalVotes: 28},
		{PlaceID: "p1", SignalID: "spotty_wifi", Dimension: "spotty_wifi", Polarity: PolarityImprovement, TotalVotes: 18},
	}

	grouped := GroupAggregates(rows, 0, nil)

	require.Len(t, grouped.Positive, 1)
	require.Len(t, grouped.Neutral, 1)
	require.Len(t, grouped.Negative, 1)

	assert.Equal(t, 62, grouped.Positive[0].Votes)
	assert.Equal(t, 28, grouped.Neutral[0].Votes)
	assert.Equal(t, 18, grouped.Negative[0].Votes)
}

// TestGroupAggregatesScenario verifies the canonical grouping scenario:
// one signal of each polarity, resolved labels, buckets in the
// positive/neutral/negative order.
func TestGroupAggregatesScenario(t *testing.T) {
	resolver := staticResolver{labels: map[string]string{
		"level_sites":     "Level Sites",
		"family_friendly": "Family-Friendly",
		"spotty_wifi":     "Spotty WiFi",
	}}

	rows := []SignalAggregate{
		{PlaceID: "p1", SignalID: "spotty_wifi", Dimension: "spotty_wifi", Polarity: PolarityImprovement, TotalVotes: 18},
		{PlaceID: "p1", SignalID: "level_sites", Dimension: "level_sites", Polarity: PolarityPositive, TotalVotes: 62},
		{PlaceID: "p1", SignalID: "family_friendly", Dimension: "family_friendly", Polarity: PolarityNeutral, TotalVotes: 28},
	}

	grouped := GroupAggregates(rows, 0, resolver)

	require.Len(t, grouped.Positive, 1)
	assert.Equal(t, "Level Sites", grouped.Positive[0].Label)
	assert.Equal(t, 62, grouped.Positive[0].Votes)
	assert.True(t, grouped.Positive[0].FromCatalog)

	require.Len(t, grouped.Neutral, 1)
	assert.Equal(t, "Family-Friendly", grouped.Neutral[0].Label)
	assert.Equal(t, 28, grouped.Neutral[0].Votes)

	require.Len(t, grouped.Negative, 1)
	assert.Equal(t, "Spotty WiFi", grouped.Negative[0].Label)
	assert.Equal(t, 18, grouped.Negative[0].Votes)
}

// TestGroupAggregatesSortInvariant verifies votes-descending order
// within each bucket and stability for equal vote counts.
func TestGroupAggregatesSortInvariant(t *testing.T) {
	t.Run("descending votes", func(t *testing.T) {
		rows := []SignalAggregate{
			{SignalID: "a", Dimension: "a", Polarity: PolarityPositive, TotalVotes: 5},
			{SignalID: "b", Dimension: "b", Polarity: PolarityPositive, TotalVotes: 40},
			{SignalID: "c", Dimension: "c", Polarity: PolarityPositive, TotalVotes: 12},
		}

		grouped := GroupAggregates(rows, 0, nil)

		require.Len(t, grouped.Positive, 3)
		for i := 0; i < len(grouped.Positive)-1; i++ {
			assert.GreaterOrEqual(t, grouped.Positive[i].Votes, grouped.Positive[i+1].Votes)
		}
	})

	t.Run("equal votes keep input order", func(t *testing.T) {
		rows := []SignalAggregate{
			{SignalID: "first", Dimension: "first", Polarity: PolarityPositive, TotalVotes: 7},
			{SignalID: "second", Dimension: "second", Polarity: PolarityPositive, TotalVotes: 7},
			{SignalID: "third", Dimension: "third", Polarity: PolarityPositive, TotalVotes: 7},
			{SignalID: "top", Dimension: "top", Polarity: PolarityPositive, TotalVotes: 9},
		}

		grouped := GroupAggregates(rows, 0, nil)

		require.Len(t, grouped.Positive, 4)
		assert.Equal(t, "top", grouped.Positive[0].Label)
		assert.Equal(t, "first", grouped.Positive[1].Label)
		assert.Equal(t, "second", grouped.Positive[2].Label)
		assert.Equal(t, "third", grouped.Positive[3].Label)
	})
}

// TestGroupAggregatesMinVotes verifies noise suppression: rows below
// the floor disappear, rows at the floor survive.
func TestGroupAggregatesMinVotes(t *testing.T) {
	rows := []SignalAggregate{
		{SignalID: "loud", Dimension: "loud", Polarity: PolarityPositive, TotalVotes: 2},
		{SignalID: "quiet", Dimension: "quiet", Polarity: PolarityPositive, TotalVotes: 1},
	}

	grouped := GroupAggregates(rows, 2, nil)

	require.Len(t, grouped.Positive, 1)
	assert.Equal(t, "loud", grouped.Positive[0].Label)
}

// TestGroupAggregatesEdgeCases verifies degraded-input behavior: empty
// input, unknown polarity, and the raw dimension fallback.
func TestGroupAggregatesEdgeCases(t *testing.T) {
	t.Run("empty input yields three empty buckets", func(t *testing.T) {
		grouped := GroupAggregates(nil, 0, nil)

		assert.True(t, grouped.IsEmpty())
		assert.Empty(t, grouped.Positive)
		assert.Empty(t, grouped.Neutral)
		assert.Empty(t, grouped.Negative)
	})

	t.Run("unknown polarity rows are dropped", func(t *testing.T) {
		rows := []SignalAggregate{
			{SignalID: "x", Dimension: "x", Polarity: Polarity("mystery"), TotalVotes: 50},
		}

		grouped := GroupAggregates(rows, 0, nil)
		assert.True(t, grouped.IsEmpty())
	})

	t.Run("nil resolver uses raw dimension", func(t *testing.T) {
		rows := []SignalAggregate{
			{Dimension: "quiet at night", Polarity: PolarityPositive, TotalVotes: 4},
		}

		grouped := GroupAggregates(rows, 0, nil)

		require.Len(t, grouped.Positive, 1)
		assert.Equal(t, "quiet at night", grouped.Positive[0].Label)
		assert.False(t, grouped.Positive[0].FromCatalog)
		assert.Empty(t, grouped.Positive[0].SignalID)
	})
}

// TestGroupedSignalsTop verifies that the top-N view is a pure slice of
// the already-sorted buckets.
func TestGroupedSignalsTop(t *testing.T) {
	rows := make([]SignalAggregate, 0, 8)
	for i, votes := range []int{40, 30, 20, 10, 5, 4} {
		rows = append(rows, SignalAggregate{
			SignalID:   string(rune('a' + i)),
			Dimension:  string(rune('a' + i)),
			Polarity:   PolarityPositive,
			TotalVotes: votes,
		})
	}
	rows = append(rows,
		SignalAggregate{SignalID: "n1", Dimension: "n1", Polarity: PolarityNeutral, TotalVotes: 3},
		SignalAggregate{SignalID: "g1", Dimension: "g1", Polarity: PolarityImprovement, TotalVotes: 2},
	)

	grouped := GroupAggregates(rows, 0, nil)

	t.Run("fixed slices", func(t *testing.T) {
		top := grouped.Top(5, 3, 2)

		assert.Len(t, top.Positive, 5)
		assert.Len(t, top.Neutral, 1)
		assert.Len(t, top.Negative, 1)
		assert.Equal(t, grouped.Positive[:5], top.Positive)
	})

	t.Run("top one of each", func(t *testing.T) {
		top := grouped.Top(1, 1, 1)

		require.Len(t, top.Positive, 1)
		assert.Equal(t, 40, top.Positive[0].Votes)
	})

	t.Run("widening never re-sorts", func(t *testing.T) {
		narrow := grouped.Top(2, 3, 2)
		wide := grouped.Top(6, 3, 2)

		assert.Equal(t, narrow.Positive, wide.Positive[:2])
	})

	t.Run("negative sizes are treated as zero", func(t *testing.T) {
		top := grouped.Top(-1, -1, -1)
		assert.True(t, top.IsEmpty())
	})
}

// TestSignalAggregateKey verifies the matching identifier: catalog ID
// when present, raw dimension otherwise.
func TestSignalAggregateKey(t *testing.T) {
	assert.Equal(t, "level_sites", SignalAggregate{SignalID: "level_sites", Dimension: "ignored"}.Key())
	assert.Equal(t, "free_form", SignalAggregate{Dimension: "free_form"}.Key())
}

// TestPolarityValid verifies polarity validation.
func TestPolarityValid(t *testing.T) {
	assert.True(t, PolarityPositive.Valid())
	assert.True(t, PolarityNeutral.Valid())
	assert.True(t, PolarityImprovement.Valid())
	assert.False(t, Polarity("negative").Valid())
	assert.False(t, Polarity("").Valid())
}
