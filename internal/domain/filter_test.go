package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestFilterSpecIsEmpty verifies the identity sentinel: every field
// empty means no filtering at all.
func TestFilterSpecIsEmpty(t *testing.T) {
	t.Run("empty spec", func(t *testing.T) {
		assert.True(t, EmptyFilterSpec().IsEmpty())
		assert.True(t, FilterSpec{}.IsEmpty())
	})

	minScore := 70.0
	testCases := []struct {
		name string
		spec FilterSpec
	}{
		{"positive signals", FilterSpec{PositiveSignalIDs: []string{"level_sites"}}},
		{"neutral signals", FilterSpec{NeutralSignalIDs: []string{"family_friendly"}}},
		{"negative signals", FilterSpec{NegativeSignalIDs: []string{"spotty_wifi"}}},
		{"medal tiers", FilterSpec{AcceptedMedalTiers: []MedalTier{MedalGold}}},
		{"minimum score", FilterSpec{MinimumShownScore: &minScore}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, tc.spec.IsEmpty())
		})
	}
}

// TestFilterSpecAcceptsTier verifies the medal inclusion test: an
// empty tier list admits everything, a non-empty list admits only its
// members.
func TestFilterSpecAcceptsTier(t *testing.T) {
	t.Run("empty list admits all tiers", func(t *testing.T) {
		spec := EmptyFilterSpec()
		for _, tier := range []MedalTier{MedalNone, MedalBronze, MedalSilver, MedalGold, MedalPlatinum} {
			assert.True(t, spec.AcceptsTier(tier))
		}
	})

	t.Run("non-empty list is exact membership", func(t *testing.T) {
		spec := FilterSpec{AcceptedMedalTiers: []MedalTier{MedalGold, MedalPlatinum}}

		assert.True(t, spec.AcceptsTier(MedalGold))
		assert.True(t, spec.AcceptsTier(MedalPlatinum))
		assert.False(t, spec.AcceptsTier(MedalSilver))
		assert.False(t, spec.AcceptsTier(MedalNone))
	})
}
