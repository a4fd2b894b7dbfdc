package domain

import "sort"

// LabelResolver resolves the display label for an aggregate row.
// Implementations typically consult the signal catalog; the returned
// boolean reports whether the label came from a catalog definition.
type LabelResolver interface {
	// ResolveLabel returns the display label for the aggregate and
	// whether it was resolved from the catalog. Implementations must
	// fall back to the row's raw dimension when no definition matches.
	ResolveLabel(agg SignalAggregate) (label string, fromCatalog bool)
}

// GroupAggregates partitions the aggregate rows for one place into the
// ordered positive/neutral/negative view.
//
// Rows with TotalVotes below minVotes are dropped as noise. Within each
// bucket, entries are sorted by votes descending; equal-vote entries
// keep their relative input order, so the output is deterministic for a
// deterministic input order. Rows with an unknown polarity are dropped.
//
// The resolver supplies display labels. A nil resolver uses the raw
// dimension string for every row.
//
// GroupAggregates is a pure function: empty input yields three empty
// buckets and no error state exists.
func GroupAggregates(rows []SignalAggregate, minVotes int, resolver LabelResolver) GroupedSignals {
	var grouped GroupedSignals

	for _, row := range rows {
		if row.TotalVotes < minVotes {
			continue
		}

		entry := resolveEntry(row, resolver)

		switch row.Polarity {
		case PolarityPositive:
			grouped.Positive = append(grouped.Positive, entry)
		case PolarityNeutral:
			grouped.Neutral = append(grouped.Neutral, entry)
		case PolarityImprovement:
			grouped.Negative = append(grouped.Negative, entry)
		}
	}

	sortByVotes(grouped.Positive)
	sortByVotes(grouped.Neutral)
	sortByVotes(grouped.Negative)

	return grouped
}

func resolveEntry(row SignalAggregate, resolver LabelResolver) ResolvedSignal {
	label := row.Dimension
	fromCatalog := false
	if resolver != nil {
		label, fromCatalog = resolver.ResolveLabel(row)
	}

	signalID := ""
	if fromCatalog {
		signalID = row.SignalID
	}

	return ResolvedSignal{
		SignalID:    signalID,
		Label:       label,
		Votes:       row.TotalVotes,
		FromCatalog: fromCatalog,
	}
}

// sortByVotes orders a bucket by vote count descending. The sort must
// be stable: the input's relative order is the only tie-break.
func sortByVotes(entries []ResolvedSignal) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Votes > entries[j].Votes
	})
}
